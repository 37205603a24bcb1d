package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/constants"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
)

// RequireTaskAccess checks if the user has access to a task.
// The task's project creator, its assignee and staff may see it.
func RequireTaskAccess(taskService *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.NotFound(c, "Not found.")
			c.Abort()
			return
		}

		user, ok := GetUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		task, err := taskService.GetTask(taskID, user)
		if err != nil {
			// Return 404 instead of 403 to avoid leaking task existence
			if errors.Is(err, services.ErrTaskNotFound) {
				apierrors.NotFound(c, "Not found.")
			} else {
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by RequireTaskAccess
func GetTask(c *gin.Context) (*models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := value.(*models.Task)
	return task, ok
}
