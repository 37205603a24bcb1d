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

// RequireProjectAccess loads the project named by :id if the principal may see it.
// The creator and staff may; everyone else gets 404 so existence is not leaked.
func RequireProjectAccess(projectService *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
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

		project, err := projectService.GetProject(projectID, user)
		if err != nil {
			if errors.Is(err, services.ErrProjectNotFound) {
				apierrors.NotFound(c, "Not found.")
			} else {
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyProject, project)
		c.Next()
	}
}

// GetProject retrieves the project loaded by RequireProjectAccess
func GetProject(c *gin.Context) (*models.Project, bool) {
	value, exists := c.Get(constants.ContextKeyProject)
	if !exists {
		return nil, false
	}
	project, ok := value.(*models.Project)
	return project, ok
}
