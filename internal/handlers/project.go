package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/utils"
)

// ProjectHandler serves the project endpoints
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// projectRequest has no creator field: the creator always comes from the session.
type projectRequest struct {
	Name        utils.Optional[string] `json:"name"`
	Description utils.Optional[string] `json:"description"`
	StartDate   utils.Optional[string] `json:"start_date"`
	EndDate     utils.Optional[string] `json:"end_date"`
}

func (r projectRequest) input() services.ProjectInput {
	return services.ProjectInput{
		Name:        r.Name,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
	}
}

// ListProjects returns the projects the current user may see
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	projects, total, err := h.projectService.ListProjects(user, utils.GetPaginationParams(c))
	if err != nil {
		respondError(c, err)
		return
	}

	setTotalCount(c, total)
	c.JSON(http.StatusOK, dto.ToProjectDTOs(projects))
}

// CreateProject creates a project owned by the current user
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondBindingError(c, err)
		return
	}

	project, err := h.projectService.CreateProject(user, req.input())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// GetProject returns the project loaded by RequireProjectAccess
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, msgNotFound)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// UpdateProject applies PUT and PATCH bodies. Both are partial.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, msgNotFound)
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondBindingError(c, err)
		return
	}

	updated, err := h.projectService.UpdateProject(project, req.input())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*updated))
}

// DeleteProject removes the project and its tasks
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, msgNotFound)
		return
	}

	if err := h.projectService.DeleteProject(project); err != nil {
		respondError(c, err)
		return
	}

	noContent(c)
}
