package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/utils"
)

// UserHandler serves user management. Routes are mounted behind RequireSuperuser.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type createUserRequest struct {
	Username    string `json:"username" binding:"required,max=150"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

type updateUserRequest struct {
	Username    utils.Optional[string] `json:"username"`
	Email       utils.Optional[string] `json:"email"`
	Password    utils.Optional[string] `json:"password"`
	IsStaff     utils.Optional[bool]   `json:"is_staff"`
	IsSuperuser utils.Optional[bool]   `json:"is_superuser"`
	IsActive    utils.Optional[bool]   `json:"is_active"`
}

// ListUsers returns every user, newest first
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, total, err := h.userService.ListUsers(utils.GetPaginationParams(c))
	if err != nil {
		respondError(c, err)
		return
	}

	setTotalCount(c, total)
	c.JSON(http.StatusOK, dto.ToUserDetailDTOs(users))
}

// CreateUser registers a new account
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondBindingError(c, err)
		return
	}

	user, err := h.userService.CreateUser(services.CreateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		IsStaff:     req.IsStaff,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDetailDTO(*user))
}

// GetUser returns one user
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDetailDTO(*user))
}

// UpdateUser applies PUT and PATCH bodies. Both are partial.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondBindingError(c, err)
		return
	}

	user, err := h.userService.UpdateUser(id, services.UpdateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		IsStaff:     req.IsStaff,
		IsSuperuser: req.IsSuperuser,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDetailDTO(*user))
}

// DeleteUser removes a user together with their projects and assigned tasks
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(id); err != nil {
		respondError(c, err)
		return
	}

	noContent(c)
}
