package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/services"
)

const (
	resetRequestedDetail = "If an account with that email exists, a password reset link has been sent."
	resetCompletedDetail = "Password has been reset with the new password."
)

// PasswordResetHandler serves the password reset endpoints
type PasswordResetHandler struct {
	resetService *services.PasswordResetService
}

// NewPasswordResetHandler creates a new PasswordResetHandler
func NewPasswordResetHandler(resetService *services.PasswordResetService) *PasswordResetHandler {
	return &PasswordResetHandler{resetService: resetService}
}

// RequestReset emails a reset link. The response never reveals whether the email is registered.
func (h *PasswordResetHandler) RequestReset(c *gin.Context) {
	type ResetRequest struct {
		Email string `json:"email" binding:"required,email"`
	}

	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondBindingError(c, err)
		return
	}

	if err := h.resetService.RequestReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"detail": resetRequestedDetail})
}

// ConfirmReset sets a new password from an emailed link
func (h *PasswordResetHandler) ConfirmReset(c *gin.Context) {
	type ConfirmRequest struct {
		UID         string `json:"uidb64" binding:"required"`
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}

	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondBindingError(c, err)
		return
	}

	err := h.resetService.ConfirmReset(c.Request.Context(), services.ConfirmResetInput{
		UID:         req.UID,
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"detail": resetCompletedDetail})
}
