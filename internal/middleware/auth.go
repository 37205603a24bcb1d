package middleware

import (
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/constants"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/policy"
	"github.com/yukikurage/project-management-api/internal/services"
)

// RequireAuth checks if the user is authenticated via session and loads the principal.
// Sessions of deleted or deactivated users, or issued before a password change, are cleared.
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := asUint64(session.Get(constants.ContextKeyUserID))
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		version, _ := asUint64(session.Get(constants.SessionKeyPasswordVersion))

		user, err := authService.Authenticate(userID, version)
		if err != nil {
			if errors.Is(err, services.ErrSessionInvalid) {
				ClearSession(session)
				apierrors.Unauthorized(c, "")
			} else {
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// RequireSuperuser rejects principals that may not manage users. Must run after RequireAuth.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !policy.CanManageUsers(user) {
			apierrors.Forbidden(c, "You do not have permission to perform this action.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// ClearSession empties the session and expires its cookie
func ClearSession(session sessions.Session) {
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = session.Save()
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return asUint64(userID)
}

// GetUser retrieves the authenticated principal from context
func GetUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

func asUint64(value interface{}) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
