package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
)

// UserDTO is the public representation of a user. It never carries the password.
type UserDTO struct {
	ID          uint64 `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsSuperuser bool   `json:"is_superuser"`
	IsStaff     bool   `json:"is_staff"`
}

// UserDetailDTO is the representation returned by the user management endpoints
type UserDetailDTO struct {
	UserDTO
	IsActive   bool       `json:"is_active"`
	LastLogin  *time.Time `json:"last_login"`
	DateJoined time.Time  `json:"date_joined"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		IsSuperuser: user.IsSuperuser,
		IsStaff:     user.IsStaff,
	}
}

// ToUserDetailDTO converts a User model to UserDetailDTO
func ToUserDetailDTO(user models.User) UserDetailDTO {
	return UserDetailDTO{
		UserDTO:    ToUserDTO(user),
		IsActive:   user.IsActive,
		LastLogin:  user.LastLogin,
		DateJoined: user.CreatedAt,
	}
}

// ToUserDetailDTOs converts a slice of users
func ToUserDetailDTOs(users []models.User) []UserDetailDTO {
	items := make([]UserDetailDTO, len(users))
	for i, user := range users {
		items[i] = ToUserDetailDTO(user)
	}
	return items
}
