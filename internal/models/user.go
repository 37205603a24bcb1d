package models

import "time"

type User struct {
	ID                uint64     `gorm:"primarykey" json:"id"`
	Username          string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email             string     `gorm:"type:varchar(254);not null;default:''" json:"email"`
	PasswordHash      string     `gorm:"type:varchar(255);not null" json:"-"`
	IsSuperuser       bool       `gorm:"not null;default:false" json:"is_superuser"`
	IsStaff           bool       `gorm:"not null;default:false" json:"is_staff"`
	IsActive          bool       `gorm:"not null;default:true" json:"is_active"`
	PasswordVersion   uint64     `gorm:"not null;default:0" json:"-"`
	PasswordChangedAt *time.Time `json:"-"`
	LastLogin         *time.Time `json:"last_login"`
	CreatedAt         time.Time  `json:"date_joined"`
	UpdatedAt         time.Time  `json:"-"`
}
