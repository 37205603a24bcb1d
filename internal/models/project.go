package models

import "time"

type Project struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Name        string     `gorm:"type:varchar(200);not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	StartDate   *time.Time `gorm:"type:date" json:"start_date"`
	EndDate     *time.Time `gorm:"type:date" json:"end_date"`
	CreatorID   *uint64    `json:"creator"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Creator *User `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsCreatedBy reports whether userID is the project's creator.
func (p *Project) IsCreatedBy(userID uint64) bool {
	return p.CreatorID != nil && *p.CreatorID == userID
}
