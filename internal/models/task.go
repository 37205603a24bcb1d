package models

import "time"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// TaskStatuses lists every accepted status in display order.
var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

// Valid reports whether s is one of the enumerated statuses.
func (s TaskStatus) Valid() bool {
	for _, status := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Name        string     `gorm:"type:varchar(200);not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	StartDate   *time.Time `gorm:"type:date" json:"start_date"`
	EndDate     *time.Time `gorm:"type:date" json:"end_date"`
	ProjectID   *uint64    `json:"project"`
	AssigneeID  *uint64    `json:"assignee"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'todo'" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Project  *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Assignee *User    `gorm:"foreignKey:AssigneeID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsAssignedTo reports whether userID is the task's assignee.
func (t *Task) IsAssignedTo(userID uint64) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}
