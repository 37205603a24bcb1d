package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	StartDate   *string           `json:"start_date"`
	EndDate     *string           `json:"end_date"`
	Project     *uint64           `json:"project"`
	Assignee    *uint64           `json:"assignee"`
	Status      models.TaskStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		StartDate:   formatDate(task.StartDate),
		EndDate:     formatDate(task.EndDate),
		Project:     task.ProjectID,
		Assignee:    task.AssigneeID,
		Status:      task.Status,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}
