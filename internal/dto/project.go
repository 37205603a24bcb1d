package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartDate   *string   `json:"start_date"`
	EndDate     *string   `json:"end_date"`
	Creator     *uint64   `json:"creator"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		StartDate:   formatDate(project.StartDate),
		EndDate:     formatDate(project.EndDate),
		Creator:     project.CreatorID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	items := make([]ProjectDTO, len(projects))
	for i, project := range projects {
		items[i] = ToProjectDTO(project)
	}
	return items
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(constants.DateLayout)
	return &s
}
