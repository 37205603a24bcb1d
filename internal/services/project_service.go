package services

import (
	"errors"
	"fmt"

	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/utils"
	"gorm.io/gorm"
)

var ErrProjectNotFound = errors.New("project not found")

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
	hook        CreateHook
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, hook CreateHook) *ProjectService {
	if hook == nil {
		hook = NopHook{}
	}
	return &ProjectService{
		projectRepo: projectRepo,
		hook:        hook,
	}
}

// ProjectInput carries the writable project fields. Creator is never writable.
type ProjectInput struct {
	Name        utils.Optional[string]
	Description utils.Optional[string]
	StartDate   utils.Optional[string]
	EndDate     utils.Optional[string]
}

// ListProjects returns the projects actor may see
func (s *ProjectService) ListProjects(actor *models.User, params utils.PaginationParams) ([]models.Project, int64, error) {
	projects, total, err := s.projectRepo.List(actor, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// GetProject returns a project actor may see. Invisible projects are reported as not found.
func (s *ProjectService) GetProject(id uint64, actor *models.User) (*models.Project, error) {
	project, err := s.projectRepo.FindVisible(id, actor)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// CreateProject stores a project owned by actor
func (s *ProjectService) CreateProject(actor *models.User, input ProjectInput) (*models.Project, error) {
	project := &models.Project{CreatorID: &actor.ID}
	if err := applyProjectInput(project, input, true); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.hook.ProjectCreated(project)
	return project, nil
}

// UpdateProject applies a partial update to project
func (s *ProjectService) UpdateProject(project *models.Project, input ProjectInput) (*models.Project, error) {
	updated := *project
	if err := applyProjectInput(&updated, input, false); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Update(&updated); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return &updated, nil
}

// DeleteProject removes project and its tasks
func (s *ProjectService) DeleteProject(project *models.Project) error {
	if err := s.projectRepo.Delete(project.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func applyProjectInput(project *models.Project, input ProjectInput, create bool) error {
	fields := apierrors.FieldErrors{}

	applyName(fields, "name", input.Name, create, &project.Name)
	if input.Description.Set {
		project.Description = input.Description.Value
	}
	applyDate(fields, "start_date", input.StartDate, &project.StartDate)
	applyDate(fields, "end_date", input.EndDate, &project.EndDate)

	if len(fields) == 0 {
		checkDateRange(fields, project.StartDate, project.EndDate)
	}
	return fields.Err()
}
