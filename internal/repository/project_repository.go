package repository

import (
	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/policy"
	"github.com/yukikurage/project-management-api/internal/utils"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindVisible finds a project by ID among those viewer may see.
// Projects outside the viewer's scope are reported as gorm.ErrRecordNotFound.
func (r *GormProjectRepository) FindVisible(id uint64, viewer *models.User) (*models.Project, error) {
	var project models.Project
	if err := r.db.Scopes(policy.ProjectScope(viewer)).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List retrieves the projects viewer may see, newest first
func (r *GormProjectRepository) List(viewer *models.User, params utils.PaginationParams) ([]models.Project, int64, error) {
	query := r.db.Model(&models.Project{}).Scopes(policy.ProjectScope(viewer))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	err := query.
		Order("projects.created_at DESC").
		Order("projects.id DESC").
		Scopes(database.Paginate(params)).
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// Update saves every field of project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Omit("Creator").Save(project).Error
}

// Delete removes a project and its tasks
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Project{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Count returns the number of projects
func (r *GormProjectRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Project{}).Count(&count).Error
	return count, err
}
