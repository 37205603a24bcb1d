package repository

import (
	"context"
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindActiveByEmail finds every active user whose email matches case-insensitively
	FindActiveByEmail(email string) ([]models.User, error)

	// List retrieves users newest first
	List(params utils.PaginationParams) ([]models.User, int64, error)

	// Update saves every field of user
	Update(user *models.User) error

	// UpdatePasswordIfVersion stores a new hash and bumps the password version,
	// but only while the stored version still equals version. It reports whether a row changed.
	UpdatePasswordIfVersion(id, version uint64, hash string, changedAt time.Time) (bool, error)

	// UpdateLastLogin records a successful login
	UpdateLastLogin(id uint64, at time.Time) error

	// Delete removes a user along with their projects and assigned tasks
	Delete(id uint64) error

	// UsernameTaken reports whether another user already has username
	UsernameTaken(username string, excludeID uint64) (bool, error)

	// Count returns the number of users
	Count() (int64, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID
	FindByID(id uint64) (*models.Project, error)

	// FindVisible finds a project by ID among those viewer may see
	FindVisible(id uint64, viewer *models.User) (*models.Project, error)

	// List retrieves the projects viewer may see, newest first
	List(viewer *models.User, params utils.PaginationParams) ([]models.Project, int64, error)

	// Update saves every field of project
	Update(project *models.Project) error

	// Delete removes a project and its tasks
	Delete(id uint64) error

	// Count returns the number of projects
	Count() (int64, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update saves every field of task
	Update(task *models.Task) error

	// Delete removes a task
	Delete(id uint64) error

	// Count returns the number of tasks
	Count() (int64, error)

	// CountByStatus returns the number of tasks per status
	CountByStatus() (map[models.TaskStatus]int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Viewer     *models.User
	Status     *models.TaskStatus
	ProjectID  *uint64
	AssigneeID *uint64
	Pagination utils.PaginationParams
}

// IndicatorRepository defines the interface for dashboard indicator access
type IndicatorRepository interface {
	// List returns every indicator ordered by name
	List(ctx context.Context) ([]models.DashboardIndicator, error)

	// FindByID finds an indicator by its hex ObjectID
	FindByID(ctx context.Context, id string) (*models.DashboardIndicator, error)

	// UpsertByName sets the value of the indicator called name, creating it if needed
	UpsertByName(ctx context.Context, name string, value int64) error
}
