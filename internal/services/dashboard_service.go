package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
)

var ErrIndicatorNotFound = errors.New("indicator not found")

// Indicator names written by SyncIndicators
const (
	IndicatorTotalProjects   = "total_projects"
	IndicatorTotalTasks      = "total_tasks"
	IndicatorTasksTodo       = "tasks_todo"
	IndicatorTasksInProgress = "tasks_in_progress"
	IndicatorTasksDone       = "tasks_done"
	IndicatorTotalUsers      = "total_users"
)

// DashboardService serves precomputed indicators and recomputes them from the relational store
type DashboardService struct {
	indicatorRepo repository.IndicatorRepository
	userRepo      repository.UserRepository
	projectRepo   repository.ProjectRepository
	taskRepo      repository.TaskRepository
	log           logrus.FieldLogger
}

// NewDashboardService creates a new DashboardService.
// The relational repositories are only needed by SyncIndicators and may be nil for read-only use.
func NewDashboardService(
	indicatorRepo repository.IndicatorRepository,
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
	taskRepo repository.TaskRepository,
	log logrus.FieldLogger,
) *DashboardService {
	return &DashboardService{
		indicatorRepo: indicatorRepo,
		userRepo:      userRepo,
		projectRepo:   projectRepo,
		taskRepo:      taskRepo,
		log:           log,
	}
}

// ListIndicators returns every indicator
func (s *DashboardService) ListIndicators(ctx context.Context) ([]models.DashboardIndicator, error) {
	indicators, err := s.indicatorRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list indicators: %w", err)
	}
	return indicators, nil
}

// GetIndicator returns one indicator by its hex id
func (s *DashboardService) GetIndicator(ctx context.Context, id string) (*models.DashboardIndicator, error) {
	indicator, err := s.indicatorRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrIndicatorNotFound) {
			return nil, ErrIndicatorNotFound
		}
		return nil, fmt.Errorf("failed to find indicator: %w", err)
	}
	return indicator, nil
}

// SyncIndicators recomputes every indicator and upserts it by name
func (s *DashboardService) SyncIndicators(ctx context.Context) (map[string]int64, error) {
	users, err := s.userRepo.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	projects, err := s.projectRepo.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	tasks, err := s.taskRepo.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	byStatus, err := s.taskRepo.CountByStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks by status: %w", err)
	}

	values := map[string]int64{
		IndicatorTotalProjects:   projects,
		IndicatorTotalTasks:      tasks,
		IndicatorTasksTodo:       byStatus[models.TaskStatusTodo],
		IndicatorTasksInProgress: byStatus[models.TaskStatusInProgress],
		IndicatorTasksDone:       byStatus[models.TaskStatusDone],
		IndicatorTotalUsers:      users,
	}

	for name, value := range values {
		if err := s.indicatorRepo.UpsertByName(ctx, name, value); err != nil {
			return nil, err
		}
		s.log.WithFields(logrus.Fields{"indicator": name, "value": value}).Debug("indicator synced")
	}

	return values, nil
}
