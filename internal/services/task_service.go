package services

import (
	"errors"
	"fmt"

	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/policy"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/utils"
	"gorm.io/gorm"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	hook        CreateHook
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository, hook CreateHook) *TaskService {
	if hook == nil {
		hook = NopHook{}
	}
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		hook:        hook,
	}
}

// TaskInput carries the writable task fields
type TaskInput struct {
	Name        utils.Optional[string]
	Description utils.Optional[string]
	StartDate   utils.Optional[string]
	EndDate     utils.Optional[string]
	Project     utils.Optional[uint64]
	Assignee    utils.Optional[uint64]
	Status      utils.Optional[string]
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Actor      *models.User
	Status     *models.TaskStatus
	ProjectID  *uint64
	AssigneeID *uint64
	Pagination utils.PaginationParams
}

// ListTasks returns tasks assigned to the actor or in the actor's projects; staff see all
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		Viewer:     input.Actor,
		Status:     input.Status,
		ProjectID:  input.ProjectID,
		AssigneeID: input.AssigneeID,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// GetTask returns a task actor may see. Invisible tasks are reported as not found.
func (s *TaskService) GetTask(id uint64, actor *models.User) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id, "Project")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanViewTask(actor, task) {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// CreateTask validates input and stores a new task
func (s *TaskService) CreateTask(actor *models.User, input TaskInput) (*models.Task, error) {
	task := &models.Task{Status: models.TaskStatusTodo}
	if err := s.applyTaskInput(actor, task, input, true); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.hook.TaskCreated(task)
	return task, nil
}

// UpdateTask applies a partial update to task
func (s *TaskService) UpdateTask(actor *models.User, task *models.Task, input TaskInput) (*models.Task, error) {
	updated := *task
	if err := s.applyTaskInput(actor, &updated, input, false); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Update(&updated); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &updated, nil
}

// DeleteTask removes task
func (s *TaskService) DeleteTask(task *models.Task) error {
	if err := s.taskRepo.Delete(task.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (s *TaskService) applyTaskInput(actor *models.User, task *models.Task, input TaskInput, create bool) error {
	fields := apierrors.FieldErrors{}

	applyName(fields, "name", input.Name, create, &task.Name)
	if input.Description.Set {
		task.Description = input.Description.Value
	}
	applyDate(fields, "start_date", input.StartDate, &task.StartDate)
	applyDate(fields, "end_date", input.EndDate, &task.EndDate)

	if input.Status.Set {
		status := models.TaskStatus(input.Status.Value)
		if input.Status.Null || !status.Valid() {
			fields.Add("status", fmt.Sprintf("%q is not a valid choice.", input.Status.Value))
		} else {
			task.Status = status
		}
	}

	if input.Project.Set && !keepsProject(task, input.Project, create) {
		switch {
		case !create && task.ProjectID != nil && !policy.CanViewProject(actor, task.Project):
			// Only people who can see the current project may take the task out of it
			fields.Add("project", msgCannotMoveTask)
		case input.Project.Null:
			task.ProjectID = nil
			task.Project = nil
		default:
			project, err := s.projectRepo.FindVisible(input.Project.Value, actor)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				fields.Add("project", msgDoesNotExist(input.Project.Value))
			case err != nil:
				return fmt.Errorf("failed to find project: %w", err)
			default:
				task.ProjectID = &project.ID
				task.Project = project
			}
		}
	}

	if input.Assignee.Set {
		if input.Assignee.Null {
			task.AssigneeID = nil
		} else {
			assignee, err := s.userRepo.FindByID(input.Assignee.Value)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				fields.Add("assignee", msgDoesNotExist(input.Assignee.Value))
			case err != nil:
				return fmt.Errorf("failed to find assignee: %w", err)
			default:
				task.AssigneeID = &assignee.ID
			}
		}
	}
	task.Assignee = nil

	if len(fields) == 0 {
		checkDateRange(fields, task.StartDate, task.EndDate)
	}
	return fields.Err()
}

// keepsProject reports whether an update names the project the task already belongs to
func keepsProject(task *models.Task, project utils.Optional[uint64], create bool) bool {
	return !create && !project.Null && task.ProjectID != nil && *task.ProjectID == project.Value
}
