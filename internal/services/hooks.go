package services

import (
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-management-api/internal/models"
)

// CreateHook is notified after a project or task has been persisted.
// Hooks run synchronously and cannot fail the request.
type CreateHook interface {
	ProjectCreated(project *models.Project)
	TaskCreated(task *models.Task)
}

// LogHook logs every creation
type LogHook struct {
	log logrus.FieldLogger
}

// NewLogHook creates a LogHook
func NewLogHook(log logrus.FieldLogger) *LogHook {
	return &LogHook{log: log}
}

// ProjectCreated logs the new project
func (h *LogHook) ProjectCreated(project *models.Project) {
	h.log.WithFields(logrus.Fields{
		"project_id": project.ID,
		"name":       project.Name,
	}).Info("project created")
}

// TaskCreated logs the new task
func (h *LogHook) TaskCreated(task *models.Task) {
	h.log.WithFields(logrus.Fields{
		"task_id": task.ID,
		"name":    task.Name,
		"status":  task.Status,
	}).Info("task created")
}

// NopHook ignores every event
type NopHook struct{}

func (NopHook) ProjectCreated(*models.Project) {}
func (NopHook) TaskCreated(*models.Task)       {}
