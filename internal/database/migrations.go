package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-management-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the indexes behind the visibility filters and list ordering
func AddIndexes(db *gorm.DB, log logrus.FieldLogger) error {
	indexes := []struct {
		model   interface{}
		table   string
		name    string
		columns string
	}{
		// Project visibility is filtered by creator
		{&models.Project{}, "projects", "idx_projects_creator_id", "creator_id"},
		{&models.Project{}, "projects", "idx_projects_created_at", "created_at"},

		// Task visibility is filtered by assignee or owning project
		{&models.Task{}, "tasks", "idx_tasks_project_id", "project_id"},
		{&models.Task{}, "tasks", "idx_tasks_assignee_id", "assignee_id"},
		{&models.Task{}, "tasks", "idx_tasks_status", "status"},
		{&models.Task{}, "tasks", "idx_tasks_created_at", "created_at"},

		// Password reset looks users up by email
		{&models.User{}, "users", "idx_users_email", "email"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.Debugf("Index %s already exists, skipping", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Infof("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
