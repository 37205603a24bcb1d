// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-management-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory SQLite database that lives for the duration of the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A second connection would open a different in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
	))

	return db
}

// UserOption customizes a fixture user
type UserOption func(*models.User)

// Staff marks the fixture as staff
func Staff() UserOption {
	return func(u *models.User) { u.IsStaff = true }
}

// Superuser marks the fixture as superuser and staff
func Superuser() UserOption {
	return func(u *models.User) {
		u.IsSuperuser = true
		u.IsStaff = true
	}
}

// WithEmail sets the fixture's email
func WithEmail(email string) UserOption {
	return func(u *models.User) { u.Email = email }
}

// WithPassword hashes password at the minimum bcrypt cost
func WithPassword(password string) UserOption {
	return func(u *models.User) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		u.PasswordHash = string(hash)
	}
}

// CreateUser inserts an active user
func CreateUser(t *testing.T, db *gorm.DB, username string, opts ...UserOption) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashed",
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(user)
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateProject inserts a project owned by creator
func CreateProject(t *testing.T, db *gorm.DB, name string, creator *models.User) *models.Project {
	t.Helper()

	project := &models.Project{Name: name, Description: "Test Description"}
	if creator != nil {
		project.CreatorID = &creator.ID
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// CreateTask inserts a task in project assigned to assignee; either may be nil
func CreateTask(t *testing.T, db *gorm.DB, name string, project *models.Project, assignee *models.User) *models.Task {
	t.Helper()

	task := &models.Task{Name: name, Status: models.TaskStatusTodo}
	if project != nil {
		task.ProjectID = &project.ID
	}
	if assignee != nil {
		task.AssigneeID = &assignee.ID
	}
	require.NoError(t, db.Create(task).Error)
	return task
}
