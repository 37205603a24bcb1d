// Package policy decides which projects, tasks and users a principal may see and change.
//
// The same rules exist in two forms: scopes that narrow a GORM query for list endpoints,
// and predicates that check an already loaded record for detail endpoints.
package policy

import (
	"github.com/yukikurage/project-management-api/internal/models"
	"gorm.io/gorm"
)

// CanManageUsers reports whether the principal may list, create, update or delete users.
func CanManageUsers(user *models.User) bool {
	return user != nil && user.IsActive && user.IsSuperuser
}

// SeesEverything reports whether the principal bypasses per-object visibility.
func SeesEverything(user *models.User) bool {
	return user != nil && user.IsStaff
}

// CanViewProject reports whether the principal may see and change project.
func CanViewProject(user *models.User, project *models.Project) bool {
	if user == nil || project == nil {
		return false
	}
	return SeesEverything(user) || project.IsCreatedBy(user.ID)
}

// CanViewTask reports whether the principal may see and change task.
// task.Project must be loaded for project ownership to count.
func CanViewTask(user *models.User, task *models.Task) bool {
	if user == nil || task == nil {
		return false
	}
	if SeesEverything(user) || task.IsAssignedTo(user.ID) {
		return true
	}
	return task.Project != nil && task.Project.IsCreatedBy(user.ID)
}

// ProjectScope restricts a projects query to what the principal may see.
func ProjectScope(user *models.User) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if user == nil {
			return db.Where("1 = 0")
		}
		if SeesEverything(user) {
			return db
		}
		return db.Where("projects.creator_id = ?", user.ID)
	}
}

// TaskScope restricts a tasks query to tasks assigned to the principal
// or belonging to a project the principal created.
func TaskScope(user *models.User) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if user == nil {
			return db.Where("1 = 0")
		}
		if SeesEverything(user) {
			return db
		}
		ownedProjects := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Project{}).
			Select("projects.id").
			Where("projects.creator_id = ?", user.ID)
		return db.Where("(tasks.assignee_id = ? OR tasks.project_id IN (?))", user.ID, ownedProjects)
	}
}
