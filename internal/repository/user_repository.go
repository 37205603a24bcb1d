package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/utils"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindActiveByEmail finds every active user whose email matches case-insensitively
func (r *GormUserRepository) FindActiveByEmail(email string) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// List retrieves users newest first
func (r *GormUserRepository) List(params utils.PaginationParams) ([]models.User, int64, error) {
	var total int64
	if err := r.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := r.db.
		Order("created_at DESC").
		Order("id DESC").
		Scopes(database.Paginate(params)).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update saves every field of user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// UpdatePasswordIfVersion stores hash only while the stored password version still equals version
func (r *GormUserRepository) UpdatePasswordIfVersion(id, version uint64, hash string, changedAt time.Time) (bool, error) {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND password_version = ?", id, version).
		Updates(map[string]interface{}{
			"password_hash":       hash,
			"password_version":    gorm.Expr("password_version + 1"),
			"password_changed_at": changedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// UpdateLastLogin records a successful login
func (r *GormUserRepository) UpdateLastLogin(id uint64, at time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
}

// Delete removes a user, the projects they created, every task in those projects
// and every task assigned to them.
func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		ownedProjects := tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.Project{}).
			Select("id").
			Where("creator_id = ?", id)

		if err := tx.Where("assignee_id = ? OR project_id IN (?)", id, ownedProjects).
			Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("failed to delete tasks: %w", err)
		}

		if err := tx.Where("creator_id = ?", id).Delete(&models.Project{}).Error; err != nil {
			return fmt.Errorf("failed to delete projects: %w", err)
		}

		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// UsernameTaken reports whether a user other than excludeID has username
func (r *GormUserRepository) UsernameTaken(username string, excludeID uint64) (bool, error) {
	var count int64
	query := r.db.Model(&models.User{}).Where("username = ?", username)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count returns the number of users
func (r *GormUserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}
