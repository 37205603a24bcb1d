package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/project-management-api/internal/utils"
)

// Paginate applies pagination to a GORM query when the client asked for it
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !params.Enabled {
			return db
		}
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}
