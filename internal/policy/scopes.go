package policy

import (
	"gorm.io/gorm"

	"github.com/taskforge/task-assignment-api/internal/models"
)

// TaskScope narrows a task query to the rows the actor may see. Every list
// entry point must apply it before any user-supplied filter.
func TaskScope(actor *models.User) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch actor.Role {
		case models.RoleSuperAdmin:
			return db
		case models.RoleAdmin:
			return db.Where("tasks.assigned_by_id = ? OR tasks.assigned_to_id = ?", actor.ID, actor.ID)
		default:
			return db.Where("tasks.assigned_to_id = ?", actor.ID)
		}
	}
}

// UserScope narrows a user query to the accounts the actor may see.
func UserScope(actor *models.User) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch actor.Role {
		case models.RoleSuperAdmin:
			return db
		case models.RoleAdmin:
			return db.Where("users.role <> ?", models.RoleSuperAdmin)
		default:
			return db.Where("1 = 0")
		}
	}
}

// AssignablePool narrows a user query to accounts that may hold tasks.
func AssignablePool() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("users.role <> ?", models.RoleSuperAdmin)
	}
}
