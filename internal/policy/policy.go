// Package policy is the single authority for access decisions. Both the web
// pages and the REST API consult it; neither surface carries its own rules.
package policy

import (
	"github.com/taskforge/task-assignment-api/internal/models"
)

// Task field names used in the capability table. They match the JSON and form
// field names so both surfaces can consult the table uniformly.
const (
	FieldTitle            = "title"
	FieldDescription      = "description"
	FieldAssignedTo       = "assigned_to"
	FieldAssignedBy       = "assigned_by"
	FieldDueDate          = "due_date"
	FieldStatus           = "status"
	FieldCompletionReport = "completion_report"
	FieldWorkedHours      = "worked_hours"
)

// taskMutableFields maps a role to the task fields it may write.
var taskMutableFields = map[models.Role]map[string]bool{
	models.RoleUser: {
		FieldStatus:           true,
		FieldCompletionReport: true,
		FieldWorkedHours:      true,
	},
	models.RoleAdmin: {
		FieldAssignedTo: true,
	},
	models.RoleSuperAdmin: {
		FieldTitle:            true,
		FieldDescription:      true,
		FieldAssignedTo:       true,
		FieldAssignedBy:       true,
		FieldDueDate:          true,
		FieldStatus:           true,
		FieldCompletionReport: true,
		FieldWorkedHours:      true,
	},
}

// MutableTaskFields returns the set of task fields the role may write.
func MutableTaskFields(role models.Role) map[string]bool {
	fields := make(map[string]bool, len(taskMutableFields[role]))
	for f := range taskMutableFields[role] {
		fields[f] = true
	}
	return fields
}

// CanMutateField reports whether the role may write the given task field.
func CanMutateField(role models.Role, field string) bool {
	return taskMutableFields[role][field]
}

// CanCreateTask reports whether the role may create tasks.
func CanCreateTask(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleSuperAdmin
}

// CanDeleteTask reports whether the role may delete tasks.
func CanDeleteTask(role models.Role) bool {
	return role == models.RoleSuperAdmin
}

// CanViewUsers reports whether the role may list or view user accounts.
func CanViewUsers(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleSuperAdmin
}

// CanManageUsers reports whether the role may create, edit or delete accounts.
func CanManageUsers(role models.Role) bool {
	return role == models.RoleSuperAdmin
}

// CanViewCompletedTasks reports whether the role may open the completed-tasks
// views.
func CanViewCompletedTasks(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleSuperAdmin
}

// CanViewTask reports whether the actor may see the specific task.
func CanViewTask(actor *models.User, task *models.Task) bool {
	switch actor.Role {
	case models.RoleSuperAdmin:
		return true
	case models.RoleAdmin:
		if task.AssignedByID != nil && *task.AssignedByID == actor.ID {
			return true
		}
		return task.AssignedToID == actor.ID
	default:
		return task.AssignedToID == actor.ID
	}
}

// CanEditTask reports whether the actor may mutate the specific task. Which
// fields are writable is a separate question answered by MutableTaskFields.
func CanEditTask(actor *models.User, task *models.Task) bool {
	return CanViewTask(actor, task)
}

// CanViewUser reports whether the actor may see the target account. Admins
// never see super-admin accounts.
func CanViewUser(actor, target *models.User) bool {
	switch actor.Role {
	case models.RoleSuperAdmin:
		return true
	case models.RoleAdmin:
		return target.Role != models.RoleSuperAdmin
	default:
		return false
	}
}

// CanBeAssignee reports whether the user may be assigned a task. Super-admin
// accounts are excluded from the assignee pool.
func CanBeAssignee(u *models.User) bool {
	return u.Role != models.RoleSuperAdmin
}
