package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether the status is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID               uint64         `gorm:"primarykey" json:"id"`
	Title            string         `gorm:"type:varchar(200);not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	AssignedToID     uint64         `gorm:"not null" json:"assigned_to_id"`
	AssignedByID     *uint64        `json:"assigned_by_id"`
	DueDate          time.Time      `gorm:"type:date" json:"due_date"`
	Status           TaskStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CompletionReport *string        `gorm:"type:text" json:"completion_report"`
	WorkedHours      *float64       `gorm:"type:decimal(5,2)" json:"worked_hours"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	AssignedTo User  `gorm:"foreignKey:AssignedToID;constraint:OnDelete:CASCADE" json:"assigned_to,omitempty"`
	AssignedBy *User `gorm:"foreignKey:AssignedByID;constraint:OnDelete:SET NULL" json:"assigned_by,omitempty"`
}
