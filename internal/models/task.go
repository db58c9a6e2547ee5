package models

import (
	"fmt"
	"time"
)

// TaskStatus is a free-form enum: any authorized actor may set any of the three
// values in any order, there is no transition guard.
type TaskStatus string

const (
	StatusNotStarted TaskStatus = "NOT_STARTED"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
)

// ParseTaskStatus maps a status name to its TaskStatus value. Unrecognized names
// are an error so the boundary can answer 400 instead of faulting.
func ParseTaskStatus(name string) (TaskStatus, error) {
	switch TaskStatus(name) {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return TaskStatus(name), nil
	}
	return "", fmt.Errorf("unknown task status %q", name)
}

type Task struct {
	ID            uint       `gorm:"primaryKey"`
	Task          string     `gorm:"size:255;not null"`
	ProjectID     uint       `gorm:"not null;index"`
	RequirementID uint       `gorm:"not null;index"`
	CreatedBy     uint       `gorm:"not null"`
	AssignedTo    *uint      `gorm:"index"`
	StartTime     *time.Time
	EndTime       *time.Time
	Status        TaskStatus `gorm:"size:32;not null;default:NOT_STARTED;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Relationships
	Project     Project     `gorm:"foreignKey:ProjectID"`
	Requirement Requirement `gorm:"foreignKey:RequirementID"`
	Creator     User        `gorm:"foreignKey:CreatedBy"`
	Assignee    *User       `gorm:"foreignKey:AssignedTo"`
}
