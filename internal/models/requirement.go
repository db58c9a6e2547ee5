package models

import "time"

// Requirement is a free-text expectation recorded against a project. Deleting a
// requirement removes its dependent tasks.
type Requirement struct {
	ID          uint   `gorm:"primaryKey"`
	Requirement string `gorm:"type:text;not null"`
	ProjectID   uint   `gorm:"not null;index"`
	CreatedBy   uint   `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID"`
	Creator User    `gorm:"foreignKey:CreatedBy"`
	Tasks   []Task  `gorm:"foreignKey:RequirementID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
