package models

import "time"

// Project is created by a project manager and executed by a lead. Deleting a
// project removes its requirements and tasks.
type Project struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:255;not null"`
	ProjectOwner uint   `gorm:"not null;index"`
	CreatedBy    uint   `gorm:"not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Relationships
	Owner        User          `gorm:"foreignKey:ProjectOwner"`
	Creator      User          `gorm:"foreignKey:CreatedBy"`
	Requirements []Requirement `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Tasks        []Task        `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
