package models

import (
	"fmt"
	"time"
)

// Role determines which parts of the tracker a user may see and mutate.
type Role string

const (
	RoleProjectManager Role = "PROJECT_MANAGER"
	RoleLead           Role = "LEAD"
	RoleDeveloper      Role = "DEVELOPER"
)

// ParseRole maps a role name to its Role value.
func ParseRole(name string) (Role, error) {
	switch Role(name) {
	case RoleProjectManager, RoleLead, RoleDeveloper:
		return Role(name), nil
	}
	return "", fmt.Errorf("unknown role %q", name)
}

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:255;not null"`
	Role         Role   `gorm:"size:32;not null;index"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
