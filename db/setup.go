package db

import (
	"github.com/one-numan/project-managment-saas/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

func Migrate(db *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Project{},
		&models.Requirement{},
		&models.Task{},
	}

	migrator := db.Migrator()

	for _, table := range tables {
		if !migrator.HasTable(table) {
			if err := db.AutoMigrate(table); err != nil {
				return err
			}
		}
	}

	return nil
}

// Seed creates one account per role when the users table is empty. Accounts are
// otherwise provisioned externally; there is no self-registration flow.
func Seed(db *gorm.DB) error {
	var count int64

	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	seeds := []struct {
		name     string
		email    string
		password string
		role     models.Role
	}{
		{"Priya Manager", "manager@example.com", "manager123", models.RoleProjectManager},
		{"Lena Lead", "lead@example.com", "lead1234", models.RoleLead},
		{"Dev Kumar", "developer@example.com", "developer123", models.RoleDeveloper},
	}

	for _, s := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		user := models.User{
			Name:         s.name,
			Email:        s.email,
			PasswordHash: string(hash),
			Role:         s.role,
		}

		if err := db.Create(&user).Error; err != nil {
			return err
		}
	}

	return nil
}
