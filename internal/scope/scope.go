// Package scope restricts which projects and tasks a given identity may see or
// mutate. Every lookup combines the id filter with the caller's ownership
// filter in a single query, so a row that exists but is not owned surfaces as
// gorm.ErrRecordNotFound, indistinguishable from a row that does not exist.
package scope

import (
	"errors"

	"github.com/one-numan/project-managment-saas/internal/models"
	"gorm.io/gorm"
)

// ManagerProject returns the project only if the manager created it.
func ManagerProject(db *gorm.DB, managerID, projectID uint) (*models.Project, error) {
	var project models.Project

	if err := db.Where("id = ? AND created_by = ?", projectID, managerID).First(&project).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// ManagerProjects lists the manager's projects, newest first.
func ManagerProjects(db *gorm.DB, managerID uint) ([]models.Project, error) {
	var projects []models.Project

	if err := db.Where("created_by = ?", managerID).Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}

	return projects, nil
}

// LeadProject returns the project only if the lead owns its execution.
func LeadProject(db *gorm.DB, leadID, projectID uint) (*models.Project, error) {
	var project models.Project

	if err := db.Where("id = ? AND project_owner = ?", projectID, leadID).First(&project).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// LeadProjects lists the projects owned by the lead.
func LeadProjects(db *gorm.DB, leadID uint) ([]models.Project, error) {
	var projects []models.Project

	if err := db.Where("project_owner = ?", leadID).Find(&projects).Error; err != nil {
		return nil, err
	}

	return projects, nil
}

// LeadTask returns the task only if it belongs to a project the lead owns.
func LeadTask(db *gorm.DB, leadID, taskID uint) (*models.Task, error) {
	var task models.Task

	if err := db.Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("tasks.id = ? AND projects.project_owner = ?", taskID, leadID).
		First(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// DeveloperTask returns the task only if it is assigned to the developer.
func DeveloperTask(db *gorm.DB, developerID, taskID uint) (*models.Task, error) {
	var task models.Task

	if err := db.Where("id = ? AND assigned_to = ?", taskID, developerID).First(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// UsersByRole lists every user holding the given role, for assignment dropdowns.
func UsersByRole(db *gorm.DB, role models.Role) ([]models.User, error) {
	var users []models.User

	if err := db.Where("role = ?", role).Order("name").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

// UserHasRole reports whether the user exists and holds the given role.
func UserHasRole(db *gorm.DB, userID uint, role models.Role) (bool, error) {
	var user models.User

	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return user.Role == role, nil
}

// RequirementInProject reports whether the requirement belongs to the project.
// Tasks must keep project_id and requirement_id mutually consistent.
func RequirementInProject(db *gorm.DB, requirementID, projectID uint) (bool, error) {
	var count int64

	if err := db.Model(&models.Requirement{}).
		Where("id = ? AND project_id = ?", requirementID, projectID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// ProjectRequirements lists the requirements recorded against a project.
func ProjectRequirements(db *gorm.DB, projectID uint) ([]models.Requirement, error) {
	var requirements []models.Requirement

	if err := db.Where("project_id = ?", projectID).Find(&requirements).Error; err != nil {
		return nil, err
	}

	return requirements, nil
}

// ProjectTasks lists the tasks recorded against a project.
func ProjectTasks(db *gorm.DB, projectID uint) ([]models.Task, error) {
	var tasks []models.Task

	if err := db.Where("project_id = ?", projectID).Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}
