// Package progress reduces scoped sets of projects and tasks into the summary
// figures shown on the role dashboards.
package progress

import (
	"math"

	"github.com/one-numan/project-managment-saas/internal/models"
	"github.com/one-numan/project-managment-saas/internal/scope"
	"gorm.io/gorm"
)

const TaskPageSize = 5

// Percent is the integer-truncated completion ratio. A zero total is 0, never
// a division fault.
func Percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return completed * 100 / total
}

// ManagerOverview summarizes everything a project manager created.
type ManagerOverview struct {
	TotalProjects               int64            `json:"total_projects"`
	TotalTasks                  int64            `json:"total_tasks"`
	CompletedTasks              int64            `json:"completed_tasks"`
	PendingTasks                int64            `json:"pending_tasks"`
	ProjectsWithoutLead         int64            `json:"projects_without_lead"`
	ProjectsWithoutRequirements int64            `json:"projects_without_requirements"`
	RecentProjects              []models.Project `json:"recent_projects"`
	ProgressPercentage          int              `json:"progress_percentage"`
}

func ManagerStats(db *gorm.DB, managerID uint) (*ManagerOverview, error) {
	var overview ManagerOverview

	if err := db.Model(&models.Project{}).
		Where("created_by = ?", managerID).
		Count(&overview.TotalProjects).Error; err != nil {
		return nil, err
	}

	managerTasks := func() *gorm.DB {
		return db.Model(&models.Task{}).
			Joins("JOIN projects ON projects.id = tasks.project_id").
			Where("projects.created_by = ?", managerID)
	}

	if err := managerTasks().Count(&overview.TotalTasks).Error; err != nil {
		return nil, err
	}

	if err := managerTasks().
		Where("tasks.status = ?", models.StatusCompleted).
		Count(&overview.CompletedTasks).Error; err != nil {
		return nil, err
	}

	if err := managerTasks().
		Where("tasks.status <> ?", models.StatusCompleted).
		Count(&overview.PendingTasks).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Project{}).
		Where("created_by = ? AND project_owner IS NULL", managerID).
		Count(&overview.ProjectsWithoutLead).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Project{}).
		Where("created_by = ? AND NOT EXISTS (SELECT 1 FROM requirements WHERE requirements.project_id = projects.id)", managerID).
		Count(&overview.ProjectsWithoutRequirements).Error; err != nil {
		return nil, err
	}

	if err := db.Where("created_by = ?", managerID).
		Order("created_at DESC").
		Limit(5).
		Find(&overview.RecentProjects).Error; err != nil {
		return nil, err
	}

	overview.ProgressPercentage = Percent(int(overview.CompletedTasks), int(overview.TotalTasks))

	return &overview, nil
}

// LeadLoad is one row of the manager's lead distribution: how many of the
// manager's projects a given lead owns.
type LeadLoad struct {
	LeadName string `json:"lead_name"`
	Projects int64  `json:"projects"`
}

func LeadDistribution(db *gorm.DB, managerID uint) ([]LeadLoad, error) {
	var distribution []LeadLoad

	if err := db.Model(&models.Project{}).
		Select("users.name AS lead_name, COUNT(projects.id) AS projects").
		Joins("JOIN users ON users.id = projects.project_owner").
		Where("projects.created_by = ?", managerID).
		Group("users.name").
		Scan(&distribution).Error; err != nil {
		return nil, err
	}

	return distribution, nil
}

// ProjectBreakdown carries the figures for a single project detail page.
type ProjectBreakdown struct {
	TotalRequirements  int `json:"total_requirements"`
	TotalTasks         int `json:"total_tasks"`
	CompletedTasks     int `json:"completed_tasks"`
	PendingTasks       int `json:"pending_tasks"`
	ProgressPercentage int `json:"progress_percentage"`
}

func BreakdownProject(db *gorm.DB, projectID uint) (*ProjectBreakdown, error) {
	var requirements, total, completed int64

	if err := db.Model(&models.Requirement{}).
		Where("project_id = ?", projectID).
		Count(&requirements).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Task{}).
		Where("project_id = ?", projectID).
		Count(&total).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Task{}).
		Where("project_id = ? AND status = ?", projectID, models.StatusCompleted).
		Count(&completed).Error; err != nil {
		return nil, err
	}

	return &ProjectBreakdown{
		TotalRequirements:  int(requirements),
		TotalTasks:         int(total),
		CompletedTasks:     int(completed),
		PendingTasks:       int(total - completed),
		ProgressPercentage: Percent(int(completed), int(total)),
	}, nil
}

// ProjectProgress is one project on the lead dashboard: its tasks plus the
// derived counts.
type ProjectProgress struct {
	Project        models.Project `json:"project"`
	Tasks          []models.Task  `json:"tasks"`
	TotalTasks     int            `json:"total_tasks"`
	CompletedTasks int            `json:"completed_tasks"`
	Progress       int            `json:"progress"`
}

// LeadOverview summarizes every project owned by a lead plus the overall
// completion across all of them.
type LeadOverview struct {
	Projects        []ProjectProgress `json:"projects"`
	TotalProjects   int               `json:"total_projects"`
	TotalTasks      int               `json:"total_tasks"`
	CompletedTasks  int               `json:"completed_tasks"`
	PendingTasks    int               `json:"pending_tasks"`
	OverallProgress int               `json:"overall_progress"`
}

func LeadStats(db *gorm.DB, leadID uint) (*LeadOverview, error) {
	projects, err := scope.LeadProjects(db, leadID)
	if err != nil {
		return nil, err
	}

	overview := LeadOverview{TotalProjects: len(projects)}

	for _, project := range projects {
		tasks, err := scope.ProjectTasks(db, project.ID)
		if err != nil {
			return nil, err
		}

		completed := 0
		for _, task := range tasks {
			if task.Status == models.StatusCompleted {
				completed++
			}
		}

		overview.TotalTasks += len(tasks)
		overview.CompletedTasks += completed

		overview.Projects = append(overview.Projects, ProjectProgress{
			Project:        project,
			Tasks:          tasks,
			TotalTasks:     len(tasks),
			CompletedTasks: completed,
			Progress:       Percent(completed, len(tasks)),
		})
	}

	overview.PendingTasks = overview.TotalTasks - overview.CompletedTasks
	overview.OverallProgress = Percent(overview.CompletedTasks, overview.TotalTasks)

	return &overview, nil
}

// DeveloperOverview buckets the developer's assigned tasks by status.
type DeveloperOverview struct {
	Tasks      []models.Task `json:"tasks"`
	TotalTasks int           `json:"total_tasks"`
	Completed  int           `json:"completed"`
	InProgress int           `json:"in_progress"`
	NotStarted int           `json:"not_started"`
	Progress   int           `json:"progress"`
}

func DeveloperStats(db *gorm.DB, developerID uint) (*DeveloperOverview, error) {
	var tasks []models.Task

	if err := db.Where("assigned_to = ?", developerID).Find(&tasks).Error; err != nil {
		return nil, err
	}

	overview := DeveloperOverview{Tasks: tasks, TotalTasks: len(tasks)}

	for _, task := range tasks {
		switch task.Status {
		case models.StatusCompleted:
			overview.Completed++
		case models.StatusInProgress:
			overview.InProgress++
		case models.StatusNotStarted:
			overview.NotStarted++
		}
	}

	overview.Progress = Percent(overview.Completed, overview.TotalTasks)

	return &overview, nil
}

// TaskPage is one slice of the lead's task listing.
type TaskPage struct {
	Tasks      []models.Task `json:"tasks"`
	Page       int           `json:"page"`
	TotalTasks int64         `json:"total_tasks"`
	TotalPages int           `json:"total_pages"`
}

// PaginateTasks slices the lead's tasks, optionally filtered to one project,
// newest first. An empty result still reports one page.
func PaginateTasks(db *gorm.DB, leadID uint, projectID *uint, page int) (*TaskPage, error) {
	if page < 1 {
		page = 1
	}

	leadTasks := func() *gorm.DB {
		query := db.Model(&models.Task{}).
			Joins("JOIN projects ON projects.id = tasks.project_id").
			Where("projects.project_owner = ?", leadID)

		if projectID != nil {
			query = query.Where("tasks.project_id = ?", *projectID)
		}

		return query
	}

	var total int64

	if err := leadTasks().Count(&total).Error; err != nil {
		return nil, err
	}

	var tasks []models.Task

	if err := leadTasks().Order("tasks.created_at DESC").
		Offset((page - 1) * TaskPageSize).
		Limit(TaskPageSize).
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	totalPages := 1
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(TaskPageSize)))
	}

	return &TaskPage{
		Tasks:      tasks,
		Page:       page,
		TotalTasks: total,
		TotalPages: totalPages,
	}, nil
}

// Calendar buckets the lead's tasks by the date portion of their start time.
// Tasks with no start time are skipped.
func Calendar(db *gorm.DB, leadID uint) (map[string][]models.Task, error) {
	var tasks []models.Task

	if err := db.Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.project_owner = ? AND tasks.start_time IS NOT NULL", leadID).
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	calendar := make(map[string][]models.Task)

	for _, task := range tasks {
		if task.StartTime == nil {
			continue
		}
		day := task.StartTime.Format("2006-01-02")
		calendar[day] = append(calendar[day], task)
	}

	return calendar, nil
}
