package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/one-numan/project-managment-saas/internal/models"
	"github.com/one-numan/project-managment-saas/internal/progress"
	"github.com/one-numan/project-managment-saas/internal/scope"
	"github.com/one-numan/project-managment-saas/internal/utils"
	"gorm.io/gorm"
)

type CreateTaskRequest struct {
	Task          string `form:"task" json:"task" binding:"required"`
	RequirementID uint   `form:"requirement_id" json:"requirement_id" binding:"required"`
	DeveloperID   uint   `form:"developer_id" json:"developer_id" binding:"required"`
	StartTime     string `form:"start_time" json:"start_time"`
	EndTime       string `form:"end_time" json:"end_time"`
}

type EditTaskRequest struct {
	TaskName    string `form:"task_name" json:"task_name" binding:"required"`
	DeveloperID uint   `form:"developer_id" json:"developer_id" binding:"required"`
	Status      string `form:"status" json:"status" binding:"required"`
}

type LeadHandler struct {
	DB *gorm.DB
}

func NewLeadHandler(db *gorm.DB) *LeadHandler {
	return &LeadHandler{DB: db}
}

func (h *LeadHandler) Dashboard(ctx *gin.Context) {
	leadID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	overview, err := progress.LeadStats(h.DB, leadID)

	if err != nil {
		log.Printf("Failed to compute lead stats: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
		return
	}

	ctx.JSON(http.StatusOK, overview)
}

func (h *LeadHandler) ListProjects(ctx *gin.Context) {
	leadID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projects, err := scope.LeadProjects(h.DB, leadID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	response := make([]ProjectResponse, 0, len(projects))

	for _, project := range projects {
		response = append(response, ProjectResponse{
			ID:           project.ID,
			Name:         project.Name,
			ProjectOwner: project.ProjectOwner,
			CreatedBy:    project.CreatedBy,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *LeadHandler) ProjectDetail(ctx *gin.Context) {
	leadID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := parseID(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Project ID"})
		return
	}

	project, err := scope.LeadProject(h.DB, leadID, projectID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	tasks, err := scope.ProjectTasks(h.DB, project.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	requirements, err := scope.ProjectRequirements(h.DB, project.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve requirements"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"project": ProjectResponse{
			ID:           project.ID,
			Name:         project.Name,
			ProjectOwner: project.ProjectOwner,
			CreatedBy:    project.CreatedBy,
		},
		"requirements": requirements,
		"tasks":        tasks,
	})
}

// NewTask serves the create-task form data: the project's requirements and the
// assignable developers.
func (h *LeadHandler) NewTask(ctx *gin.Context) {
	leadID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := parseID(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Project ID"})
		return
	}

	project, err := scope.LeadProject(h.DB, leadID, projectID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	developers, err := scope.UsersByRole(h.DB, models.RoleDeveloper)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve developers"})
		return
	}

	requirements, err := scope.ProjectRequirements(h.DB, project.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve requirements"})
		return
	}

	devResponse := make([]UserResponse, 0, len(developers))

	for _, dev := range developers {
		devResponse = append(devResponse, UserResponse{
			ID:    dev.ID,
			Name:  dev.Name,
			Email: dev.Email,
			Role:  dev.Role,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"project": ProjectResponse{
			ID:           project.ID,
			Name:         project.Name,
			ProjectOwner: project.ProjectOwner,
			CreatedBy:    project.CreatedBy,
		},
		"developers":   devResponse,
		"requirements": requirements,
	})
}

func (h *LeadHandler) CreateTask(ctx *gin.Context) {
	leadID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := parseID(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Project ID"})
		return
	}

	project, err := scope.LeadProject(h.DB, leadID, projectID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	var req CreateTaskRequest

	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	inProject, err := scope.RequirementInProject(h.DB, req.RequirementID, project.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify requirement"})
		return
	}

	if !inProject {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Requirement does not belong to this project"})
		return
	}

	isDeveloper, err := scope.UserHasRole(h.DB, req.DeveloperID, models.RoleDeveloper)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify assignee"})
		return
	}

	if !isDeveloper {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Assignee must be a developer"})
		return
	}

	developerID := req.DeveloperID

	task := models.Task{
		Task:          req.Task,
		ProjectID:     project.ID,
		RequirementID: req.RequirementID,
		CreatedBy:     leadID,
		AssignedTo:    &developerID,
		Status:        models.StatusNotStarted,
	}

	if req.StartTime != "" {
		start, err := parseScheduleTime(req.StartTime)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start time"})
			return
		}
		task.StartTime = &start
	}

	if req.EndTime != "" {
		end, err := parseScheduleTime(req.EndTime)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end time"})
			return
		}
		task.EndTime = &end
	}

	if err := h.DB.Create(&task).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	BroadcastRefresh(project.ID)

	ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/lead-manager/projects/%d/tasks/create", project.ID))
}

// EditTask serves the edit-task form data.
func (h *LeadHandler) EditTask(ctx *gin.Context) {
	leadID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := parseID(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Task ID"})
		return
	}

	task, err := scope.LeadTask(h.DB, leadID, taskID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return
	}

	developers, err := scope.UsersByRole(h.DB, models.RoleDeveloper)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve developers"})
		return
	}

	devResponse := make([]UserResponse, 0, len(developers))

	for _, dev := range developers {
		devResponse = append(devResponse, UserResponse{
			ID:    dev.ID,
			Name:  dev.Name,
			Email: dev.Email,
			Role:  dev.Role,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"task":       task,
		"developers": devResponse,
	})
}

func (h *LeadHandler) UpdateTask(ctx *gin.Context) {
	leadID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := parseID(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Task ID"})
		return
	}

	task, err := scope.LeadTask(h.DB, leadID, taskID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return
	}

	var req EditTaskRequest

	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	status, err := models.ParseTaskStatus(req.Status)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	isDeveloper, err := scope.UserHasRole(h.DB, req.DeveloperID, models.RoleDeveloper)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify assignee"})
		return
	}

	if !isDeveloper {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Assignee must be a developer"})
		return
	}

	developerID := req.DeveloperID

	task.Task = req.TaskName
	task.AssignedTo = &developerID
	task.Status = status

	if err := h.DB.Save(task).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	BroadcastRefresh(task.ProjectID)

	ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/lead-manager/projects/%d", task.ProjectID))
}

func (h *LeadHandler) DeleteTask(ctx *gin.Context) {
	leadID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := parseID(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Task ID"})
		return
	}

	task, err := scope.LeadTask(h.DB, leadID, taskID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return
	}

	projectID := task.ProjectID

	if err := h.DB.Delete(task).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	BroadcastRefresh(projectID)

	ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/lead-manager/projects/%d", projectID))
}

// Calendar groups the lead's scheduled tasks by start date.
func (h *LeadHandler) Calendar(ctx *gin.Context) {
	leadID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	calendar, err := progress.Calendar(h.DB, leadID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build calendar"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"calendar": calendar})
}

// ListTasks serves the paginated task listing, optionally filtered to one
// project via ?project_id=.
func (h *LeadHandler) ListTasks(ctx *gin.Context) {
	leadID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	page := 1

	if pageStr := ctx.Query("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
			return
		}
		page = parsed
	}

	var projectID *uint

	if projectStr := ctx.Query("project_id"); projectStr != "" {
		parsed, err := strconv.ParseUint(projectStr, 10, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Project ID"})
			return
		}
		id := uint(parsed)
		projectID = &id
	}

	taskPage, err := progress.PaginateTasks(h.DB, leadID, projectID, page)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	projects, err := scope.LeadProjects(h.DB, leadID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"tasks":       taskPage.Tasks,
		"page":        taskPage.Page,
		"total_tasks": taskPage.TotalTasks,
		"total_pages": taskPage.TotalPages,
		"projects":    projects,
	})
}

func parseScheduleTime(value string) (time.Time, error) {
	layouts := []string{
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
		time.RFC3339,
	}

	var lastErr error

	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}

	return time.Time{}, lastErr
}
