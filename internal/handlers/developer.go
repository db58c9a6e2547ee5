package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/one-numan/project-managment-saas/internal/models"
	"github.com/one-numan/project-managment-saas/internal/progress"
	"github.com/one-numan/project-managment-saas/internal/scope"
	"github.com/one-numan/project-managment-saas/internal/utils"
	"gorm.io/gorm"
)

type UpdateStatusRequest struct {
	Status string `form:"status" json:"status" binding:"required"`
}

type DeveloperHandler struct {
	DB *gorm.DB
}

func NewDeveloperHandler(db *gorm.DB) *DeveloperHandler {
	return &DeveloperHandler{DB: db}
}

func (h *DeveloperHandler) Dashboard(ctx *gin.Context) {
	developerID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	overview, err := progress.DeveloperStats(h.DB, developerID)

	if err != nil {
		log.Printf("Failed to compute developer stats: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
		return
	}

	ctx.JSON(http.StatusOK, overview)
}

// TaskDetail serves the status-update form data for a task assigned to the
// developer.
func (h *DeveloperHandler) TaskDetail(ctx *gin.Context) {
	developerID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := parseID(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Task ID"})
		return
	}

	task, err := scope.DeveloperTask(h.DB, developerID, taskID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"task": task,
		"statuses": []models.TaskStatus{
			models.StatusNotStarted,
			models.StatusInProgress,
			models.StatusCompleted,
		},
	})
}

// UpdateStatus changes the status of a task assigned to the developer. Status
// is the only field a developer may touch.
func (h *DeveloperHandler) UpdateStatus(ctx *gin.Context) {
	developerID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := parseID(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Task ID"})
		return
	}

	task, err := scope.DeveloperTask(h.DB, developerID, taskID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return
	}

	var req UpdateStatusRequest

	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	status, err := models.ParseTaskStatus(req.Status)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	if err := h.DB.Model(task).Update("status", status).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	BroadcastRefresh(task.ProjectID)

	ctx.Redirect(http.StatusSeeOther, "/developer/dashboard")
}
