package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/one-numan/project-managment-saas/internal/models"
	"github.com/one-numan/project-managment-saas/internal/progress"
	"github.com/one-numan/project-managment-saas/internal/scope"
	"github.com/one-numan/project-managment-saas/internal/utils"
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	Name   string `form:"name" json:"name" binding:"required"`
	LeadID uint   `form:"lead_id" json:"lead_id" binding:"required"`
}

type CreateRequirementRequest struct {
	Requirement string `form:"requirement" json:"requirement" binding:"required"`
}

type ProjectResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	ProjectOwner uint   `json:"project_owner"`
	CreatedBy    uint   `json:"created_by"`
}

type ManagerHandler struct {
	DB *gorm.DB
}

func NewManagerHandler(db *gorm.DB) *ManagerHandler {
	return &ManagerHandler{DB: db}
}

func (h *ManagerHandler) Dashboard(ctx *gin.Context) {
	managerID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	overview, err := progress.ManagerStats(h.DB, managerID)

	if err != nil {
		log.Printf("Failed to compute manager stats: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
		return
	}

	distribution, err := progress.LeadDistribution(h.DB, managerID)

	if err != nil {
		log.Printf("Failed to compute lead distribution: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"overview":          overview,
		"lead_distribution": distribution,
	})
}

func (h *ManagerHandler) ListProjects(ctx *gin.Context) {
	managerID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projects, err := scope.ManagerProjects(h.DB, managerID)

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

// NewProject serves the create-project form data: the leads a project can be
// handed to.
func (h *ManagerHandler) NewProject(ctx *gin.Context) {
	leads, err := scope.UsersByRole(h.DB, models.RoleLead)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve leads"})
		return
	}

	response := make([]UserResponse, 0, len(leads))

	for _, lead := range leads {
		response = append(response, UserResponse{
			ID:    lead.ID,
			Name:  lead.Name,
			Email: lead.Email,
			Role:  lead.Role,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"leads": response})
}

func (h *ManagerHandler) CreateProject(ctx *gin.Context) {
	managerID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateProjectRequest

	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	isLead, err := scope.UserHasRole(h.DB, req.LeadID, models.RoleLead)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify lead"})
		return
	}

	if !isLead {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Project owner must be a lead"})
		return
	}

	project := models.Project{
		Name:         req.Name,
		CreatedBy:    managerID,
		ProjectOwner: req.LeadID,
	}

	if err := h.DB.Create(&project).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/project-manager/dashboard")
}

func (h *ManagerHandler) ProjectDetail(ctx *gin.Context) {
	managerID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := parseID(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Project ID"})
		return
	}

	project, err := scope.ManagerProject(h.DB, managerID, projectID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	breakdown, err := progress.BreakdownProject(h.DB, project.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute progress"})
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
		"breakdown":    breakdown,
	})
}

// NewRequirement serves the create-requirement form data for an owned project.
func (h *ManagerHandler) NewRequirement(ctx *gin.Context) {
	managerID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := parseID(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Project ID"})
		return
	}

	project, err := scope.ManagerProject(h.DB, managerID, projectID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"project": ProjectResponse{
			ID:           project.ID,
			Name:         project.Name,
			ProjectOwner: project.ProjectOwner,
			CreatedBy:    project.CreatedBy,
		},
	})
}

func (h *ManagerHandler) CreateRequirement(ctx *gin.Context) {
	managerID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := parseID(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Project ID"})
		return
	}

	project, err := scope.ManagerProject(h.DB, managerID, projectID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	var req CreateRequirementRequest

	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	requirement := models.Requirement{
		Requirement: req.Requirement,
		ProjectID:   project.ID,
		CreatedBy:   managerID,
	}

	if err := h.DB.Create(&requirement).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create requirement"})
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/project-manager/projects/"+strconv.FormatUint(uint64(project.ID), 10))
}

func parseID(ctx *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param(param), 10, 64)

	if err != nil {
		return 0, err
	}

	return uint(id), nil
}
