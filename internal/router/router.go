package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/one-numan/project-managment-saas/internal/handlers"
	"github.com/one-numan/project-managment-saas/internal/middleware"
	"github.com/one-numan/project-managment-saas/internal/models"
	"github.com/one-numan/project-managment-saas/internal/types"
	"gorm.io/gorm"
)

func NewRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authHandler := handlers.NewAuthHandler(db)
	managerHandler := handlers.NewManagerHandler(db)
	leadHandler := handlers.NewLeadHandler(db)
	developerHandler := handlers.NewDeveloperHandler(db)
	wsHandler := handlers.NewWSHandler(db)

	r.GET("/api/health", handlers.HealthCheck)
	r.GET("/api/ws/:project_id", middleware.AuthMiddleware(db), wsHandler.Serve)

	r.GET("/login", authHandler.LoginPage)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	authed := r.Group("", middleware.AuthMiddleware(db))
	{
		authed.GET("/dashboard", authHandler.DashboardRedirect)
		authed.GET("/me", authHandler.Me)
	}

	manager := r.Group("/project-manager",
		middleware.AuthMiddleware(db),
		middleware.RequireRole(models.RoleProjectManager))
	{
		manager.GET("/dashboard", managerHandler.Dashboard)
		manager.GET("/projects", managerHandler.ListProjects)
		manager.GET("/projects/create", managerHandler.NewProject)
		manager.POST("/projects/create", managerHandler.CreateProject)
		manager.GET("/projects/:project_id", managerHandler.ProjectDetail)
		manager.GET("/projects/:project_id/requirements/create", managerHandler.NewRequirement)
		manager.POST("/projects/:project_id/requirements/create", managerHandler.CreateRequirement)
	}

	lead := r.Group("/lead-manager",
		middleware.AuthMiddleware(db),
		middleware.RequireRole(models.RoleLead))
	{
		lead.GET("/dashboard", leadHandler.Dashboard)
		lead.GET("/projects", leadHandler.ListProjects)
		lead.GET("/projects/:project_id", leadHandler.ProjectDetail)
		lead.GET("/projects/:project_id/tasks/create", leadHandler.NewTask)
		lead.POST("/projects/:project_id/tasks/create", leadHandler.CreateTask)
		lead.GET("/tasks/:task_id/edit", leadHandler.EditTask)
		lead.POST("/tasks/:task_id/edit", leadHandler.UpdateTask)
		lead.POST("/tasks/:task_id/delete", leadHandler.DeleteTask)
		lead.GET("/calendar", leadHandler.Calendar)
		lead.GET("/tasks", leadHandler.ListTasks)
	}

	developer := r.Group("/developer",
		middleware.AuthMiddleware(db),
		middleware.RequireRole(models.RoleDeveloper))
	{
		developer.GET("/dashboard", developerHandler.Dashboard)
		developer.GET("/tasks/:task_id/update", developerHandler.TaskDetail)
		developer.POST("/tasks/:task_id/update", developerHandler.UpdateStatus)
	}

	return r
}
