// Package server wires repositories, services and handlers into the HTTP router.
package server

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-management-api/internal/config"
	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/handlers"
	"github.com/yukikurage/project-management-api/internal/mail"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/security"
	"github.com/yukikurage/project-management-api/internal/services"
	"gorm.io/gorm"
)

// Dependencies are the external resources the router is built on
type Dependencies struct {
	Config       *config.Config
	Logger       *logrus.Logger
	DB           *gorm.DB
	Indicators   repository.IndicatorRepository
	Mailer       mail.Mailer
	SessionStore sessions.Store
}

// NewRouter builds the gin engine serving the /api routes and /health
func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger

	// Repositories
	userRepo := repository.NewUserRepository(deps.DB)
	projectRepo := repository.NewProjectRepository(deps.DB)
	taskRepo := repository.NewTaskRepository(deps.DB)

	// Services
	passwords := security.NewPasswordManager(cfg.BcryptCost)
	tokens := security.NewResetTokenManager(cfg.PasswordResetSecret, cfg.PasswordResetTimeout)
	hook := services.NewLogHook(log)

	authService := services.NewAuthService(userRepo, passwords, log)
	userService := services.NewUserService(userRepo, passwords)
	projectService := services.NewProjectService(projectRepo, hook)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, hook)
	resetService := services.NewPasswordResetService(userRepo, tokens, passwords, deps.Mailer, services.PasswordResetConfig{
		FrontendURL: cfg.FrontendURL,
		SiteName:    cfg.MailFromName,
	}, log)
	dashboardService := services.NewDashboardService(deps.Indicators, userRepo, projectRepo, taskRepo, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	resetHandler := handlers.NewPasswordResetHandler(resetService)
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())
	r.Use(sessions.Sessions(constants.SessionCookieName, deps.SessionStore))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Project Management API is running",
		})
	})

	api := r.Group("/api")
	{
		// Public routes
		api.POST("/login/", authHandler.Login)
		api.POST("/password-reset/", resetHandler.RequestReset)
		api.POST("/password-reset-confirm/", resetHandler.ConfirmReset)
		api.GET("/dashboard-stats/", dashboardHandler.ListIndicators)
		api.GET("/dashboard-stats/:id/", dashboardHandler.GetIndicator)

		authed := api.Group("", middleware.RequireAuth(authService))
		authed.GET("/me/", authHandler.GetCurrentUser)
		authed.POST("/logout/", authHandler.Logout)

		// User routes (superuser only)
		users := authed.Group("/users", middleware.RequireSuperuser())
		{
			users.GET("/", userHandler.ListUsers)
			users.POST("/", userHandler.CreateUser)
			users.GET("/:id/", userHandler.GetUser)
			users.PUT("/:id/", userHandler.UpdateUser)
			users.PATCH("/:id/", userHandler.UpdateUser)
			users.DELETE("/:id/", userHandler.DeleteUser)
		}

		// Project routes
		projects := authed.Group("/projects")
		{
			projects.GET("/", projectHandler.ListProjects)
			projects.POST("/", projectHandler.CreateProject)

			project := projects.Group("/:id", middleware.RequireProjectAccess(projectService))
			project.GET("/", projectHandler.GetProject)
			project.PUT("/", projectHandler.UpdateProject)
			project.PATCH("/", projectHandler.UpdateProject)
			project.DELETE("/", projectHandler.DeleteProject)
		}

		// Task routes
		tasks := authed.Group("/tasks")
		{
			tasks.GET("/", taskHandler.ListTasks)
			tasks.POST("/", taskHandler.CreateTask)

			task := tasks.Group("/:id", middleware.RequireTaskAccess(taskService))
			task.GET("/", taskHandler.GetTask)
			task.PUT("/", taskHandler.UpdateTask)
			task.PATCH("/", taskHandler.UpdateTask)
			task.DELETE("/", taskHandler.DeleteTask)
		}
	}

	return r
}
