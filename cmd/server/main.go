package main

import (
	"errors"
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/taskforge/task-assignment-api/internal/config"
	"github.com/taskforge/task-assignment-api/internal/database"
	"github.com/taskforge/task-assignment-api/internal/handlers"
	"github.com/taskforge/task-assignment-api/internal/middleware"
	"github.com/taskforge/task-assignment-api/internal/models"
	"github.com/taskforge/task-assignment-api/internal/repository"
	"github.com/taskforge/task-assignment-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.MigrateDatabase(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Initialize repositories and services
	userRepo := repository.NewUserRepository(database.GetDB())
	taskRepo := repository.NewTaskRepository(database.GetDB())

	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	redisClient := goredis.NewClient(&goredis.Options{Addr: redisAddr})

	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo)
	taskService := services.NewTaskService(taskRepo, userRepo)
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, redisClient)

	bootstrapSuperAdmin(cfg, userService, logger)

	// Initialize Gin router
	r := gin.Default()
	r.LoadHTMLGlob("web/templates/*.html")

	// Setup session middleware with Redis
	store, err := redisStore.NewStore(
		10,                        // Redis pool size
		"tcp",                     // network type
		redisAddr,                 // Redis address from config
		"",                        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions("task_session", store))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService, logger)
	taskHandler := handlers.NewTaskHandler(taskService, userService, logger)
	userHandler := handlers.NewUserHandler(userService, logger)
	apiAuthHandler := handlers.NewAPIAuthHandler(authService, tokenService, logger)
	apiTaskHandler := handlers.NewAPITaskHandler(taskService, logger)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task Assignment API is running",
		})
	})

	// Public web routes
	r.GET("/", authHandler.LoginPage)
	r.POST("/", authHandler.Login)

	// Session-authenticated web routes
	web := r.Group("/")
	web.Use(middleware.RequireWebAuth())
	{
		web.GET("/dashboard", authHandler.Dashboard)
		web.GET("/logout", authHandler.Logout)

		web.GET("/register", middleware.RequireRole(models.RoleSuperAdmin), authHandler.RegisterPage)
		web.POST("/register", middleware.RequireRole(models.RoleSuperAdmin), authHandler.Register)

		web.GET("/create-task", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin), taskHandler.CreateTaskPage)
		web.POST("/create-task", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin), taskHandler.CreateTask)

		web.GET("/tasks", taskHandler.ListTasks)
		web.GET("/tasks/completed", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin), taskHandler.CompletedTasks)
		web.GET("/tasks/:id", taskHandler.TaskDetail)
		web.GET("/tasks/:id/edit", taskHandler.EditTaskPage)
		web.POST("/tasks/:id/edit", taskHandler.EditTask)
		web.GET("/tasks/:id/delete", middleware.RequireRole(models.RoleSuperAdmin), taskHandler.DeleteTaskPage)
		web.POST("/tasks/:id/delete", middleware.RequireRole(models.RoleSuperAdmin), taskHandler.DeleteTask)

		web.GET("/users", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin), userHandler.ListUsers)
		web.GET("/users/:id", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin), userHandler.UserDetail)
		web.GET("/users/:id/edit", middleware.RequireRole(models.RoleSuperAdmin), userHandler.EditUserPage)
		web.POST("/users/:id/edit", middleware.RequireRole(models.RoleSuperAdmin), userHandler.EditUser)
		web.GET("/users/:id/delete", middleware.RequireRole(models.RoleSuperAdmin), userHandler.DeleteUserPage)
		web.POST("/users/:id/delete", middleware.RequireRole(models.RoleSuperAdmin), userHandler.DeleteUser)
	}

	// API routes
	api := r.Group("/api")
	{
		api.POST("/login", apiAuthHandler.Login)
		api.POST("/token/refresh", apiAuthHandler.Refresh)

		api.GET("/my-tasks", middleware.RequireToken(tokenService), middleware.RequireAPIRole(models.RoleUser), apiTaskHandler.MyTasks)
		api.PATCH("/tasks/:id/update", middleware.RequireToken(tokenService), middleware.RequireAPIRole(models.RoleUser), apiTaskHandler.UpdateTask)
		api.PUT("/tasks/:id/update", middleware.RequireToken(tokenService), middleware.RequireAPIRole(models.RoleUser), apiTaskHandler.UpdateTask)
		api.GET("/tasks/completed", middleware.RequireToken(tokenService), middleware.RequireAPIRole(models.RoleAdmin, models.RoleSuperAdmin), apiTaskHandler.CompletedTasks)
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// bootstrapSuperAdmin creates the initial super admin account when the
// BOOTSTRAP_ADMIN_* environment variables are set. An existing username is
// left untouched.
func bootstrapSuperAdmin(cfg *config.Config, userService *services.UserService, logger *logrus.Logger) {
	if cfg.BootstrapUsername == "" || cfg.BootstrapPassword == "" {
		return
	}

	_, err := userService.CreateSuperAdmin(cfg.BootstrapUsername, cfg.BootstrapEmail, cfg.BootstrapPassword)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			return
		}
		logger.WithField("operation", "main.bootstrapSuperAdmin").WithError(err).Error("failed to create bootstrap super admin")
		return
	}

	logger.WithField("username", cfg.BootstrapUsername).Info("bootstrap super admin created")
}
