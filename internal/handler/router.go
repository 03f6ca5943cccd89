package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/talentia-hr/vacaciones-api/api/swagger"
	"github.com/talentia-hr/vacaciones-api/internal/middleware"
	"github.com/talentia-hr/vacaciones-api/internal/models"
	"github.com/talentia-hr/vacaciones-api/internal/service"
	"github.com/talentia-hr/vacaciones-api/pkg/config"
	"github.com/talentia-hr/vacaciones-api/pkg/logger"
	"github.com/talentia-hr/vacaciones-api/pkg/middleware/cors"
	"github.com/talentia-hr/vacaciones-api/pkg/middleware/requestid"
)

// RouterDeps bundles everything the HTTP router needs.
type RouterDeps struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *sqlx.DB
	Redis    *redis.Client
	Metrics  *service.MetricsService
	Auth     *service.AuthService
	Users    userLoaderRepo
	Vacation vacationService
	Setting  settingService
	User     userService
	Report   reportService
	Version  string
}

type userLoaderRepo interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// NewRouter wires middleware and routes for the API.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.Middleware())
	router.Use(logger.GinMiddleware(deps.Logger))
	router.Use(cors.New(deps.Config.CORS.AllowedOrigins))
	router.Use(middleware.Metrics(deps.Metrics))

	healthHandler := NewHealthHandler(deps.DB, deps.Redis, deps.Version)
	router.GET("/health", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	if deps.Config.Env != config.EnvProduction {
		router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := NewAuthHandler(deps.Auth, deps.Logger)
	vacationHandler := NewVacationHandler(deps.Vacation, deps.Logger)
	settingHandler := NewSettingHandler(deps.Setting, deps.Logger)
	userHandler := NewUserHandler(deps.User, deps.Logger)
	reportHandler := NewReportHandler(deps.Report, deps.Logger)

	authenticate := middleware.Authenticate(deps.Auth, deps.Users, deps.Logger)

	api := router.Group(deps.Config.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authenticate, authHandler.Logout)
			auth.PUT("/password", authenticate, authHandler.ChangePassword)
		}

		vacaciones := api.Group("/vacaciones", authenticate)
		{
			createChain := []gin.HandlerFunc{}
			if deps.Config.RateLimit.Enabled && deps.Redis != nil {
				createChain = append(createChain, middleware.RateLimit(deps.Redis, middleware.RateLimitConfig{
					Requests: deps.Config.RateLimit.Requests,
					Window:   deps.Config.RateLimit.Window,
				}, deps.Metrics, deps.Logger))
			}
			createChain = append(createChain, vacationHandler.Create)

			vacaciones.POST("", createChain...)
			vacaciones.GET("", vacationHandler.List)
			vacaciones.GET("/:id", vacationHandler.Get)
			vacaciones.PUT("/:id", vacationHandler.UpdateState)
		}

		configGroup := api.Group("/config", authenticate)
		{
			configGroup.GET("", settingHandler.List)
			configGroup.POST("/batch", settingHandler.GetBatch)
			configGroup.GET("/:clave", settingHandler.Get)

			hrOnly := middleware.RequireRoles(models.RoleRRHH)
			configGroup.POST("", hrOnly, settingHandler.Create)
			configGroup.PUT("", hrOnly, settingHandler.BulkUpdate)
			configGroup.PUT("/:clave", hrOnly, settingHandler.Update)
			configGroup.DELETE("/:clave", hrOnly, settingHandler.Delete)
		}

		users := api.Group("/users", authenticate)
		{
			approvers := middleware.RequireRoles(models.RoleRRHH, models.RoleJefeSuperior)
			hrOnly := middleware.RequireRoles(models.RoleRRHH)

			users.GET("", approvers, userHandler.List)
			users.GET("/:id", middleware.RequireSelfOrRoles("id", models.RoleRRHH, models.RoleJefeSuperior), userHandler.Get)
			users.POST("", hrOnly, userHandler.Create)
			users.PUT("/:id", hrOnly, userHandler.Update)
			users.DELETE("/:id", hrOnly, userHandler.Delete)
		}

		reportes := api.Group("/reportes", authenticate, middleware.RequireRoles(models.RoleRRHH, models.RoleJefeSuperior))
		{
			reportes.GET("/resumen", reportHandler.Summary)
			reportes.GET("/usuarios", reportHandler.UserSummary)
			reportes.GET("/mensual", reportHandler.Monthly)
			reportes.GET("/export", reportHandler.Export)
		}
	}

	return router
}
