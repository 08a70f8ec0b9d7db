// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"registrar/internal/core/security"
	"registrar/internal/domain/audit"
	"registrar/internal/domain/auth"
	"registrar/internal/domain/course"
	"registrar/internal/domain/enrollment"
	"registrar/internal/domain/professor"
	"registrar/internal/domain/student"
	"registrar/internal/infrastructure/http/v1/handlers"
	"registrar/internal/infrastructure/http/v1/middleware"
	"registrar/internal/metadata"
	"registrar/pkg/logger"
)

// Services are the domain services the API exposes.
type Services struct {
	Auth        *auth.Service
	Courses     *course.Service
	Students    *student.Service
	Professors  *professor.Service
	Enrollments *enrollment.Service
	Audit       *audit.Service
}

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Policies are the compiled route policies
	Policies *security.PolicySet

	Services Services

	// MetadataRegistry stores entity definitions
	MetadataRegistry *metadata.Registry

	// DB backs /health/ready; nil in memory mode
	DB   handlers.Pinger
	Info handlers.AppInfo

	// Debug enables gin debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.Policies == nil {
		cfg.Policies = security.MustDefault()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Info)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	api := router.Group("/api/v1")
	{
		registerAuthRoutes(api, cfg)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerEntityRoutes(protected, cfg)
		registerEnrollmentRoutes(protected, cfg)
		registerAuditRoutes(protected, cfg)
		registerMetaRoutes(protected, cfg)
	}

	return router
}

func policy(cfg RouterConfig, name string) gin.HandlerFunc {
	return middleware.RequirePolicy(cfg.Policies, name)
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewAuthHandler(handlers.NewBaseHandler(), cfg.Services.Auth)

	public := rg.Group("/auth")
	public.POST("/login", h.Login)
	public.POST("/refresh", h.Refresh)

	protected := rg.Group("/auth")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	protected.GET("/me", policy(cfg, security.PolicyAuthenticated), h.Me)
	protected.POST("/logout", policy(cfg, security.PolicyAuthenticated), h.Logout)
	protected.POST("/register", policy(cfg, security.PolicyAdmin), h.Register)
}

// registerEntityRoutes registers course, student and professor endpoints.
func registerEntityRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	base := handlers.NewBaseHandler()
	s := cfg.Services

	// --- COURSES ---
	{
		h := handlers.NewCourseHandler(base, s.Courses, s.Enrollments)
		group := rg.Group("/courses")
		RegisterCRUDRoutes(group, h, cfg.Policies, security.PolicyAuthenticated, security.PolicyAdmin)
		group.PUT("/:id/professor", policy(cfg, security.PolicyAdmin), h.AssignProfessor)
		group.GET("/:id/enrollments", policy(cfg, security.PolicyStaff), h.Enrollments)
	}

	// --- STUDENTS ---
	{
		h := handlers.NewStudentHandler(base, s.Students, s.Enrollments, cfg.Policies)
		group := rg.Group("/students")
		RegisterCRUDRoutes(group, h, cfg.Policies, security.PolicyStaff, security.PolicyAdmin)
		// owner_or_staff is checked in the handler against the loaded student
		group.GET("/:id/enrollments", policy(cfg, security.PolicyAuthenticated), h.Enrollments)
		group.GET("/:id/transcript", policy(cfg, security.PolicyAuthenticated), h.Transcript)
	}

	// --- PROFESSORS ---
	{
		h := handlers.NewProfessorHandler(base, s.Professors)
		RegisterCRUDRoutes(rg.Group("/professors"), h, cfg.Policies, security.PolicyAuthenticated, security.PolicyAdmin)
	}
}

// registerEnrollmentRoutes registers enroll, drop and grade.
func registerEnrollmentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewEnrollmentHandler(handlers.NewBaseHandler(), cfg.Services.Enrollments)

	group := rg.Group("/enrollments")
	group.POST("", policy(cfg, security.PolicyAdmin), h.Enroll)
	group.GET("/:id", policy(cfg, security.PolicyStaff), h.Get)
	group.DELETE("/:id", policy(cfg, security.PolicyAdmin), h.Drop)
	group.PUT("/:id/grade", policy(cfg, security.PolicyStaff), h.Grade)
}

// registerAuditRoutes registers change history endpoints.
func registerAuditRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.Services.Audit == nil {
		return
	}
	h := handlers.NewAuditHandler(handlers.NewBaseHandler(), cfg.Services.Audit)
	rg.GET("/audit/:entity/:id", policy(cfg, security.PolicyAdmin), h.History)
}

// registerMetaRoutes registers metadata/schema endpoints.
func registerMetaRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.MetadataRegistry == nil {
		return
	}

	h := handlers.NewMetadataHandler(handlers.NewBaseHandler(), cfg.MetadataRegistry)
	meta := rg.Group("/meta")
	{
		meta.GET("/entities", policy(cfg, security.PolicyAuthenticated), h.ListEntities)
		meta.GET("/entities/:name", policy(cfg, security.PolicyAuthenticated), h.GetEntity)
	}
}
