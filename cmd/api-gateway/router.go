package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-schedule-api/internal/handler"
	"github.com/noah-isme/gym-schedule-api/internal/middleware"
	"github.com/noah-isme/gym-schedule-api/internal/models"
	"github.com/noah-isme/gym-schedule-api/internal/service"
	"github.com/noah-isme/gym-schedule-api/pkg/config"
	"github.com/noah-isme/gym-schedule-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/gym-schedule-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/gym-schedule-api/pkg/middleware/requestid"
)

type routerDeps struct {
	metrics     *service.MetricsService
	tokens      *service.TokenService
	assignments *service.ClassAssignmentService
	sessions    *service.SessionService
	attendance  *service.AttendanceService
	db          handler.Pinger
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))

	health := handler.NewHealthHandler(deps.metrics, deps.db)
	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/metrics", health.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	assignmentHandler := handler.NewClassAssignmentHandler(deps.assignments)
	sessionHandler := handler.NewSessionHandler(deps.sessions, deps.attendance)
	attendanceHandler := handler.NewAttendanceHandler(deps.attendance)

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTrainer)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(deps.tokens), middleware.WithResponseMeta())

	api.POST("/class-assignments", staff, middleware.Audit(logr, "create", "class_assignment"), assignmentHandler.Create)
	api.GET("/class-assignments/:id", assignmentHandler.Get)
	api.PUT("/class-assignments/:id", staff, middleware.Audit(logr, "update", "class_assignment"), assignmentHandler.Update)
	api.GET("/trainers/:id/class-assignments", middleware.RequireRoles(models.RoleAdmin, middleware.SelfParam("id")), assignmentHandler.ListByTrainer)
	api.POST("/schedules/conflict-check", staff, assignmentHandler.CheckConflict)

	api.GET("/classes/:id/sessions", sessionHandler.List)
	api.POST("/classes/:id/sessions/:number/open", staff, sessionHandler.Open)

	api.GET("/classes/:id/sessions/:number/attendance", staff, attendanceHandler.Roster)
	api.PUT("/classes/:id/sessions/:number/attendance", staff, middleware.Audit(logr, "mark", "attendance"), attendanceHandler.Mark)
	api.POST("/classes/:id/sessions/:number/attendance/bulk", staff, middleware.Audit(logr, "bulk_mark", "attendance"), attendanceHandler.BulkMark)
	api.GET("/classes/:id/sessions/:number/attendance/export", staff, attendanceHandler.Export)

	return r
}
