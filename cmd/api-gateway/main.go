package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/gym-schedule-api/api/swagger"
	"github.com/noah-isme/gym-schedule-api/internal/dto"
	"github.com/noah-isme/gym-schedule-api/internal/models"
	"github.com/noah-isme/gym-schedule-api/internal/repository"
	"github.com/noah-isme/gym-schedule-api/internal/service"
	"github.com/noah-isme/gym-schedule-api/pkg/cache"
	"github.com/noah-isme/gym-schedule-api/pkg/config"
	"github.com/noah-isme/gym-schedule-api/pkg/database"
	"github.com/noah-isme/gym-schedule-api/pkg/jobs"
	"github.com/noah-isme/gym-schedule-api/pkg/logger"
)

// @title Gym Schedule API
// @version 1.0.0
// @description Recurring weekly class schedules, session materialization, attendance and trainer conflict checks
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := database.NewPostgres(connectCtx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var cacheStore service.CacheStore
	if cfg.Sessions.CacheEnabled {
		client, err := cache.NewRedis(connectCtx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, session cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			cacheStore = repository.NewCacheRepository(client, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheStore, metrics, cfg.Sessions.CacheTTL, logr, cacheStore != nil)

	fallback, err := fallbackPattern(cfg.Scheduling.FallbackPattern)
	if err != nil {
		return fmt.Errorf("SCHEDULE_FALLBACK_PATTERN: %w", err)
	}

	validate := service.NewValidator()
	assignmentRepo := repository.NewClassAssignmentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	classRepo := repository.NewClassRepository(db)

	sessionSvc := service.NewSessionService(sessionRepo, assignmentRepo, rosterRepo, cacheSvc, metrics, service.SessionServiceConfig{
		HorizonDays: cfg.Scheduling.HorizonDays,
		Fallback:    fallback,
		CacheTTL:    cfg.Sessions.CacheTTL,
	}, logr)
	assignmentSvc := service.NewClassAssignmentService(assignmentRepo, classRepo, sessionSvc, metrics, validate, logr)

	worker := service.NewAttendanceWorker(attendanceRepo, sessionSvc, metrics, cfg.Attendance.Retries, logr)
	queue := jobs.NewQueue("attendance", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Attendance.Workers,
		MaxRetries: cfg.Attendance.Retries,
		RetryDelay: cfg.Attendance.RetryDelay,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()

	attendanceSvc := service.NewAttendanceService(attendanceRepo, rosterRepo, sessionSvc, queue, validate, logr)
	tokenSvc := service.NewTokenService(service.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		Expiry: cfg.JWT.Expiration,
	})

	router := newRouter(cfg, logr, routerDeps{
		metrics:     metrics,
		tokens:      tokenSvc,
		assignments: assignmentSvc,
		sessions:    sessionSvc,
		attendance:  attendanceSvc,
		db:          db,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

func fallbackPattern(text string) (models.WeeklyPattern, error) {
	if text == "" {
		return nil, nil
	}
	pattern, err := dto.ParseLegacyPattern(text)
	if err != nil {
		return nil, err
	}
	return pattern.Normalize()
}
