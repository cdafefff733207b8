package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/handler"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/cache"
	"github.com/noah-isme/timetable-api/pkg/config"
	"github.com/noah-isme/timetable-api/pkg/database"
	"github.com/noah-isme/timetable-api/pkg/export"
	"github.com/noah-isme/timetable-api/pkg/jobs"
	"github.com/noah-isme/timetable-api/pkg/lock"
	"github.com/noah-isme/timetable-api/pkg/logger"
	"github.com/noah-isme/timetable-api/pkg/signer"
)

// @title Department Timetable API
// @version 1.0.0
// @description Session placement, conflict detection and completion tracking for a department timetable.
// @BasePath /api/v1
// @schemes http https
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Migrations.AutoMigrate {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, falling back to in-process lock and no grid cache", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	validate := validator.New()

	gridCache := service.NewGridCache(nil, metrics, cfg.Cache.TTL, logr, false)
	if redisClient != nil {
		gridCache = service.NewGridCache(repository.NewCacheRepository(redisClient, cfg.Cache.Prefix), metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)
	}

	baseSessions := repository.NewSessionRepository(db)
	baseTeachers := repository.NewTeacherRepository(db)

	conflictSvc := service.NewConflictService(baseSessions, baseTeachers, logr).WithObserver(metrics)
	monitor := service.NewConflictMonitor(conflictSvc, logr)
	var monitorQueue *jobs.Queue
	if cfg.Monitor.Enabled {
		monitorQueue = jobs.NewQueue("conflict-monitor", monitor.Handle, jobs.QueueConfig{
			Workers:    cfg.Monitor.Workers,
			MaxRetries: cfg.Monitor.MaxRetries,
			RetryDelay: cfg.Monitor.RetryDelay,
			Logger:     logr,
		})
		monitor.WithQueue(monitorQueue)
		monitorQueue.Start(ctx)
		defer monitorQueue.Stop()
	}

	onChange := repository.Hooks(gridCache.Invalidate, monitor.Schedule)
	sessionRepo := repository.NewNotifyingSessionRepository(baseSessions, onChange)
	subjectRepo := repository.NewNotifyingSubjectRepository(repository.NewSubjectRepository(db), onChange)
	teacherRepo := repository.NewNotifyingTeacherRepository(baseTeachers, onChange)
	userRepo := repository.NewUserRepository(db)

	locker := newLocker(cfg.Scheduler, redisClient)

	availabilitySvc := service.NewAvailabilityService(sessionRepo, validate, logr)
	plannerSvc := service.NewPlannerService(sessionRepo, subjectRepo, teacherRepo, availabilitySvc, locker, cfg.Scheduler.LockPrefix, validate, logr).WithObserver(metrics)
	completionSvc := service.NewCompletionService(subjectRepo, sessionRepo, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, teacherRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, subjectRepo, sessionRepo, validate, logr)
	userSvc := service.NewUserService(userRepo, teacherRepo, validate, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	timetableSvc := service.NewTimetableService(sessionRepo, subjectRepo, teacherRepo, logr).WithCache(gridCache)
	exportSvc := service.NewExportService(
		timetableSvc,
		teacherRepo,
		export.NewCSVExporter(),
		export.NewPDFExporter(),
		export.NewXLSXExporter(),
		export.NewICSExporter("-//timetable-api//Department Timetable//EN"),
		service.ExportConfig{
			TermStart: cfg.Calendar.TermStart,
			TermWeeks: cfg.Calendar.TermWeeks,
			Location:  loadLocation(cfg.Calendar.Timezone, logr),
		},
		logr,
	)
	overviewSvc := service.NewOverviewService(subjectRepo, teacherRepo, sessionRepo, userRepo, logr)

	checks := map[string]handler.Pinger{"database": db}
	if redisClient != nil {
		checks["redis"] = redisPinger{client: redisClient}
	}

	feeds := signer.NewFeedSigner(cfg.Calendar.FeedSecret, cfg.Calendar.FeedTTL)

	handlers := routeHandlers{
		auth:       handler.NewAuthHandler(authSvc),
		assignment: handler.NewAssignmentHandler(availabilitySvc, plannerSvc, timetableSvc, conflictSvc),
		completion: handler.NewCompletionHandler(completionSvc),
		timetable:  handler.NewTimetableHandler(timetableSvc, teacherSvc, exportSvc).WithFeeds(feeds, cfg.APIPrefix+"/feeds/teachers"),
		subject:    handler.NewSubjectHandler(subjectSvc),
		teacher:    handler.NewTeacherHandler(teacherSvc),
		user:       handler.NewUserHandler(userSvc),
		overview:   handler.NewOverviewHandler(overviewSvc),
		metrics:    handler.NewMetricsHandler(metrics, checks),
	}

	r := newRouter(cfg, logr, authSvc, metrics, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newLocker(cfg config.SchedulerConfig, client *redis.Client) lock.Locker {
	if cfg.LockBackend == config.LockBackendRedis && client != nil {
		return lock.NewRedisLocker(client, cfg.LockTTL, cfg.LockWait)
	}
	return lock.NewMemoryLocker(cfg.LockWait)
}

func loadLocation(name string, logr *zap.Logger) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logr.Warn("unknown calendar timezone, using UTC", zap.String("timezone", name), zap.Error(err))
		return time.UTC
	}
	return loc
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
