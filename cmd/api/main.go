package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/frii-edu/examiner-api/api/swagger"
	"github.com/frii-edu/examiner-api/internal/handler"
	"github.com/frii-edu/examiner-api/internal/repository"
	"github.com/frii-edu/examiner-api/internal/service"
	"github.com/frii-edu/examiner-api/pkg/cache"
	"github.com/frii-edu/examiner-api/pkg/config"
	"github.com/frii-edu/examiner-api/pkg/database"
	"github.com/frii-edu/examiner-api/pkg/logger"
	corsmiddleware "github.com/frii-edu/examiner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/frii-edu/examiner-api/pkg/middleware/requestid"
	"github.com/frii-edu/examiner-api/pkg/storage"
)

// @title Examiner Admin API
// @version 1.0.0
// @description School duty assignment administration backend
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	teacherRepo := repository.NewTeacherRepository(db)
	userRepo := repository.NewUserRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	typeRepo := repository.NewResponsibilityTypeRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	routineRepo := repository.NewRoutineRepository(db)
	reportRepo := repository.NewReportRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessSecret:  cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessExpiry:  cfg.JWT.Expiration,
		RefreshExpiry: cfg.JWT.RefreshExpiration,
		Issuer:        cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, nil, logr)
	branchSvc := service.NewBranchService(branchRepo, nil, logr)
	classSvc := service.NewClassService(classRepo, nil, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, nil, logr)
	typeSvc := service.NewResponsibilityTypeService(typeRepo, nil, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, assignmentRepo, nil, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, teacherRepo, typeRepo, leaveRepo, nil, logr)
	leaveSvc := service.NewLeaveService(leaveRepo, teacherRepo, typeRepo, nil, logr)
	routineSvc := service.NewRoutineService(routineRepo, teacherRepo, classRepo, subjectRepo, nil, logr)

	var reportCache *repository.CacheRepository
	if cfg.Reports.CacheEnabled {
		reportCache = cacheRepo
	}
	reportSvc := service.NewReportService(reportRepo, reportCache, cfg.Reports.CacheTTL, logr)

	archive, err := storage.NewExportArchive(cfg.Reports.ArchiveDir)
	if err != nil {
		logr.Fatal("failed to prepare export archive", zap.Error(err))
	}
	if removed, err := archive.CleanupOlderThan(cfg.Reports.ArchiveTTL); err != nil {
		logr.Warn("export archive cleanup failed", zap.Error(err))
	} else if len(removed) > 0 {
		logr.Info("pruned stale export archives", zap.Int("count", len(removed)))
	}
	signer := storage.NewDownloadTokenSigner(cfg.JWT.Secret, cfg.Reports.ArchiveTTL)
	exportSvc := service.NewExportService(reportSvc, leaveRepo, routineRepo, archive, signer, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, cacheRepo, cfg.Dashboard.CacheTTL, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r, cfg.APIPrefix, authSvc, metricsSvc, handler.Handlers{
		Auth:                handler.NewAuthHandler(authSvc),
		Users:               handler.NewUserHandler(userSvc),
		Branches:            handler.NewBranchHandler(branchSvc),
		Classes:             handler.NewClassHandler(classSvc),
		Subjects:            handler.NewSubjectHandler(subjectSvc),
		ResponsibilityTypes: handler.NewResponsibilityTypeHandler(typeSvc),
		Teachers:            handler.NewTeacherHandler(teacherSvc),
		Assignments:         handler.NewAssignmentHandler(assignmentSvc, dashboardSvc),
		Leaves:              handler.NewLeaveHandler(leaveSvc, exportSvc, metricsSvc),
		Routines:            handler.NewRoutineHandler(routineSvc, exportSvc, metricsSvc),
		Reports:             handler.NewReportHandler(reportSvc, exportSvc, metricsSvc),
		Dashboard:           handler.NewDashboardHandler(dashboardSvc),
	}, cfg.Dashboard.Enabled)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
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
