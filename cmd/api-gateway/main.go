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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/eduflow-api/api/swagger"
	"github.com/noah-isme/eduflow-api/internal/bootstrap"
	"github.com/noah-isme/eduflow-api/internal/handler"
	"github.com/noah-isme/eduflow-api/internal/middleware"
	"github.com/noah-isme/eduflow-api/internal/repository"
	"github.com/noah-isme/eduflow-api/internal/service"
	"github.com/noah-isme/eduflow-api/pkg/cache"
	"github.com/noah-isme/eduflow-api/pkg/config"
	"github.com/noah-isme/eduflow-api/pkg/jobs"
	"github.com/noah-isme/eduflow-api/pkg/kvstore"
	"github.com/noah-isme/eduflow-api/pkg/logger"
	"github.com/noah-isme/eduflow-api/pkg/messaging"
	corsmiddleware "github.com/noah-isme/eduflow-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/eduflow-api/pkg/middleware/requestid"
	"github.com/noah-isme/eduflow-api/pkg/storage"
)

// @title EduFlow API
// @version 1.0.0
// @description College administration back end: courses, students, fees, payments and financial reporting.
// @BasePath /api/v1
// @schemes http

const shutdownTimeout = 15 * time.Second

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{}

	var redisClient *redis.Client
	if cfg.Store.Driver == config.StoreDriverRedis || cfg.Dashboard.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			if cfg.Store.Driver == config.StoreDriverRedis {
				logr.Fatal("failed to connect redis", zap.Error(err))
			}
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close() //nolint:errcheck
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}

	store, db, err := bootstrap.OpenStore(ctx, cfg, redisClient)
	if err != nil {
		logr.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	if db != nil {
		defer db.Close() //nolint:errcheck
		checks["postgres"] = func(ctx context.Context) error { return db.PingContext(ctx) }
	}
	store = kvstore.Instrument(store, metricsSvc)
	logr.Info("store ready", zap.String("driver", cfg.Store.Driver))

	studentRepo := repository.NewStudentRepository(store)
	courseRepo := repository.NewCourseRepository(store)
	feeRepo := repository.NewFeeRepository(store)
	paymentRepo := repository.NewPaymentRepository(store)

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)

	validate := service.NewValidator()

	var publisher service.EventPublisher
	if cfg.Events.Enabled {
		natsPublisher, err := messaging.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.SubjectPrefix, logr)
		if err != nil {
			logr.Warn("nats unavailable, payment events disabled", zap.Error(err))
		} else {
			defer natsPublisher.Close() //nolint:errcheck
			publisher = natsPublisher
		}
	}

	studentSvc := service.NewStudentService(studentRepo, cacheSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, studentRepo, cacheSvc, validate, logr)
	feeSvc := service.NewFeeService(feeRepo, cacheSvc, validate, logr)
	paymentSvc := service.NewPaymentService(service.PaymentServiceParams{
		Repo:      paymentRepo,
		Students:  studentRepo,
		Fees:      feeRepo,
		Cache:     cacheSvc,
		Publisher: publisher,
		Metrics:   metricsSvc,
		Validator: validate,
		Logger:    logr,
	})
	reportSvc := service.NewFinancialReportService(paymentRepo, feeRepo, studentRepo, cfg.Finance.TopN, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Payments: paymentRepo,
		Fees:     feeRepo,
		Students: studentRepo,
		Cache:    cacheSvc,
		Logger:   logr,
		Config: service.DashboardServiceConfig{
			CacheTTL:           cfg.Dashboard.CacheTTL,
			RecentTransactions: cfg.Finance.RecentTransactions,
		},
	})

	var exportJobs *service.ReportService
	if cfg.Exports.Enabled {
		exportJobs, err = startExports(ctx, cfg, store, reportSvc, metricsSvc, checks, logr)
		if err != nil {
			logr.Fatal("failed to start report exports", zap.Error(err))
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	api := r.Group(cfg.APIPrefix)
	handler.NewMetricsHandler(metricsSvc, checks).RegisterRoutes(r, api)
	handler.NewStudentHandler(studentSvc).RegisterRoutes(api)
	handler.NewCourseHandler(courseSvc).RegisterRoutes(api)
	handler.NewFeeHandler(feeSvc).RegisterRoutes(api)
	handler.NewPaymentHandler(paymentSvc).RegisterRoutes(api)
	handler.NewDashboardHandler(dashboardSvc).RegisterRoutes(api)
	if exportJobs != nil {
		handler.NewReportHandler(reportSvc, exportJobs).RegisterRoutes(api)
	} else {
		handler.NewReportHandler(reportSvc, nil).RegisterRoutes(api)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// startExports wires the export pipeline and starts its worker pool and janitor.
func startExports(ctx context.Context, cfg *config.Config, store kvstore.Store, reports *service.FinancialReportService, metrics *service.MetricsService, checks map[string]handler.ReadinessCheck, logr *zap.Logger) (*service.ReportService, error) {
	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exporter := service.NewExportService(reports, files, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr, nil, nil)

	jobRepo := repository.NewExportJobRepository(store)
	worker := service.NewReportWorker(jobRepo, exporter, metrics, cfg.Exports.WorkerRetries, logr)
	queue := jobs.NewQueue("report-exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})
	queue.Start(ctx)
	checks["exports"] = func(context.Context) error {
		if !queue.Started() {
			return jobs.ErrNotRunning
		}
		return nil
	}
	go func() {
		<-ctx.Done()
		queue.Stop()
	}()

	reportJobs := service.NewReportService(jobRepo, queue, exporter, metrics, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
	})
	reportJobs.RecoverPendingJobs(ctx)
	reportJobs.StartCleanup(ctx)
	return reportJobs, nil
}
