package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medcore/patientcare/internal/blob"
	"github.com/medcore/patientcare/internal/config"
	"github.com/medcore/patientcare/internal/domain/attachment"
	"github.com/medcore/patientcare/internal/domain/history"
	"github.com/medcore/patientcare/internal/domain/patient"
	v1 "github.com/medcore/patientcare/internal/handler/v1"
	"github.com/medcore/patientcare/internal/service"
	memstore "github.com/medcore/patientcare/internal/store/memory"
	pgstore "github.com/medcore/patientcare/internal/store/postgres"
	"github.com/medcore/patientcare/pkg/database"
	"github.com/medcore/patientcare/pkg/logger"
	"github.com/medcore/patientcare/pkg/metrics"
	"github.com/medcore/patientcare/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	m := metrics.NewCollector("patientcare")

	patients, histories, attachments, err := buildStores(cfg, log)
	if err != nil {
		return err
	}

	blobs, err := buildBlobStore(ctx, cfg)
	if err != nil {
		return err
	}

	auditSvc := service.NewAuditService(nil, m, log)
	defer auditSvc.Shutdown()

	svc := service.NewPatientAggregateService(patients, histories, attachments, blobs, auditSvc, m, log)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = cfg.Blob.MaxUploadSize

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})
	router.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := router.Group("/api/v1")
	v1.NewPatientHandler(svc, cfg.Blob.MaxUploadSize, log).Register(api)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildStores(cfg *config.Config, log *zap.Logger) (patient.Store, history.Store, attachment.Store, error) {
	if !cfg.Database.Enabled {
		log.Info("using in-memory stores")
		return memstore.NewPatientStore(), memstore.NewHistoryStore(), memstore.NewAttachmentStore(), nil
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.Migrate(db, log); err != nil {
		return nil, nil, nil, err
	}
	log.Info("using postgres stores", zap.String("host", cfg.Database.Host))
	return pgstore.NewPatientStore(db), pgstore.NewHistoryStore(db), pgstore.NewAttachmentStore(db), nil
}

func buildBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	if cfg.Blob.Backend == "s3" {
		return blob.NewS3Store(ctx, cfg.Blob.S3Region, cfg.Blob.S3Bucket, cfg.Blob.S3Prefix)
	}
	return blob.NewMemoryStore(), nil
}
