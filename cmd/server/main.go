package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/MagetoJ/AviTrack/internal/config"
	"github.com/MagetoJ/AviTrack/internal/metrics"
	"github.com/MagetoJ/AviTrack/internal/repository/mongodb"
	"github.com/MagetoJ/AviTrack/internal/repository/sheets"
	"github.com/MagetoJ/AviTrack/internal/scheduler"
	"github.com/MagetoJ/AviTrack/internal/server/handlers"
	"github.com/MagetoJ/AviTrack/internal/server/router"
	flocksvc "github.com/MagetoJ/AviTrack/internal/service/flock"
	inventorysvc "github.com/MagetoJ/AviTrack/internal/service/inventory"
	ordersvc "github.com/MagetoJ/AviTrack/internal/service/orders"
	reportingsvc "github.com/MagetoJ/AviTrack/internal/service/reporting"
	staffsvc "github.com/MagetoJ/AviTrack/internal/service/staff"
	whatsappsvc "github.com/MagetoJ/AviTrack/internal/service/whatsapp"
	"github.com/MagetoJ/AviTrack/internal/session"
	whatsappclient "github.com/MagetoJ/AviTrack/pkg/clients/whatsapp"
	"github.com/MagetoJ/AviTrack/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	mongoRepo, err := mongodb.NewMongoDBRepository(startupCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongo"))
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := mongoRepo.EnsureIndexes(startupCtx); err != nil {
		baseLogger.Fatal("failed to create mongodb indexes", zap.Error(err))
	}

	reportSinks := []scheduler.ReportSink{mongoRepo.SaveFlockHealthReport}

	// Inventory reads from MongoDB unless the farm still keeps its records in
	// a spreadsheet. The spreadsheet is then the only flock record, so the API
	// refuses batch and field-entry writes it could not reflect there.
	var source interface {
		inventorysvc.Source
		handlers.BatchLister
	} = mongoRepo
	readOnlyFlock := false
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(startupCtx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetSource := sheets.NewSource(sheetsRepo, baseLogger.Named("repo.sheets"))
		reportSinks = append(reportSinks, sheetSource.AppendReport)
		if cfg.DataSource == config.SourceSheets {
			source = sheetSource
			readOnlyFlock = true
			baseLogger.Info("inventory source set to google sheets, flock writes disabled")
		}
	}

	promMetrics := metrics.New()
	sessions := session.NewManager(cfg.Session.TTL)

	inventorySvc := inventorysvc.NewService(source, promMetrics, baseLogger.Named("svc.inventory"))
	flockSvc := flocksvc.NewService(mongoRepo, baseLogger.Named("svc.flock"))
	staffSvc := staffsvc.NewService(mongoRepo, cfg.Staff.CheckInGrace, baseLogger.Named("svc.staff"))
	orderSvc := ordersvc.NewService(mongoRepo, baseLogger.Named("svc.orders"))
	reportingSvc := reportingsvc.NewService(inventorySvc, staffSvc, baseLogger.Named("svc.reporting"))

	var messagingSvc whatsappsvc.MessagingService
	if cfg.WhatsApp.Enabled() {
		messagingSvc = whatsappsvc.NewMetaWhatsAppService(whatsappclient.NewClient(cfg.WhatsApp), baseLogger.Named("svc.whatsapp"))
	} else {
		baseLogger.Warn("whatsapp access token missing, digests will only be logged")
		messagingSvc = whatsappsvc.NewLogOnlyService(baseLogger.Named("svc.whatsapp"))
	}

	engine := router.New(router.Handlers{
		Inventory: handlers.NewInventoryHandler(inventorySvc, source, baseLogger.Named("handlers.inventory")),
		Flock:     handlers.NewFlockHandler(flockSvc, baseLogger.Named("handlers.flock")),
		Staff:     handlers.NewStaffHandler(staffSvc, baseLogger.Named("handlers.staff")),
		Orders:    handlers.NewOrderHandler(orderSvc, baseLogger.Named("handlers.orders")),
		Sessions:  handlers.NewSessionHandler(mongoRepo, sessions, baseLogger.Named("handlers.sessions")),
	}, router.Options{
		Sessions:      sessions,
		Metrics:       promMetrics,
		ReadOnlyFlock: readOnlyFlock,
	}, baseLogger.Named("router"))

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	sched := scheduler.NewScheduler(scheduler.Options{
		Schedule:  cfg.Reporting.CronSchedule,
		Location:  loc,
		Recipient: cfg.WhatsApp.AlertRecipient,
	}, reportingSvc, messagingSvc, baseLogger.Named("scheduler"), reportSinks...)
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
