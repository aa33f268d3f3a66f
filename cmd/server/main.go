package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/abcenterprises/fbr-einvoicing/internal/annexc"
	"github.com/abcenterprises/fbr-einvoicing/internal/application/service"
	"github.com/abcenterprises/fbr-einvoicing/internal/config"
	"github.com/abcenterprises/fbr-einvoicing/internal/fbr"
	httpserver "github.com/abcenterprises/fbr-einvoicing/internal/interfaces/http"
	"github.com/abcenterprises/fbr-einvoicing/internal/repository"
	"github.com/abcenterprises/fbr-einvoicing/internal/worker"
	"github.com/abcenterprises/fbr-einvoicing/pkg/database"
	"github.com/abcenterprises/fbr-einvoicing/pkg/utils"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = gotenv.Load()

	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting FBR e-invoicing service",
		zap.String("seller", cfg.Seller.Name),
		zap.String("seller_strn", cfg.Seller.STRN),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	productRepo := repository.NewProductRepository(db.DB, logger)
	invoiceRepo := repository.NewInvoiceRepository(db, logger)

	// Authority gateway. The simulator stands in for the live IRIS
	// endpoint behind the same interface.
	gateway := fbr.NewSimulator(fbr.Config{
		Latency:     cfg.FBR.Latency,
		DeniedSTRNs: cfg.FBR.DeniedSTRNs,
	}, logger)

	// Application services
	svcLogger := &zapLoggerAdapter{logger: logger}
	productService := service.NewProductService(productRepo, svcLogger)
	invoiceService := service.NewInvoiceService(invoiceRepo, productRepo, gateway, svcLogger)

	exporter := annexc.NewExcelExporter(cfg.Seller.Name, cfg.Seller.STRN, logger)
	annexCService := service.NewAnnexCService(invoiceRepo, exporter, svcLogger)

	// A fresh install gets a starter catalog so drafting works at once.
	if err := productService.SeedDefaults(context.Background()); err != nil {
		logger.Fatal("Failed to seed product catalog", zap.Error(err))
	}

	// Status poller reconciles submissions whose acknowledgment was lost.
	poller := worker.NewStatusPoller(invoiceRepo, gateway, invoiceService, logger)
	poller.SetPollInterval(cfg.FBR.PollInterval)

	workers := worker.NewManager(logger)
	workers.Register(poller)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := workers.StartAll(ctx); err != nil {
		logger.Fatal("Failed to start background workers", zap.Error(err))
	}
	defer workers.StopAll()

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, invoiceService, productService, annexCService, svcLogger)

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "configs/config.yaml"
}

// zapLoggerAdapter adapts zap.Logger to the service.Logger interface.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Sugar().Infow(msg, keysAndValues...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Sugar().Errorw(msg, keysAndValues...)
}
