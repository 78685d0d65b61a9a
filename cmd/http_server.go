package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/auth"
	bookingPostgres "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/booking/postgres"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/contract"
	contractPostgres "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/contract/postgres"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/events"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/gateway/vnpay"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/payment"
	paymentPostgres "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/payment/postgres"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/rental"
	rentalPostgres "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/rental/postgres"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/transport/rest"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle staff console API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to wire routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: deps.DB.DB}), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to open gorm over pgx pool: %w", err)
	}

	eventBus := events.NewEventBus(deps.Logger)

	rentalRepo := rentalPostgres.NewRentalRepository(gormDB)
	bookingRepo := bookingPostgres.NewBookingRepository(gormDB)
	contractRepo := contractPostgres.NewContractRepository(gormDB)
	paymentRepo := paymentPostgres.NewPaymentRepository(gormDB)

	gatewayClient := vnpay.NewClient(vnpay.Config{
		TmnCode:    deps.Config.VNPay.TmnCode,
		HashSecret: deps.Config.VNPay.HashSecret,
		PayURL:     deps.Config.VNPay.PayURL,
		ReturnURL:  deps.Config.VNPay.ReturnURL,
		Expiry:     deps.Config.VNPay.Expiry,
	}, deps.Logger)
	reconciler := vnpay.NewReconciler(deps.Logger)

	orchestrator := payment.NewOrchestrator(paymentRepo, rentalRepo, bookingRepo, gatewayClient, reconciler, eventBus, deps.Logger)
	gate := contract.NewGate(rentalRepo, contractRepo, deps.Logger)
	rentalService := rental.NewService(rentalRepo, bookingRepo, contractRepo, gate, orchestrator, eventBus, deps.Logger)

	rentalHandler := rental.NewHandler(rentalService, deps.Logger)
	paymentHandler := payment.NewHandler(orchestrator, deps.Logger)

	publicKey, err := deps.Config.Security.GetPublicKey()
	if err != nil {
		return fmt.Errorf("failed to load JWT public key: %w", err)
	}
	authMiddleware := auth.NewMiddleware(publicKey, deps.Logger)

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, authMiddleware, rentalHandler, paymentHandler, deps.Logger)
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
		DB:     db,
		Router: chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
