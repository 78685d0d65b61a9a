package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	bookingPostgres "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/booking/postgres"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/events"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/jobs"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start and manage background workers such as the booking watcher.`,
}

var bookingWorkerCmd = &cobra.Command{
	Use:   "bookings",
	Short: "Start the booking watcher",
	Long:  `Poll for newly confirmed bookings and announce them on the event bus`,
	Run: func(cmd *cobra.Command, args []string) {
		startBookingWorker()
	},
}

func init() {
	workerCmd.AddCommand(bookingWorkerCmd)
}

func startBookingWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	sqlDB, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open gorm: %v\n", err)
		os.Exit(1)
	}

	eventBus := events.NewEventBus(lg)
	eventBus.Subscribe(events.EventTypeBookingDetected, func(ctx context.Context, event events.Event) error {
		lg.Info("booking ready for staff attention",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})

	watcher := jobs.NewBookingWatcher(bookingPostgres.NewBookingRepository(gormDB), eventBus, lg)

	runner := cron.New()
	if _, err := watcher.Schedule(runner, config.Jobs.BookingPollSchedule); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to schedule booking watcher: %v\n", err)
		os.Exit(1)
	}
	runner.Start()

	lg.Info("booking watcher started", "schedule", config.Jobs.BookingPollSchedule)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	lg.Info("shutting down booking watcher", "signal", sig)
	<-runner.Stop().Done()
	if err := sqlDB.Close(); err != nil {
		lg.Error("database close error", "error", err)
	}
}
