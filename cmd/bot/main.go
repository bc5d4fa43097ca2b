package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookingpro/internal/bot"
	"bookingpro/internal/calendar"
	"bookingpro/internal/config"
	"bookingpro/internal/events"
	"bookingpro/internal/metrics"
	"bookingpro/internal/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("BOOKINGPRO_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
	}

	google, err := calendar.NewGoogleGateway(ctx, cfg.Calendar.CredentialsPath, cfg.Calendar.ID, loc)
	if err != nil {
		logger.Fatal().Err(err).Msg("google calendar init error")
	}
	var cal calendar.Gateway = google
	if rdb != nil && cfg.CalendarCacheTTL() > 0 {
		cal = calendar.NewCachedGateway(google, rdb, cfg.Calendar.ID, cfg.CalendarCacheTTL())
		logger.Info().Dur("ttl", cfg.CalendarCacheTTL()).Msg("Calendar cache enabled")
	}

	bookings, err := openStore(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("open booking store error")
	}
	defer bookings.Close()

	bus := events.NewEventBus()
	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		metrics.Observe(bus)
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}
	if cfg.AMQP.URL != "" {
		pub, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			logger.Fatal().Err(err).Msg("amqp publisher init error")
		}
		defer pub.Close()
		events.Forward(bus, pub, 5*time.Second)
		logger.Info().Str("exchange", cfg.AMQP.Exchange).Msg("Booking events forwarded to broker")
	}

	b, err := bot.New(cfg.Telegram.BotToken, cal, bookings, bus, bot.Options{
		AdminID: cfg.Telegram.AdminID,
		Service: bot.Service{
			Name:     cfg.Service.Name,
			Price:    cfg.Service.Price,
			Duration: cfg.ServiceDuration(),
		},
		Schedule:     cfg.AvailabilitySchedule(),
		Location:     loc,
		BookableDays: cfg.Schedule.BookableDays,
		RateLimit:    cfg.Telegram.RateLimit,
	}, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("create bot error")
	}

	if cfg.Reminders.Enabled {
		b.StartReminders(ctx, cfg.Reminders.Hour)
	}

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, bookings, rdb, &logger)

	logger.Info().
		Str("timezone", loc.String()).
		Str("store", cfg.Store.Driver).
		Msg("Booking bot started")
	b.Start(ctx)
	logger.Info().Msg("Booking bot stopped")
}

func openStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (store.BookingStore, error) {
	if cfg.Store.Driver == config.StoreFirestore {
		return store.NewFirestore(ctx, cfg.Store.FirebaseServiceAccountPath)
	}

	db, err := store.NewSQLite(cfg.Store.SQLitePath)
	if err != nil {
		return nil, err
	}
	backups := store.NewBackupService(db, store.BackupConfig{
		Enabled:       cfg.Backup.Enabled,
		StoragePath:   cfg.Backup.Path,
		Interval:      cfg.BackupInterval(),
		RetentionDays: cfg.Backup.RetentionDays,
	}, logger)
	go backups.Start(ctx)
	return db, nil
}

func startHealthServer(ctx context.Context, port int, bookings store.BookingStore, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := bookings.Ping(ctxPing); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	serve(ctx, "health", port, mux, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	serve(ctx, "metrics", port, mux, logger)
}

func serve(ctx context.Context, name string, port int, h http.Handler, logger *zerolog.Logger) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Str("server", name).Msg("http server error")
	}
}
