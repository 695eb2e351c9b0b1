package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"agenda/backend/internal/config"
	"agenda/backend/internal/notify"
	"agenda/backend/internal/service/availability"
	"agenda/backend/internal/service/scheduling"
	"agenda/backend/internal/store"
	"agenda/backend/internal/store/memory"
	"agenda/backend/internal/store/postgres"
	"agenda/backend/internal/telemetry"
	grpcTransport "agenda/backend/internal/transport/grpc"
)

const serviceName = "agenda-server"

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", serviceName),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", serviceName),
	)
	slog.SetDefault(log)

	log.Info("starting",
		slog.String("grpc_addr", cfg.GRPCAddr()),
		slog.String("log_level", cfg.LogLevel),
		slog.String("storage", cfg.StorageDriver),
		slog.String("time_zone", cfg.Location.String()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: serviceName,
		Endpoint:    cfg.OTelEndpoint,
		Insecure:    cfg.OTelInsecure,
	}, log)
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("tracer shutdown failed", slog.Any("err", err))
		}
	}()

	cal, settings, closeStorage, err := openStorage(cfg, log)
	if err != nil {
		os.Exit(1)
	}
	defer closeStorage()

	notifier, closeNotifier, err := openNotifier(cfg, log)
	if err != nil {
		log.Error("notifier setup failed", slog.Any("err", err), slog.String("driver", cfg.NotifyDriver))
		closeStorage()
		os.Exit(1)
	}
	defer closeNotifier()

	var hours availability.FirstOf
	if cfg.ScheduleFile != "" {
		hours = append(hours, availability.NewFileHours(cfg.ScheduleFile))
	}
	hours = append(hours, availability.NewStoredHours(settings))

	svc := scheduling.NewService(cal,
		scheduling.WithNotifier(notifier),
		scheduling.WithLocation(cfg.Location),
		scheduling.WithLogger(log),
	)
	calc := availability.NewCalculator(cal, hours, cfg.Location, log)

	limiter := grpcTransport.NewPeerRateLimiter(cfg.PublicRPS, cfg.PublicBurst, log, "ListAvailableSlots")
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			defaultRequestTimeoutInterceptor(cfg.GRPCRequestTimeout),
			limiter.UnaryInterceptor(),
		),
	)
	grpcTransport.RegisterSchedulingServer(grpcServer, grpcTransport.NewSchedulingServer(svc, calc, log))

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr()))
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- grpcServer.Serve(lis)
	}()

	log.Info("grpc server started", slog.String("grpc_addr", cfg.GRPCAddr()))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdown(log, grpcServer, cfg.ShutdownTimeout)
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error("grpc server stopped with error", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

// openStorage returns the calendar and settings store for the configured
// driver. Failures are logged here.
func openStorage(cfg config.Config, log *slog.Logger) (store.Calendar, store.ConfigRepository, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn("using in-memory storage; data is lost on restart")
		st := memory.New()
		return st, st, func() {}, nil
	}

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		return nil, nil, nil, err
	}
	closeDB := func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}
	return postgres.NewCalendarRepo(db), postgres.NewConfigRepo(db), closeDB, nil
}

func openNotifier(cfg config.Config, log *slog.Logger) (scheduling.Notifier, func(), error) {
	if cfg.NotifyDriver != config.NotifyAMQP {
		return notify.NewLogNotifier(log), func() {}, nil
	}
	n, err := notify.DialAMQP(cfg.AMQPURL, cfg.NotifyExchange, log)
	if err != nil {
		return nil, nil, err
	}
	log.Info("publishing booking events", slog.String("exchange", cfg.NotifyExchange))
	return n, func() {
		if err := n.Close(); err != nil {
			log.Warn("amqp close failed", slog.Any("err", err))
		}
	}, nil
}

func defaultRequestTimeoutInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := ctx.Deadline(); ok {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return handler(ctx, req)
	}
}

func shutdown(log *slog.Logger, s *grpc.Server, timeout time.Duration) {
	log.Info("shutting down grpc server", slog.Duration("timeout", timeout))

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		log.Info("grpc server stopped")
	case <-timer.C:
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		s.Stop()
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
