package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/routedash/internal/adapters/gateway"
	"github.com/okian/routedash/internal/adapters/http/api"
	"github.com/okian/routedash/internal/adapters/http/site"
	"github.com/okian/routedash/internal/adapters/http/swagger"
	app "github.com/okian/routedash/internal/app"
	"github.com/okian/routedash/internal/config"
	"github.com/okian/routedash/pkg/logger"
	"github.com/okian/routedash/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// Page submissions wait on the gateway, so writes get extra room over the
// request timeout.
const (
	writeTimeoutSlack = 10 * time.Second
	defaultWriteLimit = 60 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	client, err := gateway.New(cfg.GatewayURL,
		gateway.WithTimeout(cfg.RequestTimeout()),
		gateway.WithLogger(loggerInstance.Named("gateway")),
	)
	if err != nil {
		os.Stderr.WriteString("failed to create gateway client: " + err.Error() + "\n")
		return
	}

	profile := cfg.ActiveProfile()
	session := app.New(client,
		app.WithName(profile.Name),
		app.WithPollInterval(cfg.PollInterval()),
		app.WithLogger(loggerInstance.Named("session")),
	)
	if err := session.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start session: " + err.Error() + "\n")
		return
	}
	defer session.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, session, client),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout(cfg),
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		startSystemMetricsUpdater(gctx, metrics.SystemRefreshInterval())
		return nil
	})

	g.Go(func() error {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("profile", profile.Name),
			logger.String("gateway", cfg.GatewayURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		loggerInstance.Info(ctx, "shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		loggerInstance.Error(ctx, "server stopped with error", logger.Error(err))
		return
	}
	loggerInstance.Info(ctx, "server stopped")
}

// newHandler wires the docs, assets and dashboard routes for one session.
func newHandler(ctx context.Context, cfg *config.Config, session *app.Session, client *gateway.Client) http.Handler {
	profile := cfg.ActiveProfile()
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)
	site.Register(ctx, mux)

	apiServer := api.NewServer(session, session,
		api.WithPage(api.Page{
			Title:       profile.Title,
			GatewayURL:  cfg.GatewayURL,
			Recommend:   profile.Recommend,
			DefaultTopN: cfg.DefaultTopN,
			Refresh:     cfg.PollInterval(),
		}),
		api.WithUserRecommender(client),
	)
	apiServer.Register(ctx, mux)
	return mux
}

// writeTimeout leaves room for a bounded gateway call; unbounded calls get
// a fixed ceiling.
func writeTimeout(cfg *config.Config) time.Duration {
	if d := cfg.RequestTimeout(); d > 0 {
		return d + writeTimeoutSlack
	}
	return defaultWriteLimit
}

// startSystemMetricsUpdater updates system metrics every interval until ctx
// is done.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		// Average GC pause since start
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
