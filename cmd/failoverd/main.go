// failoverd daemon -- multi-role BFD configuration front end.
//
// Parses the keepalived-style bfd_instance configuration once per
// enabled role, exports the outcome as Prometheus metrics, and reloads
// on SIGHUP or (optionally) when the file changes on disk.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/wolfguard/failoverd/internal/bfdcfg"
	"github.com/wolfguard/failoverd/internal/config"
	confmetrics "github.com/wolfguard/failoverd/internal/metrics"
	appversion "github.com/wolfguard/failoverd/internal/version"
)

// shutdownTimeout is the maximum time to wait for the metrics HTTP
// server to drain active connections during graceful shutdown.
const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// 1. Parse flags.
	settingsPath := flag.String("config", "", "path to daemon settings file (YAML)")
	flag.Parse()

	// 2. Load settings.
	cfg, err := loadSettings(*settingsPath)
	if err != nil {
		// Logger is not set up yet; use a temporary stderr logger.
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to load settings",
			slog.String("error", err.Error()),
		)
		return 1
	}

	// 3. Set up logger with dynamic level support for SIGHUP reload.
	logLevel := new(slog.LevelVar)
	logLevel.Set(config.ParseLogLevel(cfg.Log.Level))
	logger := newLoggerWithLevel(cfg.Log, logLevel)

	logger.Info("failoverd starting",
		slog.String("version", appversion.Version),
		slog.String("bfd_config", cfg.BFD.Config),
		slog.Any("roles", cfg.BFD.Roles),
		slog.String("metrics_addr", cfg.Metrics.Addr),
	)

	// 4. Create Prometheus metrics collector.
	reg := prometheus.NewRegistry()
	collector := confmetrics.NewCollector(reg)

	// 5. One persistent loader per enabled role; each reload reruns
	//    every loader over the same file.
	mgr := newLoadManager(cfg.BFD, collector, logger)
	mgr.loadAll()

	// 6. Run servers and reload triggers.
	if err := runDaemon(cfg, mgr, reg, logLevel, logger, *settingsPath); err != nil {
		logger.Error("failoverd exited with error",
			slog.String("error", err.Error()),
		)
		return 1
	}

	logger.Info("failoverd stopped")
	return 0
}

// loadSettings loads the daemon settings, falling back to defaults
// when no path is given.
func loadSettings(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}

// newLoggerWithLevel builds the daemon logger in the configured format.
func newLoggerWithLevel(lc config.LogConfig, level *slog.LevelVar) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if lc.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// runDaemon runs the metrics server and the reload triggers under an
// errgroup with a signal-aware context for graceful shutdown.
func runDaemon(
	cfg *config.Config,
	mgr *loadManager,
	reg *prometheus.Registry,
	logLevel *slog.LevelVar,
	logger *slog.Logger,
	settingsPath string,
) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	metricsSrv := newMetricsServer(cfg.Metrics, reg)

	lc := net.ListenConfig{}
	g.Go(func() error {
		logger.Info("metrics server listening",
			slog.String("addr", cfg.Metrics.Addr),
			slog.String("path", cfg.Metrics.Path),
		)
		return listenAndServe(gCtx, &lc, metricsSrv, cfg.Metrics.Addr)
	})

	// SIGHUP reload goroutine.
	sigHUP := make(chan os.Signal, 1)
	signal.Notify(sigHUP, syscall.SIGHUP)
	g.Go(func() error {
		defer signal.Stop(sigHUP)
		handleSIGHUP(gCtx, sigHUP, settingsPath, logLevel, mgr, logger)
		return nil
	})

	// Optional file watcher reload goroutine.
	if cfg.BFD.Watch {
		g.Go(func() error {
			return watchBFDConfig(gCtx, cfg.BFD.Config, mgr, logger)
		})
	}

	// Shutdown goroutine: waits for context cancellation.
	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown metrics server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run daemon: %w", err)
	}
	return nil
}

// newMetricsServer builds the Prometheus metrics HTTP server.
func newMetricsServer(mc config.MetricsConfig, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(mc.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// listenAndServe serves srv on addr until the server is shut down.
func listenAndServe(ctx context.Context, lc *net.ListenConfig, srv *http.Server, addr string) error {
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve on %s: %w", addr, err)
	}
	return nil
}

// handleSIGHUP listens for SIGHUP and reloads: the daemon settings are
// re-read for the dynamic log level, then every role reparses the BFD
// configuration. Blocks until the context is cancelled.
func handleSIGHUP(
	ctx context.Context,
	sigHUP <-chan os.Signal,
	settingsPath string,
	logLevel *slog.LevelVar,
	mgr *loadManager,
	logger *slog.Logger,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sigHUP:
			logger.Info("received SIGHUP, reloading configuration")

			if settingsPath != "" {
				newCfg, err := config.Load(settingsPath)
				if err != nil {
					logger.Error("failed to reload settings, keeping current",
						slog.String("error", err.Error()),
					)
				} else {
					logLevel.Set(config.ParseLogLevel(newCfg.Log.Level))
				}
			}

			mgr.loadAll()
		}
	}
}

// -------------------------------------------------------------------------
// Load Manager
// -------------------------------------------------------------------------

// loadManager owns one bfdcfg.Loader per enabled role and reruns all
// of them over the configured file on demand. Loads are serialized;
// each individual parse remains single-threaded.
type loadManager struct {
	path      string
	loaders   []*bfdcfg.Loader
	collector *confmetrics.Collector
	log       *slog.Logger

	mu sync.Mutex
}

func newLoadManager(bc config.BFDConfig, collector *confmetrics.Collector, logger *slog.Logger) *loadManager {
	roles := bc.ParseRoles()

	loaders := make([]*bfdcfg.Loader, 0, len(roles))
	for _, role := range roles {
		loaders = append(loaders, bfdcfg.NewLoader(
			role,
			logger.With(slog.String("role", role.String())),
		))
	}

	return &loadManager{
		path:      bc.Config,
		loaders:   loaders,
		collector: collector,
		log:       logger,
	}
}

// loadAll reruns every role's parse of the BFD configuration file and
// records the outcome. A failed load keeps that role's previous data
// out of the metrics but never stops the daemon.
func (m *loadManager) loadAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.loaders {
		err := l.LoadFile(m.path)
		m.collector.ObserveLoad(l, err)

		if err != nil {
			m.log.Error("bfd configuration load failed",
				slog.String("role", l.Role().String()),
				slog.String("error", err.Error()),
			)
			continue
		}

		stats := l.Stats()
		m.log.Info("bfd configuration loaded",
			slog.String("role", l.Role().String()),
			slog.Int("instances", len(l.Instances)),
			slog.Int("tracked_refs", len(l.VRRPTracked)+len(l.CheckerTracked)),
			slog.Int("errors", stats.Errors),
			slog.Int("warnings", stats.Warnings),
		)
	}
}
