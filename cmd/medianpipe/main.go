// Command medianpipe resizes and median-filters random frames and saves them
// as numbered pictures.
//
// Run:
//
//	go run ./cmd/medianpipe
//
// Settings are read from MEDIANPIPE_* environment variables, for example:
//
//	MEDIANPIPE_SOURCE_STEPS=20 \
//	MEDIANPIPE_FILTER_WORKERS=4 \
//	MEDIANPIPE_RECORDER_WORKERS=2 \
//	MEDIANPIPE_METRICS_ADDR=:9090 \
//	  go run ./cmd/medianpipe
//
// Single stages can be tuned with MEDIANPIPE_{STAGE}_TIMEOUT, e.g.
// MEDIANPIPE_PICTURERECORDER_0_TIMEOUT=30s.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fxsml/stagepipe/channel"
	"github.com/fxsml/stagepipe/config"
	"github.com/fxsml/stagepipe/imaging"
	"github.com/fxsml/stagepipe/logging"
	"github.com/fxsml/stagepipe/metrics"
	"github.com/fxsml/stagepipe/pipe"
	"github.com/fxsml/stagepipe/pipe/middleware"
	"github.com/fxsml/stagepipe/recorder"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync() //nolint:errcheck

	logger = logger.With(zap.String("run_id", uuid.NewString()))
	middleware.SetDefaultLogger(logging.NewAdapter(logger))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, reg, logger)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if err := run(ctx, cfg, logger, reg); err != nil {
		logger.Error("Pipeline failed", zap.Error(err))
		os.Exit(1)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("Serving metrics", zap.String("addr", addr))
	return srv
}

// run wires source → median filters → picture recorders and blocks until
// every stage has finished.
func run(ctx context.Context, cfg *config.App, logger *zap.Logger, reg prometheus.Registerer) error {
	log := logging.NewAdapter(logger)
	m := metrics.New(reg)
	namer := pipe.NewNamer()
	loader := config.Loader{Prefix: config.AppPrefix}

	raw := channel.New[*imaging.Frame]()
	filtered := channel.New[*imaging.Frame]()
	if err := m.ObserveQueue("raw", raw); err != nil {
		return err
	}
	if err := m.ObserveQueue("filtered", filtered); err != nil {
		return err
	}

	stageConfig := func(kind string, base pipe.Config) (pipe.Config, error) {
		base.Logger = log
		return overlayStage(loader, namer, kind, base)
	}

	seed := cfg.Source.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	src, err := imaging.NewSource(cfg.Source.Height, cfg.Source.Width, cfg.Source.Channels, cfg.Source.Steps, seed)
	if err != nil {
		return err
	}
	footprint, err := imaging.NewFootprint(cfg.Filter.FootprintRows, cfg.Filter.FootprintCols)
	if err != nil {
		return err
	}
	rec, err := recorder.New(recorder.Config{
		Folder:              cfg.Recorder.Folder,
		Stem:                cfg.Recorder.Stem,
		Ext:                 cfg.Recorder.Ext,
		MaxConcurrentWrites: cfg.Recorder.MaxConcurrentWrites,
	})
	if err != nil {
		return err
	}

	var stages []pipe.Stage

	srcCfg, err := stageConfig("Source", pipe.Config{Interval: cfg.Source.Interval})
	if err != nil {
		return err
	}
	stages = append(stages, pipe.NewProducer(raw, src, srcCfg))

	for range cfg.Filter.Workers {
		fcfg, err := stageConfig("MedianFilter", pipe.Config{Timeout: cfg.Filter.Timeout})
		if err != nil {
			return err
		}
		b, err := imaging.NewMedianFilter(raw, filtered, cfg.Filter.Height, cfg.Filter.Width, footprint, fcfg)
		if err != nil {
			return err
		}
		if err := b.Use(observe[*imaging.Frame, *imaging.Frame](m, log, b.Name())); err != nil {
			return err
		}
		stages = append(stages, b)
	}

	for range cfg.Recorder.Workers {
		rcfg, err := stageConfig("PictureRecorder", pipe.Config{Timeout: cfg.Recorder.Timeout})
		if err != nil {
			return err
		}
		c := recorder.NewPictureRecorder(filtered, rec, rcfg)
		err = c.Use(
			observe[*imaging.Frame, struct{}](m, log, c.Name()),
			middleware.Retry[*imaging.Frame, struct{}](middleware.RetryConfig{
				ShouldRetry: middleware.ShouldNotRetry(imaging.ErrInvalidFrame, context.Canceled),
				Backoff:     middleware.ExponentialBackoff(10*time.Millisecond, 2, 200*time.Millisecond, 0.2),
				MaxAttempts: 3,
				Timeout:     cfg.Recorder.Timeout,
			}),
			middleware.Timeout[*imaging.Frame, struct{}](cfg.Recorder.WriteTimeout),
		)
		if err != nil {
			return err
		}
		stages = append(stages, c)
	}

	logger.Info("Pipeline started", zap.Int("stages", len(stages)), zap.String("folder", cfg.Recorder.Folder))
	start := time.Now()

	g := pipe.NewGroup(ctx, pipe.GroupConfig{})
	g.Go(stages...)
	err = g.Wait()

	saved, failed := rec.Stats()
	logger.Info("Pipeline finished",
		zap.Uint64("saved", saved),
		zap.Uint64("failed", failed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return err
}

// overlayStage names the next stage of kind and lets its
// MEDIANPIPE_{STAGE}_* variables override base.
func overlayStage(loader config.Loader, namer *pipe.Namer, kind string, base pipe.Config) (pipe.Config, error) {
	base.Name = namer.Next(kind)
	return loader.Overlay(base.Name, base)
}

// observe records Prometheus metrics and logs the outcome of every item.
func observe[In, Out any](m *metrics.Metrics, log middleware.Logger, stage string) middleware.Middleware[In, Out] {
	track := metrics.TrackInFlight[In, Out](m, stage)
	measure := middleware.MetricsMiddleware[In, Out](middleware.DistributeMetrics(
		m.Collector(stage),
		middleware.NewMetricsLogger(middleware.LogConfig{
			Logger: log,
			Args:   []any{"stage", stage},
		}),
	))
	return func(next middleware.ProcessFunc[In, Out]) middleware.ProcessFunc[In, Out] {
		return track(measure(next))
	}
}
