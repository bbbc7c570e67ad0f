// SPDX-License-Identifier: AGPL-3.0-or-later
// Accord - a chat-and-voice platform server
// Copyright (C) 2026 The Accord Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/accordchat/accordserver/internal/auth"
	"github.com/accordchat/accordserver/internal/config"
	"github.com/accordchat/accordserver/internal/eventbus"
	"github.com/accordchat/accordserver/internal/gateway"
	"github.com/accordchat/accordserver/internal/httpapi"
	"github.com/accordchat/accordserver/internal/kv"
	"github.com/accordchat/accordserver/internal/metrics"
	"github.com/accordchat/accordserver/internal/pprof"
	"github.com/accordchat/accordserver/internal/presence"
	"github.com/accordchat/accordserver/internal/pubsub"
	"github.com/accordchat/accordserver/internal/ratelimit"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/accordchat/accordserver/internal/sfuclient"
	"github.com/accordchat/accordserver/internal/snowflake"
	"github.com/accordchat/accordserver/internal/voice"
	"github.com/USA-RedDragon/configulator"
	"github.com/go-co-op/gocron/v2"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/ztrue/shutdown"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// reapInterval is how often the custom backend's NodeDirectory is swept
// for edge nodes that have stopped heartbeating.
const reapInterval = 30 * time.Second

// reapTimeout is how long an edge node may go without a heartbeat before
// it is considered dead and marked offline in the directory.
const reapTimeout = 60 * time.Second

func NewCommand(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accordserver",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		RunE:              runRoot,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	return cmd
}

func runRoot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	fmt.Printf("accordserver - %s (%s)\n", cmd.Annotations["version"], cmd.Annotations["commit"])

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	setupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cleanup, err := setupTracing(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup tracing: %w", err)
	}
	defer func() {
		if err := cleanup(ctx); err != nil {
			slog.Error("Failed to shutdown tracer", "error", err)
		}
	}()

	startBackgroundServices(cfg)

	if cfg.Mode == config.ModeSFU {
		return runSFUEdge(ctx, cfg, cleanup)
	}
	return runMain(ctx, cfg, cleanup, cmd.Annotations["version"], cmd.Annotations["commit"])
}

// loadConfig loads the configuration from context.
func loadConfig(ctx context.Context) (*config.Config, error) {
	c, err := configulator.FromContext[config.Config](ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get config from context: %w", err)
	}

	cfg, err := c.LoadWithoutValidation()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// setupLogger configures the structured logger.
func setupLogger(cfg *config.Config) {
	var logger *slog.Logger
	switch cfg.LogLevel {
	case config.LogLevelDebug:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug}))
	case config.LogLevelInfo:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	case config.LogLevelWarn:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))
	case config.LogLevelError:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelError}))
	default:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	}
	slog.SetDefault(logger)
}

// setupTracing initializes OpenTelemetry tracing if configured. When
// tracing is not configured it returns a no-op cleanup function.
func setupTracing(cfg *config.Config) (func(context.Context) error, error) {
	if cfg.Metrics.OTLPEndpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	return initTracer(cfg)
}

// startBackgroundServices starts the metrics and pprof servers.
func startBackgroundServices(cfg *config.Config) {
	go func() {
		if err := metrics.CreateMetricsServer(cfg); err != nil {
			slog.Error("Failed to start metrics server", "error", err)
		}
	}()
	go func() {
		if err := pprof.CreatePProfServer(cfg); err != nil {
			slog.Error("Failed to start pprof server", "error", err)
		}
	}()
}

// buildMediaRouter selects the voice backend named by cfg.VoiceBackend.
func buildMediaRouter(cfg *config.Config) (voice.MediaRouterClient, error) {
	switch cfg.VoiceBackend {
	case config.VoiceBackendLiveKit:
		return voice.NewLiveKitClient(cfg.LiveKit.URL, cfg.LiveKit.URL, cfg.LiveKit.APIKey, cfg.LiveKit.APISecret), nil
	case config.VoiceBackendCustom:
		externalURL := cfg.SFU.Endpoint
		if externalURL == "" {
			externalURL = fmt.Sprintf("ws://%s:%d", cfg.HTTP.Bind, cfg.HTTP.Port)
		}
		return voice.NewEmbeddedSFU(externalURL, []byte(cfg.Secret))
	default:
		return nil, fmt.Errorf("unsupported voice backend %q", cfg.VoiceBackend)
	}
}

// mainDeps bundles every wired component a ModeMain process runs, so
// shutdown can tear them down in the same order they were built.
type mainDeps struct {
	cfg           *config.Config
	kv            kv.KV
	ps            pubsub.PubSub
	nodeDirectory *voice.NodeDirectory
	httpServer    *http.Server
	scheduler     gocron.Scheduler
}

func runMain(ctx context.Context, cfg *config.Config, cleanup func(context.Context) error, version, commit string) error {
	repo, err := repository.NewGormRepository(cfg)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	store, err := kv.MakeKV(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to key-value store: %w", err)
	}

	m := metrics.NewMetrics()
	store = kv.Instrument(store, m)

	mediaRouter, err := buildMediaRouter(cfg)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to build media router: %w", err)
	}

	nodeDirectory, err := voice.NewNodeDirectory(ctx, repo, m)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to build sfu node directory: %w", err)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if cfg.VoiceBackend == config.VoiceBackendCustom {
		if _, err := scheduler.NewJob(
			gocron.DurationJob(reapInterval),
			gocron.NewTask(func() { nodeDirectory.Reap(ctx, reapTimeout) }),
		); err != nil {
			slog.Error("Failed to schedule sfu node reaper", "error", err)
		}
	}
	scheduler.Start()

	ids := snowflake.NewAllocator()
	tokens := auth.NewTokenStore(repo)
	perms := auth.NewPermissionResolver(repo)
	bus := eventbus.New(m)
	if cfg.Redis.Enabled {
		ps, err := pubsub.MakePubSub(ctx, cfg)
		if err != nil {
			_ = store.Close()
			return fmt.Errorf("failed to connect event bus to redis: %w", err)
		}
		bus.Attach(ctx, ps, ids.NextString())
	}
	presenceTable := presence.New()
	voiceStates := voice.NewStateTable()
	registry := gateway.NewRegistry()
	rateLimiter := ratelimit.New()

	router := httpapi.NewRouter(httpapi.Deps{
		Config:        cfg,
		Repo:          repo,
		Tokens:        tokens,
		Perms:         perms,
		Bus:           bus,
		Presence:      presenceTable,
		VoiceStates:   voiceStates,
		MediaRouter:   mediaRouter,
		NodeDirectory: nodeDirectory,
		IDs:           ids,
		RateLimit:     rateLimiter,
		Registry:      registry,
		Metrics:       m,
		Version:       version,
		Commit:        commit,
	})

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Bind, cfg.HTTP.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to bind http server on %s: %w", addr, err)
	}

	const readHeaderTimeout = 5 * time.Second
	httpServer := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		slog.Info("http server listening", "address", addr)
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			slog.Error("http server stopped", "error", err)
		}
	}()

	deps := &mainDeps{
		cfg:           cfg,
		kv:            store,
		nodeDirectory: nodeDirectory,
		httpServer:    httpServer,
		scheduler:     scheduler,
	}

	waitForShutdownSignal(func() {
		deps.shutdown(ctx, cleanup)
	})
	return nil
}

func (d *mainDeps) shutdown(ctx context.Context, cleanup func(context.Context) error) {
	const timeout = 10 * time.Second
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	wg := new(sync.WaitGroup)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := d.scheduler.StopJobs(); err != nil {
			slog.Error("Failed to stop scheduler jobs", "error", err)
		}
		if err := d.scheduler.Shutdown(); err != nil {
			slog.Error("Failed to stop scheduler", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := d.httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to stop http server", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if cleanup != nil {
			if err := cleanup(shutdownCtx); err != nil {
				slog.Error("Failed to shutdown tracer", "error", err)
			}
		}
	}()

	wg.Wait()

	if err := d.kv.Close(); err != nil {
		slog.Error("Failed to close kv", "error", err)
	}
}

// runSFUEdge runs this process as an embedded-SFU edge node: it builds
// the media backend to validate configuration, then registers and
// heartbeats against the main instance's node directory until signalled
// to stop. The edge node's signaling path is not exposed over the
// network in this core; see DESIGN.md for the scope decision.
func runSFUEdge(ctx context.Context, cfg *config.Config, cleanup func(context.Context) error) error {
	if _, err := voice.NewEmbeddedSFU(cfg.SFU.Endpoint, []byte(cfg.Secret)); err != nil {
		return fmt.Errorf("failed to initialize embedded sfu: %w", err)
	}

	client := sfuclient.New(cfg.SFU)
	if err := client.Register(ctx); err != nil {
		return fmt.Errorf("failed to register with main instance: %w", err)
	}
	slog.Info("registered with main instance", "node_id", cfg.SFU.NodeID, "main_url", cfg.SFU.MainURL)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	interval := time.Duration(cfg.SFU.HeartbeatInterval) * time.Second
	if _, err := scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := client.Heartbeat(ctx, 0); err != nil {
				slog.Error("Failed to heartbeat with main instance", "error", err)
			}
		}),
	); err != nil {
		return fmt.Errorf("failed to schedule heartbeat job: %w", err)
	}
	scheduler.Start()

	waitForShutdownSignal(func() {
		if err := scheduler.Shutdown(); err != nil {
			slog.Error("Failed to stop scheduler", "error", err)
		}

		const timeout = 5 * time.Second
		deregisterCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := client.Deregister(deregisterCtx); err != nil {
			slog.Error("Failed to deregister from main instance", "error", err)
		}

		if cleanup != nil {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if err := cleanup(cleanupCtx); err != nil {
				slog.Error("Failed to shutdown tracer", "error", err)
			}
		}
	})
	return nil
}

// waitForShutdownSignal blocks until SIGINT/SIGTERM/SIGQUIT/SIGHUP is
// received, runs stop, and exits. A hung stop is bounded so the process
// never lingers past the shutdown budget.
func waitForShutdownSignal(stop func()) {
	const timeout = 10 * time.Second

	shutdown.AddWithParam(func(sig os.Signal) {
		slog.Error("Shutting down due to signal", "signal", sig)

		done := make(chan struct{})
		go func() {
			defer close(done)
			stop()
		}()

		select {
		case <-done:
			slog.Info("All servers stopped, shutting down gracefully")
			os.Exit(0)
		case <-time.After(timeout):
			slog.Error("Shutdown timed out, forcing exit")
			os.Exit(1)
		}
	})

	shutdown.Listen(syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
}

func initTracer(config *config.Config) (func(context.Context) error, error) {
	exporter, err := otlptrace.New(
		context.Background(),
		otlptracegrpc.NewClient(
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(config.Metrics.OTLPEndpoint),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	resources, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", "accordserver"),
			attribute.String("library.language", "go"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace resources: %w", err)
	}

	otel.SetTracerProvider(
		sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(resources),
		),
	)
	return exporter.Shutdown, nil
}
