// Package main provides the MUD server binary. It serves the browser client
// and its WebSocket game endpoint, and optionally Telnet and Prometheus.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/cory-johannsen/wsmud/internal/config"
	"github.com/cory-johannsen/wsmud/internal/frontend/telnet"
	"github.com/cory-johannsen/wsmud/internal/frontend/web"
	"github.com/cory-johannsen/wsmud/internal/game/broadcast"
	"github.com/cory-johannsen/wsmud/internal/game/command"
	"github.com/cory-johannsen/wsmud/internal/game/session"
	"github.com/cory-johannsen/wsmud/internal/game/world"
	"github.com/cory-johannsen/wsmud/internal/gameserver"
	"github.com/cory-johannsen/wsmud/internal/observability"
	"github.com/cory-johannsen/wsmud/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = defaults and environment only")
	worldFile := flag.String("world", "", "path to world YAML file; overrides world.file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *worldFile != "" {
		cfg.World.File = *worldFile
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting mud server",
		zap.String("web_addr", cfg.Web.Addr()),
		zap.Bool("telnet", cfg.Telnet.Enabled),
		zap.Bool("metrics", cfg.Metrics.Enabled),
	)

	// Load world
	def, err := loadWorld(cfg.World.File)
	if err != nil {
		logger.Fatal("loading world", zap.Error(err))
	}
	worldMgr, err := world.NewManager(def)
	if err != nil {
		logger.Fatal("creating world manager", zap.Error(err))
	}
	logger.Info("world loaded",
		zap.String("file", cfg.World.File),
		zap.Int("rooms", worldMgr.RoomCount()),
		zap.String("start_room", worldMgr.StartRoom()),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	// Build game
	sessions := session.NewRegistry()
	router := broadcast.NewRouter(worldMgr, sessions, logger, metrics)
	parser := command.NewParser(command.DefaultRegistry())
	actions := gameserver.NewActions(worldMgr, sessions, router, parser, logger,
		gameserver.WithGuestPrefix(cfg.World.GuestPrefix),
	)
	engine := gameserver.NewEngine(actions, logger, metrics, cfg.Engine.QueueSize)

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)

	engineCtx, stopEngine := context.WithCancel(context.Background())
	lifecycle.Add("engine", &server.FuncService{
		StartFn: func() error { return engine.Run(engineCtx) },
		StopFn:  stopEngine,
	})

	webServer := web.NewServer(cfg.Web, engine, logger, metrics)
	lifecycle.Add("web", &server.FuncService{
		StartFn: webServer.ListenAndServe,
		StopFn:  webServer.Stop,
	})

	if cfg.Telnet.Enabled {
		handler := telnet.NewGameHandler(engine, cfg.Telnet, logger, metrics)
		acceptor := telnet.NewAcceptor(cfg.Telnet, handler, logger)
		lifecycle.Add("telnet", &server.FuncService{
			StartFn: acceptor.ListenAndServe,
			StopFn:  acceptor.Stop,
		})
	}

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, observability.Handler(registry))
		metricsSrv := &http.Server{
			Addr:              cfg.Metrics.Addr(),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		lifecycle.Add("metrics", &server.FuncService{
			StartFn: func() error {
				if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			},
			StopFn: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = metricsSrv.Shutdown(ctx)
			},
		})
	}

	logger.Info("server initialized", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// loadWorld reads the world file, falling back to the built-in world when
// path is empty.
func loadWorld(path string) (*world.Definition, error) {
	if path == "" {
		return world.Default(), nil
	}
	return world.LoadFromFile(path)
}
