package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"gesture_rps/internal/config"
	"gesture_rps/internal/gesture"
	httpServer "gesture_rps/internal/http"
	"gesture_rps/internal/http/middleware"
	"gesture_rps/internal/logger"
	"gesture_rps/internal/match"
	"gesture_rps/internal/ws"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var busOpts []gesture.BusOption
	if cfg.GestureDebounce > 0 {
		busOpts = append(busOpts, gesture.WithDebounce(gesture.NewDebouncer(cfg.GestureDebounce, nil)))
	}
	bus := gesture.NewBus(busOpts...)

	orch := match.New(bus, match.WithTimings(cfg.Timings()))
	hub := ws.NewHub(orch)
	orch.Observe(hub.Broadcast)

	rdb := middleware.PingRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
	}

	r := httpServer.NewRouter(httpServer.Deps{
		Config:  cfg,
		Match:   orch,
		Bus:     bus,
		Hub:     hub,
		Redis:   rdb,
		Version: version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return orch.Run(gctx)
	})

	if rdb != nil {
		feed := gesture.NewRedisFeed(rdb, cfg.RedisChannel, bus)
		g.Go(func() error {
			return feed.Run(gctx)
		})
	}

	g.Go(func() error {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("server exited with error", "error", err)
	}
	logger.Info("server exited")
}
