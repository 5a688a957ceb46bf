package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/CodeRoom/internal/adapters/activity"
	router "github.com/dkeye/CodeRoom/internal/adapters/http"
	"github.com/dkeye/CodeRoom/internal/adapters/rtc"
	wssignal "github.com/dkeye/CodeRoom/internal/adapters/signal"
	"github.com/dkeye/CodeRoom/internal/app"
	"github.com/dkeye/CodeRoom/internal/app/orch"
	"github.com/dkeye/CodeRoom/internal/app/signaling"
	"github.com/dkeye/CodeRoom/internal/config"
	transport "github.com/dkeye/CodeRoom/internal/transport/http"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode != "debug" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, keeping info")
	}

	reg := app.NewRegistry()
	rooms := app.NewRoomTable()
	voice := app.NewVoiceTable()
	relay := app.NewRelay(reg, rooms, app.PolicyByName(cfg.Backpressure))
	signals := signaling.NewCoordinator(relay, signaling.NewTracker(cfg.Signaling.HandshakeTTL))

	o := orch.New(reg, rooms, voice, relay, signals, cfg.EventQueue)
	o.SweepInterval = cfg.Signaling.SweepInterval

	var wg sync.WaitGroup
	var history transport.ActivityHistory
	if cfg.Activity.DSN != "" {
		db, err := activity.Open(cfg.Activity.DSN)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open activity store")
		}
		repo := activity.NewRepository(db)
		recorder := activity.NewRecorder(repo, cfg.Activity.Buffer)
		o.Activity = recorder
		history = repo

		wg.Add(1)
		go func() {
			defer wg.Done()
			recorder.Run(ctx)
		}()
	} else {
		log.Info().Msg("activity history disabled")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		o.Run(ctx)
	}()

	limiter := wssignal.NewRateLimiter(cfg.RateLimit.Events, cfg.RateLimit.Interval)
	ws := wssignal.NewSignalWSController(o, limiter, wssignal.Options{
		ReadLimit:      cfg.ReadLimit,
		PingPeriod:     cfg.PingPeriod,
		PongWait:       cfg.PongWait,
		WriteWait:      cfg.WriteWait,
		SendBuffer:     cfg.SendBuffer,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	handlers := transport.NewHandlers(rooms, voice, reg, history, rtc.ICEConfig(cfg.ICEServers), cfg.Port)

	r := router.SetupRouter(ctx, cfg, handlers, ws)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("CodeRoom server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	wg.Wait()
	log.Info().Msg("Server exited gracefully")
}
