package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/killerderoo/fx-restaurant/pkg/bridge"
)

func main() {
	cfg, err := LoadConfig()
	setupLogger(cfg)
	must(err)

	log.Info().
		Str("http", cfg.HTTPAddr).
		Str("grpc", cfg.GRPCAddr).
		Str("db", cfg.DBPath).
		Str("host", cfg.HostURL).
		Str("tiers", cfg.Tiers.String()).
		Msg("starting panels service")

	// Journal
	db, err := openSQLite(cfg.DBPath)
	must(err)
	defer db.Close()
	must(migrate(context.Background(), db))

	// Rabbit
	rabbit, err := NewRabbit(cfg.RabbitURL, cfg.ExchangeName)
	must(err)
	defer rabbit.Close()
	if rabbit == nil {
		log.Warn().Msg("RABBITMQ_URL not set, events disabled")
	}

	sessions, err := NewRegistry(cfg.MaxSessions)
	must(err)
	host := bridge.NewClient(cfg.HostURL, bridge.WithTimeout(cfg.HostTimeout))
	svc := NewService(sessions, host, NewSQLiteJournal(db), rabbit, cfg.Tiers, cfg.HostTimeout)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewServer(svc).Handler(cfg.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	must(err)
	healthSrv := NewHealthServer()
	go func() {
		if err := healthSrv.Serve(lis); err != nil {
			log.Error().Err(err).Msg("grpc health stopped")
		}
	}()

	// clean shutdown on signals
	idle := make(chan struct{})
	go func() {
		defer close(idle)
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		log.Warn().Msg("shutting down...")
		healthSrv.Shutdown()
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownGrace)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
		sessions.Purge()
	}()

	log.Info().Msg("http listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server")
	}
	<-idle
	log.Info().Msg("bye")
}

func setupLogger(cfg Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func must(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
