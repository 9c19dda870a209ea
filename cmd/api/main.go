package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"hairfluencer/internal/bootstrap"
	"hairfluencer/internal/http/handlers"
	httpapi "hairfluencer/internal/http/httpapi"
	"hairfluencer/internal/infra"
	"hairfluencer/internal/infra/geoip"
	"hairfluencer/internal/metrics"
	"hairfluencer/internal/pipeline"
)

const janitorInterval = time.Minute

func main() {
	// Muat .env (opsional)
	infra.LoadDotEnv()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hairstyles, closeCatalog, err := bootstrap.Catalog(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open hairstyle catalog")
	}
	defer closeCatalog()

	m := metrics.New()
	gate := bootstrap.Gate(cfg)
	presenter, err := bootstrap.Presenter(cfg, gate, &logger, m)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure exporter")
	}

	sessions := pipeline.NewSessions(pipeline.SessionsOptions{
		Factory:  bootstrap.Factory(cfg, &logger, m),
		IdleTTL:  cfg.SessionIdleTimeout,
		Observer: m,
		Logger:   &logger,
	})
	go sessions.RunJanitor(ctx, janitorInterval)

	app := &handlers.App{
		Logger:         &logger,
		Catalog:        hairstyles,
		Sessions:       sessions,
		Presenter:      presenter,
		Gate:           gate,
		BaseCtx:        ctx,
		MaxUploadBytes: cfg.PhotoMaxBytes,
	}
	app.Upgrader.CheckOrigin = originChecker(cfg.CORSAllowedOrigins)

	routerOpts := httpapi.RouterOptions{
		Metrics:         m,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		TrustProxy:      cfg.TrustProxyHeaders,
	}
	countries, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if countries != nil {
		defer countries.Close()
		routerOpts.Countries = countries
	}

	router := httpapi.NewRouter(app, routerOpts)
	server := infra.NewHTTPServer(ctx, cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("edit_endpoint", cfg.EditEndpoint).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
