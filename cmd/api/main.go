package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medical-calendar/internal/adapters/assistant/modelgw"
	"medical-calendar/internal/adapters/auth/tokens"
	"medical-calendar/internal/config"
	"medical-calendar/internal/platform/logger"
	"medical-calendar/internal/ports/assistant"
	"medical-calendar/internal/ports/auth"
	"medical-calendar/internal/router"
)

// @title MediCal API
// @version 1.0
// @description API de seguimiento de medicación: recetas, calendario de dosis y portal de administración.
// @BasePath /
func main() {
	cfg := config.Load()

	format := logger.ParseFormat(cfg.LogFormat)
	if cfg.LogFormat == "" && !cfg.IsDev() {
		format = logger.FormatJSON
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: format,
		App:    "medical-calendar",
	})

	// Verifier de tokens solo si hay secreto; sin él corremos en modo dev
	// con headers X-Debug-*.
	var verifier auth.AuthVerifier
	if cfg.JWTSecret != "" {
		v, err := tokens.NewVerifier(cfg.JWTSecret)
		if err != nil {
			log.Fatal().Err(err).Msg("configurando verifier de tokens")
		}
		verifier = v
	} else {
		log.Warn().Msg("sin AUTH_JWT_SECRET: autenticación en modo dev")
	}

	var gw assistant.Assistant
	if cfg.AssistantBaseURL != "" {
		client, err := modelgw.New(modelgw.Config{
			BaseURL: cfg.AssistantBaseURL,
			APIKey:  cfg.AssistantAPIKey,
			Model:   cfg.AssistantModel,
			Timeout: cfg.AssistantTimeout,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("configurando gateway del asistente")
		}
		gw = client
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Assistant:    gw,
		Logger:       log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown forzado")
	}
	log.Info().Msg("server stopped")
}
