package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/app"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/config"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/export"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/httpserver"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/ledger"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger := app.NewLogger(cfg, os.Stderr)
	log.Logger = logger

	src, judge, err := app.Collaborators(cfg, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("init phrase source and judge")
	}

	led, err := ledger.Open(cfg.LedgerDriver, cfg.DatabasePath, cfg.DatabaseURL, logger)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.LedgerDriver).Msg("open score ledger")
	}
	defer led.Close()

	st, err := store.Open(cfg.SessionStore, cfg.BadgerPath)
	if err != nil {
		log.Fatal().Err(err).Str("kind", cfg.SessionStore).Msg("open session store")
	}
	defer st.Close()

	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		secret = randomSecret()
		log.Warn().Msg("JWT_SECRET not set; game tokens will not survive a restart")
	}
	var exporter *export.Exporter
	if cfg.ExportFile != "" {
		exporter = export.New(cfg.ExportFile)
	}

	srv := httpserver.New(game.Deps{Phrases: src, Judge: judge}, st, led, httpserver.Options{
		ClientOrigin:      cfg.ClientOrigin,
		JWTSecret:         secret,
		TokenTTL:          cfg.TokenTTL(),
		SecureCookies:     strings.HasPrefix(cfg.ClientOrigin, "https://"),
		AdminUser:         cfg.AdminUser,
		AdminPasswordHash: cfg.AdminPasswordHash,
		DefaultLanguage:   language.Make(cfg.DefaultLanguage),
		GameType:          cfg.GameType,
		History:           cfg.History(),
		RequestTimeout:    cfg.AITimeout * 2,
		Exporter:          exporter,
		Logger:            logger,
	})

	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Str("provider", cfg.AIProvider).Str("ledger", cfg.LedgerDriver).Str("store", cfg.SessionStore).Msg("starting legendary-lines server")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("server stopped")
}

func randomSecret() []byte {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatal().Err(err).Msg("generate secret")
	}
	return []byte(hex.EncodeToString(b))
}
