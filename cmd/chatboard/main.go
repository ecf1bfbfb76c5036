package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"chatboard/internal/adapter/file"
	adapthttp "chatboard/internal/adapter/http"
	"chatboard/internal/adapter/memory"
	"chatboard/internal/adapter/postgres"
	"chatboard/internal/adapter/sqlite"
	"chatboard/internal/app"
	"chatboard/internal/config"
	"chatboard/internal/domain"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env file not found, using environment: %v", err)
	}

	cfg := config.Load()
	if cfg.BoardPassword == "" && cfg.BoardPasswordHash == "" {
		log.Fatal("BOARD_PASSWORD or BOARD_PASSWORD_HASH is required")
	}
	if cfg.TripSalt == "" {
		log.Fatal("TRIP_SALT is required")
	}

	presenceRepo, messageRepo, cleanup, err := openStore(cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer cleanup()

	sessionStore := memory.New()
	tokens := app.NewTokenService(cfg.TripSalt)
	presenceSvc := app.NewPresenceService(presenceRepo)
	sessionSvc := app.NewSessionService(sessionStore, presenceSvc, tokens, cfg.BoardPassword, cfg.BoardPasswordHash)
	messageSvc := app.NewMessageService(messageRepo, tokens)

	h := adapthttp.New(sessionSvc, presenceSvc, messageSvc, cfg.WebDir, cfg.CookieSecure).Handler()

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	addr := ":" + cfg.ServerPort
	log.Printf("chatboard (%s store) listening on %s", cfg.Store, addr)
	if err := http.ListenAndServe(addr, c.Handler(h)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// openStore wires the presence and message repositories for the configured
// backing store. The returned cleanup closes whatever was opened.
func openStore(cfg config.Config) (domain.PresenceRepository, domain.MessageRepository, func(), error) {
	switch cfg.Store {
	case "file":
		// Each file may be pointed anywhere, not just inside DATA_DIR.
		for _, dir := range []string{cfg.DataDir, filepath.Dir(cfg.PresenceFile), filepath.Dir(cfg.MessagesFile)} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, nil, err
			}
		}
		return file.NewPresenceRepo(cfg.PresenceFile), file.NewMessageRepo(cfg.MessagesFile), func() {}, nil
	case "postgres":
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return db, db.Messages(), func() { _ = db.Close() }, nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, nil, nil, err
		}
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return db, db.Messages(), func() {}, nil
	default:
		return nil, nil, nil, errors.New("STORE must be file, postgres, or sqlite")
	}
}
