package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"shiftbot/clients/coindesk"
	"shiftbot/clients/pocketbase"
	"shiftbot/commands"
	"shiftbot/config"
	"shiftbot/db"
	"shiftbot/handlers"
	"shiftbot/middleware"
	"shiftbot/services/shifts"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	publicKey, err := cfg.DiscordConfig.PublicKeyBytes()
	if err != nil {
		return err
	}

	env := &commands.Env{
		Config:  cfg,
		Bitcoin: coindesk.NewClient(&http.Client{Timeout: 10 * time.Second}),
	}

	// The shift service only comes up when both its collaborators are
	// configured; the webhook runs fine without it
	if cfg.PocketBaseConfig.IsConfigured() && cfg.DatabaseConfig.IsConfigured() {
		dbConn, err := db.NewConnection(cfg.DatabaseConfig.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		tokensRepo := db.NewPostgresTokensRepository(dbConn, cfg.DatabaseConfig.Schema)
		pocketbaseClient := pocketbase.NewClient(&http.Client{Timeout: 10 * time.Second}, cfg.PocketBaseConfig.BaseURL)
		env.Shifts = shifts.NewService(pocketbaseClient, tokensRepo)
		env.Warnings = db.NewPostgresWarningsRepository(dbConn, cfg.DatabaseConfig.Schema)
		log.Printf("✅ Shift service initialized")
	}

	registry := commands.NewRegistry(env)
	interactionsHandler := handlers.NewInteractionsHandler(publicKey, registry)

	router := mux.NewRouter()
	interactionsHandler.SetupEndpoints(router)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Printf("❌ Failed to write health response: %v", err)
		}
	}).Methods("GET")

	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.AlertConfig{
		WebhookURL:  cfg.AlertWebhookURL,
		Environment: cfg.Environment,
		AppName:     "shiftbot",
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{cfg.CORSAllowedOrigins},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           alertMiddleware.HTTPMiddleware(c.Handler(router)),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return handleGracefulShutdown(server)
}

func handleGracefulShutdown(server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("✅ Listening on http://localhost%s/interactions", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		log.Printf("⚠️ Received %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	log.Printf("✅ Server stopped")
	return nil
}
