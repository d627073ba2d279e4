package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"interview-prep-service/internal/app"
	"interview-prep-service/internal/config"
	"interview-prep-service/internal/domain"
	"interview-prep-service/internal/genai"
	filestore "interview-prep-service/internal/infra/file"
	"interview-prep-service/internal/infra/memory"
	pgstore "interview-prep-service/internal/infra/postgres"
	redisstore "interview-prep-service/internal/infra/redis"
	"interview-prep-service/internal/logger"
	transport "interview-prep-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the interview prep server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Server.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.GenAI.APIKey == "" {
		log.Warn("no Gemini API key configured, generation requests will fail")
	}
	if cfg.OAuth.ClientID == "" {
		log.Warn("no OAuth client id configured, login is effectively disabled")
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	// Store selection: Postgres when configured, then Redis, then the
	// file-backed default.
	var store app.DocumentStore
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = pgstore.NewDocumentStore(pool)
		log.Info("using postgres document store")
	case cfg.Redis.Addr != "":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		store = redisstore.NewDocumentStore(client)
		log.Info("using redis document store", "addr", cfg.Redis.Addr)
	default:
		fs, err := filestore.NewDocumentStore(cfg.Storage.Dir)
		if err != nil {
			return err
		}
		store = fs
		log.Info("using file document store", "dir", cfg.Storage.Dir)
	}

	client := genai.NewClient(log, genai.Options{
		BaseURL:    cfg.GenAI.BaseURL,
		APIKey:     cfg.GenAI.APIKey,
		Model:      cfg.GenAI.Model,
		Timeout:    config.TTLDuration(cfg.GenAI.Timeout, 60*time.Second),
		MaxRetries: cfg.GenAI.MaxRetries,
	})
	gateway := genai.NewGateway(client, log)
	explanations := memory.NewExplanationCache(gateway, config.TTLDuration(cfg.Explanations.TTL, 30*time.Minute))

	tokens := transport.NewTokenAuth(cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))
	auth := app.NewAuthService(store, cfg.OAuth.UserinfoURL, tokens.SignToken, log)
	topics := app.NewTopicService(store, gateway, log)

	if err := auth.Load(ctx); err != nil {
		return err
	}
	if err := topics.Load(ctx); err != nil {
		return err
	}

	newSession := func(topic domain.Topic) *app.PracticeSession {
		return app.NewPracticeSession(topic, gateway.NewInterviewChat(topic), gateway)
	}

	mux := http.NewServeMux()
	transport.NewAPIHandler(auth, topics, explanations, tokens, log).Register(mux)
	wsHandler := transport.NewWSHandler(topics, newSession, tokens, log)
	mux.HandleFunc("GET /ws/practice", wsHandler.ServeWS)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// Generation calls can run long; the write timeout has to outlast them.
		WriteTimeout: 2 * time.Minute,
	}

	go func() {
		log.Info("starting interview prep service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", "error", err.Error())
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
