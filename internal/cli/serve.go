package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"physquiz-service/internal/app"
	"physquiz-service/internal/catalog"
	"physquiz-service/internal/config"
	"physquiz-service/internal/quiz"
	"physquiz-service/internal/stats"
	"physquiz-service/internal/storage"
	transport "physquiz-service/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the study service",
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

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	timeout := config.Duration(cfg.API.Timeout, 15*time.Second)
	source := catalog.NewClient(cfg.API.BaseURL, &http.Client{Timeout: timeout})

	recorder := stats.NewRecorder(store)
	service := app.NewStudyService(source, recorder, store, quiz.Options{
		RequireAnswerToAdvance: cfg.Quiz.RequireAnswerToAdvance,
		ShuffleOptions:         cfg.Quiz.ShuffleOptions,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting physquiz service on :%s (store driver %s)", finalPort, storeDriver(cfg))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func storeDriver(cfg config.Config) string {
	if cfg.Store.Driver == "" {
		return "file"
	}
	return cfg.Store.Driver
}

// openStore builds the configured key-value store. The postgres driver runs
// its migrations before first use.
func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch storeDriver(cfg) {
	case "file":
		path := cfg.Store.Path
		if path == "" {
			path = "data/physquiz.json"
		}
		return storage.NewFileStore(path)
	case "memory":
		return storage.NewMemoryStore(), nil
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "data/physquiz.db"
		}
		return storage.NewSQLiteStore(path)
	case "redis":
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("redis store requires redis.addr")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return storage.NewRedisStore(client), nil
	case "postgres":
		if cfg.Postgres.URL == "" {
			return nil, fmt.Errorf("postgres store requires postgres.url")
		}
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		return storage.NewPostgresStore(pool), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
