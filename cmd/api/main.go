package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mealplanner/internal/api"
	"mealplanner/internal/config"
	"mealplanner/internal/database"
	"mealplanner/internal/grocery"
	"mealplanner/internal/logger"
	"mealplanner/internal/metrics"
	"mealplanner/internal/planner"
	"mealplanner/internal/platform/gemini"
	"mealplanner/internal/platform/localllm"
	"mealplanner/internal/profile"
	"mealplanner/internal/recipe"
	"mealplanner/internal/session"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mealplanner",
		Short:         "Grocery list and recipe planning service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file (default ./config.json)")

	down := false
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(cfg *config.Config, db *sqlx.DB, log *zap.Logger) error {
				if down {
					return database.MigrateDown(db, log)
				}
				return database.MigrateUp(db, log)
			})
		},
	}
	migrateCmd.Flags().BoolVar(&down, "down", false, "roll back every migration")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the starter grocery and recipe catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(cfg *config.Config, db *sqlx.DB, log *zap.Logger) error {
				return database.Seed(cmd.Context(), grocery.NewPostgresCatalog(db), recipe.NewPostgresStore(db), log)
			})
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}

	root.AddCommand(serveCmd, migrateCmd, seedCmd)
	return root
}

func withDB(ctx context.Context, fn func(*config.Config, *sqlx.DB, *zap.Logger) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log)
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(cfg, db, log)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withDB(ctx, func(cfg *config.Config, db *sqlx.DB, log *zap.Logger) error {
		if cfg.Database.AutoMigrate {
			if err := database.MigrateUp(db, log); err != nil {
				return err
			}
		}

		sessions, closeSessions, err := newSessionStore(ctx, cfg, db)
		if err != nil {
			return err
		}
		defer closeSessions()

		generator, closeGenerator, err := newGenerator(ctx, cfg.LLM)
		if err != nil {
			return err
		}
		defer closeGenerator()

		items := grocery.NewPostgresCatalog(db)
		recipes := recipe.NewPostgresStore(db)
		profiles := profile.NewPostgresStore(db)
		m := metrics.New()

		opts := []planner.Option{
			planner.WithProfiles(profiles),
			planner.WithMetrics(m),
			planner.WithLogger(log),
		}
		if generator != nil {
			opts = append(opts, planner.WithGenerator(generator))
		}
		p := planner.New(items, recipes, sessions, opts...)

		h := api.NewHandler(p, items, recipes, profiles, db, log)
		h.Timeout = cfg.Server.RequestTimeout
		if cfg.LLM.Timeout > 0 {
			h.GenerationTimeout = cfg.LLM.Timeout
		}
		limiter := api.NewLimiter(cfg.LLM.RatePerMin, cfg.LLM.Burst)
		r := newRouter(h, m, log, cfg.Server.AllowedOrigins, api.RateLimit(limiter))

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			log.Info("server listening",
				zap.String("addr", cfg.Server.Addr),
				zap.String("sessions", cfg.Sessions.Backend),
				zap.String("llm", cfg.LLM.Provider),
			)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	})
}

func newRouter(h *api.Handler, m *metrics.Metrics, log *zap.Logger, origins []string, generate ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(log), m.Middleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/metrics", m.Handler())
	h.Register(r, generate...)
	return r
}

func newSessionStore(ctx context.Context, cfg *config.Config, db *sqlx.DB) (session.Store, func(), error) {
	switch cfg.Sessions.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return session.NewRedisStore(client, cfg.Sessions.TTL), func() { _ = client.Close() }, nil
	case config.BackendMemory:
		return session.NewMemoryStore(), func() {}, nil
	default:
		return session.NewPostgresStore(db), func() {}, nil
	}
}

func newGenerator(ctx context.Context, cfg config.LLMConfig) (planner.Generator, func(), error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		c, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.Model)
		if err != nil {
			return nil, nil, fmt.Errorf("error creating gemini client: %w", err)
		}
		return c, func() { _ = c.Close() }, nil
	case config.ProviderOpenAI:
		return localllm.NewClient(cfg.OpenAIAPIKey, cfg.BaseURL, cfg.Model), func() {}, nil
	}
	return nil, func() {}, nil
}
