package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/pflag"
	"gorm.io/gorm"

	"quizmaker/internal/auth"
	"quizmaker/internal/config"
	"quizmaker/internal/lib/slogcustom"
	"quizmaker/internal/models"
	"quizmaker/internal/quiz"
	"quizmaker/internal/session"
	"quizmaker/internal/store"
	"quizmaker/pkg/cache"
	"quizmaker/pkg/database"
	"quizmaker/pkg/websocket"
)

func main() {
	envFile := pflag.String("env-file", config.DefaultEnvFile, "file with environment settings")
	serve := pflag.Bool("serve", false, "serve the HTTP API instead of the console")
	addr := pflag.String("addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	driver := pflag.String("db-driver", "", "storage driver: sqlite, postgres or memory (overrides DB_DRIVER)")
	dbPath := pflag.String("db-path", "", "sqlite database file (overrides DB_PATH)")
	logLevel := pflag.String("log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg.Serve = *serve
	if pflag.CommandLine.Changed("addr") {
		cfg.HTTPAddr = *addr
	}
	if pflag.CommandLine.Changed("db-driver") {
		cfg.DBDriver = *driver
	}
	if pflag.CommandLine.Changed("db-path") {
		cfg.DBPath = *dbPath
	}
	if pflag.CommandLine.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := setupLogger(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("quizmaker stopped", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	lvl, _ := slogcustom.ParseLevel(level)
	return slog.New(slogcustom.NewCustomHandler(os.Stderr, lvl))
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := store.Seed(ctx, st, auth.HashPassword); err != nil {
		return err
	}

	// Left as a nil interface when redis is not configured.
	var quizCache quiz.Cache
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("redis unavailable, continuing without cache", "addr", cfg.RedisAddr, "error", err)
		} else {
			quizCache = redisCache
			log.Info("redis cache enabled", "addr", cfg.RedisAddr)
		}
	}

	policy, err := quiz.ParseShortAnswerPolicy(cfg.ShortAnswerPolicy)
	if err != nil {
		return err
	}

	jwtSecret := cfg.JWTSecret
	if !cfg.Serve && jwtSecret == "" {
		// Tokens never leave the process in console mode.
		jwtSecret = "console"
	}
	authService := auth.NewService(st, jwtSecret, log.With("component", "auth"))

	if !cfg.Serve {
		quizService := quiz.NewService(st, quizCache, nil, policy, log.With("component", "quiz"))
		app := session.New(session.Config{
			In:   os.Stdin,
			Out:  os.Stdout,
			Auth: authService,
			Quiz: quizService,
			Log:  log.With("component", "session"),
		})
		if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	hub := websocket.NewHub(authService, log.With("component", "ws"))
	go hub.Run(ctx)

	quizService := quiz.NewService(st, quizCache, hub, policy, log.With("component", "quiz"))
	return serveHTTP(ctx, cfg, log, authService, quizService, hub)
}

func openStore(cfg *config.Config, log *slog.Logger) (store.Store, error) {
	if cfg.DBDriver == config.DriverMemory {
		log.Info("using in-memory store")
		return store.NewMemory(), nil
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err = database.NewPostgresDB(&cfg.Postgres, log.With("component", "gorm"))
	default:
		db, err = database.NewSQLiteDB(cfg.DBPath, log.With("component", "gorm"))
	}
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.DBDriver, err)
	}

	st := store.NewGorm(db, log.With("component", "store"))
	if err := st.Migrate(); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("database ready", "driver", cfg.DBDriver)
	return st, nil
}

func serveHTTP(ctx context.Context, cfg *config.Config, log *slog.Logger,
	authService *auth.Service, quizService *quiz.Service, hub *websocket.Hub) error {
	authHandler := auth.NewHandler(authService)
	quizHandler := quiz.NewHandler(quizService)
	requireAdmin := auth.RequireRole(authService, models.RoleAdmin)

	router := mux.NewRouter()

	// Auth routes - no JWT required
	router.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.JWTMiddleware(authService))
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(requireAdmin)
	quizHandler.Mount(api, admin, requireAdmin)

	router.HandleFunc("/ws/results", hub.HandleWebSocket)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      corsMiddleware.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server shut down gracefully")
	return nil
}
