package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"lobbychat/internal/chat"
	"lobbychat/internal/config"
	"lobbychat/internal/db"
	"lobbychat/internal/middleware"
	"lobbychat/internal/user"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		// No logger yet; stderr will do.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	database, err := db.NewDatabase(cfg.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection failed")
	}
	if err := database.AutoMigrate(); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}
	logger.Info().Msg("connected to PostgreSQL")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	logger.Info().Msg("connected to Redis")

	userRepo := user.NewRepository(database.Conn)
	userService := user.NewService(userRepo, cfg.JWTSecret)
	userHandler := user.NewHandler(userService)

	chatRepo := chat.NewRepository(database.Conn)
	hub := chat.NewHub(redisClient, chatRepo, logger)
	go hub.Run()
	go hub.SubscribeToRedis()
	chatHandler := chat.NewHandler(hub, chatRepo, logger)

	authMiddleware := middleware.NewAuthMiddleware(userService)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	// Public
	r.Post("/register", userHandler.Register)
	r.Post("/login", userHandler.Login)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Handle)
		r.Get("/api/users/search", userHandler.SearchUsers)

		r.Get("/ws", chatHandler.ServeWs)

		r.Get("/api/chat/history", chatHandler.GetLobbyHistory)
		r.Get("/api/chat/private/history", chatHandler.GetPrivateHistory)
		r.Get("/api/chat/unread", chatHandler.GetUnread)
		r.Post("/api/chat/private/read", chatHandler.MarkRead)
	})

	// No read/write timeouts here: they would cut long-lived websocket
	// connections. Per-frame deadlines live in the chat client pumps.
	srv := &http.Server{
		Addr:        cfg.Addr,
		Handler:     r,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
}
