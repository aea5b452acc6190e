package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog_service/internal/auth"
	"blog_service/internal/blog"
	"blog_service/internal/config"
	"blog_service/internal/http_server/handlers/account"
	"blog_service/internal/http_server/handlers/home"
	"blog_service/internal/http_server/handlers/login"
	"blog_service/internal/http_server/handlers/logout"
	postCreate "blog_service/internal/http_server/handlers/post_create"
	postDelete "blog_service/internal/http_server/handlers/post_delete"
	postGet "blog_service/internal/http_server/handlers/post_get"
	postUpdate "blog_service/internal/http_server/handlers/post_update"
	"blog_service/internal/http_server/handlers/register"
	resetPassword "blog_service/internal/http_server/handlers/reset_password"
	resetRequest "blog_service/internal/http_server/handlers/reset_request"
	rateLimit "blog_service/internal/middleware/ratelimit"
	"blog_service/internal/rabbitmq"
	"blog_service/internal/session"
	"blog_service/internal/storage/postgres"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad("./config/config.yaml")

	log := setupLogger(cfg.Env)

	log.Info("starting blog service", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Shutdown signal received")
		cancel()
	}()

	if err := postgres.RunMigrations(cfg); err != nil {
		log.Error("failed to run migrations", slog.String("err", err.Error()))
		os.Exit(1)
	}

	storage, err := postgres.New(ctx, cfg)
	if err != nil {
		log.Error("failed to connect postgres", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		log.Error("failed to connect rabbitmq", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer msgBroker.Close()

	sessions := session.New(log, storage, cfg.Auth.SecretKey, cfg.Auth.SessionTTL, cfg.Auth.RememberTTL)
	authService := auth.New(log, storage, storage, msgBroker, cfg.Auth.SecretKey, cfg.Auth.ResetTokenTTL, cfg.Auth.BcryptCost)
	blogService := blog.New(log, storage)

	router := setupRouter(cfg, log, sessions, authService, blogService)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", slog.String("err", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", slog.String("err", err.Error()))
	} else {
		log.Info("Server stopped gracefully")
	}

	log.Info("Main service stopped")
}

func setupRouter(
	cfg *config.Config,
	log *slog.Logger,
	sessions *session.Manager,
	authService *auth.Auth,
	blogService *blog.Service,
) *chi.Mux {
	validate := validator.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.With(rateLimit.Posts()).Get("/",
		home.New(log, blogService),
	)

	r.With(rateLimit.Register()).Post("/register",
		register.New(log, validate, sessions, authService),
	)
	r.With(rateLimit.Login()).Post("/login",
		login.New(log, validate, sessions, authService),
	)
	r.Post("/logout",
		logout.New(log, sessions),
	)

	r.With(rateLimit.Account()).Get("/account",
		account.NewShow(log, sessions),
	)
	r.With(rateLimit.Account()).Post("/account",
		account.New(log, validate, sessions, authService, cfg.Uploads.Dir),
	)

	r.With(rateLimit.Posts()).Post("/posts",
		postCreate.New(log, validate, sessions, blogService),
	)
	r.With(rateLimit.Posts()).Get("/posts/{id}",
		postGet.New(log, blogService),
	)
	r.With(rateLimit.Posts()).Put("/posts/{id}",
		postUpdate.New(log, validate, sessions, blogService),
	)
	r.With(rateLimit.Posts()).Delete("/posts/{id}",
		postDelete.New(log, sessions, blogService),
	)

	r.With(rateLimit.ResetRequest()).Post("/reset_password",
		resetRequest.New(log, validate, sessions, authService, cfg.HTTPServer.BaseURL),
	)
	r.With(rateLimit.ResetPassword()).Post("/reset_password/confirm",
		resetPassword.New(log, validate, sessions, authService),
	)

	return r
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
