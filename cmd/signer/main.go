// Сервис подписи платежей: хранит секрет шлюза eSewa и подписывает поля
// платежа для аутентифицированных пользователей маркетплейса.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"

	"github.com/maynagashev/roomrent/internal/server/handlers"
	appmiddleware "github.com/maynagashev/roomrent/internal/server/middleware"
	"github.com/maynagashev/roomrent/internal/server/repository"
	"github.com/maynagashev/roomrent/internal/server/services"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultIdleTimeout  = 30 * time.Second
	schemaTimeout       = 10 * time.Second
)

// newPostgresDB подменяется в тестах.
var newPostgresDB = repository.NewPostgresDB

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	db             *sqlx.DB
	paymentHandler *handlers.PaymentHandler
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	if err := run(); err != nil {
		slog.Error("Ошибка выполнения сервиса подписи", "error", err)
		os.Exit(1)
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run() error {
	cfg, err := parseFlags()
	if err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}
	slog.Info("Запуск сервиса подписи платежей...")

	deps, err := setupDependencies(cfg)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	defer func() {
		if closeErr := deps.db.Close(); closeErr != nil {
			slog.Error("Ошибка закрытия соединения с БД", "error", closeErr)
		}
	}()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      setupRouter(deps.paymentHandler, []byte(cfg.JWTSecret)),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	if cfg.TLSEnabled() {
		slog.Info("Запуск HTTPS-сервера", "port", cfg.Port, "cert", cfg.CertFile)
		err = server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
	} else {
		slog.Warn("TLS не настроен, запуск HTTP-сервера", "port", cfg.Port)
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ошибка запуска сервера: %w", err)
	}
	return nil
}

// setupDependencies инициализирует БД, репозиторий, сервис и обработчики.
func setupDependencies(cfg *config) (*dependencies, error) {
	db, err := newPostgresDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации БД: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()
	if err = repository.EnsureSchema(ctx, db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Ошибка закрытия соединения с БД", "error", closeErr)
		}
		return nil, err
	}

	paymentRepo := repository.NewPostgresPaymentRepository(db)
	signingService := services.NewSigningService(paymentRepo, cfg.EsewaSecret, cfg.ProductCode)

	return &dependencies{
		db:             db,
		paymentHandler: handlers.NewPaymentHandler(signingService),
	}, nil
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(paymentHandler *handlers.PaymentHandler, jwtSecret []byte) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong\n"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Authenticator(jwtSecret))
			r.Post("/payments/sign", paymentHandler.Sign)
		})
	})
	return r
}
