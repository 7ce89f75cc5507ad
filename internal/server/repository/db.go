// Package repository хранит журнал подписанных платежей в PostgreSQL.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Драйвер PostgreSQL, импортируем для регистрации
)

const (
	maxOpenConns    = 25              // Максимальное количество открытых соединений
	maxIdleConns    = 25              // Максимальное количество простаивающих соединений
	connMaxLifetime = 5 * time.Minute // Максимальное время жизни соединения
	connMaxIdleTime = 5 * time.Minute // Максимальное время простоя соединения
)

// Schema создает таблицу журнала платежей, если ее нет.
const Schema = `CREATE TABLE IF NOT EXISTS payment_intents (
	id               BIGSERIAL PRIMARY KEY,
	transaction_uuid UUID NOT NULL UNIQUE,
	user_id          BIGINT NOT NULL,
	room_id          BIGINT NOT NULL,
	total_amount     NUMERIC(14, 2) NOT NULL,
	product_code     TEXT NOT NULL,
	signature        TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// NewPostgresDB создает и возвращает новое подключение к PostgreSQL.
func NewPostgresDB(dsn string) (*sqlx.DB, error) {
	slog.Info("Подключение к PostgreSQL...")

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	slog.Info("Подключение к PostgreSQL установлено")
	return db, nil
}

// EnsureSchema применяет Schema.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ошибка создания схемы БД: %w", err)
	}
	return nil
}
