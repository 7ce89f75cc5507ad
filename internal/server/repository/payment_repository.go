package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/maynagashev/roomrent/models"
)

// Коды ошибок PostgreSQL.
const (
	pgUniqueViolationCode = "23505"
)

// Ошибки репозитория.
var (
	ErrPaymentNotFound      = errors.New("платеж не найден")
	ErrDuplicateTransaction = errors.New("транзакция с таким идентификатором уже существует")
)

// PaymentRepository определяет методы работы с журналом подписанных платежей.
type PaymentRepository interface {
	Create(ctx context.Context, intent *models.PaymentIntent) (int64, error)
	GetByTransactionUUID(ctx context.Context, transactionUUID string) (*models.PaymentIntent, error)
	// UpdateSigned перезаписывает сумму и подпись транзакции того же пользователя и комнаты.
	UpdateSigned(ctx context.Context, intent *models.PaymentIntent) error
}

// postgresPaymentRepository реализует PaymentRepository для PostgreSQL.
type postgresPaymentRepository struct {
	db *sqlx.DB
}

// NewPostgresPaymentRepository создает репозиторий журнала платежей.
func NewPostgresPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &postgresPaymentRepository{db: db}
}

// Create записывает подписанный платеж и возвращает его ID.
func (r *postgresPaymentRepository) Create(ctx context.Context, intent *models.PaymentIntent) (int64, error) {
	query := `INSERT INTO payment_intents (transaction_uuid, user_id, room_id, total_amount, product_code, signature)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		intent.TransactionUUID,
		intent.UserID,
		intent.RoomID,
		intent.TotalAmount,
		intent.ProductCode,
		intent.Signature,
	).Scan(&intent.ID, &intent.CreatedAt)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return 0, ErrDuplicateTransaction
		}
		return 0, fmt.Errorf("ошибка записи платежа: %w", err)
	}

	slog.Debug("Платеж записан", "id", intent.ID, "transaction_uuid", intent.TransactionUUID)
	return intent.ID, nil
}

// GetByTransactionUUID находит платеж по идентификатору транзакции.
func (r *postgresPaymentRepository) GetByTransactionUUID(
	ctx context.Context,
	transactionUUID string,
) (*models.PaymentIntent, error) {
	query := `SELECT id, transaction_uuid, user_id, room_id, total_amount, product_code, signature, created_at
		FROM payment_intents WHERE transaction_uuid = $1`

	var intent models.PaymentIntent
	if err := r.db.GetContext(ctx, &intent, query, transactionUUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("ошибка получения платежа: %w", err)
	}
	return &intent, nil
}

// UpdateSigned обновляет сумму и подпись. Если транзакции с такими
// пользователем и комнатой нет, возвращает ErrPaymentNotFound.
func (r *postgresPaymentRepository) UpdateSigned(ctx context.Context, intent *models.PaymentIntent) error {
	query := `UPDATE payment_intents SET total_amount = $1, signature = $2
		WHERE transaction_uuid = $3 AND user_id = $4 AND room_id = $5`

	res, err := r.db.ExecContext(ctx, query,
		intent.TotalAmount,
		intent.Signature,
		intent.TransactionUUID,
		intent.UserID,
		intent.RoomID,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления платежа: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка обновления платежа: %w", err)
	}
	if affected == 0 {
		return ErrPaymentNotFound
	}

	slog.Debug("Подпись платежа обновлена",
		"transaction_uuid", intent.TransactionUUID,
		"total_amount", intent.TotalAmount.String(),
	)
	return nil
}
