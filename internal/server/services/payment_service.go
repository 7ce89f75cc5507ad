// Package services содержит бизнес-логику сервиса подписи платежей.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/maynagashev/roomrent/internal/payment"
	"github.com/maynagashev/roomrent/internal/server/repository"
	"github.com/maynagashev/roomrent/models"
)

// Ошибки сервиса.
var (
	ErrInvalidTransactionUUID = errors.New("некорректный transaction_uuid")
	ErrInvalidAmount          = errors.New("сумма платежа должна быть положительной")
	ErrInvalidRoom            = errors.New("некорректный room_id")
	ErrTransactionConflict    = errors.New("transaction_uuid уже подписан с другими данными")
)

// SigningService подписывает поля платежа секретом шлюза и ведет журнал подписей.
type SigningService interface {
	Sign(ctx context.Context, userID int64, req models.SignRequest) (*models.SignResponse, error)
}

// Убедимся, что signingService удовлетворяет интерфейсу SigningService.
var _ SigningService = (*signingService)(nil)

type signingService struct {
	repo        repository.PaymentRepository
	secret      []byte
	productCode string
}

// NewSigningService создает сервис подписи. Пустой productCode - payment.DefaultProductCode.
func NewSigningService(repo repository.PaymentRepository, secret, productCode string) SigningService {
	if productCode == "" {
		productCode = payment.DefaultProductCode
	}
	return &signingService{repo: repo, secret: []byte(secret), productCode: productCode}
}

// Sign проверяет запрос, подписывает его и записывает в журнал.
// Повтор того же запроса возвращает ту же подпись. Тот же пользователь и
// комната могут переподписать transaction_uuid на новую сумму (период аренды
// изменился). Повтор transaction_uuid другим пользователем, для другой
// комнаты или кода продукта - ErrTransactionConflict.
func (s *signingService) Sign(ctx context.Context, userID int64, req models.SignRequest) (*models.SignResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	intent := &models.PaymentIntent{
		TransactionUUID: req.TransactionUUID,
		UserID:          userID,
		RoomID:          req.RoomID,
		TotalAmount:     req.TotalAmount,
		ProductCode:     s.productCode,
		Signature: payment.Sign(s.secret,
			payment.SigningString(req.TotalAmount, req.TransactionUUID, s.productCode)),
	}

	existing, err := s.repo.GetByTransactionUUID(ctx, req.TransactionUUID)
	switch {
	case err == nil:
		return s.resign(ctx, existing, intent)
	case !errors.Is(err, repository.ErrPaymentNotFound):
		return nil, fmt.Errorf("ошибка проверки журнала платежей: %w", err)
	}

	if _, err = s.repo.Create(ctx, intent); err != nil {
		if !errors.Is(err, repository.ErrDuplicateTransaction) {
			return nil, fmt.Errorf("ошибка записи в журнал платежей: %w", err)
		}
		// Параллельный запрос успел записать тот же transaction_uuid
		existing, err = s.repo.GetByTransactionUUID(ctx, req.TransactionUUID)
		if err != nil {
			return nil, fmt.Errorf("ошибка проверки журнала платежей: %w", err)
		}
		return s.resign(ctx, existing, intent)
	}

	slog.Info("Платеж подписан",
		"user_id", userID,
		"room_id", req.RoomID,
		"transaction_uuid", req.TransactionUUID,
		"total_amount", req.TotalAmount.String(),
	)
	return response(intent), nil
}

// resign сверяет запрос с записанной транзакцией: совпадение возвращает
// подпись, новая сумма той же формы обновляет запись.
func (s *signingService) resign(
	ctx context.Context,
	existing, requested *models.PaymentIntent,
) (*models.SignResponse, error) {
	if existing.UserID != requested.UserID ||
		existing.RoomID != requested.RoomID ||
		existing.ProductCode != requested.ProductCode {
		slog.Warn("Конфликт transaction_uuid",
			"transaction_uuid", requested.TransactionUUID,
			"user_id", requested.UserID,
		)
		return nil, ErrTransactionConflict
	}
	// Сумма в ответе - та, что пришла в запросе: ее строковое представление подписано
	if existing.TotalAmount.Equal(requested.TotalAmount) {
		return response(requested), nil
	}

	if err := s.repo.UpdateSigned(ctx, requested); err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, ErrTransactionConflict
		}
		return nil, fmt.Errorf("ошибка обновления журнала платежей: %w", err)
	}
	slog.Info("Платеж переподписан",
		"user_id", requested.UserID,
		"room_id", requested.RoomID,
		"transaction_uuid", requested.TransactionUUID,
		"previous_amount", existing.TotalAmount.String(),
		"total_amount", requested.TotalAmount.String(),
	)
	return response(requested), nil
}

func validate(req models.SignRequest) error {
	parsed, err := uuid.Parse(req.TransactionUUID)
	if err != nil || parsed.String() != req.TransactionUUID {
		return ErrInvalidTransactionUUID
	}
	if !req.TotalAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if req.RoomID <= 0 {
		return ErrInvalidRoom
	}
	return nil
}

func response(intent *models.PaymentIntent) *models.SignResponse {
	return &models.SignResponse{
		TotalAmount:      intent.TotalAmount,
		TransactionUUID:  intent.TransactionUUID,
		ProductCode:      intent.ProductCode,
		SignedFieldNames: payment.SignedFieldNames(),
		Signature:        intent.Signature,
	}
}
