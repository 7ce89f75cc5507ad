// Package handlers содержит HTTP обработчики сервиса подписи.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/maynagashev/roomrent/internal/server/middleware"
	"github.com/maynagashev/roomrent/internal/server/services"
	"github.com/maynagashev/roomrent/models"
)

// maxSignRequestSize - ограничение на размер тела запроса подписи.
const maxSignRequestSize = 4 << 10

// PaymentSigner определяет интерфейс сервиса подписи для обработчика.
type PaymentSigner interface {
	Sign(ctx context.Context, userID int64, req models.SignRequest) (*models.SignResponse, error)
}

// PaymentHandler обрабатывает запросы подписи платежей.
type PaymentHandler struct {
	service PaymentSigner
}

// NewPaymentHandler создает новый экземпляр PaymentHandler.
func NewPaymentHandler(s PaymentSigner) *PaymentHandler {
	return &PaymentHandler{service: s}
}

// Sign обрабатывает POST /api/payments/sign.
func (h *PaymentHandler) Sign(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Требуется аутентификация")
		return
	}

	var req models.SignRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSignRequestSize))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		slog.Debug("Ошибка декодирования запроса подписи", "error", err)
		writeError(w, http.StatusBadRequest, "Неверный формат запроса")
		return
	}

	resp, err := h.service.Sign(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTransactionUUID),
			errors.Is(err, services.ErrInvalidAmount),
			errors.Is(err, services.ErrInvalidRoom):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrTransactionConflict):
			writeError(w, http.StatusConflict, err.Error())
		default:
			slog.Error("Ошибка подписи платежа", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeError отвечает в формате {"detail": "..."}, как бэкенд маркетплейса.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, models.ErrorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Ошибка кодирования ответа", "error", err)
	}
}
