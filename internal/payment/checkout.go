package payment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maynagashev/roomrent/internal/rent"
	"github.com/maynagashev/roomrent/models"
)

// Booker сохраняет бронирование на бэкенде.
type Booker interface {
	HandleRent(ctx context.Context, token string, booking models.BookingRequest) error
}

// Result - итог успешного оформления.
type Result struct {
	Request     models.PaymentRequest
	RedirectURL string
}

// Checkout проводит оформление: период, токен, бронирование, затем переход на шлюз.
type Checkout struct {
	calc       rent.Calculator
	tokens     TokenSource
	booker     Booker
	gatewayURL string
}

// NewCheckout создает оформление. Пустой gatewayURL - DefaultGatewayURL.
func NewCheckout(calc rent.Calculator, tokens TokenSource, booker Booker, gatewayURL string) *Checkout {
	if gatewayURL == "" {
		gatewayURL = DefaultGatewayURL
	}
	return &Checkout{calc: calc, tokens: tokens, booker: booker, gatewayURL: gatewayURL}
}

// GatewayURL возвращает адрес шлюза.
func (c *Checkout) GatewayURL() string {
	return c.gatewayURL
}

// Submit оформляет оплату формы. Ошибки периода (*rent.InputError) и
// отсутствия токена возвращаются до любых сетевых вызовов.
// Неудачное бронирование блокирует оплату.
func (c *Checkout) Submit(ctx context.Context, form *Form) (*Result, error) {
	view := form.View()
	if view.Room == nil {
		return nil, ErrNotReady
	}
	if _, err := c.calc.Validate(view.Period); err != nil {
		return nil, err
	}
	token, err := c.tokens.RequireToken("бронирование")
	if err != nil {
		return nil, err
	}

	if form.NeedsSigning() {
		if err = form.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	req, err := form.Snapshot()
	if err != nil {
		return nil, err
	}

	booking := models.BookingRequest{
		RentID:   view.Room.ID,
		RentFrom: view.Period.FromString(),
		RentTo:   view.Period.ToString(),
	}
	if err = c.booker.HandleRent(ctx, token, booking); err != nil {
		slog.Warn("Бронирование не сохранено", "room_id", booking.RentID, "error", err)
		return nil, fmt.Errorf("ошибка бронирования: %w", err)
	}
	slog.Info("Бронирование сохранено",
		"room_id", booking.RentID,
		"rent_from", booking.RentFrom,
		"rent_to", booking.RentTo,
		"transaction_uuid", req.TransactionUUID,
	)

	return &Result{Request: req, RedirectURL: RedirectURL(c.gatewayURL, req)}, nil
}
