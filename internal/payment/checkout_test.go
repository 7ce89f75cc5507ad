package payment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/roomrent/internal/api"
	"github.com/maynagashev/roomrent/internal/payment"
	"github.com/maynagashev/roomrent/internal/rent"
	"github.com/maynagashev/roomrent/internal/session"
	"github.com/maynagashev/roomrent/models"
)

type fakeBooker struct {
	calls   int
	token   string
	booking models.BookingRequest
	err     error
}

func (b *fakeBooker) HandleRent(_ context.Context, token string, booking models.BookingRequest) error {
	b.calls++
	b.token = token
	b.booking = booking
	return b.err
}

func fixedCalc() rent.Calculator {
	return rent.Calculator{Now: func() time.Time {
		return time.Date(2026, time.October, 14, 9, 0, 0, 0, time.Local)
	}}
}

func readyForm(t *testing.T, from, to string) *payment.Form {
	t.Helper()
	form := newLocalForm(t)
	form.SetRoom(testRoom())
	form.SetPeriod(period(t, from, to))
	return form
}

func TestCheckout_Submit(t *testing.T) {
	booker := &fakeBooker{}
	checkout := payment.NewCheckout(fixedCalc(), loggedInStore(t), booker, "")
	assert.Equal(t, payment.DefaultGatewayURL, checkout.GatewayURL())

	res, err := checkout.Submit(context.Background(), readyForm(t, "2026-10-14", "2026-10-17"))
	require.NoError(t, err)

	assert.Equal(t, 1, booker.calls)
	assert.Equal(t, "a1", booker.token)
	assert.Equal(t, models.BookingRequest{RentID: 7, RentFrom: "2026-10-14", RentTo: "2026-10-17"}, booker.booking)
	assert.Equal(t, "3000", res.Request.TotalAmount.String())
	assert.Contains(t, res.RedirectURL, payment.DefaultGatewayURL+"?")
	assert.Contains(t, res.RedirectURL, "transaction_uuid="+testUUID)
}

func TestCheckout_InputErrorsStopBeforeNetwork(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		want     error
	}{
		{name: "Сегодня по сегодня", from: "2026-10-14", to: "2026-10-14", want: rent.ErrEndTooEarly},
		{name: "Начало в прошлом", from: "2026-10-10", to: "2026-10-12", want: rent.ErrStartInPast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booker := &fakeBooker{}
			checkout := payment.NewCheckout(fixedCalc(), loggedInStore(t), booker, "")
			_, err := checkout.Submit(context.Background(), readyForm(t, tt.from, tt.to))
			require.ErrorIs(t, err, tt.want)
			assert.Zero(t, booker.calls)
		})
	}
}

func TestCheckout_RequiresSession(t *testing.T) {
	booker := &fakeBooker{}
	store := session.NewStore(session.NewMemoryPersister())
	checkout := payment.NewCheckout(fixedCalc(), store, booker, "")

	_, err := checkout.Submit(context.Background(), readyForm(t, "2026-10-14", "2026-10-17"))
	require.ErrorIs(t, err, session.ErrNotAuthenticated)
	assert.Zero(t, booker.calls)
}

func TestCheckout_BookingFailureBlocksPayment(t *testing.T) {
	booker := &fakeBooker{err: &api.ValidationError{Status: 400, Detail: "Room already booked"}}
	checkout := payment.NewCheckout(fixedCalc(), loggedInStore(t), booker, "")

	res, err := checkout.Submit(context.Background(), readyForm(t, "2026-10-14", "2026-10-17"))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, "Room already booked", api.ErrorMessage(err))
}

func TestCheckout_NoRoom(t *testing.T) {
	checkout := payment.NewCheckout(fixedCalc(), loggedInStore(t), &fakeBooker{}, "")
	_, err := checkout.Submit(context.Background(), newLocalForm(t))
	require.ErrorIs(t, err, payment.ErrNotReady)
}

type failingSigner struct{ err error }

func (s failingSigner) Sign(context.Context, payment.SignInput) (payment.Signature, error) {
	return payment.Signature{}, s.err
}

func TestCheckout_RemoteSigningFailureBlocksBooking(t *testing.T) {
	boom := errors.New("signer down")
	form := newRemoteForm(t, failingSigner{err: boom})
	form.SetRoom(testRoom())
	form.SetPeriod(period(t, "2026-10-14", "2026-10-17"))

	booker := &fakeBooker{}
	checkout := payment.NewCheckout(fixedCalc(), loggedInStore(t), booker, "https://gateway.test/form")
	_, err := checkout.Submit(context.Background(), form)
	require.ErrorIs(t, err, boom)
	assert.Zero(t, booker.calls)
}
