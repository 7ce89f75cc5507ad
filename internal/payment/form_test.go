package payment_test

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/roomrent/internal/payment"
	"github.com/maynagashev/roomrent/internal/rent"
	"github.com/maynagashev/roomrent/models"
)

func testRoom() models.Room {
	return models.Room{ID: 7, Owner: 3, Rent: decimal.NewFromInt(1000)}
}

func period(t *testing.T, from, to string) rent.Period {
	t.Helper()
	p, err := rent.ParsePeriod(from, to)
	require.NoError(t, err)
	return p
}

func newLocalForm(t *testing.T) *payment.Form {
	t.Helper()
	signer, err := payment.NewHMACSigner(testSecret)
	require.NoError(t, err)
	form, err := payment.NewForm(payment.Config{
		ClientBaseURL: "http://localhost:5173/",
		Signer:        signer,
		NewUUID:       func() string { return testUUID },
	})
	require.NoError(t, err)
	return form
}

func TestForm_ThreeDaysAtThousand(t *testing.T) {
	form := newLocalForm(t)
	form.SetRoom(testRoom())
	form.SetPeriod(period(t, "2026-10-14", "2026-10-17"))

	view := form.View()
	assert.Equal(t, 3, view.Days)
	assert.Equal(t, "3000", view.Total.String())
	assert.True(t, view.Signed)
	assert.True(t, view.Submittable)

	req, err := form.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "3000", req.TotalAmount.String())
	assert.Equal(t, "3000", req.Amount.String())
	assert.True(t, req.TaxAmount.IsZero())
	assert.True(t, req.ProductServiceCharge.IsZero())
	assert.True(t, req.ProductDeliveryCharge.IsZero())
	assert.Equal(t, "EPAYTEST", req.ProductCode)
	assert.Equal(t, testUUID, req.TransactionUUID)
	assert.Equal(t, "total_amount,transaction_uuid,product_code", req.SignedFieldNames)
	assert.Equal(t, "NvKFN1QkyOr0cyTnNfhoXn9SZP7M9l8J74IXxfxdNvQ=", req.Signature)
	assert.Equal(t,
		"http://localhost:5173/paymentsuccess/?amount=3000&room_seller=3&transaction_uuid="+testUUID+
			"&roomid=7&rent_from=2026-10-14&rent_to=2026-10-17",
		req.SuccessURL)
	assert.Equal(t, "http://localhost:5173/paymentfailure", req.FailureURL)
	assert.True(t, payment.Verify([]byte(testSecret), req))
}

func TestForm_SignatureFollowsTotal(t *testing.T) {
	form := newLocalForm(t)
	form.SetRoom(testRoom())
	form.SetPeriod(period(t, "2026-10-14", "2026-10-17"))
	first, err := form.Snapshot()
	require.NoError(t, err)

	form.SetPeriod(period(t, "2026-10-14", "2026-10-18"))
	second, err := form.Snapshot()
	require.NoError(t, err)

	assert.Equal(t, "4000", second.TotalAmount.String())
	assert.NotEqual(t, first.Signature, second.Signature)
	assert.Equal(t, first.TransactionUUID, second.TransactionUUID, "идентификатор не меняется")
	assert.True(t, payment.Verify([]byte(testSecret), second))
}

func TestForm_FractionalRate(t *testing.T) {
	form := newLocalForm(t)
	room := testRoom()
	room.Rent = decimal.RequireFromString("1000.50")
	form.SetRoom(room)
	form.SetPeriod(period(t, "2026-10-14", "2026-10-17"))

	req, err := form.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "3001.5", req.TotalAmount.String())
	assert.True(t, payment.Verify([]byte(testSecret), req))
}

func TestForm_NotReady(t *testing.T) {
	form := newLocalForm(t)
	_, err := form.Snapshot()
	require.ErrorIs(t, err, payment.ErrNotReady, "без комнаты")

	form.SetRoom(testRoom())
	_, err = form.Snapshot()
	require.ErrorIs(t, err, payment.ErrNotReady, "без периода")
	assert.True(t, form.View().Total.IsZero())

	form.SetPeriod(period(t, "2026-10-14", "2026-10-14"))
	assert.False(t, form.Submittable(), "ноль суток")
}

func TestNewForm_Defaults(t *testing.T) {
	_, err := payment.NewForm(payment.Config{})
	require.ErrorIs(t, err, payment.ErrNoSigner)

	signer, err := payment.NewHMACSigner(testSecret)
	require.NoError(t, err)
	a, err := payment.NewForm(payment.Config{Signer: signer})
	require.NoError(t, err)
	b, err := payment.NewForm(payment.Config{Signer: signer})
	require.NoError(t, err)
	assert.NotEqual(t, a.TransactionUUID(), b.TransactionUUID(), "свой идентификатор на каждую форму")
	assert.Len(t, a.TransactionUUID(), 36)
}

func TestForm_ConcurrentSettersNeverStale(t *testing.T) {
	form := newLocalForm(t)
	form.SetRoom(testRoom())

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			from := time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)
			form.SetPeriod(rent.Period{From: from, To: from.AddDate(0, 0, n)})
			if req, err := form.Snapshot(); err == nil {
				assert.True(t, payment.Verify([]byte(testSecret), req))
			}
		}(i)
	}
	wg.Wait()

	req, err := form.Snapshot()
	require.NoError(t, err)
	assert.True(t, payment.Verify([]byte(testSecret), req))
}

// blockingSigner - удаленный подписчик, который ждет разрешения.
type blockingSigner struct {
	started chan payment.SignInput
	release chan struct{}
}

func (s *blockingSigner) Sign(_ context.Context, in payment.SignInput) (payment.Signature, error) {
	s.started <- in
	<-s.release
	return payment.Signature{
		TotalAmount:      in.TotalAmount,
		TransactionUUID:  in.TransactionUUID,
		ProductCode:      "EPAYTEST",
		SignedFieldNames: payment.SignedFieldNames(),
		Value:            "remote-" + in.TotalAmount.String(),
	}, nil
}

func newRemoteForm(t *testing.T, signer payment.Signer) *payment.Form {
	t.Helper()
	form, err := payment.NewForm(payment.Config{
		ClientBaseURL: "http://localhost:5173",
		Signer:        signer,
		NewUUID:       func() string { return testUUID },
	})
	require.NoError(t, err)
	return form
}

func TestForm_RemoteSigning(t *testing.T) {
	signer := &blockingSigner{started: make(chan payment.SignInput, 1), release: make(chan struct{})}
	form := newRemoteForm(t, signer)
	form.SetRoom(testRoom())
	form.SetPeriod(period(t, "2026-10-14", "2026-10-17"))

	assert.True(t, form.NeedsSigning())
	assert.False(t, form.Submittable(), "без подписи")

	done := make(chan error, 1)
	go func() { done <- form.Refresh(context.Background()) }()
	in := <-signer.started
	assert.Equal(t, int64(7), in.RoomID)
	assert.True(t, form.View().Pending)
	assert.False(t, form.Submittable(), "подпись в пути")

	close(signer.release)
	require.NoError(t, <-done)

	req, err := form.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "remote-3000", req.Signature)
	assert.False(t, form.NeedsSigning())
}

func TestForm_RemoteSignatureDroppedWhenInputsChange(t *testing.T) {
	signer := &blockingSigner{started: make(chan payment.SignInput, 1), release: make(chan struct{})}
	form := newRemoteForm(t, signer)
	form.SetRoom(testRoom())
	form.SetPeriod(period(t, "2026-10-14", "2026-10-17"))

	done := make(chan error, 1)
	go func() { done <- form.Refresh(context.Background()) }()
	<-signer.started

	form.SetPeriod(period(t, "2026-10-14", "2026-10-19"))
	close(signer.release)
	require.ErrorIs(t, <-done, payment.ErrStale)

	assert.False(t, form.Submittable(), "подпись для старой суммы не принята")
	assert.Equal(t, "5000", form.View().Total.String())
	assert.True(t, form.NeedsSigning())
}

func TestForm_RemoteSigningWaitsForPeriod(t *testing.T) {
	signer := &blockingSigner{started: make(chan payment.SignInput, 1), release: make(chan struct{})}
	form := newRemoteForm(t, signer)
	form.SetRoom(testRoom())

	assert.False(t, form.NeedsSigning(), "без периода подписывать нечего")
	require.ErrorIs(t, form.Refresh(context.Background()), payment.ErrNotReady)

	form.SetPeriod(period(t, "2026-10-15", "2026-10-15"))
	assert.False(t, form.NeedsSigning(), "ноль суток")
	require.ErrorIs(t, form.Refresh(context.Background()), payment.ErrNotReady)
	assert.Empty(t, signer.started, "подписчик не вызывался")
}

func TestFormValuesAndRedirect(t *testing.T) {
	form := newLocalForm(t)
	form.SetRoom(testRoom())
	form.SetPeriod(period(t, "2026-10-14", "2026-10-17"))
	req, err := form.Snapshot()
	require.NoError(t, err)

	values := payment.FormValues(req)
	assert.Equal(t, "3000", values.Get("amount"))
	assert.Equal(t, "0", values.Get("tax_amount"))
	assert.Equal(t, "3000", values.Get("total_amount"))
	assert.Equal(t, testUUID, values.Get("transaction_uuid"))
	assert.Equal(t, "EPAYTEST", values.Get("product_code"))
	assert.Equal(t, "0", values.Get("product_service_charge"))
	assert.Equal(t, "0", values.Get("product_delivery_charge"))
	assert.Equal(t, req.SuccessURL, values.Get("success_url"))
	assert.Equal(t, req.FailureURL, values.Get("failure_url"))
	assert.Equal(t, req.Signature, values.Get("signature"))

	redirect, err := url.Parse(payment.RedirectURL(payment.DefaultGatewayURL, req))
	require.NoError(t, err)
	assert.Equal(t, "rc-epay.esewa.com.np", redirect.Host)
	assert.Equal(t, "/api/epay/main/v2/form", redirect.Path)
	assert.Equal(t, values, redirect.Query())
	assert.Len(t, payment.FormFieldNames(), len(values), "имена полей совпадают с набором значений")
	for _, name := range payment.FormFieldNames() {
		assert.Contains(t, values, name)
	}
}

func TestAutoSubmitHTML(t *testing.T) {
	form := newLocalForm(t)
	form.SetRoom(testRoom())
	form.SetPeriod(period(t, "2026-10-14", "2026-10-17"))
	req, err := form.Snapshot()
	require.NoError(t, err)

	page, err := payment.AutoSubmitHTML(payment.DefaultGatewayURL, req)
	require.NoError(t, err)
	html := string(page)
	assert.Contains(t, html, `action="https://rc-epay.esewa.com.np/api/epay/main/v2/form"`)
	assert.Contains(t, html, `method="POST"`)
	assert.Contains(t, html, `name="total_amount" value="3000"`)
	assert.Contains(t, html, `name="transaction_uuid" value="`+testUUID+`"`)
	assert.Contains(t, html, "document.forms[0].submit()")
}
