package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maynagashev/roomrent/internal/rent"
	"github.com/maynagashev/roomrent/models"
)

// ErrNotReady - форма еще не готова к оплате: нет комнаты, периода или
// актуальной подписи.
var ErrNotReady = errors.New("запрос на оплату не готов")

// ErrStale - входные данные изменились, пока подпись была в пути; подпись отброшена.
var ErrStale = errors.New("данные платежа изменились во время подписи")

// ErrNoSigner - форма создана без подписчика.
var ErrNoSigner = errors.New("подписчик платежей не задан")

// Config - параметры формы оплаты.
type Config struct {
	ClientBaseURL string // База для success/failure URL, например "http://localhost:5173"
	ProductCode   string // Пусто - DefaultProductCode
	Signer        Signer
	NewUUID       func() string // Пусто - uuid.NewString
}

// View - снимок вычисленных значений формы для отображения.
type View struct {
	Room            *models.Room
	Period          rent.Period
	Days            int
	Total           decimal.Decimal
	TransactionUUID string
	Signed          bool // Подпись актуальна для текущей суммы
	Pending         bool // Идет удаленная подпись
	Submittable     bool
}

// Form - граф производных значений оплаты одной комнаты:
// (комната, период) -> сутки -> сумма -> URL -> подпись.
// Каждый сеттер пересчитывает граф до возврата, поэтому снимок
// никогда не содержит устаревшую подпись.
type Form struct {
	mu sync.Mutex

	clientBase      string
	productCode     string
	transactionUUID string // Один на форму, не меняется
	signer          Signer
	local           LocalSigner

	room   *models.Room
	period rent.Period

	days       int
	total      decimal.Decimal
	successURL string
	failureURL string
	signature  *Signature
	version    uint64 // Растет при каждом изменении подписываемых входов
	pending    int
}

// NewForm создает форму с новым идентификатором транзакции.
func NewForm(cfg Config) (*Form, error) {
	if cfg.Signer == nil {
		return nil, ErrNoSigner
	}
	productCode := cfg.ProductCode
	if productCode == "" {
		productCode = DefaultProductCode
	}
	newUUID := cfg.NewUUID
	if newUUID == nil {
		newUUID = uuid.NewString
	}
	f := &Form{
		clientBase:      strings.TrimRight(cfg.ClientBaseURL, "/"),
		productCode:     productCode,
		transactionUUID: newUUID(),
		signer:          cfg.Signer,
		total:           decimal.Zero,
	}
	if local, ok := cfg.Signer.(LocalSigner); ok {
		f.local = local
	}
	f.failureURL = f.clientBase + "/paymentfailure"
	return f, nil
}

// TransactionUUID возвращает идентификатор транзакции формы.
func (f *Form) TransactionUUID() string {
	return f.transactionUUID
}

// SetRoom задает комнату и пересчитывает граф.
func (f *Form) SetRoom(room models.Room) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.room = &room
	f.recomputeLocked()
}

// SetPeriod задает период аренды и пересчитывает граф.
func (f *Form) SetPeriod(p rent.Period) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.period = p
	f.recomputeLocked()
}

// NeedsSigning сообщает, что для текущей суммы нужна удаленная подпись.
// Пока не выбран хотя бы один день, подписывать нечего.
func (f *Form) NeedsSigning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.room != nil && f.days >= 1 && f.signature == nil && f.local == nil
}

// Refresh запрашивает подпись для текущих значений у удаленного подписчика.
// Без комнаты или без оплачиваемых суток возвращает ErrNotReady, не обращаясь
// к подписчику. Если за время запроса входы изменились, возвращает ErrStale.
func (f *Form) Refresh(ctx context.Context) error {
	f.mu.Lock()
	if f.room == nil || f.days < 1 {
		f.mu.Unlock()
		return ErrNotReady
	}
	if f.signature != nil {
		f.mu.Unlock()
		return nil
	}
	in := f.signInputLocked()
	version := f.version
	f.pending++
	f.mu.Unlock()

	sig, err := f.signer.Sign(ctx, in)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending--
	if err != nil {
		return err
	}
	if f.version != version {
		return ErrStale
	}
	f.productCode = sig.ProductCode
	f.signature = &sig
	return nil
}

// View возвращает вычисленные значения.
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := View{
		Period:          f.period,
		Days:            f.days,
		Total:           f.total,
		TransactionUUID: f.transactionUUID,
		Signed:          f.signedLocked(),
		Pending:         f.pending > 0,
		Submittable:     f.submittableLocked(),
	}
	if f.room != nil {
		room := *f.room
		v.Room = &room
	}
	return v
}

// Submittable сообщает, можно ли отправлять форму.
func (f *Form) Submittable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submittableLocked()
}

// Snapshot возвращает подписанный запрос на оплату или ErrNotReady.
func (f *Form) Snapshot() (models.PaymentRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.submittableLocked() {
		return models.PaymentRequest{}, ErrNotReady
	}
	return models.PaymentRequest{
		Amount:                f.total,
		TaxAmount:             decimal.Zero,
		TotalAmount:           f.total,
		TransactionUUID:       f.transactionUUID,
		ProductCode:           f.productCode,
		ProductServiceCharge:  decimal.Zero,
		ProductDeliveryCharge: decimal.Zero,
		SuccessURL:            f.successURL,
		FailureURL:            f.failureURL,
		SignedFieldNames:      f.signature.SignedFieldNames,
		Signature:             f.signature.Value,
	}, nil
}

func (f *Form) recomputeLocked() {
	f.version++
	f.days = rent.Days(f.period)
	f.total = decimal.Zero
	if f.room != nil {
		f.total = f.room.Rent.Mul(decimal.NewFromInt(int64(f.days)))
	}
	f.successURL = f.buildSuccessURLLocked()
	f.signature = nil
	if f.local != nil && f.room != nil {
		sig := f.local.SignLocal(f.signInputLocked())
		f.signature = &sig
	}
}

func (f *Form) signInputLocked() SignInput {
	in := SignInput{
		TotalAmount:     f.total,
		TransactionUUID: f.transactionUUID,
		ProductCode:     f.productCode,
	}
	if f.room != nil {
		in.RoomID = f.room.ID
	}
	return in
}

func (f *Form) signedLocked() bool {
	return f.signature != nil && f.signature.covers(f.total, f.transactionUUID, f.productCode)
}

func (f *Form) submittableLocked() bool {
	return f.room != nil && f.days >= 1 && f.pending == 0 && f.signedLocked()
}

// buildSuccessURLLocked собирает URL возврата с параметрами в фиксированном порядке.
func (f *Form) buildSuccessURLLocked() string {
	if f.room == nil {
		return ""
	}
	params := []struct{ key, value string }{
		{"amount", f.total.String()},
		{"room_seller", strconv.FormatInt(f.room.Owner, 10)},
		{"transaction_uuid", f.transactionUUID},
		{"roomid", strconv.FormatInt(f.room.ID, 10)},
		{"rent_from", f.period.FromString()},
		{"rent_to", f.period.ToString()},
	}
	var b strings.Builder
	b.WriteString(f.clientBase)
	b.WriteString("/paymentsuccess/?")
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		fmt.Fprintf(&b, "%s=%s", p.key, url.QueryEscape(p.value))
	}
	return b.String()
}
