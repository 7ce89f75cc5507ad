// Package payment собирает и подписывает запрос на оплату через
// платежную форму eSewa ePay v2.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/maynagashev/roomrent/models"
)

// DefaultProductCode - код продукта тестового шлюза.
const DefaultProductCode = "EPAYTEST"

// signedFields - подписываемые поля в порядке подписи.
var signedFields = []string{"total_amount", "transaction_uuid", "product_code"}

// SignedFieldNames возвращает значение поля signed_field_names.
func SignedFieldNames() string {
	return strings.Join(signedFields, ",")
}

// ErrSignatureMismatch - сервис подписи вернул не те поля, которые мы просили подписать.
var ErrSignatureMismatch = errors.New("сервис подписи вернул поля, не совпадающие с запросом")

// ErrEmptySecret - локальная подпись без секрета невозможна.
var ErrEmptySecret = errors.New("секрет подписи не задан")

// SigningString формирует строку "field1=value1,field2=value2,..." по signedFields.
func SigningString(total decimal.Decimal, transactionUUID, productCode string) string {
	values := map[string]string{
		"total_amount":     total.String(),
		"transaction_uuid": transactionUUID,
		"product_code":     productCode,
	}
	parts := make([]string, 0, len(signedFields))
	for _, name := range signedFields {
		parts = append(parts, name+"="+values[name])
	}
	return strings.Join(parts, ",")
}

// Sign возвращает base64(HMAC-SHA256(secret, message)).
func Sign(secret []byte, message string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify проверяет подпись запроса секретом secret.
func Verify(secret []byte, req models.PaymentRequest) bool {
	if req.SignedFieldNames != SignedFieldNames() {
		return false
	}
	expected := Sign(secret, SigningString(req.TotalAmount, req.TransactionUUID, req.ProductCode))
	return hmac.Equal([]byte(expected), []byte(req.Signature))
}

// SignInput - данные для подписи.
type SignInput struct {
	RoomID          int64
	TotalAmount     decimal.Decimal
	TransactionUUID string
	ProductCode     string
}

// Signature - результат подписи и поля, которые она покрывает.
type Signature struct {
	TotalAmount      decimal.Decimal
	TransactionUUID  string
	ProductCode      string
	SignedFieldNames string
	Value            string
}

// covers сообщает, что подпись выдана именно для этих значений полей.
func (s Signature) covers(total decimal.Decimal, transactionUUID, productCode string) bool {
	return s.TotalAmount.Equal(total) &&
		s.TransactionUUID == transactionUUID &&
		s.ProductCode == productCode &&
		s.SignedFieldNames == SignedFieldNames()
}

// Signer подписывает поля платежа.
type Signer interface {
	Sign(ctx context.Context, in SignInput) (Signature, error)
}

// LocalSigner подписывает без ввода-вывода; Form вызывает его прямо в сеттерах.
type LocalSigner interface {
	Signer
	SignLocal(in SignInput) Signature
}

// HMACSigner подписывает локальным секретом. Только для тестового шлюза:
// секрет при этом хранится на клиенте.
type HMACSigner struct {
	secret []byte
}

// NewHMACSigner создает локальный подписчик.
func NewHMACSigner(secret string) (*HMACSigner, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &HMACSigner{secret: []byte(secret)}, nil
}

func (s *HMACSigner) SignLocal(in SignInput) Signature {
	return Signature{
		TotalAmount:      in.TotalAmount,
		TransactionUUID:  in.TransactionUUID,
		ProductCode:      in.ProductCode,
		SignedFieldNames: SignedFieldNames(),
		Value:            Sign(s.secret, SigningString(in.TotalAmount, in.TransactionUUID, in.ProductCode)),
	}
}

func (s *HMACSigner) Sign(_ context.Context, in SignInput) (Signature, error) {
	return s.SignLocal(in), nil
}

// TokenSource выдает bearer токен для операции или PreconditionError.
type TokenSource interface {
	RequireToken(op string) (string, error)
}

// SignClient - часть API клиента, которая обращается к сервису подписи.
type SignClient interface {
	SignPayment(ctx context.Context, token string, req models.SignRequest) (*models.SignResponse, error)
}

// RemoteSigner подписывает через доверенный сервис подписи: секрет живет только там.
type RemoteSigner struct {
	client SignClient
	tokens TokenSource
}

// NewRemoteSigner создает подписчик поверх сервиса подписи.
func NewRemoteSigner(client SignClient, tokens TokenSource) *RemoteSigner {
	return &RemoteSigner{client: client, tokens: tokens}
}

func (s *RemoteSigner) Sign(ctx context.Context, in SignInput) (Signature, error) {
	token, err := s.tokens.RequireToken("подпись платежа")
	if err != nil {
		return Signature{}, err
	}
	resp, err := s.client.SignPayment(ctx, token, models.SignRequest{
		RoomID:          in.RoomID,
		TotalAmount:     in.TotalAmount,
		TransactionUUID: in.TransactionUUID,
	})
	if err != nil {
		return Signature{}, fmt.Errorf("ошибка подписи платежа: %w", err)
	}
	sig := Signature{
		TotalAmount:      resp.TotalAmount,
		TransactionUUID:  resp.TransactionUUID,
		ProductCode:      resp.ProductCode,
		SignedFieldNames: resp.SignedFieldNames,
		Value:            resp.Signature,
	}
	// Код продукта задает сервис, сумма и идентификатор должны совпасть с запросом
	if !sig.covers(in.TotalAmount, in.TransactionUUID, sig.ProductCode) || sig.Value == "" {
		return Signature{}, ErrSignatureMismatch
	}
	return sig, nil
}
