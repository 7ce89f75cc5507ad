package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest - подписанный набор полей для формы оплаты eSewa ePay v2.
// Секрет подписи сюда не входит и никогда не сериализуется.
type PaymentRequest struct {
	Amount                decimal.Decimal `json:"amount"`
	TaxAmount             decimal.Decimal `json:"tax_amount"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	TransactionUUID       string          `json:"transaction_uuid"`
	ProductCode           string          `json:"product_code"`
	ProductServiceCharge  decimal.Decimal `json:"product_service_charge"`
	ProductDeliveryCharge decimal.Decimal `json:"product_delivery_charge"`
	SuccessURL            string          `json:"success_url"`
	FailureURL            string          `json:"failure_url"`
	SignedFieldNames      string          `json:"signed_field_names"`
	Signature             string          `json:"signature"`
}

// SignRequest - запрос клиента к сервису подписи.
type SignRequest struct {
	RoomID          int64           `json:"room_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TransactionUUID string          `json:"transaction_uuid"`
}

// SignResponse - подписанные поля, которые возвращает сервис подписи.
type SignResponse struct {
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TransactionUUID  string          `json:"transaction_uuid"`
	ProductCode      string          `json:"product_code"`
	SignedFieldNames string          `json:"signed_field_names"`
	Signature        string          `json:"signature"`
}

// PaymentIntent - запись журнала подписанных платежей на стороне сервиса подписи.
// Тэги `db` используются для маппинга с полями БД с помощью sqlx.
type PaymentIntent struct {
	ID              int64           `db:"id" json:"id"`
	TransactionUUID string          `db:"transaction_uuid" json:"transaction_uuid"`
	UserID          int64           `db:"user_id" json:"user_id"`
	RoomID          int64           `db:"room_id" json:"room_id"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	ProductCode     string          `db:"product_code" json:"product_code"`
	Signature       string          `db:"signature" json:"signature"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}
