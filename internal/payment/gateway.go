package payment

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"

	"github.com/maynagashev/roomrent/models"
)

// DefaultGatewayURL - форма оплаты тестового шлюза eSewa ePay v2.
const DefaultGatewayURL = "https://rc-epay.esewa.com.np/api/epay/main/v2/form"

// FormValues возвращает поля формы шлюза в виде application/x-www-form-urlencoded.
func FormValues(req models.PaymentRequest) url.Values {
	v := url.Values{}
	for _, f := range formFields(req) {
		v.Set(f.Name, f.Value)
	}
	return v
}

// RedirectURL возвращает GET-адрес перехода на шлюз с полями запроса.
func RedirectURL(gatewayURL string, req models.PaymentRequest) string {
	return gatewayURL + "?" + FormValues(req).Encode()
}

type formField struct {
	Name  string
	Value string
}

func formFields(req models.PaymentRequest) []formField {
	return []formField{
		{"amount", req.Amount.String()},
		{"tax_amount", req.TaxAmount.String()},
		{"total_amount", req.TotalAmount.String()},
		{"transaction_uuid", req.TransactionUUID},
		{"product_code", req.ProductCode},
		{"product_service_charge", req.ProductServiceCharge.String()},
		{"product_delivery_charge", req.ProductDeliveryCharge.String()},
		{"success_url", req.SuccessURL},
		{"failure_url", req.FailureURL},
		{"signed_field_names", req.SignedFieldNames},
		{"signature", req.Signature},
	}
}

// FormFieldNames возвращает имена полей формы шлюза в порядке отправки.
func FormFieldNames() []string {
	fields := formFields(models.PaymentRequest{})
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

var autoSubmitTemplate = template.Must(template.New("esewa").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Переход к оплате</title></head>
<body onload="document.forms[0].submit()">
<form action="{{.Action}}" method="POST">
{{- range .Fields}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}">
{{- end}}
<noscript><button type="submit">Оплатить</button></noscript>
</form>
</body>
</html>
`))

// AutoSubmitHTML рендерит страницу, которая сразу отправляет форму POST на шлюз.
func AutoSubmitHTML(gatewayURL string, req models.PaymentRequest) ([]byte, error) {
	var buf bytes.Buffer
	err := autoSubmitTemplate.Execute(&buf, struct {
		Action string
		Fields []formField
	}{
		Action: gatewayURL,
		Fields: formFields(req),
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка формирования страницы оплаты: %w", err)
	}
	return buf.Bytes(), nil
}
