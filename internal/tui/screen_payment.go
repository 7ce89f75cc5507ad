package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maynagashev/roomrent/internal/payment"
)

// updatePaymentScreen возвращает к выбору комнаты.
func (m *model) updatePaymentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyEnter, keyEsc:
			return m.enterRoomIDScreen()
		}
	}
	return m, nil
}

// viewPaymentScreen отображает запрос на оплату для шлюза.
func (m *model) viewPaymentScreen() string {
	if m.result == nil {
		return "Нет запроса на оплату"
	}
	var b strings.Builder
	req := m.result.Request
	b.WriteString(titleStyle.Render("Оплата через eSewa") + "\n\n")
	b.WriteString("Сумма: " + req.TotalAmount.String() + "\n")
	b.WriteString("Транзакция: " + req.TransactionUUID + "\n\n")

	values := payment.FormValues(req)
	for _, key := range payment.FormFieldNames() {
		b.WriteString(subtleStyle.Render(key+": ") + values.Get(key) + "\n")
	}
	b.WriteString("\nОткройте в браузере для оплаты:\n")
	b.WriteString(focusedStyle.Render(m.result.RedirectURL) + "\n")
	if m.pageSavedPath != "" {
		b.WriteString("\nСтраница автоотправки формы: " + m.pageSavedPath + "\n")
	}
	b.WriteString("\n" + subtleStyle.Render("Enter или Esc - выбрать другую комнату") + "\n")
	return b.String()
}
