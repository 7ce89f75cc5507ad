package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maynagashev/roomrent/internal/api"
	"github.com/maynagashev/roomrent/internal/payment"
	"github.com/maynagashev/roomrent/internal/rent"
)

// updateRoomScreen обрабатывает ввод периода аренды и отправку оплаты.
func (m *model) updateRoomScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	back := func() (tea.Model, tea.Cmd) {
		return m.enterRoomIDScreen()
	}
	return m.handleFormInput(msg, inputPtrs(m.periodInputs), m.submitPayment, back, m.onPeriodChanged)
}

// onPeriodChanged переносит введенный период в форму, если он изменился,
// и запускает подпись новой суммы.
func (m *model) onPeriodChanged() tea.Cmd {
	if m.form == nil {
		return nil
	}
	from := strings.TrimSpace(m.periodInputs[periodFieldFrom].Value())
	to := strings.TrimSpace(m.periodInputs[periodFieldTo].Value())

	m.periodError = ""
	period, err := rent.ParsePeriod(from, to)
	if err != nil {
		// Пока дата набирается, ошибку разбора не показываем.
		if len(from) >= len(rent.DateLayout) || len(to) >= len(rent.DateLayout) {
			m.periodError = err.Error()
		}
		period = rent.Period{}
	} else if period.IsSet() {
		if _, errValidate := m.deps.Calculator.Validate(period); errValidate != nil {
			m.periodError = errValidate.Error()
		}
	}

	current := m.form.View().Period
	if current.FromString() == period.FromString() && current.ToString() == period.ToString() {
		return nil
	}
	m.form.SetPeriod(period)
	if m.periodError != "" {
		return nil
	}
	return m.signCmdIfNeeded()
}

// signCmdIfNeeded возвращает команду удаленной подписи, если форме она нужна.
func (m *model) signCmdIfNeeded() tea.Cmd {
	if m.form == nil || !m.form.NeedsSigning() {
		return nil
	}
	return makeSignCmd(m.form)
}

// submitPayment бронирует комнату и формирует запрос на оплату.
func (m *model) submitPayment() (tea.Model, tea.Cmd) {
	if m.form == nil || m.submitting {
		return m, nil
	}
	if _, err := m.deps.Calculator.Validate(m.form.View().Period); err != nil {
		m.periodError = err.Error()
		return m, nil
	}
	if !m.form.Submittable() {
		status := m.setStatus("Дождитесь подписи платежа", statusMessageTimeout)
		if m.form.View().Pending {
			return m, status
		}
		return m, tea.Batch(m.signCmdIfNeeded(), status)
	}
	m.submitting = true
	return m, tea.Batch(m.makeCheckoutCmd(m.form), m.setStatus("Оформление оплаты...", requestTimeout))
}

// handleSigned показывает ошибку подписи. Устаревшая подпись уже заменяется
// запросом для новых значений, поэтому ErrStale пропускается.
func (m *model) handleSigned(msg signedMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil || errors.Is(msg.err, payment.ErrStale) {
		return m, nil
	}
	return m, m.setStatus(errorStyle.Render("Ошибка подписи платежа: "+api.ErrorMessage(msg.err)), statusMessageTimeout)
}

// handleCheckoutDone открывает итог оплаты или показывает ошибку.
func (m *model) handleCheckoutDone(msg checkoutDoneMsg) (tea.Model, tea.Cmd) {
	m.submitting = false
	if msg.result == nil {
		var inputErr *rent.InputError
		if errors.As(msg.err, &inputErr) {
			m.periodError = inputErr.Error()
			return m, m.setStatus("", statusMessageTimeout)
		}
		return m, m.setStatus(errorStyle.Render(api.ErrorMessage(msg.err)), statusMessageTimeout)
	}

	m.result = msg.result
	m.pageSavedPath = msg.pagePath
	m.state = paymentScreen
	for i := range m.periodInputs {
		m.periodInputs[i].Blur()
	}
	if msg.err != nil {
		return m, tea.Batch(m.setStatus(errorStyle.Render(msg.err.Error()), statusMessageTimeout), tea.ClearScreen)
	}
	return m, tea.Batch(m.setStatus(successStyle.Render("Бронирование сохранено"), statusMessageTimeout), tea.ClearScreen)
}

// viewRoomScreen отображает карточку комнаты и расчет оплаты.
func (m *model) viewRoomScreen() string {
	if m.room == nil || m.form == nil {
		return "Комната не выбрана"
	}
	var b strings.Builder
	room := m.room
	b.WriteString(titleStyle.Render(fmt.Sprintf("Комната #%d", room.ID)) + "\n\n")
	b.WriteString("Адрес: " + room.Address + "\n")
	b.WriteString("Комнат: " + strconv.Itoa(room.NumberOfRooms) + "\n")
	if room.Bathroom != "" {
		b.WriteString("Санузел: " + room.Bathroom + "\n")
	}
	if room.PhoneNumber != "" {
		b.WriteString("Телефон: " + room.PhoneNumber + "\n")
	}
	if room.OtherDetails != "" {
		b.WriteString("Подробности: " + room.OtherDetails + "\n")
	}
	if images := room.Images(); len(images) > 0 {
		b.WriteString("Фото: " + strings.Join(images, ", ") + "\n")
	}
	b.WriteString("Цена за сутки: " + room.Rent.String() + "\n\n")

	for i := range m.periodInputs {
		b.WriteString(m.periodInputs[i].View() + "\n")
	}
	b.WriteString("\n")

	view := m.form.View()
	b.WriteString(fmt.Sprintf("Суток: %d\n", view.Days))
	b.WriteString("Итого: " + view.Total.String() + "\n")
	switch {
	case view.Pending:
		b.WriteString(subtleStyle.Render("Подпись платежа...") + "\n")
	case view.Signed:
		b.WriteString(successStyle.Render("Платеж подписан") + "\n")
	}
	if m.periodError != "" {
		b.WriteString(errorStyle.Render("Ошибка: "+m.periodError) + "\n")
	}
	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(subtleStyle.Render("Оформление оплаты...") + "\n")
	case view.Submittable:
		b.WriteString(focusedStyle.Render("Enter на дате выезда - оплатить") + "\n")
		b.WriteString(subtleStyle.Render("Tab - следующее поле, Esc - другая комната") + "\n")
	default:
		b.WriteString(subtleStyle.Render("Tab - следующее поле, Esc - другая комната") + "\n")
	}
	return b.String()
}
