package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maynagashev/roomrent/internal/auth"
)

// enterVerifyScreen открывает форму верификации аккаунта.
func (m *model) enterVerifyScreen() (tea.Model, tea.Cmd) {
	m.state = verifyScreen
	m.focusedField = 0
	m.roomIDInput.Blur()
	return m, focusInput(inputPtrs(m.verifyInputs), 0)
}

// updateVerifyScreen обрабатывает ввод формы верификации.
func (m *model) updateVerifyScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	submit := func() (tea.Model, tea.Cmd) {
		citizenship := strings.TrimSpace(m.verifyInputs[verifyFieldCitizenship].Value())
		if citizenship == "" {
			return m, m.setStatus(errorStyle.Render("Укажите номер гражданства"), statusMessageTimeout)
		}
		docPath := strings.TrimSpace(m.verifyInputs[verifyFieldDocument].Value())
		cmd := m.makeVerifyCmd(citizenship, docPath)
		return m, tea.Batch(cmd, m.setStatus("Отправка документов...", requestTimeout))
	}
	back := func() (tea.Model, tea.Cmd) {
		return m.enterRoomIDScreen()
	}
	return m.handleFormInput(msg, inputPtrs(m.verifyInputs), submit, back, nil)
}

// handleVerifyDone возвращает к выбору комнаты после успешной отправки.
// Ошибки диспетчера уже показаны уведомлением.
func (m *model) handleVerifyDone(msg verifyDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if msg.local {
			return m, m.setStatus(errorStyle.Render(msg.err.Error()), statusMessageTimeout)
		}
		return m, nil
	}
	for i := range m.verifyInputs {
		m.verifyInputs[i].Reset()
	}
	next, cmd := m.enterRoomIDScreen()
	return next, tea.Batch(cmd, m.setStatus(successStyle.Render("Документы отправлены на верификацию"), statusMessageTimeout))
}

// viewVerifyScreen отображает форму верификации.
func (m *model) viewVerifyScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Верификация аккаунта") + "\n\n")
	for i := range m.verifyInputs {
		b.WriteString(m.verifyInputs[i].View() + "\n")
	}
	b.WriteString("\n")
	if st := m.deps.Dispatcher.Store().State().Verify; st.Status == auth.StatusFailed && st.Message != "" {
		b.WriteString(errorStyle.Render("Ошибка: "+st.Message) + "\n")
	}
	b.WriteString(subtleStyle.Render("Tab - следующее поле, Enter на последнем поле - отправка, Esc - назад") + "\n")
	return b.String()
}
