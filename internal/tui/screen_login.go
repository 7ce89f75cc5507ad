package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/maynagashev/roomrent/internal/auth"
)

// updateLoginScreen обрабатывает ввод данных для входа.
func (m *model) updateLoginScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	inputs := []*textinput.Model{&m.loginUsernameInput, &m.loginPasswordInput}
	loginAction := func() (tea.Model, tea.Cmd) {
		cmd := m.makeLoginCmd(m.loginUsernameInput.Value(), m.loginPasswordInput.Value())
		return m, tea.Batch(cmd, m.setStatus("Выполняется вход...", requestTimeout))
	}
	back := func() (tea.Model, tea.Cmd) {
		m.state = loginRegisterChoiceScreen
		return m, nil
	}
	return m.handleFormInput(msg, inputs, loginAction, back, nil)
}

// handleLoginDone переходит к выбору комнаты после успешного входа.
// Об ошибке уже сообщило уведомление диспетчера.
func (m *model) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, nil
	}
	return m.enterRoomIDScreen()
}

// viewLoginScreen отображает экран ввода данных для входа.
func (m *model) viewLoginScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Вход в учетную запись") + "\n\n")
	b.WriteString(m.loginUsernameInput.View() + "\n")
	b.WriteString(m.loginPasswordInput.View() + "\n\n")
	if st := m.deps.Dispatcher.Store().State().Login; st.Status == auth.StatusFailed && st.Message != "" {
		b.WriteString(errorStyle.Render("Ошибка: "+st.Message) + "\n")
	}
	b.WriteString(subtleStyle.Render("Нажмите Enter для входа, Esc для возврата") + "\n")
	return b.String()
}
