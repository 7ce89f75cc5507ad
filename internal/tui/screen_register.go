package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maynagashev/roomrent/internal/auth"
)

// registerInput собирает анкету из полей экрана регистрации.
func (m *model) registerInput() auth.RegisterInput {
	return auth.RegisterInput{
		FullName:    strings.TrimSpace(m.registerInputs[registerFieldName].Value()),
		Email:       strings.TrimSpace(m.registerInputs[registerFieldEmail].Value()),
		Username:    strings.TrimSpace(m.registerInputs[registerFieldUsername].Value()),
		PhoneNumber: strings.TrimSpace(m.registerInputs[registerFieldPhone].Value()),
		UserType:    strings.TrimSpace(m.registerInputs[registerFieldUserType].Value()),
		Password:    m.registerInputs[registerFieldPassword].Value(),
	}
}

// updateRegisterScreen обрабатывает ввод анкеты регистрации.
// Несовпадение паролей обнаруживается до сетевого запроса.
func (m *model) updateRegisterScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	registerAction := func() (tea.Model, tea.Cmd) {
		password := m.registerInputs[registerFieldPassword].Value()
		confirm := m.registerInputs[registerFieldConfirm].Value()
		if err := auth.CheckPasswordConfirmation(password, confirm); err != nil {
			return m, m.setStatus(errorStyle.Render("Ошибка регистрации: "+err.Error()), statusMessageTimeout)
		}
		cmd := m.makeRegisterCmd(m.registerInput())
		return m, tea.Batch(cmd, m.setStatus("Выполняется регистрация...", requestTimeout))
	}
	back := func() (tea.Model, tea.Cmd) {
		m.state = loginRegisterChoiceScreen
		return m, nil
	}
	return m.handleFormInput(msg, inputPtrs(m.registerInputs), registerAction, back, nil)
}

// handleRegisterDone после успешной регистрации пользователь уже вошел.
func (m *model) handleRegisterDone(msg registerDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, nil
	}
	for i := range m.registerInputs {
		m.registerInputs[i].Reset()
	}
	return m.enterRoomIDScreen()
}

// viewRegisterScreen отображает анкету регистрации.
func (m *model) viewRegisterScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Регистрация нового пользователя") + "\n\n")
	for i := range m.registerInputs {
		b.WriteString(m.registerInputs[i].View() + "\n")
	}
	b.WriteString("\n")
	if st := m.deps.Dispatcher.Store().State().Register; st.Status == auth.StatusFailed && st.Message != "" {
		b.WriteString(errorStyle.Render("Ошибка: "+st.Message) + "\n")
	}
	b.WriteString(subtleStyle.Render("Tab - следующее поле, Enter на последнем поле - регистрация, Esc - назад") + "\n")
	return b.String()
}
