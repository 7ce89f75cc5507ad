package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// updateLoginRegisterChoiceScreen обрабатывает выбор между входом и регистрацией.
func (m *model) updateLoginRegisterChoiceScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "r", "R":
			m.state = registerScreen
			m.focusedField = registerFieldName
			focusInput(inputPtrs(m.registerInputs), m.focusedField)
			return m, tea.Batch(textinput.Blink, tea.ClearScreen)
		case "l", "L":
			m.state = loginScreen
			m.focusedField = 0
			m.loginUsernameInput.Focus()
			m.loginPasswordInput.Blur()
			return m, tea.Batch(textinput.Blink, tea.ClearScreen)
		case "q", "Q":
			return m, tea.Quit
		}
	}
	return m, nil
}

// viewLoginRegisterChoiceScreen отображает экран выбора входа или регистрации.
func (m *model) viewLoginRegisterChoiceScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Аренда комнат") + "\n\n")
	b.WriteString("Выберите действие:\n")
	b.WriteString("- Регистрация нового пользователя " + focusedStyle.Render("(R)") + "\n")
	b.WriteString("- Вход с существующими данными " + focusedStyle.Render("(L)") + "\n\n")
	b.WriteString(subtleStyle.Render("Нажмите Q для выхода"))
	return b.String()
}
