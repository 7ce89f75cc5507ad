package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/maynagashev/roomrent/internal/api"
)

// enterRoomIDScreen открывает экран выбора комнаты с чистой формой.
func (m *model) enterRoomIDScreen() (tea.Model, tea.Cmd) {
	m.resetRoom()
	m.state = roomIDScreen
	m.focusedField = 0
	m.roomIDInput.Focus()
	return m, tea.Batch(textinput.Blink, tea.ClearScreen)
}

// updateRoomIDScreen обрабатывает ввод ID комнаты.
func (m *model) updateRoomIDScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "v", "V":
			return m.enterVerifyScreen()
		case keyEnter:
			return m.submitRoomID()
		}
	}

	var cmd tea.Cmd
	m.roomIDInput, cmd = m.roomIDInput.Update(msg)
	return m, cmd
}

// submitRoomID загружает комнату по введенному ID.
func (m *model) submitRoomID() (tea.Model, tea.Cmd) {
	id, err := strconv.ParseInt(strings.TrimSpace(m.roomIDInput.Value()), 10, 64)
	if err != nil || id <= 0 {
		return m, m.setStatus(errorStyle.Render("ID комнаты должен быть положительным числом"), statusMessageTimeout)
	}
	return m, tea.Batch(m.makeLoadRoomCmd(id), m.setStatus("Загрузка комнаты...", requestTimeout))
}

// handleRoomLoaded открывает карточку комнаты с новой формой оплаты.
func (m *model) handleRoomLoaded(msg roomLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.setStatus(errorStyle.Render("Ошибка загрузки комнаты: "+api.ErrorMessage(msg.err)), statusMessageTimeout)
	}
	form, err := m.deps.NewForm()
	if err != nil {
		return m, m.setStatus(errorStyle.Render("Ошибка создания формы оплаты: "+err.Error()), statusMessageTimeout)
	}
	form.SetRoom(*msg.room)

	m.room = msg.room
	m.form = form
	m.periodError = ""
	m.state = roomScreen
	m.roomIDInput.Blur()
	m.focusedField = periodFieldFrom
	focusInput(inputPtrs(m.periodInputs), m.focusedField)

	return m, tea.Batch(m.signCmdIfNeeded(), m.setStatus("", statusMessageTimeout), textinput.Blink, tea.ClearScreen)
}

// viewRoomIDScreen отображает ввод ID комнаты.
func (m *model) viewRoomIDScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Выбор комнаты") + "\n\n")
	if sess := m.deps.Dispatcher.Store().State().Session; sess != nil {
		if name := sess.ProfileString("username"); name != "" {
			b.WriteString("Пользователь: " + name + "\n\n")
		}
	}
	b.WriteString(m.roomIDInput.View() + "\n\n")
	b.WriteString(subtleStyle.Render("Введите ID комнаты и нажмите Enter") + "\n")
	b.WriteString(subtleStyle.Render("V - верификация аккаунта") + "\n")
	return b.String()
}
