package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maynagashev/roomrent/internal/api"
)

// Update обрабатывает входящие сообщения.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case keyCtrlC:
			return m, tea.Quit
		case keyLogout:
			if m.loggedIn() {
				return m.logout()
			}
		}
	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil
	case notificationMsg:
		return m, m.setStatus(notificationStatus(msg.n), msg.n.Timeout)
	case loginDoneMsg:
		return m.handleLoginDone(msg)
	case registerDoneMsg:
		return m.handleRegisterDone(msg)
	case verifyDoneMsg:
		return m.handleVerifyDone(msg)
	case roomLoadedMsg:
		return m.handleRoomLoaded(msg)
	case signedMsg:
		return m.handleSigned(msg)
	case checkoutDoneMsg:
		return m.handleCheckoutDone(msg)
	}

	return m.updateScreen(msg)
}

// updateScreen передает сообщение обработчику текущего экрана.
func (m *model) updateScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case loginRegisterChoiceScreen:
		return m.updateLoginRegisterChoiceScreen(msg)
	case loginScreen:
		return m.updateLoginScreen(msg)
	case registerScreen:
		return m.updateRegisterScreen(msg)
	case roomIDScreen:
		return m.updateRoomIDScreen(msg)
	case roomScreen:
		return m.updateRoomScreen(msg)
	case paymentScreen:
		return m.updatePaymentScreen(msg)
	case verifyScreen:
		return m.updateVerifyScreen(msg)
	}
	return m, nil
}

// logout завершает сессию и возвращает на экран выбора.
func (m *model) logout() (tea.Model, tea.Cmd) {
	if err := m.deps.Dispatcher.Logout(); err != nil {
		slog.Error("Ошибка выхода", "error", err)
		return m, m.setStatus(errorStyle.Render(api.ErrorMessage(err)), statusMessageTimeout)
	}
	m.resetRoom()
	m.loginUsernameInput.Reset()
	m.loginPasswordInput.Reset()
	m.state = loginRegisterChoiceScreen
	return m, tea.Batch(m.setStatus("Вы вышли из аккаунта", statusMessageTimeout), tea.ClearScreen)
}

// resetRoom сбрасывает выбранную комнату и форму оплаты.
func (m *model) resetRoom() {
	m.room = nil
	m.form = nil
	m.periodError = ""
	m.submitting = false
	m.result = nil
	m.pageSavedPath = ""
	m.roomIDInput.Reset()
	for i := range m.periodInputs {
		m.periodInputs[i].Reset()
	}
	for i := range m.verifyInputs {
		m.verifyInputs[i].Reset()
	}
}
