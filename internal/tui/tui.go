package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maynagashev/roomrent/internal/auth"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")) // Пурпурный
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")) // Серый
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F25D94"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
)

// Init - команда, выполняемая при запуске приложения.
func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

// setStatus показывает статус и запускает таймер его очистки.
// Таймер старого статуса новый статус не стирает.
func (m *model) setStatus(text string, timeout time.Duration) tea.Cmd {
	m.statusID++
	m.status = text
	if timeout <= 0 {
		timeout = statusMessageTimeout
	}
	return clearStatusCmd(m.statusID, timeout)
}

// clearStatusCmd возвращает команду, которая через timeout очистит статус id.
func clearStatusCmd(id int, timeout time.Duration) tea.Cmd {
	return tea.Tick(timeout, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

// notificationStatus форматирует уведомление для статусной строки.
func notificationStatus(n auth.Notification) string {
	text := n.Title
	if n.Text != "" {
		text += ": " + n.Text
	}
	if n.Level == auth.LevelError {
		return errorStyle.Render(text)
	}
	return successStyle.Render(text)
}

// getMainContentView возвращает основное содержимое для текущего состояния.
func (m *model) getMainContentView() string {
	switch m.state {
	case loginRegisterChoiceScreen:
		return m.viewLoginRegisterChoiceScreen()
	case loginScreen:
		return m.viewLoginScreen()
	case registerScreen:
		return m.viewRegisterScreen()
	case roomIDScreen:
		return m.viewRoomIDScreen()
	case roomScreen:
		return m.viewRoomScreen()
	case paymentScreen:
		return m.viewPaymentScreen()
	case verifyScreen:
		return m.viewVerifyScreen()
	default:
		return "Неизвестное состояние!"
	}
}

func (m *model) getDebugInfoString() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(" [State: %s]\n", m.state.String()))
	if m.deps.Dispatcher != nil {
		st := m.deps.Dispatcher.Store().State()
		b.WriteString(fmt.Sprintf(" [Login: %s] [Register: %s] [Verify: %s]\n",
			st.Login.Status, st.Register.Status, st.Verify.Status))
		b.WriteString(fmt.Sprintf(" [LoggedIn: %t]\n", st.LoggedIn()))
	}
	if m.form != nil {
		v := m.form.View()
		b.WriteString(fmt.Sprintf(" [Transaction: %s] [Signed: %t] [Pending: %t]\n",
			v.TransactionUUID, v.Signed, v.Pending))
	}
	return b.String()
}

// View отрисовывает пользовательский интерфейс.
func (m *model) View() string {
	var footer strings.Builder
	if m.status != "" {
		footer.WriteString("\n")
		footer.WriteString(m.status)
	}
	if m.deps.Debug {
		footer.WriteString("\n\n---\nОтладка:\n")
		footer.WriteString(m.getDebugInfoString())
	}
	help := subtleStyle.Render("Ctrl+C - выход")
	if m.loggedIn() {
		help = subtleStyle.Render("Ctrl+L - выйти из аккаунта, Ctrl+C - выход")
	}
	return fmt.Sprintf("%s\n%s%s", m.docStyle.Render(m.getMainContentView()), help, footer.String())
}

func (m *model) loggedIn() bool {
	return m.deps.Dispatcher != nil && m.deps.Dispatcher.Store().State().LoggedIn()
}

// ProgramNotifier доставляет уведомления диспетчера в запущенную программу.
// До вызова Attach уведомления только пишутся в лог.
type ProgramNotifier struct {
	mu sync.Mutex
	p  *tea.Program
}

// Attach связывает уведомитель с программой.
func (n *ProgramNotifier) Attach(p *tea.Program) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.p = p
}

// Notify реализует auth.Notifier.
func (n *ProgramNotifier) Notify(notification auth.Notification) {
	n.mu.Lock()
	p := n.p
	n.mu.Unlock()
	if p == nil {
		slog.Info("Уведомление", "title", notification.Title, "text", notification.Text)
		return
	}
	p.Send(notificationMsg{n: notification})
}

// Run запускает TUI и блокируется до выхода пользователя.
func Run(deps Deps, notifier *ProgramNotifier) error {
	m := newModel(deps)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if notifier != nil {
		notifier.Attach(p)
		defer notifier.Attach(nil)
	}
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("ошибка при запуске TUI: %w", err)
	}
	return nil
}
