package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// focusInput оставляет фокус только на поле idx.
func focusInput(inputs []*textinput.Model, idx int) tea.Cmd {
	for i, in := range inputs {
		if i == idx {
			in.Focus()
			continue
		}
		in.Blur()
	}
	return textinput.Blink
}

// handleFormInput обрабатывает ввод в наборе полей: Tab/Shift+Tab и Enter
// переключают фокус, Enter на последнем поле вызывает onSubmit, Esc - onBack.
// Остальные сообщения уходят в активное поле; onChange вызывается после
// каждого обновления поля.
func (m *model) handleFormInput(
	msg tea.Msg,
	inputs []*textinput.Model,
	onSubmit func() (tea.Model, tea.Cmd),
	onBack func() (tea.Model, tea.Cmd),
	onChange func() tea.Cmd,
) (tea.Model, tea.Cmd) {
	n := len(inputs)
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyEsc:
			for _, in := range inputs {
				in.Blur()
			}
			return onBack()
		case keyTab:
			m.focusedField = (m.focusedField + 1) % n
			return m, focusInput(inputs, m.focusedField)
		case keyShiftTab:
			m.focusedField = (m.focusedField + n - 1) % n
			return m, focusInput(inputs, m.focusedField)
		case keyEnter:
			if m.focusedField < n-1 {
				m.focusedField++
				return m, focusInput(inputs, m.focusedField)
			}
			return onSubmit()
		}
	}

	if m.focusedField < 0 || m.focusedField >= n {
		m.focusedField = 0
	}
	var cmd tea.Cmd
	*inputs[m.focusedField], cmd = inputs[m.focusedField].Update(msg)
	if onChange != nil {
		return m, tea.Batch(cmd, onChange())
	}
	return m, cmd
}

func inputPtrs(inputs []textinput.Model) []*textinput.Model {
	ptrs := make([]*textinput.Model, len(inputs))
	for i := range inputs {
		ptrs[i] = &inputs[i]
	}
	return ptrs
}
