package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/maynagashev/roomrent/internal/rent"
	"github.com/maynagashev/roomrent/models"
)

// Константы, используемые при инициализации.
const (
	initPasswordCharLimit = 156
	initTextCharLimit     = 128
	initTextWidth         = 40
	initRoomIDCharLimit   = 12
	initPathCharLimit     = 1024
	initDateCharLimit     = len(rent.DateLayout)

	docStyleMarginVertical   = 1
	docStyleMarginHorizontal = 2
)

func makeTextInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = initTextWidth
	return ti
}

func makePasswordInput(placeholder string) textinput.Model {
	ti := makeTextInput(placeholder, initPasswordCharLimit)
	ti.EchoMode = textinput.EchoPassword
	return ti
}

func initRegisterInputs() []textinput.Model {
	inputs := make([]textinput.Model, numRegisterFields)
	inputs[registerFieldName] = makeTextInput("Полное имя", initTextCharLimit)
	inputs[registerFieldEmail] = makeTextInput("Email", initTextCharLimit)
	inputs[registerFieldUsername] = makeTextInput("Имя пользователя", initTextCharLimit)
	inputs[registerFieldPhone] = makeTextInput("Телефон", initTextCharLimit)
	inputs[registerFieldUserType] = makeTextInput(models.UserTypeTenant+" или "+models.UserTypeLandlord, initTextCharLimit)
	inputs[registerFieldPassword] = makePasswordInput("Пароль")
	inputs[registerFieldConfirm] = makePasswordInput("Подтверждение пароля")
	return inputs
}

func initPeriodInputs() []textinput.Model {
	inputs := make([]textinput.Model, numPeriodFields)
	inputs[periodFieldFrom] = makeTextInput("Заезд, ГГГГ-ММ-ДД", initDateCharLimit)
	inputs[periodFieldTo] = makeTextInput("Выезд, ГГГГ-ММ-ДД", initDateCharLimit)
	return inputs
}

func initVerifyInputs() []textinput.Model {
	inputs := make([]textinput.Model, numVerifyFields)
	inputs[verifyFieldCitizenship] = makeTextInput("Номер гражданства", initTextCharLimit)
	inputs[verifyFieldDocument] = makeTextInput("Путь к скану документа (необязательно)", initPathCharLimit)
	return inputs
}

// newModel создает модель. Восстановленная сессия сразу открывает выбор комнаты.
func newModel(deps Deps) *model {
	m := &model{
		deps:               deps,
		state:              loginRegisterChoiceScreen,
		loginUsernameInput: makeTextInput("Имя пользователя", initTextCharLimit),
		loginPasswordInput: makePasswordInput("Пароль"),
		registerInputs:     initRegisterInputs(),
		roomIDInput:        makeTextInput("ID комнаты", initRoomIDCharLimit),
		periodInputs:       initPeriodInputs(),
		verifyInputs:       initVerifyInputs(),
		docStyle:           lipgloss.NewStyle().Margin(docStyleMarginVertical, docStyleMarginHorizontal),
	}
	if deps.Dispatcher != nil && deps.Dispatcher.Store().State().LoggedIn() {
		m.state = roomIDScreen
		m.roomIDInput.Focus()
	}
	return m
}
