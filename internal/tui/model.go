// Package tui - терминальный клиент маркетплейса аренды комнат (bubbletea).
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/maynagashev/roomrent/internal/auth"
	"github.com/maynagashev/roomrent/internal/payment"
	"github.com/maynagashev/roomrent/internal/rent"
	"github.com/maynagashev/roomrent/models"
)

// Состояния (экраны) приложения.
type screenState int

const (
	loginRegisterChoiceScreen screenState = iota // Экран выбора "Войти или Зарегистрироваться?"
	loginScreen                                  // Экран ввода данных для входа
	registerScreen                               // Экран регистрации
	roomIDScreen                                 // Экран ввода ID комнаты
	roomScreen                                   // Карточка комнаты с выбором периода
	paymentScreen                                // Итог оформления оплаты
	verifyScreen                                 // Отправка документов на верификацию
)

func (s screenState) String() string {
	switch s {
	case loginRegisterChoiceScreen:
		return "loginRegisterChoice"
	case loginScreen:
		return "login"
	case registerScreen:
		return "register"
	case roomIDScreen:
		return "roomID"
	case roomScreen:
		return "room"
	case paymentScreen:
		return "payment"
	case verifyScreen:
		return "verify"
	default:
		return "unknown"
	}
}

// Константы для TUI.
const (
	keyEnter    = "enter"
	keyEsc      = "esc"
	keyTab      = "tab"
	keyShiftTab = "shift+tab"
	keyCtrlC    = "ctrl+c"
	keyLogout   = "ctrl+l"

	statusMessageTimeout = 3 * time.Second // Время отображения статусных сообщений
	requestTimeout       = 20 * time.Second
)

// Индексы полей регистрации.
const (
	registerFieldName = iota
	registerFieldEmail
	registerFieldUsername
	registerFieldPhone
	registerFieldUserType
	registerFieldPassword
	registerFieldConfirm
	numRegisterFields
)

// Индексы полей верификации.
const (
	verifyFieldCitizenship = iota
	verifyFieldDocument
	numVerifyFields
)

// Индексы полей периода аренды.
const (
	periodFieldFrom = iota
	periodFieldTo
	numPeriodFields
)

// RoomFetcher получает карточку комнаты.
type RoomFetcher interface {
	GetRoom(ctx context.Context, id int64) (*models.Room, error)
}

// Deps - зависимости TUI.
type Deps struct {
	Dispatcher *auth.Dispatcher
	Rooms      RoomFetcher
	Checkout   *payment.Checkout
	NewForm    func() (*payment.Form, error) // Новая форма на каждый просмотр комнаты
	Calculator rent.Calculator
	PagePath   string // Куда сохранить страницу автоотправки формы оплаты (пусто - не сохранять)
	Debug      bool
}

// model представляет состояние TUI приложения.
type model struct {
	deps  Deps
	state screenState

	loginUsernameInput textinput.Model
	loginPasswordInput textinput.Model
	registerInputs     []textinput.Model
	roomIDInput        textinput.Model
	periodInputs       []textinput.Model
	verifyInputs       []textinput.Model
	focusedField       int // Индекс активного поля на текущем экране

	room          *models.Room
	form          *payment.Form
	periodError   string // Ошибка проверки периода, показывается под полями
	submitting    bool
	result        *payment.Result
	pageSavedPath string

	status   string // Статусная строка (уведомление)
	statusID int    // Номер статуса, чтобы таймер старого не стер новый

	docStyle lipgloss.Style
}

// --- Сообщения --- //

// clearStatusMsg очищает статус с номером id.
type clearStatusMsg struct {
	id int
}

// notificationMsg доставляет уведомление диспетчера в цикл событий.
type notificationMsg struct {
	n auth.Notification
}

type loginDoneMsg struct {
	err error
}

type registerDoneMsg struct {
	err error
}

// verifyDoneMsg - итог верификации. local - ошибка до обращения к диспетчеру.
type verifyDoneMsg struct {
	err   error
	local bool
}

type roomLoadedMsg struct {
	room *models.Room
	err  error
}

type signedMsg struct {
	err error
}

type checkoutDoneMsg struct {
	result   *payment.Result
	pagePath string
	err      error
}
