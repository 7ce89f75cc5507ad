// Package auth управляет жизненным циклом аутентификации: вход, регистрация,
// верификация и выход, с публикацией состояния запросов в хранилище.
package auth

import (
	"encoding/json"

	"github.com/maynagashev/roomrent/models"
)

// Status - состояние одного запроса.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Flow - вид запроса.
type Flow string

const (
	FlowLogin    Flow = "login"
	FlowRegister Flow = "register"
	FlowVerify   Flow = "verify"
)

// FlowState - состояние запроса одного вида.
type FlowState struct {
	Status  Status
	Payload json.RawMessage // Ответ бэкенда при успехе
	Message string          // Сообщение для пользователя при ошибке
}

// State - снимок состояния аутентификации.
type State struct {
	Login    FlowState
	Register FlowState
	Verify   FlowState
	Session  *models.Session // nil, если пользователь не вошел
}

// Flow возвращает состояние запроса вида f.
func (s State) Flow(f Flow) FlowState {
	switch f {
	case FlowLogin:
		return s.Login
	case FlowRegister:
		return s.Register
	case FlowVerify:
		return s.Verify
	default:
		return FlowState{}
	}
}

// LoggedIn сообщает, есть ли сессия.
func (s State) LoggedIn() bool {
	return s.Session != nil
}

func (s State) with(f Flow, fs FlowState) State {
	switch f {
	case FlowLogin:
		s.Login = fs
	case FlowRegister:
		s.Register = fs
	case FlowVerify:
		s.Verify = fs
	}
	return s
}

// ActionType - тип действия.
type ActionType int

const (
	ActionRequest ActionType = iota + 1
	ActionSuccess
	ActionFail
	ActionLoggedOut
)

// Action - действие, меняющее State через Reduce.
type Action struct {
	Type    ActionType
	Flow    Flow
	Payload json.RawMessage
	Message string
	Session *models.Session // Новая сессия для ActionSuccess, если есть
}

// Request - запрос отправлен.
func Request(f Flow) Action {
	return Action{Type: ActionRequest, Flow: f}
}

// Success - запрос выполнен. sess может быть nil.
func Success(f Flow, payload json.RawMessage, sess *models.Session) Action {
	return Action{Type: ActionSuccess, Flow: f, Payload: payload, Session: sess}
}

// Fail - запрос завершился ошибкой.
func Fail(f Flow, message string) Action {
	return Action{Type: ActionFail, Flow: f, Message: message}
}

// LoggedOut - пользователь вышел.
func LoggedOut() Action {
	return Action{Type: ActionLoggedOut}
}

// InitialState строит начальное состояние по восстановленной сессии:
// восстановленная сессия означает успешный вход.
func InitialState(sess *models.Session) State {
	if sess == nil {
		return State{}
	}
	restored := *sess
	payload, err := json.Marshal(restored)
	if err != nil {
		payload = nil
	}
	return State{
		Login:   FlowState{Status: StatusSucceeded, Payload: payload},
		Session: &restored,
	}
}

// Reduce - чистая функция перехода состояния.
func Reduce(s State, a Action) State {
	switch a.Type {
	case ActionRequest:
		return s.with(a.Flow, FlowState{Status: StatusPending})
	case ActionSuccess:
		next := s.with(a.Flow, FlowState{Status: StatusSucceeded, Payload: a.Payload})
		if a.Session != nil {
			sess := *a.Session
			next.Session = &sess
		}
		return next
	case ActionFail:
		return s.with(a.Flow, FlowState{Status: StatusFailed, Message: a.Message})
	case ActionLoggedOut:
		// Регистрация и верификация остаются как есть, вход и сессия сбрасываются
		s.Login = FlowState{}
		s.Session = nil
		return s
	default:
		return s
	}
}
