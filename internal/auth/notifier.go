package auth

import "time"

// Level - уровень уведомления.
type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

// DefaultToastTimeout - сколько уведомление висит на экране.
const DefaultToastTimeout = 5 * time.Second

// Notification - всплывающее сообщение для пользователя.
type Notification struct {
	Level   Level
	Title   string
	Text    string
	Timeout time.Duration
}

// Notifier показывает уведомления.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc позволяет использовать функцию как Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

type discardNotifier struct{}

func (discardNotifier) Notify(Notification) {}
