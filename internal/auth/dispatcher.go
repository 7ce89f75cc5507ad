package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/maynagashev/roomrent/internal/api"
	"github.com/maynagashev/roomrent/internal/session"
	"github.com/maynagashev/roomrent/models"
)

// ErrSuperseded - ответ пришел на запрос, который уже заменен новым
// запросом или выходом; результат отброшен.
var ErrSuperseded = errors.New("запрос заменен более новым")

// ErrPasswordMismatch - пароль и подтверждение не совпадают.
var ErrPasswordMismatch = errors.New("пароли не совпадают")

// Backend - часть API бэкенда, которая нужна диспетчеру.
type Backend interface {
	Login(ctx context.Context, username, password string) (*models.Session, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.Session, error)
	Verify(ctx context.Context, token string, form *api.MultipartForm) (json.RawMessage, error)
}

// RegisterInput - анкета регистрации.
type RegisterInput struct {
	Email       string
	Password    string
	Username    string
	FullName    string
	PhoneNumber string
	UserType    string // models.UserTypeLandlord или models.UserTypeTenant
}

func (in RegisterInput) request() models.RegisterRequest {
	return models.RegisterRequest{
		Name:        in.FullName,
		Password:    in.Password,
		Email:       in.Email,
		Username:    in.Username,
		PhoneNumber: in.PhoneNumber,
		UserType:    in.UserType,
	}
}

// CheckPasswordConfirmation проверяет, что пароль введен дважды одинаково.
func CheckPasswordConfirmation(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// flight - запрос в полете.
type flight struct {
	gen    uint64
	cancel context.CancelFunc
}

// ticket фиксирует поколения потоков на момент отправки запроса.
type ticket struct {
	gens   map[Flow]uint64
	cancel context.CancelFunc
}

// Dispatcher выполняет операции аутентификации и публикует их исход
// в Store, Session Store и Notifier. Безопасен для конкурентного использования.
type Dispatcher struct {
	backend  Backend
	sessions *session.Store
	store    *Store
	notifier Notifier

	mu      sync.Mutex
	gens    map[Flow]uint64
	flights map[Flow]*flight
}

// NewDispatcher создает диспетчер. notifier может быть nil.
func NewDispatcher(backend Backend, sessions *session.Store, store *Store, notifier Notifier) *Dispatcher {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	return &Dispatcher{
		backend:  backend,
		sessions: sessions,
		store:    store,
		notifier: notifier,
		gens:     make(map[Flow]uint64),
		flights:  make(map[Flow]*flight),
	}
}

// Store возвращает хранилище состояния.
func (d *Dispatcher) Store() *Store {
	return d.store
}

// Login выполняет вход. Возвращает nil при успехе, ErrSuperseded, если
// результат отброшен, иначе исходную ошибку (она уже опубликована в Store).
func (d *Dispatcher) Login(ctx context.Context, username, password string) error {
	ctx, t := d.begin(ctx, FlowLogin)
	defer d.finish(t)

	sess, err := d.backend.Login(ctx, username, password)
	if err != nil {
		return d.fail(t, FlowLogin, "Ошибка входа", err)
	}
	if !d.commitSession(t, sess, FlowLogin) {
		return ErrSuperseded
	}
	slog.Info("Вход выполнен", "username", username)
	d.notifier.Notify(Notification{
		Level:   LevelSuccess,
		Title:   "Вход выполнен",
		Text:    "Вы успешно вошли в систему",
		Timeout: DefaultToastTimeout,
	})
	return nil
}

// Register регистрирует пользователя. Бэкенд сразу возвращает сессию,
// поэтому успех публикуется и для регистрации, и для входа.
// Регистрация заменяет незавершенный вход.
func (d *Dispatcher) Register(ctx context.Context, in RegisterInput) error {
	ctx, t := d.begin(ctx, FlowRegister, FlowLogin)
	defer d.finish(t)

	sess, err := d.backend.Register(ctx, in.request())
	if err != nil {
		return d.fail(t, FlowRegister, "Ошибка регистрации", err)
	}
	if !d.commitSession(t, sess, FlowRegister, FlowLogin) {
		return ErrSuperseded
	}
	slog.Info("Регистрация выполнена", "username", in.Username)
	return nil
}

// VerifyRegistration отправляет форму верификации от имени вошедшего пользователя.
// Без сессии сразу публикует ошибку и не обращается к сети.
func (d *Dispatcher) VerifyRegistration(ctx context.Context, form *api.MultipartForm) error {
	ctx, t := d.begin(ctx, FlowVerify)
	defer d.finish(t)

	token, err := d.sessions.RequireToken("верификация")
	if err != nil {
		return d.fail(t, FlowVerify, "Ошибка верификации", err)
	}
	if form == nil {
		form = api.NewMultipartForm()
	}

	payload, err := d.backend.Verify(ctx, token, form)
	if err != nil {
		return d.fail(t, FlowVerify, "Ошибка верификации", err)
	}
	if !d.commit(t, func() {
		d.store.Dispatch(Success(FlowVerify, payload, nil))
	}) {
		return ErrSuperseded
	}
	return nil
}

// Logout удаляет сессию и синхронно публикует выход. Запросы в полете
// отменяются, их ответы будут отброшены.
func (d *Dispatcher) Logout() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelAllLocked()
	err := d.sessions.Clear()
	d.store.Dispatch(LoggedOut())
	if err != nil {
		slog.Error("Ошибка удаления сессии при выходе", "error", err)
		return err
	}
	slog.Info("Выход выполнен")
	return nil
}

// Close отменяет все запросы в полете.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelAllLocked()
}

// begin отменяет предыдущие запросы потоков flows, начинает новое поколение
// и публикует Request для первого потока.
func (d *Dispatcher) begin(parent context.Context, flows ...Flow) (context.Context, ticket) {
	ctx, cancel := context.WithCancel(parent)

	d.mu.Lock()
	defer d.mu.Unlock()

	t := ticket{gens: make(map[Flow]uint64, len(flows)), cancel: cancel}
	for _, f := range flows {
		if prev, ok := d.flights[f]; ok {
			prev.cancel()
		}
		d.gens[f]++
		t.gens[f] = d.gens[f]
		d.flights[f] = &flight{gen: d.gens[f], cancel: cancel}
	}
	d.store.Dispatch(Request(flows[0]))
	return ctx, t
}

// commit выполняет apply, только если ни один поток билета не был заменен.
func (d *Dispatcher) commit(t ticket, apply func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for f, gen := range t.gens {
		if d.gens[f] != gen {
			slog.Debug("Ответ устарел, отбрасываем", "flow", string(f))
			return false
		}
	}
	apply()
	return true
}

func (d *Dispatcher) commitSession(t ticket, sess *models.Session, flows ...Flow) bool {
	payload, err := json.Marshal(sess)
	if err != nil {
		payload = nil
	}
	return d.commit(t, func() {
		if errSet := d.sessions.Set(*sess); errSet != nil {
			slog.Error("Не удалось сохранить сессию", "error", errSet)
		}
		for _, f := range flows {
			d.store.Dispatch(Success(f, payload, sess))
		}
	})
}

// fail публикует ошибку и уведомление, если запрос еще актуален.
func (d *Dispatcher) fail(t ticket, f Flow, title string, err error) error {
	message := api.ErrorMessage(err)
	if !d.commit(t, func() {
		d.store.Dispatch(Fail(f, message))
	}) {
		return ErrSuperseded
	}
	slog.Warn(title, "flow", string(f), "error", err)
	d.notifier.Notify(Notification{
		Level:   LevelError,
		Title:   title,
		Text:    message,
		Timeout: DefaultToastTimeout,
	})
	return fmt.Errorf("%s: %w", title, err)
}

// finish освобождает контекст запроса и снимает его с учета.
func (d *Dispatcher) finish(t ticket) {
	t.cancel()

	d.mu.Lock()
	defer d.mu.Unlock()
	for f, gen := range t.gens {
		if fl, ok := d.flights[f]; ok && fl.gen == gen {
			delete(d.flights, f)
		}
	}
}

func (d *Dispatcher) cancelAllLocked() {
	for _, f := range []Flow{FlowLogin, FlowRegister, FlowVerify} {
		d.gens[f]++
		if fl, ok := d.flights[f]; ok {
			fl.cancel()
			delete(d.flights, f)
		}
	}
}
