package tui

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/roomrent/internal/api"
	"github.com/maynagashev/roomrent/internal/auth"
	"github.com/maynagashev/roomrent/internal/payment"
	"github.com/maynagashev/roomrent/internal/rent"
	"github.com/maynagashev/roomrent/internal/session"
	"github.com/maynagashev/roomrent/models"
)

const (
	testSecret = "8gBm/:&EnhH.1/q"
	testUUID   = "0b7c9a8e-3c1f-4d2a-9e5b-6f1a2b3c4d5e"
)

// fakeBackend - бэкенд аутентификации с настраиваемыми ответами.
type fakeBackend struct {
	mu          sync.Mutex
	loginErr    error
	registerErr error
	verifyErr   error
	logins      []string
	registers   []models.RegisterRequest
	verified    []verifiedForm
}

// verifiedForm - принятая форма верификации с прочитанными вложениями.
type verifiedForm struct {
	citizenship string
	files       map[string]string
}

func (b *fakeBackend) Login(_ context.Context, username, _ string) (*models.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logins = append(b.logins, username)
	if b.loginErr != nil {
		return nil, b.loginErr
	}
	return &models.Session{Access: "access-" + username}, nil
}

func (b *fakeBackend) Register(_ context.Context, req models.RegisterRequest) (*models.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registers = append(b.registers, req)
	if b.registerErr != nil {
		return nil, b.registerErr
	}
	return &models.Session{Access: "access-" + req.Username}, nil
}

func (b *fakeBackend) Verify(_ context.Context, _ string, form *api.MultipartForm) (json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	got := verifiedForm{citizenship: form.Value("citizenship_no"), files: make(map[string]string)}
	for _, file := range form.Files() {
		content, err := io.ReadAll(file.Content)
		if err != nil {
			return nil, err
		}
		got.files[file.Field+"/"+file.FileName] = string(content)
	}
	b.verified = append(b.verified, got)
	if b.verifyErr != nil {
		return nil, b.verifyErr
	}
	return json.RawMessage(`{"status":"pending"}`), nil
}

type fakeRooms struct {
	rooms map[int64]models.Room
}

func (f *fakeRooms) GetRoom(_ context.Context, id int64) (*models.Room, error) {
	room, ok := f.rooms[id]
	if !ok {
		return nil, &api.ValidationError{Op: "получение комнаты", Status: 404, Detail: "Not found."}
	}
	return &room, nil
}

type fakeBooker struct {
	mu       sync.Mutex
	err      error
	bookings []models.BookingRequest
}

func (b *fakeBooker) HandleRent(_ context.Context, _ string, booking models.BookingRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bookings = append(b.bookings, booking)
	return b.err
}

// remoteSigner подписывает как сервер, но не является LocalSigner.
type remoteSigner struct {
	hmac  *payment.HMACSigner
	err   error
	calls int
}

func (s *remoteSigner) Sign(_ context.Context, in payment.SignInput) (payment.Signature, error) {
	s.calls++
	if s.err != nil {
		return payment.Signature{}, s.err
	}
	return s.hmac.SignLocal(in), nil
}

type fixture struct {
	model    *model
	backend  *fakeBackend
	booker   *fakeBooker
	sessions *session.Store
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	loggedIn bool
	signer   payment.Signer
	pagePath string
}

func withSession() fixtureOption {
	return func(c *fixtureConfig) { c.loggedIn = true }
}

func withSigner(s payment.Signer) fixtureOption {
	return func(c *fixtureConfig) { c.signer = s }
}

func withPagePath(path string) fixtureOption {
	return func(c *fixtureConfig) { c.pagePath = path }
}

// testClock - 14.10.2026, середина дня.
func testClock() time.Time {
	return time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)
}

func testRoom() models.Room {
	return models.Room{ID: 7, Owner: 3, Rent: decimal.NewFromInt(1000), Address: "Thamel, Kathmandu", NumberOfRooms: 2}
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	cfg := fixtureConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.signer == nil {
		signer, err := payment.NewHMACSigner(testSecret)
		require.NoError(t, err)
		cfg.signer = signer
	}

	persister := session.NewMemoryPersister()
	if cfg.loggedIn {
		require.NoError(t, persister.Save(models.Session{Access: "restored-token"}))
	}
	sessions := session.NewStore(persister)
	var restored *models.Session
	if sess, ok := sessions.Get(); ok {
		restored = &sess
	}

	backend := &fakeBackend{}
	booker := &fakeBooker{}
	calc := rent.Calculator{Now: testClock}
	dispatcher := auth.NewDispatcher(backend, sessions, auth.NewStore(auth.InitialState(restored)), nil)
	t.Cleanup(dispatcher.Close)

	signer := cfg.signer
	deps := Deps{
		Dispatcher: dispatcher,
		Rooms:      &fakeRooms{rooms: map[int64]models.Room{7: testRoom()}},
		Checkout:   payment.NewCheckout(calc, sessions, booker, ""),
		NewForm: func() (*payment.Form, error) {
			return payment.NewForm(payment.Config{
				ClientBaseURL: "http://localhost:5173",
				Signer:        signer,
				NewUUID:       func() string { return testUUID },
			})
		},
		Calculator: calc,
		PagePath:   cfg.pagePath,
	}
	return &fixture{model: newModel(deps), backend: backend, booker: booker, sessions: sessions}
}

// openRoom загружает тестовую комнату, как после ввода ID.
func (f *fixture) openRoom(t *testing.T) {
	t.Helper()
	room := testRoom()
	_, _ = f.model.Update(roomLoadedMsg{room: &room})
	require.Equal(t, roomScreen, f.model.state)
	require.NotNil(t, f.model.form)
}

// setPeriod вводит даты и применяет их к форме.
func (f *fixture) setPeriod(from, to string) {
	f.model.periodInputs[periodFieldFrom].SetValue(from)
	f.model.periodInputs[periodFieldTo].SetValue(to)
	f.model.onPeriodChanged()
}

var errBookingFailed = errors.New("сервер бронирования недоступен")
