// Package session хранит сессию аутентифицированного пользователя
// и переживает перезапуск клиента через Persister.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/maynagashev/roomrent/models"
)

// StorageKey - фиксированное имя, под которым сессия сохраняется на клиенте.
const StorageKey = "userInfo"

// ErrNoSession возвращается Persister.Load, когда сохраненной сессии нет.
var ErrNoSession = errors.New("сохраненная сессия не найдена")

// ErrEmptyToken - попытка сохранить сессию без токена доступа.
var ErrEmptyToken = errors.New("сессия без токена доступа")

// PreconditionError сообщает, что для операции нужен токен, а пользователь не вошел.
type PreconditionError struct {
	Op string // Операция, которой нужен токен
}

func (e *PreconditionError) Error() string {
	if e.Op == "" {
		return "необходимо войти: токен авторизации не найден"
	}
	return fmt.Sprintf("%s: необходимо войти, токен авторизации не найден", e.Op)
}

// Is позволяет сравнивать любые PreconditionError с ErrNotAuthenticated.
func (e *PreconditionError) Is(target error) bool {
	_, ok := target.(*PreconditionError)
	return ok
}

// ErrNotAuthenticated - общий вид PreconditionError для errors.Is.
var ErrNotAuthenticated = &PreconditionError{}

// Persister определяет долговременное хранилище одной сессии.
type Persister interface {
	// Load читает сессию. Возвращает ErrNoSession, если ее нет.
	Load() (models.Session, error)
	// Save перезаписывает сохраненную сессию.
	Save(s models.Session) error
	// Remove удаляет сохраненную сессию. Отсутствие сессии ошибкой не считается.
	Remove() error
}

// Store - единственный источник сессии для клиента.
// Либо сессия полностью есть, либо ее нет: частичных состояний не бывает.
type Store struct {
	mu          sync.RWMutex
	persister   Persister
	current     *models.Session
	subscribers map[int]func(*models.Session)
	nextID      int
}

// NewStore создает хранилище и восстанавливает сохраненную сессию.
// Ошибка чтения не фатальна: пользователь просто будет не авторизован.
func NewStore(p Persister) *Store {
	s := &Store{
		persister:   p,
		subscribers: make(map[int]func(*models.Session)),
	}
	if err := s.Reload(); err != nil {
		slog.Warn("Не удалось восстановить сессию", "error", err)
	}
	return s
}

// Reload перечитывает сессию из Persister.
func (s *Store) Reload() error {
	loaded, err := s.persister.Load()
	var next *models.Session
	switch {
	case errors.Is(err, ErrNoSession):
		slog.Debug("Сохраненной сессии нет")
	case err != nil:
		s.replace(nil)
		return fmt.Errorf("ошибка загрузки сессии: %w", err)
	case loaded.Access == "":
		slog.Warn("Сохраненная сессия без токена доступа, игнорируем")
	default:
		next = &loaded
		slog.Info("Сессия восстановлена")
	}
	s.replace(next)
	return nil
}

// Get возвращает текущую сессию и признак ее наличия.
func (s *Store) Get() (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return models.Session{}, false
	}
	return *s.current, true
}

// Token возвращает bearer токен или пустую строку.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Access
}

// RequireToken возвращает токен или PreconditionError для операции op.
func (s *Store) RequireToken(op string) (string, error) {
	token := s.Token()
	if token == "" {
		return "", &PreconditionError{Op: op}
	}
	return token, nil
}

// Set делает sess текущей сессией и сохраняет ее.
// При ошибке сохранения сессия в памяти остается установленной.
func (s *Store) Set(sess models.Session) error {
	if sess.Access == "" {
		return ErrEmptyToken
	}
	s.replace(&sess)
	if err := s.persister.Save(sess); err != nil {
		return fmt.Errorf("ошибка сохранения сессии: %w", err)
	}
	return nil
}

// Clear удаляет сессию из памяти и из хранилища.
func (s *Store) Clear() error {
	s.replace(nil)
	if err := s.persister.Remove(); err != nil {
		return fmt.Errorf("ошибка удаления сессии: %w", err)
	}
	return nil
}

// Subscribe регистрирует fn, которая вызывается при каждом изменении сессии
// (nil - выход). Возвращает функцию отписки.
func (s *Store) Subscribe(fn func(*models.Session)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// replace меняет текущую сессию и оповещает подписчиков вне блокировки.
func (s *Store) replace(next *models.Session) {
	s.mu.Lock()
	s.current = next
	subs := make([]func(*models.Session), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		if next == nil {
			fn(nil)
			continue
		}
		snapshot := *next
		fn(&snapshot)
	}
}

// MemoryPersister хранит сессию только в памяти процесса.
type MemoryPersister struct {
	mu      sync.Mutex
	session *models.Session
}

// NewMemoryPersister создает пустой MemoryPersister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (p *MemoryPersister) Load() (models.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return models.Session{}, ErrNoSession
	}
	return *p.session, nil
}

func (p *MemoryPersister) Save(s models.Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = &s
	return nil
}

func (p *MemoryPersister) Remove() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = nil
	return nil
}
