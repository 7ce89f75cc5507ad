package auth

import "sync"

// Store - хранилище состояния в стиле Redux: Dispatch прогоняет действие
// через Reduce и оповещает подписчиков.
type Store struct {
	dispatchMu sync.Mutex // Упорядочивает Reduce и оповещение подписчиков
	mu         sync.RWMutex
	state      State
	subs       map[int]func(State)
	nextID     int
}

// NewStore создает хранилище с начальным состоянием initial.
func NewStore(initial State) *Store {
	return &Store{
		state: initial,
		subs:  make(map[int]func(State)),
	}
}

// State возвращает текущий снимок состояния.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch применяет действие. Подписчики получают состояния в порядке
// действий; из подписчика нельзя синхронно вызывать Dispatch.
func (s *Store) Dispatch(a Action) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// Subscribe регистрирует fn и возвращает функцию отписки.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
