package bot

import (
	"strings"
	"sync"
)

// Состояния диалога регистрации.
type State int

const (
	StateIdle State = iota
	StateAskName
	StateAskPhone
	StateConfirmRegistration
)

// RegistrationData — анкета, собираемая по шагам диалога.
type RegistrationData struct {
	Name  string
	Phone string
}

type Session struct {
	State        State
	Registration RegistrationData
}

func (s *Session) Go(to State) {
	s.State = to
}

func (s *Session) Reset() {
	s.State = StateIdle
	s.Registration = RegistrationData{}
}

// Store — потокобезопасное in-memory хранилище сессий по Telegram ID.
type Store struct {
	mu sync.Mutex
	m  map[int64]*Session
}

func NewStore() *Store {
	return &Store{m: make(map[int64]*Session)}
}

func (s *Store) Get(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.m[userID]; ok {
		return sess
	}
	se := &Session{State: StateIdle}
	s.m[userID] = se
	return se
}

// Префиксы callback-данных инлайн-кнопок.
const (
	CbSelectDate    = "date:"   // date:<slot uuid>
	CbConfirmSlot   = "book:"   // book:<slot uuid>
	CbCancelBooking = "cancel:" // cancel:<booking uuid>
	CbAbort         = "abort"
)

func Is(data, prefix string) (string, bool) {
	if strings.HasPrefix(data, prefix) {
		return strings.TrimPrefix(data, prefix), true
	}
	return "", false
}
