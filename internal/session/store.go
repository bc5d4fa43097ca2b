package session

import (
	"sync"
	"time"
)

// Session is the wizard state of one chat.
type Session struct {
	ChatID    int64
	StartedAt time.Time

	mu       sync.Mutex
	step     State
	date     string // YYYY-MM-DD
	time     string // HH:MM
	name     string
	username string
}

// Snapshot is an immutable copy of session fields.
type Snapshot struct {
	ChatID   int64
	Step     State
	Date     string
	Time     string
	Name     string
	Username string
}

func newSession(chatID int64, now time.Time) *Session {
	return &Session{
		ChatID:    chatID,
		StartedAt: now,
		step:      StateChooseDate,
	}
}

// Step returns the current step.
func (s *Session) Step() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// SetUsername remembers the messaging-platform handle for notifications.
func (s *Session) SetUsername(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
}

// Snapshot returns a copy of the session fields.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ChatID:   s.ChatID,
		Step:     s.step,
		Date:     s.date,
		Time:     s.time,
		Name:     s.name,
		Username: s.username,
	}
}

// Store keeps sessions keyed by chat id.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	now      func() time.Time
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

// Get returns the session of chatID or nil.
func (st *Store) Get(chatID int64) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[chatID]
}

// Start replaces any existing session of chatID with a fresh one.
func (st *Store) Start(chatID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := newSession(chatID, st.now())
	st.sessions[chatID] = s
	return s
}

// Delete removes the session of chatID.
func (st *Store) Delete(chatID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, chatID)
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
