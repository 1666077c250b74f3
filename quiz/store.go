package quiz

import "sync"

// Store keeps one live session per learner. Starting a new lesson replaces
// any previous session.
type Store struct {
	mu       sync.RWMutex
	sessions map[uint]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[uint]*Session)}
}

func (st *Store) Get(userID uint) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[userID]
	return s, ok
}

func (st *Store) Put(userID uint, s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[userID] = s
}

func (st *Store) Delete(userID uint) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}
