// Package state keeps small per-user session data in process memory: the
// room a user is currently sitting in and namespaced form values collected
// across several updates.
package state

import "sync"

type session struct {
	room  string
	forms map[string]any
}

// Store is an in-memory session store. Each Store is independent; create one
// per bot (or per test) with New. Writes are last-write-wins and entries live
// until cleared or the process exits.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*session
}

// New returns an empty Store.
func New() *Store {
	return &Store{sessions: make(map[int64]*session)}
}

func (s *Store) session(userID int64) *session {
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{forms: make(map[string]any)}
		s.sessions[userID] = sess
	}
	return sess
}

// dropIfEmpty must be called with the write lock held.
func (s *Store) dropIfEmpty(userID int64) {
	if sess, ok := s.sessions[userID]; ok && sess.room == "" && len(sess.forms) == 0 {
		delete(s.sessions, userID)
	}
}

// ActiveRoom returns the room the user last joined or switched to.
func (s *Store) ActiveRoom(userID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[userID]; ok && sess.room != "" {
		return sess.room, true
	}
	return "", false
}

// SetActiveRoom records roomID as the user's active room. An empty id clears it.
func (s *Store) SetActiveRoom(userID int64, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(userID).room = roomID
	s.dropIfEmpty(userID)
}

// ClearActiveRoom forgets the user's active room.
func (s *Store) ClearActiveRoom(userID int64) {
	s.SetActiveRoom(userID, "")
}

// FormState returns the value stored under namespace for the user.
func (s *Store) FormState(namespace string, userID int64) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	v, ok := sess.forms[namespace]
	return v, ok
}

// SetFormState stores value under namespace for the user, replacing any previous value.
func (s *Store) SetFormState(namespace string, userID int64, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(userID).forms[namespace] = value
}

// ClearFormState removes the namespace entry for the user.
func (s *Store) ClearFormState(namespace string, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		delete(sess.forms, namespace)
		s.dropIfEmpty(userID)
	}
}

// Clear removes everything stored for the user.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Len reports how many users currently have session data.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// FormValue returns the namespace entry asserted to T. A missing entry or a
// value of another type reports false.
func FormValue[T any](s *Store, namespace string, userID int64) (T, bool) {
	var zero T
	v, ok := s.FormState(namespace, userID)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
