package rooms

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"
)

// Memory is a process-local Directory.
type Memory struct {
	mu       sync.Mutex
	maxSeats int
	rooms    map[string]*Room
	now      func() time.Time
	newID    func() string
}

// NewMemory returns an empty directory whose rooms seat maxSeats players.
func NewMemory(maxSeats int) *Memory {
	if maxSeats < 2 {
		maxSeats = DefaultMaxSeats
	}
	return &Memory{maxSeats: maxSeats, rooms: make(map[string]*Room), now: time.Now, newID: NewID}
}

func snapshot(r *Room) Room {
	cp := *r
	cp.Players = slices.Clone(r.Players)
	return cp
}

func (m *Memory) Create(_ context.Context, owner int64) (Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.newID()
	for _, taken := m.rooms[id]; taken; _, taken = m.rooms[id] {
		id = m.newID()
	}
	r := &Room{ID: id, Owner: owner, MaxSeats: m.maxSeats, Players: []int64{owner}, CreatedAt: m.now().UTC()}
	m.rooms[id] = r
	return snapshot(r), nil
}

func (m *Memory) Join(_ context.Context, roomID string, userID int64) (Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	switch {
	case !ok:
		return Room{}, ErrNotFound
	case r.Has(userID):
		return snapshot(r), ErrAlreadySeated
	case r.Full():
		return snapshot(r), ErrRoomFull
	}
	r.Players = append(r.Players, userID)
	return snapshot(r), nil
}

func (m *Memory) Leave(_ context.Context, roomID string, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return ErrNotFound
	}
	i := slices.Index(r.Players, userID)
	if i < 0 {
		return ErrNotSeated
	}
	r.Players = slices.Delete(r.Players, i, i+1)
	if len(r.Players) == 0 {
		delete(m.rooms, roomID)
	}
	return nil
}

func (m *Memory) Get(_ context.Context, roomID string) (Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return Room{}, ErrNotFound
	}
	return snapshot(r), nil
}

func (m *Memory) List(_ context.Context, limit int) ([]Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Room
	for _, r := range m.rooms {
		if !r.Full() {
			out = append(out, snapshot(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) RoomsOf(_ context.Context, userID int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, r := range m.rooms {
		if r.Has(userID) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
