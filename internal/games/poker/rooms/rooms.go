// Package rooms is the authoritative directory of poker rooms and their seats.
package rooms

import (
	"context"
	"crypto/rand"
	"errors"
	"slices"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("rooms: room not found")
	ErrRoomFull      = errors.New("rooms: room is full")
	ErrAlreadySeated = errors.New("rooms: already seated")
	ErrNotSeated     = errors.New("rooms: not seated")
)

// Room is a snapshot of one room.
type Room struct {
	ID       string
	Owner    int64
	MaxSeats int
	// Players are ordered by the time they sat down.
	Players   []int64
	CreatedAt time.Time
}

// Has reports whether userID holds a seat.
func (r Room) Has(userID int64) bool {
	return slices.Contains(r.Players, userID)
}

// Full reports whether every seat is taken.
func (r Room) Full() bool {
	return len(r.Players) >= r.MaxSeats
}

// Directory tracks rooms and who sits where. A user may sit in several rooms.
type Directory interface {
	// Create opens a room with owner seated.
	Create(ctx context.Context, owner int64) (Room, error)
	// Join seats userID. Errors: ErrNotFound, ErrRoomFull, ErrAlreadySeated.
	Join(ctx context.Context, roomID string, userID int64) (Room, error)
	// Leave frees the seat; the last player out closes the room.
	// Errors: ErrNotFound, ErrNotSeated.
	Leave(ctx context.Context, roomID string, userID int64) error
	Get(ctx context.Context, roomID string) (Room, error)
	// List returns up to limit rooms with a free seat, oldest first.
	List(ctx context.Context, limit int) ([]Room, error)
	// RoomsOf returns the IDs of rooms userID sits in, sorted.
	RoomsOf(ctx context.Context, userID int64) ([]string, error)
}

const (
	idPrefix   = "R-"
	idLength   = 6
	idAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	// DefaultMaxSeats is used when a directory is built with a seat count below two.
	DefaultMaxSeats = 6
)

// NewID returns a short room code such as "R-7K2QXA". The alphabet has 32
// symbols without look-alikes, so each random byte maps to one symbol.
func NewID() string {
	var b [idLength]byte
	_, _ = rand.Read(b[:])
	out := make([]byte, 0, len(idPrefix)+idLength)
	out = append(out, idPrefix...)
	for _, v := range b {
		out = append(out, idAlphabet[v&31])
	}
	return string(out)
}

// ValidID reports whether id has the shape NewID produces.
func ValidID(id string) bool {
	if len(id) != len(idPrefix)+idLength || id[:len(idPrefix)] != idPrefix {
		return false
	}
	for i := len(idPrefix); i < len(id); i++ {
		if strings.IndexByte(idAlphabet, id[i]) < 0 {
			return false
		}
	}
	return true
}
