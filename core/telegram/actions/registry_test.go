package actions

import (
	"context"
	"errors"
	"testing"
)

func noop(context.Context, *Context) error { return nil }

func TestValidateRoute(t *testing.T) {
	good := []string{"games", "games.poker.room.create", "wallet.bonus_v2", "a1.b2"}
	for _, r := range good {
		if err := ValidateRoute(r); err != nil {
			t.Fatalf("ValidateRoute(%q): %v", r, err)
		}
	}
	bad := []string{"", ".", "games.", ".games", "games..poker", "Games.poker", "games poker", "games.pöker", "games-poker"}
	for _, r := range bad {
		if err := ValidateRoute(r); !errors.Is(err, ErrConfiguration) {
			t.Fatalf("ValidateRoute(%q) = %v, want ErrConfiguration", r, err)
		}
	}
}

func TestBuilderCollectsAllProblems(t *testing.T) {
	_, err := NewBuilder().
		Register("games.poker.start", noop).
		Register("games.poker.start", noop).
		Register("Games.Bad", noop).
		Register("games.poker.help", nil).
		Build()
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError inside %v", err)
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok || len(joined.Unwrap()) != 3 {
		t.Fatalf("expected three joined errors, got %v", err)
	}
}

func TestRegistryIsFrozen(t *testing.T) {
	b := NewBuilder().Add(
		Entry{Route: "games.poker.start", Handler: noop},
		Entry{Route: "games.poker.help", Handler: noop},
	)
	reg, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	b.Register("games.poker.room.create", noop)
	if reg.Has("games.poker.room.create") {
		t.Fatal("registry changed after Build")
	}
	list := reg.List()
	if len(list) != 2 || list[0] != "games.poker.help" || list[1] != "games.poker.start" {
		t.Fatalf("List = %v", list)
	}
	list[0] = "mutated"
	if !reg.Has("games.poker.help") || reg.List()[0] != "games.poker.help" {
		t.Fatal("List must return a copy")
	}
	if _, ok := reg.Lookup("games.poker.start"); !ok || reg.Len() != 2 {
		t.Fatal("lookup failed")
	}
}
