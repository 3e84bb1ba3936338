package keyboard

import (
	"errors"
	"strings"
	"testing"

	"github.com/m3rciful/gamebot/core/telegram/callbacks"
)

func TestBuilderRows(t *testing.T) {
	b := New(callbacks.Default)
	m, err := b.
		Row(b.Button("Create", "games.poker.room.create", nil)).
		NPerRow(2,
			b.Button("Check", "games.poker.table.check", nil),
			b.Button("Call", "games.poker.table.call", nil),
			b.Button("Fold", "games.poker.table.fold", nil),
		).
		Markup()
	if err != nil {
		t.Fatalf("markup: %v", err)
	}
	if len(m.Rows) != 3 || len(m.Rows[1]) != 2 || len(m.Rows[2]) != 1 {
		t.Fatalf("unexpected layout: %+v", m.Rows)
	}
	if m.Rows[0][0].Data != `{"action":"g.pk.r.cr"}` {
		t.Fatalf("data = %s", m.Rows[0][0].Data)
	}

	inline := m.Inline()
	if got := inline.InlineKeyboard[1][1]; got.Text != "Call" || got.Data != `{"action":"g.pk.t.cl"}` || got.Unique != "" {
		t.Fatalf("inline button = %+v", got)
	}
	if len(m.Data()) != 4 {
		t.Fatalf("Data = %v", m.Data())
	}
}

func TestBuilderKeepsFirstError(t *testing.T) {
	b := New(callbacks.Default)
	b.Row(
		b.Button("ok", "games.poker.help", nil),
		b.Button("big", "games.poker.room.join", callbacks.Params{"room": strings.Repeat("x", 60)}),
		b.Button("reserved", "games.poker.help", callbacks.Params{"action": "x"}),
	)
	if _, err := b.Markup(); !errors.Is(err, callbacks.ErrPayloadTooLarge) {
		t.Fatalf("expected first error to be too-large, got %v", err)
	}
}

func TestForceReply(t *testing.T) {
	if rm := ForceReply().Inline(); !rm.ForceReply || rm.InlineKeyboard != nil {
		t.Fatalf("force reply markup = %+v", rm)
	}
	var nilMarkup *Markup
	if nilMarkup.Inline() != nil || nilMarkup.Data() != nil {
		t.Fatal("nil markup must convert to nil")
	}
}
