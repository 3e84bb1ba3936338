package wallet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/gamebot/core/telegram/actions"
	"github.com/m3rciful/gamebot/core/telegram/callbacks"
	"github.com/m3rciful/gamebot/core/telegram/keyboard"
	"github.com/m3rciful/gamebot/internal/routes"
)

func TestMemoryLedgerBonusCooldown(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if bal, _ := l.Balance(ctx, 1); bal != 0 {
		t.Fatalf("fresh balance = %d", bal)
	}
	claim, err := l.ClaimBonus(ctx, 1, 500, now, 24*time.Hour)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if claim.Balance != 500 || claim.TxID.Version() != 7 {
		t.Fatalf("claim = %+v", claim)
	}

	_, err = l.ClaimBonus(ctx, 1, 500, now.Add(time.Hour), 24*time.Hour)
	var cd *CooldownError
	if !errors.As(err, &cd) || !errors.Is(err, ErrBonusCooldown) {
		t.Fatalf("second claim err = %v", err)
	}
	if !cd.Next.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("next = %v", cd.Next)
	}

	if _, err := l.ClaimBonus(ctx, 1, 500, now.Add(24*time.Hour), 24*time.Hour); err != nil {
		t.Fatalf("claim after cooldown: %v", err)
	}
	if bal, _ := l.Balance(ctx, 1); bal != 1000 {
		t.Fatalf("balance = %d", bal)
	}
}

type recorder struct {
	mu      sync.Mutex
	texts   []string
	markups []*keyboard.Markup
}

func (r *recorder) Reply(_ context.Context, text string, m *keyboard.Markup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	r.markups = append(r.markups, m)
	return nil
}

// echoLocalizer renders a key followed by its args.
type echoLocalizer struct{}

func (echoLocalizer) Translate(_, key string, args ...any) string {
	parts := []string{key}
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, " ")
}

func dispatch(t *testing.T, m *Module, route string, userID int64) *recorder {
	t.Helper()
	reg, err := actions.NewBuilder().Add(m.Entries()...).Build()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	d, err := actions.NewDispatcher(actions.Options{Registry: reg, Codec: callbacks.Default, Localizer: echoLocalizer{}})
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	rec := &recorder{}
	req := actions.Request{Messenger: rec, Identity: actions.Identity{UserID: userID, ChatID: userID}}
	if out := d.Dispatch(context.Background(), route, req, nil); out != actions.OutcomeHandled {
		t.Fatalf("outcome = %v", out)
	}
	return rec
}

func TestWalletHandlers(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	m := New(NewMemoryLedger(), Options{BonusAmount: 250, Now: func() time.Time { return now }})

	rec := dispatch(t, m, routes.WalletBalance, 5)
	if rec.texts[0] != "wallet.balance 0" {
		t.Fatalf("balance text = %q", rec.texts[0])
	}
	data := rec.markups[0].Data()
	if len(data) != 2 || data[0] != `{"action":"w.bn"}` || data[1] != `{"action":"m.mn"}` {
		t.Fatalf("balance buttons = %v", data)
	}

	rec = dispatch(t, m, routes.WalletBonus, 5)
	if rec.texts[0] != "wallet.bonus.claimed 250 250" {
		t.Fatalf("bonus text = %q", rec.texts[0])
	}
	rec = dispatch(t, m, routes.WalletBonus, 5)
	if rec.texts[0] != "wallet.bonus.already 2026-03-02 08:30" {
		t.Fatalf("cooldown text = %q", rec.texts[0])
	}
}

// TestPostgresLedger runs against a real database when GAMEBOT_TEST_DSN is set.
func TestPostgresLedger(t *testing.T) {
	dsn := os.Getenv("GAMEBOT_TEST_DSN")
	if dsn == "" {
		t.Skip("GAMEBOT_TEST_DSN not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	userID := time.Now().UnixNano()
	l := NewPostgresLedger(db)
	now := time.Now().UTC().Truncate(time.Second)

	claim, err := l.ClaimBonus(ctx, userID, 100, now, time.Hour)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claim.Balance != 100 {
		t.Fatalf("balance = %d", claim.Balance)
	}
	if _, err := l.ClaimBonus(ctx, userID, 100, now.Add(time.Minute), time.Hour); !errors.Is(err, ErrBonusCooldown) {
		t.Fatalf("err = %v", err)
	}
	if bal, err := l.Balance(ctx, userID); err != nil || bal != 100 {
		t.Fatalf("balance = %d, %v", bal, err)
	}
}
