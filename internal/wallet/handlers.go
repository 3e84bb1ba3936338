package wallet

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m3rciful/gamebot/core/telegram/actions"
	"github.com/m3rciful/gamebot/internal/routes"
)

const (
	defaultBonusAmount   = 500
	defaultBonusCooldown = 24 * time.Hour
)

// Options tune the daily bonus.
type Options struct {
	BonusAmount   int64
	BonusCooldown time.Duration
	// Now is used in tests. Nil means time.Now.
	Now func() time.Time
}

// Module serves wallet.balance and wallet.bonus.
type Module struct {
	ledger Ledger
	opts   Options
}

// New returns the wallet module backed by ledger.
func New(ledger Ledger, opts Options) *Module {
	if opts.BonusAmount <= 0 {
		opts.BonusAmount = defaultBonusAmount
	}
	if opts.BonusCooldown <= 0 {
		opts.BonusCooldown = defaultBonusCooldown
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Module{ledger: ledger, opts: opts}
}

// Entries lists the module's routes.
func (m *Module) Entries() []actions.Entry {
	return []actions.Entry{
		{Route: routes.WalletBalance, Handler: m.balance},
		{Route: routes.WalletBonus, Handler: m.bonus},
	}
}

func (m *Module) balance(ctx context.Context, c *actions.Context) error {
	bal, err := m.ledger.Balance(ctx, c.Identity.UserID)
	if err != nil {
		return err
	}
	kb := c.Keyboard()
	kb.Row(kb.Button(c.T("wallet.btn.bonus"), routes.WalletBonus, nil))
	kb.Row(kb.Button(c.T("menu.btn.back"), routes.MenuMain, nil))
	markup, err := kb.Markup()
	if err != nil {
		return err
	}
	return c.Reply(ctx, c.T("wallet.balance", bal), markup)
}

func (m *Module) bonus(ctx context.Context, c *actions.Context) error {
	kb := c.Keyboard()
	kb.Row(kb.Button(c.T("menu.btn.back"), routes.WalletBalance, nil))
	markup, err := kb.Markup()
	if err != nil {
		return err
	}

	claim, err := m.ledger.ClaimBonus(ctx, c.Identity.UserID, m.opts.BonusAmount, m.opts.Now().UTC(), m.opts.BonusCooldown)
	var cooldown *CooldownError
	if errors.As(err, &cooldown) {
		return c.Reply(ctx, c.T("wallet.bonus.already", cooldown.Next.UTC().Format("2006-01-02 15:04")), markup)
	}
	if err != nil {
		return err
	}
	c.Log.LogAttrs(ctx, slog.LevelInfo, "wallet.bonus",
		slog.String("event", "wallet.bonus"),
		slog.String("status", "ok"),
		slog.String("tx_id", claim.TxID.String()),
		slog.Int64("amount", claim.Amount),
	)
	return c.Reply(ctx, c.T("wallet.bonus.claimed", claim.Amount, claim.Balance), markup)
}
