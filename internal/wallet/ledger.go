// Package wallet keeps per-user chip balances and serves the wallet actions.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrBonusCooldown is matched by *CooldownError.
var ErrBonusCooldown = errors.New("wallet: bonus already claimed")

// CooldownError reports when the next bonus becomes available.
type CooldownError struct {
	Next time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("wallet: bonus available after %s", e.Next.UTC().Format(time.RFC3339))
}

func (e *CooldownError) Is(target error) bool { return target == ErrBonusCooldown }

func (e *CooldownError) Code() string { return "BONUS_COOLDOWN" }

// Claim is a credited bonus.
type Claim struct {
	TxID    uuid.UUID
	Amount  int64
	Balance int64
	At      time.Time
}

// Ledger stores balances. Unknown users have a zero balance.
type Ledger interface {
	Balance(ctx context.Context, userID int64) (int64, error)
	// ClaimBonus credits amount unless the previous bonus is younger than
	// cooldown, in which case it returns *CooldownError.
	ClaimBonus(ctx context.Context, userID, amount int64, now time.Time, cooldown time.Duration) (Claim, error)
}

func nextBonus(last *time.Time, now time.Time, cooldown time.Duration) (time.Time, bool) {
	if last == nil {
		return time.Time{}, true
	}
	next := last.Add(cooldown)
	return next, !now.Before(next)
}
