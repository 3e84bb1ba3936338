package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type account struct {
	balance   int64
	lastBonus *time.Time
}

// MemoryLedger keeps balances in process memory. Used when no database is configured.
type MemoryLedger struct {
	mu       sync.Mutex
	accounts map[int64]*account
}

// NewMemoryLedger returns an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{accounts: make(map[int64]*account)}
}

func (l *MemoryLedger) Balance(_ context.Context, userID int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a, ok := l.accounts[userID]; ok {
		return a.balance, nil
	}
	return 0, nil
}

func (l *MemoryLedger) ClaimBonus(_ context.Context, userID, amount int64, now time.Time, cooldown time.Duration) (Claim, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[userID]
	if !ok {
		a = &account{}
		l.accounts[userID] = a
	}
	if next, ok := nextBonus(a.lastBonus, now, cooldown); !ok {
		return Claim{}, &CooldownError{Next: next}
	}
	id, err := uuid.NewV7()
	if err != nil {
		return Claim{}, err
	}
	a.balance += amount
	a.lastBonus = &now
	return Claim{TxID: id, Amount: amount, Balance: a.balance, At: now}, nil
}
