package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/gamebot/core/logger"
)

// PostgresLedger stores balances in the wallet_accounts table and records
// every credit in wallet_transactions.
type PostgresLedger struct {
	db *sqlx.DB
}

// NewPostgresLedger wraps db. The schema comes from the shipped migrations.
func NewPostgresLedger(db *sqlx.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

type accountRow struct {
	Balance   int64        `db:"balance"`
	LastBonus sql.NullTime `db:"last_bonus_at"`
}

func (l *PostgresLedger) Balance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := l.db.GetContext(ctx, &balance, `SELECT balance FROM wallet_accounts WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("wallet: balance: %w", err)
	}
	return balance, nil
}

func (l *PostgresLedger) ClaimBonus(ctx context.Context, userID, amount int64, now time.Time, cooldown time.Duration) (claim Claim, err error) {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return Claim{}, fmt.Errorf("wallet: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_accounts (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		return Claim{}, fmt.Errorf("wallet: open account: %w", err)
	}

	var row accountRow
	if err = tx.GetContext(ctx, &row,
		`SELECT balance, last_bonus_at FROM wallet_accounts WHERE user_id = $1 FOR UPDATE`, userID); err != nil {
		return Claim{}, fmt.Errorf("wallet: lock account: %w", err)
	}
	var last *time.Time
	if row.LastBonus.Valid {
		last = &row.LastBonus.Time
	}
	if next, ok := nextBonus(last, now, cooldown); !ok {
		err = &CooldownError{Next: next}
		return Claim{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Claim{}, err
	}
	var balance int64
	if err = tx.GetContext(ctx, &balance,
		`UPDATE wallet_accounts SET balance = balance + $2, last_bonus_at = $3 WHERE user_id = $1 RETURNING balance`,
		userID, amount, now); err != nil {
		return Claim{}, fmt.Errorf("wallet: credit: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_transactions (id, user_id, amount, kind, created_at) VALUES ($1, $2, $3, 'bonus', $4)`,
		id, userID, amount, now); err != nil {
		return Claim{}, fmt.Errorf("wallet: record transaction: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return Claim{}, fmt.Errorf("wallet: commit: %w", err)
	}

	logger.Or(logger.Wallet, "wallet").LogAttrs(ctx, slog.LevelInfo, "wallet.credit",
		slog.String("event", "wallet.credit"),
		slog.String("status", "ok"),
		slog.String("tx_id", id.String()),
		slog.Int64("user_id", userID),
		slog.Int64("amount", amount),
	)
	return Claim{TxID: id, Amount: amount, Balance: balance, At: now}, nil
}
