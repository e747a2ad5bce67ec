package redisledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/arkade-os/nftd/internal/core/ports"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	balancesKey   = "currency:balances"
	allowancesKey = "currency:allowances"
)

type ledger struct {
	rdb          *redis.Client
	numOfRetries int
	retryDelay   time.Duration
}

func NewLedger(rdb *redis.Client, numOfRetries int) ports.CurrencyLedger {
	if numOfRetries <= 0 {
		numOfRetries = 1
	}
	return &ledger{
		rdb:          rdb,
		numOfRetries: numOfRetries,
		retryDelay:   10 * time.Millisecond,
	}
}

func (l *ledger) BalanceOf(ctx context.Context, account string) (uint64, error) {
	return getAmount(ctx, l.rdb, balancesKey, account)
}

func (l *ledger) Allowance(ctx context.Context, owner, spender string) (uint64, error) {
	return getAmount(ctx, l.rdb, allowancesKey, allowanceField(owner, spender))
}

func (l *ledger) Approve(ctx context.Context, owner, spender string, amount uint64) error {
	if err := l.rdb.HSet(
		ctx, allowancesKey, allowanceField(owner, spender), formatAmount(amount),
	).Err(); err != nil {
		return fmt.Errorf("failed to set allowance: %w", err)
	}
	return nil
}

func (l *ledger) Transfer(ctx context.Context, from, to string, amount uint64) error {
	return l.batchTransfer(ctx, from, from, []ports.Payout{{To: to, Amount: amount}})
}

func (l *ledger) TransferFrom(
	ctx context.Context, spender, from, to string, amount uint64,
) error {
	return l.batchTransfer(ctx, spender, from, []ports.Payout{{To: to, Amount: amount}})
}

func (l *ledger) BatchTransferFrom(
	ctx context.Context, spender, from string, payouts []ports.Payout,
) error {
	return l.batchTransfer(ctx, spender, from, payouts)
}

func (l *ledger) Mint(ctx context.Context, to string, amount uint64) error {
	return l.withRetry(ctx, "mint", func(tx *redis.Tx) error {
		balance, err := getAmount(ctx, tx, balancesKey, to)
		if err != nil {
			return err
		}
		if balance > math.MaxUint64-amount {
			return fmt.Errorf("balance of %s overflows", to)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, balancesKey, to, formatAmount(balance+amount))
			return nil
		})
		return err
	})
}

func (l *ledger) Close() {
	if err := l.rdb.Close(); err != nil {
		log.WithError(err).Warn("failed to close redis client")
	}
}

func (l *ledger) batchTransfer(
	ctx context.Context, spender, from string, payouts []ports.Payout,
) error {
	var total uint64
	for _, p := range payouts {
		if total > math.MaxUint64-p.Amount {
			return fmt.Errorf("payout total overflows")
		}
		total += p.Amount
	}

	return l.withRetry(ctx, "transfer", func(tx *redis.Tx) error {
		balances := make(map[string]uint64)
		accounts := []string{from}
		for _, p := range payouts {
			accounts = append(accounts, p.To)
		}
		for _, account := range accounts {
			if _, ok := balances[account]; ok {
				continue
			}
			balance, err := getAmount(ctx, tx, balancesKey, account)
			if err != nil {
				return err
			}
			balances[account] = balance
		}

		if balances[from] < total {
			return ports.ErrInsufficientBalance
		}
		var allowance uint64
		if spender != from {
			var err error
			allowance, err = getAmount(ctx, tx, allowancesKey, allowanceField(from, spender))
			if err != nil {
				return err
			}
			if allowance < total {
				return ports.ErrInsufficientAllowance
			}
		}

		for _, p := range payouts {
			balances[from] -= p.Amount
			if balances[p.To] > math.MaxUint64-p.Amount {
				return fmt.Errorf("balance of %s overflows", p.To)
			}
			balances[p.To] += p.Amount
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for account, balance := range balances {
				pipe.HSet(ctx, balancesKey, account, formatAmount(balance))
			}
			if spender != from {
				pipe.HSet(
					ctx, allowancesKey, allowanceField(from, spender), formatAmount(allowance-total),
				)
			}
			return nil
		})
		return err
	})
}

// withRetry runs fn in an optimistic transaction watching the ledger keys and
// retries when another client modified them in the meantime.
func (l *ledger) withRetry(ctx context.Context, op string, fn func(tx *redis.Tx) error) error {
	var err error
	for range l.numOfRetries {
		err = l.rdb.Watch(ctx, fn, balancesKey, allowancesKey)
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		time.Sleep(l.retryDelay)
	}
	return fmt.Errorf("failed to %s after max num of retries: %w", op, err)
}

type hashReader interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
}

func getAmount(ctx context.Context, rdb hashReader, key, field string) (uint64, error) {
	value, err := rdb.HGet(ctx, key, field).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read %s of %s: %w", key, field, err)
	}
	amount, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q in %s: %w", value, key, err)
	}
	return amount, nil
}

func allowanceField(owner, spender string) string {
	return owner + ":" + spender
}

func formatAmount(amount uint64) string {
	return strconv.FormatUint(amount, 10)
}
