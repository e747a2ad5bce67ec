package inmemoryledger

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/arkade-os/nftd/internal/core/ports"
)

type ledger struct {
	lock       sync.RWMutex
	balances   map[string]uint64
	allowances map[string]map[string]uint64
}

func NewLedger() ports.CurrencyLedger {
	return &ledger{
		balances:   make(map[string]uint64),
		allowances: make(map[string]map[string]uint64),
	}
}

func (l *ledger) BalanceOf(_ context.Context, account string) (uint64, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.balances[account], nil
}

func (l *ledger) Allowance(_ context.Context, owner, spender string) (uint64, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.allowances[owner][spender], nil
}

func (l *ledger) Approve(_ context.Context, owner, spender string, amount uint64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if _, ok := l.allowances[owner]; !ok {
		l.allowances[owner] = make(map[string]uint64)
	}
	l.allowances[owner][spender] = amount
	return nil
}

func (l *ledger) Transfer(_ context.Context, from, to string, amount uint64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.balances[from] < amount {
		return ports.ErrInsufficientBalance
	}
	return l.move(from, []ports.Payout{{To: to, Amount: amount}})
}

func (l *ledger) TransferFrom(
	ctx context.Context, spender, from, to string, amount uint64,
) error {
	return l.BatchTransferFrom(ctx, spender, from, []ports.Payout{{To: to, Amount: amount}})
}

func (l *ledger) BatchTransferFrom(
	_ context.Context, spender, from string, payouts []ports.Payout,
) error {
	total, err := sumPayouts(payouts)
	if err != nil {
		return err
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	if l.balances[from] < total {
		return ports.ErrInsufficientBalance
	}
	if spender != from && l.allowances[from][spender] < total {
		return ports.ErrInsufficientAllowance
	}

	if err := l.move(from, payouts); err != nil {
		return err
	}
	if spender != from {
		l.allowances[from][spender] -= total
	}
	return nil
}

func (l *ledger) Mint(_ context.Context, to string, amount uint64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.balances[to] > math.MaxUint64-amount {
		return fmt.Errorf("balance of %s overflows", to)
	}
	l.balances[to] += amount
	return nil
}

func (l *ledger) Close() {}

// move must be called with the lock held and the balance of from already
// checked against the sum of payouts.
func (l *ledger) move(from string, payouts []ports.Payout) error {
	credits := make(map[string]uint64)
	for _, p := range payouts {
		credits[p.To] += p.Amount
	}
	for to, amount := range credits {
		if to == from {
			continue
		}
		if l.balances[to] > math.MaxUint64-amount {
			return fmt.Errorf("balance of %s overflows", to)
		}
	}

	for _, p := range payouts {
		l.balances[from] -= p.Amount
		l.balances[p.To] += p.Amount
	}
	return nil
}

func sumPayouts(payouts []ports.Payout) (uint64, error) {
	var total uint64
	for _, p := range payouts {
		if total > math.MaxUint64-p.Amount {
			return 0, fmt.Errorf("payout total overflows")
		}
		total += p.Amount
	}
	return total, nil
}
