package ports

import (
	"context"
	"errors"
)

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

type Payout struct {
	To     string
	Amount uint64
}

// CurrencyLedger is the fungible token used to pay for items. Amounts are
// in the smallest unit of the token.
type CurrencyLedger interface {
	BalanceOf(ctx context.Context, account string) (uint64, error)
	Allowance(ctx context.Context, owner, spender string) (uint64, error)
	Approve(ctx context.Context, owner, spender string, amount uint64) error
	Transfer(ctx context.Context, from, to string, amount uint64) error
	TransferFrom(ctx context.Context, spender, from, to string, amount uint64) error
	// BatchTransferFrom debits from once for the sum of the payouts and
	// either applies all of them or none.
	BatchTransferFrom(ctx context.Context, spender, from string, payouts []Payout) error
	Mint(ctx context.Context, to string, amount uint64) error
	Close()
}
