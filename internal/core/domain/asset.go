package domain

import (
	"context"
	"errors"
)

const MaxFeeBasisPoints = 10000

// ErrNotFound is wrapped by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

type Royalty struct {
	Recipient      string
	FeeBasisPoints uint32
}

// Fee returns amount * FeeBasisPoints / 10000 rounded down without
// overflowing for any uint64 amount.
func (r Royalty) Fee(amount uint64) uint64 {
	bps := uint64(r.FeeBasisPoints)
	q, rem := amount/MaxFeeBasisPoints, amount%MaxFeeBasisPoints
	return q*bps + rem*bps/MaxFeeBasisPoints
}

type Asset struct {
	Id          uint64
	Owner       string
	MetadataURI string
	Royalty     Royalty
	Approved    string
	CreatedAt   int64
}

// TransferTo moves ownership and clears the single-token approval.
func (a *Asset) TransferTo(to string) {
	a.Owner = to
	a.Approved = ""
}

func (a Asset) CanTransfer(caller string, isOperator bool) bool {
	return caller == a.Owner || (a.Approved != "" && caller == a.Approved) || isOperator
}

type AssetRepository interface {
	AddOrUpdateAsset(ctx context.Context, asset Asset) error
	GetAsset(ctx context.Context, id uint64) (*Asset, error)
	GetAssetsByOwner(ctx context.Context, owner string) ([]Asset, error)
	CountAssets(ctx context.Context) (uint64, error)
	SetApprovalForAll(ctx context.Context, owner, operator string, approved bool) error
	IsApprovedForAll(ctx context.Context, owner, operator string) (bool, error)
	Close()
}
