package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const swapStoreDir = "swaps"

type swapRepository struct {
	store *badgerhold.Store
}

func NewSwapRepository(config ...interface{}) (domain.SwapRepository, error) {
	store, err := openStore(config, swapStoreDir)
	if err != nil {
		return nil, err
	}
	return &swapRepository{store}, nil
}

func (r *swapRepository) AddSwap(_ context.Context, swap domain.SwapRecord) error {
	if err := r.store.Insert(swap.Digest, swap); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("swap %s already exists", swap.Digest)
		}
		return fmt.Errorf("failed to insert swap %s: %w", swap.Digest, err)
	}
	return nil
}

func (r *swapRepository) GetSwap(_ context.Context, digest string) (*domain.SwapRecord, error) {
	var swap domain.SwapRecord
	if err := r.store.Get(digest, &swap); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("swap %s: %w", digest, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get swap %s: %w", digest, err)
	}
	return &swap, nil
}

func (r *swapRepository) Close() {
	// nolint:all
	r.store.Close()
}
