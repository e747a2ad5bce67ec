package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const chainStoreDir = "chains"

type chainRepository struct {
	store *badgerhold.Store
}

func NewChainRepository(config ...interface{}) (domain.ChainRepository, error) {
	store, err := openStore(config, chainStoreDir)
	if err != nil {
		return nil, err
	}
	return &chainRepository{store}, nil
}

func (r *chainRepository) SetAllowedChain(_ context.Context, chain domain.AllowedChain) error {
	if err := r.store.Upsert(chain.ChainId, chain); err != nil {
		return fmt.Errorf("failed to upsert chain %d: %w", chain.ChainId, err)
	}
	return nil
}

func (r *chainRepository) IsChainAllowed(_ context.Context, chainId uint64) (bool, error) {
	var chain domain.AllowedChain
	if err := r.store.Get(chainId, &chain); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get chain %d: %w", chainId, err)
	}
	return chain.Allowed, nil
}

func (r *chainRepository) GetAllowedChains(_ context.Context) ([]domain.AllowedChain, error) {
	var chains []domain.AllowedChain
	query := badgerhold.Where("Allowed").Eq(true).SortBy("ChainId")
	if err := r.store.Find(&chains, query); err != nil {
		return nil, fmt.Errorf("failed to get allowed chains: %w", err)
	}
	return chains, nil
}

func (r *chainRepository) Close() {
	// nolint:all
	r.store.Close()
}
