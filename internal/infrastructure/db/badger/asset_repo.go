package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const assetStoreDir = "assets"

type operatorApproval struct {
	Owner    string
	Operator string
	Approved bool
}

type assetRepository struct {
	store *badgerhold.Store
}

func NewAssetRepository(config ...interface{}) (domain.AssetRepository, error) {
	store, err := openStore(config, assetStoreDir)
	if err != nil {
		return nil, err
	}
	return &assetRepository{store}, nil
}

func (r *assetRepository) AddOrUpdateAsset(_ context.Context, asset domain.Asset) error {
	if err := r.store.Upsert(asset.Id, asset); err != nil {
		return fmt.Errorf("failed to upsert asset %d: %w", asset.Id, err)
	}
	return nil
}

func (r *assetRepository) GetAsset(_ context.Context, id uint64) (*domain.Asset, error) {
	var asset domain.Asset
	if err := r.store.Get(id, &asset); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("asset %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get asset %d: %w", id, err)
	}
	return &asset, nil
}

func (r *assetRepository) GetAssetsByOwner(
	_ context.Context, owner string,
) ([]domain.Asset, error) {
	var assets []domain.Asset
	query := badgerhold.Where("Owner").Eq(owner).SortBy("Id")
	if err := r.store.Find(&assets, query); err != nil {
		return nil, fmt.Errorf("failed to get assets of %s: %w", owner, err)
	}
	return assets, nil
}

func (r *assetRepository) CountAssets(_ context.Context) (uint64, error) {
	count, err := r.store.Count(&domain.Asset{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count assets: %w", err)
	}
	return uint64(count), nil
}

func (r *assetRepository) SetApprovalForAll(
	_ context.Context, owner, operator string, approved bool,
) error {
	key := owner + "|" + operator
	if err := r.store.Upsert(key, operatorApproval{owner, operator, approved}); err != nil {
		return fmt.Errorf("failed to upsert operator approval: %w", err)
	}
	return nil
}

func (r *assetRepository) IsApprovedForAll(
	_ context.Context, owner, operator string,
) (bool, error) {
	var approval operatorApproval
	if err := r.store.Get(owner+"|"+operator, &approval); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get operator approval: %w", err)
	}
	return approval.Approved, nil
}

func (r *assetRepository) Close() {
	// nolint:all
	r.store.Close()
}
