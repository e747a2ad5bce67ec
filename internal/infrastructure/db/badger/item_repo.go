package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const itemStoreDir = "items"

type itemRepository struct {
	store *badgerhold.Store
}

func NewItemRepository(config ...interface{}) (domain.ItemRepository, error) {
	store, err := openStore(config, itemStoreDir)
	if err != nil {
		return nil, err
	}
	return &itemRepository{store}, nil
}

func (r *itemRepository) AddOrUpdateItem(_ context.Context, item domain.Item) error {
	if err := r.store.Upsert(item.Id, item); err != nil {
		return fmt.Errorf("failed to upsert item %d: %w", item.Id, err)
	}
	return nil
}

func (r *itemRepository) GetItem(_ context.Context, id uint64) (*domain.Item, error) {
	var item domain.Item
	if err := r.store.Get(id, &item); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get item %d: %w", id, err)
	}
	return &item, nil
}

func (r *itemRepository) GetItemByOrigin(
	_ context.Context, originChainId, originAssetId uint64,
) (*domain.Item, error) {
	var item domain.Item
	query := badgerhold.Where("OriginChainId").Eq(originChainId).
		And("OriginAssetId").Eq(originAssetId)
	if err := r.store.FindOne(&item, query); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf(
				"item of asset %d from chain %d: %w", originAssetId, originChainId, domain.ErrNotFound,
			)
		}
		return nil, fmt.Errorf("failed to get item by origin: %w", err)
	}
	return &item, nil
}

func (r *itemRepository) GetItems(
	_ context.Context, filter domain.ItemFilter,
) ([]domain.Item, error) {
	var query *badgerhold.Query
	switch {
	case filter.Owner != "" && filter.State != nil:
		query = badgerhold.Where("Owner").Eq(filter.Owner).And("State").Eq(*filter.State)
	case filter.Owner != "":
		query = badgerhold.Where("Owner").Eq(filter.Owner)
	case filter.State != nil:
		query = badgerhold.Where("State").Eq(*filter.State)
	default:
		query = &badgerhold.Query{}
	}

	var items []domain.Item
	if err := r.store.Find(&items, query.SortBy("Id")); err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	return items, nil
}

func (r *itemRepository) Close() {
	// nolint:all
	r.store.Close()
}
