package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/infrastructure/db/postgres/sqlc/queries"
)

type itemRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewItemRepository(config ...interface{}) (domain.ItemRepository, error) {
	db, err := dbFromConfig("item", config)
	if err != nil {
		return nil, err
	}
	return &itemRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *itemRepository) AddOrUpdateItem(ctx context.Context, item domain.Item) error {
	return execTx(ctx, r.db, func(q *queries.Queries) error {
		return q.UpsertItem(ctx, queries.UpsertItemParams{
			ID:            int64(item.Id),
			OriginAssetID: int64(item.OriginAssetId),
			OriginChainID: int64(item.OriginChainId),
			Owner:         item.Owner,
			Creator:       item.Creator,
			Price:         int64(item.Price),
			FeeBps:        int64(item.FeeBasisPoints),
			State:         int64(item.State),
			UpdatedAt:     item.UpdatedAt,
		})
	})
}

func (r *itemRepository) GetItem(ctx context.Context, id uint64) (*domain.Item, error) {
	row, err := r.querier.SelectItem(ctx, int64(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get item %d: %w", id, err)
	}
	item := toItem(row)
	return &item, nil
}

func (r *itemRepository) GetItemByOrigin(
	ctx context.Context, originChainId, originAssetId uint64,
) (*domain.Item, error) {
	row, err := r.querier.SelectItemByOrigin(ctx, queries.SelectItemByOriginParams{
		OriginChainID: int64(originChainId),
		OriginAssetID: int64(originAssetId),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf(
				"item of asset %d from chain %d: %w", originAssetId, originChainId, domain.ErrNotFound,
			)
		}
		return nil, fmt.Errorf("failed to get item by origin: %w", err)
	}
	item := toItem(row)
	return &item, nil
}

func (r *itemRepository) GetItems(
	ctx context.Context, filter domain.ItemFilter,
) ([]domain.Item, error) {
	var (
		rows []queries.Item
		err  error
	)
	if filter.Owner != "" {
		rows, err = r.querier.SelectItemsByOwner(ctx, filter.Owner)
	} else {
		rows, err = r.querier.SelectAllItems(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}

	items := make([]domain.Item, 0, len(rows))
	for _, row := range rows {
		item := toItem(row)
		if filter.Match(item) {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *itemRepository) Close() {
	_ = r.db.Close()
}

func toItem(row queries.Item) domain.Item {
	return domain.Item{
		Id:             uint64(row.ID),
		OriginAssetId:  uint64(row.OriginAssetID),
		OriginChainId:  uint64(row.OriginChainID),
		Owner:          row.Owner,
		Creator:        row.Creator,
		Price:          uint64(row.Price),
		FeeBasisPoints: uint32(row.FeeBps),
		State:          domain.ItemState(row.State),
		UpdatedAt:      row.UpdatedAt,
	}
}
