package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/infrastructure/db/postgres/sqlc/queries"
)

type assetRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewAssetRepository(config ...interface{}) (domain.AssetRepository, error) {
	db, err := dbFromConfig("asset", config)
	if err != nil {
		return nil, err
	}
	return &assetRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *assetRepository) AddOrUpdateAsset(ctx context.Context, asset domain.Asset) error {
	return execTx(ctx, r.db, func(q *queries.Queries) error {
		return q.UpsertAsset(ctx, queries.UpsertAssetParams{
			ID:               int64(asset.Id),
			Owner:            asset.Owner,
			MetadataUri:      asset.MetadataURI,
			RoyaltyRecipient: asset.Royalty.Recipient,
			RoyaltyFeeBps:    int64(asset.Royalty.FeeBasisPoints),
			Approved:         asset.Approved,
			CreatedAt:        asset.CreatedAt,
		})
	})
}

func (r *assetRepository) GetAsset(ctx context.Context, id uint64) (*domain.Asset, error) {
	row, err := r.querier.SelectAsset(ctx, int64(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("asset %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get asset %d: %w", id, err)
	}
	asset := toAsset(row)
	return &asset, nil
}

func (r *assetRepository) GetAssetsByOwner(
	ctx context.Context, owner string,
) ([]domain.Asset, error) {
	rows, err := r.querier.SelectAssetsByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to get assets of %s: %w", owner, err)
	}
	assets := make([]domain.Asset, 0, len(rows))
	for _, row := range rows {
		assets = append(assets, toAsset(row))
	}
	return assets, nil
}

func (r *assetRepository) CountAssets(ctx context.Context) (uint64, error) {
	count, err := r.querier.CountAssets(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count assets: %w", err)
	}
	return uint64(count), nil
}

func (r *assetRepository) SetApprovalForAll(
	ctx context.Context, owner, operator string, approved bool,
) error {
	return execTx(ctx, r.db, func(q *queries.Queries) error {
		return q.UpsertOperatorApproval(ctx, queries.UpsertOperatorApprovalParams{
			Owner:    owner,
			Operator: operator,
			Approved: approved,
		})
	})
}

func (r *assetRepository) IsApprovedForAll(
	ctx context.Context, owner, operator string,
) (bool, error) {
	approved, err := r.querier.SelectOperatorApproval(ctx, queries.SelectOperatorApprovalParams{
		Owner:    owner,
		Operator: operator,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get operator approval: %w", err)
	}
	return approved, nil
}

func (r *assetRepository) Close() {
	_ = r.db.Close()
}

func toAsset(row queries.Asset) domain.Asset {
	return domain.Asset{
		Id:          uint64(row.ID),
		Owner:       row.Owner,
		MetadataURI: row.MetadataUri,
		Royalty: domain.Royalty{
			Recipient:      row.RoyaltyRecipient,
			FeeBasisPoints: uint32(row.RoyaltyFeeBps),
		},
		Approved:  row.Approved,
		CreatedAt: row.CreatedAt,
	}
}
