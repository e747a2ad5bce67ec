package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/infrastructure/db/postgres/sqlc/queries"
)

type auctionRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewAuctionRepository(config ...interface{}) (domain.AuctionRepository, error) {
	db, err := dbFromConfig("auction", config)
	if err != nil {
		return nil, err
	}
	return &auctionRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *auctionRepository) AddOrUpdateAuction(ctx context.Context, auction domain.Auction) error {
	return execTx(ctx, r.db, func(q *queries.Queries) error {
		return q.UpsertAuction(ctx, queries.UpsertAuctionParams{
			ItemID:     int64(auction.ItemId),
			Seller:     auction.Seller,
			MinPrice:   int64(auction.MinPrice),
			EndTime:    auction.EndTime,
			BestBid:    int64(auction.BestBid),
			BestBidder: auction.BestBidder,
			Settled:    auction.Settled,
			StartedAt:  auction.StartedAt,
		})
	})
}

func (r *auctionRepository) GetAuction(ctx context.Context, itemId uint64) (*domain.Auction, error) {
	row, err := r.querier.SelectAuction(ctx, int64(itemId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("auction of item %d: %w", itemId, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get auction of item %d: %w", itemId, err)
	}
	auction := toAuction(row)
	return &auction, nil
}

func (r *auctionRepository) GetOpenAuctions(ctx context.Context) ([]domain.Auction, error) {
	rows, err := r.querier.SelectOpenAuctions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get open auctions: %w", err)
	}
	auctions := make([]domain.Auction, 0, len(rows))
	for _, row := range rows {
		auctions = append(auctions, toAuction(row))
	}
	return auctions, nil
}

func (r *auctionRepository) Close() {
	_ = r.db.Close()
}

func toAuction(row queries.Auction) domain.Auction {
	return domain.Auction{
		ItemId:     uint64(row.ItemID),
		Seller:     row.Seller,
		MinPrice:   uint64(row.MinPrice),
		EndTime:    row.EndTime,
		BestBid:    uint64(row.BestBid),
		BestBidder: row.BestBidder,
		Settled:    row.Settled,
		StartedAt:  row.StartedAt,
	}
}
