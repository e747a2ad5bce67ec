package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const auctionStoreDir = "auctions"

type auctionRepository struct {
	store *badgerhold.Store
}

func NewAuctionRepository(config ...interface{}) (domain.AuctionRepository, error) {
	store, err := openStore(config, auctionStoreDir)
	if err != nil {
		return nil, err
	}
	return &auctionRepository{store}, nil
}

func (r *auctionRepository) AddOrUpdateAuction(_ context.Context, auction domain.Auction) error {
	if err := r.store.Upsert(auction.ItemId, auction); err != nil {
		return fmt.Errorf("failed to upsert auction of item %d: %w", auction.ItemId, err)
	}
	return nil
}

func (r *auctionRepository) GetAuction(_ context.Context, itemId uint64) (*domain.Auction, error) {
	var auction domain.Auction
	if err := r.store.Get(itemId, &auction); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("auction of item %d: %w", itemId, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get auction of item %d: %w", itemId, err)
	}
	return &auction, nil
}

func (r *auctionRepository) GetOpenAuctions(_ context.Context) ([]domain.Auction, error) {
	var auctions []domain.Auction
	query := badgerhold.Where("Settled").Eq(false).SortBy("EndTime")
	if err := r.store.Find(&auctions, query); err != nil {
		return nil, fmt.Errorf("failed to get open auctions: %w", err)
	}
	return auctions, nil
}

func (r *auctionRepository) Close() {
	// nolint:all
	r.store.Close()
}
