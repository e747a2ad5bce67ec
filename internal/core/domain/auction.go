package domain

import (
	"context"

	"github.com/arkade-os/nftd/pkg/errors"
)

// MinAuctionDuration is the default lower bound of an auction duration in seconds.
const MinAuctionDuration = int64(86400)

type Auction struct {
	ItemId     uint64
	Seller     string
	MinPrice   uint64
	EndTime    int64
	BestBid    uint64
	BestBidder string
	Settled    bool
	StartedAt  int64
}

func NewAuction(itemId uint64, seller string, minPrice uint64, endTime, now int64) *Auction {
	return &Auction{
		ItemId:    itemId,
		Seller:    seller,
		MinPrice:  minPrice,
		EndTime:   endTime,
		BestBid:   minPrice,
		StartedAt: now,
	}
}

func (a *Auction) HasBids() bool {
	return a.BestBidder != ""
}

func (a *Auction) IsEnded(now int64) bool {
	return now >= a.EndTime
}

// CheckBid validates a bid against the auction without mutating it. The
// caller still has to check the bidder balance.
func (a *Auction) CheckBid(amount uint64, now int64) error {
	if a.Settled {
		return errors.AUCTION_NOT_FOUND.New("that auction does not exist").
			WithMetadata(errors.ItemMetadata{ItemId: a.ItemId})
	}
	if a.IsEnded(now) {
		return errors.AUCTION_ENDED.New("that auction has ended").
			WithMetadata(errors.AuctionMetadata{ItemId: a.ItemId, EndTime: a.EndTime, Now: now})
	}
	if amount <= a.BestBid {
		return errors.BID_TOO_LOW.New("the offered bid must be higher the current one").
			WithMetadata(errors.BidMetadata{
				ItemId:  a.ItemId,
				Bid:     formatAmount(amount),
				BestBid: formatAmount(a.BestBid),
			})
	}
	return nil
}

func (a *Auction) Bid(bidder string, amount uint64, now int64) (Event, error) {
	if err := a.CheckBid(amount, now); err != nil {
		return nil, err
	}

	a.BestBid = amount
	a.BestBidder = bidder
	return Bid{
		ItemEvent: NewItemEvent(a.ItemId, EventTypeBid, now),
		Amount:    amount,
		Bidder:    bidder,
	}, nil
}

func (a *Auction) CheckSettle(now int64) error {
	if a.Settled {
		return errors.AUCTION_NOT_FOUND.New("that auction does not exist").
			WithMetadata(errors.ItemMetadata{ItemId: a.ItemId})
	}
	if !a.IsEnded(now) {
		return errors.INVALID_STATE.New("that auction must be have ended").
			WithMetadata(errors.ItemMetadata{ItemId: a.ItemId, State: ItemStateInAuction.String()})
	}
	return nil
}

// Winner returns the best bidder and the best bid, or empty values when no
// bid was accepted.
func (a *Auction) Winner() (string, uint64) {
	if !a.HasBids() {
		return "", 0
	}
	return a.BestBidder, a.BestBid
}

type AuctionRepository interface {
	AddOrUpdateAuction(ctx context.Context, auction Auction) error
	GetAuction(ctx context.Context, itemId uint64) (*Auction, error)
	GetOpenAuctions(ctx context.Context) ([]Auction, error)
	Close()
}
