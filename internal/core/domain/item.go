package domain

import (
	"context"
	"fmt"

	"github.com/arkade-os/nftd/pkg/errors"
)

type ItemState uint8

const (
	ItemStateIdle ItemState = iota
	ItemStateForSale
	ItemStateLocked
	ItemStateInAuction
)

func (s ItemState) String() string {
	switch s {
	case ItemStateIdle:
		return "IDLE"
	case ItemStateForSale:
		return "FOR_SALE"
	case ItemStateLocked:
		return "LOCKED"
	case ItemStateInAuction:
		return "IN_AUCTION"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(s))
	}
}

func ParseItemState(s string) (ItemState, error) {
	for _, st := range []ItemState{
		ItemStateIdle, ItemStateForSale, ItemStateLocked, ItemStateInAuction,
	} {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown item state %q", s)
}

// Item is the marketplace view of an asset. Id is the local asset id,
// OriginAssetId and OriginChainId identify the asset lineage across chains.
type Item struct {
	Id             uint64
	OriginAssetId  uint64
	OriginChainId  uint64
	Owner          string
	Creator        string
	Price          uint64
	FeeBasisPoints uint32
	State          ItemState
	UpdatedAt      int64
}

func NewItem(asset Asset, originChainId, originAssetId uint64, now int64) *Item {
	return &Item{
		Id:             asset.Id,
		OriginAssetId:  originAssetId,
		OriginChainId:  originChainId,
		Owner:          asset.Owner,
		Creator:        asset.Royalty.Recipient,
		FeeBasisPoints: asset.Royalty.FeeBasisPoints,
		State:          ItemStateIdle,
		UpdatedAt:      now,
	}
}

func (i *Item) IsIdle() bool {
	return i.State == ItemStateIdle
}

func (i *Item) requireState(state ItemState) error {
	if i.State != state {
		return errors.INVALID_STATE.New(
			"item %d is %s, expected %s", i.Id, i.State, state,
		).WithMetadata(errors.ItemMetadata{ItemId: i.Id, State: i.State.String()})
	}
	return nil
}

func (i *Item) requireOwner(caller string) error {
	if i.Owner != caller {
		return errors.NOT_OWNER.New("a caller must be the owner of that token").
			WithMetadata(errors.OwnerMetadata{ItemId: i.Id, Owner: i.Owner, Caller: caller})
	}
	return nil
}

func (i *Item) StartSale(caller string, price uint64, now int64) (Event, error) {
	if err := i.requireState(ItemStateIdle); err != nil {
		return nil, err
	}
	if err := i.requireOwner(caller); err != nil {
		return nil, err
	}
	if price == 0 {
		return nil, errors.INVALID_ARGUMENT.New("price must be > 0")
	}

	i.Price = price
	i.State = ItemStateForSale
	i.UpdatedAt = now
	return SaleStarted{
		ItemEvent: NewItemEvent(i.Id, EventTypeSaleStarted, now),
		Owner:     i.Owner,
		Price:     price,
	}, nil
}

func (i *Item) StopSale(caller string, now int64) (Event, error) {
	if err := i.requireState(ItemStateForSale); err != nil {
		return nil, err
	}
	if err := i.requireOwner(caller); err != nil {
		return nil, err
	}

	i.State = ItemStateIdle
	i.UpdatedAt = now
	return SaleStopped{
		ItemEvent: NewItemEvent(i.Id, EventTypeSaleStopped, now),
		Owner:     i.Owner,
	}, nil
}

// CheckBuy validates a purchase without mutating the item.
func (i *Item) CheckBuy(buyer string) error {
	if i.State != ItemStateForSale {
		return errors.INVALID_STATE.New("the item must not be frozen").
			WithMetadata(errors.ItemMetadata{ItemId: i.Id, State: i.State.String()})
	}
	if buyer == i.Owner {
		return errors.INVALID_ARGUMENT.New("seller cannot buy their own item")
	}
	return nil
}

func (i *Item) Sell(buyer string, royaltyFee uint64, now int64) (Event, error) {
	if err := i.CheckBuy(buyer); err != nil {
		return nil, err
	}

	seller := i.Owner
	i.Owner = buyer
	i.State = ItemStateIdle
	i.UpdatedAt = now
	return Sale{
		ItemEvent:  NewItemEvent(i.Id, EventTypeSale, now),
		Seller:     seller,
		Buyer:      buyer,
		Price:      i.Price,
		RoyaltyFee: royaltyFee,
	}, nil
}

func (i *Item) StartAuction(
	caller string, minPrice uint64, duration, minDuration int64, now int64,
) (*Auction, Event, error) {
	if err := i.requireState(ItemStateIdle); err != nil {
		return nil, nil, err
	}
	if err := i.requireOwner(caller); err != nil {
		return nil, nil, err
	}
	if minPrice == 0 {
		return nil, nil, errors.INVALID_ARGUMENT.New("minPrice must be > 0")
	}
	if duration < minDuration {
		return nil, nil, errors.INVALID_ARGUMENT.New(
			"duration must be at least %d seconds, got %d", minDuration, duration,
		)
	}

	auction := NewAuction(i.Id, i.Owner, minPrice, now+duration, now)
	i.Price = minPrice
	i.State = ItemStateInAuction
	i.UpdatedAt = now
	return auction, AuctionStarted{
		ItemEvent: NewItemEvent(i.Id, EventTypeAuctionStarted, now),
		Owner:     i.Owner,
		MinPrice:  minPrice,
		EndTime:   auction.EndTime,
	}, nil
}

// EndAuction closes the auction on the item. An empty winner means there
// were no bids and the seller keeps the asset.
func (i *Item) EndAuction(winner string, price, royaltyFee uint64, now int64) (Event, error) {
	if err := i.requireState(ItemStateInAuction); err != nil {
		return nil, err
	}

	if winner != "" {
		i.Owner = winner
		i.Price = price
	}
	i.State = ItemStateIdle
	i.UpdatedAt = now
	return AuctionEnded{
		ItemEvent:  NewItemEvent(i.Id, EventTypeAuctionEnded, now),
		Price:      price,
		Winner:     winner,
		RoyaltyFee: royaltyFee,
	}, nil
}

func (i *Item) Transfer(from, to string, now int64) (Event, error) {
	if err := i.requireState(ItemStateIdle); err != nil {
		return nil, err
	}
	if err := i.requireOwner(from); err != nil {
		return nil, err
	}

	i.Owner = to
	i.UpdatedAt = now
	return ItemTransferred{
		ItemEvent: NewItemEvent(i.Id, EventTypeItemTransferred, now),
		From:      from,
		To:        to,
	}, nil
}

func (i *Item) Lock(owner, custodian string, now int64) (Event, error) {
	if err := i.requireState(ItemStateIdle); err != nil {
		return nil, err
	}
	if err := i.requireOwner(owner); err != nil {
		return nil, err
	}

	i.Owner = custodian
	i.State = ItemStateLocked
	i.UpdatedAt = now
	return ItemLocked{
		ItemEvent: NewItemEvent(i.Id, EventTypeItemLocked, now),
		Owner:     owner,
		Custodian: custodian,
	}, nil
}

func (i *Item) Unlock(recipient string, now int64) (Event, error) {
	if err := i.requireState(ItemStateLocked); err != nil {
		return nil, err
	}

	i.Owner = recipient
	i.State = ItemStateIdle
	i.UpdatedAt = now
	return ItemUnlocked{
		ItemEvent: NewItemEvent(i.Id, EventTypeItemUnlocked, now),
		Recipient: recipient,
	}, nil
}

type ItemFilter struct {
	Owner string
	State *ItemState
}

func (f ItemFilter) Match(item Item) bool {
	if f.Owner != "" && item.Owner != f.Owner {
		return false
	}
	if f.State != nil && item.State != *f.State {
		return false
	}
	return true
}

type ItemRepository interface {
	AddOrUpdateItem(ctx context.Context, item Item) error
	GetItem(ctx context.Context, id uint64) (*Item, error)
	// GetItemByOrigin resolves the correspondence table: the local item
	// carrying the given lineage, if any.
	GetItemByOrigin(ctx context.Context, originChainId, originAssetId uint64) (*Item, error)
	GetItems(ctx context.Context, filter ItemFilter) ([]Item, error)
	Close()
}
