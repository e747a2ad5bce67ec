package domain

import (
	"context"
	"strconv"
)

const (
	ItemTopic = "item"
	SwapTopic = "swap"
)

type EventType uint8

const (
	EventTypeUndefined EventType = iota
	EventTypeItemCreated
	EventTypeItemTransferred
	EventTypeSaleStarted
	EventTypeSaleStopped
	EventTypeSale
	EventTypeAuctionStarted
	EventTypeBid
	EventTypeAuctionEnded
	EventTypeItemLocked
	EventTypeItemUnlocked
	EventTypeSwapInitiated
	EventTypeSwapRedeemed
)

func (t EventType) String() string {
	return []string{
		"Undefined",
		"ItemCreated",
		"ItemTransferred",
		"SaleStarted",
		"SaleStopped",
		"Sale",
		"AuctionStarted",
		"Bid",
		"AuctionEnded",
		"ItemLocked",
		"ItemUnlocked",
		"InitSwap",
		"Redeem",
	}[t]
}

type Event interface {
	GetTopic() string
	GetType() EventType
	GetId() string
}

type EventRepository interface {
	Save(ctx context.Context, topic, id string, events []Event) error
	GetEvents(ctx context.Context, topic, id string) ([]Event, error)
	RegisterEventsHandler(topic string, handler func(events []Event))
	ClearRegisteredHandlers(topics ...string)
	Close()
}

// ItemEvent is embedded by every event of the item aggregate. Id is the
// decimal local item id.
type ItemEvent struct {
	Id        string
	Type      EventType
	Timestamp int64
}

func NewItemEvent(itemId uint64, eventType EventType, now int64) ItemEvent {
	return ItemEvent{Id: ItemAggregateId(itemId), Type: eventType, Timestamp: now}
}

func ItemAggregateId(itemId uint64) string {
	return strconv.FormatUint(itemId, 10)
}

func (e ItemEvent) GetTopic() string   { return ItemTopic }
func (e ItemEvent) GetType() EventType { return e.Type }
func (e ItemEvent) GetId() string      { return e.Id }

type ItemCreated struct {
	ItemEvent
	Owner         string
	Price         uint64
	ChainId       uint64
	OriginChainId uint64
	OriginAssetId uint64
	MetadataURI   string
}

type ItemTransferred struct {
	ItemEvent
	From string
	To   string
}

type SaleStarted struct {
	ItemEvent
	Owner string
	Price uint64
}

type SaleStopped struct {
	ItemEvent
	Owner string
}

type Sale struct {
	ItemEvent
	Seller     string
	Buyer      string
	Price      uint64
	RoyaltyFee uint64
}

type AuctionStarted struct {
	ItemEvent
	Owner    string
	MinPrice uint64
	EndTime  int64
}

type Bid struct {
	ItemEvent
	Amount uint64
	Bidder string
}

type AuctionEnded struct {
	ItemEvent
	Price      uint64
	Winner     string
	RoyaltyFee uint64
}

type ItemLocked struct {
	ItemEvent
	Owner     string
	Custodian string
}

type ItemUnlocked struct {
	ItemEvent
	Recipient string
}

// SwapEvent is embedded by bridge events. Id is the hex swap digest.
type SwapEvent struct {
	Id        string
	Type      EventType
	Timestamp int64
}

func (e SwapEvent) GetTopic() string   { return SwapTopic }
func (e SwapEvent) GetType() EventType { return e.Type }
func (e SwapEvent) GetId() string      { return e.Id }

// SwapInitiated carries exactly the argument list of the remote redeem.
type SwapInitiated struct {
	SwapEvent
	SwapPayload
}

type SwapRedeemed struct {
	SwapEvent
	SwapPayload
	LocalItemId uint64
}
