package dbutil

import (
	"encoding/json"
	"fmt"

	"github.com/arkade-os/nftd/internal/core/domain"
)

// SerializeEvent encodes an event as a flat JSON object. The aggregate id is
// always found at the top-level "Id" key.
func SerializeEvent(event domain.Event) ([]byte, error) {
	return json.Marshal(event)
}

// DeserializeEvent restores the concrete value type of a serialized event so
// that callers can type-switch on it.
func DeserializeEvent(buf []byte) (domain.Event, error) {
	var eventType struct {
		Type domain.EventType
	}

	if err := json.Unmarshal(buf, &eventType); err != nil {
		return nil, err
	}

	switch eventType.Type {
	case domain.EventTypeItemCreated:
		return decode[domain.ItemCreated](buf)
	case domain.EventTypeItemTransferred:
		return decode[domain.ItemTransferred](buf)
	case domain.EventTypeSaleStarted:
		return decode[domain.SaleStarted](buf)
	case domain.EventTypeSaleStopped:
		return decode[domain.SaleStopped](buf)
	case domain.EventTypeSale:
		return decode[domain.Sale](buf)
	case domain.EventTypeAuctionStarted:
		return decode[domain.AuctionStarted](buf)
	case domain.EventTypeBid:
		return decode[domain.Bid](buf)
	case domain.EventTypeAuctionEnded:
		return decode[domain.AuctionEnded](buf)
	case domain.EventTypeItemLocked:
		return decode[domain.ItemLocked](buf)
	case domain.EventTypeItemUnlocked:
		return decode[domain.ItemUnlocked](buf)
	case domain.EventTypeSwapInitiated:
		return decode[domain.SwapInitiated](buf)
	case domain.EventTypeSwapRedeemed:
		return decode[domain.SwapRedeemed](buf)
	}

	return nil, fmt.Errorf("unknown event type %d", eventType.Type)
}

func decode[T domain.Event](buf []byte) (domain.Event, error) {
	var event T
	if err := json.Unmarshal(buf, &event); err != nil {
		return nil, err
	}
	return event, nil
}
