package client

import (
	"encoding/json"
	"fmt"
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

type SwapStatus uint8

func (s SwapStatus) String() string {
	switch s {
	case 0:
		return "EMPTY"
	case 1:
		return "SWAP_INITIATED"
	case 2:
		return "REDEEMED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(s))
	}
}

type Info struct {
	ChainId            uint64
	MarketAccount      string
	BridgeAccount      string
	BaseURI            string
	MinAuctionDuration int64
	AutoSettle         bool
}

type Royalty struct {
	Recipient      string
	FeeBasisPoints uint32
}

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

type ItemFilter struct {
	Owner string
	State *ItemState
}

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

type BridgeSnapshot struct {
	TokenURI      string
	Royalty       Royalty
	OriginChainId uint64
	OriginAssetId uint64
}

type AllowedChain struct {
	ChainId   uint64
	Allowed   bool
	UpdatedAt int64
}

// SwapParams are the fields covered by the swap digest. AssetId is the id
// of the asset on its origin chain.
type SwapParams struct {
	ChainFrom     uint64
	ChainTo       uint64
	Sender        string
	Recipient     string
	AssetId       uint64
	OriginChainId uint64
	Nonce         uint64
}

type SwapPayload struct {
	SwapParams
	MetadataURI    string
	FeeBasisPoints uint32
	Signature      string
}

type SwapRecord struct {
	Digest    string
	Payload   SwapPayload
	Status    SwapStatus
	UpdatedAt int64
}

type InitSwapRequest struct {
	ChainFrom uint64
	ChainTo   uint64
	Recipient string
	ItemId    uint64
	Nonce     uint64
	Signature string
}

type SwapReceipt struct {
	Digest  string
	Payload SwapPayload
	ItemId  uint64
}

// Event keeps the stored event as raw JSON, its fields depend on Type.
type Event struct {
	Topic string          `json:"topic"`
	Type  string          `json:"type"`
	Event json.RawMessage `json:"event"`
}
