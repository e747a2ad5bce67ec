package application

import (
	"context"

	"github.com/arkade-os/nftd/internal/core/domain"
)

type Service interface {
	Start() error
	Stop()
	GetInfo(ctx context.Context) Info
	Registry() RegistryService
	Market() MarketService
	Bridge() BridgeService
	Admin() AdminService
	Currency() CurrencyService
	Indexer() IndexerService
}

type RegistryService interface {
	Mint(
		ctx context.Context, caller, owner, metadataURI string, royalty domain.Royalty,
	) (uint64, error)
	Transfer(ctx context.Context, caller, from, to string, assetId uint64) error
	TransferWithRoyaltyPayout(
		ctx context.Context, caller, from, to string, assetId, saleAmount uint64,
	) error
	Approve(ctx context.Context, caller, approved string, assetId uint64) error
	SetApprovalForAll(ctx context.Context, caller, operator string, approved bool) error
	RoyaltyOf(ctx context.Context, assetId uint64) (*domain.Royalty, error)
	OwnerOf(ctx context.Context, assetId uint64) (string, error)
	TokenURI(ctx context.Context, assetId uint64) (string, error)
	GetApproved(ctx context.Context, assetId uint64) (string, error)
	IsApprovedForAll(ctx context.Context, owner, operator string) (bool, error)
	BalanceOf(ctx context.Context, owner string) (uint64, error)
	TokenOfOwnerByIndex(ctx context.Context, owner string, index uint64) (uint64, error)
	TotalSupply(ctx context.Context) (uint64, error)
}

type MarketService interface {
	CreateNFT(ctx context.Context, caller, metadataURI string, feeBasisPoints uint32) (uint64, error)
	StartSale(ctx context.Context, caller string, itemId, price uint64) error
	StopSale(ctx context.Context, caller string, itemId uint64) error
	BuyNFT(ctx context.Context, caller string, itemId uint64) error
	StartAuction(
		ctx context.Context, caller string, itemId, minPrice uint64, duration int64,
	) error
	MakeBid(ctx context.Context, caller string, itemId, amount uint64) error
	SettleNFT(ctx context.Context, itemId uint64) error
	LockForBridge(
		ctx context.Context, caller string, itemId uint64, owner string,
	) (*BridgeSnapshot, error)
	UnlockFromBridge(ctx context.Context, caller string, itemId uint64, recipient string) error
	MintBridgedCopy(
		ctx context.Context, caller string, originChainId, originAssetId uint64,
		recipient, metadataURI string, royalty domain.Royalty,
	) (uint64, error)
	GetItem(ctx context.Context, itemId uint64) (*domain.Item, error)
	GetAuction(ctx context.Context, itemId uint64) (*domain.Auction, error)
	CorrespondingId(ctx context.Context, originChainId, originAssetId uint64) (uint64, error)
}

type BridgeService interface {
	SetAllowedChain(ctx context.Context, caller string, chainId uint64, allowed bool) error
	GetAllowedChains(ctx context.Context) ([]domain.AllowedChain, error)
	InitSwap(ctx context.Context, caller string, req InitSwapRequest) (*SwapReceipt, error)
	Redeem(ctx context.Context, payload domain.SwapPayload) (*SwapReceipt, error)
	GetSwap(ctx context.Context, digest string) (*domain.SwapRecord, error)
	SwapDigest(params domain.SwapParams) (string, error)
}

type AdminService interface {
	GrantRole(ctx context.Context, caller, account string, role domain.Role) error
	RevokeRole(ctx context.Context, caller, account string, role domain.Role) error
	HasRole(ctx context.Context, account string, role domain.Role) (bool, error)
	GetRoles(ctx context.Context, account string) ([]domain.Role, error)
	MintCurrency(ctx context.Context, caller, to string, amount uint64) error
}

type CurrencyService interface {
	BalanceOf(ctx context.Context, account string) (uint64, error)
	Allowance(ctx context.Context, owner, spender string) (uint64, error)
	Approve(ctx context.Context, caller, spender string, amount uint64) error
	Transfer(ctx context.Context, caller, to string, amount uint64) error
}

type IndexerService interface {
	GetEvents(ctx context.Context, topic, id string) ([]domain.Event, error)
	ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
}

type Config struct {
	ChainId            uint64
	AdminAddress       string
	BaseURI            string
	MinAuctionDuration int64
	AutoSettle         bool
}

type Info struct {
	ChainId            uint64
	MarketAccount      string
	BridgeAccount      string
	BaseURI            string
	MinAuctionDuration int64
	AutoSettle         bool
}

// BridgeSnapshot is what the origin chain relays about a locked item.
type BridgeSnapshot struct {
	TokenURI      string
	Royalty       domain.Royalty
	OriginChainId uint64
	OriginAssetId uint64
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
	Payload domain.SwapPayload
	ItemId  uint64
}
