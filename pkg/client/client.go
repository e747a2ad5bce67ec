package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
)

// appErrorCodeBase is the JSON-RPC code of an INTERNAL_ERROR, application
// error codes count down from it within the implementation-defined server
// error range.
const (
	appErrorCodeBase = -32000
	appErrorCodeMin  = -32099
)

const defaultRequestTTL = 5 * time.Minute

// Signer signs the request digest with the sender key. The attestation
// signer of the daemon satisfies it.
type Signer interface {
	Address() string
	Sign(digest []byte) (string, error)
}

type Option func(*Client)

// WithSigner makes every request carry the signature headers of signer.
func WithSigner(signer Signer) Option {
	return func(c *Client) {
		c.signer = signer
	}
}

func WithRequestTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.ttl = ttl
	}
}

// Error is the error object of a JSON-RPC response.
type Error struct {
	Code    int64
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// AppCode returns the application error code carried by the response, if
// any.
func (e *Error) AppCode() (uint16, bool) {
	if e.Code > appErrorCodeBase || e.Code < appErrorCodeMin {
		return 0, false
	}
	return uint16(appErrorCodeBase - e.Code), true
}

type Client struct {
	rpc    rpcbackend.Backend
	signer Signer
	ttl    time.Duration
	now    func() time.Time
}

func NewClient(url string, opts ...Option) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("missing url")
	}

	c := &Client{ttl: defaultRequestTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.ttl <= 0 {
		return nil, fmt.Errorf("request ttl must be greater than 0")
	}

	httpClient := resty.New().
		SetBaseURL(url).
		SetHeader("Content-Type", "application/json").
		OnBeforeRequest(c.signRequest)
	c.rpc = rpcbackend.NewRPCClient(httpClient)
	return c, nil
}

func (c *Client) Sender() string {
	if c.signer == nil {
		return ""
	}
	return c.signer.Address()
}

// signRequest runs before resty serializes the body, so the body is
// serialized here and the exact bytes are signed.
func (c *Client) signRequest(_ *resty.Client, req *resty.Request) error {
	if c.signer == nil {
		return nil
	}

	body, err := json.Marshal(req.Body)
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}
	expiry := c.now().Add(c.ttl).Unix()
	signature, err := c.signer.Sign(RequestDigest(body, expiry))
	if err != nil {
		return fmt.Errorf("failed to sign request: %w", err)
	}

	req.SetBody(body)
	req.SetHeader(SenderHeader, c.signer.Address())
	req.SetHeader(ExpiryHeader, strconv.FormatInt(expiry, 10))
	req.SetHeader(SignatureHeader, signature)
	return nil
}

func (c *Client) call(
	ctx context.Context, result interface{}, method string, params ...interface{},
) error {
	if rpcErr := c.rpc.CallRPC(ctx, result, method, params...); rpcErr != nil {
		return &Error{Code: rpcErr.Code, Message: rpcErr.Message}
	}
	return nil
}

// exec calls a method whose result is only an acknowledgement.
func (c *Client) exec(ctx context.Context, method string, params ...interface{}) error {
	var ok bool
	return c.call(ctx, &ok, method, params...)
}

func (c *Client) Mint(
	ctx context.Context, owner, metadataURI string, royalty Royalty,
) (uint64, error) {
	var assetId uint64
	err := c.call(ctx, &assetId, "nft_mint", owner, metadataURI, royalty)
	return assetId, err
}

func (c *Client) TransferAsset(ctx context.Context, from, to string, assetId uint64) error {
	return c.exec(ctx, "nft_transfer", from, to, assetId)
}

func (c *Client) TransferWithRoyaltyPayout(
	ctx context.Context, from, to string, assetId, saleAmount uint64,
) error {
	return c.exec(ctx, "nft_transferWithRoyaltyPayout", from, to, assetId, saleAmount)
}

func (c *Client) ApproveAsset(ctx context.Context, approved string, assetId uint64) error {
	return c.exec(ctx, "nft_approve", approved, assetId)
}

func (c *Client) SetApprovalForAll(ctx context.Context, operator string, approved bool) error {
	return c.exec(ctx, "nft_setApprovalForAll", operator, approved)
}

func (c *Client) RoyaltyOf(ctx context.Context, assetId uint64) (*Royalty, error) {
	var royalty Royalty
	if err := c.call(ctx, &royalty, "nft_royaltyOf", assetId); err != nil {
		return nil, err
	}
	return &royalty, nil
}

func (c *Client) OwnerOf(ctx context.Context, assetId uint64) (string, error) {
	var owner string
	err := c.call(ctx, &owner, "nft_ownerOf", assetId)
	return owner, err
}

func (c *Client) TokenURI(ctx context.Context, assetId uint64) (string, error) {
	var uri string
	err := c.call(ctx, &uri, "nft_tokenURI", assetId)
	return uri, err
}

func (c *Client) GetApproved(ctx context.Context, assetId uint64) (string, error) {
	var approved string
	err := c.call(ctx, &approved, "nft_getApproved", assetId)
	return approved, err
}

func (c *Client) IsApprovedForAll(ctx context.Context, owner, operator string) (bool, error) {
	var approved bool
	err := c.call(ctx, &approved, "nft_isApprovedForAll", owner, operator)
	return approved, err
}

func (c *Client) AssetBalanceOf(ctx context.Context, owner string) (uint64, error) {
	var balance uint64
	err := c.call(ctx, &balance, "nft_balanceOf", owner)
	return balance, err
}

func (c *Client) TokenOfOwnerByIndex(ctx context.Context, owner string, index uint64) (uint64, error) {
	var assetId uint64
	err := c.call(ctx, &assetId, "nft_tokenOfOwnerByIndex", owner, index)
	return assetId, err
}

func (c *Client) TotalSupply(ctx context.Context) (uint64, error) {
	var supply uint64
	err := c.call(ctx, &supply, "nft_totalSupply")
	return supply, err
}

func (c *Client) GetInfo(ctx context.Context) (*Info, error) {
	var info Info
	if err := c.call(ctx, &info, "market_info"); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) CreateNFT(ctx context.Context, metadataURI string, feeBasisPoints uint32) (uint64, error) {
	var itemId uint64
	err := c.call(ctx, &itemId, "market_createNFT", metadataURI, feeBasisPoints)
	return itemId, err
}

func (c *Client) StartSale(ctx context.Context, itemId, price uint64) error {
	return c.exec(ctx, "market_startSale", itemId, price)
}

func (c *Client) StopSale(ctx context.Context, itemId uint64) error {
	return c.exec(ctx, "market_stopSale", itemId)
}

func (c *Client) BuyNFT(ctx context.Context, itemId uint64) error {
	return c.exec(ctx, "market_buyNFT", itemId)
}

func (c *Client) StartAuction(ctx context.Context, itemId, minPrice uint64, duration int64) error {
	return c.exec(ctx, "market_startAuction", itemId, minPrice, duration)
}

func (c *Client) MakeBid(ctx context.Context, itemId, amount uint64) error {
	return c.exec(ctx, "market_makeBid", itemId, amount)
}

func (c *Client) SettleNFT(ctx context.Context, itemId uint64) error {
	return c.exec(ctx, "market_settleNFT", itemId)
}

func (c *Client) LockForBridge(ctx context.Context, itemId uint64, owner string) (*BridgeSnapshot, error) {
	var snapshot BridgeSnapshot
	if err := c.call(ctx, &snapshot, "market_lockForBridge", itemId, owner); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *Client) UnlockFromBridge(ctx context.Context, itemId uint64, recipient string) error {
	return c.exec(ctx, "market_unlockFromBridge", itemId, recipient)
}

func (c *Client) GetItem(ctx context.Context, itemId uint64) (*Item, error) {
	var item Item
	if err := c.call(ctx, &item, "market_getItem", itemId); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) GetAuction(ctx context.Context, itemId uint64) (*Auction, error) {
	var auction Auction
	if err := c.call(ctx, &auction, "market_getAuction", itemId); err != nil {
		return nil, err
	}
	return &auction, nil
}

func (c *Client) CorrespondingId(ctx context.Context, originChainId, originAssetId uint64) (uint64, error) {
	var itemId uint64
	err := c.call(ctx, &itemId, "market_correspondingId", originChainId, originAssetId)
	return itemId, err
}

func (c *Client) SetAllowedChain(ctx context.Context, chainId uint64, allowed bool) error {
	return c.exec(ctx, "bridge_setAllowedChain", chainId, allowed)
}

func (c *Client) AllowedChains(ctx context.Context) ([]AllowedChain, error) {
	var chains []AllowedChain
	err := c.call(ctx, &chains, "bridge_allowedChains")
	return chains, err
}

func (c *Client) InitSwap(ctx context.Context, req InitSwapRequest) (*SwapReceipt, error) {
	var receipt SwapReceipt
	if err := c.call(ctx, &receipt, "bridge_initSwap", req); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *Client) Redeem(ctx context.Context, payload SwapPayload) (*SwapReceipt, error) {
	var receipt SwapReceipt
	if err := c.call(ctx, &receipt, "bridge_redeem", payload); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *Client) GetSwap(ctx context.Context, digest string) (*SwapRecord, error) {
	var swap SwapRecord
	if err := c.call(ctx, &swap, "bridge_getSwap", digest); err != nil {
		return nil, err
	}
	return &swap, nil
}

func (c *Client) SwapDigest(ctx context.Context, params SwapParams) (string, error) {
	var digest string
	err := c.call(ctx, &digest, "bridge_swapDigest", params)
	return digest, err
}

func (c *Client) BalanceOf(ctx context.Context, account string) (uint64, error) {
	var balance uint64
	err := c.call(ctx, &balance, "token_balanceOf", account)
	return balance, err
}

func (c *Client) Allowance(ctx context.Context, owner, spender string) (uint64, error) {
	var allowance uint64
	err := c.call(ctx, &allowance, "token_allowance", owner, spender)
	return allowance, err
}

func (c *Client) Approve(ctx context.Context, spender string, amount uint64) error {
	return c.exec(ctx, "token_approve", spender, amount)
}

func (c *Client) Transfer(ctx context.Context, to string, amount uint64) error {
	return c.exec(ctx, "token_transfer", to, amount)
}

func (c *Client) GrantRole(ctx context.Context, account, role string) error {
	return c.exec(ctx, "admin_grantRole", account, role)
}

func (c *Client) RevokeRole(ctx context.Context, account, role string) error {
	return c.exec(ctx, "admin_revokeRole", account, role)
}

func (c *Client) HasRole(ctx context.Context, account, role string) (bool, error) {
	var ok bool
	err := c.call(ctx, &ok, "admin_hasRole", account, role)
	return ok, err
}

func (c *Client) Roles(ctx context.Context, account string) ([]string, error) {
	var roles []string
	err := c.call(ctx, &roles, "admin_roles", account)
	return roles, err
}

func (c *Client) MintCurrency(ctx context.Context, to string, amount uint64) error {
	return c.exec(ctx, "admin_mintCurrency", to, amount)
}

func (c *Client) GetEvents(ctx context.Context, topic, id string) ([]Event, error) {
	var events []Event
	err := c.call(ctx, &events, "events_get", topic, id)
	return events, err
}

func (c *Client) ListItems(ctx context.Context, filter ItemFilter) ([]Item, error) {
	var items []Item
	err := c.call(ctx, &items, "events_items", filter)
	return items, err
}
