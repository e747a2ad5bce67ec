package errors

import (
	goerrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	grpccodes "google.golang.org/grpc/codes"
)

// generateErrorFixtures creates test fixtures with sample metadata for each error type
func generateErrorFixtures() []Error {
	return []Error{
		INTERNAL_ERROR.New("internal server error occurred").
			WithMetadata(map[string]any{"component": "database", "operation": "query"}),
		INVALID_ARGUMENT.New("price must be > 0").
			WithMetadata(map[string]any{"price": 0}),
		ASSET_NOT_FOUND.New("asset 7 not found").WithMetadata(AssetMetadata{AssetId: 7}),
		ITEM_NOT_FOUND.New("that item does not exist").WithMetadata(ItemMetadata{ItemId: 3}),
		AUCTION_NOT_FOUND.New("that auction does not exist").
			WithMetadata(ItemMetadata{ItemId: 0, State: "IDLE"}),
		FORBIDDEN.New("caller lacks role").WithMetadata(PermissionMetadata{
			Account:   "0x1f9090aae28b8a3dceadf281b0f12828e676c326",
			Operation: "mint",
			Role:      "MINTER",
		}),
		NOT_OWNER.New("a caller must be the owner of that token").WithMetadata(OwnerMetadata{
			ItemId: 0,
			Owner:  "0x1f9090aae28b8a3dceadf281b0f12828e676c326",
			Caller: "0x2c4f3b9f9a0f4f5c6e2b8a1c0d9e8f7a6b5c4d3e",
		}),
		INVALID_STATE.New("item is locked").WithMetadata(ItemMetadata{ItemId: 1, State: "LOCKED"}),
		INSUFFICIENT_FUNDS.New("the balance of a caller must be enough for that bid").
			WithMetadata(FundsMetadata{Account: "0xabc", Required: "1001", Balance: "1000"}),
		AUCTION_ENDED.New("that auction has ended").
			WithMetadata(AuctionMetadata{ItemId: 0, EndTime: 100, Now: 101}),
		BID_TOO_LOW.New("the offered bid must be higher the current one").
			WithMetadata(BidMetadata{ItemId: 0, Bid: "101", BestBid: "200"}),
		WRONG_CHAIN.New("wrong chain").WithMetadata(ChainMetadata{ChainId: 5, LocalChainId: 4}),
		CHAIN_NOT_ALLOWED.New("chain not allowed").WithMetadata(ChainMetadata{ChainId: 97}),
		SWAP_NOT_EMPTY.New("swap already processed").
			WithMetadata(SwapMetadata{Digest: "0x01", Status: "SWAP_INITIATED"}),
		WRONG_VALIDATOR.New("wrong validator").WithMetadata(ValidatorMetadata{Digest: "0x01"}),
		ROYALTY_SELF_PAYMENT.New("royalty recipient cannot pay itself").
			WithMetadata(RoyaltyMetadata{AssetId: 0, Recipient: "0xabc"}),
	}
}

func TestErrorFixtures(t *testing.T) {
	fixtures := generateErrorFixtures()
	seen := make(map[uint16]string)

	for _, err := range fixtures {
		require.NotNil(t, err)
		require.NotEmpty(t, err.Error())
		require.NotEmpty(t, err.CodeName())
		require.NotEqual(t, grpccodes.OK, err.GrpcCode())
		require.NotEmpty(t, err.Metadata())
		require.NotNil(t, err.Log())

		name, ok := seen[err.Code()]
		require.False(t, ok, "code %d reused by %s and %s", err.Code(), name, err.CodeName())
		seen[err.Code()] = err.CodeName()
	}
}

func TestErrorMessage(t *testing.T) {
	err := BID_TOO_LOW.New("bid %d must be higher than %d", 101, 200)
	require.Equal(
		t,
		"BID_TOO_LOW (10): bid 101 must be higher than 200",
		err.Error(),
	)
}

func TestErrorMetadata(t *testing.T) {
	err := AUCTION_ENDED.New("that auction has ended").
		WithMetadata(AuctionMetadata{ItemId: 2, EndTime: 86400, Now: 86401})

	require.Equal(t, map[string]string{
		"item_id":  "2",
		"end_time": "86400",
		"now":      "86401",
	}, err.Metadata())

	empty := INTERNAL_ERROR.New("no metadata")
	require.Empty(t, empty.Metadata())
}

func TestCodeIs(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := INTERNAL_ERROR.Wrap(cause)
	wrapped := fmt.Errorf("while doing things: %w", err)

	require.True(t, INTERNAL_ERROR.Is(wrapped))
	require.False(t, ITEM_NOT_FOUND.Is(wrapped))
	require.False(t, ITEM_NOT_FOUND.Is(cause))
	require.True(t, goerrors.Is(wrapped, cause))
}
