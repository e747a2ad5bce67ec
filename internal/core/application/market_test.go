package application_test

import (
	"testing"
	"time"

	"github.com/arkade-os/nftd/internal/core/domain"
	nfterrors "github.com/arkade-os/nftd/pkg/errors"
	"github.com/stretchr/testify/require"
)

const royaltyBps = uint32(500)

func newArtistItem(t *testing.T, instance *testInstance) uint64 {
	t.Helper()
	instance.grant(t, artist, domain.RoleArtist)
	itemId, err := instance.Market().CreateNFT(ctx, artist, "artwork.json", royaltyBps)
	require.NoError(t, err)
	return itemId
}

func requireItem(
	t *testing.T, instance *testInstance, itemId uint64, owner string, state domain.ItemState,
) {
	t.Helper()
	item, err := instance.Market().GetItem(ctx, itemId)
	require.NoError(t, err)
	require.Equal(t, owner, item.Owner)
	require.Equal(t, state, item.State)

	assetOwner, err := instance.Registry().OwnerOf(ctx, itemId)
	require.NoError(t, err)
	require.Equal(t, owner, assetOwner)
}

func TestCreateNFT(t *testing.T) {
	instance := newTestInstance(t, 4, nil)

	_, err := instance.Market().CreateNFT(ctx, artist, "artwork.json", royaltyBps)
	requireCode(t, nfterrors.FORBIDDEN, err)

	itemId := newArtistItem(t, instance)
	require.Zero(t, itemId)

	item, err := instance.Market().GetItem(ctx, itemId)
	require.NoError(t, err)
	require.Equal(t, artist, item.Owner)
	require.Equal(t, artist, item.Creator)
	require.Equal(t, royaltyBps, item.FeeBasisPoints)
	require.Equal(t, uint64(4), item.OriginChainId)
	require.Equal(t, domain.ItemStateIdle, item.State)

	uri, err := instance.Registry().TokenURI(ctx, itemId)
	require.NoError(t, err)
	require.Equal(t, baseURI+"artwork.json", uri)

	royalty, err := instance.Registry().RoyaltyOf(ctx, itemId)
	require.NoError(t, err)
	require.Equal(t, domain.Royalty{Recipient: artist, FeeBasisPoints: royaltyBps}, *royalty)

	_, err = instance.Market().CreateNFT(ctx, artist, "too-greedy.json", domain.MaxFeeBasisPoints+1)
	requireCode(t, nfterrors.INVALID_ARGUMENT, err)

	_, err = instance.Market().GetItem(ctx, 42)
	requireCode(t, nfterrors.ITEM_NOT_FOUND, err)
}

func TestSale(t *testing.T) {
	instance := newTestInstance(t, 4, nil)
	itemId := newArtistItem(t, instance)
	instance.fund(t, user1, 2000)
	instance.fund(t, user2, 2000)

	err := instance.Market().BuyNFT(ctx, user1, itemId)
	requireCode(t, nfterrors.INVALID_STATE, err)

	err = instance.Market().StartSale(ctx, user1, itemId, 1000)
	requireCode(t, nfterrors.NOT_OWNER, err)
	err = instance.Market().StartSale(ctx, artist, itemId, 0)
	requireCode(t, nfterrors.INVALID_ARGUMENT, err)

	require.NoError(t, instance.Market().StartSale(ctx, artist, itemId, 1000))
	requireItem(t, instance, itemId, artist, domain.ItemStateForSale)

	err = instance.Market().StartSale(ctx, artist, itemId, 1000)
	requireCode(t, nfterrors.INVALID_STATE, err)
	err = instance.Registry().Transfer(ctx, artist, artist, user2, itemId)
	requireCode(t, nfterrors.INVALID_STATE, err)
	err = instance.Market().BuyNFT(ctx, artist, itemId)
	requireCode(t, nfterrors.INVALID_ARGUMENT, err)

	// no allowance to the marketplace yet
	err = instance.Market().BuyNFT(ctx, user1, itemId)
	requireCode(t, nfterrors.INSUFFICIENT_FUNDS, err)

	// primary sale by the creator pays no royalty
	instance.approveMarket(t, user1, 1000)
	require.NoError(t, instance.Market().BuyNFT(ctx, user1, itemId))
	requireItem(t, instance, itemId, user1, domain.ItemStateIdle)
	require.Equal(t, uint64(1000), instance.balance(t, artist))
	require.Equal(t, uint64(1000), instance.balance(t, user1))

	// secondary sale routes 5% to the creator
	require.NoError(t, instance.Market().StartSale(ctx, user1, itemId, 1100))
	instance.approveMarket(t, user2, 1100)
	require.NoError(t, instance.Market().BuyNFT(ctx, user2, itemId))
	requireItem(t, instance, itemId, user2, domain.ItemStateIdle)
	require.Equal(t, uint64(1000+55), instance.balance(t, artist))
	require.Equal(t, uint64(1000+1045), instance.balance(t, user1))
	require.Equal(t, uint64(2000-1100), instance.balance(t, user2))

	events, err := instance.Indexer().GetEvents(ctx, domain.ItemTopic, domain.ItemAggregateId(itemId))
	require.NoError(t, err)
	types := make([]domain.EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.GetType())
	}
	require.Equal(t, []domain.EventType{
		domain.EventTypeItemCreated,
		domain.EventTypeSaleStarted,
		domain.EventTypeSale,
		domain.EventTypeSaleStarted,
		domain.EventTypeSale,
	}, types)

	last, ok := events[len(events)-1].(domain.Sale)
	require.True(t, ok)
	require.Equal(t, user1, last.Seller)
	require.Equal(t, user2, last.Buyer)
	require.Equal(t, uint64(1100), last.Price)
	require.Equal(t, uint64(55), last.RoyaltyFee)
}

func TestStopSale(t *testing.T) {
	instance := newTestInstance(t, 4, nil)
	itemId := newArtistItem(t, instance)

	err := instance.Market().StopSale(ctx, artist, itemId)
	requireCode(t, nfterrors.INVALID_STATE, err)

	require.NoError(t, instance.Market().StartSale(ctx, artist, itemId, 1000))
	err = instance.Market().StopSale(ctx, user1, itemId)
	requireCode(t, nfterrors.NOT_OWNER, err)

	require.NoError(t, instance.Market().StopSale(ctx, artist, itemId))
	requireItem(t, instance, itemId, artist, domain.ItemStateIdle)
}

func TestAuction(t *testing.T) {
	instance := newTestInstance(t, 4, nil)
	itemId := newArtistItem(t, instance)
	instance.fund(t, user1, 2000)
	instance.fund(t, user2, 2000)

	err := instance.Market().MakeBid(ctx, user1, itemId, 200)
	requireCode(t, nfterrors.AUCTION_NOT_FOUND, err)

	err = instance.Market().StartAuction(ctx, artist, itemId, 100, domain.MinAuctionDuration-1)
	requireCode(t, nfterrors.INVALID_ARGUMENT, err)
	err = instance.Market().StartAuction(ctx, user1, itemId, 100, domain.MinAuctionDuration)
	requireCode(t, nfterrors.NOT_OWNER, err)

	require.NoError(t, instance.Market().StartAuction(ctx, artist, itemId, 100, domain.MinAuctionDuration))
	requireItem(t, instance, itemId, artist, domain.ItemStateInAuction)

	err = instance.Market().StartSale(ctx, artist, itemId, 1000)
	requireCode(t, nfterrors.INVALID_STATE, err)

	err = instance.Market().MakeBid(ctx, user1, itemId, 100)
	requireCode(t, nfterrors.BID_TOO_LOW, err)
	err = instance.Market().MakeBid(ctx, user1, itemId, 5000)
	requireCode(t, nfterrors.INSUFFICIENT_FUNDS, err)

	require.NoError(t, instance.Market().MakeBid(ctx, user1, itemId, 200))
	require.NoError(t, instance.Market().MakeBid(ctx, user2, itemId, 300))
	err = instance.Market().MakeBid(ctx, user2, itemId, 300)
	requireCode(t, nfterrors.BID_TOO_LOW, err)
	require.NoError(t, instance.Market().MakeBid(ctx, user1, itemId, 1000))

	auction, err := instance.Market().GetAuction(ctx, itemId)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), auction.BestBid)
	require.Equal(t, user1, auction.BestBidder)
	require.Equal(t, startTime+domain.MinAuctionDuration, auction.EndTime)

	err = instance.Market().SettleNFT(ctx, itemId)
	requireCode(t, nfterrors.INVALID_STATE, err)

	instance.clock.advance(domain.MinAuctionDuration + 1)

	err = instance.Market().MakeBid(ctx, user2, itemId, 1500)
	requireCode(t, nfterrors.AUCTION_ENDED, err)

	// the winner has not approved the marketplace, the auction stays open
	err = instance.Market().SettleNFT(ctx, itemId)
	requireCode(t, nfterrors.INSUFFICIENT_FUNDS, err)
	requireItem(t, instance, itemId, artist, domain.ItemStateInAuction)

	instance.approveMarket(t, user1, 1000)
	require.NoError(t, instance.Market().SettleNFT(ctx, itemId))
	requireItem(t, instance, itemId, user1, domain.ItemStateIdle)
	require.Equal(t, uint64(1000), instance.balance(t, artist))
	require.Equal(t, uint64(1000), instance.balance(t, user1))
	require.Equal(t, uint64(2000), instance.balance(t, user2))

	auction, err = instance.Market().GetAuction(ctx, itemId)
	require.NoError(t, err)
	require.True(t, auction.Settled)

	err = instance.Market().SettleNFT(ctx, itemId)
	requireCode(t, nfterrors.AUCTION_NOT_FOUND, err)
}

func TestAuctionWithoutBids(t *testing.T) {
	instance := newTestInstance(t, 4, nil)
	itemId := newArtistItem(t, instance)

	require.NoError(t, instance.Market().StartAuction(ctx, artist, itemId, 100, domain.MinAuctionDuration))
	instance.clock.advance(domain.MinAuctionDuration)

	require.NoError(t, instance.Market().SettleNFT(ctx, itemId))
	requireItem(t, instance, itemId, artist, domain.ItemStateIdle)
	require.Zero(t, instance.balance(t, artist))
}

// sellTo moves the item from seller to buyer with a fixed price sale.
func sellTo(t *testing.T, instance *testInstance, itemId uint64, seller, buyer string, price uint64) {
	t.Helper()
	require.NoError(t, instance.Market().StartSale(ctx, seller, itemId, price))
	instance.approveMarket(t, buyer, price)
	require.NoError(t, instance.Market().BuyNFT(ctx, buyer, itemId))
}

func TestSecondaryAuction(t *testing.T) {
	fixtures := []struct {
		name          string
		winner        string
		royalty       uint64
		sellerBalance uint64
	}{
		{name: "royalty to the creator", winner: user2, royalty: 50, sellerBalance: 900 + 950},
		{name: "creator buys back", winner: artist, royalty: 0, sellerBalance: 900 + 1000},
	}
	for _, tc := range fixtures {
		t.Run(tc.name, func(t *testing.T) {
			instance := newTestInstance(t, 4, nil)
			itemId := newArtistItem(t, instance)
			instance.fund(t, user1, 1000)
			instance.fund(t, tc.winner, 2000)
			sellTo(t, instance, itemId, artist, user1, 100)
			artistBalance := instance.balance(t, artist)

			require.NoError(t, instance.Market().StartAuction(
				ctx, user1, itemId, 100, domain.MinAuctionDuration,
			))
			require.NoError(t, instance.Market().MakeBid(ctx, tc.winner, itemId, 1000))
			instance.clock.advance(domain.MinAuctionDuration + 1)
			instance.approveMarket(t, tc.winner, 1000)
			require.NoError(t, instance.Market().SettleNFT(ctx, itemId))

			requireItem(t, instance, itemId, tc.winner, domain.ItemStateIdle)
			require.Equal(t, tc.sellerBalance, instance.balance(t, user1))
			if tc.winner == artist {
				require.Equal(t, artistBalance-1000, instance.balance(t, artist))
			} else {
				require.Equal(t, artistBalance+tc.royalty, instance.balance(t, artist))
				require.Equal(t, uint64(2000-1000), instance.balance(t, tc.winner))
			}

			events, err := instance.Indexer().GetEvents(
				ctx, domain.ItemTopic, domain.ItemAggregateId(itemId),
			)
			require.NoError(t, err)
			ended, ok := events[len(events)-1].(domain.AuctionEnded)
			require.True(t, ok)
			require.Equal(t, tc.winner, ended.Winner)
			require.Equal(t, uint64(1000), ended.Price)
			require.Equal(t, tc.royalty, ended.RoyaltyFee)
		})
	}
}

func TestCreatorBuysBack(t *testing.T) {
	instance := newTestInstance(t, 4, nil)
	itemId := newArtistItem(t, instance)
	instance.fund(t, artist, 1000)
	instance.fund(t, user1, 1000)

	sellTo(t, instance, itemId, artist, user1, 100)
	require.Equal(t, uint64(1100), instance.balance(t, artist))
	require.Equal(t, uint64(900), instance.balance(t, user1))

	// the creator pays no royalty to themselves and the seller gets the full price
	sellTo(t, instance, itemId, user1, artist, 1000)
	requireItem(t, instance, itemId, artist, domain.ItemStateIdle)
	require.Equal(t, uint64(100), instance.balance(t, artist))
	require.Equal(t, uint64(1900), instance.balance(t, user1))

	events, err := instance.Indexer().GetEvents(ctx, domain.ItemTopic, domain.ItemAggregateId(itemId))
	require.NoError(t, err)
	sale, ok := events[len(events)-1].(domain.Sale)
	require.True(t, ok)
	require.Zero(t, sale.RoyaltyFee)
}

func TestAuctionAutoSettle(t *testing.T) {
	instance := newTestInstance(t, 4, nil, withAutoSettle())
	itemId := newArtistItem(t, instance)
	instance.fund(t, user1, 500)
	instance.approveMarket(t, user1, 500)

	require.NoError(t, instance.Market().StartAuction(ctx, artist, itemId, 100, domain.MinAuctionDuration))
	require.NoError(t, instance.Market().MakeBid(ctx, user1, itemId, 500))

	// events are dispatched to the settlement handler asynchronously
	require.Eventually(t, func() bool {
		return instance.clock.pendingTasks() == 1
	}, 5*time.Second, 50*time.Millisecond)

	instance.clock.advance(domain.MinAuctionDuration)
	requireItem(t, instance, itemId, user1, domain.ItemStateIdle)
	require.Equal(t, uint64(500), instance.balance(t, artist))
}

func TestListItems(t *testing.T) {
	instance := newTestInstance(t, 4, nil)
	first := newArtistItem(t, instance)
	second, err := instance.Market().CreateNFT(ctx, artist, "second.json", 0)
	require.NoError(t, err)
	require.NoError(t, instance.Market().StartSale(ctx, artist, second, 10))

	items, err := instance.Indexer().ListItems(ctx, domain.ItemFilter{Owner: artist})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, first, items[0].Id)

	forSale := domain.ItemStateForSale
	items, err = instance.Indexer().ListItems(ctx, domain.ItemFilter{State: &forSale})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, second, items[0].Id)

	items, err = instance.Indexer().ListItems(ctx, domain.ItemFilter{Owner: user1})
	require.NoError(t, err)
	require.Empty(t, items)

	_, err = instance.Indexer().GetEvents(ctx, "rounds", "0")
	requireCode(t, nfterrors.INVALID_ARGUMENT, err)
}

func TestBridgeCustody(t *testing.T) {
	instance := newTestInstance(t, 4, nil)
	itemId := newArtistItem(t, instance)
	market := instance.GetInfo(ctx).MarketAccount
	instance.grant(t, minter, domain.RoleBridge)

	_, err := instance.Market().LockForBridge(ctx, stranger, itemId, artist)
	requireCode(t, nfterrors.FORBIDDEN, err)
	_, err = instance.Market().LockForBridge(ctx, minter, itemId, user1)
	requireCode(t, nfterrors.NOT_OWNER, err)
	err = instance.Market().UnlockFromBridge(ctx, minter, itemId, user1)
	requireCode(t, nfterrors.INVALID_STATE, err)

	snapshot, err := instance.Market().LockForBridge(ctx, minter, itemId, artist)
	require.NoError(t, err)
	require.Equal(t, baseURI+"artwork.json", snapshot.TokenURI)
	require.Equal(t, domain.Royalty{Recipient: artist, FeeBasisPoints: royaltyBps}, snapshot.Royalty)
	require.Equal(t, uint64(4), snapshot.OriginChainId)
	require.Equal(t, itemId, snapshot.OriginAssetId)
	requireItem(t, instance, itemId, market, domain.ItemStateLocked)

	// a locked item can be neither listed nor moved
	err = instance.Market().StartSale(ctx, artist, itemId, 100)
	requireCode(t, nfterrors.INVALID_STATE, err)
	err = instance.Registry().Transfer(ctx, market, market, user1, itemId)
	requireCode(t, nfterrors.INVALID_STATE, err)
	_, err = instance.Market().LockForBridge(ctx, minter, itemId, market)
	requireCode(t, nfterrors.INVALID_STATE, err)

	err = instance.Market().UnlockFromBridge(ctx, stranger, itemId, user1)
	requireCode(t, nfterrors.FORBIDDEN, err)
	require.NoError(t, instance.Market().UnlockFromBridge(ctx, minter, itemId, user1))
	requireItem(t, instance, itemId, user1, domain.ItemStateIdle)
}

func TestMintBridgedCopy(t *testing.T) {
	instance := newTestInstance(t, 97, nil)
	instance.grant(t, minter, domain.RoleBridge)
	royalty := domain.Royalty{Recipient: artist, FeeBasisPoints: royaltyBps}

	_, err := instance.Market().MintBridgedCopy(
		ctx, stranger, 4, 0, user1, "ipfs://artwork.json", royalty,
	)
	requireCode(t, nfterrors.FORBIDDEN, err)
	_, err = instance.Market().CorrespondingId(ctx, 4, 0)
	requireCode(t, nfterrors.ITEM_NOT_FOUND, err)

	copyId, err := instance.Market().MintBridgedCopy(
		ctx, minter, 4, 0, user1, "ipfs://artwork.json", royalty,
	)
	require.NoError(t, err)
	requireItem(t, instance, copyId, user1, domain.ItemStateIdle)

	item, err := instance.Market().GetItem(ctx, copyId)
	require.NoError(t, err)
	require.Equal(t, uint64(4), item.OriginChainId)
	require.Zero(t, item.OriginAssetId)
	require.Equal(t, artist, item.Creator)
	require.Zero(t, item.Price)

	// the received uri is already prefixed
	uri, err := instance.Registry().TokenURI(ctx, copyId)
	require.NoError(t, err)
	require.Equal(t, "ipfs://artwork.json", uri)

	correspondingId, err := instance.Market().CorrespondingId(ctx, 4, 0)
	require.NoError(t, err)
	require.Equal(t, copyId, correspondingId)

	// the copy comes back after it was locked again
	_, err = instance.Market().LockForBridge(ctx, minter, copyId, user1)
	require.NoError(t, err)
	reusedId, err := instance.Market().MintBridgedCopy(
		ctx, minter, 4, 0, user2, "ipfs://artwork.json", royalty,
	)
	require.NoError(t, err)
	require.Equal(t, copyId, reusedId)
	requireItem(t, instance, copyId, user2, domain.ItemStateIdle)

	supply, err := instance.Registry().TotalSupply(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), supply)
}
