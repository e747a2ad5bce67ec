package domain

import (
	"testing"

	"github.com/arkade-os/nftd/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestAuctionBids(t *testing.T) {
	auction := NewAuction(0, artist, 100, 86400, 0)
	require.False(t, auction.HasBids())

	// the first bid must be strictly above the minimum price
	_, err := auction.Bid(user1, 100, 1)
	require.True(t, errors.BID_TOO_LOW.Is(err))

	bids := []struct {
		bidder string
		amount uint64
	}{
		{user1, 200},
		{user2, 300},
		{user1, 400},
		{user2, 500},
		{user1, 1000},
	}
	for _, b := range bids {
		event, err := auction.Bid(b.bidder, b.amount, 10)
		require.NoError(t, err)
		require.Equal(t, b.amount, event.(Bid).Amount)
	}

	_, err = auction.Bid(user2, 1000, 11)
	require.True(t, errors.BID_TOO_LOW.Is(err))
	_, err = auction.Bid(user2, 101, 11)
	require.True(t, errors.BID_TOO_LOW.Is(err))

	winner, price := auction.Winner()
	require.Equal(t, user1, winner)
	require.Equal(t, uint64(1000), price)
}

func TestAuctionEnd(t *testing.T) {
	auction := NewAuction(0, artist, 100, 86400, 0)

	err := auction.CheckSettle(86399)
	require.True(t, errors.INVALID_STATE.Is(err))

	_, err = auction.Bid(user1, 101, 86400)
	require.True(t, errors.AUCTION_ENDED.Is(err))

	require.NoError(t, auction.CheckSettle(86400))
	winner, price := auction.Winner()
	require.Empty(t, winner)
	require.Zero(t, price)

	auction.Settled = true
	err = auction.CheckSettle(86401)
	require.True(t, errors.AUCTION_NOT_FOUND.Is(err))
	_, err = auction.Bid(user1, 101, 1)
	require.True(t, errors.AUCTION_NOT_FOUND.Is(err))
}
