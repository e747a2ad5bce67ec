package domain

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeccak256(t *testing.T) {
	require.Equal(
		t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		hex.EncodeToString(Keccak256()),
	)
	require.Equal(t, Keccak256([]byte("ab")), Keccak256([]byte("a"), []byte("b")))
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	require.NoError(t, err)
	require.Equal(t, artist, addr)

	for _, invalid := range []string{"", "0x1234", "not-an-address", ZeroAddress} {
		_, err := ParseAddress(invalid)
		require.Error(t, err, invalid)
	}
}

func TestServiceAccount(t *testing.T) {
	market := ServiceAccount(MarketAccountName, 4)
	require.Equal(t, market, ServiceAccount(MarketAccountName, 4))
	require.NotEqual(t, market, ServiceAccount(MarketAccountName, 97))
	require.NotEqual(t, market, ServiceAccount(BridgeAccountName, 4))

	parsed, err := ParseAddress(market)
	require.NoError(t, err)
	require.Equal(t, market, parsed)
}

func TestRoyaltyFee(t *testing.T) {
	tests := []struct {
		amount uint64
		bps    uint32
		fee    uint64
	}{
		{100, 500, 5},
		{50, 500, 2},
		{1000, 0, 0},
		{9999, 1, 0},
		{10000, 1, 1},
		{1000, 10000, 1000},
		{^uint64(0), 10000, ^uint64(0)},
		{^uint64(0), 5000, ^uint64(0) / 2},
	}
	for _, tt := range tests {
		royalty := Royalty{Recipient: artist, FeeBasisPoints: tt.bps}
		require.Equal(t, tt.fee, royalty.Fee(tt.amount), "%d * %d", tt.amount, tt.bps)
	}
}

func TestParseChainId(t *testing.T) {
	tests := []struct {
		in  string
		id  uint64
		err bool
	}{
		{"rinkeby", 4, false},
		{"bsc_testnet", 97, false},
		{"Hardhat", 31337, false},
		{"1337", 1337, false},
		{"0", 0, true},
		{"unknown", 0, true},
	}
	for _, tt := range tests {
		id, err := ParseChainId(tt.in)
		if tt.err {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tt.id, id)
	}
	require.Equal(t, "bsc_testnet", ChainName(97))
	require.Equal(t, "12345", ChainName(12345))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("validator")
	require.NoError(t, err)
	require.Equal(t, RoleValidator, role)
	_, err = ParseRole("OWNER")
	require.Error(t, err)

	for op, role := range Policy {
		require.NotEmpty(t, op)
		require.Contains(t, roles, role)
	}
}
