package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"golang.org/x/crypto/sha3"
)

const ZeroAddress = "0x0000000000000000000000000000000000000000"

const (
	MarketAccountName = "market"
	BridgeAccountName = "bridge"
)

// ParseAddress validates s as a 20-byte hex account and returns it in
// 0x-prefixed lower-case form.
func ParseAddress(s string) (string, error) {
	addr, err := ethtypes.NewAddress(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid address %q: %w", s, err)
	}
	normalized := addr.String()
	if normalized == ZeroAddress {
		return "", fmt.Errorf("invalid address %q: zero address", s)
	}
	return normalized, nil
}

// ServiceAccount derives the address of an instance-owned account, such as
// the marketplace custodian, from its name and the local chain id.
func ServiceAccount(name string, chainId uint64) string {
	h := Keccak256([]byte("nftd:" + name + ":" + strconv.FormatUint(chainId, 10)))
	var addr ethtypes.Address0xHex
	copy(addr[:], h[12:])
	return addr.String()
}

func Keccak256(data ...[]byte) []byte {
	hash := sha3.NewLegacyKeccak256()
	for _, d := range data {
		hash.Write(d)
	}
	return hash.Sum(nil)
}

// SignedMessageHash returns the EIP-191 hash that eth_sign produces for a
// 32-byte message.
func SignedMessageHash(msg []byte) []byte {
	prefix := []byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(msg)))
	return Keccak256(prefix, msg)
}
