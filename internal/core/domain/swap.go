package domain

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/hyperledger/firefly-signer/pkg/abi"
)

type SwapStatus uint8

const (
	SwapStatusEmpty SwapStatus = iota
	SwapStatusInitiated
	SwapStatusRedeemed
)

func (s SwapStatus) String() string {
	switch s {
	case SwapStatusEmpty:
		return "EMPTY"
	case SwapStatusInitiated:
		return "SWAP_INITIATED"
	case SwapStatusRedeemed:
		return "REDEEMED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(s))
	}
}

var swapDigestABI = abi.ParameterArray{
	{Name: "chainFrom", Type: "uint256"},
	{Name: "chainTo", Type: "uint256"},
	{Name: "sender", Type: "address"},
	{Name: "recipient", Type: "address"},
	{Name: "tokenId", Type: "uint256"},
	{Name: "originChainId", Type: "uint256"},
	{Name: "nonce", Type: "uint256"},
}

// SwapParams are the fields covered by the swap digest. AssetId is always
// the id of the asset on its origin chain.
type SwapParams struct {
	ChainFrom     uint64
	ChainTo       uint64
	Sender        string
	Recipient     string
	AssetId       uint64
	OriginChainId uint64
	Nonce         uint64
}

// Digest is keccak256 of the ABI encoding of the parameters, matching
// abi.encode(uint256,uint256,address,address,uint256,uint256,uint256).
func (p SwapParams) Digest() ([]byte, error) {
	data, err := swapDigestABI.EncodeABIDataValues(map[string]interface{}{
		"chainFrom":     new(big.Int).SetUint64(p.ChainFrom),
		"chainTo":       new(big.Int).SetUint64(p.ChainTo),
		"sender":        p.Sender,
		"recipient":     p.Recipient,
		"tokenId":       new(big.Int).SetUint64(p.AssetId),
		"originChainId": new(big.Int).SetUint64(p.OriginChainId),
		"nonce":         new(big.Int).SetUint64(p.Nonce),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode swap params: %w", err)
	}
	return Keccak256(data), nil
}

func (p SwapParams) DigestHex() (string, error) {
	digest, err := p.Digest()
	if err != nil {
		return "", err
	}
	return EncodeHex(digest), nil
}

// SwapPayload is what the origin chain emits and the destination chain
// redeems.
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

type SwapRepository interface {
	// AddSwap stores a new record and fails if the digest is already known.
	AddSwap(ctx context.Context, swap SwapRecord) error
	GetSwap(ctx context.Context, digest string) (*SwapRecord, error)
	Close()
}

func EncodeHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func DecodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
}

func formatAmount(amount uint64) string {
	return strconv.FormatUint(amount, 10)
}
