package client

import (
	"strconv"

	"golang.org/x/crypto/sha3"
)

const (
	SenderHeader    = "X-Nftd-Sender"
	ExpiryHeader    = "X-Nftd-Expiry"
	SignatureHeader = "X-Nftd-Signature"
)

// RequestDigest is keccak256(body || expiry) where expiry is the decimal
// unix timestamp carried in the expiry header. The sender signs it as an
// EIP-191 personal message.
func RequestDigest(body []byte, expiry int64) []byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write(body)
	hash.Write([]byte(strconv.FormatInt(expiry, 10)))
	return hash.Sum(nil)
}
