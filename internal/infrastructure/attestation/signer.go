package attestation

import (
	"fmt"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/core/ports"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
)

type signer struct {
	key *secp256k1.KeyPair
}

// NewSigner loads a hex encoded secp256k1 private key. The resulting signer
// produces EIP-191 personal-message signatures as 65 bytes R||S||V with v in
// {27, 28}.
func NewSigner(privateKeyHex string) (ports.AttestationSigner, error) {
	keyBytes, err := domain.DecodeHex(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key encoding: %w", err)
	}
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("invalid private key length: got %d bytes, expected 32", len(keyBytes))
	}
	return &signer{secp256k1.KeyPairFromBytes(keyBytes)}, nil
}

// GenerateSigner creates a signer with a fresh random key and returns its hex
// encoded private key along with it.
func GenerateSigner() (ports.AttestationSigner, string, error) {
	key, err := secp256k1.GenerateSecp256k1KeyPair()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate key: %w", err)
	}
	return &signer{key}, domain.EncodeHex(key.PrivateKeyBytes()), nil
}

func (s *signer) Address() string {
	return ethtypes.Address0xHex(s.key.Address).String()
}

func (s *signer) Sign(digest []byte) (string, error) {
	sig, err := s.key.SignDirect(domain.SignedMessageHash(digest))
	if err != nil {
		return "", fmt.Errorf("failed to sign: %w", err)
	}
	rsv := sig.CompactRSV()
	if rsv[64] < 27 {
		rsv[64] += 27
	}
	return domain.EncodeHex(rsv), nil
}
