package attestation

import (
	"context"
	"fmt"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/core/ports"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
)

// signatureLen is the size of a compact R||S||V secp256k1 signature.
const signatureLen = 65

type verifier struct{}

// NewVerifier returns a verifier of EIP-191 personal-message signatures.
func NewVerifier() ports.AttestationVerifier {
	return verifier{}
}

func (verifier) RecoverSigner(digest []byte, signature string) (string, error) {
	sigBytes, err := domain.DecodeHex(signature)
	if err != nil {
		return "", fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sigBytes) != signatureLen {
		return "", fmt.Errorf(
			"invalid signature length: got %d bytes, expected %d", len(sigBytes), signatureLen,
		)
	}

	sig, err := secp256k1.DecodeCompactRSV(context.Background(), sigBytes)
	if err != nil {
		return "", fmt.Errorf("failed to decode signature: %w", err)
	}

	// legacy v values (27/28) are accepted regardless of the chain id
	signer, err := sig.RecoverDirect(domain.SignedMessageHash(digest), 0)
	if err != nil {
		return "", fmt.Errorf("failed to recover signer: %w", err)
	}
	return signer.String(), nil
}
