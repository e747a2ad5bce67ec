package attestation_test

import (
	"testing"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/infrastructure/attestation"
	"github.com/stretchr/testify/require"
)

// hardhat account #0
const (
	validatorKey     = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	validatorAddress = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"
)

func TestSignAndRecover(t *testing.T) {
	signer, err := attestation.NewSigner(validatorKey)
	require.NoError(t, err)
	require.Equal(t, validatorAddress, signer.Address())

	params := domain.SwapParams{
		ChainFrom:     4,
		ChainTo:       97,
		Sender:        "0x70997970c51812dc3a010c7d01b50e0d17dc79c8",
		Recipient:     "0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc",
		AssetId:       0,
		OriginChainId: 4,
		Nonce:         1,
	}
	digest, err := params.Digest()
	require.NoError(t, err)

	signature, err := signer.Sign(digest)
	require.NoError(t, err)

	sigBytes, err := domain.DecodeHex(signature)
	require.NoError(t, err)
	require.Len(t, sigBytes, 65)
	require.Contains(t, []byte{27, 28}, sigBytes[64])

	verifier := attestation.NewVerifier()
	recovered, err := verifier.RecoverSigner(digest, signature)
	require.NoError(t, err)
	require.Equal(t, validatorAddress, recovered)

	// v as a raw recovery id is accepted too
	sigBytes[64] -= 27
	recovered, err = verifier.RecoverSigner(digest, domain.EncodeHex(sigBytes))
	require.NoError(t, err)
	require.Equal(t, validatorAddress, recovered)

	// a different digest recovers a different address
	params.Nonce = 2
	other, err := params.Digest()
	require.NoError(t, err)
	recovered, err = verifier.RecoverSigner(other, signature)
	if err == nil {
		require.NotEqual(t, validatorAddress, recovered)
	}
}

func TestGenerateSigner(t *testing.T) {
	signer, key, err := attestation.GenerateSigner()
	require.NoError(t, err)

	loaded, err := attestation.NewSigner(key)
	require.NoError(t, err)
	require.Equal(t, signer.Address(), loaded.Address())
}

func TestInvalidInputs(t *testing.T) {
	_, err := attestation.NewSigner("0x1234")
	require.Error(t, err)

	_, err = attestation.NewSigner("not hex")
	require.Error(t, err)

	verifier := attestation.NewVerifier()
	_, err = verifier.RecoverSigner(make([]byte, 32), "0x1234")
	require.Error(t, err)

	_, err = verifier.RecoverSigner(make([]byte, 32), "zz")
	require.Error(t, err)
}
