package application_test

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/arkade-os/nftd/internal/core/application"
	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/core/ports"
	"github.com/arkade-os/nftd/internal/infrastructure/attestation"
	nfterrors "github.com/arkade-os/nftd/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	chainA = uint64(4)
	chainB = uint64(97)
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) RecoverSigner(digest []byte, signature string) (string, error) {
	args := m.Called(digest, signature)
	return args.String(0), args.Error(1)
}

type bridgeFixture struct {
	a, b      *testInstance
	validator ports.AttestationSigner
}

func newBridgeFixture(t *testing.T, opts ...instanceOption) *bridgeFixture {
	t.Helper()

	validator, _, err := attestation.GenerateSigner()
	require.NoError(t, err)

	a := newTestInstance(t, chainA, nil, opts...)
	b := newTestInstance(t, chainB, nil, opts...)
	for _, pair := range []struct {
		local  *testInstance
		remote uint64
	}{{a, chainB}, {b, chainA}} {
		pair.local.grant(t, validator.Address(), domain.RoleValidator)
		require.NoError(t, pair.local.Bridge().SetAllowedChain(ctx, admin, pair.remote, true))
	}
	return &bridgeFixture{a: a, b: b, validator: validator}
}

func (f *bridgeFixture) attest(t *testing.T, params domain.SwapParams) string {
	t.Helper()
	return sign(t, f.validator, params)
}

func sign(t *testing.T, signer ports.AttestationSigner, params domain.SwapParams) string {
	t.Helper()
	digest, err := params.Digest()
	require.NoError(t, err)
	sig, err := signer.Sign(digest)
	require.NoError(t, err)
	return sig
}

// bridge initiates the swap of itemId on from and redeems it on to.
func (f *bridgeFixture) bridge(
	t *testing.T, from, to *testInstance, itemId, nonce uint64,
) (*application.SwapReceipt, *application.SwapReceipt) {
	t.Helper()

	initiated, err := f.initSwap(t, from, to, itemId, nonce)
	require.NoError(t, err)

	redeemed, err := to.Bridge().Redeem(ctx, initiated.Payload)
	require.NoError(t, err)
	require.Equal(t, initiated.Digest, redeemed.Digest)
	return initiated, redeemed
}

// initSwap sends itemId from the artist on from to the artist on to.
func (f *bridgeFixture) initSwap(
	t *testing.T, from, to *testInstance, itemId, nonce uint64,
) (*application.SwapReceipt, error) {
	t.Helper()

	item, err := from.Market().GetItem(ctx, itemId)
	require.NoError(t, err)

	fromChain, toChain := from.GetInfo(ctx).ChainId, to.GetInfo(ctx).ChainId
	sig := f.attest(t, domain.SwapParams{
		ChainFrom:     fromChain,
		ChainTo:       toChain,
		Sender:        artist,
		Recipient:     artist,
		AssetId:       item.OriginAssetId,
		OriginChainId: item.OriginChainId,
		Nonce:         nonce,
	})

	return from.Bridge().InitSwap(ctx, artist, application.InitSwapRequest{
		ChainFrom: fromChain,
		ChainTo:   toChain,
		Recipient: artist,
		ItemId:    itemId,
		Nonce:     nonce,
		Signature: sig,
	})
}

func TestBridgeRoundTrip(t *testing.T) {
	f := newBridgeFixture(t)

	itemId := newArtistItem(t, f.a)
	// an unrelated asset on chain B so local and origin ids differ
	f.b.grant(t, artist, domain.RoleArtist)
	_, err := f.b.Market().CreateNFT(ctx, artist, "local.json", 0)
	require.NoError(t, err)

	// A -> B
	initiated, redeemed := f.bridge(t, f.a, f.b, itemId, 1)
	marketA := f.a.GetInfo(ctx).MarketAccount
	requireItem(t, f.a, itemId, marketA, domain.ItemStateLocked)
	require.Equal(t, uint64(1), redeemed.ItemId)
	requireItem(t, f.b, redeemed.ItemId, artist, domain.ItemStateIdle)

	copyItem, err := f.b.Market().GetItem(ctx, redeemed.ItemId)
	require.NoError(t, err)
	require.Equal(t, chainA, copyItem.OriginChainId)
	require.Equal(t, itemId, copyItem.OriginAssetId)

	correspondingId, err := f.b.Market().CorrespondingId(ctx, chainA, itemId)
	require.NoError(t, err)
	require.Equal(t, redeemed.ItemId, correspondingId)

	uri, err := f.b.Registry().TokenURI(ctx, redeemed.ItemId)
	require.NoError(t, err)
	require.Equal(t, baseURI+"artwork.json", uri)
	royalty, err := f.b.Registry().RoyaltyOf(ctx, redeemed.ItemId)
	require.NoError(t, err)
	require.Equal(t, domain.Royalty{Recipient: artist, FeeBasisPoints: royaltyBps}, *royalty)

	swap, err := f.a.Bridge().GetSwap(ctx, initiated.Digest)
	require.NoError(t, err)
	require.Equal(t, domain.SwapStatusInitiated, swap.Status)
	swap, err = f.b.Bridge().GetSwap(ctx, initiated.Digest)
	require.NoError(t, err)
	require.Equal(t, domain.SwapStatusRedeemed, swap.Status)

	// replaying the same payload is rejected
	_, err = f.b.Bridge().Redeem(ctx, initiated.Payload)
	requireCode(t, nfterrors.SWAP_NOT_EMPTY, err)

	// B -> A returns the original
	_, redeemed = f.bridge(t, f.b, f.a, redeemed.ItemId, 2)
	require.Equal(t, itemId, redeemed.ItemId)
	requireItem(t, f.a, itemId, artist, domain.ItemStateIdle)
	requireItem(t, f.b, correspondingId, f.b.GetInfo(ctx).MarketAccount, domain.ItemStateLocked)

	supplyA, err := f.a.Registry().TotalSupply(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), supplyA)

	// A -> B again reuses the existing copy
	_, redeemed = f.bridge(t, f.a, f.b, itemId, 3)
	require.Equal(t, correspondingId, redeemed.ItemId)
	requireItem(t, f.b, correspondingId, artist, domain.ItemStateIdle)

	supplyB, err := f.b.Registry().TotalSupply(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), supplyB)

	events, err := f.b.Indexer().GetEvents(ctx, domain.SwapTopic, initiated.Digest)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, domain.EventTypeSwapRedeemed, events[0].GetType())
}

func TestBridgeSwapStoreFailure(t *testing.T) {
	fail := &atomic.Bool{}
	f := newBridgeFixture(t, withFailingSwapStore(fail))
	itemId := newArtistItem(t, f.a)
	marketA := f.a.GetInfo(ctx).MarketAccount
	marketB := f.b.GetInfo(ctx).MarketAccount

	requireSwap := func(t *testing.T, instance *testInstance, digest string, status domain.SwapStatus) {
		t.Helper()
		swap, err := instance.Bridge().GetSwap(ctx, digest)
		require.NoError(t, err)
		require.Equal(t, status, swap.Status)
	}

	// the item is not left locked without a swap record
	fail.Store(true)
	_, err := f.initSwap(t, f.a, f.b, itemId, 1)
	requireCode(t, nfterrors.INTERNAL_ERROR, err)
	requireItem(t, f.a, itemId, artist, domain.ItemStateIdle)

	fail.Store(false)
	initiated, err := f.initSwap(t, f.a, f.b, itemId, 1)
	require.NoError(t, err)
	requireItem(t, f.a, itemId, marketA, domain.ItemStateLocked)

	// the minted copy stays in custody until the redeem is stored
	fail.Store(true)
	_, err = f.b.Bridge().Redeem(ctx, initiated.Payload)
	requireCode(t, nfterrors.INTERNAL_ERROR, err)
	requireSwap(t, f.b, initiated.Digest, domain.SwapStatusEmpty)
	copyId, err := f.b.Market().CorrespondingId(ctx, chainA, itemId)
	require.NoError(t, err)
	requireItem(t, f.b, copyId, marketB, domain.ItemStateLocked)

	fail.Store(false)
	redeemed, err := f.b.Bridge().Redeem(ctx, initiated.Payload)
	require.NoError(t, err)
	require.Equal(t, copyId, redeemed.ItemId)
	requireItem(t, f.b, copyId, artist, domain.ItemStateIdle)
	requireSwap(t, f.b, initiated.Digest, domain.SwapStatusRedeemed)

	// the original goes back into custody when its return cannot be stored
	back, err := f.initSwap(t, f.b, f.a, copyId, 2)
	require.NoError(t, err)
	fail.Store(true)
	_, err = f.a.Bridge().Redeem(ctx, back.Payload)
	requireCode(t, nfterrors.INTERNAL_ERROR, err)
	requireItem(t, f.a, itemId, marketA, domain.ItemStateLocked)
	requireSwap(t, f.a, back.Digest, domain.SwapStatusEmpty)

	fail.Store(false)
	redeemed, err = f.a.Bridge().Redeem(ctx, back.Payload)
	require.NoError(t, err)
	require.Equal(t, itemId, redeemed.ItemId)
	requireItem(t, f.a, itemId, artist, domain.ItemStateIdle)
	requireSwap(t, f.a, back.Digest, domain.SwapStatusRedeemed)
}

func TestInitSwapErrors(t *testing.T) {
	f := newBridgeFixture(t)
	itemId := newArtistItem(t, f.a)

	params := domain.SwapParams{
		ChainFrom:     chainA,
		ChainTo:       chainB,
		Sender:        artist,
		Recipient:     artist,
		AssetId:       itemId,
		OriginChainId: chainA,
		Nonce:         1,
	}
	validReq := application.InitSwapRequest{
		ChainFrom: chainA,
		ChainTo:   chainB,
		Recipient: artist,
		ItemId:    itemId,
		Nonce:     1,
		Signature: f.attest(t, params),
	}

	fixtures := []struct {
		name   string
		caller string
		modify func(*application.InitSwapRequest)
		check  func(*testing.T, error)
	}{
		{
			name:   "malformed signature",
			caller: artist,
			modify: func(r *application.InitSwapRequest) { r.Signature = "0x1234" },
			check:  func(t *testing.T, err error) { requireCode(t, nfterrors.INVALID_ARGUMENT, err) },
		},
		{
			name:   "chainFrom is not local",
			caller: artist,
			modify: func(r *application.InitSwapRequest) { r.ChainFrom = 5 },
			check:  func(t *testing.T, err error) { requireCode(t, nfterrors.WRONG_CHAIN, err) },
		},
		{
			name:   "chainTo is local",
			caller: artist,
			modify: func(r *application.InitSwapRequest) { r.ChainTo = chainA },
			check:  func(t *testing.T, err error) { requireCode(t, nfterrors.WRONG_CHAIN, err) },
		},
		{
			name:   "chainTo not allowed",
			caller: artist,
			modify: func(r *application.InitSwapRequest) { r.ChainTo = 5 },
			check:  func(t *testing.T, err error) { requireCode(t, nfterrors.CHAIN_NOT_ALLOWED, err) },
		},
		{
			name:   "unknown item",
			caller: artist,
			modify: func(r *application.InitSwapRequest) { r.ItemId = 42 },
			check:  func(t *testing.T, err error) { requireCode(t, nfterrors.ITEM_NOT_FOUND, err) },
		},
		{
			name:   "caller is not the owner",
			caller: user1,
			modify: func(*application.InitSwapRequest) {},
			check:  func(t *testing.T, err error) { requireCode(t, nfterrors.NOT_OWNER, err) },
		},
	}
	for _, tc := range fixtures {
		t.Run(tc.name, func(t *testing.T) {
			req := validReq
			tc.modify(&req)
			_, err := f.a.Bridge().InitSwap(ctx, tc.caller, req)
			tc.check(t, err)
		})
	}

	t.Run("listed item", func(t *testing.T) {
		require.NoError(t, f.a.Market().StartSale(ctx, artist, itemId, 10))
		_, err := f.a.Bridge().InitSwap(ctx, artist, validReq)
		requireCode(t, nfterrors.INVALID_STATE, err)
		require.NoError(t, f.a.Market().StopSale(ctx, artist, itemId))
	})

	t.Run("nonce reuse", func(t *testing.T) {
		receipt, err := f.a.Bridge().InitSwap(ctx, artist, validReq)
		require.NoError(t, err)
		_, err = f.b.Bridge().Redeem(ctx, receipt.Payload)
		require.NoError(t, err)

		// back home with nonce 2, then try to leave again with nonce 1
		_, _ = f.bridge(t, f.b, f.a, 0, 2)
		_, err = f.a.Bridge().InitSwap(ctx, artist, validReq)
		requireCode(t, nfterrors.SWAP_NOT_EMPTY, err)
	})
}

func TestRedeemErrors(t *testing.T) {
	f := newBridgeFixture(t)

	params := domain.SwapParams{
		ChainFrom:     chainA,
		ChainTo:       chainB,
		Sender:        artist,
		Recipient:     user1,
		AssetId:       7,
		OriginChainId: chainA,
		Nonce:         1,
	}
	payload := domain.SwapPayload{
		SwapParams:     params,
		MetadataURI:    "ipfs://remote.json",
		FeeBasisPoints: 250,
		Signature:      f.attest(t, params),
	}

	t.Run("wrong destination", func(t *testing.T) {
		_, err := f.a.Bridge().Redeem(ctx, payload)
		requireCode(t, nfterrors.WRONG_CHAIN, err)
	})

	t.Run("source not allowed", func(t *testing.T) {
		p := payload
		p.ChainFrom = 5
		_, err := f.b.Bridge().Redeem(ctx, p)
		requireCode(t, nfterrors.CHAIN_NOT_ALLOWED, err)
	})

	t.Run("fee too high", func(t *testing.T) {
		p := payload
		p.FeeBasisPoints = domain.MaxFeeBasisPoints + 1
		_, err := f.b.Bridge().Redeem(ctx, p)
		requireCode(t, nfterrors.INVALID_ARGUMENT, err)
	})

	t.Run("signed by a non validator", func(t *testing.T) {
		other, _, err := attestation.GenerateSigner()
		require.NoError(t, err)
		p := payload
		p.Signature = sign(t, other, params)
		_, err = f.b.Bridge().Redeem(ctx, p)
		requireCode(t, nfterrors.WRONG_VALIDATOR, err)
	})

	t.Run("signature over other params", func(t *testing.T) {
		p := payload
		p.Nonce = 2
		_, err := f.b.Bridge().Redeem(ctx, p)
		requireCode(t, nfterrors.WRONG_VALIDATOR, err)
	})

	t.Run("revoked validator", func(t *testing.T) {
		require.NoError(t, f.b.Admin().RevokeRole(ctx, admin, f.validator.Address(), domain.RoleValidator))
		t.Cleanup(func() { f.b.grant(t, f.validator.Address(), domain.RoleValidator) })

		_, err := f.b.Bridge().Redeem(ctx, payload)
		requireCode(t, nfterrors.WRONG_VALIDATOR, err)
	})

	t.Run("valid", func(t *testing.T) {
		receipt, err := f.b.Bridge().Redeem(ctx, payload)
		require.NoError(t, err)
		requireItem(t, f.b, receipt.ItemId, user1, domain.ItemStateIdle)

		royalty, err := f.b.Registry().RoyaltyOf(ctx, receipt.ItemId)
		require.NoError(t, err)
		require.Equal(t, domain.Royalty{Recipient: artist, FeeBasisPoints: 250}, *royalty)
		uri, err := f.b.Registry().TokenURI(ctx, receipt.ItemId)
		require.NoError(t, err)
		require.Equal(t, "ipfs://remote.json", uri)
	})
}

func TestRedeemVerifierFailure(t *testing.T) {
	verifier := &mockVerifier{}
	verifier.On("RecoverSigner", mock.Anything, mock.Anything).
		Return("", fmt.Errorf("invalid signature"))

	instance := newTestInstance(t, chainB, verifier)
	require.NoError(t, instance.Bridge().SetAllowedChain(ctx, admin, chainA, true))

	params := domain.SwapParams{
		ChainFrom: chainA, ChainTo: chainB, Sender: artist, Recipient: artist,
		AssetId: 0, OriginChainId: chainA, Nonce: 1,
	}
	_, err := instance.Bridge().Redeem(ctx, domain.SwapPayload{SwapParams: params, Signature: "0x00"})
	requireCode(t, nfterrors.WRONG_VALIDATOR, err)
	verifier.AssertNumberOfCalls(t, "RecoverSigner", 1)

	swap, err := instance.Bridge().GetSwap(ctx, mustDigest(t, instance, params))
	require.NoError(t, err)
	require.Equal(t, domain.SwapStatusEmpty, swap.Status)
}

func TestAllowedChains(t *testing.T) {
	instance := newTestInstance(t, chainA, nil)

	err := instance.Bridge().SetAllowedChain(ctx, stranger, chainB, true)
	requireCode(t, nfterrors.FORBIDDEN, err)
	err = instance.Bridge().SetAllowedChain(ctx, admin, 0, true)
	requireCode(t, nfterrors.INVALID_ARGUMENT, err)

	require.NoError(t, instance.Bridge().SetAllowedChain(ctx, admin, chainB, true))
	require.NoError(t, instance.Bridge().SetAllowedChain(ctx, admin, 56, true))
	require.NoError(t, instance.Bridge().SetAllowedChain(ctx, admin, 56, false))

	chains, err := instance.Bridge().GetAllowedChains(ctx)
	require.NoError(t, err)
	require.Len(t, chains, 1)
	require.Equal(t, chainB, chains[0].ChainId)
}

func mustDigest(t *testing.T, instance *testInstance, params domain.SwapParams) string {
	t.Helper()
	digest, err := instance.Bridge().SwapDigest(params)
	require.NoError(t, err)
	return digest
}
