package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/arkade-os/nftd/internal/core/domain"
	nfterrors "github.com/arkade-os/nftd/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const signatureLen = 65

type bridgeService struct {
	*instance
}

func (s *bridgeService) SetAllowedChain(
	ctx context.Context, caller string, chainId uint64, allowed bool,
) error {
	caller, err := parseAddress("caller", caller)
	if err != nil {
		return err
	}
	if chainId == 0 {
		return nfterrors.INVALID_ARGUMENT.New("chain id must be > 0")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.authorize(ctx, caller, domain.OpSetAllowedChain); err != nil {
		return err
	}
	now, err := s.now()
	if err != nil {
		return err
	}
	if err := s.repoManager.Chains().SetAllowedChain(ctx, domain.AllowedChain{
		ChainId: chainId, Allowed: allowed, UpdatedAt: now,
	}); err != nil {
		return internalError(err, "failed to store allowed chain")
	}
	log.Infof("chain %d allowed: %t", chainId, allowed)
	return nil
}

func (s *bridgeService) GetAllowedChains(ctx context.Context) ([]domain.AllowedChain, error) {
	chains, err := s.repoManager.Chains().GetAllowedChains(ctx)
	if err != nil {
		return nil, internalError(err, "failed to get allowed chains")
	}
	return chains, nil
}

func (s *bridgeService) InitSwap(
	ctx context.Context, caller string, req InitSwapRequest,
) (*SwapReceipt, error) {
	sender, err := parseAddress("caller", caller)
	if err != nil {
		return nil, err
	}
	recipient, err := parseAddress("recipient", req.Recipient)
	if err != nil {
		return nil, err
	}
	if _, err := decodeSignature(req.Signature); err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if req.ChainFrom != s.chainId {
		return nil, wrongChain(req.ChainFrom, s.chainId, "chainFrom must be the local chain")
	}
	if req.ChainTo == s.chainId {
		return nil, wrongChain(req.ChainTo, s.chainId, "chainTo must be a remote chain")
	}
	if err := s.requireAllowedChain(ctx, req.ChainTo); err != nil {
		return nil, err
	}
	item, err := s.getItem(ctx, req.ItemId)
	if err != nil {
		return nil, err
	}
	if item.Owner != sender {
		return nil, nfterrors.NOT_OWNER.New("a caller must be the owner of that token").
			WithMetadata(nfterrors.OwnerMetadata{ItemId: item.Id, Owner: item.Owner, Caller: sender})
	}
	if !item.IsIdle() {
		return nil, nfterrors.INVALID_STATE.New("only an idle item can be bridged").
			WithMetadata(nfterrors.ItemMetadata{ItemId: item.Id, State: item.State.String()})
	}

	params := domain.SwapParams{
		ChainFrom:     req.ChainFrom,
		ChainTo:       req.ChainTo,
		Sender:        sender,
		Recipient:     recipient,
		AssetId:       item.OriginAssetId,
		OriginChainId: item.OriginChainId,
		Nonce:         req.Nonce,
	}
	digest, err := s.requireEmptySwap(ctx, params)
	if err != nil {
		return nil, err
	}
	now, err := s.now()
	if err != nil {
		return nil, err
	}

	snapshot, err := s.lockForBridge(ctx, s.bridgeAccount, item.Id, sender)
	if err != nil {
		return nil, err
	}

	payload := domain.SwapPayload{
		SwapParams:     params,
		MetadataURI:    snapshot.TokenURI,
		FeeBasisPoints: snapshot.Royalty.FeeBasisPoints,
		Signature:      req.Signature,
	}
	if err := s.repoManager.Swaps().AddSwap(ctx, domain.SwapRecord{
		Digest:    digest,
		Payload:   payload,
		Status:    domain.SwapStatusInitiated,
		UpdatedAt: now,
	}); err != nil {
		// without a swap record nobody can redeem the lock, give the item back
		s.rollback(item.Id, func() error {
			locked, err := s.getItem(ctx, item.Id)
			if err != nil {
				return err
			}
			return s.unlock(ctx, locked, sender)
		})
		return nil, internalError(err, "failed to store swap")
	}
	s.publish(ctx, domain.SwapTopic, digest, domain.SwapInitiated{
		SwapEvent:   domain.SwapEvent{Id: digest, Type: domain.EventTypeSwapInitiated, Timestamp: now},
		SwapPayload: payload,
	})
	log.Infof("swap %s initiated: item %d to chain %d", digest, item.Id, req.ChainTo)

	return &SwapReceipt{Digest: digest, Payload: payload, ItemId: item.Id}, nil
}

// Redeem completes on this chain a swap initiated on payload.ChainFrom. An
// asset coming home is released from custody, any other asset is handed over
// as a local copy. A copy minted here pays royalties to the swap sender, so
// when someone other than the creator bridges a work the creator earns no
// royalty on this chain.
func (s *bridgeService) Redeem(
	ctx context.Context, payload domain.SwapPayload,
) (*SwapReceipt, error) {
	sender, err := parseAddress("sender", payload.Sender)
	if err != nil {
		return nil, err
	}
	recipient, err := parseAddress("recipient", payload.Recipient)
	if err != nil {
		return nil, err
	}
	if payload.FeeBasisPoints > domain.MaxFeeBasisPoints {
		return nil, nfterrors.INVALID_ARGUMENT.New(
			"royalty fee must be <= %d basis points", domain.MaxFeeBasisPoints,
		)
	}
	payload.Sender, payload.Recipient = sender, recipient

	s.lock.Lock()
	defer s.lock.Unlock()

	if payload.ChainTo != s.chainId {
		return nil, wrongChain(payload.ChainTo, s.chainId, "chainTo must be the local chain")
	}
	if err := s.requireAllowedChain(ctx, payload.ChainFrom); err != nil {
		return nil, err
	}
	digest, err := s.requireEmptySwap(ctx, payload.SwapParams)
	if err != nil {
		return nil, err
	}
	if err := s.requireValidator(ctx, payload.SwapParams, digest, payload.Signature); err != nil {
		return nil, err
	}
	now, err := s.now()
	if err != nil {
		return nil, err
	}

	var itemId uint64
	if payload.OriginChainId == s.chainId {
		// the asset is coming home: release the original
		if err := s.authorize(ctx, s.bridgeAccount, domain.OpUnlockFromBridge); err != nil {
			return nil, err
		}
		item, err := s.getItem(ctx, payload.AssetId)
		if err != nil {
			return nil, err
		}
		if err := s.unlock(ctx, item, recipient); err != nil {
			return nil, err
		}
		itemId = item.Id
	} else {
		royalty := domain.Royalty{Recipient: sender, FeeBasisPoints: payload.FeeBasisPoints}
		itemId, err = s.mintBridgedCopy(
			ctx, s.bridgeAccount, payload.OriginChainId, payload.AssetId,
			recipient, payload.MetadataURI, royalty,
		)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repoManager.Swaps().AddSwap(ctx, domain.SwapRecord{
		Digest:    digest,
		Payload:   payload,
		Status:    domain.SwapStatusRedeemed,
		UpdatedAt: now,
	}); err != nil {
		// back into custody so that a retry of this redeem releases it again
		s.rollback(itemId, func() error {
			_, err := s.lockForBridge(ctx, s.bridgeAccount, itemId, recipient)
			return err
		})
		return nil, internalError(err, "failed to store swap")
	}
	s.publish(ctx, domain.SwapTopic, digest, domain.SwapRedeemed{
		SwapEvent:   domain.SwapEvent{Id: digest, Type: domain.EventTypeSwapRedeemed, Timestamp: now},
		SwapPayload: payload,
		LocalItemId: itemId,
	})
	log.Infof("swap %s redeemed: local item %d to %s", digest, itemId, recipient)

	return &SwapReceipt{Digest: digest, Payload: payload, ItemId: itemId}, nil
}

func (s *bridgeService) GetSwap(ctx context.Context, digest string) (*domain.SwapRecord, error) {
	buf, err := domain.DecodeHex(digest)
	if err != nil || len(buf) != 32 {
		return nil, nfterrors.INVALID_ARGUMENT.New("invalid swap digest %q", digest)
	}
	swap, err := s.repoManager.Swaps().GetSwap(ctx, domain.EncodeHex(buf))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.SwapRecord{Digest: domain.EncodeHex(buf), Status: domain.SwapStatusEmpty}, nil
		}
		return nil, internalError(err, "failed to get swap")
	}
	return swap, nil
}

func (s *bridgeService) SwapDigest(params domain.SwapParams) (string, error) {
	sender, err := parseAddress("sender", params.Sender)
	if err != nil {
		return "", err
	}
	recipient, err := parseAddress("recipient", params.Recipient)
	if err != nil {
		return "", err
	}
	params.Sender, params.Recipient = sender, recipient
	digest, err := params.DigestHex()
	if err != nil {
		return "", nfterrors.INVALID_ARGUMENT.Wrap(err)
	}
	return digest, nil
}

// rollback restores an item changed ahead of a swap record that could not be
// stored.
func (i *instance) rollback(itemId uint64, undo func() error) {
	if err := undo(); err != nil {
		log.WithError(err).Errorf("failed to restore item %d after swap write failure", itemId)
	}
}

func (i *instance) requireAllowedChain(ctx context.Context, chainId uint64) error {
	allowed, err := i.repoManager.Chains().IsChainAllowed(ctx, chainId)
	if err != nil {
		return internalError(err, "failed to check allowed chain")
	}
	if !allowed {
		return nfterrors.CHAIN_NOT_ALLOWED.New("chain %d is not allowed", chainId).
			WithMetadata(nfterrors.ChainMetadata{ChainId: chainId, LocalChainId: i.chainId})
	}
	return nil
}

// requireEmptySwap returns the digest of params when no swap record exists
// for it on this chain.
func (i *instance) requireEmptySwap(ctx context.Context, params domain.SwapParams) (string, error) {
	digest, err := params.DigestHex()
	if err != nil {
		return "", nfterrors.INVALID_ARGUMENT.Wrap(err)
	}
	swap, err := i.repoManager.Swaps().GetSwap(ctx, digest)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", internalError(err, "failed to get swap")
	}
	if swap != nil && swap.Status != domain.SwapStatusEmpty {
		return "", nfterrors.SWAP_NOT_EMPTY.New("swap %s is already %s", digest, swap.Status).
			WithMetadata(nfterrors.SwapMetadata{Digest: digest, Status: swap.Status.String()})
	}
	return digest, nil
}

func (i *instance) requireValidator(
	ctx context.Context, params domain.SwapParams, digest, signature string,
) error {
	wrongValidator := func(signer string, err error) error {
		return nfterrors.WRONG_VALIDATOR.Wrap(err).
			WithMetadata(nfterrors.ValidatorMetadata{Digest: digest, Signer: signer})
	}

	raw, err := params.Digest()
	if err != nil {
		return nfterrors.INVALID_ARGUMENT.Wrap(err)
	}
	signer, err := i.verifier.RecoverSigner(raw, signature)
	if err != nil {
		return wrongValidator("", fmt.Errorf("invalid attestation: %w", err))
	}
	ok, err := i.repoManager.Roles().HasRole(ctx, signer, domain.Policy[domain.OpAttestSwap])
	if err != nil {
		return internalError(err, "failed to check validator role")
	}
	if !ok {
		return wrongValidator(signer, fmt.Errorf("attestation signer %s is not a validator", signer))
	}
	return nil
}

func decodeSignature(signature string) ([]byte, error) {
	buf, err := domain.DecodeHex(signature)
	if err != nil || len(buf) != signatureLen {
		return nil, nfterrors.INVALID_ARGUMENT.New(
			"attestation must be a %d-byte hex signature", signatureLen,
		)
	}
	return buf, nil
}

func wrongChain(chainId, localChainId uint64, msg string) error {
	return nfterrors.WRONG_CHAIN.New("%s: got %d, local chain is %d", msg, chainId, localChainId).
		WithMetadata(nfterrors.ChainMetadata{ChainId: chainId, LocalChainId: localChainId})
}
