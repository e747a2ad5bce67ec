package application

import (
	"context"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/core/ports"
	nfterrors "github.com/arkade-os/nftd/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type registryService struct {
	*instance
}

func (s *registryService) Mint(
	ctx context.Context, caller, owner, metadataURI string, royalty domain.Royalty,
) (uint64, error) {
	caller, err := parseAddress("caller", caller)
	if err != nil {
		return 0, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	return s.mint(ctx, caller, owner, s.baseURI+metadataURI, royalty, nil)
}

type lineage struct {
	originChainId uint64
	originAssetId uint64
}

// mint creates the asset and its idle marketplace item. A nil origin marks
// a locally created asset.
func (i *instance) mint(
	ctx context.Context, caller, owner, tokenURI string, royalty domain.Royalty, origin *lineage,
) (uint64, error) {
	if err := i.authorize(ctx, caller, domain.OpMint); err != nil {
		return 0, err
	}
	owner, err := parseAddress("owner", owner)
	if err != nil {
		return 0, err
	}
	recipient, err := parseAddress("royalty recipient", royalty.Recipient)
	if err != nil {
		return 0, err
	}
	if royalty.FeeBasisPoints > domain.MaxFeeBasisPoints {
		return 0, nfterrors.INVALID_ARGUMENT.New(
			"royalty fee must be <= %d basis points, got %d",
			domain.MaxFeeBasisPoints, royalty.FeeBasisPoints,
		)
	}
	now, err := i.now()
	if err != nil {
		return 0, err
	}

	id, err := i.repoManager.Assets().CountAssets(ctx)
	if err != nil {
		return 0, internalError(err, "failed to count assets")
	}
	if origin == nil {
		origin = &lineage{originChainId: i.chainId, originAssetId: id}
	}

	asset := domain.Asset{
		Id:          id,
		Owner:       owner,
		MetadataURI: tokenURI,
		Royalty:     domain.Royalty{Recipient: recipient, FeeBasisPoints: royalty.FeeBasisPoints},
		CreatedAt:   now,
	}
	item := domain.NewItem(asset, origin.originChainId, origin.originAssetId, now)
	if err := i.saveItem(ctx, *item, &asset); err != nil {
		return 0, err
	}

	i.publish(ctx, domain.ItemTopic, domain.ItemAggregateId(id), domain.ItemCreated{
		ItemEvent:     domain.NewItemEvent(id, domain.EventTypeItemCreated, now),
		Owner:         owner,
		ChainId:       i.chainId,
		OriginChainId: origin.originChainId,
		OriginAssetId: origin.originAssetId,
		MetadataURI:   tokenURI,
	})
	log.Debugf("minted asset %d to %s", id, owner)
	return id, nil
}

func (s *registryService) Transfer(
	ctx context.Context, caller, from, to string, assetId uint64,
) error {
	caller, err := parseAddress("caller", caller)
	if err != nil {
		return err
	}
	from, err = parseAddress("from", from)
	if err != nil {
		return err
	}
	to, err = parseAddress("to", to)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	asset, item, err := s.checkTransfer(ctx, caller, from, assetId, false)
	if err != nil {
		return err
	}
	return s.transfer(ctx, asset, item, from, to)
}

// checkTransfer validates a direct transfer. A privileged caller has
// already been authorized by role and skips the approval check.
func (i *instance) checkTransfer(
	ctx context.Context, caller, from string, assetId uint64, privileged bool,
) (*domain.Asset, *domain.Item, error) {
	asset, err := i.getAsset(ctx, assetId)
	if err != nil {
		return nil, nil, err
	}
	if privileged {
		caller = asset.Owner
	}
	isOperator, err := i.repoManager.Assets().IsApprovedForAll(ctx, asset.Owner, caller)
	if err != nil {
		return nil, nil, internalError(err, "failed to check operator approval")
	}
	if !asset.CanTransfer(caller, isOperator) {
		return nil, nil, nfterrors.FORBIDDEN.New("caller is not owner nor approved").
			WithMetadata(nfterrors.PermissionMetadata{Account: caller, Operation: "transfer"})
	}
	if asset.Owner != from {
		return nil, nil, nfterrors.NOT_OWNER.New("from must be the owner of that token").
			WithMetadata(nfterrors.OwnerMetadata{ItemId: assetId, Owner: asset.Owner, Caller: from})
	}
	item, err := i.getItem(ctx, assetId)
	if err != nil {
		return nil, nil, err
	}
	if !item.IsIdle() {
		return nil, nil, nfterrors.INVALID_STATE.New("a listed or locked item cannot be transferred").
			WithMetadata(nfterrors.ItemMetadata{ItemId: item.Id, State: item.State.String()})
	}
	return asset, item, nil
}

func (i *instance) transfer(
	ctx context.Context, asset *domain.Asset, item *domain.Item, from, to string,
) error {
	now, err := i.now()
	if err != nil {
		return err
	}
	event, err := item.Transfer(from, to, now)
	if err != nil {
		return err
	}
	asset.TransferTo(to)
	if err := i.saveItem(ctx, *item, asset); err != nil {
		return err
	}
	i.publish(ctx, domain.ItemTopic, domain.ItemAggregateId(item.Id), event)
	return nil
}

func (s *registryService) TransferWithRoyaltyPayout(
	ctx context.Context, caller, from, to string, assetId, saleAmount uint64,
) error {
	caller, err := parseAddress("caller", caller)
	if err != nil {
		return err
	}
	from, err = parseAddress("from", from)
	if err != nil {
		return err
	}
	to, err = parseAddress("to", to)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.authorize(ctx, caller, domain.OpTransferWithRoyaltyPayout); err != nil {
		return err
	}
	asset, item, err := s.checkTransfer(ctx, caller, from, assetId, true)
	if err != nil {
		return err
	}
	if from == asset.Royalty.Recipient {
		return nfterrors.ROYALTY_SELF_PAYMENT.New("royalty recipient cannot pay its own royalty").
			WithMetadata(nfterrors.RoyaltyMetadata{
				AssetId: assetId, Recipient: asset.Royalty.Recipient,
			})
	}

	fee := asset.Royalty.Fee(saleAmount)
	if err := s.requireFunds(ctx, to, fee); err != nil {
		return err
	}
	if err := s.requireAllowance(ctx, to, fee); err != nil {
		return err
	}
	if err := s.pay(ctx, to, ports.Payout{To: asset.Royalty.Recipient, Amount: fee}); err != nil {
		return err
	}
	return s.transfer(ctx, asset, item, from, to)
}

func (s *registryService) Approve(
	ctx context.Context, caller, approved string, assetId uint64,
) error {
	caller, err := parseAddress("caller", caller)
	if err != nil {
		return err
	}
	if approved != "" {
		if approved, err = parseAddress("approved", approved); err != nil {
			return err
		}
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	asset, err := s.getAsset(ctx, assetId)
	if err != nil {
		return err
	}
	isOperator, err := s.repoManager.Assets().IsApprovedForAll(ctx, asset.Owner, caller)
	if err != nil {
		return internalError(err, "failed to check operator approval")
	}
	if caller != asset.Owner && !isOperator {
		return nfterrors.FORBIDDEN.New("caller is not owner nor approved for all").
			WithMetadata(nfterrors.PermissionMetadata{Account: caller, Operation: "approve"})
	}
	asset.Approved = approved
	if err := s.repoManager.Assets().AddOrUpdateAsset(ctx, *asset); err != nil {
		return internalError(err, "failed to store asset")
	}
	return nil
}

func (s *registryService) SetApprovalForAll(
	ctx context.Context, caller, operator string, approved bool,
) error {
	caller, err := parseAddress("caller", caller)
	if err != nil {
		return err
	}
	operator, err = parseAddress("operator", operator)
	if err != nil {
		return err
	}
	if caller == operator {
		return nfterrors.INVALID_ARGUMENT.New("cannot approve self as operator")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.repoManager.Assets().SetApprovalForAll(ctx, caller, operator, approved); err != nil {
		return internalError(err, "failed to store operator approval")
	}
	return nil
}

func (s *registryService) RoyaltyOf(ctx context.Context, assetId uint64) (*domain.Royalty, error) {
	asset, err := s.getAsset(ctx, assetId)
	if err != nil {
		return nil, err
	}
	return &asset.Royalty, nil
}

func (s *registryService) OwnerOf(ctx context.Context, assetId uint64) (string, error) {
	asset, err := s.getAsset(ctx, assetId)
	if err != nil {
		return "", err
	}
	return asset.Owner, nil
}

func (s *registryService) TokenURI(ctx context.Context, assetId uint64) (string, error) {
	asset, err := s.getAsset(ctx, assetId)
	if err != nil {
		return "", err
	}
	return asset.MetadataURI, nil
}

func (s *registryService) GetApproved(ctx context.Context, assetId uint64) (string, error) {
	asset, err := s.getAsset(ctx, assetId)
	if err != nil {
		return "", err
	}
	return asset.Approved, nil
}

func (s *registryService) IsApprovedForAll(
	ctx context.Context, owner, operator string,
) (bool, error) {
	owner, err := parseAddress("owner", owner)
	if err != nil {
		return false, err
	}
	operator, err = parseAddress("operator", operator)
	if err != nil {
		return false, err
	}
	ok, err := s.repoManager.Assets().IsApprovedForAll(ctx, owner, operator)
	if err != nil {
		return false, internalError(err, "failed to check operator approval")
	}
	return ok, nil
}

func (s *registryService) BalanceOf(ctx context.Context, owner string) (uint64, error) {
	owner, err := parseAddress("owner", owner)
	if err != nil {
		return 0, err
	}
	assets, err := s.repoManager.Assets().GetAssetsByOwner(ctx, owner)
	if err != nil {
		return 0, internalError(err, "failed to get assets")
	}
	return uint64(len(assets)), nil
}

func (s *registryService) TokenOfOwnerByIndex(
	ctx context.Context, owner string, index uint64,
) (uint64, error) {
	owner, err := parseAddress("owner", owner)
	if err != nil {
		return 0, err
	}
	assets, err := s.repoManager.Assets().GetAssetsByOwner(ctx, owner)
	if err != nil {
		return 0, internalError(err, "failed to get assets")
	}
	if index >= uint64(len(assets)) {
		return 0, nfterrors.INVALID_ARGUMENT.New(
			"owner index out of bounds: %s owns %d assets", owner, len(assets),
		)
	}
	return assets[index].Id, nil
}

func (s *registryService) TotalSupply(ctx context.Context) (uint64, error) {
	count, err := s.repoManager.Assets().CountAssets(ctx)
	if err != nil {
		return 0, internalError(err, "failed to count assets")
	}
	return count, nil
}
