package application

import (
	"context"
	"errors"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/core/ports"
	nfterrors "github.com/arkade-os/nftd/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type marketService struct {
	*instance
}

func (s *marketService) CreateNFT(
	ctx context.Context, caller, metadataURI string, feeBasisPoints uint32,
) (uint64, error) {
	caller, err := parseAddress("caller", caller)
	if err != nil {
		return 0, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.authorize(ctx, caller, domain.OpCreateNFT); err != nil {
		return 0, err
	}
	royalty := domain.Royalty{Recipient: caller, FeeBasisPoints: feeBasisPoints}
	return s.mint(ctx, s.marketAccount, caller, s.baseURI+metadataURI, royalty, nil)
}

func (s *marketService) StartSale(
	ctx context.Context, caller string, itemId, price uint64,
) error {
	caller, err := parseAddress("caller", caller)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	item, err := s.getItem(ctx, itemId)
	if err != nil {
		return err
	}
	now, err := s.now()
	if err != nil {
		return err
	}
	event, err := item.StartSale(caller, price, now)
	if err != nil {
		return err
	}
	if err := s.saveItem(ctx, *item, nil); err != nil {
		return err
	}
	s.publish(ctx, domain.ItemTopic, domain.ItemAggregateId(itemId), event)
	return nil
}

func (s *marketService) StopSale(ctx context.Context, caller string, itemId uint64) error {
	caller, err := parseAddress("caller", caller)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	item, err := s.getItem(ctx, itemId)
	if err != nil {
		return err
	}
	now, err := s.now()
	if err != nil {
		return err
	}
	event, err := item.StopSale(caller, now)
	if err != nil {
		return err
	}
	if err := s.saveItem(ctx, *item, nil); err != nil {
		return err
	}
	s.publish(ctx, domain.ItemTopic, domain.ItemAggregateId(itemId), event)
	return nil
}

func (s *marketService) BuyNFT(ctx context.Context, caller string, itemId uint64) error {
	buyer, err := parseAddress("caller", caller)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	item, err := s.getItem(ctx, itemId)
	if err != nil {
		return err
	}
	if err := item.CheckBuy(buyer); err != nil {
		return err
	}
	asset, err := s.getAsset(ctx, itemId)
	if err != nil {
		return err
	}
	if err := s.requireFunds(ctx, buyer, item.Price); err != nil {
		return err
	}
	if err := s.requireAllowance(ctx, buyer, item.Price); err != nil {
		return err
	}
	now, err := s.now()
	if err != nil {
		return err
	}

	seller := item.Owner
	fee := royaltyFee(asset.Royalty, seller, buyer, item.Price)
	if err := s.pay(
		ctx, buyer,
		ports.Payout{To: seller, Amount: item.Price - fee},
		ports.Payout{To: asset.Royalty.Recipient, Amount: fee},
	); err != nil {
		return err
	}

	event, err := item.Sell(buyer, fee, now)
	if err != nil {
		return err
	}
	asset.TransferTo(buyer)
	if err := s.saveItem(ctx, *item, asset); err != nil {
		return err
	}
	s.publish(ctx, domain.ItemTopic, domain.ItemAggregateId(itemId), event)
	log.Debugf("item %d sold by %s to %s for %d (royalty %d)", itemId, seller, buyer, item.Price, fee)
	return nil
}

func (s *marketService) StartAuction(
	ctx context.Context, caller string, itemId, minPrice uint64, duration int64,
) error {
	caller, err := parseAddress("caller", caller)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	item, err := s.getItem(ctx, itemId)
	if err != nil {
		return err
	}
	now, err := s.now()
	if err != nil {
		return err
	}
	auction, event, err := item.StartAuction(caller, minPrice, duration, s.minAuctionDuration, now)
	if err != nil {
		return err
	}
	if err := s.repoManager.Auctions().AddOrUpdateAuction(ctx, *auction); err != nil {
		return internalError(err, "failed to store auction")
	}
	if err := s.saveItem(ctx, *item, nil); err != nil {
		return err
	}
	s.publish(ctx, domain.ItemTopic, domain.ItemAggregateId(itemId), event)
	return nil
}

func (s *marketService) MakeBid(
	ctx context.Context, caller string, itemId, amount uint64,
) error {
	bidder, err := parseAddress("caller", caller)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	item, err := s.getItem(ctx, itemId)
	if err != nil {
		return err
	}
	auction, err := s.getOpenAuction(ctx, item)
	if err != nil {
		return err
	}
	now, err := s.now()
	if err != nil {
		return err
	}
	if err := auction.CheckBid(amount, now); err != nil {
		return err
	}
	balance, err := s.ledger.BalanceOf(ctx, bidder)
	if err != nil {
		return internalError(err, "failed to get balance")
	}
	if balance < amount {
		return insufficientFunds(
			bidder, amount, balance, "the balance of a caller must be enough for that bid",
		)
	}

	event, err := auction.Bid(bidder, amount, now)
	if err != nil {
		return err
	}
	if err := s.repoManager.Auctions().AddOrUpdateAuction(ctx, *auction); err != nil {
		return internalError(err, "failed to store auction")
	}
	s.publish(ctx, domain.ItemTopic, domain.ItemAggregateId(itemId), event)
	return nil
}

func (s *marketService) SettleNFT(ctx context.Context, itemId uint64) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.settle(ctx, itemId)
}

func (i *instance) settle(ctx context.Context, itemId uint64) error {
	item, err := i.getItem(ctx, itemId)
	if err != nil {
		return err
	}
	auction, err := i.getOpenAuction(ctx, item)
	if err != nil {
		return err
	}
	now, err := i.now()
	if err != nil {
		return err
	}
	if err := auction.CheckSettle(now); err != nil {
		return err
	}

	winner, price := auction.Winner()
	var (
		asset *domain.Asset
		fee   uint64
	)
	if winner != "" {
		asset, err = i.getAsset(ctx, itemId)
		if err != nil {
			return err
		}
		// bids are not escrowed, the winner may no longer afford the price
		if err := i.requireFunds(ctx, winner, price); err != nil {
			return err
		}
		if err := i.requireAllowance(ctx, winner, price); err != nil {
			return err
		}

		fee = royaltyFee(asset.Royalty, auction.Seller, winner, price)
		if err := i.pay(
			ctx, winner,
			ports.Payout{To: auction.Seller, Amount: price - fee},
			ports.Payout{To: asset.Royalty.Recipient, Amount: fee},
		); err != nil {
			return err
		}
		asset.TransferTo(winner)
	}

	event, err := item.EndAuction(winner, price, fee, now)
	if err != nil {
		return err
	}
	auction.Settled = true
	if err := i.repoManager.Auctions().AddOrUpdateAuction(ctx, *auction); err != nil {
		return internalError(err, "failed to store auction")
	}
	if err := i.saveItem(ctx, *item, asset); err != nil {
		return err
	}
	i.publish(ctx, domain.ItemTopic, domain.ItemAggregateId(itemId), event)
	log.Debugf("auction of item %d settled, winner %q price %d", itemId, winner, price)
	return nil
}

func (i *instance) getOpenAuction(ctx context.Context, item *domain.Item) (*domain.Auction, error) {
	notFound := nfterrors.AUCTION_NOT_FOUND.New("that auction does not exist").
		WithMetadata(nfterrors.ItemMetadata{ItemId: item.Id, State: item.State.String()})
	if item.State != domain.ItemStateInAuction {
		return nil, notFound
	}
	auction, err := i.repoManager.Auctions().GetAuction(ctx, item.Id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFound
		}
		return nil, internalError(err, "failed to get auction")
	}
	return auction, nil
}

func (s *marketService) LockForBridge(
	ctx context.Context, caller string, itemId uint64, owner string,
) (*BridgeSnapshot, error) {
	caller, err := parseAddress("caller", caller)
	if err != nil {
		return nil, err
	}
	owner, err = parseAddress("owner", owner)
	if err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	return s.lockForBridge(ctx, caller, itemId, owner)
}

func (i *instance) lockForBridge(
	ctx context.Context, caller string, itemId uint64, owner string,
) (*BridgeSnapshot, error) {
	if err := i.authorize(ctx, caller, domain.OpLockForBridge); err != nil {
		return nil, err
	}
	item, err := i.getItem(ctx, itemId)
	if err != nil {
		return nil, err
	}
	asset, err := i.getAsset(ctx, itemId)
	if err != nil {
		return nil, err
	}
	now, err := i.now()
	if err != nil {
		return nil, err
	}
	event, err := item.Lock(owner, i.marketAccount, now)
	if err != nil {
		return nil, err
	}
	asset.TransferTo(i.marketAccount)
	if err := i.saveItem(ctx, *item, asset); err != nil {
		return nil, err
	}
	i.publish(ctx, domain.ItemTopic, domain.ItemAggregateId(itemId), event)

	return &BridgeSnapshot{
		TokenURI:      asset.MetadataURI,
		Royalty:       asset.Royalty,
		OriginChainId: item.OriginChainId,
		OriginAssetId: item.OriginAssetId,
	}, nil
}

func (s *marketService) UnlockFromBridge(
	ctx context.Context, caller string, itemId uint64, recipient string,
) error {
	caller, err := parseAddress("caller", caller)
	if err != nil {
		return err
	}
	recipient, err = parseAddress("recipient", recipient)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.authorize(ctx, caller, domain.OpUnlockFromBridge); err != nil {
		return err
	}
	item, err := s.getItem(ctx, itemId)
	if err != nil {
		return err
	}
	return s.unlock(ctx, item, recipient)
}

func (i *instance) unlock(ctx context.Context, item *domain.Item, recipient string) error {
	asset, err := i.getAsset(ctx, item.Id)
	if err != nil {
		return err
	}
	now, err := i.now()
	if err != nil {
		return err
	}
	event, err := item.Unlock(recipient, now)
	if err != nil {
		return err
	}
	asset.TransferTo(recipient)
	if err := i.saveItem(ctx, *item, asset); err != nil {
		return err
	}
	i.publish(ctx, domain.ItemTopic, domain.ItemAggregateId(item.Id), event)
	return nil
}

func (s *marketService) MintBridgedCopy(
	ctx context.Context, caller string, originChainId, originAssetId uint64,
	recipient, metadataURI string, royalty domain.Royalty,
) (uint64, error) {
	caller, err := parseAddress("caller", caller)
	if err != nil {
		return 0, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	return s.mintBridgedCopy(
		ctx, caller, originChainId, originAssetId, recipient, metadataURI, royalty,
	)
}

// mintBridgedCopy hands the local copy of a foreign asset to recipient,
// reusing the copy recorded in the correspondence table when there is one.
func (i *instance) mintBridgedCopy(
	ctx context.Context, caller string, originChainId, originAssetId uint64,
	recipient, metadataURI string, royalty domain.Royalty,
) (uint64, error) {
	if err := i.authorize(ctx, caller, domain.OpMintBridgedCopy); err != nil {
		return 0, err
	}
	recipient, err := parseAddress("recipient", recipient)
	if err != nil {
		return 0, err
	}

	item, err := i.repoManager.Items().GetItemByOrigin(ctx, originChainId, originAssetId)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return 0, internalError(err, "failed to get corresponding item")
	}
	if item != nil {
		if err := i.unlock(ctx, item, recipient); err != nil {
			return 0, err
		}
		return item.Id, nil
	}

	return i.mint(ctx, i.marketAccount, recipient, metadataURI, royalty, &lineage{
		originChainId: originChainId,
		originAssetId: originAssetId,
	})
}

func (s *marketService) GetItem(ctx context.Context, itemId uint64) (*domain.Item, error) {
	return s.getItem(ctx, itemId)
}

func (s *marketService) GetAuction(ctx context.Context, itemId uint64) (*domain.Auction, error) {
	auction, err := s.repoManager.Auctions().GetAuction(ctx, itemId)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nfterrors.AUCTION_NOT_FOUND.New("that auction does not exist").
				WithMetadata(nfterrors.ItemMetadata{ItemId: itemId})
		}
		return nil, internalError(err, "failed to get auction")
	}
	return auction, nil
}

func (s *marketService) CorrespondingId(
	ctx context.Context, originChainId, originAssetId uint64,
) (uint64, error) {
	item, err := s.repoManager.Items().GetItemByOrigin(ctx, originChainId, originAssetId)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nfterrors.ITEM_NOT_FOUND.New(
				"no local item for asset %d of chain %d", originAssetId, originChainId,
			).WithMetadata(nfterrors.ItemMetadata{ItemId: originAssetId})
		}
		return 0, internalError(err, "failed to get corresponding item")
	}
	return item.Id, nil
}

// royaltyFee is zero when the royalty recipient is on either side of the
// sale: a primary sale, or the creator buying the work back.
func royaltyFee(royalty domain.Royalty, seller, buyer string, price uint64) uint64 {
	if seller == royalty.Recipient || buyer == royalty.Recipient {
		return 0
	}
	return royalty.Fee(price)
}
