package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/core/ports"
	nfterrors "github.com/arkade-os/nftd/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// instance is the state of one chain instance. Every state-mutating
// operation of every component holds lock for its whole duration:
// validation first, then writes.
type instance struct {
	repoManager ports.RepoManager
	ledger      ports.CurrencyLedger
	scheduler   ports.SchedulerService
	verifier    ports.AttestationVerifier

	chainId            uint64
	adminAddress       string
	baseURI            string
	minAuctionDuration int64
	autoSettle         bool
	marketAccount      string
	bridgeAccount      string

	lock *sync.Mutex

	// auctions with a pending settlement task, keyed by item id and end time
	scheduledLock        *sync.Mutex
	scheduledSettlements map[string]struct{}
}

type service struct {
	*instance
	registry *registryService
	market   *marketService
	bridge   *bridgeService
	admin    *adminService
	currency *currencyService
	indexer  *indexerService
}

func NewService(
	cfg Config,
	repoManager ports.RepoManager,
	ledger ports.CurrencyLedger,
	scheduler ports.SchedulerService,
	verifier ports.AttestationVerifier,
) (Service, error) {
	if cfg.ChainId == 0 {
		return nil, fmt.Errorf("missing chain id")
	}
	adminAddress, err := domain.ParseAddress(cfg.AdminAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid admin address: %w", err)
	}
	minAuctionDuration := cfg.MinAuctionDuration
	if minAuctionDuration <= 0 {
		minAuctionDuration = domain.MinAuctionDuration
	}

	inst := &instance{
		repoManager:          repoManager,
		ledger:               ledger,
		scheduler:            scheduler,
		verifier:             verifier,
		chainId:              cfg.ChainId,
		adminAddress:         adminAddress,
		baseURI:              cfg.BaseURI,
		minAuctionDuration:   minAuctionDuration,
		autoSettle:           cfg.AutoSettle,
		marketAccount:        domain.ServiceAccount(domain.MarketAccountName, cfg.ChainId),
		bridgeAccount:        domain.ServiceAccount(domain.BridgeAccountName, cfg.ChainId),
		lock:                 &sync.Mutex{},
		scheduledLock:        &sync.Mutex{},
		scheduledSettlements: make(map[string]struct{}),
	}

	if err := inst.bootstrap(context.Background()); err != nil {
		return nil, err
	}

	return &service{
		instance: inst,
		registry: &registryService{inst},
		market:   &marketService{inst},
		bridge:   &bridgeService{inst},
		admin:    &adminService{inst},
		currency: &currencyService{inst},
		indexer:  &indexerService{inst},
	}, nil
}

func (s *service) Start() error {
	if !s.autoSettle {
		return nil
	}

	s.repoManager.Events().RegisterEventsHandler(domain.ItemTopic, s.onItemEvents)

	ctx := context.Background()
	auctions, err := s.repoManager.Auctions().GetOpenAuctions(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch open auctions: %w", err)
	}
	for _, auction := range auctions {
		s.scheduleSettlement(auction.ItemId, auction.EndTime)
	}
	log.Debugf("restored settlement of %d open auctions", len(auctions))
	return nil
}

func (s *service) Stop() {
	s.repoManager.Events().ClearRegisteredHandlers(domain.ItemTopic)
}

func (s *service) GetInfo(_ context.Context) Info {
	return Info{
		ChainId:            s.chainId,
		MarketAccount:      s.marketAccount,
		BridgeAccount:      s.bridgeAccount,
		BaseURI:            s.baseURI,
		MinAuctionDuration: s.minAuctionDuration,
		AutoSettle:         s.autoSettle,
	}
}

func (s *service) Registry() RegistryService { return s.registry }
func (s *service) Market() MarketService     { return s.market }
func (s *service) Bridge() BridgeService     { return s.bridge }
func (s *service) Admin() AdminService       { return s.admin }
func (s *service) Currency() CurrencyService { return s.currency }
func (s *service) Indexer() IndexerService   { return s.indexer }

// bootstrap grants the roles the instance needs to operate. It is a no-op
// when the grants already exist.
func (i *instance) bootstrap(ctx context.Context) error {
	now, err := i.now()
	if err != nil {
		return err
	}
	grants := []domain.RoleGrant{
		{Account: i.adminAddress, Role: domain.RoleAdmin, GrantedAt: now},
		{Account: i.marketAccount, Role: domain.RoleMinter, GrantedAt: now},
		{Account: i.bridgeAccount, Role: domain.RoleBridge, GrantedAt: now},
	}
	for _, grant := range grants {
		ok, err := i.repoManager.Roles().HasRole(ctx, grant.Account, grant.Role)
		if err != nil {
			return fmt.Errorf("failed to check role %s: %w", grant.Role, err)
		}
		if ok {
			continue
		}
		if err := i.repoManager.Roles().GrantRole(ctx, grant); err != nil {
			return fmt.Errorf("failed to grant role %s: %w", grant.Role, err)
		}
		log.Infof("granted role %s to %s", grant.Role, grant.Account)
	}
	return nil
}

func (i *instance) now() (int64, error) {
	now, err := i.scheduler.Now()
	if err != nil {
		return 0, nfterrors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to read ledger clock: %w", err))
	}
	return now, nil
}

func (i *instance) authorize(ctx context.Context, caller string, op domain.Operation) error {
	role, ok := domain.Policy[op]
	if !ok {
		return nfterrors.INTERNAL_ERROR.New("no policy for operation %s", op)
	}
	ok, err := i.repoManager.Roles().HasRole(ctx, caller, role)
	if err != nil {
		return internalError(err, "failed to check role")
	}
	if !ok {
		return nfterrors.FORBIDDEN.New("caller must have role %s to %s", role, op).
			WithMetadata(nfterrors.PermissionMetadata{
				Account: caller, Operation: string(op), Role: string(role),
			})
	}
	return nil
}

func (i *instance) getAsset(ctx context.Context, id uint64) (*domain.Asset, error) {
	asset, err := i.repoManager.Assets().GetAsset(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nfterrors.ASSET_NOT_FOUND.New("asset %d does not exist", id).
				WithMetadata(nfterrors.AssetMetadata{AssetId: id})
		}
		return nil, internalError(err, "failed to get asset")
	}
	return asset, nil
}

func (i *instance) getItem(ctx context.Context, id uint64) (*domain.Item, error) {
	item, err := i.repoManager.Items().GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nfterrors.ITEM_NOT_FOUND.New("that item does not exist").
				WithMetadata(nfterrors.ItemMetadata{ItemId: id})
		}
		return nil, internalError(err, "failed to get item")
	}
	return item, nil
}

func (i *instance) saveItem(ctx context.Context, item domain.Item, asset *domain.Asset) error {
	if asset != nil {
		if err := i.repoManager.Assets().AddOrUpdateAsset(ctx, *asset); err != nil {
			return internalError(err, "failed to store asset")
		}
	}
	if err := i.repoManager.Items().AddOrUpdateItem(ctx, item); err != nil {
		return internalError(err, "failed to store item")
	}
	return nil
}

// publish stores the events in the event log. Failures are logged since the
// state change they describe is already persisted.
func (i *instance) publish(ctx context.Context, topic, id string, events ...domain.Event) {
	if err := i.repoManager.Events().Save(ctx, topic, id, events); err != nil {
		log.WithError(err).Warnf("failed to save %d %s events for %s", len(events), topic, id)
	}
}

func (i *instance) requireFunds(ctx context.Context, account string, amount uint64) error {
	balance, err := i.ledger.BalanceOf(ctx, account)
	if err != nil {
		return internalError(err, "failed to get balance")
	}
	if balance < amount {
		return insufficientFunds(account, amount, balance, "insufficient balance")
	}
	return nil
}

func (i *instance) requireAllowance(ctx context.Context, account string, amount uint64) error {
	allowance, err := i.ledger.Allowance(ctx, account, i.marketAccount)
	if err != nil {
		return internalError(err, "failed to get allowance")
	}
	if allowance < amount {
		return insufficientFunds(account, amount, allowance, "insufficient allowance")
	}
	return nil
}

// pay debits payer once and credits every payout through the marketplace
// account.
func (i *instance) pay(ctx context.Context, payer string, payouts ...ports.Payout) error {
	nonZero := make([]ports.Payout, 0, len(payouts))
	for _, p := range payouts {
		if p.Amount > 0 {
			nonZero = append(nonZero, p)
		}
	}
	if len(nonZero) == 0 {
		return nil
	}
	if err := i.ledger.BatchTransferFrom(ctx, i.marketAccount, payer, nonZero); err != nil {
		if errors.Is(err, ports.ErrInsufficientBalance) ||
			errors.Is(err, ports.ErrInsufficientAllowance) {
			return nfterrors.INSUFFICIENT_FUNDS.Wrap(err).
				WithMetadata(nfterrors.FundsMetadata{Account: payer})
		}
		return internalError(err, "failed to transfer currency")
	}
	return nil
}

func parseAddress(name, s string) (string, error) {
	addr, err := domain.ParseAddress(s)
	if err != nil {
		return "", nfterrors.INVALID_ARGUMENT.New("invalid %s: %s", name, err)
	}
	return addr, nil
}

func internalError(err error, msg string) error {
	var typed nfterrors.Error
	if errors.As(err, &typed) {
		return err
	}
	return nfterrors.INTERNAL_ERROR.Wrap(fmt.Errorf("%s: %w", msg, err))
}

func insufficientFunds(account string, required, available uint64, msg string) error {
	return nfterrors.INSUFFICIENT_FUNDS.New("%s: required %d, available %d", msg, required, available).
		WithMetadata(nfterrors.FundsMetadata{
			Account:  account,
			Required: fmt.Sprintf("%d", required),
			Balance:  fmt.Sprintf("%d", available),
		})
}
