package application_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/arkade-os/nftd/internal/core/application"
	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/core/ports"
	"github.com/arkade-os/nftd/internal/infrastructure/attestation"
	inmemoryledger "github.com/arkade-os/nftd/internal/infrastructure/currency/inmemory"
	"github.com/arkade-os/nftd/internal/infrastructure/db"
	nfterrors "github.com/arkade-os/nftd/pkg/errors"
	"github.com/stretchr/testify/require"
)

const (
	admin    = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"
	artist   = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
	user1    = "0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc"
	user2    = "0x90f79bf6eb2c4f870365e785982e1f101e93b906"
	minter   = "0x15d34aaf54267db7d7c367839aaf71a00a2c6a65"
	stranger = "0x9965507d1a55bcc2695c58ba16fb37d819b0a4dc"

	baseURI   = "ipfs://"
	startTime = int64(1_700_000_000)
)

var ctx = context.Background()

// manualClock is a scheduler whose time only moves when the test says so.
type manualClock struct {
	lock  sync.Mutex
	now   int64
	tasks map[int64][]func()
}

func newManualClock() *manualClock {
	return &manualClock{now: startTime, tasks: make(map[int64][]func())}
}

func (c *manualClock) Start() {}
func (c *manualClock) Stop()  {}

func (c *manualClock) Now() (int64, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now, nil
}

func (c *manualClock) ScheduleTaskOnce(at int64, task func()) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.tasks[at] = append(c.tasks[at], task)
	return nil
}

func (c *manualClock) pendingTasks() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	count := 0
	for _, tasks := range c.tasks {
		count += len(tasks)
	}
	return count
}

// advance moves the clock forward and runs the tasks that became due, in
// time order.
func (c *manualClock) advance(seconds int64) {
	c.lock.Lock()
	c.now += seconds
	due := make([]int64, 0)
	for at := range c.tasks {
		if at <= c.now {
			due = append(due, at)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i] < due[j] })
	tasks := make([]func(), 0)
	for _, at := range due {
		tasks = append(tasks, c.tasks[at]...)
		delete(c.tasks, at)
	}
	c.lock.Unlock()

	for _, task := range tasks {
		task()
	}
}

type testInstance struct {
	application.Service
	clock  *manualClock
	ledger ports.CurrencyLedger
	repo   ports.RepoManager
}

type instanceSetup struct {
	cfg  application.Config
	repo ports.RepoManager
}

type instanceOption func(*instanceSetup)

func withAutoSettle() instanceOption {
	return func(setup *instanceSetup) {
		setup.cfg.AutoSettle = true
	}
}

// withFailingSwapStore makes every swap write fail while fail is set.
func withFailingSwapStore(fail *atomic.Bool) instanceOption {
	return func(setup *instanceSetup) {
		setup.repo = swapOverride{
			RepoManager: setup.repo,
			swaps:       failingSwaps{SwapRepository: setup.repo.Swaps(), fail: fail},
		}
	}
}

type swapOverride struct {
	ports.RepoManager
	swaps domain.SwapRepository
}

func (r swapOverride) Swaps() domain.SwapRepository {
	return r.swaps
}

type failingSwaps struct {
	domain.SwapRepository
	fail *atomic.Bool
}

func (r failingSwaps) AddSwap(ctx context.Context, swap domain.SwapRecord) error {
	if r.fail.Load() {
		return fmt.Errorf("swap store unavailable")
	}
	return r.SwapRepository.AddSwap(ctx, swap)
}

func newTestInstance(
	t *testing.T, chainId uint64, verifier ports.AttestationVerifier, opts ...instanceOption,
) *testInstance {
	t.Helper()

	repo, err := db.NewService(db.ServiceConfig{
		EventStoreType:   "badger",
		DataStoreType:    "badger",
		EventStoreConfig: []interface{}{"", nil},
		DataStoreConfig:  []interface{}{"", nil},
	})
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	if verifier == nil {
		verifier = attestation.NewVerifier()
	}

	setup := &instanceSetup{
		cfg: application.Config{
			ChainId:      chainId,
			AdminAddress: admin,
			BaseURI:      baseURI,
		},
		repo: repo,
	}
	for _, opt := range opts {
		opt(setup)
	}

	clock := newManualClock()
	ledger := inmemoryledger.NewLedger()
	svc, err := application.NewService(setup.cfg, setup.repo, ledger, clock, verifier)
	require.NoError(t, err)
	require.NoError(t, svc.Start())
	t.Cleanup(svc.Stop)

	return &testInstance{Service: svc, clock: clock, ledger: ledger, repo: setup.repo}
}

func (i *testInstance) grant(t *testing.T, account string, role domain.Role) {
	t.Helper()
	require.NoError(t, i.Admin().GrantRole(ctx, admin, account, role))
}

func (i *testInstance) fund(t *testing.T, account string, amount uint64) {
	t.Helper()
	require.NoError(t, i.Admin().MintCurrency(ctx, admin, account, amount))
}

func (i *testInstance) approveMarket(t *testing.T, account string, amount uint64) {
	t.Helper()
	market := i.GetInfo(ctx).MarketAccount
	require.NoError(t, i.Currency().Approve(ctx, account, market, amount))
}

func (i *testInstance) balance(t *testing.T, account string) uint64 {
	t.Helper()
	balance, err := i.Currency().BalanceOf(ctx, account)
	require.NoError(t, err)
	return balance
}

func requireCode[MT any](t *testing.T, code nfterrors.Code[MT], err error) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, code.Is(err), "expected %s, got %v", code, err)
}

func TestNewService(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		instance := newTestInstance(t, 4, nil)

		info := instance.GetInfo(ctx)
		require.Equal(t, uint64(4), info.ChainId)
		require.Equal(t, domain.MinAuctionDuration, info.MinAuctionDuration)
		require.NotEqual(t, info.MarketAccount, info.BridgeAccount)

		ok, err := instance.Admin().HasRole(ctx, admin, domain.RoleAdmin)
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = instance.Admin().HasRole(ctx, info.MarketAccount, domain.RoleMinter)
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = instance.Admin().HasRole(ctx, info.BridgeAccount, domain.RoleBridge)
		require.NoError(t, err)
		require.True(t, ok)

		// restarting on the same stores does not duplicate the bootstrap grants
		_, err = application.NewService(application.Config{
			ChainId: 4, AdminAddress: admin,
		}, instance.repo, instance.ledger, instance.clock, attestation.NewVerifier())
		require.NoError(t, err)
		roles, err := instance.Admin().GetRoles(ctx, admin)
		require.NoError(t, err)
		require.Equal(t, []domain.Role{domain.RoleAdmin}, roles)
	})

	t.Run("invalid", func(t *testing.T) {
		instance := newTestInstance(t, 4, nil)

		fixtures := []struct {
			name string
			cfg  application.Config
		}{
			{name: "missing chain id", cfg: application.Config{AdminAddress: admin}},
			{name: "missing admin", cfg: application.Config{ChainId: 4}},
			{name: "zero admin", cfg: application.Config{ChainId: 4, AdminAddress: domain.ZeroAddress}},
		}
		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				svc, err := application.NewService(
					f.cfg, instance.repo, instance.ledger, instance.clock, attestation.NewVerifier(),
				)
				require.Error(t, err)
				require.Nil(t, svc)
			})
		}
	})
}

func TestRoles(t *testing.T) {
	instance := newTestInstance(t, 4, nil)

	err := instance.Admin().GrantRole(ctx, stranger, artist, domain.RoleArtist)
	requireCode(t, nfterrors.FORBIDDEN, err)

	err = instance.Admin().GrantRole(ctx, admin, artist, domain.Role("CURATOR"))
	requireCode(t, nfterrors.INVALID_ARGUMENT, err)

	err = instance.Admin().GrantRole(ctx, admin, "not-an-address", domain.RoleArtist)
	requireCode(t, nfterrors.INVALID_ARGUMENT, err)

	instance.grant(t, artist, domain.RoleArtist)
	instance.grant(t, artist, domain.RoleMinter)
	// granting twice is a no-op
	instance.grant(t, artist, domain.RoleArtist)

	roles, err := instance.Admin().GetRoles(ctx, artist)
	require.NoError(t, err)
	require.ElementsMatch(t, []domain.Role{domain.RoleArtist, domain.RoleMinter}, roles)

	err = instance.Admin().RevokeRole(ctx, artist, artist, domain.RoleMinter)
	requireCode(t, nfterrors.FORBIDDEN, err)

	require.NoError(t, instance.Admin().RevokeRole(ctx, admin, artist, domain.RoleMinter))
	ok, err := instance.Admin().HasRole(ctx, artist, domain.RoleMinter)
	require.NoError(t, err)
	require.False(t, ok)

	// revoking a missing grant is a no-op
	require.NoError(t, instance.Admin().RevokeRole(ctx, admin, artist, domain.RoleMinter))

	err = instance.Admin().MintCurrency(ctx, artist, artist, 100)
	requireCode(t, nfterrors.FORBIDDEN, err)
}

func TestCurrency(t *testing.T) {
	instance := newTestInstance(t, 4, nil)

	instance.fund(t, user1, 1000)
	require.Equal(t, uint64(1000), instance.balance(t, user1))

	require.NoError(t, instance.Currency().Transfer(ctx, user1, user2, 400))
	require.Equal(t, uint64(600), instance.balance(t, user1))
	require.Equal(t, uint64(400), instance.balance(t, user2))

	err := instance.Currency().Transfer(ctx, user2, user1, 401)
	requireCode(t, nfterrors.INSUFFICIENT_FUNDS, err)

	require.NoError(t, instance.Currency().Approve(ctx, user1, user2, 50))
	allowance, err := instance.Currency().Allowance(ctx, user1, user2)
	require.NoError(t, err)
	require.Equal(t, uint64(50), allowance)
}
