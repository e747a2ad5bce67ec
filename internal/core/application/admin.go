package application

import (
	"context"
	"errors"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/core/ports"
	nfterrors "github.com/arkade-os/nftd/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type adminService struct {
	*instance
}

func (s *adminService) GrantRole(
	ctx context.Context, caller, account string, role domain.Role,
) error {
	caller, account, err := s.parseRoleArgs(caller, account, role)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.authorize(ctx, caller, domain.OpGrantRole); err != nil {
		return err
	}
	now, err := s.now()
	if err != nil {
		return err
	}
	if err := s.repoManager.Roles().GrantRole(ctx, domain.RoleGrant{
		Account: account, Role: role, GrantedAt: now,
	}); err != nil {
		return internalError(err, "failed to grant role")
	}
	log.Infof("role %s granted to %s by %s", role, account, caller)
	return nil
}

func (s *adminService) RevokeRole(
	ctx context.Context, caller, account string, role domain.Role,
) error {
	caller, account, err := s.parseRoleArgs(caller, account, role)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.authorize(ctx, caller, domain.OpRevokeRole); err != nil {
		return err
	}
	if err := s.repoManager.Roles().RevokeRole(ctx, account, role); err != nil {
		return internalError(err, "failed to revoke role")
	}
	log.Infof("role %s revoked from %s by %s", role, account, caller)
	return nil
}

func (s *adminService) parseRoleArgs(
	caller, account string, role domain.Role,
) (string, string, error) {
	caller, err := parseAddress("caller", caller)
	if err != nil {
		return "", "", err
	}
	account, err = parseAddress("account", account)
	if err != nil {
		return "", "", err
	}
	if _, err := domain.ParseRole(string(role)); err != nil {
		return "", "", nfterrors.INVALID_ARGUMENT.Wrap(err)
	}
	return caller, account, nil
}

func (s *adminService) HasRole(ctx context.Context, account string, role domain.Role) (bool, error) {
	account, err := parseAddress("account", account)
	if err != nil {
		return false, err
	}
	ok, err := s.repoManager.Roles().HasRole(ctx, account, role)
	if err != nil {
		return false, internalError(err, "failed to check role")
	}
	return ok, nil
}

func (s *adminService) GetRoles(ctx context.Context, account string) ([]domain.Role, error) {
	account, err := parseAddress("account", account)
	if err != nil {
		return nil, err
	}
	roles, err := s.repoManager.Roles().GetRoles(ctx, account)
	if err != nil {
		return nil, internalError(err, "failed to get roles")
	}
	return roles, nil
}

func (s *adminService) MintCurrency(ctx context.Context, caller, to string, amount uint64) error {
	caller, err := parseAddress("caller", caller)
	if err != nil {
		return err
	}
	to, err = parseAddress("to", to)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.authorize(ctx, caller, domain.OpMintCurrency); err != nil {
		return err
	}
	if err := s.ledger.Mint(ctx, to, amount); err != nil {
		return internalError(err, "failed to mint currency")
	}
	return nil
}

type currencyService struct {
	*instance
}

func (s *currencyService) BalanceOf(ctx context.Context, account string) (uint64, error) {
	account, err := parseAddress("account", account)
	if err != nil {
		return 0, err
	}
	balance, err := s.ledger.BalanceOf(ctx, account)
	if err != nil {
		return 0, internalError(err, "failed to get balance")
	}
	return balance, nil
}

func (s *currencyService) Allowance(ctx context.Context, owner, spender string) (uint64, error) {
	owner, err := parseAddress("owner", owner)
	if err != nil {
		return 0, err
	}
	spender, err = parseAddress("spender", spender)
	if err != nil {
		return 0, err
	}
	allowance, err := s.ledger.Allowance(ctx, owner, spender)
	if err != nil {
		return 0, internalError(err, "failed to get allowance")
	}
	return allowance, nil
}

func (s *currencyService) Approve(ctx context.Context, caller, spender string, amount uint64) error {
	caller, err := parseAddress("caller", caller)
	if err != nil {
		return err
	}
	spender, err = parseAddress("spender", spender)
	if err != nil {
		return err
	}
	if err := s.ledger.Approve(ctx, caller, spender, amount); err != nil {
		return internalError(err, "failed to approve")
	}
	return nil
}

func (s *currencyService) Transfer(ctx context.Context, caller, to string, amount uint64) error {
	caller, err := parseAddress("caller", caller)
	if err != nil {
		return err
	}
	to, err = parseAddress("to", to)
	if err != nil {
		return err
	}
	if err := s.ledger.Transfer(ctx, caller, to, amount); err != nil {
		if errors.Is(err, ports.ErrInsufficientBalance) {
			return nfterrors.INSUFFICIENT_FUNDS.Wrap(err).
				WithMetadata(nfterrors.FundsMetadata{Account: caller})
		}
		return internalError(err, "failed to transfer")
	}
	return nil
}
