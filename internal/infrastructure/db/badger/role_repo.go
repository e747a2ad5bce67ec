package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const roleStoreDir = "roles"

type roleRepository struct {
	store *badgerhold.Store
}

func NewRoleRepository(config ...interface{}) (domain.RoleRepository, error) {
	store, err := openStore(config, roleStoreDir)
	if err != nil {
		return nil, err
	}
	return &roleRepository{store}, nil
}

func (r *roleRepository) GrantRole(_ context.Context, grant domain.RoleGrant) error {
	if err := r.store.Upsert(roleKey(grant.Account, grant.Role), grant); err != nil {
		return fmt.Errorf("failed to grant role %s to %s: %w", grant.Role, grant.Account, err)
	}
	return nil
}

func (r *roleRepository) RevokeRole(_ context.Context, account string, role domain.Role) error {
	err := r.store.Delete(roleKey(account, role), domain.RoleGrant{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to revoke role %s from %s: %w", role, account, err)
	}
	return nil
}

func (r *roleRepository) HasRole(
	_ context.Context, account string, role domain.Role,
) (bool, error) {
	var grant domain.RoleGrant
	if err := r.store.Get(roleKey(account, role), &grant); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get role %s of %s: %w", role, account, err)
	}
	return true, nil
}

func (r *roleRepository) GetRoles(_ context.Context, account string) ([]domain.Role, error) {
	var grants []domain.RoleGrant
	query := badgerhold.Where("Account").Eq(account).SortBy("Role")
	if err := r.store.Find(&grants, query); err != nil {
		return nil, fmt.Errorf("failed to get roles of %s: %w", account, err)
	}
	roles := make([]domain.Role, 0, len(grants))
	for _, grant := range grants {
		roles = append(roles, grant.Role)
	}
	return roles, nil
}

func (r *roleRepository) Close() {
	// nolint:all
	r.store.Close()
}

func roleKey(account string, role domain.Role) string {
	return account + "|" + string(role)
}
