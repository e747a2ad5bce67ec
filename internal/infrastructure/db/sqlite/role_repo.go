package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/infrastructure/db/sqlite/sqlc/queries"
)

type roleRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewRoleRepository(config ...interface{}) (domain.RoleRepository, error) {
	db, err := dbFromConfig("role", config)
	if err != nil {
		return nil, err
	}
	return &roleRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *roleRepository) GrantRole(ctx context.Context, grant domain.RoleGrant) error {
	return execTx(ctx, r.db, func(q *queries.Queries) error {
		return q.UpsertRoleGrant(ctx, queries.UpsertRoleGrantParams{
			Account:   grant.Account,
			Role:      string(grant.Role),
			GrantedAt: grant.GrantedAt,
		})
	})
}

func (r *roleRepository) RevokeRole(ctx context.Context, account string, role domain.Role) error {
	return execTx(ctx, r.db, func(q *queries.Queries) error {
		return q.DeleteRoleGrant(ctx, queries.DeleteRoleGrantParams{
			Account: account,
			Role:    string(role),
		})
	})
}

func (r *roleRepository) HasRole(
	ctx context.Context, account string, role domain.Role,
) (bool, error) {
	count, err := r.querier.CountRoleGrant(ctx, queries.CountRoleGrantParams{
		Account: account,
		Role:    string(role),
	})
	if err != nil {
		return false, fmt.Errorf("failed to get role %s of %s: %w", role, account, err)
	}
	return count > 0, nil
}

func (r *roleRepository) GetRoles(ctx context.Context, account string) ([]domain.Role, error) {
	rows, err := r.querier.SelectRolesByAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles of %s: %w", account, err)
	}
	roles := make([]domain.Role, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, domain.Role(row))
	}
	return roles, nil
}

func (r *roleRepository) Close() {
	_ = r.db.Close()
}
