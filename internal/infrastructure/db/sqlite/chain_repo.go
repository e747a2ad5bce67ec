package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/infrastructure/db/sqlite/sqlc/queries"
)

type chainRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewChainRepository(config ...interface{}) (domain.ChainRepository, error) {
	db, err := dbFromConfig("chain", config)
	if err != nil {
		return nil, err
	}
	return &chainRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *chainRepository) SetAllowedChain(ctx context.Context, chain domain.AllowedChain) error {
	return execTx(ctx, r.db, func(q *queries.Queries) error {
		return q.UpsertAllowedChain(ctx, queries.UpsertAllowedChainParams{
			ChainID:   int64(chain.ChainId),
			Allowed:   chain.Allowed,
			UpdatedAt: chain.UpdatedAt,
		})
	})
}

func (r *chainRepository) IsChainAllowed(ctx context.Context, chainId uint64) (bool, error) {
	row, err := r.querier.SelectAllowedChain(ctx, int64(chainId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get chain %d: %w", chainId, err)
	}
	return row.Allowed, nil
}

func (r *chainRepository) GetAllowedChains(ctx context.Context) ([]domain.AllowedChain, error) {
	rows, err := r.querier.SelectAllowedChains(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get allowed chains: %w", err)
	}
	chains := make([]domain.AllowedChain, 0, len(rows))
	for _, row := range rows {
		chains = append(chains, domain.AllowedChain{
			ChainId:   uint64(row.ChainID),
			Allowed:   row.Allowed,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return chains, nil
}

func (r *chainRepository) Close() {
	_ = r.db.Close()
}
