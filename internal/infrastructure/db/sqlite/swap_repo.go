package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/infrastructure/db/sqlite/sqlc/queries"
)

type swapRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewSwapRepository(config ...interface{}) (domain.SwapRepository, error) {
	db, err := dbFromConfig("swap", config)
	if err != nil {
		return nil, err
	}
	return &swapRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *swapRepository) AddSwap(ctx context.Context, swap domain.SwapRecord) error {
	p := swap.Payload
	err := execTx(ctx, r.db, func(q *queries.Queries) error {
		return q.InsertSwap(ctx, queries.InsertSwapParams{
			Digest:        swap.Digest,
			ChainFrom:     int64(p.ChainFrom),
			ChainTo:       int64(p.ChainTo),
			Sender:        p.Sender,
			Recipient:     p.Recipient,
			AssetID:       int64(p.AssetId),
			OriginChainID: int64(p.OriginChainId),
			Nonce:         int64(p.Nonce),
			MetadataUri:   p.MetadataURI,
			FeeBps:        int64(p.FeeBasisPoints),
			Signature:     p.Signature,
			Status:        int64(swap.Status),
			UpdatedAt:     swap.UpdatedAt,
		})
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("swap %s already exists", swap.Digest)
	}
	return err
}

func (r *swapRepository) GetSwap(ctx context.Context, digest string) (*domain.SwapRecord, error) {
	row, err := r.querier.SelectSwap(ctx, digest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("swap %s: %w", digest, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get swap %s: %w", digest, err)
	}
	return &domain.SwapRecord{
		Digest: row.Digest,
		Payload: domain.SwapPayload{
			SwapParams: domain.SwapParams{
				ChainFrom:     uint64(row.ChainFrom),
				ChainTo:       uint64(row.ChainTo),
				Sender:        row.Sender,
				Recipient:     row.Recipient,
				AssetId:       uint64(row.AssetID),
				OriginChainId: uint64(row.OriginChainID),
				Nonce:         uint64(row.Nonce),
			},
			MetadataURI:    row.MetadataUri,
			FeeBasisPoints: uint32(row.FeeBps),
			Signature:      row.Signature,
		},
		Status:    domain.SwapStatus(row.Status),
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (r *swapRepository) Close() {
	_ = r.db.Close()
}
