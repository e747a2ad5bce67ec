package application

import (
	"context"

	"github.com/arkade-os/nftd/internal/core/domain"
	nfterrors "github.com/arkade-os/nftd/pkg/errors"
)

type indexerService struct {
	*instance
}

func (s *indexerService) GetEvents(ctx context.Context, topic, id string) ([]domain.Event, error) {
	if topic != domain.ItemTopic && topic != domain.SwapTopic {
		return nil, nfterrors.INVALID_ARGUMENT.New("unknown topic %q", topic)
	}
	events, err := s.repoManager.Events().GetEvents(ctx, topic, id)
	if err != nil {
		return nil, internalError(err, "failed to get events")
	}
	return events, nil
}

func (s *indexerService) ListItems(
	ctx context.Context, filter domain.ItemFilter,
) ([]domain.Item, error) {
	if filter.Owner != "" {
		owner, err := parseAddress("owner", filter.Owner)
		if err != nil {
			return nil, err
		}
		filter.Owner = owner
	}
	items, err := s.repoManager.Items().GetItems(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to get items")
	}
	return items, nil
}
