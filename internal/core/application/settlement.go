package application

import (
	"context"
	"fmt"

	"github.com/arkade-os/nftd/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

// onItemEvents schedules the settlement of an auction when the item history
// ends with an open auction.
func (i *instance) onItemEvents(events []domain.Event) {
	var started *domain.AuctionStarted
	for _, event := range events {
		switch e := event.(type) {
		case domain.AuctionStarted:
			started = &e
		case domain.AuctionEnded:
			started = nil
		}
	}
	if started == nil {
		return
	}

	var itemId uint64
	if _, err := fmt.Sscan(started.Id, &itemId); err != nil {
		log.WithError(err).Warnf("invalid item id %q in auction event", started.Id)
		return
	}
	i.scheduleSettlement(itemId, started.EndTime)
}

func (i *instance) scheduleSettlement(itemId uint64, endTime int64) {
	key := fmt.Sprintf("%d:%d", itemId, endTime)

	i.scheduledLock.Lock()
	defer i.scheduledLock.Unlock()

	if _, ok := i.scheduledSettlements[key]; ok {
		return
	}

	if err := i.scheduler.ScheduleTaskOnce(endTime, func() {
		i.scheduledLock.Lock()
		delete(i.scheduledSettlements, key)
		i.scheduledLock.Unlock()

		i.lock.Lock()
		defer i.lock.Unlock()

		if err := i.settle(context.Background(), itemId); err != nil {
			log.WithError(err).Warnf("failed to settle auction of item %d", itemId)
			return
		}
		log.Infof("auction of item %d settled", itemId)
	}); err != nil {
		log.WithError(err).Warnf("failed to schedule settlement of item %d", itemId)
		return
	}
	i.scheduledSettlements[key] = struct{}{}
	log.Debugf("settlement of item %d scheduled at %d", itemId, endTime)
}
