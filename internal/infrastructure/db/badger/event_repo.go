package badgerdb

import (
	"context"
	"fmt"
	"sync"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/infrastructure/db/dbutil"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
)

const eventStoreDir = "events"

type eventRecord struct {
	Seq       uint64
	Topic     string
	AggId     string
	EventType domain.EventType
	Payload   []byte
}

type subscriber struct {
	topic   string
	handler func(events []domain.Event)
}

type eventRepository struct {
	store *badgerhold.Store

	lock *sync.Mutex
	seq  uint64

	subscribers    map[string][]subscriber
	subscriberLock *sync.Mutex
}

func NewEventRepository(config ...interface{}) (domain.EventRepository, error) {
	store, err := openStore(config, eventStoreDir)
	if err != nil {
		return nil, err
	}

	var last []eventRecord
	if err := store.Find(
		&last, (&badgerhold.Query{}).SortBy("Seq").Reverse().Limit(1),
	); err != nil {
		return nil, fmt.Errorf("failed to read event sequence: %w", err)
	}
	var seq uint64
	if len(last) > 0 {
		seq = last[0].Seq
	}

	return &eventRepository{
		store:          store,
		lock:           &sync.Mutex{},
		seq:            seq,
		subscribers:    make(map[string][]subscriber),
		subscriberLock: &sync.Mutex{},
	}, nil
}

func (r *eventRepository) Save(
	ctx context.Context, topic, id string, events []domain.Event,
) error {
	if err := r.append(topic, id, events); err != nil {
		return err
	}

	if err := r.dispatch(ctx, topic, id); err != nil {
		log.WithError(err).Error("failed to dispatch saved events")
	}
	return nil
}

func (r *eventRepository) GetEvents(
	_ context.Context, topic, id string,
) ([]domain.Event, error) {
	var records []eventRecord
	query := badgerhold.Where("Topic").Eq(topic).And("AggId").Eq(id).SortBy("Seq")
	if err := r.store.Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to get events of %s %s: %w", topic, id, err)
	}

	events := make([]domain.Event, 0, len(records))
	for _, record := range records {
		event, err := dbutil.DeserializeEvent(record.Payload)
		if err != nil {
			log.WithError(err).Warnf("failed to deserialize event: %s", string(record.Payload))
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *eventRepository) RegisterEventsHandler(
	topic string, handler func(events []domain.Event),
) {
	r.subscriberLock.Lock()
	defer r.subscriberLock.Unlock()

	r.subscribers[topic] = append(r.subscribers[topic], subscriber{
		topic:   topic,
		handler: handler,
	})
}

func (r *eventRepository) ClearRegisteredHandlers(topics ...string) {
	r.subscriberLock.Lock()
	defer r.subscriberLock.Unlock()

	if len(topics) == 0 {
		r.subscribers = make(map[string][]subscriber)
		return
	}

	for _, topic := range topics {
		delete(r.subscribers, topic)
	}
}

func (r *eventRepository) Close() {
	// nolint:all
	r.store.Close()
}

func (r *eventRepository) append(topic, id string, events []domain.Event) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	seq := r.seq
	records := make([]eventRecord, 0, len(events))
	for _, event := range events {
		payload, err := dbutil.SerializeEvent(event)
		if err != nil {
			return fmt.Errorf("failed to serialize event: %w", err)
		}
		seq++
		records = append(records, eventRecord{
			Seq:       seq,
			Topic:     topic,
			AggId:     id,
			EventType: event.GetType(),
			Payload:   payload,
		})
	}

	// the batch is stored in full or not at all
	tx := r.store.Badger().NewTransaction(true)
	defer tx.Discard()
	for _, record := range records {
		if err := r.store.TxInsert(tx, record.Seq, record); err != nil {
			return fmt.Errorf("failed to store event: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to store events: %w", err)
	}

	r.seq = seq
	return nil
}

func (r *eventRepository) dispatch(ctx context.Context, topic, id string) error {
	events, err := r.GetEvents(ctx, topic, id)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	r.subscriberLock.Lock()
	defer r.subscriberLock.Unlock()
	for _, subscriber := range r.subscribers[topic] {
		go subscriber.handler(events)
	}
	return nil
}
