package chainclock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arkade-os/nftd/internal/core/ports"
	"github.com/go-resty/resty/v2"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
	log "github.com/sirupsen/logrus"
)

const requestTimeout = 5 * time.Second

type Option func(*service)

func WithTickerInterval(interval time.Duration) Option {
	return func(s *service) {
		s.tickerInterval = interval
	}
}

type block struct {
	Number    ethtypes.HexUint64 `json:"number"`
	Timestamp ethtypes.HexUint64 `json:"timestamp"`
}

// service follows the timestamp of the latest block of an EVM chain, so that
// auctions end when the chain says so rather than when the local clock does.
type service struct {
	rpc            rpcbackend.Backend
	lock           sync.Locker
	tasks          map[int64][]func()
	stopCh         chan struct{}
	tickerInterval time.Duration

	lastLock      sync.RWMutex
	lastTimestamp int64
}

func NewScheduler(rpcURL string, opts ...Option) (ports.SchedulerService, error) {
	if len(rpcURL) == 0 {
		return nil, fmt.Errorf("chain rpc URL is required")
	}

	svc := &service{
		rpc:            rpcbackend.NewRPCClient(resty.New().SetBaseURL(rpcURL)),
		lock:           &sync.Mutex{},
		tasks:          make(map[int64][]func()),
		stopCh:         make(chan struct{}),
		tickerInterval: time.Second * 10,
	}

	for _, opt := range opts {
		opt(svc)
	}

	if _, err := svc.Now(); err != nil {
		return nil, fmt.Errorf("failed to reach chain rpc: %w", err)
	}

	return svc, nil
}

func (s *service) Start() {
	go func() {
		ticker := time.NewTicker(s.tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				tasks, err := s.popTasks()
				if err != nil {
					log.Errorf("error fetching tasks: %s", err)
					continue
				}

				log.Debugf("fetched %d tasks", len(tasks))
				for _, task := range tasks {
					go task()
				}
			}
		}
	}()
}

func (s *service) Stop() {
	close(s.stopCh)
}

func (s *service) Now() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var latest block
	if rpcErr := s.rpc.CallRPC(ctx, &latest, "eth_getBlockByNumber", "latest", false); rpcErr != nil {
		return 0, fmt.Errorf("failed to fetch latest block: %s", rpcErr.Message)
	}

	timestamp := int64(latest.Timestamp)
	log.Debugf("latest block %d has timestamp %d", uint64(latest.Number), timestamp)

	s.lastLock.Lock()
	defer s.lastLock.Unlock()
	// block timestamps never go backwards
	if timestamp > s.lastTimestamp {
		s.lastTimestamp = timestamp
	}
	return s.lastTimestamp, nil
}

func (s *service) ScheduleTaskOnce(at int64, task func()) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.tasks[at] = append(s.tasks[at], task)
	return nil
}

func (s *service) popTasks() ([]func(), error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(s.tasks) == 0 {
		return nil, nil
	}

	now, err := s.Now()
	if err != nil {
		return nil, err
	}

	tasks := make([]func(), 0)
	for at, scheduled := range s.tasks {
		if at > now {
			continue
		}
		tasks = append(tasks, scheduled...)
		delete(s.tasks, at)
	}
	return tasks, nil
}
