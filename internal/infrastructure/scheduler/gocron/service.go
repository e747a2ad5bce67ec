package timescheduler

import (
	"time"

	"github.com/arkade-os/nftd/internal/core/ports"
	"github.com/go-co-op/gocron"
)

type service struct {
	scheduler *gocron.Scheduler
}

// NewScheduler returns a wall clock scheduler.
func NewScheduler() ports.SchedulerService {
	svc := gocron.NewScheduler(time.UTC)
	return &service{svc}
}

func (s *service) Start() {
	s.scheduler.StartAsync()
}

func (s *service) Stop() {
	s.scheduler.Stop()
}

func (s *service) Now() (int64, error) {
	return time.Now().Unix(), nil
}

func (s *service) ScheduleTaskOnce(at int64, task func()) error {
	delay := time.Until(time.Unix(at, 0))
	if delay <= 0 {
		go task()
		return nil
	}

	_, err := s.scheduler.Every(delay).WaitForSchedule().LimitRunsTo(1).Do(task)
	return err
}
