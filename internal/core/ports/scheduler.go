package ports

// SchedulerService is the ledger clock. Times are unix seconds, either wall
// clock or the timestamp of the latest block of the configured chain.
type SchedulerService interface {
	Start()
	Stop()
	Now() (int64, error)
	// ScheduleTaskOnce runs task once the clock reaches at. A time in the
	// past runs the task at the next tick.
	ScheduleTaskOnce(at int64, task func()) error
}
