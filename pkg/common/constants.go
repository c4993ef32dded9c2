package common

const (
	// Redis keys guarding the run-once semantics of the pipeline.
	RedisKeyDailyRunLock  = "market_ai.lock.daily"
	RedisKeyWeeklyRunLock = "market_ai.lock.weekly"
)
