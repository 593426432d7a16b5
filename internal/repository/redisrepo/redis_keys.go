package redisrepo

const (
	REPAIR_QUEUE_KEY = "repair:tasks"
)
