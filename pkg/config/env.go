package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvTimeZone            = "TIME_ZONE"
	EnvAvailabilityTimeout = "AVAILABILITY_TIMEOUT"
	EnvLockTTL             = "RESERVATION_LOCK_TTL"
	EnvLockRetryBackoff    = "RESERVATION_LOCK_RETRY_BACKOFF"

	EnvCalendarEnabled         = "CALENDAR_ENABLED"
	EnvCalendarCredentialsFile = "CALENDAR_CREDENTIALS_FILE"
	EnvCalendarTimeout         = "CALENDAR_TIMEOUT"
	EnvCalendarIDPrefix        = "CALENDAR_ID_"

	EnvEventsEnabled          = "EVENTS_ENABLED"
	EnvReservationsTopic      = "RESERVATIONS_TOPIC"
	EnvReservationsDLQTopic   = "RESERVATIONS_DLQ_TOPIC"
	EnvCalendarMirrorTopic    = "CALENDAR_MIRROR_TOPIC"
	EnvCalendarMirrorDLQTopic = "CALENDAR_MIRROR_DLQ_TOPIC"
	EnvCalendarSyncGroupID    = "CALENDAR_SYNC_GROUP_ID"

	// Per equipment type, prefixed with the upper-cased type, e.g. EXCAVATORS_BUFFER_BEFORE.
	EnvSuffixBufferBefore    = "_BUFFER_BEFORE"
	EnvSuffixBufferAfter     = "_BUFFER_AFTER"
	EnvSuffixSlotGranularity = "_SLOT_GRANULARITY"
	EnvSuffixSlotLength      = "_SLOT_LENGTH"
	EnvSuffixWorkStartHour   = "_WORK_START_HOUR"
	EnvSuffixWorkEndHour     = "_WORK_END_HOUR"
	EnvSuffixWalkUpNotice    = "_WALK_UP_NOTICE"
)
