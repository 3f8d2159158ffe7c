package config

import (
	"time"

	"equiprent/pkg/model"
)

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "equiprent"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	DefaultTimeZone            = "UTC"
	DefaultAvailabilityTimeout = 5 * time.Second
	DefaultLockTTL             = 10 * time.Second
	DefaultLockRetryBackoff    = 250 * time.Millisecond

	DefaultCalendarEnabled = false
	DefaultCalendarTimeout = 5 * time.Second

	DefaultEventsEnabled          = false
	DefaultReservationsTopic      = "equiprent.reservations"
	DefaultReservationsDLQTopic   = "equiprent.reservations.dlq"
	DefaultCalendarMirrorTopic    = "equiprent.calendar-mirror"
	DefaultCalendarMirrorDLQTopic = "equiprent.calendar-mirror.dlq"
	DefaultCalendarSyncGroupID    = "equiprent-calendar-sync"

	DefaultBufferBefore         = 60 * time.Minute
	DefaultBufferAfter          = 30 * time.Minute
	DefaultSlotGranularityHours = 0.5
	DefaultSlotLength           = 1 * time.Hour
	DefaultWorkStartHour        = 6
	DefaultWorkEndHour          = 20
	DefaultWalkUpNotice         = 1 * time.Hour
)

// ScheduledServiceTypes are the service lines that carry a scheduling policy.
var ScheduledServiceTypes = []string{
	model.EquipmentContainers,
	model.EquipmentExcavators,
	model.ServiceConstructions,
}
