package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"equiprent/pkg/client"
	"equiprent/pkg/logger"
	"equiprent/pkg/model"

	"github.com/spf13/viper"
)

// SchedulePolicy holds the scheduling knobs for one service line.
type SchedulePolicy struct {
	BufferBefore         time.Duration
	BufferAfter          time.Duration
	SlotGranularityHours float64
	SlotLength           time.Duration
	WorkStartHour        int
	WorkEndHour          int
	WalkUpNotice         time.Duration
}

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	TimeZone            string
	Location            *time.Location
	AvailabilityTimeout time.Duration
	LockTTL             time.Duration
	LockRetryBackoff    time.Duration
	Schedules           map[string]SchedulePolicy

	CalendarEnabled         bool
	CalendarCredentialsFile string
	CalendarTimeout         time.Duration
	CalendarIDs             map[string]string

	EventsEnabled          bool
	ReservationsTopic      string
	ReservationsDLQTopic   string
	CalendarMirrorTopic    string
	CalendarMirrorDLQTopic string
	CalendarSyncGroupID    string

	Log    *logger.Logger
	Client *client.Client
}

// Load reads configuration from an optional config.yaml and the environment.
// Environment variables win over the file.
func Load(serviceName string) *Config {
	v := newViper()

	log := logger.New(logger.Config{
		Level:     v.GetString(EnvLogLevel),
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal("Failed to read configuration file", "error", err)
		}
	}

	cfg := fromViper(v)
	cfg.Log = log
	cfg.Client = client.NewClient()

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/equiprent")
	v.AutomaticEnv()

	v.SetDefault(EnvMongoURI, DefaultMongoURI)
	v.SetDefault(EnvMongoDatabaseName, DefaultMongoDatabaseName)
	v.SetDefault(EnvMongoConnTimeout, DefaultMongoConnTimeout)
	v.SetDefault(EnvPort, DefaultPort)
	v.SetDefault(EnvLogLevel, DefaultLogLevel)
	v.SetDefault(EnvRateLimitRequests, DefaultRateLimitRequests)
	v.SetDefault(EnvRateLimitWindow, DefaultRateLimitWindow)
	v.SetDefault(EnvRequestTimeout, DefaultRequestTimeout)
	v.SetDefault(EnvIdempotencyTTL, DefaultIdempotencyTTL)
	v.SetDefault(EnvMaxRequestSize, DefaultMaxRequestSize)
	v.SetDefault(EnvReadTimeout, DefaultReadTimeout)
	v.SetDefault(EnvWriteTimeout, DefaultWriteTimeout)
	v.SetDefault(EnvIdleTimeout, DefaultIdleTimeout)
	v.SetDefault(EnvShutdownTimeout, DefaultShutdownTimeout)

	v.SetDefault(EnvTimeZone, DefaultTimeZone)
	v.SetDefault(EnvAvailabilityTimeout, DefaultAvailabilityTimeout)
	v.SetDefault(EnvLockTTL, DefaultLockTTL)
	v.SetDefault(EnvLockRetryBackoff, DefaultLockRetryBackoff)

	v.SetDefault(EnvCalendarEnabled, DefaultCalendarEnabled)
	v.SetDefault(EnvCalendarTimeout, DefaultCalendarTimeout)

	v.SetDefault(EnvEventsEnabled, DefaultEventsEnabled)
	v.SetDefault(EnvReservationsTopic, DefaultReservationsTopic)
	v.SetDefault(EnvReservationsDLQTopic, DefaultReservationsDLQTopic)
	v.SetDefault(EnvCalendarMirrorTopic, DefaultCalendarMirrorTopic)
	v.SetDefault(EnvCalendarMirrorDLQTopic, DefaultCalendarMirrorDLQTopic)
	v.SetDefault(EnvCalendarSyncGroupID, DefaultCalendarSyncGroupID)

	for _, serviceType := range ScheduledServiceTypes {
		prefix := strings.ToUpper(serviceType)
		v.SetDefault(prefix+EnvSuffixBufferBefore, DefaultBufferBefore)
		v.SetDefault(prefix+EnvSuffixBufferAfter, DefaultBufferAfter)
		v.SetDefault(prefix+EnvSuffixSlotGranularity, DefaultSlotGranularityHours)
		v.SetDefault(prefix+EnvSuffixSlotLength, DefaultSlotLength)
		v.SetDefault(prefix+EnvSuffixWorkStartHour, DefaultWorkStartHour)
		v.SetDefault(prefix+EnvSuffixWorkEndHour, DefaultWorkEndHour)
		v.SetDefault(prefix+EnvSuffixWalkUpNotice, DefaultWalkUpNotice)
	}

	return v
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		MongoURI:          v.GetString(EnvMongoURI),
		MongoDatabaseName: v.GetString(EnvMongoDatabaseName),
		MongoConnTimeout:  v.GetDuration(EnvMongoConnTimeout),

		Port: v.GetString(EnvPort),

		RateLimitRequests: v.GetInt(EnvRateLimitRequests),
		RateLimitWindow:   v.GetDuration(EnvRateLimitWindow),

		RequestTimeout: v.GetDuration(EnvRequestTimeout),
		IdempotencyTTL: v.GetDuration(EnvIdempotencyTTL),
		MaxRequestSize: v.GetInt(EnvMaxRequestSize),

		ReadTimeout:     v.GetDuration(EnvReadTimeout),
		WriteTimeout:    v.GetDuration(EnvWriteTimeout),
		IdleTimeout:     v.GetDuration(EnvIdleTimeout),
		ShutdownTimeout: v.GetDuration(EnvShutdownTimeout),

		TimeZone:            v.GetString(EnvTimeZone),
		AvailabilityTimeout: v.GetDuration(EnvAvailabilityTimeout),
		LockTTL:             v.GetDuration(EnvLockTTL),
		LockRetryBackoff:    v.GetDuration(EnvLockRetryBackoff),
		Schedules:           make(map[string]SchedulePolicy, len(ScheduledServiceTypes)),

		CalendarEnabled:         v.GetBool(EnvCalendarEnabled),
		CalendarCredentialsFile: v.GetString(EnvCalendarCredentialsFile),
		CalendarTimeout:         v.GetDuration(EnvCalendarTimeout),
		CalendarIDs:             make(map[string]string),

		EventsEnabled:          v.GetBool(EnvEventsEnabled),
		ReservationsTopic:      v.GetString(EnvReservationsTopic),
		ReservationsDLQTopic:   v.GetString(EnvReservationsDLQTopic),
		CalendarMirrorTopic:    v.GetString(EnvCalendarMirrorTopic),
		CalendarMirrorDLQTopic: v.GetString(EnvCalendarMirrorDLQTopic),
		CalendarSyncGroupID:    v.GetString(EnvCalendarSyncGroupID),
	}

	for _, serviceType := range ScheduledServiceTypes {
		prefix := strings.ToUpper(serviceType)
		cfg.Schedules[serviceType] = SchedulePolicy{
			BufferBefore:         v.GetDuration(prefix + EnvSuffixBufferBefore),
			BufferAfter:          v.GetDuration(prefix + EnvSuffixBufferAfter),
			SlotGranularityHours: v.GetFloat64(prefix + EnvSuffixSlotGranularity),
			SlotLength:           v.GetDuration(prefix + EnvSuffixSlotLength),
			WorkStartHour:        v.GetInt(prefix + EnvSuffixWorkStartHour),
			WorkEndHour:          v.GetInt(prefix + EnvSuffixWorkEndHour),
			WalkUpNotice:         v.GetDuration(prefix + EnvSuffixWalkUpNotice),
		}
		if id := v.GetString(EnvCalendarIDPrefix + prefix); id != "" {
			cfg.CalendarIDs[serviceType] = id
		}
	}

	if loc, err := time.LoadLocation(cfg.TimeZone); err == nil {
		cfg.Location = loc
	}

	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	positive := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"AvailabilityTimeout", cfg.AvailabilityTimeout},
		{"LockTTL", cfg.LockTTL},
		{"CalendarTimeout", cfg.CalendarTimeout},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", p.name, p.value))
		}
	}
	if cfg.LockRetryBackoff < 0 {
		errors = append(errors, fmt.Sprintf("LockRetryBackoff cannot be negative, got: %s", cfg.LockRetryBackoff))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.Location == nil {
		errors = append(errors, fmt.Sprintf("TimeZone must be a valid IANA zone, got: %s", cfg.TimeZone))
	}

	for serviceType, policy := range cfg.Schedules {
		errors = append(errors, validateSchedulePolicy(serviceType, policy)...)
	}

	if cfg.CalendarEnabled {
		if cfg.CalendarCredentialsFile == "" {
			errors = append(errors, "CalendarCredentialsFile is required when the calendar is enabled")
		}
		for _, equipmentType := range []string{model.EquipmentContainers, model.EquipmentExcavators} {
			if cfg.CalendarIDs[equipmentType] == "" {
				errors = append(errors, fmt.Sprintf("Calendar ID for %s is required when the calendar is enabled", equipmentType))
			}
		}
	}

	if cfg.CalendarEnabled && !cfg.EventsEnabled {
		errors = append(errors, "EventsEnabled is required when the calendar is enabled")
	}

	if cfg.LockTTL > 0 && cfg.AvailabilityTimeout > 0 && cfg.LockTTL <= cfg.AvailabilityTimeout {
		errors = append(errors, fmt.Sprintf("LockTTL (%s) must be greater than AvailabilityTimeout (%s)", cfg.LockTTL, cfg.AvailabilityTimeout))
	}

	if cfg.EventsEnabled && (cfg.ReservationsTopic == "" || cfg.CalendarMirrorTopic == "") {
		errors = append(errors, "ReservationsTopic and CalendarMirrorTopic are required when events are enabled")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func validateSchedulePolicy(serviceType string, p SchedulePolicy) []string {
	var errors []string
	if p.BufferBefore < 0 || p.BufferAfter < 0 {
		errors = append(errors, fmt.Sprintf("%s buffers cannot be negative, got: before=%s after=%s", serviceType, p.BufferBefore, p.BufferAfter))
	}
	if p.SlotGranularityHours <= 0 {
		errors = append(errors, fmt.Sprintf("%s slot granularity must be positive, got: %v", serviceType, p.SlotGranularityHours))
	}
	if p.SlotLength <= 0 {
		errors = append(errors, fmt.Sprintf("%s slot length must be positive, got: %s", serviceType, p.SlotLength))
	}
	if p.WorkStartHour < 0 || p.WorkEndHour > 24 || p.WorkEndHour <= p.WorkStartHour {
		errors = append(errors, fmt.Sprintf("%s working hours must satisfy 0 <= start < end <= 24, got: %d-%d", serviceType, p.WorkStartHour, p.WorkEndHour))
	}
	if p.WalkUpNotice < 0 {
		errors = append(errors, fmt.Sprintf("%s walk-up notice cannot be negative, got: %s", serviceType, p.WalkUpNotice))
	}
	return errors
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"time_zone", cfg.TimeZone,
		"availability_timeout", cfg.AvailabilityTimeout,
		"lock_ttl", cfg.LockTTL,
		"calendar_enabled", cfg.CalendarEnabled,
		"calendar_credentials_set", cfg.CalendarCredentialsFile != "",
		"events_enabled", cfg.EventsEnabled,
		"reservations_topic", cfg.ReservationsTopic,
		"calendar_mirror_topic", cfg.CalendarMirrorTopic,
	)
	for serviceType, policy := range cfg.Schedules {
		cfg.Log.Info("Scheduling policy",
			"service_type", serviceType,
			"buffer_before", policy.BufferBefore,
			"buffer_after", policy.BufferAfter,
			"slot_granularity_hours", policy.SlotGranularityHours,
			"slot_length", policy.SlotLength,
			"work_start_hour", policy.WorkStartHour,
			"work_end_hour", policy.WorkEndHour,
			"walk_up_notice", policy.WalkUpNotice,
		)
	}
}

// LocationOrUTC is safe to call on partially built configs (tests).
func (cfg *Config) LocationOrUTC() *time.Location {
	if cfg == nil || cfg.Location == nil {
		return time.UTC
	}
	return cfg.Location
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
