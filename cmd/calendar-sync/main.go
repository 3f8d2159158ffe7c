package main

import (
	"context"
	"errors"

	"equiprent/internal/calendarsync"
	reservationsrepository "equiprent/internal/reservations/repository"
	reservationsservice "equiprent/internal/reservations/service"
	"equiprent/pkg/app"
	"equiprent/pkg/calendar"
	"equiprent/pkg/config"
	"equiprent/pkg/kafka"
	kafka_config "equiprent/pkg/kafka/config"
	kafka_middleware "equiprent/pkg/kafka/middleware"
	"equiprent/pkg/metrics"
)

const ServiceName = "calendar-sync"

func main() {
	cfg := config.Load(ServiceName)
	if !cfg.CalendarEnabled {
		cfg.Log.Fatal("Calendar sync requires the calendar integration to be enabled")
	}
	cfg.SetMongo()
	cfg.Log.Info("Starting Calendar Sync worker")

	m := metrics.New(ServiceName)
	consumer := initConsumer(cfg, m)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			cfg.Log.Fatal("Calendar mirror consumer stopped", "error", err)
		}
	}()

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, m)
	serverApp.OnShutdown(func() {
		cancel()
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close calendar mirror consumer", "error", err)
		}
	})
	serverApp.Run()
}

func initConsumer(cfg *config.Config, m *metrics.Metrics) *kafka.Consumer {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	cal, err := calendar.NewGoogleClient(context.Background(), cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize calendar client", "error", err)
	}

	reservationRepo := reservationsrepository.NewMongoReservationRepository(cfg)
	mirror := reservationsservice.NewCalendarMirror(cfg, cal, reservationRepo, m)
	worker := calendarsync.NewWorker(reservationRepo, mirror, cfg.Log)

	log := cfg.Log.Component("calendar-sync")
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		log,
		cfg.CalendarMirrorTopic,
		cfg.CalendarSyncGroupID,
		cfg.CalendarMirrorDLQTopic,
		worker.Handle,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create calendar mirror consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(log))
	consumer.Use(kafka_middleware.MetricsConsumerMiddleware(m))

	cfg.Log.Info("Calendar mirror consumer initialized",
		"topic", cfg.CalendarMirrorTopic,
		"group_id", cfg.CalendarSyncGroupID,
	)
	return consumer
}
