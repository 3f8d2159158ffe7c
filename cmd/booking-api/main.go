package main

import (
	"context"

	ordershandler "equiprent/internal/orders/handler"
	ordersrepository "equiprent/internal/orders/repository"
	ordersservice "equiprent/internal/orders/service"
	"equiprent/internal/reservations/availability"
	reservationshandler "equiprent/internal/reservations/handler"
	reservationsrepository "equiprent/internal/reservations/repository"
	"equiprent/internal/reservations/schedule"
	reservationsservice "equiprent/internal/reservations/service"
	"equiprent/pkg/app"
	"equiprent/pkg/calendar"
	"equiprent/pkg/config"
	"equiprent/pkg/contracts"
	"equiprent/pkg/events"
	kafka_config "equiprent/pkg/kafka/config"
	"equiprent/pkg/metrics"
)

const ServiceName = "booking-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.Log.Info("Starting Booking API service")

	m := metrics.New(ServiceName)
	cal := initCalendar(cfg)
	publisher := initPublisher(cfg, m)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, m, initHandlers(cfg, m, cal, publisher)...)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.Run()
}

func initCalendar(cfg *config.Config) calendar.Client {
	if !cfg.CalendarEnabled {
		cfg.Log.Warn("Calendar integration disabled, availability uses the ledger and open orders only")
		return calendar.NewDisabledClient()
	}
	cal, err := calendar.NewGoogleClient(context.Background(), cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize calendar client", "error", err)
	}
	cfg.Log.Info("Calendar client initialized", "calendars", len(cfg.CalendarIDs))
	return cal
}

func initPublisher(cfg *config.Config, m *metrics.Metrics) events.Publisher {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Event publishing disabled")
		return events.NewNopPublisher()
	}
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	publisher, err := events.NewKafkaPublisher(cfg, kafkaCfg, m, ServiceName)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}
	return publisher
}

func initHandlers(cfg *config.Config, m *metrics.Metrics, cal calendar.Client, publisher events.Publisher) []contracts.Handler {
	reservationRepo := reservationsrepository.NewMongoReservationRepository(cfg)
	lockRepo := reservationsrepository.NewReservationLockRepository(cfg)
	orderRepo := ordersrepository.NewMongoOrderRepository(cfg)

	checker := availability.NewChecker(cfg, reservationRepo, cal, orderRepo, schedule.NewPolicies(cfg), m)
	mirror := reservationsservice.NewCalendarMirror(cfg, cal, reservationRepo, m)
	writer := reservationsservice.NewBookingWriter(cfg, reservationRepo, lockRepo, checker, mirror, publisher, m)

	availabilityService := reservationsservice.NewAvailabilityService(cfg, checker)
	reservationService := reservationsservice.NewReservationService(cfg, reservationRepo)
	orderService := ordersservice.NewOrderService(cfg, orderRepo, writer, checker, publisher)

	cfg.Log.Info("Booking services initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		reservationshandler.NewReservationHandler(availabilityService, reservationService, cfg.Log),
		ordershandler.NewOrderHandler(orderService, cfg.Log),
	}
}
