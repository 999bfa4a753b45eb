package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"venuehub/internal/activity"
	activityapi "venuehub/internal/activity/api"
	activitydb "venuehub/internal/activity/db"
	"venuehub/internal/auth"
	"venuehub/internal/booking"
	bookingapi "venuehub/internal/booking/api"
	bookingdb "venuehub/internal/booking/db"
	rediswrap "venuehub/internal/booking/redis"
	"venuehub/internal/config"
	"venuehub/internal/database/migrations"
	"venuehub/internal/kafka"
	"venuehub/internal/logger"
	"venuehub/internal/review"
	reviewapi "venuehub/internal/review/api"
	reviewdb "venuehub/internal/review/db"
	"venuehub/internal/venue"
	venueapi "venuehub/internal/venue/api"
	venuedb "venuehub/internal/venue/db"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		log.Fatal("CONFIG", fmt.Sprintf("Invalid VENUE_TIMEZONE %q: %v", cfg.Booking.Timezone, err))
	}

	// --- PostgreSQL ---
	connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN()))
	sqldb := sql.OpenDB(connector)
	defer sqldb.Close()

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	log.LogDatabase("CONNECT", "postgres", "Connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	runner := migrations.NewRunner(bunDB, log, migrations.DefaultOptions())
	if err := runner.RunMigrations(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}

	// --- Redis ---
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Failed to connect to Redis: %v", err))
	}
	log.Info("REDIS", "Connection successful")

	// --- Kafka ---
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		topics := []string{cfg.Kafka.Topics.BookingEvents, cfg.Kafka.Topics.ActivityEvents}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics, log); err != nil {
			log.Error("KAFKA", fmt.Sprintf("Topic setup failed, continuing without events: %v", err))
		} else {
			producer = kafka.NewProducer(cfg.Kafka.Brokers,
				cfg.Kafka.Topics.BookingEvents, cfg.Kafka.Topics.ActivityEvents, log)
			defer producer.Close()
		}
	}

	// --- Services ---
	venueLock := rediswrap.NewRedis(redisClient, cfg.Booking.VenueLockTTL)

	bookingService := booking.NewBookingService(&bookingdb.DB{Bun: bunDB}, venueLock, publisherOrNil(producer), log, loc)
	activityService := activity.NewActivityService(&activitydb.DB{Bun: bunDB}, activityPublisherOrNil(producer), log, loc)
	venueService := venue.NewVenueService(&venuedb.DB{Bun: bunDB}, log)
	reviewService := review.NewReviewService(&reviewdb.DB{Bun: bunDB}, log)

	bookingHandler := &bookingapi.Handler{BookingService: bookingService}
	activityHandler := &activityapi.Handler{ActivityService: activityService}
	venueHandler := &venueapi.Handler{VenueService: venueService}
	reviewHandler := &reviewapi.Handler{ReviewService: reviewService}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(requestLogger(log))

	// Public routes: browsing plus guest activity registration.
	r.Get("/api/v1/venues", venueHandler.ListVenues)
	r.Get("/api/v1/venues/{venueId}", venueHandler.GetVenue)
	r.Get("/api/v1/venues/{venueId}/reviews", reviewHandler.ListReviews)
	r.Get("/api/v1/activities", activityHandler.ListPublished)
	r.Get("/api/v1/activities/{activityId}", activityHandler.GetActivity)
	r.Post("/api/v1/activities/{activityId}/guest-register", activityHandler.RegisterGuest)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware())

		r.Post("/api/v1/venues", venueHandler.CreateVenue)
		r.Put("/api/v1/venues/{venueId}", venueHandler.UpdateVenue)
		r.Delete("/api/v1/venues/{venueId}", venueHandler.DeleteVenue)
		r.Get("/api/v1/my/venues", venueHandler.MyVenues)
		r.Put("/api/v1/my/payout-info", venueHandler.UpdatePayoutInfo)
		r.Post("/api/v1/venues/{venueId}/favorite", venueHandler.ToggleFavorite)
		r.Get("/api/v1/my/favorites", venueHandler.MyFavorites)

		r.Post("/api/v1/bookings", bookingHandler.CreateBooking)
		r.Get("/api/v1/bookings/{bookingId}", bookingHandler.GetBooking)
		r.Delete("/api/v1/bookings/{bookingId}", bookingHandler.DeleteBooking)
		r.Get("/api/v1/my/bookings", bookingHandler.MyBookings)
		r.Get("/api/v1/my/venue-bookings", bookingHandler.VenueBookings)
		r.Post("/api/v1/bookings/{bookingId}/approve", bookingHandler.ApproveBooking)
		r.Post("/api/v1/bookings/{bookingId}/slip", bookingHandler.UploadSlip)
		r.Post("/api/v1/bookings/{bookingId}/confirm-payment", bookingHandler.ConfirmPayment)
		r.Post("/api/v1/bookings/{bookingId}/reject", bookingHandler.RejectBooking)
		r.Post("/api/v1/bookings/{bookingId}/cancel", bookingHandler.CancelBooking)

		r.Post("/api/v1/activities", activityHandler.CreateActivity)
		r.Put("/api/v1/activities/{activityId}", activityHandler.UpdateActivity)
		r.Delete("/api/v1/activities/{activityId}", activityHandler.DeleteActivity)
		r.Get("/api/v1/my/activities", activityHandler.MyActivities)
		r.Post("/api/v1/activities/{activityId}/join", activityHandler.JoinActivity)
		r.Post("/api/v1/activities/{activityId}/leave", activityHandler.LeaveActivity)
		r.Get("/api/v1/activities/{activityId}/participants", activityHandler.ListParticipants)
		r.Post("/api/v1/activities/{activityId}/participants/{participantId}/check-in", activityHandler.CheckInParticipant)

		r.Post("/api/v1/venues/{venueId}/reviews", reviewHandler.SubmitReview)
		r.Delete("/api/v1/reviews/{reviewId}", reviewHandler.DeleteReview)
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Booking service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("SERVER", "Shutdown signal received, cleaning up")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("SERVER", fmt.Sprintf("Forced shutdown: %v", err))
	}
	log.Info("SERVER", "Server exited gracefully")
}

// publisherOrNil keeps the services' publisher fields nil when Kafka is
// disabled so they skip publishing instead of panicking.
func publisherOrNil(p *kafka.Producer) booking.KafkaPublisher {
	if p == nil {
		return nil
	}
	return p
}

func activityPublisherOrNil(p *kafka.Producer) activity.KafkaPublisher {
	if p == nil {
		return nil
	}
	return p
}

func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.LogAPI(r.Method, r.URL.Path, "done", time.Since(start).String())
		})
	}
}
