package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/stripe/stripe-go/v78"

	"staybook/internal/api"
	"staybook/internal/auth"
	"staybook/internal/repository"
	"staybook/internal/service"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	reservationRepo := repository.NewReservationRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	hostRepo := repository.NewHostRepository(db)
	jobRepo := repository.NewJobRepository(db)

	stripeSvc := service.NewStripeService()
	notifySvc := service.NewNotifyService()
	bookingSvc := service.NewBookingService(reservationRepo, propertyRepo, stripeSvc, notifySvc)
	hostAuthSvc := service.NewHostAuthService(hostRepo)
	jobSvc := service.NewJobService(jobRepo)

	bookingHandler := api.NewBookingHandler(bookingSvc)
	propertyHandler := api.NewPropertyHandler(bookingSvc)
	hostAuthHandler := api.NewHostAuthHandler(hostAuthSvc)
	webhookHandler := api.NewStripeWebhookHandler(os.Getenv("STRIPE_WEBHOOK_SECRET"), bookingSvc)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/availability", bookingHandler.CheckAvailability).Methods("POST")
	r.HandleFunc("/api/quotes", bookingHandler.CalculateTotal).Methods("POST")
	r.HandleFunc("/api/reservations", bookingHandler.CreateReservation).Methods("POST")
	r.HandleFunc("/api/reservations/{id}", bookingHandler.GetReservation).Methods("GET")
	r.HandleFunc("/api/reservations/{id}/confirm", bookingHandler.ConfirmReservation).Methods("POST")
	r.HandleFunc("/api/reservations/{id}/cancel", bookingHandler.CancelReservation).Methods("POST")
	r.HandleFunc("/api/reservations/{id}/complete", bookingHandler.CompleteReservation).Methods("POST")
	r.HandleFunc("/api/properties", propertyHandler.SearchProperties).Methods("GET")
	r.HandleFunc("/api/properties/{id}", propertyHandler.GetProperty).Methods("GET")
	r.HandleFunc("/api/properties/{id}/blocked-dates", bookingHandler.GetBlockedDates).Methods("GET")
	r.HandleFunc("/api/hosts/login", hostAuthHandler.Login).Methods("POST")
	r.HandleFunc("/api/hosts/register", hostAuthHandler.Register).Methods("POST")
	r.HandleFunc("/api/webhooks/stripe", webhookHandler.HandleWebhook).Methods("POST")

	// Host endpoints (protected)
	host := r.PathPrefix("/api/host").Subrouter()
	host.Use(auth.Middleware)
	host.HandleFunc("/properties/{id}/stats", propertyHandler.GetPropertyStats).Methods("GET")
	host.HandleFunc("/properties/{id}/reservations", bookingHandler.ListPropertyReservations).Methods("GET")

	c := cron.New()
	c.AddFunc("@every 15m", func() {
		if err := jobSvc.CompletePastCheckouts(); err != nil {
			log.Printf("Cron Job error: %v", err)
		}
	})
	c.AddFunc("@every 1h", func() {
		n, err := jobSvc.CancelStalePending(2 * time.Hour)
		if err != nil {
			log.Printf("Cron Job error: %v", err)
			return
		}
		if n > 0 {
			log.Printf("Cron Job: cancelled %d stale pending reservations", n)
		}
	})
	c.Start()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{os.Getenv("CORS_ORIGIN")}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handlers.LoggingHandler(os.Stdout, cors(r))))
}
