package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"staybook/internal/service"
)

type StripeWebhookHandler struct {
	webhookSecret  string
	bookingService *service.BookingService
}

func NewStripeWebhookHandler(webhookSecret string, bookingService *service.BookingService) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		webhookSecret:  webhookSecret,
		bookingService: bookingService,
	}
}

// HandleWebhook records checkout outcomes on the reservation's payment
// status. Lifecycle transitions never happen here; payment state is a
// separate field by design.
func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading webhook body: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sigHeader, h.webhookSecret)
	if err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			log.Printf("Error parsing checkout.session: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if sess.ID == "" {
			log.Printf("No session ID in checkout.session.completed")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		paymentIntentID := ""
		if sess.PaymentIntent != nil {
			paymentIntentID = sess.PaymentIntent.ID
		}
		if err := h.bookingService.MarkPaidBySessionID(sess.ID, paymentIntentID); err != nil {
			log.Printf("DB error recording payment: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	default:
		log.Printf("Ignoring webhook event type %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}
