package service

import (
	"context"
	"fmt"
	"os"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/paymentintent"
	"github.com/stripe/stripe-go/v78/refund"
)

// StripeService is the payment collaborator. It satisfies
// booking.PaymentProvider so the client-side coordinator and the server-side
// booking service share one implementation.
type StripeService struct {
	successURL string
	cancelURL  string
}

func NewStripeService() *StripeService {
	return &StripeService{
		successURL: os.Getenv("CHECKOUT_SUCCESS_URL"),
		cancelURL:  os.Getenv("CHECKOUT_CANCEL_URL"),
	}
}

// CreateCheckoutSession opens a Stripe Checkout session for a reservation.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, reservationID string, amount int64, currency, customerEmail string) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Reservation " + reservationID),
					},
					UnitAmount: stripe.Int64(amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(s.successURL),
		CancelURL:     stripe.String(s.cancelURL),
		CustomerEmail: stripe.String(customerEmail),
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	return sess.URL, sess.ID, nil
}

// ConfirmPaymentIntent confirms a payment intent created by checkout.
func (s *StripeService) ConfirmPaymentIntent(ctx context.Context, paymentIntentID string) error {
	params := &stripe.PaymentIntentConfirmParams{}
	params.Context = ctx
	_, err := paymentintent.Confirm(paymentIntentID, params)
	return err
}

// Refund refunds the full amount of a payment intent.
func (s *StripeService) Refund(ctx context.Context, paymentIntentID string) error {
	if paymentIntentID == "" {
		return fmt.Errorf("no payment intent to refund")
	}
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Context = ctx
	_, err := refund.New(params)
	return err
}
