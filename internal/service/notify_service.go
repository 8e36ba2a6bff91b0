package service

import (
	"fmt"
	"log"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"staybook/internal/availability"
	"staybook/internal/db"
	"staybook/internal/entities"
)

type NotifyService struct{}

func NewNotifyService() *NotifyService {
	return &NotifyService{}
}

// SendReservationEmail emails the guest their booking summary. Delivery is
// async; a failure is logged, never surfaced to the booking flow.
func (s *NotifyService) SendReservationEmail(res *db.Reservation, propertyTitle string) {
	nights, err := availability.Nights(res.CheckIn, res.CheckOut)
	if err != nil {
		nights = 0
	}
	data := entities.ReservationEmailData{
		GuestName:         res.GuestName,
		ReservationID:     res.ID,
		PropertyTitle:     propertyTitle,
		CheckInFormatted:  res.CheckIn.Format("02 Jan 2006"),
		CheckOutFormatted: res.CheckOut.Format("02 Jan 2006"),
		Nights:            nights,
		TotalFormatted:    fmt.Sprintf("$%.2f", float64(res.TotalAmount)/100),
		Status:            res.Status,
	}

	subject := fmt.Sprintf("Your Staybook reservation is %s - %s", data.Status, data.PropertyTitle)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour reservation at %s is %s.\n\n"+
			"Reservation Details:\n"+
			"Reservation ID: %s\n"+
			"Check-in: %s\n"+
			"Check-out: %s\n"+
			"Nights: %d\n"+
			"Total: %s\n\n"+
			"Thank you for booking with Staybook.",
		data.GuestName, data.PropertyTitle, data.Status,
		data.ReservationID, data.CheckInFormatted, data.CheckOutFormatted,
		data.Nights, data.TotalFormatted,
	)

	go func(toEmail, toName string) {
		if err := sendEmailWithSendGrid(toEmail, toName, subject, body); err != nil {
			log.Printf("Email for reservation %s failed: %v", data.ReservationID, err)
		}
	}(res.GuestEmail, res.GuestName)
}

// SendReservationSMS texts the guest a short booking confirmation.
func (s *NotifyService) SendReservationSMS(res *db.Reservation) {
	if res.GuestPhone == "" {
		return
	}
	msg := fmt.Sprintf("Staybook: reservation %s is %s. Check-in: %s. Details in your email.",
		res.ID, res.Status, res.CheckIn.Format("02 Jan"))
	if err := sendSMS(res.GuestPhone, msg); err != nil {
		log.Printf("SMS for reservation %s failed: %v", res.ID, err)
	}
}

// SendStatusSMS texts the guest on lifecycle changes.
func (s *NotifyService) SendStatusSMS(res *db.Reservation) {
	if res.GuestPhone == "" {
		return
	}
	msg := fmt.Sprintf("Staybook: reservation %s is now %s.", res.ID, res.Status)
	if err := sendSMS(res.GuestPhone, msg); err != nil {
		log.Printf("SMS for reservation %s failed: %v", res.ID, err)
	}
}

func sendEmailWithSendGrid(toEmail, toName, subject, body string) error {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	fromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
	if apiKey == "" || fromEmail == "" {
		return fmt.Errorf("sendgrid not configured")
	}

	from := mail.NewEmail("Staybook", fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, body)

	client := sendgrid.NewSendClient(apiKey)
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

func sendSMS(to, message string) error {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_FROM_NUMBER")

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(message)

	_, err := client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}
