package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"staybook/internal/availability"
	"staybook/internal/entities"
	apperrors "staybook/internal/errors"
)

// Client talks to the booking backend over HTTP and implements BookingAPI.
// Transport failures and 5xx responses come back as NetworkError so the
// coordinator rolls back; 4xx responses map onto the matching typed error.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken attaches a bearer token to subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Reservation, error) {
	var resv Reservation
	if err := c.doJSON(ctx, http.MethodPost, "/api/reservations", req, &resv); err != nil {
		return nil, err
	}
	return &resv, nil
}

func (c *Client) ConfirmOrder(ctx context.Context, id string) (*Reservation, error) {
	var resv Reservation
	if err := c.doJSON(ctx, http.MethodPost, "/api/reservations/"+id+"/confirm", nil, &resv); err != nil {
		return nil, err
	}
	return &resv, nil
}

func (c *Client) CancelOrder(ctx context.Context, id, reason string) (*Reservation, error) {
	var resv Reservation
	body := entities.CancelReservationRequest{Reason: reason}
	if err := c.doJSON(ctx, http.MethodPost, "/api/reservations/"+id+"/cancel", body, &resv); err != nil {
		return nil, err
	}
	return &resv, nil
}

func (c *Client) CompleteOrder(ctx context.Context, id string) (*Reservation, error) {
	var resv Reservation
	if err := c.doJSON(ctx, http.MethodPost, "/api/reservations/"+id+"/complete", nil, &resv); err != nil {
		return nil, err
	}
	return &resv, nil
}

func (c *Client) CheckConflicts(ctx context.Context, propertyID string, checkIn, checkOut time.Time, excludeID string) (*availability.ConflictResult, error) {
	req := entities.AvailabilityRequest{
		PropertyID: propertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		ExcludeID:  excludeID,
	}
	var result availability.ConflictResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/availability", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CalculateTotal(ctx context.Context, propertyID string, checkIn, checkOut time.Time, guests int) (*availability.Quote, error) {
	req := entities.QuoteRequest{
		PropertyID: propertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     guests,
	}
	var quote availability.Quote
	if err := c.doJSON(ctx, http.MethodPost, "/api/quotes", req, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// SearchProperties fetches one page of properties matching the query.
func (c *Client) SearchProperties(ctx context.Context, q entities.SearchQuery) (*entities.PropertySearchPage, error) {
	v := url.Values{}
	if q.Location != "" {
		v.Set("location", q.Location)
	}
	if q.CheckIn != nil {
		v.Set("check_in", q.CheckIn.Format("2006-01-02"))
	}
	if q.CheckOut != nil {
		v.Set("check_out", q.CheckOut.Format("2006-01-02"))
	}
	if q.Guests > 0 {
		v.Set("guests", strconv.Itoa(q.Guests))
	}
	if q.MinPrice > 0 {
		v.Set("min_price", strconv.FormatInt(q.MinPrice, 10))
	}
	if q.MaxPrice > 0 {
		v.Set("max_price", strconv.FormatInt(q.MaxPrice, 10))
	}
	if q.Bedrooms > 0 {
		v.Set("bedrooms", strconv.Itoa(q.Bedrooms))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	path := "/api/properties"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var page entities.PropertySearchPage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetBlockedDates fetches the occupied spans for a property.
func (c *Client) GetBlockedDates(ctx context.Context, propertyID string) (*entities.BlockedDatesResponse, error) {
	var resp entities.BlockedDatesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/properties/"+propertyID+"/blocked-dates", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &apperrors.NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error == "" {
			errBody.Error = resp.Status
		}
		switch resp.StatusCode {
		case http.StatusBadRequest:
			return apperrors.NewValidationError("", errBody.Error)
		case http.StatusConflict:
			return &apperrors.ConflictError{Message: errBody.Error}
		case http.StatusUnprocessableEntity:
			return &apperrors.StateError{From: "remote", To: errBody.Error}
		default:
			return &apperrors.NetworkError{Op: method + " " + path, Err: fmt.Errorf("backend returned %s: %s", resp.Status, errBody.Error)}
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &apperrors.NetworkError{Op: method + " " + path, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
