package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"staybook/internal/entities"
	apperrors "staybook/internal/errors"
	"staybook/internal/service"
	"staybook/internal/utils"
)

type BookingHandler struct {
	Service *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req entities.AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidationError("body", "invalid request"))
		return
	}
	result, err := h.Service.CheckConflicts(req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *BookingHandler) CalculateTotal(w http.ResponseWriter, r *http.Request) {
	var req entities.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidationError("body", "invalid request"))
		return
	}
	quote, err := h.Service.CalculateTotal(req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

func (h *BookingHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req entities.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidationError("body", "invalid request"))
		return
	}
	res, err := h.Service.CreateOrder(req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

func (h *BookingHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	res, err := h.Service.GetReservation(id)
	if err != nil {
		respondError(w, apperrors.ErrNotFound("reservation not found"))
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *BookingHandler) ConfirmReservation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	res, err := h.Service.ConfirmOrder(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *BookingHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req entities.CancelReservationRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	res, err := h.Service.CancelOrder(id, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *BookingHandler) CompleteReservation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	res, err := h.Service.CompleteOrder(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *BookingHandler) GetBlockedDates(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	resp, err := h.Service.GetBlockedDates(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// ListPropertyReservations serves host dashboards.
func (h *BookingHandler) ListPropertyReservations(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	status := r.URL.Query().Get("status")
	reservations, err := h.Service.ListReservations(id, status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reservations)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, apperrors.StatusFor(err), map[string]string{"error": err.Error()})
}

// parseQueryDate reads an optional YYYY-MM-DD query parameter.
func parseQueryDate(r *http.Request, name string) *time.Time {
	return utils.ParseDateParam(r.URL.Query().Get(name))
}
