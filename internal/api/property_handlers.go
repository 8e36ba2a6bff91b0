package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"staybook/internal/entities"
	apperrors "staybook/internal/errors"
	"staybook/internal/service"
)

type PropertyHandler struct {
	Service *service.BookingService
}

func NewPropertyHandler(svc *service.BookingService) *PropertyHandler {
	return &PropertyHandler{Service: svc}
}

// SearchProperties handles GET /api/properties with the closed filter set.
func (h *PropertyHandler) SearchProperties(w http.ResponseWriter, r *http.Request) {
	q := entities.SearchQuery{
		Location: r.URL.Query().Get("location"),
		CheckIn:  parseQueryDate(r, "check_in"),
		CheckOut: parseQueryDate(r, "check_out"),
		Guests:   queryInt(r, "guests"),
		MinPrice: int64(queryInt(r, "min_price")),
		MaxPrice: int64(queryInt(r, "max_price")),
		Bedrooms: queryInt(r, "bedrooms"),
		Page:     queryInt(r, "page"),
		PerPage:  queryInt(r, "per_page"),
	}
	page, err := h.Service.SearchProperties(q)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *PropertyHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	property, err := h.Service.GetProperty(id)
	if err != nil {
		respondError(w, apperrors.ErrNotFound("property not found"))
		return
	}
	respondJSON(w, http.StatusOK, property)
}

func (h *PropertyHandler) GetPropertyStats(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	stats, err := h.Service.GetPropertyStats(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func queryInt(r *http.Request, name string) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
