package api

import (
	"encoding/json"
	"net/http"

	apperrors "staybook/internal/errors"
	"staybook/internal/service"
)

type HostAuthHandler struct {
	service service.HostAuthService
}

func NewHostAuthHandler(svc service.HostAuthService) *HostAuthHandler {
	return &HostAuthHandler{service: svc}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

func (h *HostAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidationError("body", "invalid request"))
		return
	}

	token, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		respondError(w, apperrors.ErrUnauthorized("invalid credentials"))
		return
	}

	respondJSON(w, http.StatusOK, LoginResponse{Token: token})
}

func (h *HostAuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidationError("body", "invalid request"))
		return
	}

	if err := h.service.CreateHost(req.Email, req.Name, req.Password); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"message": "Host registered"})
}
