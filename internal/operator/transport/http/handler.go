package http

import (
	"encoding/json"
	"net/http"

	"tradel/internal/api/dto"
	"tradel/internal/operator/service"
	"tradel/pkg/middleware"
)

type Handler struct {
	OperatorService *service.Service
}

func NewHandler(s *service.Service) *Handler {
	return &Handler{OperatorService: s}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err, "")
		return
	}

	token, err := h.OperatorService.Login(req.Email, req.Password)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}
