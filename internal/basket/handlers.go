package basket

import (
	"encoding/json"
	"net/http"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-store/internal/common"
)

// Handler exposes the basket pricing endpoint.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type calculateRequest struct {
	Items []Item `json:"items" validate:"omitempty,dive"`
}

// Calculate handles POST /api/v1/basket/calculate.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "basket service not configured", nil)
		return
	}
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeInvalidArgument, "invalid request body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, common.CodeInvalidArgument, "quantity must be a positive integer", nil)
			return
		}
	}
	result, err := h.Svc.Calculate(r.Context(), req.Items)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}
