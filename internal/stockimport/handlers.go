package stockimport

import (
	"encoding/json"
	"net/http"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-store/internal/common"
)

// Handler exposes the stock import endpoint.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type importRequest struct {
	Records []Record `json:"records" validate:"required,min=1,dive"`
}

// Import handles POST /api/v1/stock/import.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "stock import service not configured", nil)
		return
	}
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeInvalidArgument, "invalid request body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, common.CodeInvalidArgument, "each record needs a name, a price, and at least one category", nil)
			return
		}
	}
	result, err := h.Svc.Import(r.Context(), req.Records)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}
