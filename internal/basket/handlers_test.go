package basket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-store/internal/app"
	"github.com/noah-isme/backend-store/internal/basket"
	"github.com/noah-isme/backend-store/internal/inventory"
)

func newHandler(t *testing.T) (*basket.Handler, inventory.Product, inventory.Product) {
	t.Helper()
	store := inventory.NewMemoryStore()
	ctx := context.Background()

	cpu := inventory.Category{Name: "CPU"}
	require.NoError(t, store.CreateCategory(ctx, &cpu))
	a := inventory.Product{Name: "A", Price: decimal.RequireFromString("100.00"), Quantity: 5, Categories: []inventory.Category{cpu}}
	require.NoError(t, store.CreateProduct(ctx, &a))
	b := inventory.Product{Name: "B", Price: decimal.RequireFromString("50.00"), Quantity: 5, Categories: []inventory.Category{cpu}}
	require.NoError(t, store.CreateProduct(ctx, &b))

	return &basket.Handler{
		Svc:      &basket.Service{Store: store},
		Validate: app.NewValidator(),
	}, a, b
}

func TestCalculateHandlerSuccess(t *testing.T) {
	handler, _, _ := newHandler(t)

	body := `{"items":[{"productId":1,"quantity":1},{"productId":2,"quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/basket/calculate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Calculate(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var envelope struct {
		Data basket.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Items, 2)
	require.True(t, decimal.RequireFromString("150").Equal(envelope.Data.TotalPrice))
	require.True(t, decimal.RequireFromString("5").Equal(envelope.Data.TotalDiscount))
}

func TestCalculateHandlerInvalidBody(t *testing.T) {
	handler, _, _ := newHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/basket/calculate", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	handler.Calculate(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCalculateHandlerRejectsNonPositiveQuantity(t *testing.T) {
	handler, _, _ := newHandler(t)

	body := `{"items":[{"productId":1,"quantity":0}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/basket/calculate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Calculate(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCalculateHandlerEmptyBasket(t *testing.T) {
	handler, _, _ := newHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/basket/calculate", strings.NewReader(`{"items":[]}`))
	rr := httptest.NewRecorder()
	handler.Calculate(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	require.Equal(t, "INVALID_ARGUMENT", envelope.Error.Code)
}

func TestCalculateHandlerInsufficientStock(t *testing.T) {
	handler, a, _ := newHandler(t)

	body := `{"items":[{"productId":1,"quantity":6}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/basket/calculate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Calculate(rr, req)
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Contains(t, rr.Body.String(), "insufficient stock for product "+a.Name)
}
