package basket_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-store/internal/basket"
	"github.com/noah-isme/backend-store/internal/common"
	"github.com/noah-isme/backend-store/internal/inventory"
)

func seedStore(t *testing.T) (*inventory.MemoryStore, inventory.Product, inventory.Product) {
	t.Helper()
	store := inventory.NewMemoryStore()
	ctx := context.Background()

	cpu := inventory.Category{Name: "CPU"}
	require.NoError(t, store.CreateCategory(ctx, &cpu))

	i9 := inventory.Product{
		Name:       "Intel Core i9-9900K",
		Price:      decimal.RequireFromString("475.99"),
		Quantity:   10,
		Categories: []inventory.Category{cpu},
	}
	require.NoError(t, store.CreateProduct(ctx, &i9))

	ryzen := inventory.Product{
		Name:       "AMD Ryzen 7 2700X",
		Price:      decimal.RequireFromString("549.99"),
		Quantity:   10,
		Categories: []inventory.Category{cpu},
	}
	require.NoError(t, store.CreateProduct(ctx, &ryzen))

	return store, i9, ryzen
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(want).Equal(got), "want %s got %s", want, got)
}

func TestCalculateSharedCategoryDiscount(t *testing.T) {
	store, i9, ryzen := seedStore(t)
	svc := &basket.Service{Store: store}

	result, err := svc.Calculate(context.Background(), []basket.Item{
		{ProductID: i9.ID, Quantity: 1},
		{ProductID: ryzen.ID, Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)

	first := result.Items[0]
	require.Equal(t, "Intel Core i9-9900K", first.ProductName)
	requireDecimal(t, "5", first.Discount)
	requireDecimal(t, "452.1905", first.FinalPrice)

	second := result.Items[1]
	require.Equal(t, "AMD Ryzen 7 2700X", second.ProductName)
	requireDecimal(t, "0", second.Discount)
	requireDecimal(t, "549.99", second.FinalPrice)

	requireDecimal(t, "1025.98", result.TotalPrice)
	requireDecimal(t, "23.7995", result.TotalDiscount)
	requireDecimal(t, "1002.1805", result.FinalPrice)
}

func TestCalculateDiscountCoversOneUnitOnly(t *testing.T) {
	store, i9, ryzen := seedStore(t)
	svc := &basket.Service{Store: store}

	result, err := svc.Calculate(context.Background(), []basket.Item{
		{ProductID: i9.ID, Quantity: 3},
		{ProductID: ryzen.ID, Quantity: 1},
	})
	require.NoError(t, err)

	// one unit at 95%, two at full price
	requireDecimal(t, "1404.1705", result.Items[0].FinalPrice)
	requireDecimal(t, "23.7995", result.TotalDiscount)
	requireDecimal(t, "1977.96", result.TotalPrice)
}

func TestCalculateLoneProductNoDiscount(t *testing.T) {
	store, i9, _ := seedStore(t)
	svc := &basket.Service{Store: store}

	result, err := svc.Calculate(context.Background(), []basket.Item{
		{ProductID: i9.ID, Quantity: 2},
	})
	require.NoError(t, err)
	requireDecimal(t, "0", result.Items[0].Discount)
	requireDecimal(t, "951.98", result.FinalPrice)
	requireDecimal(t, "0", result.TotalDiscount)
}

func TestCalculateDuplicateEntriesCollapse(t *testing.T) {
	store, i9, ryzen := seedStore(t)
	svc := &basket.Service{Store: store}

	result, err := svc.Calculate(context.Background(), []basket.Item{
		{ProductID: i9.ID, Quantity: 1},
		{ProductID: ryzen.ID, Quantity: 1},
		{ProductID: i9.ID, Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	// first-seen order, latest-seen quantity
	require.Equal(t, "Intel Core i9-9900K", result.Items[0].ProductName)
	require.Equal(t, 2, result.Items[0].Quantity)
}

func TestCalculateEmptyBasket(t *testing.T) {
	store, _, _ := seedStore(t)
	svc := &basket.Service{Store: store}

	_, err := svc.Calculate(context.Background(), nil)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeInvalidArgument, appErr.Code)
}

func TestCalculateUnknownProduct(t *testing.T) {
	store, _, _ := seedStore(t)
	svc := &basket.Service{Store: store}

	_, err := svc.Calculate(context.Background(), []basket.Item{{ProductID: 999, Quantity: 1}})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeNotFound, appErr.Code)
	require.True(t, errors.Is(err, inventory.ErrNotFound))
}

func TestCalculateInsufficientStock(t *testing.T) {
	store, i9, _ := seedStore(t)
	svc := &basket.Service{Store: store}

	_, err := svc.Calculate(context.Background(), []basket.Item{{ProductID: i9.ID, Quantity: 11}})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeInsufficientStock, appErr.Code)
	require.Equal(t, "insufficient stock for product Intel Core i9-9900K. requested: 11, available: 10", appErr.Message)
}

func TestCalculateCustomRate(t *testing.T) {
	store, i9, ryzen := seedStore(t)
	svc := &basket.Service{Store: store, RatePercent: 10}

	result, err := svc.Calculate(context.Background(), []basket.Item{
		{ProductID: i9.ID, Quantity: 1},
		{ProductID: ryzen.ID, Quantity: 1},
	})
	require.NoError(t, err)
	requireDecimal(t, "10", result.Items[0].Discount)
	requireDecimal(t, "47.599", result.TotalDiscount)
}
