package stockimport_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-store/internal/inventory"
	"github.com/noah-isme/backend-store/internal/stockimport"
)

func TestImportCreatesProductWithCategories(t *testing.T) {
	store := inventory.NewMemoryStore()
	svc := &stockimport.Service{Store: store}

	result, err := svc.Import(context.Background(), []stockimport.Record{
		{
			Name:        "Kingston A400 480GB",
			Categories:  []string{" Storage ", "SSD"},
			Price:       decimal.RequireFromString("39.99"),
			Description: "Budget SATA SSD",
			Quantity:    15,
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.BatchID)
	require.Len(t, result.Items, 1)
	require.Empty(t, result.Failures)

	product, err := store.GetProductByName(context.Background(), "Kingston A400 480GB")
	require.NoError(t, err)
	require.Equal(t, 15, product.Quantity)
	require.Equal(t, "Budget SATA SSD", product.Description)
	require.Len(t, product.Categories, 2)
	// category names are trimmed before matching
	require.Equal(t, "Storage", product.Categories[0].Name)
	require.Equal(t, "SSD", product.Categories[1].Name)
}

func TestImportReusesExistingCategory(t *testing.T) {
	store := inventory.NewMemoryStore()
	ctx := context.Background()
	existing := inventory.Category{Name: "Storage"}
	require.NoError(t, store.CreateCategory(ctx, &existing))

	svc := &stockimport.Service{Store: store}
	_, err := svc.Import(ctx, []stockimport.Record{
		{Name: "WD Blue 1TB", Categories: []string{"Storage"}, Price: decimal.RequireFromString("49.99"), Quantity: 5},
	})
	require.NoError(t, err)

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	require.Equal(t, existing.ID, categories[0].ID)
}

func TestImportCategoryMatchIsCaseSensitive(t *testing.T) {
	store := inventory.NewMemoryStore()
	ctx := context.Background()
	existing := inventory.Category{Name: "storage"}
	require.NoError(t, store.CreateCategory(ctx, &existing))

	svc := &stockimport.Service{Store: store}
	_, err := svc.Import(ctx, []stockimport.Record{
		{Name: "WD Blue 1TB", Categories: []string{"Storage"}, Price: decimal.RequireFromString("49.99"), Quantity: 5},
	})
	require.NoError(t, err)

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
}

func TestImportUpdatesDescriptionWhenPresent(t *testing.T) {
	store := inventory.NewMemoryStore()
	ctx := context.Background()
	cpu := inventory.Category{Name: "CPU"}
	require.NoError(t, store.CreateCategory(ctx, &cpu))
	product := inventory.Product{
		Name:        "Intel Core i5-9600K",
		Description: "old",
		Price:       decimal.RequireFromString("262.97"),
		Quantity:    7,
		Categories:  []inventory.Category{cpu},
	}
	require.NoError(t, store.CreateProduct(ctx, &product))

	svc := &stockimport.Service{Store: store}
	_, err := svc.Import(ctx, []stockimport.Record{
		{Name: "Intel Core i5-9600K", Categories: []string{"CPU"}, Price: decimal.RequireFromString("199.99"), Description: "6 cores, 6 threads", Quantity: 99},
	})
	require.NoError(t, err)

	updated, err := store.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, "6 cores, 6 threads", updated.Description)
	// only the description is overwritten on this path
	require.Equal(t, 7, updated.Quantity)
	require.True(t, decimal.RequireFromString("262.97").Equal(updated.Price))
}

func TestImportSetsStockWhenDescriptionEmpty(t *testing.T) {
	store := inventory.NewMemoryStore()
	ctx := context.Background()
	product := inventory.Product{
		Name:        "Intel Core i5-9600K",
		Description: "keep me",
		Price:       decimal.RequireFromString("262.97"),
		Quantity:    7,
	}
	require.NoError(t, store.CreateProduct(ctx, &product))

	svc := &stockimport.Service{Store: store}
	_, err := svc.Import(ctx, []stockimport.Record{
		{Name: "Intel Core i5-9600K", Categories: []string{"CPU"}, Price: decimal.RequireFromString("199.99"), Quantity: 42},
	})
	require.NoError(t, err)

	updated, err := store.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	// quantity is absolute, not additive
	require.Equal(t, 42, updated.Quantity)
	require.Equal(t, "keep me", updated.Description)
}

type flakyStore struct {
	*inventory.MemoryStore
	failName string
}

func (f flakyStore) GetProductByName(ctx context.Context, name string) (inventory.Product, error) {
	if name == f.failName {
		return inventory.Product{}, errors.New("connection reset")
	}
	return f.MemoryStore.GetProductByName(ctx, name)
}

func TestImportCollectsFailuresAndContinues(t *testing.T) {
	store := flakyStore{MemoryStore: inventory.NewMemoryStore(), failName: "Broken"}
	svc := &stockimport.Service{Store: store}

	result, err := svc.Import(context.Background(), []stockimport.Record{
		{Name: "Broken", Categories: []string{"CPU"}, Price: decimal.RequireFromString("10.00"), Quantity: 1},
		{Name: "Fine", Categories: []string{"CPU"}, Price: decimal.RequireFromString("20.00"), Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, result.Failures, 1)
	require.Equal(t, "Broken", result.Failures[0].Name)
	require.Contains(t, result.Failures[0].Reason, "connection reset")
	require.Len(t, result.Items, 1)
	require.Equal(t, "Fine", result.Items[0].ProductName)

	_, err = store.MemoryStore.GetProductByName(context.Background(), "Fine")
	require.NoError(t, err)
}
