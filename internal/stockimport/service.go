package stockimport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-store/internal/basket"
	"github.com/noah-isme/backend-store/internal/inventory"
	"github.com/noah-isme/backend-store/internal/obs"
)

const (
	importLockKey = "stockimport:lock"
	importLockTTL = 2 * time.Minute
)

// Record is one bulk stock entry to reconcile against inventory.
type Record struct {
	Name        string          `json:"name" validate:"required"`
	Categories  []string        `json:"categories" validate:"required,min=1,dive,required"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
}

// Failure reports a record the inventory accessor refused. Later records keep
// processing regardless.
type Failure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Result summarises an import batch. Items reuse the basket line shape with a
// zero discount.
type Result struct {
	BatchID  string              `json:"batchId"`
	Items    []basket.LineResult `json:"items"`
	Failures []Failure           `json:"failures,omitempty"`
}

type inventoryStore interface {
	GetProductByName(ctx context.Context, name string) (inventory.Product, error)
	CreateProduct(ctx context.Context, p *inventory.Product) error
	UpdateProduct(ctx context.Context, p inventory.Product) (inventory.Product, error)
	SetStock(ctx context.Context, id int64, quantity int) error
	GetCategoryByName(ctx context.Context, name string) (inventory.Category, error)
	CreateCategory(ctx context.Context, c *inventory.Category) error
}

type batchGuard interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Service merges stock import batches into inventory. A guard, when present,
// keeps concurrent batches from interleaving their reads and writes.
type Service struct {
	Store inventoryStore
	Guard batchGuard
}

// Import reconciles each record independently: existing products are updated
// under the selective-field policy, missing products are created along with
// any missing categories. An accessor failure on one record is collected and
// never aborts the rest of the batch.
func (s *Service) Import(ctx context.Context, records []Record) (Result, error) {
	if s == nil || s.Store == nil {
		return Result{}, errors.New("stock import service not configured")
	}
	result := Result{
		BatchID: uuid.NewString(),
		Items:   make([]basket.LineResult, 0, len(records)),
	}
	run := func(ctx context.Context) error {
		for _, rec := range records {
			if err := s.applyRecord(ctx, rec); err != nil {
				observeRecord("failed")
				result.Failures = append(result.Failures, Failure{Name: rec.Name, Reason: err.Error()})
				continue
			}
			observeRecord("ok")
			result.Items = append(result.Items, basket.LineResult{
				ProductName: rec.Name,
				UnitPrice:   rec.Price,
				Quantity:    rec.Quantity,
				Discount:    decimal.Zero,
				FinalPrice:  rec.Price.Mul(decimal.NewFromInt(int64(rec.Quantity))),
			})
		}
		return nil
	}
	if obs.StockImportBatchTotal != nil {
		obs.StockImportBatchTotal.Inc()
	}
	if s.Guard != nil {
		if err := s.Guard.WithLock(ctx, importLockKey, importLockTTL, run); err != nil {
			return Result{}, fmt.Errorf("acquire import lock: %w", err)
		}
		return result, nil
	}
	if err := run(ctx); err != nil {
		return Result{}, err
	}
	return result, nil
}

func observeRecord(result string) {
	if obs.StockImportRecordsTotal != nil {
		obs.StockImportRecordsTotal.WithLabelValues(result).Inc()
	}
}

func (s *Service) applyRecord(ctx context.Context, rec Record) error {
	existing, err := s.Store.GetProductByName(ctx, rec.Name)
	switch {
	case err == nil:
		// Selective update: a non-empty description overwrites the stored one
		// via a scalar update; otherwise only the quantity is set, as an
		// absolute value.
		if rec.Description != "" {
			existing.Description = rec.Description
			if _, err := s.Store.UpdateProduct(ctx, existing); err != nil {
				return fmt.Errorf("update product %q: %w", rec.Name, err)
			}
			return nil
		}
		if err := s.Store.SetStock(ctx, existing.ID, rec.Quantity); err != nil {
			return fmt.Errorf("set stock for %q: %w", rec.Name, err)
		}
		return nil

	case errors.Is(err, inventory.ErrNotFound):
		product := inventory.Product{
			Name:        rec.Name,
			Description: rec.Description,
			Price:       rec.Price,
			Quantity:    rec.Quantity,
		}
		for _, raw := range rec.Categories {
			// Category names are trimmed but matched case-sensitively.
			name := strings.TrimSpace(raw)
			category, err := s.Store.GetCategoryByName(ctx, name)
			if errors.Is(err, inventory.ErrNotFound) {
				category = inventory.Category{Name: name}
				if err := s.Store.CreateCategory(ctx, &category); err != nil {
					return fmt.Errorf("create category %q: %w", name, err)
				}
			} else if err != nil {
				return fmt.Errorf("find category %q: %w", name, err)
			}
			product.Categories = append(product.Categories, category)
		}
		if err := s.Store.CreateProduct(ctx, &product); err != nil {
			return fmt.Errorf("create product %q: %w", rec.Name, err)
		}
		return nil

	default:
		return fmt.Errorf("find product %q: %w", rec.Name, err)
	}
}
