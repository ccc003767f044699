package basket

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-store/internal/common"
	"github.com/noah-isme/backend-store/internal/inventory"
	"github.com/noah-isme/backend-store/internal/obs"
)

// DefaultRatePercent is the promotional discount rate applied to recipients.
const DefaultRatePercent = 5

// Item is a caller-supplied basket entry.
type Item struct {
	ProductID int64 `json:"productId" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// LineResult is one priced entry of a basket result. Discount holds the
// applied percentage, not an amount.
type LineResult struct {
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	Discount    decimal.Decimal `json:"discount"`
	FinalPrice  decimal.Decimal `json:"finalPrice"`
}

// Result aggregates priced lines and basket totals.
type Result struct {
	Items         []LineResult    `json:"items"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	TotalDiscount decimal.Decimal `json:"totalDiscount"`
	FinalPrice    decimal.Decimal `json:"finalPrice"`
}

type inventoryReader interface {
	GetProduct(ctx context.Context, id int64) (inventory.Product, error)
}

// Service prices baskets against inventory. It never mutates stock.
type Service struct {
	Store       inventoryReader
	RatePercent int64
}

func (s *Service) rate() decimal.Decimal {
	percent := s.RatePercent
	if percent <= 0 {
		percent = DefaultRatePercent
	}
	return decimal.NewFromInt(percent)
}

// Calculate validates the basket against inventory, applies the discount rule,
// and returns the priced result. Lines appear in the order their products were
// first encountered; duplicate entries for one product collapse into the
// latest-seen quantity.
func (s *Service) Calculate(ctx context.Context, items []Item) (Result, error) {
	if s == nil || s.Store == nil {
		return Result{}, errors.New("basket service not configured")
	}
	if len(items) == 0 {
		observeCalc("invalid")
		return Result{}, common.InvalidArgument("basket cannot be empty")
	}

	var order []int64
	byID := map[int64]Line{}
	for _, item := range items {
		product, err := s.Store.GetProduct(ctx, item.ProductID)
		if err != nil {
			observeCalc("error")
			if errors.Is(err, inventory.ErrNotFound) {
				return Result{}, common.NotFound(fmt.Sprintf("product with id %d not found", item.ProductID), err)
			}
			return Result{}, fmt.Errorf("resolve product %d: %w", item.ProductID, err)
		}
		if product.Quantity < item.Quantity {
			observeCalc("insufficient_stock")
			return Result{}, common.InsufficientStock(product.Name, item.Quantity, product.Quantity)
		}
		if _, ok := byID[product.ID]; !ok {
			order = append(order, product.ID)
		}
		byID[product.ID] = Line{Product: product, Qty: item.Quantity}
	}

	lines := make([]Line, 0, len(order))
	for _, id := range order {
		lines = append(lines, byID[id])
	}
	recipients := DiscountRecipients(lines)

	rate := s.rate()
	fraction := rate.Div(decimal.NewFromInt(100))

	result := Result{
		Items:         make([]LineResult, 0, len(lines)),
		TotalPrice:    decimal.Zero,
		TotalDiscount: decimal.Zero,
	}
	for _, ln := range lines {
		price := ln.Product.Price
		qty := ln.Qty
		line := LineResult{
			ProductName: ln.Product.Name,
			UnitPrice:   price,
			Quantity:    qty,
			Discount:    decimal.Zero,
			FinalPrice:  decimal.Zero,
		}
		discountAmount := decimal.Zero
		switch {
		case recipients[ln.Product.ID]:
			line.Discount = rate
			// First unit at the reduced price, remainder at full price. The
			// recorded discount amount is exactly one unit's worth.
			if qty > 0 {
				firstUnit := price.Mul(decimal.NewFromInt(1).Sub(fraction))
				rest := decimal.Zero
				if qty > 1 {
					rest = price.Mul(decimal.NewFromInt(int64(qty - 1)))
				}
				line.FinalPrice = firstUnit.Add(rest)
				discountAmount = price.Mul(fraction)
			}
		case qty > 0:
			line.FinalPrice = price.Mul(decimal.NewFromInt(int64(qty)))
		}

		result.Items = append(result.Items, line)
		observeLine(recipients[ln.Product.ID])
		if qty > 0 {
			result.TotalPrice = result.TotalPrice.Add(price.Mul(decimal.NewFromInt(int64(qty))))
		}
		result.TotalDiscount = result.TotalDiscount.Add(discountAmount)
	}
	result.FinalPrice = result.TotalPrice.Sub(result.TotalDiscount)
	observeCalc("ok")
	return result, nil
}

func observeCalc(result string) {
	if obs.BasketCalcTotal != nil {
		obs.BasketCalcTotal.WithLabelValues(result).Inc()
	}
}

func observeLine(discounted bool) {
	if obs.BasketLineTotal != nil {
		obs.BasketLineTotal.WithLabelValues(strconv.FormatBool(discounted)).Inc()
	}
}
