package basket

import (
	"testing"

	"github.com/noah-isme/backend-store/internal/inventory"
)

func product(id int64, categories ...string) inventory.Product {
	p := inventory.Product{ID: id}
	for i, name := range categories {
		p.Categories = append(p.Categories, inventory.Category{ID: int64(i + 1), Name: name})
	}
	return p
}

func TestDiscountRecipientsSingleProductInCategory(t *testing.T) {
	recipients := DiscountRecipients([]Line{
		{Product: product(1, "CPU"), Qty: 3},
	})
	if len(recipients) != 0 {
		t.Fatalf("a lone product must not qualify, got %v", recipients)
	}
}

func TestDiscountRecipientsFirstOfSharedCategory(t *testing.T) {
	recipients := DiscountRecipients([]Line{
		{Product: product(1, "CPU"), Qty: 1},
		{Product: product(2, "CPU"), Qty: 1},
	})
	if !recipients[1] {
		t.Fatal("first product of a shared category should be the recipient")
	}
	if recipients[2] {
		t.Fatal("second product must not receive the discount")
	}
}

func TestDiscountRecipientsDistinctProductsOnly(t *testing.T) {
	// The same product appearing twice does not make its category qualify.
	recipients := DiscountRecipients([]Line{
		{Product: product(1, "CPU"), Qty: 1},
		{Product: product(1, "CPU"), Qty: 2},
	})
	if len(recipients) != 0 {
		t.Fatalf("duplicate lines for one product must not qualify, got %v", recipients)
	}
}

func TestDiscountRecipientsNoStacking(t *testing.T) {
	// Product 1 leads both qualifying categories but is marked once.
	recipients := DiscountRecipients([]Line{
		{Product: product(1, "CPU", "Bundles"), Qty: 1},
		{Product: product(2, "CPU", "Bundles"), Qty: 1},
	})
	if !recipients[1] || recipients[2] {
		t.Fatalf("unexpected recipients %v", recipients)
	}
	if len(recipients) != 1 {
		t.Fatalf("recipient status is boolean per product, got %v", recipients)
	}
}

func TestDiscountRecipientsPerCategoryLeaders(t *testing.T) {
	recipients := DiscountRecipients([]Line{
		{Product: product(1, "CPU"), Qty: 1},
		{Product: product(2, "GPU"), Qty: 1},
		{Product: product(3, "CPU"), Qty: 1},
		{Product: product(4, "GPU"), Qty: 1},
	})
	if !recipients[1] || !recipients[2] {
		t.Fatalf("each qualifying category marks its first product, got %v", recipients)
	}
	if recipients[3] || recipients[4] {
		t.Fatalf("trailing products must not qualify, got %v", recipients)
	}
}
