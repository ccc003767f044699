package inventory

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates the requested product or category does not exist.
var ErrNotFound = errors.New("inventory: not found")

// ErrDuplicateName indicates a product or category with the same name already exists.
var ErrDuplicateName = errors.New("inventory: duplicate name")

// Product is a sellable item. Name doubles as a natural key for stock imports.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	Categories  []Category
}

// Category groups products. Name is a natural key, matched case-sensitively.
type Category struct {
	ID          int64
	Name        string
	Description string
}

// CategoryIDs returns the ids of the product's categories in stored order.
func (p Product) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(p.Categories))
	for _, c := range p.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// Store is the inventory accessor the engines depend on. Implementations must
// return ErrNotFound for missing rows and ErrDuplicateName on natural-key
// collisions so callers can branch without driver knowledge.
type Store interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	GetProductByName(ctx context.Context, name string) (Product, error)
	// CreateProduct persists p and assigns its ID. Categories must already
	// exist; only their ids are linked.
	CreateProduct(ctx context.Context, p *Product) error
	// UpdateProduct overwrites scalar fields (name, description, price,
	// quantity). Category links are left untouched.
	UpdateProduct(ctx context.Context, p Product) (Product, error)
	// ReplaceProductCategories replaces the product's category link set.
	ReplaceProductCategories(ctx context.Context, productID int64, categoryIDs []int64) error
	DeleteProduct(ctx context.Context, id int64) error
	// SetStock sets quantity on hand to an absolute value.
	SetStock(ctx context.Context, id int64, quantity int) error

	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	GetCategoryByName(ctx context.Context, name string) (Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c Category) (Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}
