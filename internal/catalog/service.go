package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-store/internal/common"
	"github.com/noah-isme/backend-store/internal/inventory"
	"github.com/noah-isme/backend-store/internal/obs"
)

// Product is the public product payload.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Categories  []Category      `json:"categories"`
}

// Category is the public category payload.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ProductInput captures payload for creating or updating a product.
type ProductInput struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	CategoryIDs []int64         `json:"categoryIds"`
}

// CategoryInput captures payload for creating or updating a category.
type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// Service is the pass-through CRUD layer over the inventory store. All
// decision logic lives in the basket and stockimport engines; this service
// only maps, validates references, and caches reads.
type Service struct {
	Store inventory.Store
	Cache *Cache
}

// ListProducts returns all products, served from cache when possible.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	var cached []Product
	if ok, err := s.Cache.GetJSON(ctx, productListKey, &cached); err == nil && ok {
		observeCache("hit")
		return cached, nil
	}
	observeCache("miss")
	rows, err := s.Store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products := make([]Product, 0, len(rows))
	for _, p := range rows {
		products = append(products, toProduct(p))
	}
	_ = s.Cache.SetJSON(ctx, productListKey, products)
	return products, nil
}

// GetProduct returns one product by id.
func (s *Service) GetProduct(ctx context.Context, id int64) (Product, error) {
	key := productDetailKey + strconv.FormatInt(id, 10)
	var cached Product
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
		observeCache("hit")
		return cached, nil
	}
	observeCache("miss")
	p, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return Product{}, mapProductErr(err)
	}
	product := toProduct(p)
	_ = s.Cache.SetJSON(ctx, key, product)
	return product, nil
}

// CreateProduct persists a new product. Referenced categories must exist.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (Product, error) {
	if err := validateProductInput(input); err != nil {
		return Product{}, err
	}
	categories, err := s.resolveCategories(ctx, input.CategoryIDs)
	if err != nil {
		return Product{}, err
	}
	p := inventory.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
		Categories:  categories,
	}
	if err := s.Store.CreateProduct(ctx, &p); err != nil {
		return Product{}, mapProductErr(err)
	}
	s.Cache.Invalidate(ctx, productListKey)
	return toProduct(p), nil
}

// UpdateProduct overwrites scalar fields and replaces the category link set.
func (s *Service) UpdateProduct(ctx context.Context, id int64, input ProductInput) (Product, error) {
	if err := validateProductInput(input); err != nil {
		return Product{}, err
	}
	if _, err := s.resolveCategories(ctx, input.CategoryIDs); err != nil {
		return Product{}, err
	}
	if _, err := s.Store.UpdateProduct(ctx, inventory.Product{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
	}); err != nil {
		return Product{}, mapProductErr(err)
	}
	if err := s.Store.ReplaceProductCategories(ctx, id, input.CategoryIDs); err != nil {
		return Product{}, mapProductErr(err)
	}
	fresh, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return Product{}, mapProductErr(err)
	}
	s.invalidateProduct(ctx, id)
	return toProduct(fresh), nil
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.Store.DeleteProduct(ctx, id); err != nil {
		return mapProductErr(err)
	}
	s.invalidateProduct(ctx, id)
	return nil
}

// SetStock sets a product's quantity on hand to an absolute value.
func (s *Service) SetStock(ctx context.Context, id int64, quantity int) error {
	if quantity < 0 {
		return common.InvalidArgument("quantity cannot be negative")
	}
	if err := s.Store.SetStock(ctx, id, quantity); err != nil {
		return mapProductErr(err)
	}
	s.invalidateProduct(ctx, id)
	return nil
}

// ListCategories returns all categories, served from cache when possible.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	var cached []Category
	if ok, err := s.Cache.GetJSON(ctx, categoryListKey, &cached); err == nil && ok {
		observeCache("hit")
		return cached, nil
	}
	observeCache("miss")
	rows, err := s.Store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	categories := make([]Category, 0, len(rows))
	for _, c := range rows {
		categories = append(categories, toCategory(c))
	}
	_ = s.Cache.SetJSON(ctx, categoryListKey, categories)
	return categories, nil
}

// GetCategory returns one category by id.
func (s *Service) GetCategory(ctx context.Context, id int64) (Category, error) {
	c, err := s.Store.GetCategory(ctx, id)
	if err != nil {
		return Category{}, mapCategoryErr(err)
	}
	return toCategory(c), nil
}

// CreateCategory persists a new category.
func (s *Service) CreateCategory(ctx context.Context, input CategoryInput) (Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Category{}, common.InvalidArgument("category name is required")
	}
	c := inventory.Category{Name: name, Description: input.Description}
	if err := s.Store.CreateCategory(ctx, &c); err != nil {
		return Category{}, mapCategoryErr(err)
	}
	s.Cache.Invalidate(ctx, categoryListKey)
	return toCategory(c), nil
}

// UpdateCategory overwrites a category's name and description.
func (s *Service) UpdateCategory(ctx context.Context, id int64, input CategoryInput) (Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Category{}, common.InvalidArgument("category name is required")
	}
	c, err := s.Store.UpdateCategory(ctx, inventory.Category{ID: id, Name: name, Description: input.Description})
	if err != nil {
		return Category{}, mapCategoryErr(err)
	}
	s.Cache.Invalidate(ctx, categoryListKey, productListKey)
	return toCategory(c), nil
}

// DeleteCategory removes a category and detaches it from products.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.Store.DeleteCategory(ctx, id); err != nil {
		return mapCategoryErr(err)
	}
	s.Cache.Invalidate(ctx, categoryListKey, productListKey)
	return nil
}

func (s *Service) resolveCategories(ctx context.Context, ids []int64) ([]inventory.Category, error) {
	categories := make([]inventory.Category, 0, len(ids))
	for _, id := range ids {
		c, err := s.Store.GetCategory(ctx, id)
		if err != nil {
			if errors.Is(err, inventory.ErrNotFound) {
				return nil, common.NotFound(fmt.Sprintf("category with id %d not found", id), err)
			}
			return nil, fmt.Errorf("resolve category %d: %w", id, err)
		}
		categories = append(categories, c)
	}
	return categories, nil
}

func (s *Service) invalidateProduct(ctx context.Context, id int64) {
	s.Cache.Invalidate(ctx, productListKey, productDetailKey+strconv.FormatInt(id, 10))
}

func observeCache(result string) {
	if obs.CatalogCacheTotal != nil {
		obs.CatalogCacheTotal.WithLabelValues(result).Inc()
	}
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return common.InvalidArgument("product name is required")
	}
	if !input.Price.IsPositive() {
		return common.InvalidArgument("price must be positive")
	}
	if input.Quantity < 0 {
		return common.InvalidArgument("quantity cannot be negative")
	}
	return nil
}

func mapProductErr(err error) error {
	switch {
	case errors.Is(err, inventory.ErrNotFound):
		return common.NotFound("product not found", err)
	case errors.Is(err, inventory.ErrDuplicateName):
		return common.Conflict("a product with this name already exists", err)
	default:
		return err
	}
}

func mapCategoryErr(err error) error {
	switch {
	case errors.Is(err, inventory.ErrNotFound):
		return common.NotFound("category not found", err)
	case errors.Is(err, inventory.ErrDuplicateName):
		return common.Conflict("a category with this name already exists", err)
	default:
		return err
	}
}

func toProduct(p inventory.Product) Product {
	categories := make([]Category, 0, len(p.Categories))
	for _, c := range p.Categories {
		categories = append(categories, toCategory(c))
	}
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Categories:  categories,
	}
}

func toCategory(c inventory.Category) Category {
	return Category{ID: c.ID, Name: c.Name, Description: c.Description}
}
