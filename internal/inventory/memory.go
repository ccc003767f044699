package inventory

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store used by tests. It is safe for
// concurrent use.
type MemoryStore struct {
	mu             sync.Mutex
	nextProductID  int64
	nextCategoryID int64
	products       map[int64]Product
	categories     map[int64]Category
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextProductID:  1,
		nextCategoryID: 1,
		products:       map[int64]Product{},
		categories:     map[int64]Category{},
	}
}

// ListProducts returns all products ordered by id.
func (s *MemoryStore) ListProducts(_ context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	products := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, cloneProduct(p))
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// GetProduct loads a product by id.
func (s *MemoryStore) GetProduct(_ context.Context, id int64) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return cloneProduct(p), nil
}

// GetProductByName loads a product by exact name match.
func (s *MemoryStore) GetProductByName(_ context.Context, name string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Name == name {
			return cloneProduct(p), nil
		}
	}
	return Product{}, ErrNotFound
}

// CreateProduct stores the product and assigns its id.
func (s *MemoryStore) CreateProduct(_ context.Context, p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.products {
		if existing.Name == p.Name {
			return ErrDuplicateName
		}
	}
	p.ID = s.nextProductID
	s.nextProductID++
	s.products[p.ID] = cloneProduct(*p)
	return nil
}

// UpdateProduct overwrites scalar fields, leaving category links untouched.
func (s *MemoryStore) UpdateProduct(_ context.Context, p Product) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.products[p.ID]
	if !ok {
		return Product{}, ErrNotFound
	}
	for _, other := range s.products {
		if other.ID != p.ID && other.Name == p.Name {
			return Product{}, ErrDuplicateName
		}
	}
	existing.Name = p.Name
	existing.Description = p.Description
	existing.Price = p.Price
	existing.Quantity = p.Quantity
	s.products[p.ID] = existing
	return cloneProduct(existing), nil
}

// ReplaceProductCategories swaps the product's category link set.
func (s *MemoryStore) ReplaceProductCategories(_ context.Context, productID int64, categoryIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return ErrNotFound
	}
	categories := make([]Category, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		c, ok := s.categories[id]
		if !ok {
			return ErrNotFound
		}
		categories = append(categories, c)
	}
	p.Categories = categories
	s.products[productID] = p
	return nil
}

// DeleteProduct removes a product.
func (s *MemoryStore) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// SetStock sets the on-hand quantity to an absolute value.
func (s *MemoryStore) SetStock(_ context.Context, id int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Quantity = quantity
	s.products[id] = p
	return nil
}

// ListCategories returns all categories ordered by id.
func (s *MemoryStore) ListCategories(_ context.Context) ([]Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	categories := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

// GetCategory loads a category by id.
func (s *MemoryStore) GetCategory(_ context.Context, id int64) (Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return Category{}, ErrNotFound
	}
	return c, nil
}

// GetCategoryByName loads a category by exact, case-sensitive name match.
func (s *MemoryStore) GetCategoryByName(_ context.Context, name string) (Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

// CreateCategory stores the category and assigns its id.
func (s *MemoryStore) CreateCategory(_ context.Context, c *Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.Name == c.Name {
			return ErrDuplicateName
		}
	}
	c.ID = s.nextCategoryID
	s.nextCategoryID++
	s.categories[c.ID] = *c
	return nil
}

// UpdateCategory overwrites name and description.
func (s *MemoryStore) UpdateCategory(_ context.Context, c Category) (Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return Category{}, ErrNotFound
	}
	for _, other := range s.categories {
		if other.ID != c.ID && other.Name == c.Name {
			return Category{}, ErrDuplicateName
		}
	}
	s.categories[c.ID] = c
	for id, p := range s.products {
		for i := range p.Categories {
			if p.Categories[i].ID == c.ID {
				p.Categories[i] = c
				s.products[id] = p
			}
		}
	}
	return c, nil
}

// DeleteCategory removes a category and detaches it from products.
func (s *MemoryStore) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return ErrNotFound
	}
	delete(s.categories, id)
	for pid, p := range s.products {
		kept := p.Categories[:0]
		for _, c := range p.Categories {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		p.Categories = kept
		s.products[pid] = p
	}
	return nil
}

func cloneProduct(p Product) Product {
	categories := make([]Category, len(p.Categories))
	copy(categories, p.Categories)
	p.Categories = categories
	return p
}
