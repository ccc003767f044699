package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresStore implements Store on top of a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// ListProducts returns all products with their categories attached.
func (s *PostgresStore) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, COALESCE(description, ''), price, quantity
		FROM products
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	index := map[int64]int{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Categories = []Category{}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	links, err := s.pool.Query(ctx, `
		SELECT pc.product_id, c.id, c.name, COALESCE(c.description, '')
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		ORDER BY pc.product_id, pc.position`)
	if err != nil {
		return nil, fmt.Errorf("list product categories: %w", err)
	}
	defer links.Close()
	for links.Next() {
		var productID int64
		var c Category
		if err := links.Scan(&productID, &c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan product category: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].Categories = append(products[i].Categories, c)
		}
	}
	if err := links.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct loads a product by id including its categories.
func (s *PostgresStore) GetProduct(ctx context.Context, id int64) (Product, error) {
	return s.getProduct(ctx, `WHERE id = $1`, id)
}

// GetProductByName loads a product by exact name match.
func (s *PostgresStore) GetProductByName(ctx context.Context, name string) (Product, error) {
	return s.getProduct(ctx, `WHERE name = $1`, name)
}

func (s *PostgresStore) getProduct(ctx context.Context, where string, arg any) (Product, error) {
	var p Product
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(description, ''), price, quantity
		FROM products `+where, arg).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	p.Categories, err = s.productCategories(ctx, p.ID)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *PostgresStore) productCategories(ctx context.Context, productID int64) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.name, COALESCE(c.description, '')
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = $1
		ORDER BY pc.position`, productID)
	if err != nil {
		return nil, fmt.Errorf("product categories: %w", err)
	}
	defer rows.Close()
	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateProduct inserts the product and its category links in one transaction.
func (s *PostgresStore) CreateProduct(ctx context.Context, p *Product) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx, `
		INSERT INTO products (name, description, price, quantity)
		VALUES ($1, NULLIF($2, ''), $3, $4)
		RETURNING id`,
		p.Name, p.Description, p.Price, p.Quantity).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("insert product: %w", err)
	}
	for i, c := range p.Categories {
		if _, err := tx.Exec(ctx, `
			INSERT INTO product_categories (product_id, category_id, position)
			VALUES ($1, $2, $3)`,
			p.ID, c.ID, i); err != nil {
			return fmt.Errorf("link category: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// UpdateProduct overwrites the product's scalar columns. Category links are
// managed separately via ReplaceProductCategories.
func (s *PostgresStore) UpdateProduct(ctx context.Context, p Product) (Product, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE products
		SET name = $2, description = NULLIF($3, ''), price = $4, quantity = $5, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Price, p.Quantity)
	if err != nil {
		if isUniqueViolation(err) {
			return Product{}, ErrDuplicateName
		}
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Product{}, ErrNotFound
	}
	return s.GetProduct(ctx, p.ID)
}

// ReplaceProductCategories swaps the product's category link set.
func (s *PostgresStore) ReplaceProductCategories(ctx context.Context, productID int64, categoryIDs []int64) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM product_categories WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("clear category links: %w", err)
	}
	for i, categoryID := range categoryIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO product_categories (product_id, category_id, position)
			VALUES ($1, $2, $3)`,
			productID, categoryID, i); err != nil {
			return fmt.Errorf("link category: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// DeleteProduct removes a product and its category links.
func (s *PostgresStore) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStock sets the on-hand quantity to an absolute value.
func (s *PostgresStore) SetStock(ctx context.Context, id int64, quantity int) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE products SET quantity = $2, updated_at = NOW() WHERE id = $1`, id, quantity)
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCategories returns all categories ordered by id.
func (s *PostgresStore) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, COALESCE(description, '') FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategory loads a category by id.
func (s *PostgresStore) GetCategory(ctx context.Context, id int64) (Category, error) {
	return s.getCategory(ctx, `WHERE id = $1`, id)
}

// GetCategoryByName loads a category by exact, case-sensitive name match.
func (s *PostgresStore) GetCategoryByName(ctx context.Context, name string) (Category, error) {
	return s.getCategory(ctx, `WHERE name = $1`, name)
}

func (s *PostgresStore) getCategory(ctx context.Context, where string, arg any) (Category, error) {
	var c Category
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(description, '') FROM categories `+where, arg).
		Scan(&c.ID, &c.Name, &c.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, ErrNotFound
		}
		return Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// CreateCategory inserts the category and assigns its id.
func (s *PostgresStore) CreateCategory(ctx context.Context, c *Category) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO categories (name, description)
		VALUES ($1, NULLIF($2, ''))
		RETURNING id`,
		c.Name, c.Description).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// UpdateCategory overwrites name and description.
func (s *PostgresStore) UpdateCategory(ctx context.Context, c Category) (Category, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE categories
		SET name = $2, description = NULLIF($3, ''), updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.Name, c.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return Category{}, ErrDuplicateName
		}
		return Category{}, fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Category{}, ErrNotFound
	}
	return s.GetCategory(ctx, c.ID)
}

// DeleteCategory removes a category and its product links.
func (s *PostgresStore) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
