package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// PostgresStore is the sqlx-backed Store implementation.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an open sqlx connection pool.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ListCategories returns all categories ordered by id.
func (s *PostgresStore) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := s.db.SelectContext(ctx, &out, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// GetCategory returns a single category or ErrNotFound.
func (s *PostgresStore) GetCategory(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := s.db.GetContext(ctx, &c, `SELECT id, name FROM categories WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

// CreateCategory inserts a new category and returns its id.
// A name collision comes back as ErrDuplicateName.
func (s *PostgresStore) CreateCategory(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id`, name,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return 0, ErrDuplicateName
		}
		return 0, fmt.Errorf("create category: %w", err)
	}
	return id, nil
}

// DeleteCategory removes a category; the items cascade via the FK.
// A concurrent delete of the same id observes ErrNotFound.
func (s *PostgresStore) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const itemColumns = `id, category_id, name, COALESCE(description, '') AS description, price, COALESCE(photo_id, '') AS photo_id`

// ListItems returns every item ordered by id.
func (s *PostgresStore) ListItems(ctx context.Context) ([]Item, error) {
	var out []Item
	err := s.db.SelectContext(ctx, &out, `SELECT `+itemColumns+` FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return out, nil
}

// ListItemsByCategory returns the category's items ordered by id.
func (s *PostgresStore) ListItemsByCategory(ctx context.Context, categoryID int64) ([]Item, error) {
	var out []Item
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+itemColumns+` FROM items WHERE category_id = $1 ORDER BY id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list items of category %d: %w", categoryID, err)
	}
	return out, nil
}

// GetItem returns a single item or ErrNotFound.
func (s *PostgresStore) GetItem(ctx context.Context, id int64) (Item, error) {
	var it Item
	err := s.db.GetContext(ctx, &it, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("get item %d: %w", id, err)
	}
	return it, nil
}

// CreateItem inserts a new item and returns its id.
func (s *PostgresStore) CreateItem(ctx context.Context, draft ItemDraft) (int64, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO items (category_id, name, description, price, photo_id)
		 VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''))
		 RETURNING id`,
		draft.CategoryID, draft.Name, draft.Description, draft.Price, draft.PhotoID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create item: %w", err)
	}
	return id, nil
}

// DeleteItem removes a single item or reports ErrNotFound.
func (s *PostgresStore) DeleteItem(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateOrder records a new order with status "new".
func (s *PostgresStore) CreateOrder(ctx context.Context, draft OrderDraft) (int64, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO orders (item_id, customer_id, customer_name, customer_phone, delivery_method, address, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
		 RETURNING id`,
		draft.ItemID, draft.CustomerID, draft.CustomerName, draft.CustomerPhone,
		string(draft.Method), draft.Address, string(StatusNew), time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}
	return id, nil
}

const orderColumns = `id, item_id, customer_id, customer_name, customer_phone, delivery_method, COALESCE(address, '') AS address, status, created_at`

// ListOrders returns orders newest first.
func (s *PostgresStore) ListOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

// GetOrder returns a single order or ErrNotFound.
func (s *PostgresStore) GetOrder(ctx context.Context, id int64) (Order, error) {
	var o Order
	err := s.db.GetContext(ctx, &o, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

// SetOrderStatus updates the review status of an order.
func (s *PostgresStore) SetOrderStatus(ctx context.Context, id int64, status OrderStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("set order %d status: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set order %d status: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
