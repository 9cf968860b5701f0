package catalog

import (
	"context"
	"errors"
)

var (
	// ErrNotFound signals that a referenced record does not exist. It is an
	// expected condition (orders routinely outlive their items) and is never
	// wrapped in a panic or treated as fatal.
	ErrNotFound = errors.New("catalog: not found")
	// ErrDuplicateName signals a category name collision.
	ErrDuplicateName = errors.New("catalog: duplicate name")
)

// Store is the durable catalog the dialog flows operate on. Every operation
// is single-record and atomic with respect to concurrent callers; absence and
// conflict come back as typed errors, not panics.
type Store interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	CreateCategory(ctx context.Context, name string) (int64, error)
	// DeleteCategory removes the category and cascades to its items.
	DeleteCategory(ctx context.Context, id int64) error

	ListItems(ctx context.Context) ([]Item, error)
	ListItemsByCategory(ctx context.Context, categoryID int64) ([]Item, error)
	GetItem(ctx context.Context, id int64) (Item, error)
	CreateItem(ctx context.Context, draft ItemDraft) (int64, error)
	DeleteItem(ctx context.Context, id int64) error

	CreateOrder(ctx context.Context, draft OrderDraft) (int64, error)
	// ListOrders returns orders newest first.
	ListOrders(ctx context.Context) ([]Order, error)
	GetOrder(ctx context.Context, id int64) (Order, error)
	SetOrderStatus(ctx context.Context, id int64, status OrderStatus) error
}
