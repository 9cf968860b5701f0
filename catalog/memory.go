package catalog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by tests and local development.
// Each method takes the lock for its whole duration, which gives the same
// per-operation atomicity the SQL store gets from single statements.
type MemoryStore struct {
	mu         sync.RWMutex
	categories map[int64]Category
	items      map[int64]Item
	orders     map[int64]Order
	nextID     int64
}

// NewMemoryStore constructs an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories: make(map[int64]Category),
		items:      make(map[int64]Item),
		orders:     make(map[int64]Order),
	}
}

func (s *MemoryStore) nextIdentity() int64 {
	s.nextID++
	return s.nextID
}

// ListCategories returns all categories ordered by id.
func (s *MemoryStore) ListCategories(_ context.Context) ([]Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetCategory returns a single category or ErrNotFound.
func (s *MemoryStore) GetCategory(_ context.Context, id int64) (Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return Category{}, ErrNotFound
	}
	return c, nil
}

// CreateCategory inserts a category enforcing name uniqueness.
func (s *MemoryStore) CreateCategory(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Name == name {
			return 0, ErrDuplicateName
		}
	}
	id := s.nextIdentity()
	s.categories[id] = Category{ID: id, Name: name}
	return id, nil
}

// DeleteCategory removes the category and all items owned by it.
func (s *MemoryStore) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return ErrNotFound
	}
	delete(s.categories, id)
	for itemID, it := range s.items {
		if it.CategoryID == id {
			delete(s.items, itemID)
		}
	}
	return nil
}

// ListItems returns every item ordered by id.
func (s *MemoryStore) ListItems(_ context.Context) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListItemsByCategory returns the category's items ordered by id.
func (s *MemoryStore) ListItemsByCategory(_ context.Context, categoryID int64) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Item
	for _, it := range s.items {
		if it.CategoryID == categoryID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetItem returns a single item or ErrNotFound.
func (s *MemoryStore) GetItem(_ context.Context, id int64) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	return it, nil
}

// CreateItem inserts a new item.
func (s *MemoryStore) CreateItem(_ context.Context, draft ItemDraft) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextIdentity()
	s.items[id] = Item{
		ID:          id,
		CategoryID:  draft.CategoryID,
		Name:        draft.Name,
		Description: draft.Description,
		Price:       draft.Price,
		PhotoID:     draft.PhotoID,
	}
	return id, nil
}

// DeleteItem removes a single item or reports ErrNotFound.
func (s *MemoryStore) DeleteItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// CreateOrder records a new order with status "new".
func (s *MemoryStore) CreateOrder(_ context.Context, draft OrderDraft) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextIdentity()
	s.orders[id] = Order{
		ID:             id,
		ItemID:         draft.ItemID,
		CustomerID:     draft.CustomerID,
		CustomerName:   draft.CustomerName,
		CustomerPhone:  draft.CustomerPhone,
		DeliveryMethod: draft.Method,
		Address:        draft.Address,
		Status:         StatusNew,
		CreatedAt:      time.Now().UTC(),
	}
	return id, nil
}

// ListOrders returns orders newest first.
func (s *MemoryStore) ListOrders(_ context.Context) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// GetOrder returns a single order or ErrNotFound.
func (s *MemoryStore) GetOrder(_ context.Context, id int64) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

// SetOrderStatus updates the review status of an order.
func (s *MemoryStore) SetOrderStatus(_ context.Context, id int64, status OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	s.orders[id] = o
	return nil
}
