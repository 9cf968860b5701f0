package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func mustCategory(t *testing.T, s Store, name string) int64 {
	t.Helper()
	id, err := s.CreateCategory(context.Background(), name)
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	return id
}

func mustItem(t *testing.T, s Store, categoryID int64, name string) int64 {
	t.Helper()
	id, err := s.CreateItem(context.Background(), ItemDraft{
		CategoryID: categoryID,
		Name:       name,
		Price:      decimal.NewFromFloat(19.90),
	})
	if err != nil {
		t.Fatalf("create item %q: %v", name, err)
	}
	return id
}

func TestCreateCategoryRejectsDuplicateName(t *testing.T) {
	s := NewMemoryStore()
	mustCategory(t, s, "Roses")

	_, err := s.CreateCategory(context.Background(), "Roses")
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestDeleteCategoryCascadesExactlyItsItems(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	roses := mustCategory(t, s, "Roses")
	tulips := mustCategory(t, s, "Tulips")
	r1 := mustItem(t, s, roses, "Red rose")
	r2 := mustItem(t, s, roses, "White rose")
	keep := mustItem(t, s, tulips, "Yellow tulip")

	orderID, err := s.CreateOrder(ctx, OrderDraft{
		ItemID:        r1,
		CustomerID:    100,
		CustomerName:  "Ann",
		CustomerPhone: "+1555",
		Method:        DeliveryPickup,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if err := s.DeleteCategory(ctx, roses); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	for _, id := range []int64{r1, r2} {
		if _, err := s.GetItem(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("item %d should be cascaded, got %v", id, err)
		}
	}
	if _, err := s.GetItem(ctx, keep); err != nil {
		t.Fatalf("unrelated item deleted: %v", err)
	}

	// The order referencing a deleted item stays retrievable with its
	// status unchanged; the item lookup is a plain not-found.
	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("order should survive cascade: %v", err)
	}
	if o.Status != StatusNew {
		t.Fatalf("order status changed: %v", o.Status)
	}
	if _, err := s.GetItem(ctx, o.ItemID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted item, got %v", err)
	}
}

func TestDeleteCategoryTwiceObservesNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	id := mustCategory(t, s, "Roses")

	if err := s.DeleteCategory(ctx, id); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := s.DeleteCategory(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should observe not-found, got %v", err)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	cat := mustCategory(t, s, "Roses")
	item := mustItem(t, s, cat, "Red rose")

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := s.CreateOrder(ctx, OrderDraft{
			ItemID:        item,
			CustomerID:    int64(i),
			CustomerName:  "Ann",
			CustomerPhone: "+1555",
			Method:        DeliveryPickup,
		})
		if err != nil {
			t.Fatalf("create order: %v", err)
		}
		ids = append(ids, id)
	}

	orders, err := s.ListOrders(ctx)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}
	if orders[0].ID != ids[2] || orders[2].ID != ids[0] {
		t.Fatalf("orders not newest first: %v", []int64{orders[0].ID, orders[1].ID, orders[2].ID})
	}
}

func TestSetOrderStatus(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	cat := mustCategory(t, s, "Roses")
	item := mustItem(t, s, cat, "Red rose")
	id, err := s.CreateOrder(ctx, OrderDraft{
		ItemID: item, CustomerID: 1, CustomerName: "Ann", CustomerPhone: "+1555", Method: DeliveryPickup,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if err := s.SetOrderStatus(ctx, id, StatusConfirmed); err != nil {
		t.Fatalf("set status: %v", err)
	}
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if o.Status != StatusConfirmed {
		t.Fatalf("status = %v", o.Status)
	}

	if err := s.SetOrderStatus(ctx, 9999, StatusCancelled); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing order, got %v", err)
	}
}
