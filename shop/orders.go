package shop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"flowerbot/catalog"
	"flowerbot/dialog"
)

// Orders is the operator's order review surface. It lives outside the flow
// engine: accept and reject are single button presses, not conversations.
type Orders struct {
	store catalog.Store
	log   *slog.Logger
}

// NewOrders builds the review surface over the given store.
func NewOrders(store catalog.Store, log *slog.Logger) *Orders {
	if log == nil {
		log = slog.Default()
	}
	return &Orders{store: store, log: log}
}

// OrderView is one order rendered for the operator, with its action buttons.
type OrderView struct {
	Text    string
	Options []dialog.Option
}

// Review lists every order newest first. Orders whose item has been deleted
// are still shown, with a placeholder for the item.
func (o *Orders) Review(ctx context.Context) ([]OrderView, error) {
	orders, err := o.store.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("shop: list orders: %w", err)
	}
	views := make([]OrderView, 0, len(orders))
	for _, ord := range orders {
		view := OrderView{Text: o.renderOrder(ctx, ord)}
		if ord.Status == catalog.StatusNew {
			view.Options = []dialog.Option{
				{Label: "Accept", Token: AcceptToken(ord.ID)},
				{Label: "Reject", Token: RejectToken(ord.ID)},
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (o *Orders) renderOrder(ctx context.Context, ord catalog.Order) string {
	itemName := "(deleted item)"
	if item, err := o.store.GetItem(ctx, ord.ItemID); err == nil {
		itemName = item.Name + " (" + formatPrice(item.Price) + ")"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Order #%d [%s]\n%s\nFrom %s, phone %s\nMethod: %s",
		ord.ID, ord.Status, itemName,
		ord.CustomerName, ord.CustomerPhone, ord.DeliveryMethod)
	if ord.Address != "" {
		b.WriteString("\nAddress: " + ord.Address)
	}
	b.WriteString("\nPlaced: " + ord.CreatedAt.Format("2006-01-02 15:04"))
	return b.String()
}

// Accept marks the order confirmed and returns the text to show the
// operator. A missing order is reported in the text, not as an error.
func (o *Orders) Accept(ctx context.Context, orderID int64) (string, error) {
	return o.setStatus(ctx, orderID, catalog.StatusConfirmed, "Order #%d confirmed.")
}

// Reject marks the order cancelled.
func (o *Orders) Reject(ctx context.Context, orderID int64) (string, error) {
	return o.setStatus(ctx, orderID, catalog.StatusCancelled, "Order #%d cancelled.")
}

func (o *Orders) setStatus(ctx context.Context, orderID int64, status catalog.OrderStatus, okFormat string) (string, error) {
	err := o.store.SetOrderStatus(ctx, orderID, status)
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Sprintf("Order #%d no longer exists.", orderID), nil
	}
	if err != nil {
		return "", fmt.Errorf("shop: set order %d status: %w", orderID, err)
	}
	o.log.Info("order status changed",
		"event", "order.status",
		"order_id", orderID,
		"status", string(status),
	)
	return fmt.Sprintf(okFormat, orderID), nil
}
