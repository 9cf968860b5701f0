// Package shop defines the flower shop's conversation flows over the
// catalog store: customer browsing and ordering, plus the operator's
// catalog management and order review actions.
package shop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"flowerbot/catalog"
	"flowerbot/dialog"
)

// Registered flow names.
const (
	FlowBrowse      dialog.FlowName = "browse"
	FlowOrder       dialog.FlowName = "order"
	FlowAddCategory dialog.FlowName = "add-category"
	FlowDelCategory dialog.FlowName = "del-category"
	FlowAddItem     dialog.FlowName = "add-item"
	FlowDelItem     dialog.FlowName = "del-item"
)

// Field names shared between steps and terminal actions.
const (
	fieldItemID      = "item_id"
	fieldCategoryID  = "category_id"
	fieldSelection   = "selection"
	fieldName        = "customer_name"
	fieldPhone       = "customer_phone"
	fieldMethod      = "delivery_method"
	fieldAddress     = "address"
	fieldDraftName   = "name"
	fieldDescription = "description"
	fieldPrice       = "price"
	fieldPhotoID     = "photo_id"
)

// Shop binds the catalog store to the dialog flow tables.
type Shop struct {
	store catalog.Store
	log   *slog.Logger
}

// New builds a Shop over the given store.
func New(store catalog.Store, log *slog.Logger) *Shop {
	if log == nil {
		log = slog.Default()
	}
	return &Shop{store: store, log: log}
}

// Flows returns every flow the shop registers with the engine.
func (s *Shop) Flows() []*dialog.Flow {
	return []*dialog.Flow{
		s.browseFlow(),
		s.orderFlow(),
		s.addCategoryFlow(),
		s.delCategoryFlow(),
		s.addItemFlow(),
		s.delItemFlow(),
	}
}

// OrderSeed builds the seed fields for starting the order flow on an item.
func OrderSeed(itemID int64) dialog.Fields {
	return dialog.Fields{fieldItemID: itemID}
}

// Trigger resolves a button token that starts a flow on its own, outside any
// active conversation. Currently only order buttons do that; catalog buttons
// are steps inside the browse flow.
func Trigger(token string) (dialog.FlowName, dialog.Fields, bool) {
	if id, ok := TokenID(token, KindOrder); ok {
		return FlowOrder, OrderSeed(id), true
	}
	return "", nil, false
}

// cancelOption is appended to prompts of flows the user may walk away from.
func cancelOption() dialog.Option {
	return dialog.Option{Label: "Cancel", Token: dialog.TokenCancel}
}

// fetchItem loads the flow's target item, aborting the flow when it has
// been deleted since the flow started.
func (s *Shop) fetchItem(ctx context.Context, f dialog.Fields) (catalog.Item, error) {
	id, ok := f.Int64(fieldItemID)
	if !ok {
		return catalog.Item{}, dialog.Abort("This order lost its item, please start over.")
	}
	item, err := s.store.GetItem(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return catalog.Item{}, dialog.Abort("That item is no longer available.")
	}
	if err != nil {
		return catalog.Item{}, fmt.Errorf("shop: load item %d: %w", id, err)
	}
	return item, nil
}

// formatPrice renders a price the way it appears on item cards.
func formatPrice(p decimal.Decimal) string {
	return p.StringFixed(2)
}

// itemCard renders the full item card text.
func itemCard(item catalog.Item) string {
	var b strings.Builder
	b.WriteString(item.Name)
	if item.Description != "" {
		b.WriteString("\n")
		b.WriteString(item.Description)
	}
	b.WriteString("\nPrice: ")
	b.WriteString(formatPrice(item.Price))
	return b.String()
}
