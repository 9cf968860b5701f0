package shop

import (
	"context"
	"errors"
	"fmt"

	"flowerbot/catalog"
	"flowerbot/dialog"
)

// browseFlow walks the customer through category -> item -> item card. It
// has no terminal action: browsing loops until the user cancels it or
// starts another flow.
func (s *Shop) browseFlow() *dialog.Flow {
	return &dialog.Flow{
		Name:       FlowBrowse,
		Entry:      "category",
		CancelText: "Come back any time.",
		Steps: []*dialog.Step{
			{
				Name:     "category",
				Accept:   []dialog.InputKind{dialog.KindButton},
				Validate: s.validateCategoryPick("That category is gone, pick another."),
				Field:    fieldCategoryID,
				Next:     func(dialog.Fields) dialog.StepName { return "item" },
				Prompt:   s.promptCategories,
			},
			{
				Name:     "item",
				Accept:   []dialog.InputKind{dialog.KindButton},
				Validate: s.validateItemOrBack,
				Field:    fieldSelection,
				Next: func(f dialog.Fields) dialog.StepName {
					if _, ok := f.Int64(fieldSelection); ok {
						return "card"
					}
					return "category"
				},
				Prompt: s.promptItems,
			},
			{
				Name:     "card",
				Accept:   []dialog.InputKind{dialog.KindButton},
				Validate: dialog.OneOf("Use the buttons under the card.", TokenBack),
				Next:     func(dialog.Fields) dialog.StepName { return "item" },
				Prompt:   s.promptCard,
			},
		},
	}
}

func (s *Shop) promptCategories(ctx context.Context, _ dialog.Fields) (dialog.Output, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return dialog.Output{}, fmt.Errorf("shop: list categories: %w", err)
	}
	if len(cats) == 0 {
		return dialog.Output{}, dialog.Abort("The catalog is empty for now, check back later.")
	}
	options := make([]dialog.Option, 0, len(cats)+1)
	for _, c := range cats {
		options = append(options, dialog.Option{Label: c.Name, Token: CategoryToken(c.ID)})
	}
	options = append(options, cancelOption())
	return dialog.Menu("Pick a category:", options...), nil
}

func (s *Shop) validateCategoryPick(gone string) dialog.Validator {
	return func(ctx context.Context, in dialog.Input, _ dialog.Fields) (any, error) {
		id, ok := TokenID(in.Token, KindCategory)
		if !ok {
			return nil, dialog.Invalid("Pick a category from the list.")
		}
		if _, err := s.store.GetCategory(ctx, id); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, dialog.Invalid("%s", gone)
			}
			return nil, fmt.Errorf("shop: check category %d: %w", id, err)
		}
		return id, nil
	}
}

func (s *Shop) promptItems(ctx context.Context, f dialog.Fields) (dialog.Output, error) {
	catID, _ := f.Int64(fieldCategoryID)
	cat, err := s.store.GetCategory(ctx, catID)
	if errors.Is(err, catalog.ErrNotFound) {
		return dialog.Output{}, dialog.Abort("That category is gone.")
	}
	if err != nil {
		return dialog.Output{}, fmt.Errorf("shop: load category %d: %w", catID, err)
	}
	items, err := s.store.ListItemsByCategory(ctx, catID)
	if err != nil {
		return dialog.Output{}, fmt.Errorf("shop: list items of %d: %w", catID, err)
	}
	text := cat.Name + ":"
	if len(items) == 0 {
		text = "Nothing in " + cat.Name + " yet."
	}
	options := make([]dialog.Option, 0, len(items)+1)
	for _, it := range items {
		label := it.Name + " (" + formatPrice(it.Price) + ")"
		options = append(options, dialog.Option{Label: label, Token: ItemToken(it.ID)})
	}
	options = append(options, dialog.Option{Label: "Back", Token: TokenBack})
	return dialog.Menu(text, options...), nil
}

func (s *Shop) validateItemOrBack(ctx context.Context, in dialog.Input, _ dialog.Fields) (any, error) {
	if in.Token == TokenBack {
		return TokenBack, nil
	}
	id, ok := TokenID(in.Token, KindItem)
	if !ok {
		return nil, dialog.Invalid("Pick an item from the list.")
	}
	if _, err := s.store.GetItem(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, dialog.Invalid("That item is gone, pick another.")
		}
		return nil, fmt.Errorf("shop: check item %d: %w", id, err)
	}
	return id, nil
}

func (s *Shop) promptCard(ctx context.Context, f dialog.Fields) (dialog.Output, error) {
	id, _ := f.Int64(fieldSelection)
	item, err := s.store.GetItem(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return dialog.Output{}, dialog.Abort("That item is no longer available.")
	}
	if err != nil {
		return dialog.Output{}, fmt.Errorf("shop: load item %d: %w", id, err)
	}
	out := dialog.Menu(itemCard(item),
		dialog.Option{Label: "Order", Token: OrderToken(item.ID)},
		dialog.Option{Label: "Back", Token: TokenBack},
	)
	out.PhotoID = item.PhotoID
	return out, nil
}

// orderFlow collects the order form for a fixed item: name, phone, delivery
// method, the address when a courier is involved, then a final confirmation.
func (s *Shop) orderFlow() *dialog.Flow {
	return &dialog.Flow{
		Name:       FlowOrder,
		Entry:      "name",
		CancelText: "Order cancelled.",
		Steps: []*dialog.Step{
			{
				Name:     "name",
				Accept:   []dialog.InputKind{dialog.KindText},
				Validate: dialog.NonEmptyText("Please enter a name for the order."),
				Field:    fieldName,
				Next:     func(dialog.Fields) dialog.StepName { return "phone" },
				Prompt: func(ctx context.Context, f dialog.Fields) (dialog.Output, error) {
					item, err := s.fetchItem(ctx, f)
					if err != nil {
						return dialog.Output{}, err
					}
					text := fmt.Sprintf("Ordering %s (%s).\nWhat name should the order use?",
						item.Name, formatPrice(item.Price))
					return dialog.Menu(text, cancelOption()), nil
				},
			},
			{
				Name:     "phone",
				Accept:   []dialog.InputKind{dialog.KindText},
				Validate: dialog.NonEmptyText("Please enter a contact phone number."),
				Field:    fieldPhone,
				Next:     func(dialog.Fields) dialog.StepName { return "method" },
				Prompt: func(context.Context, dialog.Fields) (dialog.Output, error) {
					return dialog.Menu("What phone number can we reach you at?", cancelOption()), nil
				},
			},
			{
				Name:   "method",
				Accept: []dialog.InputKind{dialog.KindButton, dialog.KindText},
				Validate: dialog.OneOf("Please choose delivery or pickup.",
					string(catalog.DeliveryCourier), string(catalog.DeliveryPickup)),
				Field: fieldMethod,
				Next: func(f dialog.Fields) dialog.StepName {
					if f.String(fieldMethod) == string(catalog.DeliveryCourier) {
						return "address"
					}
					return "confirm"
				},
				Prompt: func(context.Context, dialog.Fields) (dialog.Output, error) {
					return dialog.Menu("How should we get it to you?",
						dialog.Option{Label: "Delivery", Token: string(catalog.DeliveryCourier)},
						dialog.Option{Label: "Pickup", Token: string(catalog.DeliveryPickup)},
						cancelOption(),
					), nil
				},
			},
			{
				Name:     "address",
				Accept:   []dialog.InputKind{dialog.KindText},
				Validate: dialog.NonEmptyText("Please enter the delivery address."),
				Field:    fieldAddress,
				Next:     func(dialog.Fields) dialog.StepName { return "confirm" },
				Prompt: func(context.Context, dialog.Fields) (dialog.Output, error) {
					return dialog.Menu("Where should the courier bring it?", cancelOption()), nil
				},
			},
			{
				Name:     "confirm",
				Accept:   []dialog.InputKind{dialog.KindButton},
				Validate: dialog.OneOf("Please confirm or cancel the order.", TokenConfirm),
				Next:     func(dialog.Fields) dialog.StepName { return dialog.StepEnd },
				Prompt:   s.promptOrderSummary,
			},
		},
		Complete: s.completeOrder,
	}
}

func (s *Shop) promptOrderSummary(ctx context.Context, f dialog.Fields) (dialog.Output, error) {
	item, err := s.fetchItem(ctx, f)
	if err != nil {
		return dialog.Output{}, err
	}
	text := fmt.Sprintf("Please check your order:\n%s (%s)\nName: %s\nPhone: %s\nMethod: %s",
		item.Name, formatPrice(item.Price),
		f.String(fieldName), f.String(fieldPhone), f.String(fieldMethod))
	if addr := f.String(fieldAddress); addr != "" {
		text += "\nAddress: " + addr
	}
	return dialog.Menu(text,
		dialog.Option{Label: "Confirm", Token: TokenConfirm},
		cancelOption(),
	), nil
}

func (s *Shop) completeOrder(ctx context.Context, userID int64, f dialog.Fields) (dialog.Output, error) {
	item, err := s.fetchItem(ctx, f)
	if err != nil {
		return dialog.Output{}, err
	}
	method := catalog.DeliveryMethod(f.String(fieldMethod))
	address := f.String(fieldAddress)
	if method != catalog.DeliveryCourier {
		address = ""
	}
	draft := catalog.OrderDraft{
		ItemID:        item.ID,
		CustomerID:    userID,
		CustomerName:  f.String(fieldName),
		CustomerPhone: f.String(fieldPhone),
		Method:        method,
		Address:       address,
	}
	id, err := s.store.CreateOrder(ctx, draft)
	if err != nil {
		return dialog.Output{}, fmt.Errorf("shop: create order: %w", err)
	}
	s.log.Info("order placed",
		"event", "order.created",
		"order_id", id,
		"item_id", item.ID,
		"method", string(method),
	)
	notice := fmt.Sprintf("New order #%d\n%s (%s)\nFrom %s, phone %s\nMethod: %s",
		id, item.Name, formatPrice(item.Price),
		draft.CustomerName, draft.CustomerPhone, method)
	if address != "" {
		notice += "\nAddress: " + address
	}
	out := dialog.Prompt(fmt.Sprintf("Thank you! Order #%d is registered, we will contact you soon.", id))
	out.Notice = &dialog.Notice{Text: notice}
	return out, nil
}
