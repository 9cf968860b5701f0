package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"flowerbot/catalog"
	"flowerbot/dialog"
)

// addCategoryFlow asks for a name and creates the category. A name that is
// already taken ends the flow rather than looping on the prompt.
func (s *Shop) addCategoryFlow() *dialog.Flow {
	return &dialog.Flow{
		Name:       FlowAddCategory,
		Entry:      "name",
		AdminOnly:  true,
		CancelText: "Category not added.",
		Steps: []*dialog.Step{
			{
				Name:     "name",
				Accept:   []dialog.InputKind{dialog.KindText},
				Validate: s.validateNewCategoryName,
				Field:    fieldDraftName,
				Next:     func(dialog.Fields) dialog.StepName { return dialog.StepEnd },
				Prompt: func(context.Context, dialog.Fields) (dialog.Output, error) {
					return dialog.Menu("Name for the new category:", cancelOption()), nil
				},
			},
		},
		Complete: func(ctx context.Context, _ int64, f dialog.Fields) (dialog.Output, error) {
			name := f.String(fieldDraftName)
			id, err := s.store.CreateCategory(ctx, name)
			if errors.Is(err, catalog.ErrDuplicateName) {
				// Lost a race with another insert since the name check.
				return dialog.Output{}, dialog.Abort("A category named %q already exists.", name)
			}
			if err != nil {
				return dialog.Output{}, fmt.Errorf("shop: create category: %w", err)
			}
			s.log.Info("category created", "event", "catalog.category_created", "category_id", id)
			return dialog.Prompt(fmt.Sprintf("Category %q added.", name)), nil
		},
	}
}

func (s *Shop) validateNewCategoryName(ctx context.Context, in dialog.Input, _ dialog.Fields) (any, error) {
	name := strings.TrimSpace(in.Text)
	if name == "" {
		return nil, dialog.Invalid("The name cannot be empty.")
	}
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("shop: list categories: %w", err)
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, name) {
			return nil, dialog.Abort("A category named %q already exists.", name)
		}
	}
	return name, nil
}

// delCategoryFlow shows the category list and deletes the chosen one along
// with its items.
func (s *Shop) delCategoryFlow() *dialog.Flow {
	return &dialog.Flow{
		Name:       FlowDelCategory,
		Entry:      "pick",
		AdminOnly:  true,
		CancelText: "Nothing deleted.",
		Steps: []*dialog.Step{
			{
				Name:     "pick",
				Accept:   []dialog.InputKind{dialog.KindButton},
				Validate: s.validateCategoryPick("That category is already gone."),
				Field:    fieldCategoryID,
				Next:     func(dialog.Fields) dialog.StepName { return dialog.StepEnd },
				Prompt: func(ctx context.Context, _ dialog.Fields) (dialog.Output, error) {
					cats, err := s.store.ListCategories(ctx)
					if err != nil {
						return dialog.Output{}, fmt.Errorf("shop: list categories: %w", err)
					}
					if len(cats) == 0 {
						return dialog.Output{}, dialog.Abort("There are no categories to delete.")
					}
					options := make([]dialog.Option, 0, len(cats)+1)
					for _, c := range cats {
						options = append(options, dialog.Option{Label: c.Name, Token: CategoryToken(c.ID)})
					}
					options = append(options, cancelOption())
					return dialog.Menu("Which category should be deleted, items and all?", options...), nil
				},
			},
		},
		Complete: func(ctx context.Context, _ int64, f dialog.Fields) (dialog.Output, error) {
			id, _ := f.Int64(fieldCategoryID)
			err := s.store.DeleteCategory(ctx, id)
			if errors.Is(err, catalog.ErrNotFound) {
				return dialog.Output{}, dialog.Abort("That category is already gone.")
			}
			if err != nil {
				return dialog.Output{}, fmt.Errorf("shop: delete category %d: %w", id, err)
			}
			s.log.Info("category deleted", "event", "catalog.category_deleted", "category_id", id)
			return dialog.Prompt("Category deleted together with its items."), nil
		},
	}
}

// addItemFlow collects a full item draft: category, name, description,
// price and an optional photo.
func (s *Shop) addItemFlow() *dialog.Flow {
	return &dialog.Flow{
		Name:       FlowAddItem,
		Entry:      "category",
		AdminOnly:  true,
		CancelText: "Item not added.",
		Steps: []*dialog.Step{
			{
				Name:     "category",
				Accept:   []dialog.InputKind{dialog.KindButton},
				Validate: s.validateCategoryPick("That category is gone, pick another."),
				Field:    fieldCategoryID,
				Next:     func(dialog.Fields) dialog.StepName { return "name" },
				Prompt: func(ctx context.Context, _ dialog.Fields) (dialog.Output, error) {
					cats, err := s.store.ListCategories(ctx)
					if err != nil {
						return dialog.Output{}, fmt.Errorf("shop: list categories: %w", err)
					}
					if len(cats) == 0 {
						return dialog.Output{}, dialog.Abort("Add a category before adding items.")
					}
					options := make([]dialog.Option, 0, len(cats)+1)
					for _, c := range cats {
						options = append(options, dialog.Option{Label: c.Name, Token: CategoryToken(c.ID)})
					}
					options = append(options, cancelOption())
					return dialog.Menu("Which category does the item belong to?", options...), nil
				},
			},
			{
				Name:     "name",
				Accept:   []dialog.InputKind{dialog.KindText},
				Validate: dialog.NonEmptyText("Please enter the item name."),
				Field:    fieldDraftName,
				Next:     func(dialog.Fields) dialog.StepName { return "description" },
				Prompt: func(context.Context, dialog.Fields) (dialog.Output, error) {
					return dialog.Menu("Item name:", cancelOption()), nil
				},
			},
			{
				Name:     "description",
				Accept:   []dialog.InputKind{dialog.KindText, dialog.KindSkip},
				Validate: optionalText(),
				Field:    fieldDescription,
				Next:     func(dialog.Fields) dialog.StepName { return "price" },
				Prompt: func(context.Context, dialog.Fields) (dialog.Output, error) {
					return dialog.Menu("Item description (or /skip):", cancelOption()), nil
				},
			},
			{
				Name:     "price",
				Accept:   []dialog.InputKind{dialog.KindText},
				Validate: dialog.NonNegativeDecimal("That does not look like a price. Enter a number like 199.50."),
				Field:    fieldPrice,
				Next:     func(dialog.Fields) dialog.StepName { return "photo" },
				Prompt: func(context.Context, dialog.Fields) (dialog.Output, error) {
					return dialog.Menu("Price:", cancelOption()), nil
				},
			},
			{
				Name:     "photo",
				Accept:   []dialog.InputKind{dialog.KindPhoto, dialog.KindText, dialog.KindSkip},
				Validate: dialog.PhotoOrSkip("Send a photo of the item or type /skip."),
				Field:    fieldPhotoID,
				Next:     func(dialog.Fields) dialog.StepName { return dialog.StepEnd },
				Prompt: func(context.Context, dialog.Fields) (dialog.Output, error) {
					return dialog.Menu("Photo of the item (or /skip):", cancelOption()), nil
				},
			},
		},
		Complete: func(ctx context.Context, _ int64, f dialog.Fields) (dialog.Output, error) {
			catID, _ := f.Int64(fieldCategoryID)
			if _, err := s.store.GetCategory(ctx, catID); err != nil {
				if errors.Is(err, catalog.ErrNotFound) {
					return dialog.Output{}, dialog.Abort("The category was deleted while you were typing.")
				}
				return dialog.Output{}, fmt.Errorf("shop: check category %d: %w", catID, err)
			}
			price, _ := f.Decimal(fieldPrice)
			draft := catalog.ItemDraft{
				CategoryID:  catID,
				Name:        f.String(fieldDraftName),
				Description: f.String(fieldDescription),
				Price:       price,
				PhotoID:     f.String(fieldPhotoID),
			}
			id, err := s.store.CreateItem(ctx, draft)
			if err != nil {
				return dialog.Output{}, fmt.Errorf("shop: create item: %w", err)
			}
			s.log.Info("item created", "event", "catalog.item_created", "item_id", id, "category_id", catID)
			return dialog.Prompt(fmt.Sprintf("Item %q added.", draft.Name)), nil
		},
	}
}

// optionalText records trimmed text, or the empty string on skip.
func optionalText() dialog.Validator {
	return func(_ context.Context, in dialog.Input, _ dialog.Fields) (any, error) {
		if in.Kind == dialog.KindSkip {
			return "", nil
		}
		text := strings.TrimSpace(in.Text)
		if strings.EqualFold(text, "/skip") {
			return "", nil
		}
		return text, nil
	}
}

// delItemFlow shows every item and deletes the chosen one. Existing orders
// for the item stay on the books.
func (s *Shop) delItemFlow() *dialog.Flow {
	return &dialog.Flow{
		Name:       FlowDelItem,
		Entry:      "pick",
		AdminOnly:  true,
		CancelText: "Nothing deleted.",
		Steps: []*dialog.Step{
			{
				Name:   "pick",
				Accept: []dialog.InputKind{dialog.KindButton},
				Validate: func(ctx context.Context, in dialog.Input, _ dialog.Fields) (any, error) {
					id, ok := TokenID(in.Token, KindItem)
					if !ok {
						return nil, dialog.Invalid("Pick an item from the list.")
					}
					return id, nil
				},
				Field: fieldItemID,
				Next:  func(dialog.Fields) dialog.StepName { return dialog.StepEnd },
				Prompt: func(ctx context.Context, _ dialog.Fields) (dialog.Output, error) {
					items, err := s.store.ListItems(ctx)
					if err != nil {
						return dialog.Output{}, fmt.Errorf("shop: list items: %w", err)
					}
					if len(items) == 0 {
						return dialog.Output{}, dialog.Abort("There are no items to delete.")
					}
					options := make([]dialog.Option, 0, len(items)+1)
					for _, it := range items {
						label := it.Name + " (" + formatPrice(it.Price) + ")"
						options = append(options, dialog.Option{Label: label, Token: ItemToken(it.ID)})
					}
					options = append(options, cancelOption())
					return dialog.Menu("Which item should be deleted?", options...), nil
				},
			},
		},
		Complete: func(ctx context.Context, _ int64, f dialog.Fields) (dialog.Output, error) {
			id, _ := f.Int64(fieldItemID)
			err := s.store.DeleteItem(ctx, id)
			if errors.Is(err, catalog.ErrNotFound) {
				return dialog.Output{}, dialog.Abort("That item is already gone.")
			}
			if err != nil {
				return dialog.Output{}, fmt.Errorf("shop: delete item %d: %w", id, err)
			}
			s.log.Info("item deleted", "event", "catalog.item_deleted", "item_id", id)
			return dialog.Prompt("Item deleted. Existing orders for it are kept."), nil
		},
	}
}
