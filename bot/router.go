package bot

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"flowerbot/core/logger"
	"flowerbot/core/telegram/callbacks"
	tghelpers "flowerbot/core/telegram/helpers"
	"flowerbot/dialog"
	"flowerbot/shop"
)

const genericErrorText = "Something went wrong, please try again."

// startFlowAction binds a main-menu label to a flow start.
func (b *Bot) startFlowAction(name dialog.FlowName) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.WithHandler(c, "menu."+string(name))
		res, err := b.engine.Start(ctx, c.Sender().ID, name, nil)
		if err != nil {
			logger.Error(ctx, "tg", "dialog.fail", slog.String("err", err.Error()))
			return tghelpers.SendText(c, genericErrorText)
		}
		return b.render(c, res.Output)
	}
}

// orderDecisionCallback builds the registry handler for one operator
// decision key. Malformed payloads are dropped.
func (b *Bot) orderDecisionCallback(accept bool) tele.HandlerFunc {
	kind := shop.KindReject
	if accept {
		kind = shop.KindAccept
	}
	return func(c tele.Context) error {
		orderID, ok := shop.TokenID(callbacks.Token(c), kind)
		if !ok {
			return nil
		}
		return b.onOrderDecision(c, orderID, accept)
	}
}

// onStart greets the user with the main menu. Any conversation in progress
// is dropped: /start always lands on a clean slate.
func (b *Bot) onStart(c tele.Context) error {
	userID := c.Sender().ID
	b.engine.Cancel(userID)

	text := "Welcome to the flower shop! Pick a category to browse, or order straight from an item card."
	if b.engine.IsOperator(userID) {
		text = "Welcome back. Catalog management and order review are on the menu below."
	}
	return tghelpers.SendMarkup(c, text, mainMenu(b.engine.IsOperator(userID)))
}

// onCancelCommand cancels the active flow, if any.
func (b *Bot) onCancelCommand(c tele.Context) error {
	res := b.engine.Cancel(c.Sender().ID)
	if !res.Handled {
		return tghelpers.SendText(c, "Nothing to cancel.")
	}
	return b.render(c, res.Output)
}

// onText feeds free text into the active flow first; with no flow in
// progress the text is matched against menu actions, then the fallback.
func (b *Bot) onText(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "text")
	userID := c.Sender().ID

	res, err := b.engine.Advance(ctx, userID, dialog.TextInput(c.Text()))
	if err != nil {
		logger.Error(ctx, "tg", "dialog.fail", slog.String("err", err.Error()))
		return tghelpers.SendText(c, genericErrorText)
	}
	if res.Handled {
		return b.render(c, res.Output)
	}

	if h, ok := b.registry.LookupAction(c.Text()); ok {
		return h(c)
	}
	if fb := b.registry.TextFallback(); fb != nil {
		return fb(c)
	}
	return nil
}

// onCallback routes button presses: operator order actions and flow-start
// triggers come first, then the active flow, then stale-button recovery.
func (b *Bot) onCallback(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "callback")
	userID := c.Sender().ID
	token := callbacks.Token(c)
	_ = c.Respond()

	if h, ok := b.registry.GetCallback(callbacks.CallbackKey(c)); ok {
		return h(c)
	}

	// Order buttons start (or restart) the order flow regardless of what
	// the user was doing.
	if flow, seed, ok := shop.Trigger(token); ok {
		res, err := b.engine.Start(ctx, userID, flow, seed)
		if err != nil {
			logger.Error(ctx, "tg", "dialog.fail", slog.String("err", err.Error()))
			return tghelpers.SendText(c, genericErrorText)
		}
		return b.render(c, res.Output)
	}

	res, err := b.engine.Advance(ctx, userID, dialog.ButtonInput(token))
	if err != nil {
		logger.Error(ctx, "tg", "dialog.fail", slog.String("err", err.Error()))
		return tghelpers.SendText(c, genericErrorText)
	}
	if res.Handled {
		return b.render(c, res.Output)
	}

	// A catalog button on a stale message with no active flow: reopen the
	// catalog from the top instead of ignoring the press.
	kind, _ := shop.SplitToken(token)
	if kind == shop.KindCategory || kind == shop.KindItem {
		res, err := b.engine.Start(ctx, userID, shop.FlowBrowse, nil)
		if err != nil {
			logger.Error(ctx, "tg", "dialog.fail", slog.String("err", err.Error()))
			return tghelpers.SendText(c, genericErrorText)
		}
		return b.render(c, res.Output)
	}

	if nf := b.registry.CallbackNotFound(); nf != nil {
		return nf(c)
	}
	return nil
}

// onOrderDecision applies an operator accept/reject press. Presses from
// anyone else are dropped silently.
func (b *Bot) onOrderDecision(c tele.Context, orderID int64, accept bool) error {
	ctx := tghelpers.WithHandler(c, "order.decision")
	if !b.engine.IsOperator(c.Sender().ID) {
		return nil
	}
	var (
		msg string
		err error
	)
	if accept {
		msg, err = b.orders.Accept(ctx, orderID)
	} else {
		msg, err = b.orders.Reject(ctx, orderID)
	}
	if err != nil {
		logger.Error(ctx, "tg", "order.decision.fail", slog.String("err", err.Error()))
		return tghelpers.SendText(c, genericErrorText)
	}
	return tghelpers.SendText(c, msg)
}

// onOrdersAction lists every order for the operator, one message per order
// so each keeps its own action buttons.
func (b *Bot) onOrdersAction(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "orders.review")
	if !b.engine.IsOperator(c.Sender().ID) {
		return nil
	}
	views, err := b.orders.Review(ctx)
	if err != nil {
		logger.Error(ctx, "tg", "orders.review.fail", slog.String("err", err.Error()))
		return tghelpers.SendText(c, genericErrorText)
	}
	if len(views) == 0 {
		return tghelpers.SendText(c, "No orders yet.")
	}
	for _, v := range views {
		if markup := optionsMarkup(v.Options); markup != nil {
			if err := tghelpers.SendMarkup(c, v.Text, markup); err != nil {
				return err
			}
			continue
		}
		if err := tghelpers.SendText(c, v.Text); err != nil {
			return err
		}
	}
	return nil
}

// onPhoto feeds photo uploads into the active flow; stray photos outside a
// flow are ignored with a hint.
func (b *Bot) onPhoto(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "photo")
	photo := c.Message().Photo
	if photo == nil {
		return nil
	}
	res, err := b.engine.Advance(ctx, c.Sender().ID, dialog.PhotoInput(photo.FileID))
	if err != nil {
		logger.Error(ctx, "tg", "dialog.fail", slog.String("err", err.Error()))
		return tghelpers.SendText(c, genericErrorText)
	}
	if res.Handled {
		return b.render(c, res.Output)
	}
	return nil
}

// onUnknownText nudges the user toward the menu.
func (b *Bot) onUnknownText(c tele.Context) error {
	return tghelpers.SendMarkup(c, "Use the menu below to browse the catalog.",
		mainMenu(b.engine.IsOperator(c.Sender().ID)))
}
