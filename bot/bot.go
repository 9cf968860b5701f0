// Package bot wires the flower shop's dialog flows onto the Telegram
// transport: it normalizes inbound updates into dialog inputs, routes
// menu actions and operator callbacks, and renders dialog outputs back
// into messages and keyboards.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"flowerbot/catalog"
	"flowerbot/core/logger"
	tgcore "flowerbot/core/telegram"
	tghelpers "flowerbot/core/telegram/helpers"
	"flowerbot/core/telegram/middleware"
	"flowerbot/dialog"
	"flowerbot/shop"
)

// Bot is the assembled application: dialog engine, shop flows, operator
// order review and the transport registry.
type Bot struct {
	cfg        *Config
	engine     *dialog.Engine
	shop       *shop.Shop
	orders     *shop.Orders
	registry   *tgcore.Registry
	operatorID int64
}

// New assembles the bot over the given catalog store.
func New(cfg *Config, store catalog.Store) (*Bot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config")
	}

	s := shop.New(store, logger.SVCCatalog)
	engine := dialog.New(dialog.NewMemoryState(), cfg.Telegram.AdminID, logger.ENG)
	for _, f := range s.Flows() {
		if err := engine.Register(f); err != nil {
			return nil, fmt.Errorf("bot: register flow: %w", err)
		}
	}

	b := &Bot{
		cfg:        cfg,
		engine:     engine,
		shop:       s,
		orders:     shop.NewOrders(store, logger.SVCOrders),
		registry:   tgcore.NewRegistry(),
		operatorID: cfg.Telegram.AdminID,
	}
	b.wire()
	return b, nil
}

// Registry exposes the transport registry for diagnostics.
func (b *Bot) Registry() *tgcore.Registry {
	return b.registry
}

// wire registers commands and menu actions.
func (b *Bot) wire() {
	b.registry.RegisterCommand("/start", tgcore.Command{
		Handler:     b.onStart,
		Description: "Show the main menu",
	})
	b.registry.RegisterCommand("/cancel", tgcore.Command{
		Handler:     b.onCancelCommand,
		Description: "Cancel the current action",
	})
	b.registry.RegisterCommand("/orders", tgcore.Command{
		Handler:     b.onOrdersAction,
		Description: "Review incoming orders",
		AdminOnly:   true,
	})

	b.registry.RegisterAction(LabelCatalog, b.startFlowAction(shop.FlowBrowse))
	b.registry.RegisterAction(LabelAddCategory, b.startFlowAction(shop.FlowAddCategory))
	b.registry.RegisterAction(LabelDelCategory, b.startFlowAction(shop.FlowDelCategory))
	b.registry.RegisterAction(LabelAddItem, b.startFlowAction(shop.FlowAddItem))
	b.registry.RegisterAction(LabelDelItem, b.startFlowAction(shop.FlowDelItem))
	b.registry.RegisterAction(LabelOrders, b.onOrdersAction)

	if err := b.registry.RegisterCallback(shop.KindAccept, b.orderDecisionCallback(true)); err != nil {
		logger.Error(logger.Background(), "tg.wire", "register.callback.fail", slog.String("err", err.Error()))
	}
	if err := b.registry.RegisterCallback(shop.KindReject, b.orderDecisionCallback(false)); err != nil {
		logger.Error(logger.Background(), "tg.wire", "register.callback.fail", slog.String("err", err.Error()))
	}

	// The callback router acks the query before dispatching, so the
	// unknown-callback fallback must not answer it a second time.
	b.registry.SetCallbackNotFound(func(c tele.Context) error {
		return tghelpers.SendText(c, "That button is no longer active.")
	})

	b.registry.SetTextFallback(b.onUnknownText)
}

// Run starts the transport and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	return tgcore.Run(ctx, tgcore.RunOptions{
		Config:      &b.cfg.Config,
		Registry:    b.registry,
		Middlewares: tgcore.DefaultMiddlewares(&b.cfg.Config, nil),
		Routes:      b.routes(),
	})
}

// routes binds transport endpoints. Commands get their own endpoints;
// everything else funnels through the text, callback and photo routers.
func (b *Bot) routes() []tgcore.Route {
	routes := []tgcore.Route{
		{Endpoint: tele.OnText, Handler: b.onText},
		{Endpoint: tele.OnCallback, Handler: b.onCallback},
		{Endpoint: tele.OnPhoto, Handler: b.onPhoto},
	}
	guard := middleware.OperatorOnlyMiddleware(middleware.OperatorOptions{
		OperatorID: b.operatorID,
		OnReject: func(c tele.Context) error {
			return tghelpers.SendText(c, "This command is for the shop operator.")
		},
	})
	for name, cmd := range b.registry.Commands() {
		handler := cmd.Handler
		if cmd.AdminOnly {
			handler = guard(handler)
		}
		routes = append(routes, tgcore.Route{Endpoint: name, Handler: handler})
	}
	return routes
}
