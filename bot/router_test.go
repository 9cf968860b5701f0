package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"

	"flowerbot/catalog"
	coreconfig "flowerbot/core/config"
	"flowerbot/shop"
)

const testOperatorID = 100

// fakeContext implements the handful of tele.Context methods the routers
// touch. Everything else panics through the embedded nil interface, which
// is exactly what a test wants from an unexpected call.
type fakeContext struct {
	tele.Context
	sender   *tele.User
	callback *tele.Callback
	text     string
	store    map[string]any
	sent     []string
	responds int
}

func newFakeContext(userID int64) *fakeContext {
	return &fakeContext{
		sender: &tele.User{ID: userID},
		store:  make(map[string]any),
	}
}

func (f *fakeContext) Sender() *tele.User       { return f.sender }
func (f *fakeContext) Chat() *tele.Chat         { return &tele.Chat{ID: f.sender.ID} }
func (f *fakeContext) Update() tele.Update      { return tele.Update{ID: 1} }
func (f *fakeContext) Callback() *tele.Callback { return f.callback }
func (f *fakeContext) Text() string             { return f.text }
func (f *fakeContext) Message() *tele.Message   { return &tele.Message{} }
func (f *fakeContext) Get(key string) any       { return f.store[key] }
func (f *fakeContext) Set(key string, v any)    { f.store[key] = v }

func (f *fakeContext) Respond(_ ...*tele.CallbackResponse) error {
	f.responds++
	return nil
}

func (f *fakeContext) Send(what any, _ ...any) error {
	switch v := what.(type) {
	case string:
		f.sent = append(f.sent, v)
	case *tele.Photo:
		f.sent = append(f.sent, v.Caption)
	default:
		f.sent = append(f.sent, fmt.Sprint(what))
	}
	return nil
}

func newTestBot(t *testing.T) (*Bot, *catalog.MemoryStore) {
	t.Helper()
	store := catalog.NewMemoryStore()
	cfg := &Config{
		Config: coreconfig.Config{
			Telegram: coreconfig.TelegramConfig{
				Token:   "123:abc",
				AdminID: testOperatorID,
			},
		},
	}
	b, err := New(cfg, store)
	if err != nil {
		t.Fatalf("assemble bot: %v", err)
	}
	return b, store
}

func seedCatalog(t *testing.T, store *catalog.MemoryStore) int64 {
	t.Helper()
	ctx := context.Background()
	catID, err := store.CreateCategory(ctx, "Bouquets")
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	itemID, err := store.CreateItem(ctx, catalog.ItemDraft{
		CategoryID: catID,
		Name:       "Roses",
		Price:      decimal.RequireFromString("25.00"),
	})
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return itemID
}

func TestMenuLabelStartsBrowseFlow(t *testing.T) {
	b, store := newTestBot(t)
	seedCatalog(t, store)

	h, ok := b.registry.LookupAction(LabelCatalog)
	if !ok {
		t.Fatalf("no action bound to %q", LabelCatalog)
	}

	c := newFakeContext(7)
	if err := h(c); err != nil {
		t.Fatalf("catalog action: %v", err)
	}
	if !b.engine.Active(7) {
		t.Fatal("browse flow should be active after the menu press")
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "category") {
		t.Fatalf("expected a category prompt, sent = %q", c.sent)
	}
}

func TestAdminMenuLabelDeniedForCustomers(t *testing.T) {
	b, _ := newTestBot(t)

	h, ok := b.registry.LookupAction(LabelAddCategory)
	if !ok {
		t.Fatalf("no action bound to %q", LabelAddCategory)
	}

	c := newFakeContext(7)
	if err := h(c); err != nil {
		t.Fatalf("admin action: %v", err)
	}
	if b.engine.Active(7) {
		t.Fatal("denied start must not leave a session behind")
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "access") {
		t.Fatalf("expected a denial message, sent = %q", c.sent)
	}
}

func TestAcceptCallbackRoutesThroughRegistry(t *testing.T) {
	b, store := newTestBot(t)
	itemID := seedCatalog(t, store)

	orderID, err := store.CreateOrder(context.Background(), catalog.OrderDraft{
		ItemID:        itemID,
		CustomerID:    7,
		CustomerName:  "Ann",
		CustomerPhone: "555",
		Method:        catalog.DeliveryPickup,
	})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}

	if _, ok := b.registry.GetCallback(shop.KindAccept); !ok {
		t.Fatal("accept callback not registered")
	}

	c := newFakeContext(testOperatorID)
	c.callback = &tele.Callback{Data: "\f" + shop.AcceptToken(orderID)}
	if err := b.onCallback(c); err != nil {
		t.Fatalf("accept callback: %v", err)
	}

	ord, err := store.GetOrder(context.Background(), orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if ord.Status != catalog.StatusConfirmed {
		t.Fatalf("status = %s, want confirmed", ord.Status)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "confirmed") {
		t.Fatalf("expected a confirmation message, sent = %q", c.sent)
	}

	// The same press from a customer changes nothing.
	c2 := newFakeContext(7)
	c2.callback = &tele.Callback{Data: "\f" + shop.RejectToken(orderID)}
	if err := b.onCallback(c2); err != nil {
		t.Fatalf("customer callback: %v", err)
	}
	ord, _ = store.GetOrder(context.Background(), orderID)
	if ord.Status != catalog.StatusConfirmed {
		t.Fatalf("customer press changed status to %s", ord.Status)
	}
}

func TestUnknownCallbackAnswersQueryOnce(t *testing.T) {
	b, _ := newTestBot(t)

	c := newFakeContext(7)
	c.callback = &tele.Callback{Data: "\fbogus|1"}
	if err := b.onCallback(c); err != nil {
		t.Fatalf("unknown callback: %v", err)
	}
	if c.responds != 1 {
		t.Fatalf("callback query answered %d times, want 1", c.responds)
	}
	if len(c.sent) != 1 {
		t.Fatalf("expected one fallback message, sent = %q", c.sent)
	}
}
