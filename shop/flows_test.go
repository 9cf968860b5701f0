package shop

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"flowerbot/catalog"
	"flowerbot/dialog"
)

const (
	operatorID = int64(100)
	customerID = int64(7)
)

type fixture struct {
	store  *catalog.MemoryStore
	engine *dialog.Engine
	orders *Orders
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := catalog.NewMemoryStore()
	shop := New(store, nil)
	engine := dialog.New(dialog.NewMemoryState(), operatorID, nil)
	for _, f := range shop.Flows() {
		if err := engine.Register(f); err != nil {
			t.Fatalf("register %s: %v", f.Name, err)
		}
	}
	return &fixture{store: store, engine: engine, orders: NewOrders(store, nil)}
}

func (fx *fixture) seedItem(t *testing.T, category, name, price string) int64 {
	t.Helper()
	ctx := context.Background()
	catID, err := fx.store.CreateCategory(ctx, category)
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		t.Fatalf("price %q: %v", price, err)
	}
	itemID, err := fx.store.CreateItem(ctx, catalog.ItemDraft{
		CategoryID: catID, Name: name, Price: p,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	return itemID
}

func (fx *fixture) advance(t *testing.T, user int64, in dialog.Input) dialog.Result {
	t.Helper()
	res, err := fx.engine.Advance(context.Background(), user, in)
	if err != nil {
		t.Fatalf("advance(%v): %v", in, err)
	}
	return res
}

func TestPickupOrderRecordsExactFields(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	itemID := fx.seedItem(t, "Bouquets", "Peony Mix", "49.90")

	if _, err := fx.engine.Start(ctx, customerID, FlowOrder, OrderSeed(itemID)); err != nil {
		t.Fatalf("start: %v", err)
	}
	fx.advance(t, customerID, dialog.TextInput("Ada"))
	fx.advance(t, customerID, dialog.TextInput("+15551234567"))
	res := fx.advance(t, customerID, dialog.ButtonInput("pickup"))
	if res.Session.Step != "confirm" {
		t.Fatalf("pickup must skip the address step, got step %s", res.Session.Step)
	}
	final := fx.advance(t, customerID, dialog.ButtonInput(TokenConfirm))
	if !final.Output.Done {
		t.Fatalf("expected completion, got %+v", final.Output)
	}
	if final.Output.Notice == nil || !strings.Contains(final.Output.Notice.Text, "Peony Mix") {
		t.Fatalf("operator notice missing or wrong: %+v", final.Output.Notice)
	}

	orders, err := fx.store.ListOrders(ctx)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected one order, got %d", len(orders))
	}
	ord := orders[0]
	if ord.ItemID != itemID || ord.CustomerID != customerID {
		t.Fatalf("order references wrong records: %+v", ord)
	}
	if ord.CustomerName != "Ada" || ord.CustomerPhone != "+15551234567" {
		t.Fatalf("order form fields wrong: %+v", ord)
	}
	if ord.DeliveryMethod != catalog.DeliveryPickup || ord.Address != "" {
		t.Fatalf("pickup order must have no address: %+v", ord)
	}
	if ord.Status != catalog.StatusNew {
		t.Fatalf("fresh order status = %s", ord.Status)
	}
}

func TestDeliveryOrderRequiresAddress(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	itemID := fx.seedItem(t, "Bouquets", "Rose Dozen", "79.00")

	if _, err := fx.engine.Start(ctx, customerID, FlowOrder, OrderSeed(itemID)); err != nil {
		t.Fatalf("start: %v", err)
	}
	fx.advance(t, customerID, dialog.TextInput("Grace"))
	fx.advance(t, customerID, dialog.TextInput("+442012345678"))
	res := fx.advance(t, customerID, dialog.ButtonInput("delivery"))
	if res.Session.Step != "address" {
		t.Fatalf("delivery must route through address, got step %s", res.Session.Step)
	}

	// The confirm button cannot short-circuit the address step.
	res = fx.advance(t, customerID, dialog.ButtonInput(TokenConfirm))
	if res.Session.Step != "address" || res.Output.Done {
		t.Fatalf("confirm before address must not advance: %+v", res)
	}

	fx.advance(t, customerID, dialog.TextInput("1 Main St"))
	final := fx.advance(t, customerID, dialog.ButtonInput(TokenConfirm))
	if !final.Output.Done {
		t.Fatalf("expected completion, got %+v", final.Output)
	}
	orders, _ := fx.store.ListOrders(ctx)
	if orders[0].Address != "1 Main St" || orders[0].DeliveryMethod != catalog.DeliveryCourier {
		t.Fatalf("delivery order fields wrong: %+v", orders[0])
	}
}

func TestOrderAbortsWhenItemVanishes(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	itemID := fx.seedItem(t, "Bouquets", "Tulip Bunch", "25.00")

	if _, err := fx.engine.Start(ctx, customerID, FlowOrder, OrderSeed(itemID)); err != nil {
		t.Fatalf("start: %v", err)
	}
	fx.advance(t, customerID, dialog.TextInput("Linus"))
	fx.advance(t, customerID, dialog.TextInput("+15550000000"))

	if err := fx.store.DeleteItem(ctx, itemID); err != nil {
		t.Fatalf("delete item: %v", err)
	}

	res := fx.advance(t, customerID, dialog.ButtonInput("pickup"))
	if !res.Output.Cancelled {
		t.Fatalf("flow must abort when the item vanished: %+v", res.Output)
	}
	if fx.engine.Active(customerID) {
		t.Fatal("state survived the abort")
	}
	if orders, _ := fx.store.ListOrders(ctx); len(orders) != 0 {
		t.Fatalf("no order should exist, got %d", len(orders))
	}
}

func TestCategoryDeleteCascadesButOrdersSurvive(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	itemID := fx.seedItem(t, "Bouquets", "Lily Trio", "30.00")
	orderID, err := fx.store.CreateOrder(ctx, catalog.OrderDraft{
		ItemID: itemID, CustomerID: customerID,
		CustomerName: "Ada", CustomerPhone: "+1555",
		Method: catalog.DeliveryPickup,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	cats, _ := fx.store.ListCategories(ctx)

	if _, err := fx.engine.Start(ctx, operatorID, FlowDelCategory, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	final := fx.advance(t, operatorID, dialog.ButtonInput(CategoryToken(cats[0].ID)))
	if !final.Output.Done {
		t.Fatalf("expected completion, got %+v", final.Output)
	}

	if _, err := fx.store.GetItem(ctx, itemID); err == nil {
		t.Fatal("item survived the category delete")
	}
	ord, err := fx.store.GetOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("order must survive: %v", err)
	}
	if ord.Status != catalog.StatusNew {
		t.Fatalf("order status changed by cascade: %s", ord.Status)
	}

	views, err := fx.orders.Review(ctx)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if len(views) != 1 || !strings.Contains(views[0].Text, "(deleted item)") {
		t.Fatalf("review should tolerate the deleted item: %+v", views)
	}
}

func TestAdminFlowsDeniedForCustomers(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	fx.seedItem(t, "Bouquets", "Orchid", "60.00")

	for _, name := range []dialog.FlowName{FlowAddCategory, FlowDelCategory, FlowAddItem, FlowDelItem} {
		res, err := fx.engine.Start(ctx, customerID, name, nil)
		if err != nil {
			t.Fatalf("start %s: %v", name, err)
		}
		if !res.Denied {
			t.Fatalf("flow %s started for a customer", name)
		}
		if fx.engine.Active(customerID) {
			t.Fatalf("flow %s left state behind", name)
		}
	}
	if cats, _ := fx.store.ListCategories(ctx); len(cats) != 1 {
		t.Fatalf("catalog mutated by denied flows: %d categories", len(cats))
	}
}

func TestAddItemRepromptsOnBadPrice(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	catID, err := fx.store.CreateCategory(ctx, "Bouquets")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	if _, err := fx.engine.Start(ctx, operatorID, FlowAddItem, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	fx.advance(t, operatorID, dialog.ButtonInput(CategoryToken(catID)))
	fx.advance(t, operatorID, dialog.TextInput("Sunflowers"))
	fx.advance(t, operatorID, dialog.TextInput("Five stems"))

	res := fx.advance(t, operatorID, dialog.TextInput("cheap"))
	if res.Session.Step != "price" {
		t.Fatalf("bad price must stay on the price step, got %s", res.Session.Step)
	}
	res = fx.advance(t, operatorID, dialog.TextInput("-5"))
	if res.Session.Step != "price" {
		t.Fatalf("negative price must stay on the price step, got %s", res.Session.Step)
	}

	res = fx.advance(t, operatorID, dialog.TextInput("19.90"))
	if res.Session.Step != "photo" {
		t.Fatalf("valid price must advance to photo, got %s", res.Session.Step)
	}
	final := fx.advance(t, operatorID, dialog.TextInput("/skip"))
	if !final.Output.Done {
		t.Fatalf("expected completion, got %+v", final.Output)
	}

	items, _ := fx.store.ListItems(ctx)
	if len(items) != 1 || items[0].Price.String() != "19.9" || items[0].PhotoID != "" {
		t.Fatalf("stored item wrong: %+v", items)
	}
}

func TestAddCategoryDuplicateEndsFlow(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	if _, err := fx.store.CreateCategory(ctx, "Bouquets"); err != nil {
		t.Fatalf("create category: %v", err)
	}

	if _, err := fx.engine.Start(ctx, operatorID, FlowAddCategory, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	res := fx.advance(t, operatorID, dialog.TextInput("bouquets"))
	if !res.Output.Cancelled {
		t.Fatalf("duplicate name must end the flow, got %+v", res.Output)
	}
	if fx.engine.Active(operatorID) {
		t.Fatal("state survived the duplicate abort")
	}
	if cats, _ := fx.store.ListCategories(ctx); len(cats) != 1 {
		t.Fatalf("duplicate created: %d categories", len(cats))
	}
}

func TestBrowseBackAndOrderTrigger(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	itemID := fx.seedItem(t, "Bouquets", "Peony Mix", "49.90")

	start, err := fx.engine.Start(ctx, customerID, FlowBrowse, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(start.Output.Options) == 0 {
		t.Fatal("category menu has no options")
	}
	cats, _ := fx.store.ListCategories(ctx)
	res := fx.advance(t, customerID, dialog.ButtonInput(CategoryToken(cats[0].ID)))
	if res.Session.Step != "item" {
		t.Fatalf("expected item list, got %s", res.Session.Step)
	}
	res = fx.advance(t, customerID, dialog.ButtonInput(ItemToken(itemID)))
	if res.Session.Step != "card" {
		t.Fatalf("expected item card, got %s", res.Session.Step)
	}
	if !strings.Contains(res.Output.Text, "49.90") {
		t.Fatalf("card must show the price: %q", res.Output.Text)
	}

	// The card's order button is a flow trigger, not a step input.
	var orderToken string
	for _, opt := range res.Output.Options {
		if _, ok := TokenID(opt.Token, KindOrder); ok {
			orderToken = opt.Token
		}
	}
	flow, seed, ok := Trigger(orderToken)
	if !ok || flow != FlowOrder {
		t.Fatalf("order button must resolve to the order flow: %q", orderToken)
	}
	if id, _ := seed.Int64(fieldItemID); id != itemID {
		t.Fatalf("trigger seed item = %d, want %d", id, itemID)
	}

	// Back returns to the item list.
	res = fx.advance(t, customerID, dialog.ButtonInput(TokenBack))
	if res.Session.Step != "item" {
		t.Fatalf("back from card should return to items, got %s", res.Session.Step)
	}
}

func TestBrowseAbortsOnEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	res, err := fx.engine.Start(ctx, customerID, FlowBrowse, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !res.Output.Cancelled {
		t.Fatalf("empty catalog should end browsing immediately: %+v", res.Output)
	}
	if fx.engine.Active(customerID) {
		t.Fatal("state left behind for an empty catalog")
	}
}

func TestOperatorAcceptAndReject(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	itemID := fx.seedItem(t, "Bouquets", "Peony Mix", "49.90")
	first, _ := fx.store.CreateOrder(ctx, catalog.OrderDraft{
		ItemID: itemID, CustomerID: customerID,
		CustomerName: "Ada", CustomerPhone: "+1555", Method: catalog.DeliveryPickup,
	})
	second, _ := fx.store.CreateOrder(ctx, catalog.OrderDraft{
		ItemID: itemID, CustomerID: customerID,
		CustomerName: "Grace", CustomerPhone: "+1556", Method: catalog.DeliveryPickup,
	})

	msg, err := fx.orders.Accept(ctx, first)
	if err != nil || !strings.Contains(msg, "confirmed") {
		t.Fatalf("accept: %q, %v", msg, err)
	}
	msg, err = fx.orders.Reject(ctx, second)
	if err != nil || !strings.Contains(msg, "cancelled") {
		t.Fatalf("reject: %q, %v", msg, err)
	}
	msg, err = fx.orders.Accept(ctx, 9999)
	if err != nil || !strings.Contains(msg, "no longer exists") {
		t.Fatalf("missing order: %q, %v", msg, err)
	}

	views, err := fx.orders.Review(ctx)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected two orders, got %d", len(views))
	}
	// Newest first, and settled orders carry no action buttons.
	if !strings.Contains(views[0].Text, "Grace") {
		t.Fatalf("orders not newest first: %q", views[0].Text)
	}
	for _, v := range views {
		if len(v.Options) != 0 {
			t.Fatalf("settled order still offers actions: %+v", v)
		}
	}
}
