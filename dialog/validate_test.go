package dialog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNonNegativeDecimal(t *testing.T) {
	v := NonNegativeDecimal("bad price")
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"199.50", "199.5", true},
		{" 0 ", "0", true},
		{"12,5", "", false},
		{"abc", "", false},
		{"-1", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, err := v(context.Background(), TextInput(c.in), nil)
		if c.ok {
			if err != nil {
				t.Fatalf("%q: unexpected error %v", c.in, err)
			}
			if got.(decimal.Decimal).String() != c.want {
				t.Fatalf("%q: got %v, want %s", c.in, got, c.want)
			}
			continue
		}
		var invalid *InvalidInput
		if !errors.As(err, &invalid) {
			t.Fatalf("%q: want InvalidInput, got %v", c.in, err)
		}
		if invalid.Message != "bad price" {
			t.Fatalf("%q: message = %q", c.in, invalid.Message)
		}
	}
}

func TestOneOfAcceptsTokenOrText(t *testing.T) {
	v := OneOf("pick one", "delivery", "pickup")

	got, err := v(context.Background(), ButtonInput("pickup"), nil)
	if err != nil || got != "pickup" {
		t.Fatalf("button: got %v, %v", got, err)
	}
	got, err = v(context.Background(), TextInput(" delivery "), nil)
	if err != nil || got != "delivery" {
		t.Fatalf("text: got %v, %v", got, err)
	}
	if _, err = v(context.Background(), TextInput("teleport"), nil); err == nil {
		t.Fatal("unknown choice accepted")
	}
}

func TestPhotoOrSkip(t *testing.T) {
	v := PhotoOrSkip("photo or /skip")

	got, err := v(context.Background(), PhotoInput("file-9"), nil)
	if err != nil || got != "file-9" {
		t.Fatalf("photo: got %v, %v", got, err)
	}
	got, err = v(context.Background(), SkipInput(), nil)
	if err != nil || got != "" {
		t.Fatalf("skip marker: got %v, %v", got, err)
	}
	got, err = v(context.Background(), TextInput("/skip"), nil)
	if err != nil || got != "" {
		t.Fatalf("skip text: got %v, %v", got, err)
	}
	if _, err = v(context.Background(), TextInput("no photo sorry"), nil); err == nil {
		t.Fatal("plain text accepted as photo")
	}
}

func TestMemoryStateIsolatesFields(t *testing.T) {
	s := NewMemoryState()
	s.Put(1, Session{Flow: "order", Step: "name", Fields: Fields{"item_id": int64(5)}})

	got, ok := s.Get(1)
	if !ok {
		t.Fatal("missing session")
	}
	got.Fields["item_id"] = int64(6)

	again, _ := s.Get(1)
	if id, _ := again.Fields.Int64("item_id"); id != 5 {
		t.Fatalf("stored fields aliased by caller mutation: %d", id)
	}

	s.Clear(1)
	if _, ok := s.Get(1); ok {
		t.Fatal("session survived Clear")
	}
}
