package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		data    string
		key     string
		payload string
	}{
		{"\fcat|12", "cat", "12"},
		{"\forder|5", "order", "5"},
		{"\fback", "back", ""},
		{"accept|7", "accept", "7"},
		{"", "", ""},
	}
	for _, c := range cases {
		key, payload := ParseCallbackData(&tele.Callback{Data: c.data})
		if key != c.key || payload != c.payload {
			t.Errorf("ParseCallbackData(%q) = %q, %q; want %q, %q",
				c.data, key, payload, c.key, c.payload)
		}
	}
	if key, payload := ParseCallbackData(nil); key != "" || payload != "" {
		t.Errorf("nil callback: got %q, %q", key, payload)
	}
}
