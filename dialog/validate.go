package dialog

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// NonEmptyText accepts free text and records the trimmed value.
func NonEmptyText(reprompt string) Validator {
	return func(_ context.Context, in Input, _ Fields) (any, error) {
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return nil, Invalid("%s", reprompt)
		}
		return text, nil
	}
}

// NonNegativeDecimal accepts text that parses as a decimal >= 0 and records
// the parsed value.
func NonNegativeDecimal(reprompt string) Validator {
	return func(_ context.Context, in Input, _ Fields) (any, error) {
		raw := strings.TrimSpace(in.Text)
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, Invalid("%s", reprompt)
		}
		if d.IsNegative() {
			return nil, Invalid("%s", reprompt)
		}
		return d, nil
	}
}

// OneOf accepts a button token (or exact text) from the enumerated set and
// records the matched token.
func OneOf(reprompt string, tokens ...string) Validator {
	allowed := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		allowed[t] = struct{}{}
	}
	return func(_ context.Context, in Input, _ Fields) (any, error) {
		candidate := in.Token
		if in.Kind == KindText {
			candidate = strings.TrimSpace(in.Text)
		}
		if _, ok := allowed[candidate]; !ok {
			return nil, Invalid("%s", reprompt)
		}
		return candidate, nil
	}
}

// PhotoOrSkip accepts a photo upload (recording its file reference) or the
// skip marker (recording the empty string).
func PhotoOrSkip(reprompt string) Validator {
	return func(_ context.Context, in Input, _ Fields) (any, error) {
		switch in.Kind {
		case KindPhoto:
			if in.PhotoID == "" {
				return nil, Invalid("%s", reprompt)
			}
			return in.PhotoID, nil
		case KindSkip:
			return "", nil
		case KindText:
			if strings.EqualFold(strings.TrimSpace(in.Text), "/skip") {
				return "", nil
			}
		}
		return nil, Invalid("%s", reprompt)
	}
}
