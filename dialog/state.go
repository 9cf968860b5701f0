package dialog

import "github.com/shopspring/decimal"

// FlowName identifies a registered flow.
type FlowName string

// StepName identifies a step within a flow.
type StepName string

// Fields is the bag of values a flow has collected so far.
type Fields map[string]any

// String retrieves a string field, or "" when absent.
func (f Fields) String(key string) string {
	if v, ok := f[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Int64 retrieves an int64 field.
func (f Fields) Int64(key string) (int64, bool) {
	v, ok := f[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

// Decimal retrieves a decimal field.
func (f Fields) Decimal(key string) (decimal.Decimal, bool) {
	if v, ok := f[key]; ok {
		if d, ok := v.(decimal.Decimal); ok {
			return d, true
		}
	}
	return decimal.Decimal{}, false
}

// Clone returns a shallow copy so stored sessions never alias caller maps.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Session is the conversation state of one user: the active flow, the
// current step, and the fields collected so far.
type Session struct {
	Flow   FlowName
	Step   StepName
	Fields Fields
}

// StateStore keeps one Session per user identity. A Put overwrites the prior
// session wholesale: there is never more than one active flow per user.
type StateStore interface {
	Get(userID int64) (Session, bool)
	Put(userID int64, s Session)
	Clear(userID int64)
}
