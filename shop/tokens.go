package shop

import (
	"strconv"
	"strings"
)

// Button tokens are "<kind>|<id>" so the transport adapter can split them
// into a callback key and payload without knowing the shop's vocabulary.
const (
	KindCategory = "cat"
	KindItem     = "item"
	KindOrder    = "order"
	KindAccept   = "accept"
	KindReject   = "reject"

	TokenBack    = "back"
	TokenConfirm = "confirm"
)

// CategoryToken builds the selection token for a category.
func CategoryToken(id int64) string { return idToken(KindCategory, id) }

// ItemToken builds the selection token for an item.
func ItemToken(id int64) string { return idToken(KindItem, id) }

// OrderToken builds the order-flow trigger token for an item.
func OrderToken(itemID int64) string { return idToken(KindOrder, itemID) }

// AcceptToken builds the operator accept token for an order.
func AcceptToken(orderID int64) string { return idToken(KindAccept, orderID) }

// RejectToken builds the operator reject token for an order.
func RejectToken(orderID int64) string { return idToken(KindReject, orderID) }

func idToken(kind string, id int64) string {
	return kind + "|" + strconv.FormatInt(id, 10)
}

// SplitToken splits a token into its kind and raw payload. Tokens without a
// separator come back with an empty payload.
func SplitToken(token string) (kind, payload string) {
	kind, payload, _ = strings.Cut(token, "|")
	return kind, payload
}

// TokenID extracts the numeric payload of a token of the expected kind.
func TokenID(token, wantKind string) (int64, bool) {
	kind, payload := SplitToken(token)
	if kind != wantKind {
		return 0, false
	}
	id, err := strconv.ParseInt(payload, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
