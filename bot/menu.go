package bot

import (
	tele "gopkg.in/telebot.v4"

	"flowerbot/core/telegram/keyboard"
)

// Main menu labels. These arrive as plain text and are routed through the
// registry's actions.
const (
	LabelCatalog     = "Catalog"
	LabelOrders      = "Orders"
	LabelAddCategory = "Add category"
	LabelDelCategory = "Delete category"
	LabelAddItem     = "Add item"
	LabelDelItem     = "Delete item"
)

// mainMenu builds the persistent reply keyboard. The operator gets the
// catalog management rows on top of the customer view.
func mainMenu(operator bool) *tele.ReplyMarkup {
	if !operator {
		return keyboard.ReplyButtons([]string{LabelCatalog})
	}
	return keyboard.ReplyButtons(
		[]string{LabelCatalog, LabelOrders},
		[]string{LabelAddCategory, LabelDelCategory},
		[]string{LabelAddItem, LabelDelItem},
	)
}
