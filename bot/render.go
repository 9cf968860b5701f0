package bot

import (
	"strings"

	tele "gopkg.in/telebot.v4"

	tghelpers "flowerbot/core/telegram/helpers"
	"flowerbot/core/telegram/keyboard"
	"flowerbot/dialog"
)

// optionsMarkup turns dialog options into an inline keyboard, one button
// per row. Each token is split into the callback key and payload so the
// press round-trips through Telebot's \f<unique>|<payload> encoding.
func optionsMarkup(options []dialog.Option) *tele.ReplyMarkup {
	if len(options) == 0 {
		return nil
	}
	btns := make([]keyboard.InlineBtn, 0, len(options))
	for _, opt := range options {
		unique, payload, _ := strings.Cut(opt.Token, "|")
		btns = append(btns, keyboard.InlineBtn{Text: opt.Label, Unique: unique, Data: payload})
	}
	return keyboard.InlineButtons(btns)
}

// render delivers one dialog output to the user, and its operator notice
// (when present) to the operator chat.
func (b *Bot) render(c tele.Context, out dialog.Output) error {
	if out.Notice != nil && out.Notice.Text != "" {
		_ = tghelpers.SendTo(c, tele.ChatID(b.operatorID), out.Notice.Text)
	}

	markup := optionsMarkup(out.Options)
	if out.PhotoID != "" {
		return tghelpers.SendPhoto(c, out.PhotoID, out.Text, markup)
	}
	if markup != nil {
		return tghelpers.SendMarkup(c, out.Text, markup)
	}
	return tghelpers.SendText(c, out.Text)
}
