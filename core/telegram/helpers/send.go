package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"flowerbot/core/logger"
	"flowerbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends plain text to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// SendMarkup sends text with a reply markup attached.
func SendMarkup(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	return SendText(c, text, &tele.SendOptions{ReplyMarkup: markup})
}

// SendPhoto sends a photo by its file reference with a caption and optional markup.
func SendPhoto(c tele.Context, fileID, caption string, markup *tele.ReplyMarkup) error {
	photo := &tele.Photo{File: tele.File{FileID: fileID}, Caption: caption}
	return sendAsync(c, "send.photo", "sendPhoto", func() error {
		if markup != nil {
			return c.Send(photo, &tele.SendOptions{ReplyMarkup: markup})
		}
		return c.Send(photo)
	})
}

// SendTo sends text to an arbitrary recipient through the bot, off the
// handler's reply path. Operator notices use this.
func SendTo(c tele.Context, to tele.Recipient, text string) error {
	return sendAsync(c, "send.to", "sendMessage", func() error {
		_, err := c.Bot().Send(to, text)
		return err
	})
}
