package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/gamebot/core/logger"
	"github.com/m3rciful/gamebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalQueue atomic.Pointer[sender.Queue]

// SetQueue wires the asynchronous sender used by helper functions. Nil sends inline.
func SetQueue(q *sender.Queue) {
	globalQueue.Store(q)
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	q := globalQueue.Load()
	if q == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := q.Enqueue(ctx, action, endpoint, run); err != nil {
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

// SendText sends plain text with an optional markup to the current chat.
func SendText(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ReplyMarkup: markup}
	return sendAsync(c, "send.text", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}

// EditOrSend edits the message the callback came from, or sends a new one
// when there is nothing to edit.
func EditOrSend(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ReplyMarkup: markup}
	return sendAsync(c, "edit_or_send.text", "editMessageText", func() error {
		return c.EditOrSend(text, opts)
	})
}
