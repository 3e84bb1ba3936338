package router

import (
	"context"

	"github.com/m3rciful/gamebot/core/telegram/actions"
	tghelpers "github.com/m3rciful/gamebot/core/telegram/helpers"
	"github.com/m3rciful/gamebot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Messenger adapts a telebot update to actions.Replier.
type Messenger struct {
	c tele.Context
}

// NewMessenger wraps c.
func NewMessenger(c tele.Context) *Messenger {
	return &Messenger{c: c}
}

// Reply edits the message a tapped button belongs to, or sends a new one.
// Force-reply prompts are always sent as new messages since Telegram cannot
// attach them to an edit.
func (m *Messenger) Reply(_ context.Context, text string, markup *keyboard.Markup) error {
	rm := markup.Inline()
	if m.c.Callback() != nil && (markup == nil || !markup.ForceReply) {
		return tghelpers.EditOrSend(m.c, text, rm)
	}
	return tghelpers.SendText(m.c, text, rm)
}

func newRequest(c tele.Context) actions.Request {
	return actions.Request{
		Messenger: NewMessenger(c),
		Identity:  tghelpers.IdentityFrom(c),
	}
}
