package helpers

import (
	"github.com/m3rciful/gamebot/core/telegram/actions"

	tele "gopkg.in/telebot.v4"
)

// IdentityFrom resolves the sender of the update. Updates without a sender
// yield a zero Identity.
func IdentityFrom(c tele.Context) actions.Identity {
	var id actions.Identity
	if user := c.Sender(); user != nil {
		id.UserID = user.ID
		id.Username = user.Username
		id.Lang = user.LanguageCode
	}
	if chat := c.Chat(); chat != nil {
		id.ChatID = chat.ID
	} else {
		id.ChatID = id.UserID
	}
	return id
}
