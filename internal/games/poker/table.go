package poker

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/m3rciful/gamebot/core/telegram/actions"
	"github.com/m3rciful/gamebot/core/telegram/keyboard"
	"github.com/m3rciful/gamebot/internal/games/poker/rooms"
	"github.com/m3rciful/gamebot/internal/routes"
)

// seatedRoom returns the active room after checking the user still sits in it.
// ok is false when a reply has already been sent.
func (m *Module) seatedRoom(ctx context.Context, c *actions.Context) (string, bool, error) {
	id, ok := c.State().ActiveRoom(c.Identity.UserID)
	if !ok {
		return "", false, m.replyNoRoom(ctx, c)
	}
	room, err := m.dir.Get(ctx, id)
	if errors.Is(err, rooms.ErrNotFound) || (err == nil && !room.Has(c.Identity.UserID)) {
		return "", false, m.replyGone(ctx, c, id)
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (m *Module) move(key string) actions.Handler {
	return func(ctx context.Context, c *actions.Context) error {
		id, ok, err := m.seatedRoom(ctx, c)
		if !ok {
			return err
		}
		markup, err := tableKeyboard(c, id)
		if err != nil {
			return err
		}
		return c.Reply(ctx, c.T(key, id), markup)
	}
}

// raise takes the amount from the button, or from the text typed after a
// prompt. Without either it prompts and waits for the next message.
func (m *Module) raise(ctx context.Context, c *actions.Context) error {
	id, ok, err := m.seatedRoom(ctx, c)
	if !ok {
		return err
	}

	raw := c.Param(routes.ParamAmount)
	if raw == "" {
		raw = strings.TrimSpace(c.Param(routes.ParamText))
	}
	if raw == "" {
		c.Await(routes.PokerTableRaise)
		return c.Reply(ctx, c.T("poker.table.raise.prompt"), keyboard.ForceReply())
	}

	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || amount <= 0 {
		c.Await(routes.PokerTableRaise)
		return c.Reply(ctx, c.T("poker.table.raise.invalid", raw), keyboard.ForceReply())
	}
	markup, err := tableKeyboard(c, id)
	if err != nil {
		return err
	}
	return c.Reply(ctx, c.T("poker.table.raise", amount, id), markup)
}
