// Package poker serves the poker lobby, room membership and table actions.
// Hand evaluation and betting rounds live outside the bot; table actions
// acknowledge the move for the player's active room.
package poker

import (
	"context"

	"github.com/m3rciful/gamebot/core/telegram/actions"
	"github.com/m3rciful/gamebot/internal/games/poker/rooms"
	"github.com/m3rciful/gamebot/internal/routes"
)

const defaultListLimit = 8

// Options tune the lobby.
type Options struct {
	// ListLimit caps the open rooms shown at once. Zero means 8.
	ListLimit int
}

// Module holds the poker handlers.
type Module struct {
	dir  rooms.Directory
	opts Options
}

// New returns the module backed by dir.
func New(dir rooms.Directory, opts Options) *Module {
	if opts.ListLimit <= 0 {
		opts.ListLimit = defaultListLimit
	}
	return &Module{dir: dir, opts: opts}
}

// Entries lists the module's routes.
func (m *Module) Entries() []actions.Entry {
	return []actions.Entry{
		{Route: routes.PokerStart, Handler: m.start},
		{Route: routes.PokerHelp, Handler: m.help},
		{Route: routes.PokerRoomCreate, Handler: m.create},
		{Route: routes.PokerRoomJoin, Handler: m.join},
		{Route: routes.PokerRoomList, Handler: m.list},
		{Route: routes.PokerRoomLeave, Handler: m.leave},
		{Route: routes.PokerRoomSwitch, Handler: m.switchRoom},
		{Route: routes.PokerRoomInfo, Handler: m.info},
		{Route: routes.PokerTableCheck, Handler: m.move("poker.table.check")},
		{Route: routes.PokerTableCall, Handler: m.move("poker.table.call")},
		{Route: routes.PokerTableFold, Handler: m.move("poker.table.fold")},
		{Route: routes.PokerTableAllIn, Handler: m.move("poker.table.allin")},
		{Route: routes.PokerTableRaise, Handler: m.raise},
	}
}

func (m *Module) start(ctx context.Context, c *actions.Context) error {
	markup, err := lobbyKeyboard(c)
	if err != nil {
		return err
	}
	return c.Reply(ctx, c.T("poker.start.title"), markup)
}

func (m *Module) help(ctx context.Context, c *actions.Context) error {
	kb := c.Keyboard()
	kb.Row(kb.Button(c.T("menu.btn.back"), routes.PokerStart, nil))
	markup, err := kb.Markup()
	if err != nil {
		return err
	}
	return c.Reply(ctx, c.T("poker.help.text"), markup)
}
