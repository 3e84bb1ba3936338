package poker

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/m3rciful/gamebot/core/telegram/actions"
	"github.com/m3rciful/gamebot/core/telegram/callbacks"
	"github.com/m3rciful/gamebot/core/telegram/keyboard"
	"github.com/m3rciful/gamebot/internal/games/poker/rooms"
	"github.com/m3rciful/gamebot/internal/routes"
)

// targetRoom is the room named in the params, else the active room.
func targetRoom(c *actions.Context) (string, bool) {
	if id := c.Param(routes.ParamRoom); id != "" {
		return id, true
	}
	return c.State().ActiveRoom(c.Identity.UserID)
}

func (m *Module) replyNoRoom(ctx context.Context, c *actions.Context) error {
	markup, err := lobbyKeyboard(c)
	if err != nil {
		return err
	}
	return c.Reply(ctx, c.T("poker.room.none"), markup)
}

// replyGone answers for a room that no longer exists and forgets it if it was active.
func (m *Module) replyGone(ctx context.Context, c *actions.Context, roomID string) error {
	if active, ok := c.State().ActiveRoom(c.Identity.UserID); ok && active == roomID {
		c.State().ClearActiveRoom(c.Identity.UserID)
	}
	markup, err := lobbyKeyboard(c)
	if err != nil {
		return err
	}
	return c.Reply(ctx, c.T("poker.room.not_found", roomID), markup)
}

func (m *Module) create(ctx context.Context, c *actions.Context) error {
	room, err := m.dir.Create(ctx, c.Identity.UserID)
	if err != nil {
		return err
	}
	c.State().SetActiveRoom(c.Identity.UserID, room.ID)
	c.Log.LogAttrs(ctx, slog.LevelInfo, "poker.room.create",
		slog.String("event", "poker.room.create"),
		slog.String("status", "ok"),
		slog.String("room", room.ID),
	)
	markup, err := tableKeyboard(c, room.ID)
	if err != nil {
		return err
	}
	return c.Reply(ctx, c.T("poker.room.created", room.ID), markup)
}

func (m *Module) join(ctx context.Context, c *actions.Context) error {
	id := c.Param(routes.ParamRoom)
	if id == "" {
		return &callbacks.MissingParamError{Key: routes.ParamRoom}
	}
	if !rooms.ValidID(id) {
		return m.replyGone(ctx, c, id)
	}

	room, err := m.dir.Join(ctx, id, c.Identity.UserID)
	switch {
	case errors.Is(err, rooms.ErrNotFound):
		return m.replyGone(ctx, c, id)
	case errors.Is(err, rooms.ErrRoomFull):
		markup, kerr := backKeyboard(c)
		if kerr != nil {
			return kerr
		}
		return c.Reply(ctx, c.T("poker.room.full", id), markup)
	case errors.Is(err, rooms.ErrAlreadySeated):
		c.State().SetActiveRoom(c.Identity.UserID, id)
		markup, kerr := tableKeyboard(c, id)
		if kerr != nil {
			return kerr
		}
		return c.Reply(ctx, c.T("poker.room.already", id), markup)
	case err != nil:
		return err
	}

	c.State().SetActiveRoom(c.Identity.UserID, id)
	markup, err := tableKeyboard(c, id)
	if err != nil {
		return err
	}
	return c.Reply(ctx, c.T("poker.room.joined", id, len(room.Players), room.MaxSeats), markup)
}

func (m *Module) list(ctx context.Context, c *actions.Context) error {
	open, err := m.dir.List(ctx, m.opts.ListLimit)
	if err != nil {
		return err
	}
	kb := c.Keyboard()
	if len(open) == 0 {
		kb.Row(kb.Button(c.T("poker.btn.create"), routes.PokerRoomCreate, nil))
		kb.Row(kb.Button(c.T("menu.btn.back"), routes.PokerStart, nil))
		markup, err := kb.Markup()
		if err != nil {
			return err
		}
		return c.Reply(ctx, c.T("poker.room.list.empty"), markup)
	}

	buttons := make([]keyboard.Button, 0, len(open))
	for _, r := range open {
		buttons = append(buttons, kb.Button(
			c.T("poker.btn.join", r.ID, len(r.Players), r.MaxSeats),
			routes.PokerRoomJoin,
			callbacks.Params{routes.ParamRoom: r.ID},
		))
	}
	kb.NPerRow(2, buttons...)
	kb.Row(kb.Button(c.T("menu.btn.back"), routes.PokerStart, nil))
	markup, err := kb.Markup()
	if err != nil {
		return err
	}
	return c.Reply(ctx, c.T("poker.room.list.title"), markup)
}

func (m *Module) leave(ctx context.Context, c *actions.Context) error {
	id, ok := targetRoom(c)
	if !ok {
		return m.replyNoRoom(ctx, c)
	}
	err := m.dir.Leave(ctx, id, c.Identity.UserID)
	if errors.Is(err, rooms.ErrNotFound) {
		return m.replyGone(ctx, c, id)
	}
	if err != nil && !errors.Is(err, rooms.ErrNotSeated) {
		return err
	}
	if active, ok := c.State().ActiveRoom(c.Identity.UserID); ok && active == id {
		c.State().ClearActiveRoom(c.Identity.UserID)
	}
	if errors.Is(err, rooms.ErrNotSeated) {
		return m.replyNoRoom(ctx, c)
	}
	markup, err := lobbyKeyboard(c)
	if err != nil {
		return err
	}
	return c.Reply(ctx, c.T("poker.room.left", id), markup)
}

// switchRoom with a room param makes it active. Without one it drops the
// active room and offers every room the user sits in.
func (m *Module) switchRoom(ctx context.Context, c *actions.Context) error {
	seated, err := m.dir.RoomsOf(ctx, c.Identity.UserID)
	if err != nil {
		return err
	}

	if id := c.Param(routes.ParamRoom); id != "" {
		if !slices.Contains(seated, id) {
			return m.replyGone(ctx, c, id)
		}
		c.State().SetActiveRoom(c.Identity.UserID, id)
		markup, err := tableKeyboard(c, id)
		if err != nil {
			return err
		}
		return c.Reply(ctx, c.T("poker.room.switched", id), markup)
	}

	c.State().ClearActiveRoom(c.Identity.UserID)
	if len(seated) == 0 {
		return m.replyNoRoom(ctx, c)
	}
	kb := c.Keyboard()
	buttons := make([]keyboard.Button, 0, len(seated))
	for _, id := range seated {
		buttons = append(buttons, kb.Button(c.T("poker.btn.switch_to", id), routes.PokerRoomSwitch, callbacks.Params{routes.ParamRoom: id}))
	}
	kb.NPerRow(3, buttons...)
	kb.Row(kb.Button(c.T("menu.btn.back"), routes.PokerStart, nil))
	markup, err := kb.Markup()
	if err != nil {
		return err
	}
	return c.Reply(ctx, c.T("poker.room.switch.title"), markup)
}

func (m *Module) info(ctx context.Context, c *actions.Context) error {
	id, ok := targetRoom(c)
	if !ok {
		return m.replyNoRoom(ctx, c)
	}
	room, err := m.dir.Get(ctx, id)
	if errors.Is(err, rooms.ErrNotFound) {
		return m.replyGone(ctx, c, id)
	}
	if err != nil {
		return err
	}
	players := make([]string, 0, len(room.Players))
	for _, p := range room.Players {
		players = append(players, strconv.FormatInt(p, 10))
	}
	markup, err := tableKeyboard(c, id)
	if err != nil {
		return err
	}
	return c.Reply(ctx, c.T("poker.room.info", id, len(room.Players), room.MaxSeats, strings.Join(players, ", ")), markup)
}
