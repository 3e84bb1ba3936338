package poker

import (
	"github.com/m3rciful/gamebot/core/telegram/actions"
	"github.com/m3rciful/gamebot/core/telegram/callbacks"
	"github.com/m3rciful/gamebot/core/telegram/keyboard"
	"github.com/m3rciful/gamebot/internal/routes"
)

func lobbyKeyboard(c *actions.Context) (*keyboard.Markup, error) {
	kb := c.Keyboard()
	kb.Row(
		kb.Button(c.T("poker.btn.create"), routes.PokerRoomCreate, nil),
		kb.Button(c.T("poker.btn.list"), routes.PokerRoomList, nil),
	)
	kb.Row(
		kb.Button(c.T("poker.btn.switch"), routes.PokerRoomSwitch, nil),
		kb.Button(c.T("poker.btn.help"), routes.PokerHelp, nil),
	)
	kb.Row(kb.Button(c.T("menu.btn.back"), routes.GamesList, nil))
	return kb.Markup()
}

// tableKeyboard holds the moves for roomID. Moves act on the active room;
// info and leave name the room explicitly so an old keyboard stays correct.
func tableKeyboard(c *actions.Context, roomID string) (*keyboard.Markup, error) {
	kb := c.Keyboard()
	room := callbacks.Params{routes.ParamRoom: roomID}
	kb.Row(
		kb.Button(c.T("poker.btn.check"), routes.PokerTableCheck, nil),
		kb.Button(c.T("poker.btn.call"), routes.PokerTableCall, nil),
		kb.Button(c.T("poker.btn.fold"), routes.PokerTableFold, nil),
	)
	kb.Row(
		kb.Button(c.T("poker.btn.raise"), routes.PokerTableRaise, nil),
		kb.Button(c.T("poker.btn.allin"), routes.PokerTableAllIn, nil),
	)
	kb.Row(
		kb.Button(c.T("poker.btn.info"), routes.PokerRoomInfo, room),
		kb.Button(c.T("poker.btn.leave"), routes.PokerRoomLeave, room),
	)
	kb.Row(kb.Button(c.T("poker.btn.switch"), routes.PokerRoomSwitch, nil))
	return kb.Markup()
}

// backKeyboard returns a single button leading to the lobby.
func backKeyboard(c *actions.Context) (*keyboard.Markup, error) {
	kb := c.Keyboard()
	kb.Row(kb.Button(c.T("menu.btn.back"), routes.PokerStart, nil))
	return kb.Markup()
}
