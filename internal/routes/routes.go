// Package routes names every action route the bot serves.
package routes

// Menu and settings.
const (
	MenuMain            = "menu.main"
	GamesList           = "games.list"
	SettingsLanguage    = "settings.language"
	SettingsLanguageSet = "settings.language.set"
)

// Poker lobby and rooms.
const (
	PokerStart      = "games.poker.start"
	PokerHelp       = "games.poker.help"
	PokerRoomCreate = "games.poker.room.create"
	PokerRoomJoin   = "games.poker.room.join"
	PokerRoomList   = "games.poker.room.list"
	PokerRoomLeave  = "games.poker.room.leave"
	PokerRoomSwitch = "games.poker.room.switch"
	PokerRoomInfo   = "games.poker.room.info"
)

// Poker table moves.
const (
	PokerTableCheck = "games.poker.table.check"
	PokerTableCall  = "games.poker.table.call"
	PokerTableRaise = "games.poker.table.raise"
	PokerTableFold  = "games.poker.table.fold"
	PokerTableAllIn = "games.poker.table.allin"
)

// Wallet.
const (
	WalletBalance = "wallet.balance"
	WalletBonus   = "wallet.bonus"
)

// Param keys shared by handlers and the buttons that target them.
const (
	ParamRoom   = "room"
	ParamAmount = "amount"
	ParamLang   = "lang"
	ParamText   = "text"
	ParamArgs   = "args"
)
