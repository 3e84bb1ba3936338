// Package handlers is the static table of handler modules the bot serves.
package handlers

import (
	"errors"
	"fmt"

	tg "github.com/m3rciful/gamebot/core/telegram"
	"github.com/m3rciful/gamebot/core/telegram/actions"
	"github.com/m3rciful/gamebot/core/telegram/callbacks"
	"github.com/m3rciful/gamebot/core/telegram/commands"
	"github.com/m3rciful/gamebot/internal/games/poker"
	"github.com/m3rciful/gamebot/internal/menu"
	"github.com/m3rciful/gamebot/internal/routes"
	"github.com/m3rciful/gamebot/internal/wallet"
)

// Module is anything that contributes routes.
type Module interface {
	Entries() []actions.Entry
}

// Modules are the handler modules in registration order.
type Modules struct {
	Menu   *menu.Module
	Poker  *poker.Module
	Wallet *wallet.Module
}

// Table flattens the modules into one entry list.
func (m Modules) Table() []actions.Entry {
	var out []actions.Entry
	for _, mod := range []Module{m.Menu, m.Poker, m.Wallet} {
		out = append(out, mod.Entries()...)
	}
	return out
}

// Build registers every entry and checks that codec round-trips all routes.
// Any error here is a configuration error and must stop startup.
func Build(codec *callbacks.Codec, entries []actions.Entry) (*actions.Registry, error) {
	reg, err := actions.NewBuilder().Add(entries...).Build()
	if err != nil {
		return nil, err
	}
	if err := codec.Verify(reg.List()); err != nil {
		return nil, &actions.ConfigError{Reason: err.Error()}
	}
	return reg, nil
}

// Commands are the slash commands shown in the bot menu.
func Commands() map[string]commands.Command {
	return map[string]commands.Command{
		"/start":    {Route: routes.MenuMain, Description: "Open the main menu", Aliases: []string{"menu"}},
		"/poker":    {Route: routes.PokerStart, Description: "Play poker"},
		"/rooms":    {Route: routes.PokerRoomList, Description: "Open poker rooms"},
		"/wallet":   {Route: routes.WalletBalance, Description: "Show your balance"},
		"/language": {Route: routes.SettingsLanguage, Description: "Change language", Aliases: []string{"lang"}},
		"/help":     {Route: routes.PokerHelp, Description: "How to play"},
	}
}

// RegisterCommands adds Commands to reg and checks they target registered routes.
func RegisterCommands(reg *tg.Registry, table *actions.Registry) error {
	var errs []error
	for name, cmd := range Commands() {
		if err := reg.RegisterCommand(name, cmd); err != nil {
			errs = append(errs, err)
		}
	}
	if err := reg.Verify(table.Has); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("handlers: commands: %w", err)
	}
	return nil
}
