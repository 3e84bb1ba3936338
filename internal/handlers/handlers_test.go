package handlers

import (
	"errors"
	"sort"
	"testing"

	tg "github.com/m3rciful/gamebot/core/telegram"
	"github.com/m3rciful/gamebot/core/telegram/actions"
	"github.com/m3rciful/gamebot/core/telegram/callbacks"
	"github.com/m3rciful/gamebot/internal/games/poker"
	"github.com/m3rciful/gamebot/internal/games/poker/rooms"
	"github.com/m3rciful/gamebot/internal/menu"
	"github.com/m3rciful/gamebot/internal/routes"
	"github.com/m3rciful/gamebot/internal/wallet"
)

var allRoutes = []string{
	routes.MenuMain, routes.GamesList, routes.SettingsLanguage, routes.SettingsLanguageSet,
	routes.PokerStart, routes.PokerHelp,
	routes.PokerRoomCreate, routes.PokerRoomJoin, routes.PokerRoomList,
	routes.PokerRoomLeave, routes.PokerRoomSwitch, routes.PokerRoomInfo,
	routes.PokerTableCheck, routes.PokerTableCall, routes.PokerTableRaise,
	routes.PokerTableFold, routes.PokerTableAllIn,
	routes.WalletBalance, routes.WalletBonus,
}

func modules() Modules {
	return Modules{
		Menu:   menu.New(nil, []string{"en", "ru"}),
		Poker:  poker.New(rooms.NewMemory(6), poker.Options{}),
		Wallet: wallet.New(wallet.NewMemoryLedger(), wallet.Options{}),
	}
}

func TestTableCoversEveryRoute(t *testing.T) {
	reg, err := Build(callbacks.Default, modules().Table())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	got := reg.List()
	want := append([]string(nil), allRoutes...)
	sort.Strings(got)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("routes = %v\nwant %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("routes = %v\nwant %v", got, want)
		}
	}
}

func TestEveryRouteRoundTripsAndFits(t *testing.T) {
	// Largest params each route is ever built with.
	worst := map[string]callbacks.Params{
		routes.PokerRoomJoin:       {routes.ParamRoom: "R-WWWWWW"},
		routes.PokerRoomLeave:      {routes.ParamRoom: "R-WWWWWW"},
		routes.PokerRoomSwitch:     {routes.ParamRoom: "R-WWWWWW"},
		routes.PokerRoomInfo:       {routes.ParamRoom: "R-WWWWWW"},
		routes.PokerTableRaise:     {routes.ParamAmount: "1000000000000"},
		routes.SettingsLanguageSet: {routes.ParamLang: "pt-BR"},
	}
	for _, route := range allRoutes {
		token := callbacks.Default.Encode(route)
		if back := callbacks.Default.Decode(token); back != route {
			t.Fatalf("%s -> %s -> %s", route, token, back)
		}
		if len(token) > len(route) {
			t.Fatalf("token %s longer than %s", token, route)
		}
		data, err := callbacks.Build(callbacks.Default, route, worst[route])
		if err != nil {
			t.Fatalf("%s: %v", route, err)
		}
		if len(data) >= callbacks.MaxDataBytes {
			t.Fatalf("%s: %d bytes", route, len(data))
		}
	}
}

func TestBuildRejectsDuplicates(t *testing.T) {
	m := modules()
	entries := append(m.Table(), m.Wallet.Entries()...)
	_, err := Build(callbacks.Default, entries)
	if !errors.Is(err, actions.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}

func TestCommandsTargetRegisteredRoutes(t *testing.T) {
	table, err := Build(callbacks.Default, modules().Table())
	if err != nil {
		t.Fatal(err)
	}
	reg := tg.NewRegistry()
	if err := RegisterCommands(reg, table); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, cmd, ok := reg.LookupCommand("/lang@gamebot"); !ok || cmd.Route != routes.SettingsLanguage {
		t.Fatalf("alias lookup = %+v %v", cmd, ok)
	}

	empty, _ := actions.NewBuilder().Build()
	if err := RegisterCommands(tg.NewRegistry(), empty); err == nil {
		t.Fatal("commands pointing at missing routes must fail")
	}
}
