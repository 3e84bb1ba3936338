package poker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/m3rciful/gamebot/core/telegram/actions"
	"github.com/m3rciful/gamebot/core/telegram/callbacks"
	"github.com/m3rciful/gamebot/core/telegram/keyboard"
	"github.com/m3rciful/gamebot/core/telegram/state"
	"github.com/m3rciful/gamebot/internal/games/poker/rooms"
	"github.com/m3rciful/gamebot/internal/routes"
)

type recorder struct {
	mu      sync.Mutex
	texts   []string
	markups []*keyboard.Markup
}

func (r *recorder) Reply(_ context.Context, text string, m *keyboard.Markup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	r.markups = append(r.markups, m)
	return nil
}

func (r *recorder) last() (string, *keyboard.Markup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.texts) == 0 {
		return "", nil
	}
	return r.texts[len(r.texts)-1], r.markups[len(r.markups)-1]
}

type echoLocalizer struct{}

func (echoLocalizer) Translate(_, key string, args ...any) string {
	parts := []string{key}
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, " ")
}

type harness struct {
	t   *testing.T
	d   *actions.Dispatcher
	dir rooms.Directory
	out map[int64]*recorder
}

func newHarness(t *testing.T, maxSeats int) *harness {
	t.Helper()
	dir := rooms.NewMemory(maxSeats)
	reg, err := actions.NewBuilder().Add(New(dir, Options{}).Entries()...).Build()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	d, err := actions.NewDispatcher(actions.Options{Registry: reg, Codec: callbacks.Default, Localizer: echoLocalizer{}})
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	return &harness{t: t, d: d, dir: dir, out: map[int64]*recorder{}}
}

func (h *harness) request(userID int64) actions.Request {
	rec, ok := h.out[userID]
	if !ok {
		rec = &recorder{}
		h.out[userID] = rec
	}
	return actions.Request{Messenger: rec, Identity: actions.Identity{UserID: userID, ChatID: userID}}
}

// tap sends the callback data a button would carry.
func (h *harness) tap(userID int64, route string, params callbacks.Params) (string, *keyboard.Markup) {
	h.t.Helper()
	data, err := callbacks.Build(callbacks.Default, route, params)
	if err != nil {
		h.t.Fatalf("build %s: %v", route, err)
	}
	if out := h.d.DispatchData(context.Background(), data, h.request(userID)); out != actions.OutcomeHandled {
		h.t.Fatalf("%s outcome = %v", route, out)
	}
	return h.out[userID].last()
}

func (h *harness) active(userID int64) string {
	id, _ := h.d.State().ActiveRoom(userID)
	return id
}

func checkBudget(t *testing.T, m *keyboard.Markup) {
	t.Helper()
	for _, data := range m.Data() {
		if len(data) >= callbacks.MaxDataBytes {
			t.Fatalf("button data %q is %d bytes", data, len(data))
		}
	}
}

func TestCreateJoinAndPlay(t *testing.T) {
	h := newHarness(t, 2)

	text, markup := h.tap(1, routes.PokerRoomCreate, nil)
	roomID := h.active(1)
	if !rooms.ValidID(roomID) || text != "poker.room.created "+roomID {
		t.Fatalf("create reply %q, active %q", text, roomID)
	}
	checkBudget(t, markup)

	text, markup = h.tap(2, routes.PokerRoomList, nil)
	if text != "poker.room.list.title" || len(markup.Rows) != 2 {
		t.Fatalf("list reply %q rows %d", text, len(markup.Rows))
	}
	joinData := markup.Rows[0][0].Data
	if want := fmt.Sprintf(`{"action":"g.pk.r.jn","room":"%s"}`, roomID); joinData != want {
		t.Fatalf("join button = %s, want %s", joinData, want)
	}
	if out := h.d.DispatchData(context.Background(), joinData, h.request(2)); out != actions.OutcomeHandled {
		t.Fatalf("join outcome = %v", out)
	}
	if text, _ := h.out[2].last(); text != "poker.room.joined "+roomID+" 2 2" {
		t.Fatalf("join reply %q", text)
	}
	if h.active(2) != roomID {
		t.Fatal("join must set the active room")
	}

	if text, _ := h.tap(3, routes.PokerRoomJoin, callbacks.Params{routes.ParamRoom: roomID}); text != "poker.room.full "+roomID {
		t.Fatalf("full reply %q", text)
	}

	text, markup = h.tap(2, routes.PokerTableCall, nil)
	if text != "poker.table.call "+roomID {
		t.Fatalf("call reply %q", text)
	}
	checkBudget(t, markup)

	text, _ = h.tap(1, routes.PokerRoomInfo, nil)
	if text != "poker.room.info "+roomID+" 2 2 1, 2" {
		t.Fatalf("info reply %q", text)
	}
}

func TestRaisePromptsForAmount(t *testing.T) {
	h := newHarness(t, 6)
	h.tap(1, routes.PokerRoomCreate, nil)
	roomID := h.active(1)

	text, markup := h.tap(1, routes.PokerTableRaise, nil)
	if text != "poker.table.raise.prompt" || markup == nil || !markup.ForceReply {
		t.Fatalf("prompt %q %+v", text, markup)
	}
	if route, _ := state.FormValue[string](h.d.State(), actions.AwaitNamespace, 1); route != routes.PokerTableRaise {
		t.Fatalf("awaiting %q", route)
	}

	h.d.Dispatch(context.Background(), routes.PokerTableRaise, h.request(1), callbacks.Params{routes.ParamText: "abc"})
	if text, _ := h.out[1].last(); text != `poker.table.raise.invalid abc` {
		t.Fatalf("invalid reply %q", text)
	}

	h.d.Dispatch(context.Background(), routes.PokerTableRaise, h.request(1), callbacks.Params{routes.ParamText: " 250 "})
	if text, _ := h.out[1].last(); text != "poker.table.raise 250 "+roomID {
		t.Fatalf("raise reply %q", text)
	}

	if text, _ := h.tap(1, routes.PokerTableRaise, callbacks.Params{routes.ParamAmount: "100"}); text != "poker.table.raise 100 "+roomID {
		t.Fatalf("button raise reply %q", text)
	}
}

func TestLeaveAndSwitchClearActiveRoom(t *testing.T) {
	h := newHarness(t, 6)
	h.tap(1, routes.PokerRoomCreate, nil)
	first := h.active(1)
	h.tap(1, routes.PokerRoomCreate, nil)
	second := h.active(1)
	if first == second {
		t.Fatal("rooms share an id")
	}

	text, markup := h.tap(1, routes.PokerRoomSwitch, nil)
	if text != "poker.room.switch.title" || h.active(1) != "" {
		t.Fatalf("switch picker %q, active %q", text, h.active(1))
	}
	if got := len(markup.Data()); got != 3 {
		t.Fatalf("switch buttons = %d, want two rooms and back", got)
	}

	if text, _ := h.tap(1, routes.PokerRoomSwitch, callbacks.Params{routes.ParamRoom: first}); text != "poker.room.switched "+first {
		t.Fatalf("switched reply %q", text)
	}
	if h.active(1) != first {
		t.Fatalf("active = %q", h.active(1))
	}

	if text, _ := h.tap(1, routes.PokerRoomLeave, nil); text != "poker.room.left "+first {
		t.Fatalf("leave reply %q", text)
	}
	if h.active(1) != "" {
		t.Fatal("leave must clear the active room")
	}
	if _, err := h.dir.Get(context.Background(), first); err == nil {
		t.Fatal("empty room should be closed")
	}

	if text, _ := h.tap(1, routes.PokerTableCheck, nil); text != "poker.room.none" {
		t.Fatalf("move without room %q", text)
	}
	if text, _ := h.tap(1, routes.PokerRoomLeave, callbacks.Params{routes.ParamRoom: second}); text != "poker.room.left "+second {
		t.Fatalf("leave by param %q", text)
	}
}

func TestStaleRoomIsForgotten(t *testing.T) {
	h := newHarness(t, 6)
	h.d.State().SetActiveRoom(1, "R-22222A")
	if text, _ := h.tap(1, routes.PokerTableFold, nil); text != "poker.room.not_found R-22222A" {
		t.Fatalf("stale reply %q", text)
	}
	if h.active(1) != "" {
		t.Fatal("stale active room kept")
	}
}

func TestJoinWithoutRoomIsHandlerError(t *testing.T) {
	h := newHarness(t, 6)
	out := h.d.Dispatch(context.Background(), routes.PokerRoomJoin, h.request(1), nil)
	if out != actions.OutcomeHandlerError {
		t.Fatalf("outcome = %v", out)
	}
	if text, _ := h.out[1].last(); text != actions.KeyGeneric {
		t.Fatalf("fallback %q", text)
	}
}

func TestLobbyScreens(t *testing.T) {
	h := newHarness(t, 6)
	for _, route := range []string{routes.PokerStart, routes.PokerHelp, routes.PokerRoomList} {
		_, markup := h.tap(1, route, nil)
		if markup == nil || len(markup.Rows) == 0 {
			t.Fatalf("%s has no keyboard", route)
		}
		checkBudget(t, markup)
	}
	if text, _ := h.tap(1, routes.PokerRoomList, nil); text != "poker.room.list.empty" {
		t.Fatalf("empty list %q", text)
	}
}
