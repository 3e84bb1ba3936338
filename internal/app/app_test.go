package app

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/gamebot/core/config"
	"github.com/m3rciful/gamebot/internal/routes"
)

func testConfig(t *testing.T) *coreconfig.Config {
	t.Helper()
	cfg := &coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "t"}}
	if err := coreconfig.Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return cfg
}

func TestNewWiresMemoryBackends(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), Deps{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	reg := a.Dispatcher().Registry()
	for _, r := range []string{routes.MenuMain, routes.PokerRoomJoin, routes.WalletBonus, routes.SettingsLanguageSet} {
		if !reg.Has(r) {
			t.Fatalf("route %s not registered", r)
		}
	}
	if _, _, ok := a.Registry().LookupCommand("/start"); !ok {
		t.Fatal("/start not registered")
	}

	opts, err := a.TelegramRunOptions()
	if err != nil {
		t.Fatalf("run options: %v", err)
	}
	endpoints := map[any]bool{}
	for _, r := range opts.Routes {
		endpoints[r.Endpoint] = true
	}
	for _, want := range []any{"/start", "/poker", tele.OnCallback, tele.OnText} {
		if !endpoints[want] {
			t.Fatalf("endpoint %v not routed; have %v", want, endpoints)
		}
	}
	if len(opts.Middlewares) == 0 || opts.Middlewares[0].Name != "recover" {
		t.Fatalf("middlewares = %+v", opts.Middlewares)
	}
}

func TestNewDialsRedisRooms(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Rooms.Backend = coreconfig.RoomsBackendRedis
	cfg.Rooms.RedisURL = "redis://" + mr.Addr()
	cfg.Rooms.TTLSeconds = 60

	a, err := New(context.Background(), cfg, Deps{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if len(a.closers) != 1 {
		t.Fatalf("closers = %d, want the redis client", len(a.closers))
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestNewFailsOnUnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(t)
	cfg.Rooms.Backend = coreconfig.RoomsBackendRedis
	cfg.Rooms.RedisURL = "redis://" + addr
	if _, err := New(context.Background(), cfg, Deps{}); err == nil {
		t.Fatal("expected dial error")
	}
}
