// Package app assembles the game bot from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/gamebot/core/bootstrap"
	"github.com/m3rciful/gamebot/core/cmd"
	coreconfig "github.com/m3rciful/gamebot/core/config"
	"github.com/m3rciful/gamebot/core/i18n"
	"github.com/m3rciful/gamebot/core/logger"
	tg "github.com/m3rciful/gamebot/core/telegram"
	"github.com/m3rciful/gamebot/core/telegram/actions"
	"github.com/m3rciful/gamebot/core/telegram/callbacks"
	"github.com/m3rciful/gamebot/core/telegram/router"
	"github.com/m3rciful/gamebot/core/telegram/state"
	"github.com/m3rciful/gamebot/internal/games/poker"
	"github.com/m3rciful/gamebot/internal/games/poker/rooms"
	"github.com/m3rciful/gamebot/internal/handlers"
	"github.com/m3rciful/gamebot/internal/menu"
	"github.com/m3rciful/gamebot/internal/wallet"
)

// App holds everything the bot needs at runtime.
type App struct {
	cfg        *coreconfig.Config
	catalog    *i18n.Catalog
	state      *state.Store
	dispatcher *actions.Dispatcher
	registry   *tg.Registry
	closers    []io.Closer
}

// Deps overrides backends chosen from configuration. Zero fields are built from config.
type Deps struct {
	DB     *sqlx.DB
	Rooms  rooms.Directory
	Ledger wallet.Ledger
}

// Bootstrap runs the infrastructure pipeline and builds the App. It matches cmd.Options.Bootstrap.
func Bootstrap(ctx context.Context, cfg *coreconfig.Config) (cmd.TelegramApp, error) {
	res, err := bootstrap.Run(ctx, bootstrap.Options{Config: cfg})
	if err != nil {
		return nil, err
	}
	a, err := New(ctx, cfg, Deps{DB: res.DB})
	if err != nil {
		_ = res.Close()
		return nil, err
	}
	if res.DB != nil {
		a.closers = append(a.closers, res)
	}
	return a, nil
}

// New builds the handler table, dispatcher and command registry.
func New(ctx context.Context, cfg *coreconfig.Config, deps Deps) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	a := &App{cfg: cfg, state: state.New(), registry: tg.NewRegistry()}

	catalog, err := i18n.Load(cfg.I18n.DefaultLocale, cfg.I18n.OverrideDir)
	if err != nil {
		return nil, fmt.Errorf("app: load messages: %w", err)
	}
	a.catalog = catalog

	dir := deps.Rooms
	if dir == nil {
		if dir, err = a.buildRooms(ctx); err != nil {
			return nil, err
		}
	}
	ledger := deps.Ledger
	if ledger == nil {
		ledger = buildLedger(ctx, deps.DB)
	}

	mods := handlers.Modules{
		Menu:   menu.New(catalog, catalog.Locales()),
		Poker:  poker.New(dir, poker.Options{}),
		Wallet: wallet.New(ledger, wallet.Options{}),
	}
	table, err := handlers.Build(callbacks.Default, mods.Table())
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("app: routes: %w", err)
	}
	a.dispatcher, err = actions.NewDispatcher(actions.Options{
		Registry:  table,
		Codec:     callbacks.Default,
		State:     a.state,
		Localizer: catalog,
		Logger:    logger.Actions,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if err := handlers.RegisterCommands(a.registry, table); err != nil {
		_ = a.Close()
		return nil, err
	}

	logger.LogEvent(ctx, logger.Or(logger.TWire, "tg.wire"), slog.LevelInfo, "routes.ready",
		slog.Int("routes", table.Len()),
		slog.Int("commands", len(a.registry.Commands())),
		slog.String("rooms_backend", cfg.Rooms.Backend),
		slog.Bool("db", deps.DB != nil),
	)
	return a, nil
}

func (a *App) buildRooms(ctx context.Context) (rooms.Directory, error) {
	rc := a.cfg.Rooms
	if rc.Backend != coreconfig.RoomsBackendRedis {
		return rooms.NewMemory(rc.MaxSeats), nil
	}
	rdb, err := rooms.Dial(ctx, rc.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("app: rooms: %w", err)
	}
	a.closers = append(a.closers, rdb)
	return rooms.NewRedis(rdb, rooms.RedisOptions{
		MaxSeats: rc.MaxSeats,
		TTL:      time.Duration(rc.TTLSeconds) * time.Second,
		Logger:   logger.Rooms,
	}), nil
}

func buildLedger(ctx context.Context, db *sqlx.DB) wallet.Ledger {
	if db == nil {
		logger.LogEvent(ctx, logger.Or(logger.Wallet, "wallet"), slog.LevelWarn, "wallet.memory",
			slog.String("reason", "no database configured, balances reset on restart"),
		)
		return wallet.NewMemoryLedger()
	}
	return wallet.NewPostgresLedger(db)
}

// Dispatcher exposes the action dispatcher.
func (a *App) Dispatcher() *actions.Dispatcher { return a.dispatcher }

// Registry exposes the command registry.
func (a *App) Registry() *tg.Registry { return a.registry }

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	if a.dispatcher == nil {
		return tg.RunOptions{}, errors.New("app: not initialized")
	}
	return tg.RunOptions{
		Config:      a.cfg,
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(a.cfg, a.onLimited),
		Routes:      a.Routes(),
		OnStop: func(context.Context, tg.Runtime) error {
			return a.Close()
		},
	}, nil
}

// Routes binds commands, button presses and free text to the dispatcher.
func (a *App) Routes() []tg.Route {
	routes := router.CommandRoutes(a.registry, a.dispatcher, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(a.dispatcher))
	return append(routes, router.TextRoutes(a.dispatcher, a.registry, router.TextOptions{})...)
}

// onLimited answers throttled button presses so the client stops spinning.
// Throttled messages are dropped silently.
func (a *App) onLimited(c tele.Context) error {
	if c.Callback() == nil {
		return nil
	}
	return c.Respond(&tele.CallbackResponse{Text: a.catalog.Translate(a.lang(c), "errors.rate_limited")})
}

func (a *App) lang(c tele.Context) string {
	if c.Sender() == nil {
		return ""
	}
	if l, ok := state.FormValue[string](a.state, actions.LangNamespace, c.Sender().ID); ok {
		return l
	}
	return c.Sender().LanguageCode
}

// Close releases external connections. It is safe to call more than once.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
