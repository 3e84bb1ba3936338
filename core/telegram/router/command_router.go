package router

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/gamebot/core/logger"
	tg "github.com/m3rciful/gamebot/core/telegram"
	"github.com/m3rciful/gamebot/core/telegram/actions"
	"github.com/m3rciful/gamebot/core/telegram/callbacks"
	"github.com/m3rciful/gamebot/core/telegram/commands"
	tghelpers "github.com/m3rciful/gamebot/core/telegram/helpers"
	"github.com/m3rciful/gamebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes binds every registered slash command to its action route.
func CommandRoutes(reg *tg.Registry, d *actions.Dispatcher, opts CommandRouteOptions) []tg.Route {
	if reg == nil || d == nil {
		return nil
	}

	adminOnly := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for name, cmd := range reg.Commands() {
		h := func(c tele.Context) error {
			dispatchCommand(c, d, name, cmd)
			return nil
		}
		if cmd.AdminOnly {
			h = adminOnly(h)
		}
		routes = append(routes, tg.Route{Endpoint: name, Handler: h})
	}

	logger.Or(logger.TWire, "tg.wire").LogAttrs(context.Background(), slog.LevelInfo, "tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("routes", d.Registry().Len()),
	)

	return routes
}

// dispatchCommand runs cmd's route. Anything after the command name is
// passed as the "args" param. A command cancels any pending text prompt.
func dispatchCommand(c tele.Context, d *actions.Dispatcher, name string, cmd commands.Command) {
	start := time.Now()
	handlerName := "command." + normalizeHandlerName(name)
	ctx := tghelpers.WithHandler(c, handlerName)

	req := newRequest(c)
	d.State().ClearFormState(actions.AwaitNamespace, req.Identity.UserID)

	var query callbacks.Params
	if _, args, ok := strings.Cut(strings.TrimSpace(c.Text()), " "); ok {
		if args = strings.TrimSpace(args); args != "" {
			query = callbacks.Params{"args": args}
		}
	}
	outcome := d.Dispatch(ctx, cmd.Route, req, query)
	logOutcome(c, handlerName, start, outcome, slog.String("route", cmd.Route))
}
