package router

import (
	"log/slog"
	"strings"
	"time"

	tg "github.com/m3rciful/gamebot/core/telegram"
	"github.com/m3rciful/gamebot/core/telegram/actions"
	"github.com/m3rciful/gamebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/gamebot/core/telegram/helpers"
	"github.com/m3rciful/gamebot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls what happens to text nobody asked for.
type TextOptions struct {
	// FallbackRoute receives unmatched text under the "text" param. Empty
	// leaves such messages unanswered.
	FallbackRoute string
}

// TextRoutes routes plain text. A pending prompt set with Context.Await wins,
// then slash commands (including aliases telebot does not match itself), then
// the fallback route.
func TextRoutes(d *actions.Dispatcher, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()
		id := tghelpers.IdentityFrom(c)

		if reg != nil && strings.HasPrefix(text, "/") {
			if name, cmd, ok := reg.LookupCommand(text); ok {
				dispatchCommand(c, d, name, cmd)
				return nil
			}
		}

		if route, ok := state.FormValue[string](d.State(), actions.AwaitNamespace, id.UserID); ok && route != "" {
			d.State().ClearFormState(actions.AwaitNamespace, id.UserID)
			name := "await." + normalizeHandlerName(route)
			ctx := tghelpers.WithHandler(c, name)
			outcome := d.Dispatch(ctx, route, newRequest(c), callbacks.Params{"text": text})
			logOutcome(c, name, start, outcome)
			return nil
		}

		if opts.FallbackRoute != "" {
			ctx := tghelpers.WithHandler(c, "fallback")
			outcome := d.Dispatch(ctx, opts.FallbackRoute, newRequest(c), callbacks.Params{"text": text})
			logOutcome(c, "fallback", start, outcome, slog.String("route", opts.FallbackRoute))
			return nil
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok")
		return nil
	}

	return []tg.Route{{Endpoint: tele.OnText, Handler: handler}}
}
