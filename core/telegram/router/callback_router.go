package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/gamebot/core/telegram"
	"github.com/m3rciful/gamebot/core/telegram/actions"
	"github.com/m3rciful/gamebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/gamebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute answers every button tap and hands its data to d.
func CallbackRoute(d *actions.Dispatcher) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		_ = c.Respond()

		route := "unknown"
		extras := []slog.Attr{}
		if token, _, err := callbacks.Parse(cb.Data); err == nil {
			route = d.Resolve(token)
			extras = append(extras, slog.String("token", token))
		}
		name := "callback." + normalizeHandlerName(route)

		ctx := tghelpers.WithHandler(c, name)
		outcome := d.DispatchData(ctx, cb.Data, newRequest(c))
		logOutcome(c, name, start, outcome, extras...)
		return nil
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
