package router

import (
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/gamebot/core/logger"
	"github.com/m3rciful/gamebot/core/telegram/actions"
	tghelpers "github.com/m3rciful/gamebot/core/telegram/helpers"
	"github.com/m3rciful/gamebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// logOutcome writes the per-update summary for a dispatch.
func logOutcome(c tele.Context, handlerName string, start time.Time, o actions.Outcome, extras ...slog.Attr) {
	status := "ok"
	if o != actions.OutcomeHandled {
		status = "fail"
	}
	logHandlerSummary(c, handlerName, start, status, o.String(), extras...)
}

func logHandlerSummary(c tele.Context, handlerName string, start time.Time, status, outcome string, extras ...slog.Attr) {
	ctx := tghelpers.WithHandler(c, handlerName)
	msgs, kb := middleware.GetCounters(c)

	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("handler", handlerName),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.Took(start)),
	}
	attrs = append(attrs, extras...)
	level := slog.LevelInfo
	if status == "fail" {
		level = slog.LevelWarn
	}
	logger.LogEvent(ctx, logger.Or(logger.TG, "tg"), level, "handler.handled", attrs...)
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}
