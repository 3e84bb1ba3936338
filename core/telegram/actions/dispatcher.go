package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/m3rciful/gamebot/core/logger"
	"github.com/m3rciful/gamebot/core/telegram/callbacks"
	"github.com/m3rciful/gamebot/core/telegram/state"
)

// Translation keys for the fallback replies.
const (
	KeyUnknownAction = "errors.unknown_action"
	KeyGeneric       = "errors.generic"
)

const defaultMaxDepth = 8

// Outcome tells the caller how a dispatch ended. Every outcome other than
// OutcomeHandled has already been answered with a fallback reply.
type Outcome int

// Dispatch outcomes.
const (
	OutcomeHandled Outcome = iota
	OutcomeUnknownRoute
	OutcomeHandlerError
	OutcomePanic
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHandled:
		return "handled"
	case OutcomeUnknownRoute:
		return "unknown_route"
	case OutcomeHandlerError:
		return "handler_error"
	case OutcomePanic:
		return "panic"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// HandlerError wraps a failure raised inside a handler.
type HandlerError struct {
	Route  string
	UserID int64
	Err    error
	// Panic is the recovered value when the handler panicked.
	Panic any
	Stack []byte
}

func (e *HandlerError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("actions: handler %q panicked: %v", e.Route, e.Panic)
	}
	return fmt.Sprintf("actions: handler %q: %v", e.Route, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// Code returns the wrapped error's code when it has one.
func (e *HandlerError) Code() string {
	var coded interface{ Code() string }
	if errors.As(e.Err, &coded) {
		return coded.Code()
	}
	if e.Panic != nil {
		return "HANDLER_PANIC"
	}
	return "HANDLER_ERROR"
}

// Options configure a Dispatcher. Only Registry is required.
type Options struct {
	Registry *Registry
	// Codec decodes alias tokens. Nil accepts canonical routes only.
	Codec *callbacks.Codec
	// State is the session store handed to handlers. Nil creates a private one.
	State *state.Store
	// Localizer renders fallback replies and Context.T. Nil echoes keys.
	Localizer Localizer
	Logger    *slog.Logger
	// MaxDepth bounds nested Context.Dispatch calls. Zero means 8.
	MaxDepth int
}

// Dispatcher resolves tokens to handlers and contains their failures. It
// holds no per-call state and is safe for concurrent use.
type Dispatcher struct {
	reg      *Registry
	codec    *callbacks.Codec
	state    *state.Store
	loc      Localizer
	log      *slog.Logger
	maxDepth int
}

// NewDispatcher validates opts and returns a Dispatcher.
func NewDispatcher(opts Options) (*Dispatcher, error) {
	if opts.Registry == nil {
		return nil, &ConfigError{Reason: "dispatcher needs a registry"}
	}
	d := &Dispatcher{
		reg:      opts.Registry,
		codec:    opts.Codec,
		state:    opts.State,
		loc:      opts.Localizer,
		log:      logger.Or(opts.Logger, "actions"),
		maxDepth: opts.MaxDepth,
	}
	if d.state == nil {
		d.state = state.New()
	}
	if d.maxDepth <= 0 {
		d.maxDepth = defaultMaxDepth
	}
	return d, nil
}

// Registry returns the route table the dispatcher serves.
func (d *Dispatcher) Registry() *Registry { return d.reg }

// Codec returns the alias codec, possibly nil.
func (d *Dispatcher) Codec() *callbacks.Codec { return d.codec }

// State returns the session store.
func (d *Dispatcher) State() *state.Store { return d.state }

// Resolve maps token to a canonical route: registered routes are used as-is,
// anything else is decoded. The result may still be unregistered.
func (d *Dispatcher) Resolve(token string) string {
	if d.reg.Has(token) {
		return token
	}
	return d.codec.Decode(token)
}

// Dispatch runs the handler for token. query takes precedence over
// req.Params. It never panics; failures are logged and answered with a
// localized fallback reply.
func (d *Dispatcher) Dispatch(ctx context.Context, token string, req Request, query callbacks.Params) Outcome {
	return d.dispatch(ctx, token, req, query, 0)
}

// DispatchData parses raw callback data and dispatches it. Data that cannot
// be parsed is treated as an unknown route.
func (d *Dispatcher) DispatchData(ctx context.Context, data string, req Request) Outcome {
	token, params, err := callbacks.Parse(data)
	if err != nil {
		d.logFor(req).LogAttrs(ctx, slog.LevelWarn, "dispatch.unknown_route",
			slog.String("event", "dispatch.unknown_route"),
			slog.String("outcome", OutcomeUnknownRoute.String()),
			slog.String("cb_data", logger.SanitizeLimit(data, 64)),
			slog.Int64("user_id", req.Identity.UserID),
			slog.String("err", err.Error()),
		)
		d.fallback(ctx, req, KeyUnknownAction)
		return OutcomeUnknownRoute
	}
	req.Params = callbacks.Merge(req.Params, params)
	return d.dispatch(ctx, token, req, nil, 0)
}

func (d *Dispatcher) dispatch(ctx context.Context, token string, req Request, query callbacks.Params, depth int) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	log := d.logFor(req)
	route := d.Resolve(token)

	if depth > d.maxDepth {
		herr := &HandlerError{Route: route, UserID: req.Identity.UserID, Err: fmt.Errorf("dispatch depth %d exceeds %d", depth, d.maxDepth)}
		d.logFailure(ctx, log, token, herr, OutcomeHandlerError, start)
		d.fallback(ctx, req, KeyGeneric)
		return OutcomeHandlerError
	}

	h, ok := d.reg.Lookup(route)
	if !ok {
		log.LogAttrs(ctx, slog.LevelWarn, "dispatch.unknown_route",
			slog.String("event", "dispatch.unknown_route"),
			slog.String("outcome", OutcomeUnknownRoute.String()),
			slog.String("token", logger.SanitizeLimit(token, 64)),
			slog.String("route", logger.SanitizeLimit(route, 64)),
			slog.Int64("user_id", req.Identity.UserID),
		)
		d.fallback(ctx, req, KeyUnknownAction)
		return OutcomeUnknownRoute
	}

	ctx = logger.WithRoute(ctx, route)
	c := &Context{
		Route:    route,
		Identity: req.Identity,
		Params:   callbacks.Merge(req.Params, query),
		Log:      log,
		req:      req,
		d:        d,
		depth:    depth,
	}

	if err := invoke(ctx, h, c); err != nil {
		outcome := OutcomeHandlerError
		var herr *HandlerError
		if errors.As(err, &herr) && herr.Panic != nil {
			outcome = OutcomePanic
		}
		d.logFailure(ctx, log, token, err, outcome, start)
		d.fallback(ctx, req, KeyGeneric)
		return outcome
	}

	if logger.ShouldSampleDebug() {
		log.LogAttrs(ctx, slog.LevelDebug, "dispatch.handled",
			slog.String("event", "dispatch.handled"),
			slog.String("status", "ok"),
			slog.String("outcome", OutcomeHandled.String()),
			slog.String("token", token),
			slog.Int64("user_id", req.Identity.UserID),
			slog.Duration("duration", logger.Took(start)),
		)
	}
	return OutcomeHandled
}

// invoke runs h and converts both returned errors and panics into *HandlerError.
func invoke(ctx context.Context, h Handler, c *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerError{Route: c.Route, UserID: c.Identity.UserID, Panic: r, Stack: debug.Stack()}
		}
	}()
	if herr := h(ctx, c); herr != nil {
		var wrapped *HandlerError
		if errors.As(herr, &wrapped) {
			return herr
		}
		return &HandlerError{Route: c.Route, UserID: c.Identity.UserID, Err: herr}
	}
	return nil
}

func (d *Dispatcher) logFailure(ctx context.Context, log *slog.Logger, token string, err error, outcome Outcome, start time.Time) {
	attrs := []slog.Attr{
		slog.String("event", "dispatch.handler_failed"),
		slog.String("status", "fail"),
		slog.String("outcome", outcome.String()),
		slog.String("token", logger.SanitizeLimit(token, 64)),
		slog.String("err", err.Error()),
		slog.Duration("duration", logger.Took(start)),
	}
	var herr *HandlerError
	if errors.As(err, &herr) {
		attrs = append(attrs,
			slog.String("route", herr.Route),
			slog.Int64("user_id", herr.UserID),
			slog.String("err_code", herr.Code()),
		)
		if herr.Stack != nil {
			attrs = append(attrs, slog.String("stack", string(herr.Stack)))
		}
	}
	log.LogAttrs(ctx, slog.LevelError, "dispatch.handler_failed", attrs...)
}

// fallback sends the localized generic reply. Its own failures, including
// panics while translating or replying, are logged and swallowed.
func (d *Dispatcher) fallback(ctx context.Context, req Request, key string) {
	log := d.logFor(req)
	if req.Messenger == nil {
		log.LogAttrs(ctx, slog.LevelWarn, "dispatch.fallback_skipped",
			slog.String("event", "dispatch.fallback_skipped"),
			slog.String("cause", "no_messenger"),
			slog.Int64("user_id", req.Identity.UserID),
		)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.LogAttrs(ctx, slog.LevelError, "dispatch.fallback_failed",
				slog.String("event", "dispatch.fallback_failed"),
				slog.String("status", "fail"),
				slog.String("err", fmt.Sprint(r)),
				slog.Int64("user_id", req.Identity.UserID),
			)
		}
	}()
	text := d.translate(req, d.lang(req.Identity), key)
	if err := req.Messenger.Reply(ctx, text, nil); err != nil {
		log.LogAttrs(ctx, slog.LevelWarn, "dispatch.fallback_failed",
			slog.String("event", "dispatch.fallback_failed"),
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
			slog.Int64("user_id", req.Identity.UserID),
		)
	}
}

func (d *Dispatcher) translate(req Request, lang, key string, args ...any) string {
	if t, ok := req.Messenger.(Translator); ok {
		return t.Translate(key, args...)
	}
	if d.loc != nil {
		return d.loc.Translate(lang, key, args...)
	}
	return key
}

// lang prefers the language stored under LangNamespace over the client's.
func (d *Dispatcher) lang(id Identity) string {
	if stored, ok := state.FormValue[string](d.state, LangNamespace, id.UserID); ok && stored != "" {
		return stored
	}
	return id.Lang
}

func (d *Dispatcher) logFor(req Request) *slog.Logger {
	if req.Logger != nil {
		return req.Logger
	}
	return d.log
}
