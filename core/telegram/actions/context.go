package actions

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/gamebot/core/telegram/callbacks"
	"github.com/m3rciful/gamebot/core/telegram/keyboard"
	"github.com/m3rciful/gamebot/core/telegram/state"
)

// Handler runs one action. Returned errors and panics are contained by the
// Dispatcher and answered with a generic reply.
type Handler func(ctx context.Context, c *Context) error

// Identity is the resolved sender of an update.
type Identity struct {
	UserID   int64
	ChatID   int64
	Username string
	// Lang is the client's language code as reported by the transport.
	Lang string
}

// Replier is the minimal messaging capability a transport must provide.
// Reply sends text, or edits the message a tapped button belongs to.
type Replier interface {
	Reply(ctx context.Context, text string, markup *keyboard.Markup) error
}

// Translator may be implemented by a Replier that localizes on its own.
type Translator interface {
	Translate(key string, args ...any) string
}

// Localizer translates keys for an explicit language. *i18n.Catalog implements it.
type Localizer interface {
	Translate(lang, key string, args ...any) string
}

// ErrNoMessenger is returned by Context.Reply when the request has no messenger.
var ErrNoMessenger = errors.New("actions: request has no messenger")

// Namespaces in the session store owned by this package.
const (
	// LangNamespace holds the user's chosen language code (string).
	LangNamespace = "lang"
	// AwaitNamespace holds the route waiting for the user's next text message (string).
	AwaitNamespace = "await"
)

// Request is what a transport hands to the Dispatcher for one update.
type Request struct {
	Messenger Replier
	Identity  Identity
	// Params were embedded in the callback payload.
	Params callbacks.Params
	// Logger overrides the dispatcher logger for this request.
	Logger *slog.Logger
}

// Context is built for a single dispatch and handed to the handler. It must
// not be retained after the handler returns.
type Context struct {
	Route    string
	Identity Identity
	// Params holds payload params overlaid with the explicit query.
	Params callbacks.Params
	Log    *slog.Logger

	req   Request
	d     *Dispatcher
	depth int
}

// Reply sends text with an optional keyboard through the request's messenger.
func (c *Context) Reply(ctx context.Context, text string, markup *keyboard.Markup) error {
	if c.req.Messenger == nil {
		return ErrNoMessenger
	}
	return c.req.Messenger.Reply(ctx, text, markup)
}

// Param returns one merged parameter, or "".
func (c *Context) Param(key string) string {
	return c.Params.Get(key)
}

// Lang returns the user's chosen language, falling back to the client's.
func (c *Context) Lang() string {
	return c.d.lang(c.Identity)
}

// T translates key for the current user.
func (c *Context) T(key string, args ...any) string {
	return c.d.translate(c.req, c.Lang(), key, args...)
}

// Keyboard starts a keyboard whose buttons are encoded with the dispatcher's codec.
func (c *Context) Keyboard() *keyboard.Builder {
	return keyboard.New(c.d.codec)
}

// State returns the session store shared by all dispatches of this dispatcher.
func (c *Context) State() *state.Store {
	return c.d.state
}

// Await makes the user's next plain text message dispatch to route with the
// text under the "text" param.
func (c *Context) Await(route string) {
	c.d.state.SetFormState(AwaitNamespace, c.Identity.UserID, route)
}

// StopAwaiting drops any pending text route for the user.
func (c *Context) StopAwaiting() {
	c.d.state.ClearFormState(AwaitNamespace, c.Identity.UserID)
}

// Dispatch runs another route within the same request. query overrides the
// params of the current context.
func (c *Context) Dispatch(ctx context.Context, route string, query callbacks.Params) Outcome {
	req := c.req
	req.Params = c.Params
	return c.d.dispatch(ctx, route, req, query, c.depth+1)
}
