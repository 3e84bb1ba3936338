// Package menu serves the main menu, the games list and language settings.
package menu

import (
	"context"
	"slices"

	"github.com/m3rciful/gamebot/core/telegram/actions"
	"github.com/m3rciful/gamebot/core/telegram/callbacks"
	"github.com/m3rciful/gamebot/core/telegram/keyboard"
	"github.com/m3rciful/gamebot/internal/routes"
)

// Module holds the menu handlers.
type Module struct {
	loc     actions.Localizer
	locales []string
}

// New returns the menu module. locales are offered in settings in the given
// order; loc renders each one's own name.
func New(loc actions.Localizer, locales []string) *Module {
	return &Module{loc: loc, locales: slices.Clone(locales)}
}

// Entries lists the module's routes.
func (m *Module) Entries() []actions.Entry {
	return []actions.Entry{
		{Route: routes.MenuMain, Handler: m.main},
		{Route: routes.GamesList, Handler: m.games},
		{Route: routes.SettingsLanguage, Handler: m.language},
		{Route: routes.SettingsLanguageSet, Handler: m.setLanguage},
	}
}

func (m *Module) main(ctx context.Context, c *actions.Context) error {
	kb := c.Keyboard()
	kb.Row(kb.Button(c.T("menu.btn.games"), routes.GamesList, nil))
	kb.Row(
		kb.Button(c.T("menu.btn.wallet"), routes.WalletBalance, nil),
		kb.Button(c.T("menu.btn.settings"), routes.SettingsLanguage, nil),
	)
	markup, err := kb.Markup()
	if err != nil {
		return err
	}
	return c.Reply(ctx, c.T("menu.title"), markup)
}

func (m *Module) games(ctx context.Context, c *actions.Context) error {
	kb := c.Keyboard()
	kb.Row(kb.Button(c.T("menu.games.poker"), routes.PokerStart, nil))
	kb.Row(kb.Button(c.T("menu.btn.back"), routes.MenuMain, nil))
	markup, err := kb.Markup()
	if err != nil {
		return err
	}
	return c.Reply(ctx, c.T("menu.games.title"), markup)
}

func (m *Module) language(ctx context.Context, c *actions.Context) error {
	kb := c.Keyboard()
	buttons := make([]keyboard.Button, 0, len(m.locales))
	for _, locale := range m.locales {
		buttons = append(buttons, kb.Button(m.name(locale), routes.SettingsLanguageSet, callbacks.Params{routes.ParamLang: locale}))
	}
	kb.NPerRow(2, buttons...)
	kb.Row(kb.Button(c.T("menu.btn.back"), routes.MenuMain, nil))
	markup, err := kb.Markup()
	if err != nil {
		return err
	}
	return c.Reply(ctx, c.T("menu.language.title"), markup)
}

func (m *Module) setLanguage(ctx context.Context, c *actions.Context) error {
	lang := c.Param(routes.ParamLang)
	if lang == "" {
		return &callbacks.MissingParamError{Key: routes.ParamLang}
	}
	if !slices.Contains(m.locales, lang) {
		return c.Reply(ctx, c.T("menu.language.unsupported", lang), nil)
	}
	c.State().SetFormState(actions.LangNamespace, c.Identity.UserID, lang)

	kb := c.Keyboard()
	kb.Row(kb.Button(c.T("menu.btn.back"), routes.MenuMain, nil))
	markup, err := kb.Markup()
	if err != nil {
		return err
	}
	return c.Reply(ctx, c.T("menu.language.saved"), markup)
}

func (m *Module) name(locale string) string {
	if m.loc == nil {
		return locale
	}
	return m.loc.Translate(locale, "menu.language.name")
}
