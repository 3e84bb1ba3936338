package menu

import (
	"context"
	"testing"

	"github.com/m3rciful/gamebot/core/i18n"
	"github.com/m3rciful/gamebot/core/telegram/actions"
	"github.com/m3rciful/gamebot/core/telegram/callbacks"
	"github.com/m3rciful/gamebot/core/telegram/keyboard"
	"github.com/m3rciful/gamebot/internal/routes"
)

type recorder struct {
	texts   []string
	markups []*keyboard.Markup
}

func (r *recorder) Reply(_ context.Context, text string, m *keyboard.Markup) error {
	r.texts = append(r.texts, text)
	r.markups = append(r.markups, m)
	return nil
}

func setup(t *testing.T) (*actions.Dispatcher, *i18n.Catalog) {
	t.Helper()
	cat, err := i18n.Load("en", "")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	reg, err := actions.NewBuilder().Add(New(cat, cat.Locales()).Entries()...).Build()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	d, err := actions.NewDispatcher(actions.Options{Registry: reg, Codec: callbacks.Default, Localizer: cat})
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	return d, cat
}

func TestMainMenuButtons(t *testing.T) {
	d, cat := setup(t)
	rec := &recorder{}
	req := actions.Request{Messenger: rec, Identity: actions.Identity{UserID: 1, Lang: "en"}}
	if out := d.Dispatch(context.Background(), routes.MenuMain, req, nil); out != actions.OutcomeHandled {
		t.Fatalf("outcome = %v", out)
	}
	if rec.texts[0] != cat.Translate("en", "menu.title") {
		t.Fatalf("text = %q", rec.texts[0])
	}
	want := []string{`{"action":"g.ls"}`, `{"action":"w.bl"}`, `{"action":"s.lg"}`}
	got := rec.markups[0].Data()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("buttons = %v, want %v", got, want)
		}
	}
}

func TestSetLanguageChangesReplies(t *testing.T) {
	d, cat := setup(t)
	rec := &recorder{}
	req := actions.Request{Messenger: rec, Identity: actions.Identity{UserID: 1, Lang: "en"}}

	d.Dispatch(context.Background(), routes.SettingsLanguage, req, nil)
	data := rec.markups[0].Data()
	if len(data) != len(cat.Locales())+1 {
		t.Fatalf("language buttons = %v", data)
	}
	if data[1] != `{"action":"s.lg.set","lang":"ru"}` {
		t.Fatalf("ru button = %s", data[1])
	}

	if out := d.DispatchData(context.Background(), data[1], req); out != actions.OutcomeHandled {
		t.Fatalf("set outcome = %v", out)
	}
	if got, want := rec.texts[len(rec.texts)-1], cat.Translate("ru", "menu.language.saved"); got != want {
		t.Fatalf("saved text = %q, want %q", got, want)
	}

	d.Dispatch(context.Background(), routes.MenuMain, req, nil)
	if got, want := rec.texts[len(rec.texts)-1], cat.Translate("ru", "menu.title"); got != want {
		t.Fatalf("menu after switch = %q, want %q", got, want)
	}

	d.Dispatch(context.Background(), routes.SettingsLanguageSet, req, callbacks.Params{routes.ParamLang: "xx"})
	if got, want := rec.texts[len(rec.texts)-1], cat.Translate("ru", "menu.language.unsupported", "xx"); got != want {
		t.Fatalf("unsupported = %q", got)
	}
}
