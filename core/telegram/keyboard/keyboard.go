// Package keyboard composes inline keyboards whose buttons carry callback data
// built by the callbacks package.
package keyboard

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/gamebot/core/telegram/callbacks"
)

// Button is one inline button with its serialized callback data.
type Button struct {
	Text string
	Data string
}

// Markup is a transport-neutral keyboard. Handlers build it; the transport
// adapter converts it with Inline.
type Markup struct {
	Rows [][]Button
	// ForceReply asks the client to open a reply field instead of showing buttons.
	ForceReply bool
}

// ForceReply returns a markup that prompts the user to type an answer.
func ForceReply() *Markup {
	return &Markup{ForceReply: true}
}

// Data lists every button's callback data in row order.
func (m *Markup) Data() []string {
	if m == nil {
		return nil
	}
	var out []string
	for _, row := range m.Rows {
		for _, b := range row {
			out = append(out, b.Data)
		}
	}
	return out
}

// Inline converts the markup for telebot. Callback data is sent raw, without
// telebot's "\f<unique>|" prefix, so the transmitted size is the size Build measured.
func (m *Markup) Inline() *tele.ReplyMarkup {
	if m == nil {
		return nil
	}
	if m.ForceReply {
		return &tele.ReplyMarkup{ForceReply: true}
	}
	inline := make([][]tele.InlineButton, 0, len(m.Rows))
	for _, row := range m.Rows {
		r := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			r = append(r, tele.InlineButton{Text: b.Text, Data: b.Data})
		}
		inline = append(inline, r)
	}
	return &tele.ReplyMarkup{InlineKeyboard: inline}
}

// Builder accumulates rows. The first failed button build is remembered and
// returned from Markup; later buttons are still added so callers can chain.
type Builder struct {
	codec *callbacks.Codec
	rows  [][]Button
	err   error
}

// New returns a Builder encoding routes with codec. A nil codec sends routes as-is.
func New(codec *callbacks.Codec) *Builder {
	return &Builder{codec: codec}
}

// Button builds a button for route with optional params.
func (b *Builder) Button(text, route string, params callbacks.Params) Button {
	data, err := callbacks.Build(b.codec, route, params)
	if err != nil && b.err == nil {
		b.err = err
	}
	return Button{Text: text, Data: data}
}

// Row appends one row of buttons.
func (b *Builder) Row(buttons ...Button) *Builder {
	if len(buttons) > 0 {
		b.rows = append(b.rows, buttons)
	}
	return b
}

// NPerRow appends buttons split into rows of at most n. n <= 1 puts each button on its own row.
func (b *Builder) NPerRow(n int, buttons ...Button) *Builder {
	if n < 1 {
		n = 1
	}
	for i := 0; i < len(buttons); i += n {
		b.Row(buttons[i:min(i+n, len(buttons))]...)
	}
	return b
}

// Markup returns the built keyboard or the first build error.
func (b *Builder) Markup() (*Markup, error) {
	if b.err != nil {
		return nil, b.err
	}
	rows := make([][]Button, len(b.rows))
	copy(rows, b.rows)
	return &Markup{Rows: rows}, nil
}
