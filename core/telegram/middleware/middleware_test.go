package middleware

import (
	"testing"
	"time"

	"github.com/m3rciful/gamebot/core/config"

	tele "gopkg.in/telebot.v4"
)

// fakeContext implements the parts of tele.Context the middlewares touch.
type fakeContext struct {
	tele.Context
	upd   tele.Update
	store map[string]any
	sent  int
}

func newFakeContext(upd tele.Update) *fakeContext {
	return &fakeContext{upd: upd, store: map[string]any{}}
}

func (f *fakeContext) Update() tele.Update { return f.upd }

func (f *fakeContext) Sender() *tele.User {
	switch {
	case f.upd.Callback != nil:
		return f.upd.Callback.Sender
	case f.upd.Message != nil:
		return f.upd.Message.Sender
	}
	return nil
}

func (f *fakeContext) Chat() *tele.Chat {
	if f.upd.Message != nil {
		return f.upd.Message.Chat
	}
	return nil
}

func (f *fakeContext) Text() string {
	if f.upd.Message != nil {
		return f.upd.Message.Text
	}
	return ""
}

func (f *fakeContext) Get(key string) any      { return f.store[key] }
func (f *fakeContext) Set(key string, val any) { f.store[key] = val }

func (f *fakeContext) Send(any, ...any) error {
	f.sent++
	return nil
}

func messageUpdate(id int, userID int64) tele.Update {
	return tele.Update{ID: id, Message: &tele.Message{
		Sender: &tele.User{ID: userID},
		Chat:   &tele.Chat{ID: userID},
		Text:   "hi",
	}}
}

func callbackUpdate(id int, userID int64) tele.Update {
	return tele.Update{ID: id, Callback: &tele.Callback{
		Sender: &tele.User{ID: userID},
		Data:   `{"action":"m.mn"}`,
	}}
}

func TestRateLimitDropsBurstsPerUser(t *testing.T) {
	clock := time.Unix(0, 0)
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Second,
		Now:       func() time.Time { return clock },
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	steps := []struct {
		userID  int64
		advance time.Duration
	}{
		{1, 0},
		{1, 100 * time.Millisecond},
		{2, 0},
		{1, time.Second},
	}
	for i, s := range steps {
		clock = clock.Add(s.advance)
		if err := h(newFakeContext(messageUpdate(i+1, s.userID))); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if calls != 3 || limited != 1 {
		t.Fatalf("calls=%d limited=%d, want 3 and 1", calls, limited)
	}
}

func TestRateLimitExcludedKindsPassThrough(t *testing.T) {
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  map[string]struct{}{config.UpdateCallback: {}},
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })
	for i := range 3 {
		_ = h(newFakeContext(callbackUpdate(i+1, 7)))
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRecoverSwallowsPanic(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	if err := h(newFakeContext(messageUpdate(1, 1))); err != nil {
		t.Fatalf("err = %v, want nil after recovery", err)
	}
}

func TestAdminOnlyRejectsOthers(t *testing.T) {
	rejected := 0
	mw := AdminOnlyMiddleware(AdminOptions{
		AdminID:  42,
		OnReject: func(tele.Context) error { rejected++; return nil },
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })
	_ = h(newFakeContext(messageUpdate(1, 42)))
	_ = h(newFakeContext(messageUpdate(2, 7)))
	if calls != 1 || rejected != 1 {
		t.Fatalf("calls=%d rejected=%d", calls, rejected)
	}

	locked := AdminOnlyMiddleware(AdminOptions{})(func(tele.Context) error { calls++; return nil })
	_ = locked(newFakeContext(messageUpdate(3, 42)))
	if calls != 1 {
		t.Fatal("zero admin id must reject everyone")
	}
}

func TestLoggerMiddlewareSetsRID(t *testing.T) {
	fc := newFakeContext(callbackUpdate(9, 5))
	var rid string
	h := LoggerMiddleware(func(c tele.Context) error {
		rid, _ = c.Get("rid").(string)
		return nil
	})
	if err := h(fc); err != nil {
		t.Fatal(err)
	}
	if rid == "" {
		t.Fatal("rid not set")
	}
}

func TestMetricsCountsSends(t *testing.T) {
	fc := newFakeContext(messageUpdate(1, 1))
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		_ = c.Send("a")
		return c.Send("b", &tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{}})
	})
	if err := h(fc); err != nil {
		t.Fatal(err)
	}
	msgs, kb := GetCounters(fc)
	if msgs != 2 || !kb {
		t.Fatalf("msgs=%d kb=%v", msgs, kb)
	}
}
