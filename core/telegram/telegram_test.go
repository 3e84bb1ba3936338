package telegram

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"syscall"
	"testing"
	"time"

	coreconfig "github.com/m3rciful/gamebot/core/config"

	tele "gopkg.in/telebot.v4"
)

func TestBuildPoller(t *testing.T) {
	p := BuildPoller(PollerOptions{RunMode: "WEBHOOK", Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://example.org/hook"}})
	wh, ok := p.(*tele.Webhook)
	if !ok {
		t.Fatalf("poller = %T, want webhook", p)
	}
	if wh.Listen != "0.0.0.0:8443" || wh.Endpoint.PublicURL != "https://example.org/hook" {
		t.Fatalf("webhook = %+v", wh)
	}

	lp, ok := BuildPoller(PollerOptions{RunMode: coreconfig.RunModeLongpoll}).(*tele.LongPoller)
	if !ok || lp.Timeout != defaultLongPollTimeout {
		t.Fatalf("long poller = %+v", lp)
	}
	lp = BuildPoller(PollerOptions{LongPollTimeoutSeconds: 3}).(*tele.LongPoller)
	if lp.Timeout != 3*time.Second {
		t.Fatalf("timeout = %v", lp.Timeout)
	}
}

func TestDefaultMiddlewaresOrder(t *testing.T) {
	names := func(mws []Middleware) string {
		var out []string
		for _, mw := range mws {
			out = append(out, mw.Name)
		}
		return strings.Join(out, ",")
	}
	if got := names(DefaultMiddlewares(nil, nil)); got != "recover,logger,metrics" {
		t.Fatalf("chain = %s", got)
	}
	cfg := &coreconfig.Config{RateLimit: coreconfig.RateLimitConfig{IntervalMS: 500}}
	if got := names(DefaultMiddlewares(cfg, nil)); got != "recover,logger,rate_limit,metrics" {
		t.Fatalf("chain = %s", got)
	}
}

type flakyTransport struct {
	fails int
	calls int
	body  []string
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.calls++
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		f.body = append(f.body, string(b))
	}
	if f.calls <= f.fails {
		return nil, syscall.ECONNRESET
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

func TestRetryTransportReplaysBody(t *testing.T) {
	base := &flakyTransport{fails: 1}
	rt := &retryTransport{base: base, maxRetries: 2}
	req, _ := http.NewRequest(http.MethodPost, "https://api.telegram.org/botX/sendMessage", strings.NewReader("hi"))

	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	resp.Body.Close()
	if base.calls != 2 || base.body[1] != "hi" {
		t.Fatalf("calls=%d bodies=%q", base.calls, base.body)
	}
}

func TestRetryTransportGivesUp(t *testing.T) {
	base := &flakyTransport{fails: 10}
	rt := &retryTransport{base: base, maxRetries: 2}
	req, _ := http.NewRequest(http.MethodGet, "https://api.telegram.org/botX/getMe", nil)
	if _, err := rt.RoundTrip(req); !errors.Is(err, syscall.ECONNRESET) {
		t.Fatalf("err = %v", err)
	}
	if base.calls != 3 {
		t.Fatalf("calls = %d, want 3", base.calls)
	}
	if got := endpointName(req); got != "getMe" {
		t.Fatalf("endpoint = %q", got)
	}
}
