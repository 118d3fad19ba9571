package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"assistente/internal/assistant"
	"assistente/internal/core"
	"assistente/internal/interpret"
	"assistente/internal/ledger"
	"assistente/internal/ledger/memory"
)

type fakeAssistant struct {
	calls atomic.Int32
	delay time.Duration
	reply assistant.Reply
	err   error

	mu    sync.Mutex
	users []string
	texts []string
}

func (f *fakeAssistant) HandleMessage(_ context.Context, userID, text string) (assistant.Reply, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.users = append(f.users, userID)
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.reply, f.err
}

type brokenStats struct{}

func (brokenStats) Stats(context.Context) (core.LedgerStats, error) {
	return core.LedgerStats{}, ledger.Persistence("stats", errors.New("disk I/O error"))
}

func (brokenStats) Ping(context.Context) error {
	return ledger.Persistence("ping", errors.New("disk I/O error"))
}

var fixedNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T, h MessageHandler, stats ledger.Stats) *Server {
	t.Helper()
	s, err := NewServer(":0", h, stats, Options{
		Clock:              core.FixedClock(fixedNow),
		RateLimitPerMinute: 1000,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s
}

func webhookRequest(fields url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(fields.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestWebhookRepliesWithTwiML(t *testing.T) {
	fake := &fakeAssistant{reply: assistant.Reply{Text: "✅ Gasto <registrado> & salvo", Intent: interpret.IntentTransaction, EntryID: 1}}
	s := newTestServer(t, fake, memory.New())

	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, webhookRequest(url.Values{
		"From":       {"whatsapp:+5511999999999"},
		"Body":       {"  gastei 50 no mercado  "},
		"MessageSid": {"SM1"},
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	want := "<Response><Message>✅ Gasto &lt;registrado&gt; &amp; salvo</Message></Response>"
	if !strings.Contains(body, want) {
		t.Errorf("body = %q, want it to contain %q", body, want)
	}
	if fake.users[0] != "+5511999999999" || fake.texts[0] != "gastei 50 no mercado" {
		t.Errorf("assistant got user %q text %q", fake.users[0], fake.texts[0])
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers not applied")
	}
}

func TestWebhookRejectsEmptyBody(t *testing.T) {
	fake := &fakeAssistant{}
	s := newTestServer(t, fake, memory.New())

	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, webhookRequest(url.Values{"From": {"whatsapp:+55"}, "Body": {"   "}}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Mensagem vazia") {
		t.Errorf("body = %q", rec.Body.String())
	}
	if fake.calls.Load() != 0 {
		t.Error("assistant should not be called for an empty message")
	}
}

func TestWebhookPersistenceFailureStillReplies(t *testing.T) {
	fake := &fakeAssistant{
		reply: assistant.Reply{Text: "❌ Erro ao salvar", Intent: interpret.IntentTransaction},
		err:   ledger.Persistence("insert", errors.New("database is locked")),
	}
	s := newTestServer(t, fake, memory.New())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		s.Handler.ServeHTTP(rec, webhookRequest(url.Values{"From": {"whatsapp:+55"}, "Body": {"gastei 10"}, "MessageSid": {"SM9"}}))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Erro ao salvar") {
			t.Fatalf("attempt %d: status %d body %q", i, rec.Code, rec.Body.String())
		}
	}
	if got := fake.calls.Load(); got != 2 {
		t.Errorf("failed replies must not be cached; calls = %d", got)
	}
}

func TestWebhookDeduplicatesMessageSid(t *testing.T) {
	fake := &fakeAssistant{
		delay: 20 * time.Millisecond,
		reply: assistant.Reply{Text: "ok", Intent: interpret.IntentTransaction, EntryID: 3},
	}
	s := newTestServer(t, fake, memory.New())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			s.Handler.ServeHTTP(rec, webhookRequest(url.Values{"From": {"whatsapp:+55"}, "Body": {"gastei 10"}, "MessageSid": {"SMdup"}}))
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d", rec.Code)
			}
		}()
	}
	wg.Wait()

	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, webhookRequest(url.Values{"From": {"whatsapp:+55"}, "Body": {"gastei 10"}, "MessageSid": {"SMdup"}}))
	if !strings.Contains(rec.Body.String(), "<Message>ok</Message>") {
		t.Errorf("cached reply body = %q", rec.Body.String())
	}
	if got := fake.calls.Load(); got != 1 {
		t.Errorf("assistant calls = %d, want 1", got)
	}
}

func TestWebhookWithoutSidIsNotDeduplicated(t *testing.T) {
	fake := &fakeAssistant{reply: assistant.Reply{Text: "ok"}}
	s := newTestServer(t, fake, memory.New())

	for i := 0; i < 2; i++ {
		s.Handler.ServeHTTP(httptest.NewRecorder(), webhookRequest(url.Values{"From": {"whatsapp:+55"}, "Body": {"ajuda"}}))
	}
	if got := fake.calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestWebhookEndToEndWithAssistant(t *testing.T) {
	store := memory.New()
	a := assistant.New(store, store, core.FixedClock(fixedNow))
	s := newTestServer(t, a, store)

	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, webhookRequest(url.Values{
		"From":       {"whatsapp:+5511988887777"},
		"Body":       {"Gastei 50 reais no mercado"},
		"MessageSid": {"SMe2e"},
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	stats, _ := store.Stats(context.Background())
	if stats.Entries != 1 || stats.Users != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	got, err := store.SumAndCount(context.Background(), "+5511988887777", core.KindExpense,
		core.Window{Mode: core.WindowDay, Start: core.DateOf(fixedNow)})
	if err != nil || got.Sum.String() != "50.00" {
		t.Fatalf("sum = %v, err %v", got.Sum, err)
	}
}

func TestWebhookMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &fakeAssistant{}, memory.New())
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestIndexPage(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	for i, user := range []string{"u1", "u1", "u2"} {
		_, err := store.Insert(ctx, core.Entry{
			UserID: user, Kind: core.KindExpense, Amount: core.MoneyFromCents(int64(100 * (i + 1))),
			Description: "x", Category: core.CategoryOther, RecordedAt: fixedNow, EffectiveDate: core.DateOf(fixedNow),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	s := newTestServer(t, &fakeAssistant{}, store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "assistente.example.com"
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Sistema Online",
		"14:30:00 - 15/03/2024",
		"Desenvolvimento",
		"Total de Lançamentos:</strong> 3",
		"Usuários Ativos:</strong> 2",
		"https://assistente.example.com/webhook",
		"Relatório da semana",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestIndexPageSurvivesStatsFailure(t *testing.T) {
	s := newTestServer(t, &fakeAssistant{}, brokenStats{})
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Total de Lançamentos:</strong> 0") {
		t.Fatalf("status %d body %q", rec.Code, rec.Body.String())
	}
}

func TestUnknownPathIsNotFound(t *testing.T) {
	s := newTestServer(t, &fakeAssistant{}, memory.New())
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teste", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeAssistant{}, memory.New())
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v (%q)", err, rec.Body.String())
	}
	want := map[string]string{
		"status":      "online",
		"timestamp":   "2024-03-15T14:30:00Z",
		"version":     "2.0",
		"environment": "development",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		stats  ledger.Stats
		code   int
		status string
	}{
		{"healthy", memory.New(), http.StatusOK, "healthy"},
		{"unhealthy", brokenStats{}, http.StatusInternalServerError, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeAssistant{}, tt.stats)
			rec := httptest.NewRecorder()
			s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.code {
				t.Fatalf("status = %d", rec.Code)
			}
			var got map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			if got["status"] != tt.status {
				t.Errorf("status field = %q", got["status"])
			}
			if tt.code != http.StatusOK && !strings.Contains(got["error"], "disk I/O error") {
				t.Errorf("error field = %q", got["error"])
			}
		})
	}
}

func TestWebhookRateLimitIsPerSender(t *testing.T) {
	fake := &fakeAssistant{reply: assistant.Reply{Text: "ok"}}
	s, err := NewServer(":0", fake, memory.New(), Options{
		Clock:              core.FixedClock(fixedNow),
		RateLimitPerMinute: 60,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Shutdown(context.Background())

	post := func(from string) *httptest.ResponseRecorder {
		req := webhookRequest(url.Values{"From": {from}, "Body": {"gastei 10"}})
		req.RemoteAddr = "54.172.60.1:443"
		rec := httptest.NewRecorder()
		s.Handler.ServeHTTP(rec, req)
		return rec
	}

	// every delivery arrives from the same provider address
	for i := 0; i < 61; i++ {
		rec := post(fmt.Sprintf("whatsapp:+55119%08d", i))
		if rec.Code != http.StatusOK || strings.Contains(rec.Body.String(), "Muitas mensagens") {
			t.Fatalf("sender %d was limited: %d %q", i, rec.Code, rec.Body.String())
		}
	}
	if got := fake.calls.Load(); got != 61 {
		t.Fatalf("assistant calls = %d, want 61", got)
	}

	for i := 0; i < 60; i++ {
		post("whatsapp:+5521988887777")
	}
	rec := post("whatsapp:+5521988887777")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Muitas mensagens") {
		t.Fatalf("61st message of one sender: %d %q", rec.Code, rec.Body.String())
	}
	if got := fake.calls.Load(); got != 61+60 {
		t.Errorf("assistant calls = %d, want %d", got, 61+60)
	}
}

func TestWebhookRedeliveryDoesNotSpendBudget(t *testing.T) {
	fake := &fakeAssistant{reply: assistant.Reply{Text: "ok"}}
	s, err := NewServer(":0", fake, memory.New(), Options{
		Clock:              core.FixedClock(fixedNow),
		RateLimitPerMinute: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Shutdown(context.Background())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		s.Handler.ServeHTTP(rec, webhookRequest(url.Values{"From": {"whatsapp:+55"}, "Body": {"gastei 10"}, "MessageSid": {"SMonce"}}))
		if !strings.Contains(rec.Body.String(), "<Message>ok</Message>") {
			t.Fatalf("delivery %d: %q", i, rec.Body.String())
		}
	}
	if got := fake.calls.Load(); got != 1 {
		t.Errorf("assistant calls = %d, want 1", got)
	}
}

func TestGetRoutesRateLimitedByIP(t *testing.T) {
	s, err := NewServer(":0", &fakeAssistant{}, memory.New(), Options{
		Clock:              core.FixedClock(fixedNow),
		RateLimitPerMinute: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Shutdown(context.Background())

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
		codes[i] = rec.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
}

func TestNewServerRejectsBadProxy(t *testing.T) {
	if _, err := NewServer(":0", &fakeAssistant{}, memory.New(), Options{TrustedProxies: []string{"not-a-cidr"}}); err == nil {
		t.Fatal("expected an error for an invalid trusted proxy")
	}
}
