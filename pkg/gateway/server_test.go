package gateway

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"interactbot/pkg/client"
	"interactbot/pkg/config"
	"interactbot/pkg/endpoint"
	"interactbot/pkg/guard"
	"interactbot/pkg/interaction"
	"interactbot/pkg/logger"
	"interactbot/pkg/router"
	"interactbot/pkg/verify"
)

type testEnv struct {
	server    *Server
	router    *router.Router
	priv      ed25519.PrivateKey
	logs      *observer.ObservedLogs
	callbacks atomic.Int32
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	env := &testEnv{priv: priv}
	platform := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/callback") {
			env.callbacks.Add(1)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(platform.Close)

	root, err := endpoint.New(platform.URL, endpoint.LatestVersion)
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}

	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))
	env.logs = logs

	cfg := config.DefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0

	cl := client.New(client.Credentials{ApplicationID: "42", Secret: "secret", PublicKey: pub}, log, client.WithEndpoint(root))
	env.router = router.New(log)
	env.server = NewServer(cfg, log, cl, guard.NewMemoryGuard(time.Minute), env.router)
	return env
}

func (e *testEnv) post(t *testing.T, body string, sign bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/interactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sign {
		ts := "1700000000"
		req.Header.Set(verify.HeaderTimestamp, ts)
		req.Header.Set(verify.HeaderSignature, verify.Sign(e.priv, ts, []byte(body)))
	}
	rec := httptest.NewRecorder()
	e.server.echo.ServeHTTP(rec, req)
	return rec
}

func TestPingReturnsPong(t *testing.T) {
	env := newTestEnv(t)
	var routed bool
	env.router.Register(router.Command("test", func(context.Context, *interaction.Command) error {
		routed = true
		return nil
	}))

	rec := env.post(t, `{"id":"1","type":1,"token":"t","data":{"name":"test"}}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode pong: %v", err)
	}
	if len(body) != 1 || body["type"] != float64(1) {
		t.Fatalf("unexpected pong %v", body)
	}
	if routed {
		t.Fatal("ping must not reach the router")
	}
}

func TestPingWithOddFieldsStillReturnsPong(t *testing.T) {
	env := newTestEnv(t)
	bodies := []string{
		`{"id":"1","type":1,"token":"t","version":"1"}`,
		`{"id":1,"type":1,"token":"t","version":1}`,
		`{"id":"1","type":1,"token":"t","member":"x"}`,
		`{"id":"1","type":1,"token":"t","app_permissions":7}`,
	}
	for _, body := range bodies {
		rec := env.post(t, body, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d (%s)", body, rec.Code, rec.Body.String())
		}
		if got := strings.TrimSpace(rec.Body.String()); got != `{"type":1}` {
			t.Fatalf("%s: unexpected pong %s", body, got)
		}
	}
	if n := env.callbacks.Load(); n != 0 {
		t.Fatalf("expected no callbacks, got %d", n)
	}
}

func TestUnknownTypeWithOddFieldsReturnsNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.post(t, `{"id":1,"type":99,"token":"t","member":"x"}`, true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if n := env.logs.FilterMessage("Unknown interaction type").Len(); n != 1 {
		t.Fatalf("expected one unknown type warning, got %d", n)
	}
}

func TestCommandIsHandledOnce(t *testing.T) {
	env := newTestEnv(t)
	var calls int
	env.router.Register(router.Command("test", func(ctx context.Context, in *interaction.Command) error {
		calls++
		in.Respond(ctx, "Success!", false)
		return nil
	}))

	rec := env.post(t, `{"id":"1109372917339369472","type":2,"token":"tok","application_id":"42","data":{"id":"9","name":"test","type":1}}`, true)
	if rec.Code != http.StatusOK || rec.Body.String() != "Interaction received." {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("expected handler invoked once, got %d", calls)
	}
	if env.callbacks.Load() != 1 {
		t.Fatalf("expected one callback to the platform, got %d", env.callbacks.Load())
	}
	if rec.Header().Get(headerRequestID) == "" {
		t.Fatal("expected request id header")
	}
}

func TestUnhandledComponentReturnsNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post(t, `{"id":"1","type":3,"token":"t","data":{"custom_id":"x","component_type":2}}`, true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
	errs := env.logs.FilterLevelExact(zapcore.ErrorLevel).All()
	if len(errs) != 1 {
		t.Fatalf("expected one error log, got %d", len(errs))
	}
	fields := errs[0].ContextMap()
	if fields["status_code"] != int64(404) || fields["request_id"] == "" {
		t.Fatalf("unexpected error fields %v", fields)
	}
}

func TestHandlerFailureReturnsNotFoundAndServerSurvives(t *testing.T) {
	env := newTestEnv(t)
	env.router.Register(
		router.Command("boom", func(context.Context, *interaction.Command) error { panic("handler bug") }),
		router.Command("ok", func(context.Context, *interaction.Command) error { return nil }),
	)

	rec := env.post(t, `{"id":"1","type":2,"token":"a","data":{"name":"boom","type":1}}`, true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if env.logs.FilterMessage("Interaction handler failed").Len() != 1 {
		t.Fatal("expected handler failure log")
	}

	rec = env.post(t, `{"id":"2","type":2,"token":"b","data":{"name":"ok","type":1}}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after failure, got %d", rec.Code)
	}
}

func TestUnknownTypeReturnsNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.post(t, `{"id":"1","type":42,"token":"t"}`, true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if env.logs.FilterMessage("Unknown interaction type").Len() != 1 {
		t.Fatal("expected anomaly log")
	}
}

func TestSignatureGate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post(t, "", true)
	if rec.Code != http.StatusNotImplemented || rec.Body.String() != "Invalid request signature." {
		t.Fatalf("empty body: got %d %q", rec.Code, rec.Body.String())
	}

	rec = env.post(t, `{"id":"1","type":1}`, false)
	if rec.Code != http.StatusUnauthorized || rec.Body.String() != "Invalid request signature." {
		t.Fatalf("unsigned: got %d %q", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/interactions", strings.NewReader(`{"id":"1","type":1}`))
	req.Header.Set(verify.HeaderTimestamp, "1700000000")
	req.Header.Set(verify.HeaderSignature, verify.Sign(env.priv, "1700000001", []byte(`{"id":"1","type":1}`)))
	rec = httptest.NewRecorder()
	env.server.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong timestamp: got %d", rec.Code)
	}

	for _, entry := range env.logs.All() {
		for _, v := range entry.ContextMap() {
			if s, ok := v.(string); ok && strings.Contains(s, `"type"`) {
				t.Fatalf("request body leaked into logs: %v", entry.ContextMap())
			}
		}
	}
}

func TestMalformedSignedBodyIsBadRequest(t *testing.T) {
	env := newTestEnv(t)
	rec := env.post(t, `{"type":`, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestOversizedBodyIsRejected(t *testing.T) {
	env := newTestEnv(t)
	env.server.config.Server.MaxBodyBytes = 16
	rec := env.post(t, `{"id":"1","type":1,"token":"padding"}`, true)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	env.server.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", body["status"])
	}
}

func TestStartAndStop(t *testing.T) {
	env := newTestEnv(t)
	if err := env.server.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	body := []byte(`{"id":"1","type":1}`)
	req, err := http.NewRequest(http.MethodPost, "http://"+env.server.Addr()+"/interactions", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set(verify.HeaderTimestamp, "1")
	req.Header.Set(verify.HeaderSignature, verify.Sign(env.priv, "1", body))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), `"type":1`) {
		t.Fatalf("unexpected live response %d %s", resp.StatusCode, data)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := env.server.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
