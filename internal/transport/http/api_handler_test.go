package http

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/time/rate"

	"propboard/internal/app"
	"propboard/internal/domain"
	"propboard/internal/infra/memory"
	"propboard/internal/metrics"
	"propboard/internal/registry"
)

func TestAPIAdminEditsAndLeaderboard(t *testing.T) {
	server := httptest.NewServer(newTestRouter(Options{}))
	defer server.Close()

	put(t, server.URL+"/api/answers/1?admin=1", `{"option":"Heads"}`, http.StatusOK)
	put(t, server.URL+"/api/picks/bob/1?admin=1", `{"option":"Heads"}`, http.StatusOK)
	put(t, server.URL+"/api/picks/tara/1?admin=1", `{"option":"Tails"}`, http.StatusOK)

	var lb domain.Leaderboard
	get(t, server.URL+"/api/leaderboard", http.StatusOK, &lb)
	if len(lb.Standings) != 2 || lb.Standings[0].PlayerID != "bob" || lb.Standings[1].Rank != 2 {
		t.Fatalf("unexpected leaderboard %+v", lb.Standings)
	}

	var score scorePayload
	get(t, server.URL+"/api/players/bob/score", http.StatusOK, &score)
	if score.Score != 1 || score.TotalQuestions != 1 {
		t.Fatalf("unexpected score %+v", score)
	}
}

func TestAPINonAdminEditIsIgnored(t *testing.T) {
	server := httptest.NewServer(newTestRouter(Options{}))
	defer server.Close()

	var snap domain.Snapshot
	decode(t, put(t, server.URL+"/api/picks/bob/1", `{"option":"Heads"}`, http.StatusOK), &snap)
	if snap.Admin {
		t.Fatalf("expected non-admin snapshot")
	}
	if len(snap.Picks) != 0 {
		t.Fatalf("expected picks unchanged, got %+v", snap.Picks)
	}

	// Any value other than "1" is not admin.
	put(t, server.URL+"/api/answers/1?admin=true", `{"option":"Heads"}`, http.StatusOK)
	get(t, server.URL+"/api/board", http.StatusOK, &snap)
	if len(snap.Answers) != 0 {
		t.Fatalf("expected answers unchanged, got %+v", snap.Answers)
	}
}

func TestAPICustomAdminParam(t *testing.T) {
	server := httptest.NewServer(newTestRouter(Options{AdminParam: "edit"}))
	defer server.Close()

	var snap domain.Snapshot
	decode(t, put(t, server.URL+"/api/answers/1?edit=1", `{"option":"Tails"}`, http.StatusOK), &snap)
	if !snap.Admin || snap.Answers[1] != "Tails" {
		t.Fatalf("expected answer applied, got %+v", snap)
	}
}

func TestAPIRejectsBadInput(t *testing.T) {
	server := httptest.NewServer(newTestRouter(Options{}))
	defer server.Close()

	put(t, server.URL+"/api/answers/one?admin=1", `{"option":"Heads"}`, http.StatusBadRequest)
	put(t, server.URL+"/api/answers/1?admin=1", `{"option":`, http.StatusBadRequest)
	put(t, server.URL+"/api/answers/7?admin=1", `{"option":"Heads"}`, http.StatusNotFound)
	put(t, server.URL+"/api/picks/nobody/1?admin=1", `{"option":"Heads"}`, http.StatusNotFound)

	body := put(t, server.URL+"/api/picks/bob/1?admin=1", `{"option":"Tials"}`, http.StatusUnprocessableEntity)
	if !strings.Contains(string(body), "Tails") {
		t.Fatalf("expected suggestion in error body, got %s", body)
	}
}

func TestAPIRateLimitsEdits(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(0.001), 1)
	server := httptest.NewServer(newTestRouter(Options{EditLimiter: limiter}))
	defer server.Close()

	put(t, server.URL+"/api/answers/1?admin=1", `{"option":"Heads"}`, http.StatusOK)
	put(t, server.URL+"/api/answers/1?admin=1", `{"option":"Tails"}`, http.StatusTooManyRequests)

	// Reads are never limited.
	get(t, server.URL+"/api/board", http.StatusOK, nil)
}

func TestOperationalEndpoints(t *testing.T) {
	m := metrics.NewPrometheus()
	server := httptest.NewServer(newTestRouter(Options{Gatherer: m.Registry(), PublicURL: "https://props.example.com/"}))
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Fatalf("unexpected healthz body %q", body)
	}

	resp, err = http.Get(server.URL + "/qr.png")
	if err != nil {
		t.Fatalf("qr: %v", err)
	}
	defer resp.Body.Close()
	if resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("expected png, got %s", resp.Header.Get("Content-Type"))
	}
	if _, err := png.Decode(resp.Body); err != nil {
		t.Fatalf("decode qr png: %v", err)
	}

	resp, err = http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected metrics endpoint, got %d", resp.StatusCode)
	}
}

func newTestBoard() *app.Board {
	reg := registry.MustNew(
		[]domain.Question{{ID: 1, Prompt: "Coin Toss", Options: []string{"Heads", "Tails"}}},
		[]domain.Player{{ID: "bob", Name: "Bob"}, {ID: "tara", Name: "Tara"}},
	)
	return app.NewBoard(reg, memory.NewBlobStore(), app.WithLogger(discardLogger()))
}

func newTestRouter(opts Options) http.Handler {
	opts.Logger = discardLogger()
	return NewRouter(newTestBoard(), opts)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func put(t *testing.T, url, body string, wantStatus int) []byte {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("put %s: %v", url, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("put %s: expected %d, got %d (%s)", url, wantStatus, resp.StatusCode, data)
	}
	return data
}

func get(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("get %s: expected %d, got %d (%s)", url, wantStatus, resp.StatusCode, data)
	}
	if out != nil {
		decode(t, data, out)
	}
}

func decode(t *testing.T, data []byte, out any) {
	t.Helper()
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
}
