package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"propboard/internal/app"
)

// Options configures the HTTP surface.
type Options struct {
	// AdminParam is the query parameter that, when "1", marks a request or
	// WebSocket session as admin. Anyone who can see the URL can set it, so
	// it only hides the edit controls; it does not protect anything.
	AdminParam string
	// PublicURL is encoded into the share QR code. Derived from the request when empty.
	PublicURL string
	// EditLimiter throttles pick and answer edits. Nil means unlimited.
	EditLimiter *rate.Limiter
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// NewRouter wires the JSON API, the WebSocket feed and the operational endpoints.
func NewRouter(board *app.Board, opts Options) http.Handler {
	if opts.AdminParam == "" {
		opts.AdminParam = "admin"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	api := NewAPIHandler(board, opts)
	ws := NewWSHandler(board, opts)

	mux := httprouter.New()
	mux.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		_, _ = io.WriteString(w, "ok")
	})
	mux.GET("/api/board", api.Board)
	mux.GET("/api/leaderboard", api.Leaderboard)
	mux.GET("/api/players/:player/score", api.Score)
	mux.PUT("/api/picks/:player/:question", api.limited(api.SetPick))
	mux.PUT("/api/answers/:question", api.limited(api.SetAnswer))
	mux.HandlerFunc(http.MethodGet, "/ws", ws.ServeWS)
	mux.GET("/qr.png", qrHandler(opts.PublicURL))
	if opts.Gatherer != nil {
		mux.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		opts.Logger.Error("handler panic", "path", r.URL.Path, "panic", v)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
	return mux
}

// isAdmin reads the admin flag from the request URL.
func isAdmin(r *http.Request, param string) bool {
	return r.URL.Query().Get(param) == "1"
}
