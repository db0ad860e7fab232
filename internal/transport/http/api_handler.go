package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/time/rate"

	"propboard/internal/app"
	"propboard/internal/domain"
)

// APIHandler serves the board as JSON.
type APIHandler struct {
	board      *app.Board
	adminParam string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func NewAPIHandler(board *app.Board, opts Options) *APIHandler {
	return &APIHandler{
		board:      board,
		adminParam: opts.AdminParam,
		limiter:    opts.EditLimiter,
		logger:     opts.Logger,
	}
}

type editPayload struct {
	Option string `json:"option"`
}

type scorePayload struct {
	PlayerID       string `json:"playerId"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// Board returns the full snapshot for the requesting session.
func (h *APIHandler) Board(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	snapshot, err := h.board.OpenSession(isAdmin(r, h.adminParam)).Snapshot(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *APIHandler) Leaderboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	lb, err := h.board.Leaderboard(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

// Score reports one player's correct picks. Unknown players score 0.
func (h *APIHandler) Score(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	playerID := ps.ByName("player")
	score, err := h.board.ScoreFor(r.Context(), playerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scorePayload{
		PlayerID:       playerID,
		Score:          score,
		TotalQuestions: h.board.Registry().NumQuestions(),
	})
}

// SetPick applies a pick for admin sessions and is a no-op otherwise. Both
// cases answer with the session's current snapshot.
func (h *APIHandler) SetPick(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	questionID, ok := parseQuestionID(w, ps)
	if !ok {
		return
	}
	var payload editPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid pick payload")
		return
	}

	session := h.board.OpenSession(isAdmin(r, h.adminParam))
	if err := session.SetPick(r.Context(), ps.ByName("player"), questionID, payload.Option); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondSnapshot(w, r, session)
}

// SetAnswer applies an adjudicated answer for admin sessions and is a no-op otherwise.
func (h *APIHandler) SetAnswer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	questionID, ok := parseQuestionID(w, ps)
	if !ok {
		return
	}
	var payload editPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid answer payload")
		return
	}

	session := h.board.OpenSession(isAdmin(r, h.adminParam))
	if err := session.SetAnswer(r.Context(), questionID, payload.Option); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondSnapshot(w, r, session)
}

func (h *APIHandler) limited(next httprouter.Handle) httprouter.Handle {
	if h.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !h.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "too many edits, slow down")
			return
		}
		next(w, r, ps)
	}
}

func (h *APIHandler) respondSnapshot(w http.ResponseWriter, r *http.Request, session *app.Session) {
	snapshot, err := session.Snapshot(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *APIHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrPlayerNotFound), errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOptionNotFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func parseQuestionID(w http.ResponseWriter, ps httprouter.Params) (int, bool) {
	id, err := strconv.Atoi(ps.ByName("question"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "question id must be an integer")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Message: message})
}
