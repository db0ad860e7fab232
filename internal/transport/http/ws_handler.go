package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"propboard/internal/app"
)

// WSHandler streams board snapshots to clients and accepts admin edits.
type WSHandler struct {
	board      *app.Board
	adminParam string
	logger     *slog.Logger
	upgrader   websocket.Upgrader
}

func NewWSHandler(board *app.Board, opts Options) *WSHandler {
	return &WSHandler{
		board:      board,
		adminParam: opts.AdminParam,
		logger:     opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type pickMessage struct {
	PlayerID   string `json:"playerId"`
	QuestionID int    `json:"questionId"`
	Option     string `json:"option"`
}

type answerMessage struct {
	QuestionID int    `json:"questionId"`
	Option     string `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and ties the connection to one session. The
// admin flag is read once, at connect time.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	session := h.board.OpenSession(isAdmin(r, h.adminParam))
	logger := h.logger.With("conn", uuid.NewString(), "admin", session.IsAdmin())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	updates, cancel, err := h.board.Subscribe(r.Context())
	if err != nil {
		logger.Error("ws subscribe failed", "error", err)
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "board unavailable"}})
		return
	}
	defer cancel()
	logger.Debug("ws connected")

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only the writer goroutine touches conn for writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debug("ws write failed", "error", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				update.Admin = session.IsAdmin()
				select {
				case send <- outboundMessage[any]{Type: "snapshot", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	reply := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}
	replyError := func(message string) {
		reply(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}})
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "pick":
			var payload pickMessage
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				replyError("invalid pick payload")
				continue
			}
			if err := session.SetPick(r.Context(), payload.PlayerID, payload.QuestionID, payload.Option); err != nil {
				replyError(clientMessage(err))
			}
		case "answer":
			var payload answerMessage
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				replyError("invalid answer payload")
				continue
			}
			if err := session.SetAnswer(r.Context(), payload.QuestionID, payload.Option); err != nil {
				replyError(clientMessage(err))
			}
		default:
			replyError("unsupported message type")
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
	logger.Debug("ws disconnected")
}

func clientMessage(err error) string {
	if statusFor(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
