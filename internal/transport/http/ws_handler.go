package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"trivia-game-service/internal/app"
	"trivia-game-service/internal/domain"
)

// WSHandler streams ranking snapshots to websocket clients.
type WSHandler struct {
	games    *app.GameService
	feed     *app.RankingFeed
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(games *app.GameService, feed *app.RankingFeed, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		games: games,
		feed:  feed,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS sends the current ranking, then every ranking published after a
// game is finished, dropped or cleared. Client messages are ignored; reading
// only detects the close.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.feed.Subscribe()
	defer cancel()

	entries, err := h.games.GetGameRanking(r.Context())
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	initial := domain.Ranking{Entries: entries, UpdatedAt: time.Now()}
	if err := conn.WriteJSON(outboundMessage[domain.Ranking]{Type: "ranking", Payload: initial}); err != nil {
		return
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	// single writer: only this loop writes after the initial snapshot
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage[domain.Ranking]{Type: "ranking", Payload: update}); err != nil {
				h.log.Debug("ws write error", "err", err)
				return
			}
		case <-closed:
			return
		}
	}
}
