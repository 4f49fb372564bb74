package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"trivia-game-service/internal/app"
	"trivia-game-service/internal/domain"
)

// Handler translates JSON requests into game service calls.
type Handler struct {
	games *app.GameService
	log   *slog.Logger
}

func NewHandler(games *app.GameService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{games: games, log: logger}
}

// NewRouter mounts the REST routes, the ranking websocket and the health check.
func NewRouter(h *Handler, ws *WSHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws/ranking", ws.ServeWS)

	r.Route("/game", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Post("/start", h.handleStart)
		r.Post("/finish", h.handleFinish)
		r.Post("/drop", h.handleDrop)
		r.Get("/ranking", h.handleRanking)
		r.Post("/questions", h.handleRegisterQuestion)
		r.Post("/setup-questions", h.handleSetupQuestions)
		r.Delete("/clear-games", h.handleClearGames)
		r.Delete("/clear-questions", h.handleClearQuestions)
		r.Get("/{gameID}", h.handleActiveGame)
	})
	return r
}

type startRequest struct {
	UserName string `json:"userName"`
}

type finishRequest struct {
	GameID int64 `json:"gameID"`
	Score  int   `json:"score"`
}

type dropRequest struct {
	GameID int64 `json:"gameID"`
}

type gameInfo struct {
	GameID    int64             `json:"gameId"`
	State     domain.GameState  `json:"state"`
	UserName  string            `json:"userName"`
	Questions []domain.Question `json:"questions"`
}

type statusResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var in startRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	game, err := h.games.StartGame(r.Context(), in.UserName)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Game started successfully",
		"game":    toGameInfo(game),
	})
}

func (h *Handler) handleFinish(w http.ResponseWriter, r *http.Request) {
	var in finishRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	game, err := h.games.ActiveGame(domain.GameKey(in.GameID))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.games.FinishGame(r.Context(), game, in.Score); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: true, Message: "Game finished successfully"})
}

func (h *Handler) handleDrop(w http.ResponseWriter, r *http.Request) {
	var in dropRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	game, err := h.games.ActiveGame(domain.GameKey(in.GameID))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.games.DropGame(r.Context(), game); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: true, Message: "Game dropped successfully"})
}

func (h *Handler) handleRanking(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.games.GetGameRanking(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ranking": ranking})
}

func (h *Handler) handleActiveGame(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseGameKey(chi.URLParam(r, "gameID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	game, err := h.games.ActiveGame(domain.GameKey(id))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"game": toGameInfo(game)})
}

func (h *Handler) handleRegisterQuestion(w http.ResponseWriter, r *http.Request) {
	var in domain.QuestionInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	question, err := h.games.RegisterQuestion(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"question": question})
}

func (h *Handler) handleSetupQuestions(w http.ResponseWriter, r *http.Request) {
	n, err := h.games.SetupInitialQuestions(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Initial questions set up successfully", "count": n})
}

func (h *Handler) handleClearGames(w http.ResponseWriter, r *http.Request) {
	if err := h.games.ClearAllGames(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "All games cleared successfully"})
}

func (h *Handler) handleClearQuestions(w http.ResponseWriter, r *http.Request) {
	if err := h.games.ClearQuestions(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "All questions cleared successfully"})
}

// fail maps a service error onto a status code: validation and state errors
// are the client's, lookups that matched nothing are 404, the rest are ours.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"err", err)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidState):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func toGameInfo(game domain.Game) gameInfo {
	return gameInfo{
		GameID:    game.ID,
		State:     game.State,
		UserName:  game.User.Name,
		Questions: game.Questions,
	}
}

// decodeJSON ignores fields the request type does not declare.
func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
