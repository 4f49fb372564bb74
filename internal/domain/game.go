package domain

import (
	"slices"
	"strconv"
	"strings"
)

// GameState is the lifecycle position of a game.
type GameState string

const (
	GameNotStarted GameState = "notStarted"
	GameInProgress GameState = "inProgress"
	GameCompleted  GameState = "completed"
	GameDropped    GameState = "dropped"
)

const (
	// QuestionsPerGame is the size of every sample.
	QuestionsPerGame = 10
)

// TierQuota is how many questions of each difficulty a game holds.
var TierQuota = map[Difficulty]int{
	Easy:   4,
	Medium: 4,
	Hard:   2,
}

// Game is one play-through. Transitions return a new value; the receiver is never modified.
type Game struct {
	ID        int64      `json:"id"`
	Score     int        `json:"score"`
	State     GameState  `json:"state"`
	User      User       `json:"user"`
	Questions []Question `json:"questions"`
}

// NewGame returns a game in NotStarted state with no identifier.
func NewGame() Game {
	return Game{State: GameNotStarted, Questions: []Question{}}
}

// Key is the registry key of the game.
func (g Game) Key() string {
	return GameKey(g.ID)
}

// GameKey formats a game identifier as a registry key.
func GameKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ParseGameKey converts a registry key back into a game identifier.
func ParseGameKey(key string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidGameID
	}
	return id, nil
}

// Start moves a NotStarted game into InProgress with its persisted id, owner and questions.
func (g Game) Start(id int64, user User, questions []Question) (Game, error) {
	if g.State != GameNotStarted {
		return g, ErrGameAlreadyStarted
	}
	if err := CheckStratified(questions); err != nil {
		return g, err
	}
	out := g
	out.ID = id
	out.User = user
	out.Questions = slices.Clone(questions)
	out.State = GameInProgress
	return out, nil
}

// Finish records the final score and completes the game.
func (g Game) Finish(score int) (Game, error) {
	if g.State != GameInProgress {
		return g, ErrGameNotInProgress
	}
	if score < 0 {
		return g, ErrNegativeScore
	}
	out := g
	out.Questions = slices.Clone(g.Questions)
	out.Score = score
	out.State = GameCompleted
	return out, nil
}

// Drop abandons a running game: identifiers, score and questions are reset
// and the owned user loses its id and score.
func (g Game) Drop() (Game, error) {
	if g.State != GameInProgress {
		return g, ErrGameNotInProgress
	}
	out := NewGame()
	out.State = GameDropped
	out.User = User{Name: g.User.Name}
	return out, nil
}

// CheckStratified reports whether questions hold exactly the 4/4/2 tier split.
func CheckStratified(questions []Question) error {
	if len(questions) != QuestionsPerGame {
		return ErrUnstratifiedSample
	}
	counts := make(map[Difficulty]int, len(TierQuota))
	for _, q := range questions {
		counts[q.Level]++
	}
	for level, want := range TierQuota {
		if counts[level] != want {
			return ErrUnstratifiedSample
		}
	}
	return nil
}

// QuestionIDs returns the identifiers of the game's questions in order.
func (g Game) QuestionIDs() []int64 {
	ids := make([]int64, 0, len(g.Questions))
	for _, q := range g.Questions {
		ids = append(ids, q.ID)
	}
	return ids
}
