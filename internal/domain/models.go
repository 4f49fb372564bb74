package domain

import (
	"strings"
	"time"
)

// Difficulty is the tier a question belongs to.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists the tiers in sampling order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// ParseDifficulty normalizes a raw level (case and surrounding spaces are ignored).
func ParseDifficulty(raw string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(raw))); d {
	case Easy, Medium, Hard:
		return d, nil
	}
	return "", ErrInvalidDifficulty
}

// Choice marks one of the four alternatives of a question.
type Choice string

const (
	ChoiceA Choice = "a"
	ChoiceB Choice = "b"
	ChoiceC Choice = "c"
	ChoiceD Choice = "d"
)

// ParseChoice accepts a, b, c or d in any case.
func ParseChoice(raw string) (Choice, error) {
	switch c := Choice(strings.ToLower(strings.TrimSpace(raw))); c {
	case ChoiceA, ChoiceB, ChoiceC, ChoiceD:
		return c, nil
	}
	return "", ErrInvalidChoice
}

// User is a player. ID is zero until persisted.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Question is a four-alternative question with exactly one correct answer.
type Question struct {
	ID           int64      `json:"id"`
	Level        Difficulty `json:"level"`
	Statement    string     `json:"statement"`
	AlternativeA string     `json:"alternativeA"`
	AlternativeB string     `json:"alternativeB"`
	AlternativeC string     `json:"alternativeC"`
	AlternativeD string     `json:"alternativeD"`
	Answer       Choice     `json:"answer"`
}

// Alternatives returns the four alternative texts in a..d order.
func (q Question) Alternatives() [4]string {
	return [4]string{q.AlternativeA, q.AlternativeB, q.AlternativeC, q.AlternativeD}
}

// QuestionInput carries unvalidated question fields, as received from clients or the seed bank.
type QuestionInput struct {
	Level         string `json:"level" yaml:"level"`
	Statement     string `json:"statement" yaml:"statement"`
	AlternativeA  string `json:"alternativeA" yaml:"alternative_a"`
	AlternativeB  string `json:"alternativeB" yaml:"alternative_b"`
	AlternativeC  string `json:"alternativeC" yaml:"alternative_c"`
	AlternativeD  string `json:"alternativeD" yaml:"alternative_d"`
	CorrectAnswer string `json:"correctAnswer" yaml:"correct_answer"`
}

// Normalize validates the input and returns a Question with trimmed text and
// lowercase markers. The ID is left at zero.
func (in QuestionInput) Normalize() (Question, error) {
	level, err := ParseDifficulty(in.Level)
	if err != nil {
		return Question{}, err
	}
	statement := strings.TrimSpace(in.Statement)
	if statement == "" {
		return Question{}, ErrEmptyStatement
	}
	alts := [4]string{}
	for i, raw := range [4]string{in.AlternativeA, in.AlternativeB, in.AlternativeC, in.AlternativeD} {
		alts[i] = strings.TrimSpace(raw)
		if alts[i] == "" {
			return Question{}, ErrEmptyAlternative
		}
	}
	answer, err := ParseChoice(in.CorrectAnswer)
	if err != nil {
		return Question{}, err
	}
	return Question{
		Level:        level,
		Statement:    statement,
		AlternativeA: alts[0],
		AlternativeB: alts[1],
		AlternativeC: alts[2],
		AlternativeD: alts[3],
		Answer:       answer,
	}, nil
}

// RankingEntry is one line of the leaderboard.
type RankingEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Ranking is a timestamped leaderboard snapshot pushed to feed subscribers.
type Ranking struct {
	Entries   []RankingEntry `json:"entries"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
