package domain

import (
	"errors"
	"testing"
)

func sample(easy, medium, hard int) []Question {
	var out []Question
	id := int64(1)
	for level, n := range map[Difficulty]int{Easy: easy, Medium: medium, Hard: hard} {
		for i := 0; i < n; i++ {
			out = append(out, Question{ID: id, Level: level, Answer: ChoiceA})
			id++
		}
	}
	return out
}

func TestGameLifecycle(t *testing.T) {
	user := User{ID: 7, Name: "Alice"}
	fresh := NewGame()
	if fresh.State != GameNotStarted || fresh.ID != 0 {
		t.Fatalf("unexpected new game %+v", fresh)
	}

	started, err := fresh.Start(3, user, sample(4, 4, 2))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.State != GameInProgress || started.ID != 3 || started.User != user || len(started.Questions) != 10 {
		t.Fatalf("unexpected started game %+v", started)
	}
	if fresh.State != GameNotStarted {
		t.Fatalf("start modified the receiver")
	}
	if _, err := started.Start(4, user, sample(4, 4, 2)); !errors.Is(err, ErrGameAlreadyStarted) {
		t.Fatalf("expected already started, got %v", err)
	}

	finished, err := started.Finish(5000)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if finished.State != GameCompleted || finished.Score != 5000 || started.Score != 0 {
		t.Fatalf("unexpected finish result %+v (receiver %+v)", finished, started)
	}
	if _, err := finished.Finish(1); !errors.Is(err, ErrGameNotInProgress) {
		t.Fatalf("expected not in progress, got %v", err)
	}
	if _, err := finished.Drop(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected state error dropping a completed game, got %v", err)
	}
}

func TestGameFinishRejectsNegativeScore(t *testing.T) {
	started, _ := NewGame().Start(1, User{ID: 1, Name: "a"}, sample(4, 4, 2))
	got, err := started.Finish(-1)
	if !errors.Is(err, ErrNegativeScore) {
		t.Fatalf("expected negative score, got %v", err)
	}
	if got.State != GameInProgress {
		t.Fatalf("rejected finish must return the unchanged game")
	}
	if _, err := NewGame().Finish(10); !errors.Is(err, ErrGameNotInProgress) {
		t.Fatalf("expected not in progress for a fresh game, got %v", err)
	}
}

func TestGameDropResets(t *testing.T) {
	started, _ := NewGame().Start(9, User{ID: 4, Name: "Carol", Score: 12}, sample(4, 4, 2))
	dropped, err := started.Drop()
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if dropped.State != GameDropped || dropped.ID != 0 || dropped.Score != 0 || len(dropped.Questions) != 0 {
		t.Fatalf("expected reset game, got %+v", dropped)
	}
	if dropped.User != (User{Name: "Carol"}) {
		t.Fatalf("expected user reset to name, got %+v", dropped.User)
	}
	if started.ID != 9 {
		t.Fatalf("drop modified the receiver")
	}
}

func TestCheckStratified(t *testing.T) {
	cases := []struct {
		name string
		qs   []Question
		ok   bool
	}{
		{"exact", sample(4, 4, 2), true},
		{"too few", sample(4, 4, 1), false},
		{"wrong split", sample(5, 3, 2), false},
		{"too many", sample(4, 4, 3), false},
	}
	for _, tc := range cases {
		err := CheckStratified(tc.qs)
		if (err == nil) != tc.ok {
			t.Fatalf("%s: got %v", tc.name, err)
		}
	}
	if _, err := NewGame().Start(1, User{}, sample(5, 3, 2)); !errors.Is(err, ErrUnstratifiedSample) {
		t.Fatalf("start must refuse an unstratified sample, got %v", err)
	}
}

func TestGameKeyRoundTrip(t *testing.T) {
	id, err := ParseGameKey(GameKey(42))
	if err != nil || id != 42 {
		t.Fatalf("round trip: %d, %v", id, err)
	}
	for _, raw := range []string{"", "abc", "0", "-3"} {
		if _, err := ParseGameKey(raw); !errors.Is(err, ErrInvalidGameID) {
			t.Fatalf("ParseGameKey(%q): expected invalid id, got %v", raw, err)
		}
	}
}

func TestErrorCategories(t *testing.T) {
	cases := map[error]error{
		ErrEmptyName:            ErrValidation,
		ErrUnstratifiedSample:   ErrValidation,
		ErrGameNotInProgress:    ErrInvalidState,
		ErrNoQuestionsAvailable: ErrInvalidState,
		ErrGameNotFound:         ErrNotFound,
		ErrUserNotFound:         ErrNotFound,
	}
	for err, category := range cases {
		if !errors.Is(err, category) {
			t.Fatalf("%v should be in category %v", err, category)
		}
	}
}
