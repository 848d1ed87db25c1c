package hunt

import (
	"errors"
	"math/rand"
	"testing"
)

func newTestInteraction(t *testing.T) (*Interaction, *Item, *int, *int) {
	t.Helper()
	in := NewInteraction(testLogger(), rand.New(rand.NewSource(21)))

	collects := 0
	questions := 0
	in.OnCollect = func(item *Item, placed *PlacedItem) { collects++ }
	in.OnQuestion = func(item *Item, q Question) { questions++ }

	item := &Item{
		ID:   "gear",
		Name: "Gear",
		Questions: []Question{
			{Text: "q1", CorrectAnswer: true},
			{Text: "q2", CorrectAnswer: false},
			{Text: "q3", CorrectAnswer: true},
		},
	}
	return in, item, &collects, &questions
}

func TestCorrectAnswerCollectsImmediately(t *testing.T) {
	for cursorPos := 0; cursorPos < 3; cursorPos++ {
		in, item, collects, _ := newTestInteraction(t)
		placed := &PlacedItem{Item: item}

		if err := in.Start(item, placed); err != nil {
			t.Fatalf("start: %v", err)
		}

		// Answer wrong until the target cursor position, then right.
		for i := 0; i < cursorPos; i++ {
			q, _ := in.Current()
			in.Submit(!q.CorrectAnswer)
		}
		q, ok := in.Current()
		if !ok {
			t.Fatalf("cursor %d: no current question", cursorPos)
		}
		in.Submit(q.CorrectAnswer)

		if *collects != 1 {
			t.Errorf("cursor %d: collects = %d, want 1", cursorPos, *collects)
		}
		if in.Active() {
			t.Errorf("cursor %d: session still active after correct answer", cursorPos)
		}
	}
}

func TestExhaustedCycleReshufflesInsteadOfTerminating(t *testing.T) {
	in, item, collects, questions := newTestInteraction(t)
	if err := in.Start(item, &PlacedItem{Item: item}); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Three wrong answers exhaust the pass; the cycle must restart with a
	// fresh shuffle rather than end.
	for i := 0; i < 3; i++ {
		q, ok := in.Current()
		if !ok {
			t.Fatalf("no question at step %d", i)
		}
		in.Submit(!q.CorrectAnswer)
	}

	if !in.Active() {
		t.Fatal("session terminated after exhausting the cycle")
	}
	if *collects != 0 {
		t.Fatalf("collects = %d after only wrong answers", *collects)
	}
	// One presentation at start plus one per wrong answer.
	if *questions != 4 {
		t.Errorf("questions presented = %d, want 4", *questions)
	}

	// The reshuffled cycle still completes on a correct answer.
	q, _ := in.Current()
	in.Submit(q.CorrectAnswer)
	if *collects != 1 || in.Active() {
		t.Error("reshuffled cycle did not complete on correct answer")
	}
}

func TestStartRejectsSecondSession(t *testing.T) {
	in, item, _, _ := newTestInteraction(t)
	other := &Item{ID: "cog", Questions: item.Questions}

	if err := in.Start(item, &PlacedItem{Item: item}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := in.Start(other, &PlacedItem{Item: other}); !errors.Is(err, ErrInteractionActive) {
		t.Fatalf("second start error = %v, want ErrInteractionActive", err)
	}
}

func TestStartRejectsCollectedItem(t *testing.T) {
	in, item, _, _ := newTestInteraction(t)
	item.Collected = true

	if err := in.Start(item, &PlacedItem{Item: item}); !errors.Is(err, ErrAlreadyCollected) {
		t.Fatalf("start error = %v, want ErrAlreadyCollected", err)
	}
}

func TestCancelHasNoSideEffects(t *testing.T) {
	in, item, collects, _ := newTestInteraction(t)
	if err := in.Start(item, &PlacedItem{Item: item}); err != nil {
		t.Fatalf("start: %v", err)
	}

	in.Cancel()

	if in.Active() {
		t.Fatal("session active after cancel")
	}
	if *collects != 0 {
		t.Fatal("cancel fired the collect hook")
	}
	if item.Collected {
		t.Fatal("cancel mutated the item")
	}
	// Cancelling twice is harmless.
	in.Cancel()
}

func TestProximityAutoCancel(t *testing.T) {
	in, item, collects, _ := newTestInteraction(t)
	in.MaxDistance = 5

	placed := &PlacedItem{Item: item, Position: Vec3{X: 1}}
	if err := in.Start(item, placed); err != nil {
		t.Fatalf("start: %v", err)
	}

	in.TickProximity(Vec3{X: 3}) // 2 m away, inside range
	if !in.Active() {
		t.Fatal("session cancelled while in range")
	}

	in.TickProximity(Vec3{X: 20}) // 19 m away
	if in.Active() {
		t.Fatal("session survived leaving the interaction range")
	}
	if *collects != 0 {
		t.Fatal("auto-cancel fired the collect hook")
	}
}
