package hunt

import (
	"log/slog"
	"math/rand"
)

// Interaction runs the per-item quiz cycle: a shuffled pass over the
// item's three questions, wrong answers advancing the cursor, exhaustion
// reshuffling and starting over. The cycle only ends on a correct answer
// or an external cancel; it never terminates on its own.
type Interaction struct {
	log *slog.Logger
	rng *rand.Rand

	// MaxDistance cancels the session when the player walks this far from
	// the item. Zero disables the proximity check.
	MaxDistance float64

	// OnQuestion presents the question at the cursor. OnCollect fires once
	// on a correct answer, before the session state is discarded.
	OnQuestion func(item *Item, q Question)
	OnCollect  func(item *Item, placed *PlacedItem)

	item   *Item
	placed *PlacedItem
	queue  []Question
	cursor int
}

func NewInteraction(log *slog.Logger, rng *rand.Rand) *Interaction {
	return &Interaction{log: log, rng: rng}
}

func (in *Interaction) Active() bool {
	return in.item != nil
}

// Current returns the question at the cursor, if a session is active.
func (in *Interaction) Current() (Question, bool) {
	if in.item == nil {
		return Question{}, false
	}
	return in.queue[in.cursor], true
}

// Start begins a quiz session for item. At most one session may run at a
// time, and collected items cannot be interacted with again.
func (in *Interaction) Start(item *Item, placed *PlacedItem) error {
	if in.item != nil {
		return ErrInteractionActive
	}
	if item.Collected {
		return ErrAlreadyCollected
	}

	in.item = item
	in.placed = placed
	in.reshuffle()
	in.present()
	return nil
}

// Submit evaluates the player's answer. Correct collects the item and ends
// the session; wrong advances the cursor, reshuffling when the pass is
// exhausted.
func (in *Interaction) Submit(answer bool) {
	if in.item == nil {
		return
	}

	q := in.queue[in.cursor]
	if answer == q.CorrectAnswer {
		item, placed := in.item, in.placed
		in.clear()
		if in.OnCollect != nil {
			in.OnCollect(item, placed)
		}
		return
	}

	in.cursor++
	if in.cursor >= len(in.queue) {
		in.log.Debug("question cycle exhausted, reshuffling", "item", in.item.ID)
		in.reshuffle()
	}
	in.present()
}

// Cancel discards the session unconditionally, with no effect on the item.
func (in *Interaction) Cancel() {
	if in.item == nil {
		return
	}
	in.log.Debug("interaction cancelled", "item", in.item.ID)
	in.clear()
}

// TickProximity auto-cancels the session when the player has wandered past
// MaxDistance from the item.
func (in *Interaction) TickProximity(playerPos Vec3) {
	if in.item == nil || in.placed == nil || in.MaxDistance <= 0 {
		return
	}
	if in.placed.Position.Dist(playerPos) > in.MaxDistance {
		in.log.Debug("player out of range, cancelling interaction",
			"item", in.item.ID, "max", in.MaxDistance)
		in.clear()
	}
}

func (in *Interaction) reshuffle() {
	in.queue = append(in.queue[:0], in.item.Questions...)
	in.rng.Shuffle(len(in.queue), func(i, j int) {
		in.queue[i], in.queue[j] = in.queue[j], in.queue[i]
	})
	in.cursor = 0
}

func (in *Interaction) present() {
	if in.OnQuestion != nil {
		in.OnQuestion(in.item, in.queue[in.cursor])
	}
}

func (in *Interaction) clear() {
	in.item = nil
	in.placed = nil
	in.queue = nil
	in.cursor = 0
}
