package decision

import (
	"golang.org/x/exp/rand"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// BreakThreshold is how many consecutive identical (decision, chosen
// option) repeats constitute a wedge.
const BreakThreshold = 3

// CycleThreshold is how many times the same (decision, chosen option) pair
// may recur within the recent window before it counts as a wedge even when
// it isn't back-to-back — catches a short back-and-forth cycle (A, B, A, B,
// A, …) the adjacent-streak counter alone never sees since no single pair
// ever repeats twice in a row.
const CycleThreshold = 5

type loopKey struct {
	decisionID   string
	decisionType Type
	prompt       string
	chosenOption string
}

// LoopDetector watches the sequence of (decision, chosen option) pairs a
// brain produces and flags when the same one repeats enough times in a row
// to suggest the bot is stuck rather than making progress.
type LoopDetector struct {
	recent  *lru.Cache[loopKey, int]
	lastKey loopKey
	streak  int
}

// NewLoopDetector returns a detector that remembers up to windowSize
// distinct recent decision/response pairs.
func NewLoopDetector(windowSize int) *LoopDetector {
	cache, _ := lru.New[loopKey, int](windowSize)
	return &LoopDetector{recent: cache}
}

// Observe records one (request, chosen value) pair and reports whether the
// streak of identical repeats has reached BreakThreshold.
func (d *LoopDetector) Observe(req Request, value string) (wedged bool) {
	key := loopKey{decisionID: req.ID, decisionType: req.Type, prompt: req.Text, chosenOption: value}

	count, _ := d.recent.Get(key)
	count++
	d.recent.Add(key, count)

	if key == d.lastKey {
		d.streak++
	} else {
		d.lastKey = key
		d.streak = 1
	}

	switch {
	case d.streak >= BreakThreshold:
		log.Warn().Str("decision_id", req.ID).Int("streak", d.streak).Msg("decision loop: identical response repeated, breaking")
		return true
	case count >= CycleThreshold:
		log.Warn().Str("decision_id", req.ID).Int("recurrences", count).Msg("decision loop: same response recurring across a cycle, breaking")
		return true
	}
	return false
}

// Break picks a different valid response than the wedged one, preferring a
// selectable option that isn't the repeated choice.
func (d *LoopDetector) Break(req Request, wedgedValue string) (string, string) {
	var alternatives []Option
	for _, o := range req.SelectableOptions() {
		id := o.CardID
		if id == "" {
			id = o.ID
		}
		if id != wedgedValue {
			alternatives = append(alternatives, o)
		}
	}
	if len(alternatives) > 0 {
		pick := alternatives[rand.Intn(len(alternatives))]
		id := pick.CardID
		if id == "" {
			id = pick.ID
		}
		return id, "loop: broke wedge by picking a different selectable option"
	}
	if req.CanPass() {
		return "", "loop: broke wedge by passing"
	}
	return wedgedValue, "loop: no alternative available, repeating choice"
}

// Reset clears the streak tracker and the recent-response window, used
// when the phase changes since a phase boundary can't itself be part of a
// wedge.
func (d *LoopDetector) Reset() {
	d.streak = 0
	d.lastKey = loopKey{}
	d.recent.Purge()
}
