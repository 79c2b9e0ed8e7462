package evaluator

import (
	"strings"

	"github.com/SWCCGArena/rando-python/decision"
)

// defaultMaxHandSize is the reference hard hand-size limit a bot with no
// configured max tries to discard down to.
const defaultMaxHandSize = 16

// CardSelectionEvaluator is the generic fallback for CARD_SELECTION and
// ARBITRARY_CARDS decisions that no more specific evaluator claimed,
// preferring higher-value cards and penalizing cancel-like options when
// something concrete is available. When the decision text names a
// discard-down-to-hand-size choice, MaxHandSize (the max_hand_size tuning
// knob) flips the scoring to favor discarding the lowest-value cards.
type CardSelectionEvaluator struct {
	MaxHandSize int
}

// NewCardSelectionEvaluator builds a CardSelectionEvaluator with the given
// max hand size, falling back to the reference size when given zero.
func NewCardSelectionEvaluator(maxHandSize int) CardSelectionEvaluator {
	if maxHandSize == 0 {
		maxHandSize = defaultMaxHandSize
	}
	return CardSelectionEvaluator{MaxHandSize: maxHandSize}
}

func (CardSelectionEvaluator) Name() string { return "CardSelection" }

func (CardSelectionEvaluator) CanEvaluate(ctx Context) bool {
	return ctx.Request.Type == decision.TypeCardSelection || ctx.Request.Type == decision.TypeArbitraryCards
}

func (e CardSelectionEvaluator) Evaluate(ctx Context) []EvaluatedAction {
	discarding := strings.Contains(strings.ToLower(ctx.Request.Text), "discard")
	overHandLimit := false
	if ctx.Board != nil {
		maxHandSize := e.MaxHandSize
		if maxHandSize == 0 {
			maxHandSize = defaultMaxHandSize
		}
		overHandLimit = ctx.Board.HandSize() > maxHandSize
	}

	var actions []EvaluatedAction
	for _, o := range ctx.Request.SelectableOptions() {
		action := EvaluatedAction{OptionID: o.ID, CardID: o.CardID, ActionType: ActionSelectCard, DisplayText: o.Text}
		action.AddReasoning("generic selectable card", 10)

		if meta := ctx.Registry.Get(o.CardID); meta != nil {
			value := float64(meta.Power()+meta.Ability()+meta.Forfeit()) / 2
			if discarding {
				action.AddReasoning("low-value card is cheapest to discard", -value)
				if meta.IsUnique {
					action.AddReasoning("unique card, avoid discarding if possible", -10)
				}
			} else {
				action.AddReasoning("card value", value)
				if meta.IsUnique {
					action.AddReasoning("unique card worth protecting or prioritizing", 5)
				}
			}
		}
		if discarding && overHandLimit {
			action.AddReasoning("hand over the configured limit, discarding is urgent", 10)
		}
		actions = append(actions, action)
	}

	if len(actions) == 0 {
		// Nothing selectable: offer cancel/pass if the text suggests one exists.
		for _, o := range ctx.Request.Options {
			if strings.Contains(strings.ToLower(o.Text), "cancel") {
				action := EvaluatedAction{OptionID: o.ID, ActionType: ActionCancel, DisplayText: o.Text}
				action.AddReasoning("no selectable cards, cancel instead", 15)
				actions = append(actions, action)
			}
		}
	}
	return actions
}
