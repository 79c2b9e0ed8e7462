package evaluator

import (
	"strings"

	"github.com/SWCCGArena/rando-python/decision"
)

// ActionTextEvaluator is the last-resort evaluator for ACTION_CHOICE and
// CARD_ACTION_CHOICE decisions that no domain-specific evaluator claimed.
// It scores purely from the option's display text, the way the reference
// implementation's keyword table did before any card metadata is involved.
type ActionTextEvaluator struct{}

func (ActionTextEvaluator) Name() string { return "ActionText" }

func (ActionTextEvaluator) CanEvaluate(ctx Context) bool {
	return ctx.Request.Type == decision.TypeActionChoice || ctx.Request.Type == decision.TypeCardActionChoice
}

var actionTextScores = []struct {
	keyword string
	delta   float64
}{
	{"Force Drain", 35},
	{"Use Force", 20},
	{"Play", 25},
	{"Search", 15},
	{"Cancel", 8},
	{"Pass", 5},
	{"Forfeit", -40},
	{"Lose", -50},
	{"Concede", -1000},
}

func (ActionTextEvaluator) Evaluate(ctx Context) []EvaluatedAction {
	var actions []EvaluatedAction
	for _, o := range ctx.Request.Options {
		action := EvaluatedAction{OptionID: o.ID, CardID: o.CardID, ActionType: ActionUnknown, DisplayText: o.Text}
		action.AddReasoning("baseline action-text score", 10)

		for _, scored := range actionTextScores {
			if strings.Contains(o.Text, scored.keyword) {
				action.AddReasoning("matched keyword "+scored.keyword, scored.delta)
			}
		}
		actions = append(actions, action)
	}
	return actions
}
