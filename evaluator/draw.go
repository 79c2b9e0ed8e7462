package evaluator

import "strings"

// DrawEvaluator scores drawing destiny or drawing a card, preferring it
// when the hand is thin and there's a reserve deck to spare.
// HandSoftCap is the hand_soft_cap tuning knob below which drawing a card
// (not destiny) gets an extra boost.
type DrawEvaluator struct {
	HandSoftCap int
}

// NewDrawEvaluator builds a DrawEvaluator with the given hand soft cap,
// falling back to the reference cap when given zero.
func NewDrawEvaluator(handSoftCap int) DrawEvaluator {
	if handSoftCap == 0 {
		handSoftCap = defaultHandSoftCap
	}
	return DrawEvaluator{HandSoftCap: handSoftCap}
}

func (DrawEvaluator) Name() string { return "Draw" }

func (DrawEvaluator) CanEvaluate(ctx Context) bool {
	for _, o := range ctx.Request.Options {
		if strings.Contains(o.Text, "Draw") {
			return true
		}
	}
	return false
}

func (e DrawEvaluator) Evaluate(ctx Context) []EvaluatedAction {
	var actions []EvaluatedAction
	b := ctx.Board
	softCap := e.HandSoftCap
	if softCap == 0 {
		softCap = defaultHandSoftCap
	}

	for _, o := range ctx.Request.Options {
		if !strings.Contains(o.Text, "Draw") {
			continue
		}
		actionType := ActionDraw
		if strings.Contains(o.Text, "destiny") || strings.Contains(o.Text, "Destiny") {
			actionType = ActionDrawDestiny
		}
		action := EvaluatedAction{OptionID: o.ID, CardID: o.CardID, ActionType: actionType, DisplayText: o.Text}
		action.AddReasoning("base draw score", 30)

		if b != nil {
			if actionType == ActionDraw && b.HandSize() < softCap/2 {
				action.AddReasoning("hand is thin, draw is valuable", 15)
			}
			if b.MyZones.ReserveDeck < 4 {
				action.AddReasoning("reserve deck running low, be conservative about destiny draws", -10)
			}
		}
		actions = append(actions, action)
	}
	return actions
}
