package evaluator

// defaultHandSoftCap is the reference hand size below which a bot with no
// configured soft cap starts favoring passivity.
const defaultHandSoftCap = 12

// PassEvaluator scores declining the current decision. It is the floor
// every other evaluator's "do something" score has to clear.
// HandSoftCap is the hand_soft_cap tuning knob: hand sizes below it get a
// growing bonus toward passing rather than spending resources.
type PassEvaluator struct {
	HandSoftCap int
}

// NewPassEvaluator builds a PassEvaluator with the given hand soft cap,
// falling back to the reference cap when given zero.
func NewPassEvaluator(handSoftCap int) PassEvaluator {
	if handSoftCap == 0 {
		handSoftCap = defaultHandSoftCap
	}
	return PassEvaluator{HandSoftCap: handSoftCap}
}

func (PassEvaluator) Name() string { return "Pass" }

func (PassEvaluator) CanEvaluate(ctx Context) bool {
	return ctx.Request.CanPass()
}

func (e PassEvaluator) Evaluate(ctx Context) []EvaluatedAction {
	action := EvaluatedAction{OptionID: "", ActionType: ActionPass, DisplayText: "Pass"}
	action.AddReasoning("baseline pass score", 5)

	b := ctx.Board
	if b == nil {
		return []EvaluatedAction{action}
	}

	softCap := e.HandSoftCap
	if softCap == 0 {
		softCap = defaultHandSoftCap
	}

	if b.MyZones.ForcePile < 3 {
		action.AddReasoning("force pile is low, conserve it", 5)
	}
	if b.MyZones.ReserveDeck < 6 {
		action.AddReasoning("reserve deck is getting thin", 3)
	}
	switch {
	case b.HandSize() < softCap/2:
		action.AddReasoning("hand is critically small", 15)
	case b.HandSize() < softCap:
		action.AddReasoning("hand is on the small side", 8)
	}
	if ctx.Request.Text != "" && b.CurrentPhase == "MOVE" && b.MyZones.ForcePile < 4 && b.HandSize() < 6 {
		action.AddReasoning("low resources during move phase, stay passive", 10)
	}

	return []EvaluatedAction{action}
}
