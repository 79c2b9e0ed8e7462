package evaluator

import "strings"

// defaultForceGenTarget is the reference force-pile size a bot with no
// configured target tries to stay near.
const defaultForceGenTarget = 6

// ForceActivationEvaluator scores activating Force cards, boosting the
// score the lower the force pile is relative to the hand's deploy needs.
// ForceGenTarget is the force_gen_target tuning knob: the force pile size
// this evaluator treats as "ample" rather than worth topping up.
type ForceActivationEvaluator struct {
	ForceGenTarget int
}

// NewForceActivationEvaluator builds a ForceActivationEvaluator targeting
// the given force pile size, falling back to the reference target when
// given zero.
func NewForceActivationEvaluator(forceGenTarget int) ForceActivationEvaluator {
	if forceGenTarget == 0 {
		forceGenTarget = defaultForceGenTarget
	}
	return ForceActivationEvaluator{ForceGenTarget: forceGenTarget}
}

func (ForceActivationEvaluator) Name() string { return "ActivateForce" }

func (ForceActivationEvaluator) CanEvaluate(ctx Context) bool {
	for _, o := range ctx.Request.Options {
		if strings.Contains(o.Text, "Activate Force") || strings.Contains(o.Text, "activate Force") {
			return true
		}
	}
	return false
}

func (e ForceActivationEvaluator) Evaluate(ctx Context) []EvaluatedAction {
	var actions []EvaluatedAction
	b := ctx.Board
	target := e.ForceGenTarget
	if target == 0 {
		target = defaultForceGenTarget
	}

	for _, o := range ctx.Request.Options {
		if !strings.Contains(o.Text, "ctivate Force") {
			continue
		}
		action := EvaluatedAction{OptionID: o.ID, CardID: o.CardID, ActionType: ActionActivateForce, DisplayText: o.Text}
		action.AddReasoning("base activate force score", 40)

		if b != nil {
			switch {
			case b.MyZones.ForcePile < target/3:
				action.AddReasoning("force pile nearly empty", 20)
			case b.MyZones.ForcePile >= target+target/3:
				action.AddReasoning("force pile already ample", -15)
			}
			if b.MyZones.ReserveDeck < 6 {
				action.AddReasoning("reserve deck thinning, every activation costs future draws", -5)
			}
		}
		actions = append(actions, action)
	}
	return actions
}
