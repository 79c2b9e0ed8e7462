package evaluator

import (
	"fmt"
	"strings"

	"github.com/SWCCGArena/rando-python/decision"
)

// criticalLifeForce is the life-force floor below which the game is
// treated as hopeless absent a deployable card or a battle opportunity,
// mirroring board_state.py's should_concede hardcoded "< 6" check.
const criticalLifeForce = 6

// ConcedeEvaluator scores the option to concede the game, and can veto
// every other evaluator's opinion outright when the board is fatally lost:
// life force below criticalLifeForce, nothing affordable in hand, and no
// contested location left to swing a battle at. Grounded on
// board_state.py's should_concede, simplified to the life-force/
// affordability/battle-opportunity checks this module's BoardState
// actually tracks (it has no per-battle damage-pending state to make the
// "fatal damage this turn" immediate check possible).
type ConcedeEvaluator struct{}

func (ConcedeEvaluator) Name() string { return "Concede" }

func (ConcedeEvaluator) CanEvaluate(ctx Context) bool {
	if isExplicitConcedePrompt(ctx.Request) {
		return true
	}
	return ctx.Board != nil && isHopeless(ctx)
}

func isExplicitConcedePrompt(req decision.Request) bool {
	if req.Type != decision.TypeMultipleChoice {
		return false
	}
	text := strings.ToLower(req.Text)
	return strings.Contains(text, "concede") || strings.Contains(text, "forfeit") || strings.Contains(text, "surrender")
}

func (ConcedeEvaluator) Evaluate(ctx Context) []EvaluatedAction {
	if isExplicitConcedePrompt(ctx.Request) {
		return evaluateConcedePrompt(ctx)
	}

	// No explicit prompt is offered right now, but the board is hopeless.
	// Veto toward whatever option in this decision looks most like giving
	// up the turn cleanly (a pass/decline), since there is nothing to
	// concede to directly — the real Concede prompt will come from the
	// server on a later decision and evaluateConcedePrompt will take it.
	if pass, ok := firstPassOption(ctx); ok {
		action := EvaluatedAction{OptionID: pass.ID, CardID: pass.CardID, ActionType: ActionPass, DisplayText: pass.Text}
		action.Veto = true
		action.AddReasoning(hopelessReason(ctx), 0)
		return []EvaluatedAction{action}
	}
	return nil
}

func evaluateConcedePrompt(ctx Context) []EvaluatedAction {
	var actions []EvaluatedAction
	hopeless := ctx.Board != nil && isHopeless(ctx)
	for _, o := range ctx.Request.Options {
		action := EvaluatedAction{OptionID: o.ID, ActionType: ActionConcede, DisplayText: o.Text}
		lower := strings.ToLower(o.Text)
		switch {
		case strings.Contains(lower, "no") || strings.Contains(lower, "cancel"):
			action.AddReasoning("decline to concede", 40)
		case strings.Contains(lower, "yes") || strings.Contains(lower, "concede"):
			action.AddReasoning("conceding gives up the game, only acceptable when hopeless", -60)
			if ctx.Board != nil && ctx.Board.PowerAdvantage() < -40 && ctx.Board.ForceAdvantage() < -10 {
				action.AddReasoning("board is thoroughly lost, conceding is honest", 50)
			}
			if hopeless {
				action.Veto = true
				action.AddReasoning(hopelessReason(ctx), 0)
			}
		}
		actions = append(actions, action)
	}
	return actions
}

func firstPassOption(ctx Context) (decision.Option, bool) {
	for _, o := range ctx.Request.SelectableOptions() {
		lower := strings.ToLower(o.Text)
		if strings.Contains(lower, "pass") || strings.Contains(lower, "decline") || strings.Contains(lower, "no response") {
			return o, true
		}
	}
	return decision.Option{}, false
}

// isHopeless mirrors board_state.py's should_concede: life force critically
// low, nothing in hand affordable within the knapsack-optimal ground
// deployment for the remaining force, and no contested location left to
// turn things around in a battle.
func isHopeless(ctx Context) bool {
	b := ctx.Board
	if b.MyLifeForce() >= criticalLifeForce {
		return false
	}
	if b.HasBattleOpportunity() {
		return false
	}
	power, _ := deployableGroundPower(ctx, b.MyZones.ForcePile)
	return power == 0
}

func hopelessReason(ctx Context) string {
	b := ctx.Board
	return fmt.Sprintf("life force critical (%d), nothing affordable to deploy, no battle opportunities", b.MyLifeForce())
}
