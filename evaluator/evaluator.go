// Package evaluator scores the options inside one decision.Request and
// picks the best one, the way the reference brain's decision pipeline
// delegates judgment to a panel of single-concern evaluators rather than
// one monolithic switch.
package evaluator

import (
	"fmt"

	"github.com/SWCCGArena/rando-python/board"
	"github.com/SWCCGArena/rando-python/card"
	"github.com/SWCCGArena/rando-python/decision"
	"github.com/SWCCGArena/rando-python/deployplan"
)

// ActionType classifies what an EvaluatedAction would actually do if
// chosen, independent of which decision.Type carried it.
type ActionType string

const (
	ActionDeploy         ActionType = "DEPLOY"
	ActionPass           ActionType = "PASS"
	ActionActivateForce  ActionType = "ACTIVATE_FORCE"
	ActionBattle         ActionType = "BATTLE"
	ActionMove           ActionType = "MOVE"
	ActionDraw           ActionType = "DRAW"
	ActionDrawDestiny    ActionType = "DRAW_DESTINY"
	ActionSelectCard     ActionType = "SELECT_CARD"
	ActionArbitrary      ActionType = "ARBITRARY"
	ActionConcede        ActionType = "CONCEDE"
	ActionCancel         ActionType = "CANCEL"
	ActionUnknown        ActionType = "UNKNOWN"
)

// Context is everything an evaluator needs to judge one decision's options.
type Context struct {
	Board    *board.BoardState
	Registry *card.Registry
	Request  decision.Request

	// Plan is the in-flight deploy-phase plan, if one has been built for
	// the current phase. Only DeployEvaluator consults it; every other
	// evaluator can ignore a nil Plan just like a nil Board.
	Plan *deployplan.Plan
}

// EvaluatedAction is one evaluator's scored opinion about a single option
// within the decision. Scores follow a fixed band: <=0 illegal/never,
// 5-20 low-priority, 20-50 moderate, 50-80 preferred, >80 decisive.
type EvaluatedAction struct {
	OptionID    string
	CardID      string
	BlueprintID string
	ActionType  ActionType
	Score       float64
	Reasoning   []string
	DisplayText string

	// Veto marks an opinion that must win regardless of score — used by
	// ConcedeEvaluator's fatal-damage check, where no amount of tactical
	// upside elsewhere on the board should outweigh conceding a lost game.
	Veto bool
}

// AddReasoning appends a human-readable reason and adjusts the running
// score by delta. Every evaluator must call this at least once per action
// it produces — an unscored action with no reasoning is a bug.
func (a *EvaluatedAction) AddReasoning(reason string, delta float64) {
	a.Score += delta
	a.Reasoning = append(a.Reasoning, fmt.Sprintf("%s (%+.1f)", reason, delta))
}

// Evaluator is one single-concern judge. Implementations must be pure with
// respect to Context: no network calls, no mutation of the board.
type Evaluator interface {
	Name() string
	CanEvaluate(ctx Context) bool
	Evaluate(ctx Context) []EvaluatedAction
}

// CombinedEvaluator runs a panel of evaluators and picks the highest
// score across all of their opinions.
type CombinedEvaluator struct {
	evaluators []Evaluator
}

// New builds a CombinedEvaluator from the given panel, in the order they
// should be asked — order only matters for tie-break stability.
func New(evaluators ...Evaluator) *CombinedEvaluator {
	return &CombinedEvaluator{evaluators: evaluators}
}

// EvaluateAll asks every applicable evaluator for its opinions without
// collapsing them to a single winner. Callers that need visibility into
// every scored alternative (the safety net's non-selectable substitution,
// admin/debug display) use this; EvaluateDecision is built on top of it.
func (c *CombinedEvaluator) EvaluateAll(ctx Context) []EvaluatedAction {
	var all []EvaluatedAction
	for _, e := range c.evaluators {
		if !e.CanEvaluate(ctx) {
			continue
		}
		all = append(all, e.Evaluate(ctx)...)
	}
	return all
}

// EvaluateDecision asks every applicable evaluator for its opinions and
// returns the single best-scored action. An empty panel or a decision none
// of the evaluators recognize is reported as an error so the caller can
// fall back to the safety net rather than silently returning garbage.
func (c *CombinedEvaluator) EvaluateDecision(ctx Context) (*EvaluatedAction, error) {
	all := c.EvaluateAll(ctx)
	if len(all) == 0 {
		return nil, fmt.Errorf("evaluator: no evaluator produced an action for decision %q", ctx.Request.ID)
	}

	best := BestOf(all)
	return &best, nil
}

// BestOf picks the single opinion that should win out of every evaluator's
// scored alternatives: any Veto opinion beats every non-veto one outright
// (highest-scored veto wins if several fire), and otherwise the
// highest-scored opinion wins. Exported so brain.StaticBrain, which calls
// EvaluateAll directly to also feed the safety net's score lookup, applies
// the identical selection rule EvaluateDecision uses internally.
func BestOf(all []EvaluatedAction) EvaluatedAction {
	best := all[0]
	for _, a := range all[1:] {
		switch {
		case a.Veto && !best.Veto:
			best = a
		case a.Veto == best.Veto && a.Score > best.Score:
			best = a
		}
	}
	return best
}
