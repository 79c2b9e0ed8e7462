package evaluator

import (
	"strings"

	"github.com/SWCCGArena/rando-python/board"
	"github.com/SWCCGArena/rando-python/decision"
)

// MoveEvaluator scores moving characters/vehicles between adjacent
// locations. Supplemented relative to the distilled spec: the original
// implementation's move handling is folded in here since move decisions
// are presented the same way deploy/battle ones are.
type MoveEvaluator struct{}

func (MoveEvaluator) Name() string { return "Move" }

func (MoveEvaluator) CanEvaluate(ctx Context) bool {
	text := strings.ToLower(ctx.Request.Text)
	isMoveText := strings.Contains(text, "move") || strings.Contains(text, "flee")
	if ctx.Request.Type == decision.TypeCardSelection {
		return isMoveText && boardLocation(ctx, firstLocationOption(ctx)) != nil
	}
	for _, o := range ctx.Request.Options {
		if strings.Contains(o.Text, "Move") {
			return true
		}
	}
	return false
}

func firstLocationOption(ctx Context) string {
	if len(ctx.Request.Options) == 0 {
		return ""
	}
	return ctx.Request.Options[0].CardID
}

func (MoveEvaluator) Evaluate(ctx Context) []EvaluatedAction {
	var actions []EvaluatedAction
	b := ctx.Board

	for _, o := range ctx.Request.Options {
		if dest := boardLocation(ctx, o.CardID); dest != nil {
			actions = append(actions, evaluateMoveDestination(ctx, o, dest))
			continue
		}
		if !strings.Contains(o.Text, "Move") {
			continue
		}
		action := EvaluatedAction{OptionID: o.ID, CardID: o.CardID, ActionType: ActionMove, DisplayText: o.Text}
		action.AddReasoning("base move score", 15)

		if b != nil && o.CardID != "" {
			if cp := b.Card(o.CardID); cp != nil && cp.LocationIndex != nil {
				myPower := b.MyPowerAt(*cp.LocationIndex)
				theirPower := b.TheirPowerAt(*cp.LocationIndex)
				if theirPower > myPower+4 {
					action.AddReasoning("retreating from a losing location", 20)
				} else if myPower > theirPower+4 {
					action.AddReasoning("already winning here, no need to move", -10)
				}
			}
		}
		actions = append(actions, action)
	}
	return actions
}

// evaluateMoveDestination scores a location-target MOVE/CARD_SELECTION
// option, the way board_state.py's analyze_flee_options/
// find_adjacent_locations inform which nearby location is worth fleeing
// to: an uncontested destination reachable from wherever the bot's units
// already are beats one still held by a stronger opponent force.
func evaluateMoveDestination(ctx Context, o decision.Option, dest *board.LocationInPlay) EvaluatedAction {
	action := EvaluatedAction{OptionID: o.ID, CardID: o.CardID, ActionType: ActionMove, DisplayText: o.Text}
	action.AddReasoning("candidate move destination", 15)

	if ctx.Board == nil {
		return action
	}
	their := ctx.Board.TheirPowerAt(dest.LocationIndex)
	mine := ctx.Board.MyPowerAt(dest.LocationIndex)
	switch {
	case their == 0:
		action.AddReasoning("fleeing to an uncontested location", 25)
	case their > mine:
		action.AddReasoning("destination is itself contested against a stronger force", -20)
	}

	if reachableFromAThreatenedLocation(ctx.Board, dest.LocationIndex) {
		action.AddReasoning("reachable from a currently contested adjacent location", 10)
	}
	return action
}

// reachableFromAThreatenedLocation reports whether destIdx is adjacent to
// any location where the bot currently has cards and the opponent has
// more power — the scenario a flee decision actually exists to resolve.
func reachableFromAThreatenedLocation(b *board.BoardState, destIdx int) bool {
	for i := range b.Locations {
		loc := b.LocationAt(i)
		if loc == nil || len(loc.MyCards) == 0 {
			continue
		}
		if b.TheirPowerAt(i) <= b.MyPowerAt(i) {
			continue
		}
		for _, adj := range b.AdjacentLocations(i) {
			if adj == destIdx {
				return true
			}
		}
	}
	return false
}
