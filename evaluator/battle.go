package evaluator

import (
	"fmt"

	"github.com/SWCCGArena/rando-python/decision"
)

// Rank deltas, named the way the reference scoring did: a handful of
// coarse bands rather than a continuous function.
const (
	deltaVeryGood = 60.0
	deltaGood     = 25.0
	deltaBad      = -25.0
	deltaVeryBad  = -200.0

	abilityTestHigh = 4
	abilityTestLow  = 3

	defaultFavorableThreshold = 4
	defaultDangerThreshold    = -4
)

// BattleEvaluator scores "Initiate battle" actions by the power and
// ability balance at the location the battle would happen at.
// FavorableThreshold and DangerThreshold are the power-differential bands
// (battle_favorable_threshold / battle_danger_threshold) that decide
// whether a close fight still looks winnable with an ability test.
type BattleEvaluator struct {
	FavorableThreshold int
	DangerThreshold    int
}

// NewBattleEvaluator builds a BattleEvaluator from configured thresholds,
// falling back to the reference bands when given zero values.
func NewBattleEvaluator(favorableThreshold, dangerThreshold int) BattleEvaluator {
	if favorableThreshold == 0 {
		favorableThreshold = defaultFavorableThreshold
	}
	if dangerThreshold == 0 {
		dangerThreshold = defaultDangerThreshold
	}
	return BattleEvaluator{FavorableThreshold: favorableThreshold, DangerThreshold: dangerThreshold}
}

func (BattleEvaluator) Name() string { return "Battle" }

func (BattleEvaluator) CanEvaluate(ctx Context) bool {
	if ctx.Request.Type != decision.TypeCardActionChoice && ctx.Request.Type != decision.TypeActionChoice {
		return false
	}
	for _, o := range ctx.Request.Options {
		if o.Text == "Initiate battle" {
			return true
		}
	}
	return false
}

func (e BattleEvaluator) Evaluate(ctx Context) []EvaluatedAction {
	var actions []EvaluatedAction
	b := ctx.Board

	for _, o := range ctx.Request.Options {
		if o.Text != "Initiate battle" {
			continue
		}
		action := EvaluatedAction{OptionID: o.ID, CardID: o.CardID, ActionType: ActionBattle, DisplayText: o.Text}

		if b == nil {
			action.AddReasoning("no board state available, stay cautious", deltaBad)
			actions = append(actions, action)
			continue
		}

		locIdx := 0
		if o.CardID != "" {
			if cp := b.Card(o.CardID); cp != nil && cp.LocationIndex != nil {
				locIdx = *cp.LocationIndex
			}
		}
		e.rankBattleAtLocation(&action, ctx, locIdx)
		actions = append(actions, action)
	}
	return actions
}

func (e BattleEvaluator) rankBattleAtLocation(action *EvaluatedAction, ctx Context, locIdx int) {
	b := ctx.Board
	myPower := b.MyPowerAt(locIdx)
	theirPower := b.TheirPowerAt(locIdx)
	powerDiff := myPower - theirPower

	myAbility := 0
	myCardCount := 0
	if loc := b.LocationAt(locIdx); loc != nil {
		myCardCount = len(loc.MyCards)
		for _, cardID := range loc.MyCards {
			if cp := b.Card(cardID); cp != nil {
				myAbility += cp.Ability
			}
		}
	}
	abilityTest := myAbility >= abilityTestHigh || myCardCount >= abilityTestLow

	if b.TheirZones.ReserveDeck <= 0 && b.MyZones.ReserveDeck <= 0 {
		action.AddReasoning("no reserve cards left for destiny draws", deltaVeryBad)
		return
	}

	switch {
	case powerDiff >= 6:
		action.AddReasoning(fmt.Sprintf("overwhelming advantage (+%d), crush them", powerDiff), deltaVeryGood)
	case powerDiff >= e.DangerThreshold && abilityTest:
		action.AddReasoning(fmt.Sprintf("power diff %d with ability test passed", powerDiff), deltaGood)
	case powerDiff > e.FavorableThreshold || (abilityTest && powerDiff >= 0):
		action.AddReasoning(fmt.Sprintf("power diff %d, can likely win", powerDiff), deltaGood)
	case powerDiff > 2:
		action.AddReasoning(fmt.Sprintf("power diff %d, risky without ability but trying", powerDiff), deltaGood/2)
	default:
		action.AddReasoning(fmt.Sprintf("power diff %d, avoid battle", powerDiff), deltaBad)
	}
}
