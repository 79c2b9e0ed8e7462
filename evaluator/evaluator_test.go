package evaluator

import (
	"testing"

	"github.com/SWCCGArena/rando-python/board"
	"github.com/SWCCGArena/rando-python/card"
	"github.com/SWCCGArena/rando-python/decision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombinedEvaluatorPicksHighestScore(t *testing.T) {
	ctx := Context{
		Board:    board.New(),
		Registry: &card.Registry{},
		Request: decision.Request{
			ID:   "1",
			Type: decision.TypeActionChoice,
			Options: []decision.Option{
				{ID: "pass", Text: "Pass"},
				{ID: "fd", Text: "Force Drain"},
			},
		},
	}

	combined := New(PassEvaluator{}, ActionTextEvaluator{})
	best, err := combined.EvaluateDecision(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fd", best.OptionID)
}

func TestCombinedEvaluatorErrorsWithNoOpinions(t *testing.T) {
	ctx := Context{
		Board: board.New(),
		Request: decision.Request{
			ID:   "1",
			Type: decision.TypeInteger,
			Min:  1,
		},
	}
	combined := New(PassEvaluator{})
	_, err := combined.EvaluateDecision(ctx)
	assert.Error(t, err)
}

func TestBattleEvaluatorPrefersOverwhelmingAdvantage(t *testing.T) {
	b := board.New()
	locIdx := 0
	_, _ = b.Apply(board.Event{
		Tag: board.TagPutCardInPlay, CardID: "c1", BlueprintID: "1_1",
		Owner: board.OwnerMe, Zone: board.ZoneAtLocation, LocationIndex: &locIdx,
	})
	_, _ = b.Apply(board.Event{Tag: board.TagGameState, MyPower: map[int]int{0: 20}, TheirPower: map[int]int{0: 2}})

	ctx := Context{
		Board: b,
		Request: decision.Request{
			Type:    decision.TypeCardActionChoice,
			Options: []decision.Option{{ID: "battle", CardID: "c1", Text: "Initiate battle"}},
		},
	}
	require.True(t, BattleEvaluator{}.CanEvaluate(ctx))
	actions := BattleEvaluator{}.Evaluate(ctx)
	require.Len(t, actions, 1)
	assert.Greater(t, actions[0].Score, 50.0)
}

func TestPassEvaluatorBoostsOnSmallHand(t *testing.T) {
	b := board.New()
	b.MyZones.Hand = []string{"1", "2"}
	ctx := Context{Board: b, Request: decision.Request{Type: decision.TypeActionChoice}}
	actions := PassEvaluator{}.Evaluate(ctx)
	require.Len(t, actions, 1)
	assert.Greater(t, actions[0].Score, 15.0)
}

func TestDeployableGroundPowerPicksHighestValueWithinBudget(t *testing.T) {
	b := board.New()
	b.MyZones.Hand = []string{"cheap", "expensive", "best"}
	reg := card.NewRegistryForTesting(
		&card.Card{BlueprintID: "cheap", Type: card.TypeCharacter, Power: "2", Deploy: "1"},
		&card.Card{BlueprintID: "expensive", Type: card.TypeCharacter, Power: "3", Deploy: "5"},
		&card.Card{BlueprintID: "best", Type: card.TypeCharacter, Power: "4", Deploy: "2"},
	)
	ctx := Context{Board: b, Registry: reg}

	power, chosen := deployableGroundPower(ctx, 3)
	assert.Equal(t, 6, power) // cheap (2 power, cost 1) + best (4 power, cost 2) = 6 within budget 3
	assert.True(t, chosen["cheap"])
	assert.True(t, chosen["best"])
	assert.False(t, chosen["expensive"])
}

func TestConcedeEvaluatorVetoesExplicitPromptWhenHopeless(t *testing.T) {
	b := board.New()
	b.MyZones.ForcePile, b.MyZones.UsedPile, b.MyZones.ReserveDeck = 1, 1, 1
	ctx := Context{
		Board:    b,
		Registry: card.NewRegistryForTesting(),
		Request: decision.Request{
			Type: decision.TypeMultipleChoice,
			Text: "Do you want to concede?",
			Options: []decision.Option{
				{ID: "yes", Text: "Yes, concede"},
				{ID: "no", Text: "No, keep playing"},
			},
		},
	}
	require.True(t, ConcedeEvaluator{}.CanEvaluate(ctx))
	actions := ConcedeEvaluator{}.Evaluate(ctx)
	require.Len(t, actions, 2)

	var yes EvaluatedAction
	for _, a := range actions {
		if a.OptionID == "yes" {
			yes = a
		}
	}
	assert.True(t, yes.Veto)
}

func TestConcedeEvaluatorDoesNotVetoWithBattleOpportunity(t *testing.T) {
	b := board.New()
	b.MyZones.ForcePile, b.MyZones.UsedPile, b.MyZones.ReserveDeck = 1, 1, 1
	locIdx := 0
	_, _ = b.Apply(board.Event{Tag: board.TagGameState, MyPower: map[int]int{locIdx: 3}, TheirPower: map[int]int{locIdx: 2}})

	ctx := Context{
		Board:    b,
		Registry: card.NewRegistryForTesting(),
		Request: decision.Request{
			Type: decision.TypeMultipleChoice,
			Text: "Do you want to concede?",
			Options: []decision.Option{{ID: "yes", Text: "Yes, concede"}, {ID: "no", Text: "No"}},
		},
	}
	require.True(t, b.HasBattleOpportunity())
	for _, a := range (ConcedeEvaluator{}).Evaluate(ctx) {
		assert.False(t, a.Veto)
	}
}

func TestMoveEvaluatorPrefersUncontestedFleeDestination(t *testing.T) {
	b := board.New()
	threatened, safe := 0, 1
	_, _ = b.Apply(board.Event{
		Tag: board.TagPutCardInPlay, CardID: "loc_threatened", BlueprintID: "loc",
		Owner: board.OwnerMe, Zone: board.ZoneAtLocation, LocationIndex: &threatened,
		IsLocationCard: true, LocationTitle: "Hoth: Ice Plains", IsSite: boolPtr(true), IsSpace: boolPtr(false),
	})
	_, _ = b.Apply(board.Event{
		Tag: board.TagPutCardInPlay, CardID: "trooper", BlueprintID: "trooper",
		Owner: board.OwnerMe, Zone: board.ZoneAtLocation, LocationIndex: &threatened,
	})
	_, _ = b.Apply(board.Event{
		Tag: board.TagPutCardInPlay, CardID: "loc_safe", BlueprintID: "loc",
		Owner: board.OwnerMe, Zone: board.ZoneAtLocation, LocationIndex: &safe,
		IsLocationCard: true, LocationTitle: "Hoth: Echo Command Center", IsSite: boolPtr(true), IsSpace: boolPtr(false),
	})
	_, _ = b.Apply(board.Event{Tag: board.TagGameState, MyPower: map[int]int{threatened: 1}, TheirPower: map[int]int{threatened: 5}})

	ctx := Context{
		Board: b,
		Request: decision.Request{
			Type: decision.TypeCardSelection,
			Text: "Choose a location to flee to",
			Options: []decision.Option{
				{ID: "loc_safe", CardID: "loc_safe", Selectable: true},
			},
		},
	}
	require.True(t, MoveEvaluator{}.CanEvaluate(ctx))
	actions := MoveEvaluator{}.Evaluate(ctx)
	require.Len(t, actions, 1)
	assert.Greater(t, actions[0].Score, 30.0)
}

func boolPtr(v bool) *bool { return &v }
