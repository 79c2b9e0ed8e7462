package deployplan

import (
	"testing"

	"github.com/SWCCGArena/rando-python/board"
	"github.com/SWCCGArena/rando-python/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registryWith(cards ...*card.Card) *card.Registry {
	return card.NewRegistryForTesting(cards...)
}

func TestBuildOrdersLocationsShipsCharacters(t *testing.T) {
	b := board.New()
	reg := registryWith(
		&card.Card{BlueprintID: "loc1", Type: card.TypeLocation},
		&card.Card{BlueprintID: "ship1", Type: card.TypeStarship},
		&card.Card{BlueprintID: "char1", Type: card.TypeCharacter},
	)

	plan := Build(b, reg, []string{"char1", "ship1", "loc1"}, 0)
	require.NotNil(t, plan)
	require.Len(t, plan.instructions, 3)
	assert.Equal(t, TypeLocation, plan.instructions[0].Type)
	assert.Equal(t, TypeShipOrVehicle, plan.instructions[1].Type)
	assert.Equal(t, TypeCharacter, plan.instructions[2].Type)
}

func TestBuildHoldsBackBelowThreshold(t *testing.T) {
	b := board.New()
	reg := registryWith(&card.Card{BlueprintID: "char1", Type: card.TypeCharacter})
	plan := Build(b, reg, []string{"char1"}, 100)
	assert.Empty(t, plan.instructions)
}

func TestResolveTargetsOnlyMatchesSiteForRestrictedCharacter(t *testing.T) {
	b := board.New()
	coruscantSites := []int{0, 1}
	for _, idx := range coruscantSites {
		i := idx
		_, _ = b.Apply(board.Event{
			Tag: board.TagPutCardInPlay, CardID: "loc_coruscant_" + string(rune('a'+i)), BlueprintID: "loc",
			Owner: board.OwnerMe, Zone: board.ZoneAtLocation, LocationIndex: &i,
			IsLocationCard: true, LocationTitle: "Coruscant: Room", IsSite: boolPtr(true), IsSpace: boolPtr(false),
		})
	}
	tatooine := 2
	_, _ = b.Apply(board.Event{
		Tag: board.TagPutCardInPlay, CardID: "loc_tatooine", BlueprintID: "loc",
		Owner: board.OwnerMe, Zone: board.ZoneAtLocation, LocationIndex: &tatooine,
		IsLocationCard: true, LocationTitle: "Tatooine: Mos Eisley", IsSite: boolPtr(true), IsSpace: boolPtr(false),
	})

	reg := registryWith(&card.Card{BlueprintID: "han", Type: card.TypeCharacter, GameText: "Deploys only on Tatooine."})
	plan := Build(b, reg, []string{"han"}, 0)

	require.Len(t, plan.instructions, 1)
	instr := plan.instructions[0]
	require.NotNil(t, instr.TargetLocation)
	assert.Equal(t, tatooine, *instr.TargetLocation)
	assert.Equal(t, "Tatooine", plan.RestrictionFor("han"))
}

func TestResolveTargetsSkipsSpaceLocationForRestrictedCharacter(t *testing.T) {
	b := board.New()
	idx := 0
	_, _ = b.Apply(board.Event{
		Tag: board.TagPutCardInPlay, CardID: "loc_tatooine_space", BlueprintID: "loc",
		Owner: board.OwnerMe, Zone: board.ZoneAtLocation, LocationIndex: &idx,
		IsLocationCard: true, LocationTitle: "Tatooine: Tatooine System", IsSite: boolPtr(false), IsSpace: boolPtr(true),
	})

	reg := registryWith(&card.Card{BlueprintID: "han", Type: card.TypeCharacter, GameText: "Deploys only on Tatooine."})
	plan := Build(b, reg, []string{"han"}, 0)

	require.Len(t, plan.instructions, 1)
	assert.Nil(t, plan.instructions[0].TargetLocation)
}

func TestResolveTargetsOnlyMatchesSpaceForLoneStarship(t *testing.T) {
	b := board.New()
	ground := 0
	_, _ = b.Apply(board.Event{
		Tag: board.TagPutCardInPlay, CardID: "loc_site", BlueprintID: "loc",
		Owner: board.OwnerMe, Zone: board.ZoneAtLocation, LocationIndex: &ground,
		IsLocationCard: true, LocationTitle: "Yavin 4: Massassi Throne Room", IsSite: boolPtr(true), IsSpace: boolPtr(false),
	})
	space := 1
	_, _ = b.Apply(board.Event{
		Tag: board.TagPutCardInPlay, CardID: "loc_space", BlueprintID: "loc",
		Owner: board.OwnerMe, Zone: board.ZoneAtLocation, LocationIndex: &space,
		IsLocationCard: true, LocationTitle: "Yavin 4: Yavin 4 System", IsSite: boolPtr(false), IsSpace: boolPtr(true),
	})

	reg := registryWith(&card.Card{BlueprintID: "xwing", Type: card.TypeStarship, GameText: "Deploys only on Yavin 4."})
	plan := Build(b, reg, []string{"xwing"}, 0)

	require.Len(t, plan.instructions, 1)
	instr := plan.instructions[0]
	require.NotNil(t, instr.TargetLocation)
	assert.Equal(t, space, *instr.TargetLocation)
}

func TestResolveReinforcementTargetsWeakestFriendlySiteBelowThreshold(t *testing.T) {
	b := board.New()
	weak, strong := 0, 1
	_, _ = b.Apply(board.Event{
		Tag: board.TagPutCardInPlay, CardID: "loc_weak", BlueprintID: "loc",
		Owner: board.OwnerMe, Zone: board.ZoneAtLocation, LocationIndex: &weak,
		IsLocationCard: true, LocationTitle: "Hoth: Ice Plains", IsSite: boolPtr(true), IsSpace: boolPtr(false),
	})
	_, _ = b.Apply(board.Event{
		Tag: board.TagPutCardInPlay, CardID: "c1", BlueprintID: "trooper",
		Owner: board.OwnerMe, Zone: board.ZoneAtLocation, LocationIndex: &weak,
	})
	_, _ = b.Apply(board.Event{
		Tag: board.TagPutCardInPlay, CardID: "loc_strong", BlueprintID: "loc",
		Owner: board.OwnerMe, Zone: board.ZoneAtLocation, LocationIndex: &strong,
		IsLocationCard: true, LocationTitle: "Hoth: Echo Command Center", IsSite: boolPtr(true), IsSpace: boolPtr(false),
	})
	_, _ = b.Apply(board.Event{
		Tag: board.TagPutCardInPlay, CardID: "c2", BlueprintID: "commander",
		Owner: board.OwnerMe, Zone: board.ZoneAtLocation, LocationIndex: &strong,
	})
	_, _ = b.Apply(board.Event{Tag: board.TagGameState, MyPower: map[int]int{weak: 1, strong: 10}})

	reg := registryWith(&card.Card{BlueprintID: "reinforcement", Type: card.TypeCharacter})
	plan := Build(b, reg, []string{"reinforcement"}, 0)

	require.Len(t, plan.instructions, 1)
	instr := plan.instructions[0]
	require.NotNil(t, instr.TargetLocation)
	assert.Equal(t, weak, *instr.TargetLocation)
}

func boolPtr(v bool) *bool { return &v }

func TestOnCardEnteredPlayBindsShipForPilot(t *testing.T) {
	b := board.New()
	reg := registryWith(
		&card.Card{BlueprintID: "ship1", Type: card.TypeStarship},
		&card.Card{BlueprintID: "pilot1", Type: card.TypeCharacter, Icons: []string{"Pilot"}},
	)
	plan := Build(b, reg, []string{"pilot1", "ship1"}, 0)

	plan.OnCardEnteredPlay("ship1", "card_42")

	var pilotInstr *Instruction
	for _, instr := range plan.instructions {
		if instr.BlueprintID == "pilot1" {
			pilotInstr = instr
		}
	}
	require.NotNil(t, pilotInstr)
	assert.Equal(t, "card_42", pilotInstr.AboardShipCardID())
}
