package decode

import (
	"testing"

	"github.com/SWCCGArena/rando-python/board"
	"github.com/SWCCGArena/rando-python/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeParticipantAndPutCard(t *testing.T) {
	reg := card.NewRegistryForTesting()
	d := New(reg, "rando_cal")

	xmlBody := `<gameEvents>
		<ge type="P" participantId="rando_cal" allParticipantIds="rando_cal,opponent_joe" side="Dark"/>
		<ge type="PCIP" cardId="101" blueprintId="1_1" zone="AT_LOCATION" zoneOwnerId="rando_cal" locationIndex="0"/>
	</gameEvents>`

	events, pending, err := d.Decode(xmlBody)
	require.NoError(t, err)
	require.Nil(t, pending)
	require.Len(t, events, 2)

	assert.Equal(t, board.TagParticipant, events[0].Tag)
	assert.Equal(t, "opponent_joe", events[0].OpponentName)
	assert.Equal(t, "dark", events[0].MySide)

	assert.Equal(t, board.TagPutCardInPlay, events[1].Tag)
	assert.Equal(t, board.OwnerMe, events[1].Owner)
	assert.Equal(t, board.ZoneAtLocation, events[1].Zone)
	require.NotNil(t, events[1].LocationIndex)
	assert.Equal(t, 0, *events[1].LocationIndex)
}

func TestDecodeLocationPlacementUsesRegistryTitle(t *testing.T) {
	reg := card.NewRegistryForTesting(&card.Card{
		BlueprintID: "3_100",
		Title:       "Yavin 4: Massassi Throne Room",
		Type:        card.TypeLocation,
		SubType:     "Site",
	})
	d := New(reg, "rando_cal")

	xmlBody := `<gameEvents>
		<ge type="PCIP" cardId="5" blueprintId="3_100" zone="LOCATIONS" locationIndex="2"/>
	</gameEvents>`

	events, _, err := d.Decode(xmlBody)
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.True(t, e.IsLocationCard)
	assert.Equal(t, "Yavin 4: Massassi Throne Room", e.LocationTitle)
	require.NotNil(t, e.IsSite)
	assert.True(t, *e.IsSite)
}

func TestDecodeRemoveCardSplitsOtherCardIDs(t *testing.T) {
	reg := card.NewRegistryForTesting()
	d := New(reg, "rando_cal")

	xmlBody := `<gameEvents><ge type="RCFP" cardId="1" otherCardIds="2, 3"/></gameEvents>`
	events, _, err := d.Decode(xmlBody)
	require.NoError(t, err)
	require.Len(t, events, 3)
	for _, e := range events {
		assert.Equal(t, board.TagRemoveCardInPlay, e.Tag)
	}
}

func TestDecodeGameStateBuildsPowerMapsForMySide(t *testing.T) {
	reg := card.NewRegistryForTesting()
	d := New(reg, "rando_cal")
	d.mySide = "dark"

	xmlBody := `<gameEvents>
		<ge type="GS" darkForceGeneration="4" lightForceGeneration="3">
			<playerZones name="rando_cal" FORCE_PILE="4" HAND="6"/>
			<playerZones name="opponent_joe" FORCE_PILE="5" HAND="7"/>
			<darkPowerAtLocations _0="8" _1="0"/>
			<lightPowerAtLocations _0="3" _1="5"/>
		</ge>
	</gameEvents>`

	events, _, err := d.Decode(xmlBody)
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	require.NotNil(t, e.MyPileSizes)
	assert.Equal(t, 4, e.MyPileSizes.ForcePile)
	require.NotNil(t, e.TheirPileSizes)
	assert.Equal(t, 5, e.TheirPileSizes.ForcePile)
	assert.Equal(t, 8, e.MyPower[0])
	assert.Equal(t, 5, e.TheirPower[1])
}

func TestDecodeDecisionZipsCardIDsWithSelectable(t *testing.T) {
	reg := card.NewRegistryForTesting()
	d := New(reg, "rando_cal")

	xmlBody := `<gameEvents>
		<ge type="D" decisionType="CARD_SELECTION" id="77" text="Choose a card" noPass="false">
			<parameter name="cardId" value="101"/>
			<parameter name="cardId" value="102"/>
			<parameter name="selectable" value="true"/>
			<parameter name="selectable" value="false"/>
		</ge>
	</gameEvents>`

	_, pending, err := d.Decode(xmlBody)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, "77", pending.ID)
	require.Len(t, pending.Options, 2)
	assert.True(t, pending.Options[0].Selectable)
	assert.False(t, pending.Options[1].Selectable)
}

func TestDecodePhaseChangeExtractsTurnNumber(t *testing.T) {
	reg := card.NewRegistryForTesting()
	d := New(reg, "rando_cal")

	xmlBody := `<gameEvents><ge type="GPC" phase="Deploy (turn #3)"/></gameEvents>`
	events, _, err := d.Decode(xmlBody)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].TurnNumber)
	assert.Equal(t, 3, *events[0].TurnNumber)
}
