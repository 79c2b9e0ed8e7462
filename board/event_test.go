package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

// S1: a card is placed AT_LOCATION at an index never seen before; the
// location should be synthesized as a named placeholder rather than
// erroring, and later resolve to the real name without losing the cards
// already assigned to it.
func TestPlaceholderLocationThenResolved(t *testing.T) {
	b := New()

	applied, reason := b.Apply(Event{
		Tag:           TagPutCardInPlay,
		CardID:        "100",
		BlueprintID:   "1_1",
		Owner:         OwnerMe,
		Zone:          ZoneAtLocation,
		LocationIndex: intPtr(2),
	})
	require.True(t, applied, reason)

	loc := b.LocationAt(2)
	require.NotNil(t, loc)
	assert.Equal(t, "Location 2", loc.SystemName)
	assert.True(t, loc.IsGround)
	assert.Contains(t, loc.MyCards, "100")

	applied, reason = b.Apply(Event{
		Tag:           TagPutCardInPlay,
		CardID:        "999",
		BlueprintID:   "1_50",
		Owner:         OwnerOpponent,
		Zone:          ZoneAtLocation,
		LocationIndex: intPtr(2),
		IsLocationCard: true,
		LocationTitle:  "Yavin 4: Massassi Throne Room",
		IsSite:         boolPtr(true),
		IsSpace:        boolPtr(false),
	})
	require.True(t, applied, reason)

	loc = b.LocationAt(2)
	require.NotNil(t, loc)
	assert.Equal(t, "Yavin 4", loc.SystemName)
	assert.True(t, loc.IsSite)
	assert.True(t, loc.IsGround)
	assert.Contains(t, loc.MyCards, "100", "cards placed before resolution must survive it")
}

func boolPtr(b bool) *bool { return &b }

// Property 2: a card moving zones must vanish from its old zone and appear
// in exactly one new zone — never both, never neither.
func TestZoneConservationOnMove(t *testing.T) {
	b := New()

	_, _ = b.Apply(Event{
		Tag: TagPutCardInPlay, CardID: "5", BlueprintID: "1_5",
		Owner: OwnerMe, Zone: ZoneHand,
	})
	assert.Equal(t, []string{"5"}, b.MyZones.Hand)

	applied, reason := b.Apply(Event{
		Tag: TagMoveCardInPlay, CardID: "5", BlueprintID: "1_5",
		Owner: OwnerMe, Zone: ZoneAtLocation, LocationIndex: intPtr(0),
	})
	require.True(t, applied, reason)

	assert.NotContains(t, b.MyZones.Hand, "5")
	loc := b.LocationAt(0)
	require.NotNil(t, loc)
	assert.Contains(t, loc.MyCards, "5")
}

// Property 3: attaching a weapon to a character links both directions;
// removing the host detaches the weapon without leaving a dangling pointer.
func TestAttachmentSymmetryAndCleanupOnRemoval(t *testing.T) {
	b := New()
	_, _ = b.Apply(Event{Tag: TagPutCardInPlay, CardID: "host", BlueprintID: "1_1", Owner: OwnerMe, Zone: ZoneAtLocation, LocationIndex: intPtr(0)})
	_, _ = b.Apply(Event{Tag: TagPutCardInPlay, CardID: "weap", BlueprintID: "1_2", Owner: OwnerMe, Zone: ZoneAtLocation, LocationIndex: intPtr(0), AttachedTo: strPtr("host")})

	host := b.Card("host")
	weap := b.Card("weap")
	require.NotNil(t, host)
	require.NotNil(t, weap)
	assert.Equal(t, "host", *weap.AttachedTo)
	assert.Contains(t, host.Attachments, "weap")

	applied, reason := b.Apply(Event{Tag: TagRemoveCardInPlay, CardID: "host"})
	require.True(t, applied, reason)

	assert.Nil(t, b.Card("weap").AttachedTo)
}

// Property 4: a raw negative power reading (a force-icon artifact, not
// real negative power) must never surface through the public power
// accessors.
func TestPowerClampedNonNegative(t *testing.T) {
	b := New()
	_, _ = b.Apply(Event{
		Tag:     TagGameState,
		MyPower: map[int]int{0: -3, 1: 7},
	})

	assert.Equal(t, 0, b.MyPowerAt(0))
	assert.Equal(t, 7, b.MyPowerAt(1))
	assert.Equal(t, 7, b.TotalMyPower())
}

// Property 10: force icons arrive as negative readings at the same
// location used for power; both kinds can coexist on one board without
// power ever reading negative.
func TestNegativePowerVsForceIconDistinction(t *testing.T) {
	b := New()
	_, _ = b.Apply(Event{
		Tag:        TagGameState,
		MyPower:    map[int]int{3: -2},
		TheirPower: map[int]int{3: 5},
	})

	assert.Equal(t, 0, b.MyPowerAt(3))
	assert.Equal(t, 5, b.TheirPowerAt(3))
	assert.Equal(t, -5, b.PowerAdvantage())
}

// S4: a GAME_STATE batch only ever overwrites the fields it carries; it
// must not clobber fields a separate, more specific event already set.
func TestGameStateIsPartialOverwrite(t *testing.T) {
	b := New()
	_, _ = b.Apply(Event{Tag: TagPhase, Phase: "DEPLOY", TurnNumber: intPtr(3)})
	_, _ = b.Apply(Event{Tag: TagGameState, MyPower: map[int]int{0: 4}})

	assert.Equal(t, "DEPLOY", b.CurrentPhase)
	assert.Equal(t, 3, b.TurnNumber)
	assert.Equal(t, 4, b.MyPowerAt(0))
}

// S5: TURN_CHANGE only updates whose turn it is; turn_number is only ever
// advanced by the PHASE event's own "turn #(\d+)" text, never incremented
// as a side effect of a turn changing hands.
func TestTurnChangeDoesNotAdvanceTurnNumber(t *testing.T) {
	b := New()
	_, _ = b.Apply(Event{Tag: TagPhase, Phase: "DEPLOY", TurnNumber: intPtr(3)})
	_, _ = b.Apply(Event{Tag: TagTurnChange, CurrentPlayer: OwnerMe})

	assert.Equal(t, 3, b.TurnNumber)
	assert.Equal(t, OwnerMe, b.CurrentPlayer)

	_, _ = b.Apply(Event{Tag: TagTurnChange, CurrentPlayer: OwnerOpponent})
	assert.Equal(t, 3, b.TurnNumber)
	assert.Equal(t, OwnerOpponent, b.CurrentPlayer)
}

func TestUnknownCardIDOnRemoveDoesNotApplyReversibly(t *testing.T) {
	b := New()
	applied, reason := b.Apply(Event{Tag: TagRemoveCardInPlay, CardID: "ghost"})
	assert.True(t, applied)
	assert.NotEmpty(t, reason)
}

func TestGameEndByMessageFallback(t *testing.T) {
	b := New()
	b.MyPlayerName = "PlayerOne"
	applied, reason := b.Apply(Event{Tag: TagChat, MessageText: "PlayerOne is the winner due to: opponent conceded"})
	assert.True(t, applied)
	assert.Equal(t, "game-end-by-message", reason)
	assert.True(t, b.GameOver)
	assert.True(t, b.Won)
}

func TestGameEndByMessageFallbackLoss(t *testing.T) {
	b := New()
	b.MyPlayerName = "PlayerOne"
	applied, _ := b.Apply(Event{Tag: TagChat, MessageText: "PlayerOne lost due to: deck depleted"})
	assert.True(t, applied)
	assert.True(t, b.GameOver)
	assert.False(t, b.Won)
}
