// Package board holds the canonical in-memory game state (C4) and the pure
// fold that projects the server's event stream onto it (C3). The fold lives
// in event.go; this file defines the data the fold mutates and the
// read-only queries derived from it.
package board

import (
	"strconv"
	"strings"
)

// Owner distinguishes the bot's own cards from the opponent's.
type Owner string

const (
	OwnerMe       Owner = "me"
	OwnerOpponent Owner = "opponent"
	OwnerUnknown  Owner = "unknown"
)

// Zone is the coarse bucket a CardInPlay currently occupies.
type Zone string

const (
	ZoneHand        Zone = "HAND"
	ZoneAtLocation  Zone = "AT_LOCATION"
	ZoneForcePile   Zone = "FORCE_PILE"
	ZoneUsedPile    Zone = "USED_PILE"
	ZoneLostPile    Zone = "LOST_PILE"
	ZoneReserveDeck Zone = "RESERVE_DECK"
	ZoneOutOfPlay   Zone = "OUT_OF_PLAY"
	ZoneUnknown     Zone = "UNKNOWN"
)

// CardInPlay is the runtime instance of a card the server has shown the
// bot. It carries a denormalized copy of a handful of metadata fields for
// fast read and logging without a Card Metadata Registry lookup on every
// access.
type CardInPlay struct {
	CardID        string
	BlueprintID   string
	Owner         Owner
	Zone          Zone
	LocationIndex *int
	AttachedTo    *string
	Attachments   []string

	Title   string
	Type    string
	Power   int
	Ability int
	Deploy  int
}

// LocationInPlay is a location card in play, additionally carrying the
// server-assigned slot index and the two ordered side lists.
type LocationInPlay struct {
	CardID        string
	BlueprintID   string
	Owner         Owner
	LocationIndex int
	SystemName    string
	SiteName      string
	IsSite        bool
	IsSpace       bool
	IsGround      bool

	MyCards    []string // card_ids, in arrival order
	TheirCards []string

	// placeholder is true until the authoritative PUT_CARD_IN_PLAY for this
	// index has been applied; see the placeholder rule in 3.3.
	placeholder bool
}

// ZoneState is one player's non-in-play zones.
type ZoneState struct {
	Hand         []string // card_ids, in arrival order
	ForcePile    int
	UsedPile     int
	LostPile     int
	ReserveDeck  int
	OutOfPlay    int
}

// DeploymentPlanNotifiable is implemented by an in-flight deployment plan so
// the fold can bind a ship's now-known card_id onto a pending instruction
// without the board package importing the deploy planner.
type DeploymentPlanNotifiable interface {
	OnCardEnteredPlay(blueprintID, cardID string)
}

// BoardState is the canonical projection of the event stream.
type BoardState struct {
	Locations []*LocationInPlay

	MyZones    ZoneState
	TheirZones ZoneState

	myPower    map[int]int
	theirPower map[int]int

	CurrentPhase  string
	TurnNumber    int
	CurrentPlayer Owner

	MyPlayerName string
	OpponentName string
	MySide       string

	InBattle           bool
	BattleLocationIndex *int

	// GameOver and Won are set once a GAME_END event or a win/loss chat
	// message is observed; there is no dedicated wire signal for either,
	// so both detection paths land here.
	GameOver bool
	Won      bool

	cardsByID map[string]*CardInPlay

	plan DeploymentPlanNotifiable
}

// New returns an empty BoardState ready to receive events.
func New() *BoardState {
	return &BoardState{
		Locations:     nil,
		myPower:       make(map[int]int),
		theirPower:    make(map[int]int),
		CurrentPlayer: OwnerUnknown,
		cardsByID:     make(map[string]*CardInPlay),
	}
}

// SetDeploymentPlan installs the in-flight plan that should be notified
// when one of the bot's cards enters play. A nil plan detaches any
// previously installed one (e.g. at the end of a deploy phase).
func (b *BoardState) SetDeploymentPlan(plan DeploymentPlanNotifiable) {
	b.plan = plan
}

// Card looks up a CardInPlay by server-assigned id.
func (b *BoardState) Card(cardID string) *CardInPlay {
	return b.cardsByID[cardID]
}

// ensureLocation grows Locations up to index i (inclusive), inserting
// placeholders for any gap, and returns the LocationInPlay at i. This is
// the placeholder rule from 3.3: a reference to an index that doesn't yet
// exist creates an "unknown location" rather than erroring.
func (b *BoardState) ensureLocation(i int) *LocationInPlay {
	for len(b.Locations) <= i {
		idx := len(b.Locations)
		b.Locations = append(b.Locations, &LocationInPlay{
			LocationIndex: idx,
			SystemName:    placeholderName(idx),
			IsGround:      true,
			placeholder:   true,
		})
	}
	return b.Locations[i]
}

func placeholderName(i int) string {
	return "Location " + strconv.Itoa(i)
}

// MyPowerAt returns the authoritative power at location i, clamped to 0:
// negative readings encode force icons, not power (3.4).
func (b *BoardState) MyPowerAt(i int) int {
	return clampNonNegative(b.myPower[i])
}

// TheirPowerAt mirrors MyPowerAt for the opponent.
func (b *BoardState) TheirPowerAt(i int) int {
	return clampNonNegative(b.theirPower[i])
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// TotalMyPower sums only the positive per-location contributions.
func (b *BoardState) TotalMyPower() int {
	return sumPositive(b.myPower)
}

// TotalTheirPower mirrors TotalMyPower for the opponent.
func (b *BoardState) TotalTheirPower() int {
	return sumPositive(b.theirPower)
}

func sumPositive(m map[int]int) int {
	total := 0
	for _, v := range m {
		if v > 0 {
			total += v
		}
	}
	return total
}

// PowerAdvantage is my total power minus the opponent's.
func (b *BoardState) PowerAdvantage() int {
	return b.TotalMyPower() - b.TotalTheirPower()
}

// ForceAdvantage is my force pile size minus the opponent's.
func (b *BoardState) ForceAdvantage() int {
	return b.MyZones.ForcePile - b.TheirZones.ForcePile
}

// MyLifeForce is the force still behind the bot if the game continued:
// reserve deck, used pile, and force pile combined, mirroring
// board_state.py's total_reserve_force.
func (b *BoardState) MyLifeForce() int {
	return b.MyZones.ReserveDeck + b.MyZones.UsedPile + b.MyZones.ForcePile
}

// TheirLifeForce mirrors MyLifeForce for the opponent
// (board_state.py's their_total_life_force).
func (b *BoardState) TheirLifeForce() int {
	return b.TheirZones.ReserveDeck + b.TheirZones.UsedPile + b.TheirZones.ForcePile
}

// HasBattleOpportunity reports whether any location currently has both my
// power and the opponent's power present — a contested location where a
// battle could still swing the game, per board_state.py's should_concede.
func (b *BoardState) HasBattleOpportunity() bool {
	for i := range b.Locations {
		if b.MyPowerAt(i) > 0 && b.TheirPowerAt(i) > 0 {
			return true
		}
	}
	return false
}

// AdjacentLocations mirrors board_state.py's find_adjacent_locations: two
// ground locations are adjacent only if they sit next to each other in
// arrival order AND share a system — a location is never adjacent across a
// system boundary even when the indices are consecutive.
func (b *BoardState) AdjacentLocations(i int) []int {
	loc := b.LocationAt(i)
	if loc == nil {
		return nil
	}
	var adjacent []int
	if left := b.LocationAt(i - 1); left != nil && strings.EqualFold(left.SystemName, loc.SystemName) {
		adjacent = append(adjacent, i-1)
	}
	if right := b.LocationAt(i + 1); right != nil && strings.EqualFold(right.SystemName, loc.SystemName) {
		adjacent = append(adjacent, i+1)
	}
	return adjacent
}

// IsMyTurn reports whether the current player is the bot.
func (b *BoardState) IsMyTurn() bool {
	return b.CurrentPlayer == OwnerMe
}

// HandSize returns the bot's own hand size.
func (b *BoardState) HandSize() int {
	return len(b.MyZones.Hand)
}

// LocationAt is a bounds-checked accessor; it returns nil for an index that
// has never been referenced.
func (b *BoardState) LocationAt(i int) *LocationInPlay {
	if i < 0 || i >= len(b.Locations) {
		return nil
	}
	return b.Locations[i]
}

// LocationByCardID resolves a location's own card_id back to its
// LocationInPlay, the way a CARD_SELECTION decision offering location
// targets identifies each choice by the location card's card_id rather
// than its index.
func (b *BoardState) LocationByCardID(cardID string) *LocationInPlay {
	if cardID == "" {
		return nil
	}
	for _, loc := range b.Locations {
		if loc.CardID == cardID {
			return loc
		}
	}
	return nil
}
