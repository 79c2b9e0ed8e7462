package board

import "strings"

// Tag is the canonical event-type name the event processor recognizes.
// These are translated from GEMP's short wire codes by the transport
// package; the fold below only ever sees canonical tags.
type Tag string

const (
	TagPutCardInPlay     Tag = "PUT_CARD_IN_PLAY"
	TagRemoveCardInPlay  Tag = "REMOVE_CARD_IN_PLAY"
	TagMoveCardInPlay    Tag = "MOVE_CARD_IN_PLAY"
	TagGameState         Tag = "GAME_STATE"
	TagPhase             Tag = "PHASE"
	TagTurnChange        Tag = "TURN_CHANGE"
	TagGameProcessChange Tag = "GAME_PROCESS_CHANGE"
	TagDecision          Tag = "DECISION"
	TagChat              Tag = "CHAT"
	TagGameEnd           Tag = "GAME_END"
	TagParticipant       Tag = "PARTICIPANT"
	TagUnknown           Tag = "UNKNOWN"
)

// PileSizes is one player's non-hand, non-in-play pile counts.
type PileSizes struct {
	ForcePile   int
	UsedPile    int
	LostPile    int
	ReserveDeck int
	OutOfPlay   int
}

// Event is the fold's single input unit. Every field past Tag is optional;
// a nil/zero value means "this event did not carry that attribute", not
// "set it to zero" — GAME_STATE snapshots in particular only ever carry
// what the server chose to include in a given batch.
type Event struct {
	Tag Tag

	// Card zone/attachment fields (PUT/REMOVE/MOVE_CARD_IN_PLAY).
	CardID        string
	BlueprintID   string
	Owner         Owner
	Zone          Zone
	LocationIndex *int
	AttachedTo    *string // non-nil empty string means "detach"

	// Location-specific fields, set when the card being placed is itself a
	// location (full title, e.g. "Yavin 4: Massassi Throne Room").
	IsLocationCard bool
	LocationTitle  string
	IsSite         *bool
	IsSpace        *bool

	// GAME_STATE fields.
	MyPower            map[int]int
	TheirPower         map[int]int
	MyPileSizes        *PileSizes
	TheirPileSizes     *PileSizes
	MyHand             []string

	// PHASE / TURN_CHANGE fields.
	Phase         string
	TurnNumber    *int
	CurrentPlayer Owner

	// PARTICIPANT fields.
	MyPlayerName string
	OpponentName string
	MySide       string

	// Battle-state tracking (SB/SD/... in the source protocol).
	BattleStarting bool
	BattleEnding   bool

	// CHAT / message text, used for the game-end text fallback.
	MessageText string
}

// Apply folds one event into b, returning whether it was applied and, if
// not, a human-readable reason. It never panics and never partially
// mutates b — either the whole event lands or none of it does.
func (b *BoardState) Apply(e Event) (applied bool, reason string) {
	switch e.Tag {
	case TagPutCardInPlay:
		return b.applyPutCardInPlay(e)
	case TagRemoveCardInPlay:
		return b.applyRemoveCardInPlay(e)
	case TagMoveCardInPlay:
		return b.applyMoveCardInPlay(e)
	case TagGameState:
		return b.applyGameState(e)
	case TagPhase:
		return b.applyPhase(e)
	case TagTurnChange:
		return b.applyTurnChange(e)
	case TagParticipant:
		b.MyPlayerName = e.MyPlayerName
		b.OpponentName = e.OpponentName
		b.MySide = e.MySide
		return true, ""
	case TagGameProcessChange:
		return true, "" // informational only
	case TagChat:
		if isEnd, won := gameEndFromMessage(e.MessageText, b.MyPlayerName); isEnd {
			b.GameOver = true
			b.Won = won
			return true, "game-end-by-message"
		}
		return true, ""
	case TagGameEnd:
		b.GameOver = true
		return true, ""
	case TagDecision:
		return true, "" // forwarded to the decision pipeline, never mutates state
	default:
		return false, "unknown event tag"
	}
}

// gameEndFromMessage resolves the Open Question about inferring the game's
// outcome without a dedicated terminal wire event: these two substrings are
// the only signal the reference implementation ever had, so they're the
// only signal here too. "X is the winner due to:" names the winner; a
// message is a win for us only when it names our own player name.
func gameEndFromMessage(text, myPlayerName string) (isEnd, won bool) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "is the winner due to:"):
		return true, myPlayerName != "" && strings.Contains(lower, strings.ToLower(myPlayerName))
	case strings.Contains(lower, "lost due to:"):
		return true, myPlayerName != "" && !strings.Contains(lower, strings.ToLower(myPlayerName))
	default:
		return false, false
	}
}

func (b *BoardState) applyPutCardInPlay(e Event) (bool, string) {
	if e.CardID == "" {
		return false, "missing card_id"
	}

	if e.IsLocationCard {
		if e.LocationIndex == nil {
			return false, "location card without location_index"
		}
		b.putLocation(e)
		return true, ""
	}

	cp := b.cardsByID[e.CardID]
	if cp == nil {
		cp = &CardInPlay{CardID: e.CardID}
		b.cardsByID[e.CardID] = cp
	} else {
		// Zone changes are moves, not duplications: remove from wherever it
		// was before re-placing it.
		b.detachFromParent(cp)
		b.removeFromCurrentZone(cp)
	}

	cp.BlueprintID = e.BlueprintID
	cp.Owner = e.Owner
	cp.Zone = e.Zone

	switch e.Zone {
	case ZoneAtLocation:
		if e.LocationIndex == nil {
			return false, "AT_LOCATION card without location_index"
		}
		cp.LocationIndex = e.LocationIndex
		loc := b.ensureLocation(*e.LocationIndex)
		b.appendToLocationSide(loc, e.Owner, cp.CardID)
		if b.plan != nil && e.Owner == OwnerMe {
			b.plan.OnCardEnteredPlay(e.BlueprintID, e.CardID)
		}
	case ZoneHand:
		cp.LocationIndex = nil
		b.appendToHand(e.Owner, cp.CardID)
	default:
		cp.LocationIndex = nil
		b.bumpPileCount(e.Owner, e.Zone, +1)
	}

	if e.AttachedTo != nil && *e.AttachedTo != "" {
		b.attach(cp, *e.AttachedTo)
	}

	return true, ""
}

func (b *BoardState) putLocation(e Event) {
	loc := b.ensureLocation(*e.LocationIndex)
	loc.placeholder = false
	loc.CardID = e.CardID
	loc.BlueprintID = e.BlueprintID
	loc.Owner = e.Owner

	title := e.LocationTitle
	system, site := splitSystemSite(title)
	loc.SystemName = system
	loc.SiteName = site

	if e.IsSite != nil {
		loc.IsSite = *e.IsSite
	}
	if e.IsSpace != nil {
		loc.IsSpace = *e.IsSpace
		loc.IsGround = !*e.IsSpace
	} else if loc.IsSite {
		// A site defaults to ground when metadata is ambiguous.
		loc.IsGround = true
	}

	b.cardsByID[e.CardID] = &CardInPlay{
		CardID:        e.CardID,
		BlueprintID:   e.BlueprintID,
		Owner:         e.Owner,
		Zone:          ZoneAtLocation,
		LocationIndex: e.LocationIndex,
		Title:         title,
		Type:          "location",
	}
}

// splitSystemSite derives the system name from a full location title.
func splitSystemSite(title string) (system, site string) {
	if idx := strings.Index(title, ":"); idx >= 0 {
		return strings.TrimSpace(title[:idx]), title
	}
	return title, ""
}

func (b *BoardState) appendToLocationSide(loc *LocationInPlay, owner Owner, cardID string) {
	if owner == OwnerMe {
		loc.MyCards = append(loc.MyCards, cardID)
	} else {
		loc.TheirCards = append(loc.TheirCards, cardID)
	}
}

func (b *BoardState) appendToHand(owner Owner, cardID string) {
	if owner == OwnerMe {
		b.MyZones.Hand = append(b.MyZones.Hand, cardID)
	} else {
		b.TheirZones.Hand = append(b.TheirZones.Hand, cardID)
	}
}

func (b *BoardState) bumpPileCount(owner Owner, zone Zone, delta int) {
	zs := &b.TheirZones
	if owner == OwnerMe {
		zs = &b.MyZones
	}
	switch zone {
	case ZoneForcePile:
		zs.ForcePile += delta
	case ZoneUsedPile:
		zs.UsedPile += delta
	case ZoneLostPile:
		zs.LostPile += delta
	case ZoneReserveDeck:
		zs.ReserveDeck += delta
	case ZoneOutOfPlay:
		zs.OutOfPlay += delta
	}
	if zs.ForcePile < 0 {
		zs.ForcePile = 0
	}
	if zs.UsedPile < 0 {
		zs.UsedPile = 0
	}
	if zs.LostPile < 0 {
		zs.LostPile = 0
	}
	if zs.ReserveDeck < 0 {
		zs.ReserveDeck = 0
	}
	if zs.OutOfPlay < 0 {
		zs.OutOfPlay = 0
	}
}

// removeFromCurrentZone removes cp from whichever zone list it currently
// occupies, without touching cp.Zone itself (the caller overwrites that).
func (b *BoardState) removeFromCurrentZone(cp *CardInPlay) {
	switch cp.Zone {
	case ZoneAtLocation:
		if cp.LocationIndex != nil {
			if loc := b.LocationAt(*cp.LocationIndex); loc != nil {
				loc.MyCards = removeString(loc.MyCards, cp.CardID)
				loc.TheirCards = removeString(loc.TheirCards, cp.CardID)
			}
		}
	case ZoneHand:
		b.MyZones.Hand = removeString(b.MyZones.Hand, cp.CardID)
		b.TheirZones.Hand = removeString(b.TheirZones.Hand, cp.CardID)
	case ZoneForcePile, ZoneUsedPile, ZoneLostPile, ZoneReserveDeck, ZoneOutOfPlay:
		b.bumpPileCount(cp.Owner, cp.Zone, -1)
	}
}

func removeString(s []string, v string) []string {
	out := s[:0:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// attach links child to the card identified by parentID. A missing target
// is logged and dropped by the caller's caller (the transport layer logs);
// the fold itself silently no-ops rather than fabricating a parent, since
// creating a fake card would itself violate the conservation invariant.
func (b *BoardState) attach(child *CardInPlay, parentID string) {
	if parentID == child.CardID {
		return // never attach to self
	}
	parent := b.cardsByID[parentID]
	if parent == nil {
		return
	}
	// Reject cycles: parent must not already (transitively) be attached to child.
	for p := parent; p != nil; {
		if p.CardID == child.CardID {
			return
		}
		if p.AttachedTo == nil {
			break
		}
		p = b.cardsByID[*p.AttachedTo]
	}
	child.AttachedTo = &parentID
	parent.Attachments = append(parent.Attachments, child.CardID)
}

func (b *BoardState) detachFromParent(cp *CardInPlay) {
	if cp.AttachedTo == nil {
		return
	}
	if parent := b.cardsByID[*cp.AttachedTo]; parent != nil {
		parent.Attachments = removeString(parent.Attachments, cp.CardID)
	}
	cp.AttachedTo = nil
}

func (b *BoardState) applyRemoveCardInPlay(e Event) (bool, string) {
	cp := b.cardsByID[e.CardID]
	if cp == nil {
		// Unknown card_id on a remove: treat as first sighting to avoid
		// divergence, per the error-handling design (7).
		cp = &CardInPlay{CardID: e.CardID, BlueprintID: e.BlueprintID, Owner: e.Owner}
		b.cardsByID[e.CardID] = cp
		return true, "unknown card_id treated as first sighting"
	}

	b.detachFromParent(cp)
	for _, childID := range append([]string(nil), cp.Attachments...) {
		if child := b.cardsByID[childID]; child != nil {
			child.AttachedTo = nil
		}
	}
	cp.Attachments = nil

	if cp.Zone == ZoneAtLocation && cp.LocationIndex != nil {
		// Removing a location card clears its slot but preserves index
		// stability: the vector never shrinks.
		if loc := b.LocationAt(*cp.LocationIndex); loc != nil && loc.CardID == cp.CardID {
			loc.CardID = ""
			loc.BlueprintID = ""
			loc.SiteName = ""
			loc.SystemName = placeholderName(loc.LocationIndex)
			loc.placeholder = true
		} else {
			b.removeFromCurrentZone(cp)
		}
	} else {
		b.removeFromCurrentZone(cp)
	}

	delete(b.cardsByID, cp.CardID)
	return true, ""
}

func (b *BoardState) applyMoveCardInPlay(e Event) (bool, string) {
	cp := b.cardsByID[e.CardID]
	if cp == nil {
		cp = &CardInPlay{CardID: e.CardID, BlueprintID: e.BlueprintID}
		b.cardsByID[e.CardID] = cp
	} else {
		b.detachFromParent(cp)
		b.removeFromCurrentZone(cp)
	}

	if e.BlueprintID != "" {
		cp.BlueprintID = e.BlueprintID
	}
	if e.Owner != "" {
		cp.Owner = e.Owner
	}
	cp.Zone = e.Zone

	switch e.Zone {
	case ZoneAtLocation:
		if e.LocationIndex == nil {
			return false, "MOVE to AT_LOCATION without location_index"
		}
		cp.LocationIndex = e.LocationIndex
		loc := b.ensureLocation(*e.LocationIndex)
		b.appendToLocationSide(loc, cp.Owner, cp.CardID)
	case ZoneHand:
		cp.LocationIndex = nil
		b.appendToHand(cp.Owner, cp.CardID)
	default:
		cp.LocationIndex = nil
		b.bumpPileCount(cp.Owner, e.Zone, +1)
	}

	if e.AttachedTo != nil && *e.AttachedTo != "" {
		b.attach(cp, *e.AttachedTo)
	}

	return true, ""
}

func (b *BoardState) applyGameState(e Event) (bool, string) {
	if e.MyPower != nil {
		b.myPower = e.MyPower
	}
	if e.TheirPower != nil {
		b.theirPower = e.TheirPower
	}
	if e.MyPileSizes != nil {
		b.MyZones.ForcePile = e.MyPileSizes.ForcePile
		b.MyZones.UsedPile = e.MyPileSizes.UsedPile
		b.MyZones.LostPile = e.MyPileSizes.LostPile
		b.MyZones.ReserveDeck = e.MyPileSizes.ReserveDeck
		b.MyZones.OutOfPlay = e.MyPileSizes.OutOfPlay
	}
	if e.TheirPileSizes != nil {
		b.TheirZones.ForcePile = e.TheirPileSizes.ForcePile
		b.TheirZones.UsedPile = e.TheirPileSizes.UsedPile
		b.TheirZones.LostPile = e.TheirPileSizes.LostPile
		b.TheirZones.ReserveDeck = e.TheirPileSizes.ReserveDeck
		b.TheirZones.OutOfPlay = e.TheirPileSizes.OutOfPlay
	}
	if e.MyHand != nil {
		b.MyZones.Hand = e.MyHand
	}
	if e.BattleStarting {
		b.InBattle = true
	}
	if e.BattleEnding {
		b.InBattle = false
		b.BattleLocationIndex = nil
	}
	return true, ""
}

func (b *BoardState) applyPhase(e Event) (bool, string) {
	b.CurrentPhase = e.Phase
	if e.TurnNumber != nil {
		b.TurnNumber = *e.TurnNumber
	}
	return true, ""
}

// applyTurnChange only updates whose turn it is. _handle_turn_change never
// touches turn_number in the original; the PHASE event's "turn #(\d+)" text
// is the sole authoritative source, applied in applyPhase above.
func (b *BoardState) applyTurnChange(e Event) (bool, string) {
	b.CurrentPlayer = e.CurrentPlayer
	return true, ""
}
