// Package decode turns one long-poll XML event batch into board events and,
// if the batch carried one, a pending decision request. It is the ported
// equivalent of the event processor and decision handler: the transport
// layer hands it raw XML, the board package only ever sees board.Event.
package decode

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/SWCCGArena/rando-python/board"
	"github.com/SWCCGArena/rando-python/card"
	"github.com/SWCCGArena/rando-python/decision"
)

// Decoder carries the small amount of state that spans batches: who we are
// and which side we're on, both learned from the first PARTICIPANT event.
type Decoder struct {
	registry     *card.Registry
	myPlayerName string
	mySide       string
	opponentName string
}

// New builds a Decoder for one game session.
func New(registry *card.Registry, myPlayerName string) *Decoder {
	return &Decoder{registry: registry, myPlayerName: myPlayerName}
}

type rawGE struct {
	Type string `xml:"type,attr"`

	CardID       string `xml:"cardId,attr"`
	BlueprintID  string `xml:"blueprintId,attr"`
	Zone         string `xml:"zone,attr"`
	ZoneOwnerID  string `xml:"zoneOwnerId,attr"`
	TargetCardID string `xml:"targetCardId,attr"`
	LocationIdx  string `xml:"locationIndex,attr"`
	SystemName   string `xml:"systemName,attr"`
	OtherCardIDs string `xml:"otherCardIds,attr"`

	DarkForceGen  string `xml:"darkForceGeneration,attr"`
	LightForceGen string `xml:"lightForceGeneration,attr"`

	ParticipantID     string `xml:"participantId,attr"`
	AllParticipantIDs string `xml:"allParticipantIds,attr"`
	Side              string `xml:"side,attr"`

	Phase string `xml:"phase,attr"`

	Message string `xml:"message,attr"`

	DecisionType string `xml:"decisionType,attr"`
	ID           string `xml:"id,attr"`
	Text         string `xml:"text,attr"`
	NoPass       string `xml:"noPass,attr"`
	Min          string `xml:"min,attr"`
	Max          string `xml:"max,attr"`

	PlayerZones           []rawPlayerZone `xml:"playerZones"`
	DarkPowerAtLocations  *rawPowerMap    `xml:"darkPowerAtLocations"`
	LightPowerAtLocations *rawPowerMap    `xml:"lightPowerAtLocations"`
	Parameters            []rawParameter  `xml:"parameter"`
}

type rawPlayerZone struct {
	Name        string `xml:"name,attr"`
	ForcePile   string `xml:"FORCE_PILE,attr"`
	UsedPile    string `xml:"USED_PILE,attr"`
	ReserveDeck string `xml:"RESERVE_DECK,attr"`
	LostPile    string `xml:"LOST_PILE,attr"`
	OutOfPlay   string `xml:"OUT_OF_PLAY,attr"`
	Hand        string `xml:"HAND,attr"`
}

type rawPowerMap struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

type rawParameter struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Decode parses one batch of <ge> elements into board events, plus a
// decision request if the batch included a "D" event. A malformed batch
// returns an error; individual unrecognized event types are skipped.
func (d *Decoder) Decode(xmlBody string) ([]board.Event, *decision.Request, error) {
	raw, err := parseEventBatch(xmlBody)
	if err != nil {
		return nil, nil, err
	}

	events := make([]board.Event, 0, len(raw))
	var pending *decision.Request
	for _, ge := range raw {
		if ge.Type == "D" {
			pending = d.decodeDecision(ge)
			continue
		}
		events = append(events, d.decodeEvents(ge)...)
	}
	return events, pending, nil
}

func parseEventBatch(xmlBody string) ([]rawGE, error) {
	data := []byte(xmlBody)

	var flat struct {
		Events []rawGE `xml:"ge"`
	}
	errFlat := xml.Unmarshal(data, &flat)
	if errFlat == nil && len(flat.Events) > 0 {
		return flat.Events, nil
	}

	var nested struct {
		Events []rawGE `xml:"gameEvents>ge"`
	}
	if err := xml.Unmarshal(data, &nested); err != nil {
		if errFlat != nil {
			return nil, fmt.Errorf("decode: parse event batch xml: %w", errFlat)
		}
		return nil, fmt.Errorf("decode: parse event batch xml: %w", err)
	}
	return nested.Events, nil
}

func (d *Decoder) decodeEvents(ge rawGE) []board.Event {
	switch ge.Type {
	case "PCIP", "RCIP", "PCIPAR":
		return []board.Event{d.decodePutCard(ge)}
	case "RCFP", "RLFP":
		return d.decodeRemoveCards(ge)
	case "MCIP":
		return []board.Event{d.decodeMoveCard(ge)}
	case "GS":
		return []board.Event{d.decodeGameState(ge)}
	case "P":
		return []board.Event{d.decodeParticipant(ge)}
	case "TC":
		return []board.Event{d.decodeTurnChange(ge)}
	case "GPC":
		return []board.Event{d.decodePhaseChange(ge)}
	case "SB", "SD", "SLC", "SA":
		return []board.Event{{Tag: board.TagGameState, BattleStarting: true}}
	case "EB", "EA", "ED", "ELC":
		return []board.Event{{Tag: board.TagGameState, BattleEnding: true}}
	case "M":
		return []board.Event{{Tag: board.TagChat, MessageText: ge.Message}}
	case "GAME_PROCESS_CHANGE", "GAME_PROGRESS":
		return []board.Event{{Tag: board.TagGameProcessChange}}
	default:
		// D, IP, CAC and anything unrecognized carry no board-state change.
		return nil
	}
}

func (d *Decoder) ownerFor(id string) board.Owner {
	switch {
	case id == "":
		return board.OwnerUnknown
	case id == d.myPlayerName:
		return board.OwnerMe
	default:
		return board.OwnerOpponent
	}
}

func (d *Decoder) decodePutCard(ge rawGE) board.Event {
	owner := d.ownerFor(ge.ZoneOwnerID)
	locIdx := parseIntPtr(ge.LocationIdx)

	if ge.Zone == "LOCATIONS" {
		title := ge.SystemName
		isSite, isSpace := false, false
		if c := d.registry.Get(ge.BlueprintID); c != nil {
			if title == "" {
				title = c.Title
			}
			isSite = c.IsSite()
			isSpace = c.IsSpace()
		}
		return board.Event{
			Tag:            board.TagPutCardInPlay,
			CardID:         ge.CardID,
			BlueprintID:    ge.BlueprintID,
			Owner:          owner,
			Zone:           board.ZoneAtLocation,
			LocationIndex:  locIdx,
			IsLocationCard: true,
			LocationTitle:  title,
			IsSite:         &isSite,
			IsSpace:        &isSpace,
		}
	}

	e := board.Event{
		Tag:           board.TagPutCardInPlay,
		CardID:        ge.CardID,
		BlueprintID:   ge.BlueprintID,
		Owner:         owner,
		Zone:          mapZone(ge.Zone),
		LocationIndex: locIdx,
	}
	if ge.TargetCardID != "" {
		target := ge.TargetCardID
		e.AttachedTo = &target
	}
	return e
}

func (d *Decoder) decodeRemoveCards(ge rawGE) []board.Event {
	var ids []string
	if ge.CardID != "" {
		ids = append(ids, ge.CardID)
	}
	for _, id := range strings.Split(ge.OtherCardIDs, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}

	events := make([]board.Event, 0, len(ids))
	for _, id := range ids {
		events = append(events, board.Event{Tag: board.TagRemoveCardInPlay, CardID: id})
	}
	return events
}

func (d *Decoder) decodeMoveCard(ge rawGE) board.Event {
	e := board.Event{
		Tag:           board.TagMoveCardInPlay,
		CardID:        ge.CardID,
		BlueprintID:   ge.BlueprintID,
		Owner:         d.ownerFor(ge.ZoneOwnerID),
		Zone:          mapZone(ge.Zone),
		LocationIndex: parseIntPtr(ge.LocationIdx),
	}
	if ge.TargetCardID != "" {
		target := ge.TargetCardID
		e.AttachedTo = &target
	}
	return e
}

func (d *Decoder) decodeGameState(ge rawGE) board.Event {
	e := board.Event{Tag: board.TagGameState}

	for _, pz := range ge.PlayerZones {
		sizes := &board.PileSizes{
			ForcePile:   parseIntOr(pz.ForcePile, 0),
			UsedPile:    parseIntOr(pz.UsedPile, 0),
			LostPile:    parseIntOr(pz.LostPile, 0),
			ReserveDeck: parseIntOr(pz.ReserveDeck, 0),
			OutOfPlay:   parseIntOr(pz.OutOfPlay, 0),
		}
		if pz.Name == d.myPlayerName {
			e.MyPileSizes = sizes
		} else {
			e.TheirPileSizes = sizes
		}
	}

	darkPower := parsePowerMap(ge.DarkPowerAtLocations)
	lightPower := parsePowerMap(ge.LightPowerAtLocations)

	switch d.mySide {
	case "dark":
		e.MyPower, e.TheirPower = darkPower, lightPower
	case "light":
		e.MyPower, e.TheirPower = lightPower, darkPower
	}

	return e
}

func (d *Decoder) decodeParticipant(ge rawGE) board.Event {
	if ge.AllParticipantIDs != "" && d.opponentName == "" {
		for _, p := range strings.Split(ge.AllParticipantIDs, ",") {
			p = strings.TrimSpace(p)
			if p != "" && p != d.myPlayerName {
				d.opponentName = p
				break
			}
		}
	}

	if ge.ParticipantID == d.myPlayerName && ge.Side != "" {
		d.mySide = strings.ToLower(ge.Side)
	}

	return board.Event{
		Tag:          board.TagParticipant,
		MyPlayerName: d.myPlayerName,
		OpponentName: d.opponentName,
		MySide:       d.mySide,
	}
}

func (d *Decoder) decodeTurnChange(ge rawGE) board.Event {
	return board.Event{Tag: board.TagTurnChange, CurrentPlayer: d.ownerFor(ge.ParticipantID)}
}

var turnNumberPattern = regexp.MustCompile(`turn #(\d+)`)

func (d *Decoder) decodePhaseChange(ge rawGE) board.Event {
	e := board.Event{Tag: board.TagPhase, Phase: ge.Phase}
	if m := turnNumberPattern.FindStringSubmatch(ge.Phase); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			e.TurnNumber = &n
		}
	}
	return e
}

// decodeDecision builds a decision.Request from a "D" event's repeated
// parameter list. cardId and selectable run in parallel, index for index;
// text-only decisions (MULTIPLE_CHOICE, ACTION_CHOICE) carry a text list
// instead and are numbered by position.
func (d *Decoder) decodeDecision(ge rawGE) *decision.Request {
	var cardIDs, blueprintIDs, texts, selectables []string
	for _, p := range ge.Parameters {
		switch p.Name {
		case "cardId":
			cardIDs = append(cardIDs, p.Value)
		case "blueprintId":
			blueprintIDs = append(blueprintIDs, p.Value)
		case "text":
			texts = append(texts, p.Value)
		case "selectable":
			selectables = append(selectables, p.Value)
		}
	}

	var options []decision.Option
	switch {
	case len(cardIDs) > 0:
		for i, cid := range cardIDs {
			options = append(options, decision.Option{
				ID:          cid,
				CardID:      cid,
				BlueprintID: stringAt(blueprintIDs, i),
				Text:        stringAt(texts, i),
				Selectable:  selectableAt(selectables, i),
			})
		}
	case len(texts) > 0:
		for i, t := range texts {
			options = append(options, decision.Option{
				ID:         strconv.Itoa(i),
				Text:       t,
				Selectable: selectableAt(selectables, i),
			})
		}
	}

	return &decision.Request{
		ID:      ge.ID,
		Type:    decision.Type(ge.DecisionType),
		Text:    ge.Text,
		NoPass:  ge.NoPass == "true",
		Min:     parseIntOr(ge.Min, 0),
		Max:     parseIntOr(ge.Max, 0),
		Options: options,
	}
}

func stringAt(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}

func selectableAt(s []string, i int) bool {
	if i < len(s) {
		return s[i] != "false"
	}
	return true
}

func mapZone(raw string) board.Zone {
	switch raw {
	case "HAND":
		return board.ZoneHand
	case "AT_LOCATION":
		return board.ZoneAtLocation
	case "FORCE_PILE":
		return board.ZoneForcePile
	case "USED_PILE":
		return board.ZoneUsedPile
	case "LOST_PILE":
		return board.ZoneLostPile
	case "RESERVE_DECK":
		return board.ZoneReserveDeck
	case "OUT_OF_PLAY":
		return board.ZoneOutOfPlay
	default:
		return board.ZoneUnknown
	}
}

func parsePowerMap(m *rawPowerMap) map[int]int {
	if m == nil {
		return nil
	}
	out := make(map[int]int, len(m.Attrs))
	for _, a := range m.Attrs {
		idx, ok := extractDigits(a.Name.Local)
		if !ok {
			continue
		}
		out[idx] = parseIntOr(a.Value, 0)
	}
	return out
}

func extractDigits(s string) (int, bool) {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseIntPtr(raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func parseIntOr(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
