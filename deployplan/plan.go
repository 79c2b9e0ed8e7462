// Package deployplan builds a phase-level plan for which cards to deploy
// and where, rather than letting the decision-by-decision evaluators
// reinvent the priority order on every CARD_ACTION_CHOICE.
package deployplan

import (
	"strings"

	"golang.org/x/exp/rand"

	"github.com/SWCCGArena/rando-python/board"
	"github.com/SWCCGArena/rando-python/card"
)

// InstructionType orders deployment so locations open targets before
// ships/vehicles arrive, and ships arrive before the pilots that board
// them — a pilot instruction needs its ship's server-assigned card_id,
// which only exists once the ship itself has entered play.
type InstructionType int

const (
	TypeLocation InstructionType = iota
	TypeShipOrVehicle
	TypeCharacter
)

// locationKind narrows which LocationInPlay a card may target, independent
// of any named system restriction: characters only ever deploy to sites,
// lone starships only to space.
type locationKind int

const (
	locationKindAny locationKind = iota
	locationKindSiteOnly
	locationKindSpaceOnly
)

// fortificationThreshold is the per-location power below which a friendly
// holding is treated as under-defended and worth reinforcing ahead of
// opening a new front.
const fortificationThreshold = 4

// Instruction is one planned deployment.
type Instruction struct {
	BlueprintID    string
	Type           InstructionType
	TargetSystem   string // the system name this card's deploy restriction allows
	TargetLocation *int   // resolved once a matching location index is known
	locationKind   locationKind

	// AboardShipBlueprintID is set when this instruction is a pilot meant
	// to board a ship also being deployed this phase.
	AboardShipBlueprintID string
	// aboardShipCardID is bound by OnCardEnteredPlay once the ship's
	// PUT_CARD_IN_PLAY event lands.
	aboardShipCardID string

	satisfied bool
}

// Satisfied reports whether this instruction has already been carried out.
func (i *Instruction) Satisfied() bool { return i.satisfied }

// AboardShipCardID returns the bound ship card_id, or "" if not yet known.
func (i *Instruction) AboardShipCardID() string { return i.aboardShipCardID }

// Plan is an ordered sequence of deployment instructions for the current
// deploy phase.
type Plan struct {
	instructions []*Instruction

	// inFlight is the blueprint id of the card the brain most recently
	// chose to deploy via a top-level action, set by Begin and consulted
	// by RestrictionFor/BoostFor on the location-target decision that
	// immediately follows it.
	inFlight string
}

// Build analyzes hand and board to produce a plan. deployThreshold is the
// minimum total deployable value (power+ability) below which the plan is
// intentionally empty — the brain should pass rather than dribble out
// marginal deployments.
func Build(b *board.BoardState, reg *card.Registry, hand []string, deployThreshold int) *Plan {
	var locations, ships, characters []*Instruction
	totalValue := 0

	for _, blueprintID := range hand {
		meta := reg.Get(blueprintID)
		if meta == nil {
			continue
		}

		switch {
		case meta.IsLocation():
			locations = append(locations, &Instruction{BlueprintID: blueprintID, Type: TypeLocation})
		case meta.IsStarship() || meta.IsVehicle():
			totalValue += meta.Power() + meta.Ability()
			ships = append(ships, &Instruction{
				BlueprintID:  blueprintID,
				Type:         TypeShipOrVehicle,
				TargetSystem: deployRestrictionSystem(meta),
				locationKind: locationKindFor(meta),
			})
		case meta.IsCharacter():
			totalValue += meta.Power() + meta.Ability()
			instr := &Instruction{
				BlueprintID:  blueprintID,
				Type:         TypeCharacter,
				TargetSystem: deployRestrictionSystem(meta),
				locationKind: locationKindFor(meta),
			}
			if meta.IsPilot() {
				if ship := matchingShipForPilot(ships, meta); ship != "" {
					instr.AboardShipBlueprintID = ship
				}
			}
			characters = append(characters, instr)
		}
	}

	if totalValue < deployThreshold {
		return &Plan{}
	}

	instructions := append(append(locations, ships...), characters...)
	resolveTargets(instructions, b)

	return &Plan{instructions: instructions}
}

// deployRestrictionSystem extracts a literal "Deploys on <System>" or
// "Deploys only on <System>" restriction from the card's text, returning
// "" when the card has no such restriction.
func deployRestrictionSystem(c *card.Card) string {
	text := c.GameText
	lower := strings.ToLower(text)
	for _, marker := range []string{"deploys only on ", "deploys on "} {
		if idx := strings.Index(lower, marker); idx >= 0 {
			rest := text[idx+len(marker):]
			if end := strings.IndexAny(rest, ".,;\n"); end >= 0 {
				rest = rest[:end]
			}
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// locationKindFor narrows a card's eligible targets by its own type:
// only sites work for characters, only space for starships. Vehicles are
// ground-based like characters; anything else (bare deploy restrictions
// with no site/space distinction) is left unconstrained.
func locationKindFor(c *card.Card) locationKind {
	switch {
	case c.IsStarship():
		return locationKindSpaceOnly
	case c.IsCharacter(), c.IsVehicle():
		return locationKindSiteOnly
	default:
		return locationKindAny
	}
}

// matchingShipForPilot picks a candidate ship for a boarding pilot. Nothing
// in the hand tells us which ship a generic pilot is meant for, so every
// in-plan ship is an equally valid candidate; ties are broken at random
// rather than always favoring the first one in hand order, since the
// evaluator boost (not this pick) is what actually resolves the ambiguity
// once the ship's board position is known.
func matchingShipForPilot(ships []*Instruction, pilot *card.Card) string {
	if len(ships) == 0 {
		return ""
	}
	return ships[rand.Intn(len(ships))].BlueprintID
}

// resolveTargets assigns a concrete location index to every instruction:
// a restricted card gets the matching system's site/space location of its
// own kind, never the other; an unrestricted character or ship instead
// targets a friendly holding below the fortification threshold, so the
// plan reinforces a contested location rather than always opening a new
// front. An instruction that finds nothing legal is left with a nil
// TargetLocation and falls through to the generic evaluator.
func resolveTargets(instructions []*Instruction, b *board.BoardState) {
	for _, instr := range instructions {
		if instr.TargetSystem != "" {
			resolveRestrictedTarget(instr, b)
			continue
		}
		resolveReinforcementTarget(instr, b)
	}
}

func resolveRestrictedTarget(instr *Instruction, b *board.BoardState) {
	for i := 0; i < len(b.Locations); i++ {
		loc := b.LocationAt(i)
		if loc == nil || !strings.EqualFold(loc.SystemName, instr.TargetSystem) {
			continue
		}
		if !locationMatchesKind(loc, instr.locationKind) {
			continue
		}
		idx := i
		instr.TargetLocation = &idx
		return
	}
}

// resolveReinforcementTarget picks the weakest friendly location of the
// instruction's kind that is still below fortificationThreshold, when the
// card carries no deploy restriction of its own. Characters/ships with no
// kind preference (locationKindAny) are left to the generic evaluator.
func resolveReinforcementTarget(instr *Instruction, b *board.BoardState) {
	if instr.locationKind == locationKindAny {
		return
	}

	best := -1
	bestPower := 0
	for i := 0; i < len(b.Locations); i++ {
		loc := b.LocationAt(i)
		if loc == nil || len(loc.MyCards) == 0 || !locationMatchesKind(loc, instr.locationKind) {
			continue
		}
		power := b.MyPowerAt(i)
		if power >= fortificationThreshold {
			continue
		}
		if best == -1 || power < bestPower {
			best, bestPower = i, power
		}
	}
	if best >= 0 {
		idx := best
		instr.TargetLocation = &idx
	}
}

func locationMatchesKind(loc *board.LocationInPlay, kind locationKind) bool {
	switch kind {
	case locationKindSiteOnly:
		return loc.IsSite
	case locationKindSpaceOnly:
		return loc.IsSpace
	default:
		return true
	}
}

// Pending returns instructions not yet satisfied, applying type-priority
// with fallback: a type is skipped only when the caller's offered set
// contains nothing of a higher-priority type still pending.
func (p *Plan) Pending(offeredBlueprintIDs map[string]bool) []*Instruction {
	if p == nil {
		return nil
	}

	highestPendingType := -1
	for _, instr := range p.instructions {
		if instr.satisfied {
			continue
		}
		if highestPendingType == -1 || int(instr.Type) < highestPendingType {
			highestPendingType = int(instr.Type)
		}
	}

	var pending []*Instruction
	for _, instr := range p.instructions {
		if instr.satisfied {
			continue
		}
		if int(instr.Type) > highestPendingType && offeredBlueprintIDs[offeredForType(p, highestPendingType)] {
			continue // a higher-priority type is still realistically available, wait for it
		}
		if !offeredBlueprintIDs[instr.BlueprintID] {
			continue
		}
		pending = append(pending, instr)
	}
	return pending
}

func offeredForType(p *Plan, t int) string {
	for _, instr := range p.instructions {
		if !instr.satisfied && int(instr.Type) == t {
			return instr.BlueprintID
		}
	}
	return ""
}

// Begin records blueprintID as the card the brain just chose to deploy via
// a top-level action, so the location-target decision that follows can be
// scored against that card's restriction and ship boost even though the
// location decision itself never names which card it's for.
func (p *Plan) Begin(blueprintID string) {
	if p == nil {
		return
	}
	p.inFlight = blueprintID
}

// InFlight returns the blueprint id most recently passed to Begin, or ""
// if no deploy action has been chosen since the last MarkSatisfied.
func (p *Plan) InFlight() string {
	if p == nil {
		return ""
	}
	return p.inFlight
}

// RestrictionFor returns the system blueprintID's instruction is confined
// to, or "" if the card carries no deploy restriction (or isn't planned).
func (p *Plan) RestrictionFor(blueprintID string) string {
	if p == nil {
		return ""
	}
	for _, instr := range p.instructions {
		if instr.BlueprintID == blueprintID {
			return instr.TargetSystem
		}
	}
	return ""
}

// MarkSatisfied records that instr's deployment has been carried out.
func (p *Plan) MarkSatisfied(blueprintID string) {
	if p == nil {
		return
	}
	if p.inFlight == blueprintID {
		p.inFlight = ""
	}
	for _, instr := range p.instructions {
		if instr.BlueprintID == blueprintID && !instr.satisfied {
			instr.satisfied = true
			return
		}
	}
}

// EvaluatorBoost is how much extra score the deploy evaluator should add
// when choosing targetLocationIndex for blueprintID, given that a pilot
// instruction's ship may have just entered play this phase.
const EvaluatorBoost = 150.0

// BoostFor returns EvaluatorBoost when targetLocationIndex is the location
// of the bound ship for a pending pilot instruction on blueprintID, and 0
// otherwise — callers fall back to the system-level target when no ship
// binding exists yet.
func (p *Plan) BoostFor(blueprintID string, b *board.BoardState, targetLocationIndex int) float64 {
	if p == nil {
		return 0
	}
	for _, instr := range p.instructions {
		if instr.BlueprintID != blueprintID || instr.aboardShipCardID == "" {
			continue
		}
		if cp := b.Card(instr.aboardShipCardID); cp != nil && cp.LocationIndex != nil && *cp.LocationIndex == targetLocationIndex {
			return EvaluatorBoost
		}
	}
	return 0
}

// OnCardEnteredPlay implements board.DeploymentPlanNotifiable: once a
// ship's PUT_CARD_IN_PLAY event lands, bind its card_id onto any pending
// pilot instruction waiting to board it.
func (p *Plan) OnCardEnteredPlay(blueprintID, cardID string) {
	if p == nil {
		return
	}
	for _, instr := range p.instructions {
		if instr.Type == TypeShipOrVehicle && instr.BlueprintID == blueprintID {
			instr.satisfied = true
		}
		if instr.AboardShipBlueprintID == blueprintID {
			instr.aboardShipCardID = cardID
		}
	}
}
