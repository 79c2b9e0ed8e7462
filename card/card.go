// Package card holds the immutable card-metadata model (blueprint identifier
// to descriptor) and the registry that loads it once per process.
package card

import (
	"strconv"
	"strings"
)

// Side is the card's faction allegiance.
type Side string

const (
	SideLight   Side = "light"
	SideDark    Side = "dark"
	SideUnknown Side = "unknown"
)

// Type is the coarse card category as printed on the card.
type Type string

const (
	TypeCharacter Type = "character"
	TypeStarship  Type = "starship"
	TypeVehicle   Type = "vehicle"
	TypeWeapon    Type = "weapon"
	TypeDevice    Type = "device"
	TypeLocation  Type = "location"
	TypeEffect    Type = "effect"
	TypeInterrupt Type = "interrupt"
	TypeObjective Type = "objective"
	TypeUnknown   Type = "unknown"
)

// Card is immutable blueprint metadata. Every numeric stat is modeled as a
// raw string because GEMP's card JSON encodes "*" and "X" alongside plain
// integers; ValueOrZero-style accessors parse-or-zero rather than forcing
// the loader to reject cards with variable stats.
type Card struct {
	BlueprintID       string
	Title             string
	Side              Side
	Type              Type
	SubType           string
	power             string
	ability           string
	deploy            string
	forfeit           string
	destiny           string
	Icons             []string
	Characteristics   []string
	GameText          string
	IsUnique          bool
	IsDefensiveShield bool
}

// intOrZero parses a raw numeric stat that may be absent, "*", or "X".
// Non-numeric and empty stats resolve to 0, matching the prior
// implementation's isdigit()-gated parsing rather than failing the load.
func intOrZero(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func (c *Card) Power() int   { return intOrZero(c.power) }
func (c *Card) Ability() int { return intOrZero(c.ability) }
func (c *Card) Deploy() int  { return intOrZero(c.deploy) }
func (c *Card) Forfeit() int { return intOrZero(c.forfeit) }
func (c *Card) Destiny() int { return intOrZero(c.destiny) }

func (c *Card) hasIcon(substr string) bool {
	for _, icon := range c.Icons {
		if strings.Contains(strings.ToLower(icon), substr) {
			return true
		}
	}
	return false
}

func (c *Card) IsCharacter() bool { return c.Type == TypeCharacter }
func (c *Card) IsStarship() bool  { return c.Type == TypeStarship }
func (c *Card) IsVehicle() bool   { return c.Type == TypeVehicle }
func (c *Card) IsLocation() bool  { return c.Type == TypeLocation }
func (c *Card) IsEffect() bool    { return c.Type == TypeEffect }
func (c *Card) IsInterrupt() bool { return c.Type == TypeInterrupt }
func (c *Card) IsWeapon() bool    { return c.Type == TypeWeapon }
func (c *Card) IsDevice() bool    { return c.Type == TypeDevice }

// IsPilot is true only for characters with a Pilot icon; a ship with a pilot
// icon is a permanent-pilot ship (HasPermanentPilot), not a pilot itself.
func (c *Card) IsPilot() bool {
	return c.IsCharacter() && c.hasIcon("pilot")
}

func (c *Card) IsWarrior() bool {
	return c.hasIcon("warrior")
}

// HasPermanentPilot is true for starships/vehicles that fly themselves.
func (c *Card) HasPermanentPilot() bool {
	return (c.IsStarship() || c.IsVehicle()) && c.hasIcon("pilot")
}

// IsDroid is true for droid characters, matching card_loader.py's
// is_droid: a subType containing "droid", not the characteristics list.
func (c *Card) IsDroid() bool {
	return c.IsCharacter() && strings.Contains(strings.ToLower(c.SubType), "droid")
}

// ProvidesPresence is true for characters that contribute force-drain
// ability at a location.
func (c *Card) ProvidesPresence() bool {
	return c.IsCharacter() && c.Ability() > 0
}

func (c *Card) IsInterior() bool { return c.hasIcon("interior") }
func (c *Card) IsExterior() bool { return c.hasIcon("exterior") }

func (c *Card) HasPlanetIcon() bool { return c.hasIcon("planet") }
func (c *Card) HasSpaceIcon() bool {
	return c.hasIcon("space") || c.hasIcon("starship")
}

func (c *Card) IsDockingBay() bool {
	return strings.Contains(strings.ToLower(c.Title), "docking bay") || c.hasIcon("docking")
}

// capitalShipSitePrefixes are ship titles whose "Name: Room" form is a
// starship site rather than an ordinary system/site split.
var capitalShipSitePrefixes = []string{
	"executor:", "home one:", "death star:", "super star destroyer:",
	"star destroyer:", "blockade runner:", "millennium falcon:",
}

// IsStarshipSite recognizes the "<capital ship>: <room>" title pattern used
// by boardable capital-ship interiors, as distinct from a System: Site split.
func (c *Card) IsStarshipSite() bool {
	lower := strings.ToLower(c.Title)
	for _, prefix := range capitalShipSitePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func (c *Card) IsSite() bool {
	return c.IsLocation() && strings.EqualFold(c.SubType, "Site")
}

func (c *Card) IsSpace() bool {
	if !c.IsLocation() {
		return false
	}
	if strings.EqualFold(c.SubType, "Space") {
		return true
	}
	return c.HasSpaceIcon() && !c.HasPlanetIcon()
}

// IsGround reports the complement of IsSpace for locations; a site defaults
// to ground when metadata is ambiguous (neither icon present).
func (c *Card) IsGround() bool {
	if !c.IsLocation() {
		return false
	}
	return !c.IsSpace()
}
