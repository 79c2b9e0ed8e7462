package card

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// rawCorpus mirrors the on-disk swccg-card-json corpus shape: a top-level
// "cards" array of entries whose playable-face fields live under "front".
// Cards is decoded as raw messages, not []rawCard, so one entry with a
// field of an unexpected shape doesn't take the whole file's successfully
// parsed cards down with it.
type rawCorpus struct {
	Cards []json.RawMessage `json:"cards"`
}

type rawCard struct {
	GempID string      `json:"gempId"`
	Front  *rawCardFace `json:"front"`
}

// lightSideIcons/darkSideIcons are deliberately not modeled here: the
// corpus (like original_source/engine/card_loader.py's light_side_icons/
// dark_side_icons) defines them as force-icon counts, not members of the
// Pilot/Warrior/Interior/Exterior icon vocabulary every card.go predicate
// actually reads, so they have no fallback role in icons below.
type rawCardFace struct {
	Title           string   `json:"title"`
	Type            string   `json:"type"`
	SubType         string   `json:"subType"`
	Power           string   `json:"power"`
	Ability         string   `json:"ability"`
	Deploy          string   `json:"deploy"`
	Forfeit         string   `json:"forfeit"`
	Destiny         string   `json:"destiny"`
	Icons           []string `json:"icons"`
	Characteristics []string `json:"characteristics"`
	GameText        string   `json:"gametext"`
}

// Registry is an immutable, process-wide blueprint-id → Card lookup. It is
// built once by Load and never mutated afterward, so it is safe to share
// by reference across every worker in the process.
type Registry struct {
	byBlueprintID map[string]*Card
}

// Load reads Dark.json and Light.json from dir and returns a stable
// Registry. A missing or malformed file is logged and skipped rather than
// failing the whole load — a partial registry still lets the bot run
// against whichever side's cards parsed.
func Load(dir string) (*Registry, error) {
	reg := &Registry{byBlueprintID: make(map[string]*Card)}

	files := map[string]Side{
		"Dark.json":  SideDark,
		"Light.json": SideLight,
	}

	loadedAny := false
	for filename, side := range files {
		path := filepath.Join(dir, filename)
		n, err := reg.loadFile(path, side)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("card registry: failed to load corpus")
			continue
		}
		log.Info().Str("path", path).Int("count", n).Msg("card registry: loaded corpus")
		loadedAny = true
	}

	if !loadedAny {
		return nil, fmt.Errorf("card registry: no corpus files loaded from %s", dir)
	}

	return reg, nil
}

func (r *Registry) loadFile(path string, side Side) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	var corpus rawCorpus
	if err := json.Unmarshal(data, &corpus); err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}

	count := 0
	for _, rawMsg := range corpus.Cards {
		var raw rawCard
		if err := json.Unmarshal(rawMsg, &raw); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("card registry: skipped one malformed card")
			continue
		}
		c, ok := parseCard(raw, side)
		if !ok {
			continue
		}
		r.byBlueprintID[c.BlueprintID] = c
		count++
	}
	return count, nil
}

func parseCard(raw rawCard, side Side) (*Card, bool) {
	blueprintID := strings.TrimSpace(raw.GempID)
	if blueprintID == "" {
		return nil, false
	}
	if raw.Front == nil {
		return nil, false
	}
	front := raw.Front

	title := front.Title
	if title == "" {
		title = "Unknown"
	}

	return &Card{
		BlueprintID:       blueprintID,
		Title:             title,
		Side:              side,
		Type:              normalizeType(front.Type),
		SubType:           front.SubType,
		power:             front.Power,
		ability:           front.Ability,
		deploy:            front.Deploy,
		forfeit:           front.Forfeit,
		destiny:           front.Destiny,
		Icons:             front.Icons,
		Characteristics:   front.Characteristics,
		GameText:          front.GameText,
		IsUnique:          strings.HasPrefix(title, "•"),
		IsDefensiveShield: strings.Contains(front.GameText, "Defensive Shield"),
	}, true
}

func normalizeType(raw string) Type {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "character":
		return TypeCharacter
	case "starship":
		return TypeStarship
	case "vehicle":
		return TypeVehicle
	case "weapon":
		return TypeWeapon
	case "device":
		return TypeDevice
	case "location":
		return TypeLocation
	case "effect":
		return TypeEffect
	case "interrupt":
		return TypeInterrupt
	case "objective":
		return TypeObjective
	default:
		return TypeUnknown
	}
}

// Get returns the Card for blueprintID, or nil if unknown. Callers should
// fall back to the blueprint id itself as a display string on a miss.
func (r *Registry) Get(blueprintID string) *Card {
	return r.byBlueprintID[blueprintID]
}

// Title returns the card's title, or the blueprint id itself on a miss.
func (r *Registry) Title(blueprintID string) string {
	if c := r.Get(blueprintID); c != nil {
		return c.Title
	}
	return blueprintID
}

// Len reports how many blueprints are indexed.
func (r *Registry) Len() int {
	return len(r.byBlueprintID)
}

// NewRegistryForTesting builds a Registry directly from in-memory cards,
// skipping the JSON corpus entirely. Other packages' tests use this to
// avoid writing fixture files just to exercise registry-dependent code.
func NewRegistryForTesting(cards ...*Card) *Registry {
	reg := &Registry{byBlueprintID: make(map[string]*Card)}
	for _, c := range cards {
		reg.byBlueprintID[c.BlueprintID] = c
	}
	return reg
}
