package decision

import (
	"math"
	"strings"

	"github.com/rs/zerolog/log"
)

var cancelKeywords = []string{"cancel", "done", "pass", "decline", "no response", "no further"}

// EnsureValid guarantees the worker never hangs waiting on a response that
// the server will reject outright. It applies three checks in order and
// returns on the first one that fires:
//
//  1. an empty/missing choice on a decision that requires one, substituted
//     with the first non-cancel option
//  2. a cancel-like choice on a decision that requires one, substituted
//     with the first non-cancel option
//  3. a chosen option that isn't actually selectable, substituted with the
//     highest-scored selectable alternative
//
// scored carries the evaluator panel's score for each option value it had
// an opinion on (keyed the same way a response value is built: card_id
// when present, option_id otherwise); it may be nil, in which case rule 3
// falls back to the first selectable alternative.
//
// A value that passes all three is returned unchanged.
func EnsureValid(req Request, value string, scored map[string]float64) (corrected string, reason string) {
	if fixed, why, fired := forceChoiceWhenRequired(req, value); fired {
		return fixed, why
	}
	if fixed, why, fired := substituteCancelAction(req, value); fired {
		return fixed, why
	}
	if fixed, why, fired := substituteNonSelectable(req, value, scored); fired {
		return fixed, why
	}
	return value, ""
}

func forceChoiceWhenRequired(req Request, value string) (string, string, bool) {
	if value != "" || !req.MustChoose() {
		return value, "", false
	}

	if pick, ok := firstNonCancel(req.SelectableOptions()); ok {
		id := optionValue(pick)
		log.Warn().Str("decision_id", req.ID).Str("picked", id).Msg("decision safety: forced choice, must-choose with empty response")
		return id, "safety: forced the first non-cancel selectable option because the decision requires a choice", true
	}
	if pick, ok := firstNonCancel(req.Options); ok {
		return optionValue(pick), "safety: forced the first non-cancel option because the decision requires a choice", true
	}
	if req.Type == TypeMultipleChoice {
		return "0", "safety: no options available, defaulting MULTIPLE_CHOICE to 0", true
	}
	return value, "", false
}

// substituteCancelAction implements the cancel-when-required rule: the
// brain chose an option whose text reads as cancel/pass, but this
// decision doesn't allow passing. The first non-cancel option takes its
// place; if every option is cancel-like, there is nothing to substitute.
func substituteCancelAction(req Request, value string) (string, string, bool) {
	if value == "" || !req.NoPass || !isCancelChoice(req, value) {
		return value, "", false
	}

	if pick, ok := firstNonCancel(req.Options); ok {
		id := optionValue(pick)
		log.Warn().Str("decision_id", req.ID).Str("was", value).Str("now", id).Msg("decision safety: substituted cancel choice on a no-pass decision")
		return id, "safety: chosen option was cancel-like but the decision requires a choice, substituted the first non-pass option", true
	}
	return value, "", false
}

func isCancelChoice(req Request, value string) bool {
	for _, o := range req.Options {
		if o.ID == value || o.CardID == value {
			return isCancelText(o.Text)
		}
	}
	return false
}

func isCancelText(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, kw := range cancelKeywords {
		if strings.HasPrefix(lower, kw) {
			return true
		}
	}
	return false
}

func firstNonCancel(options []Option) (Option, bool) {
	for _, o := range options {
		if !isCancelText(o.Text) {
			return o, true
		}
	}
	return Option{}, false
}

func optionValue(o Option) string {
	if o.CardID != "" {
		return o.CardID
	}
	return o.ID
}

// substituteNonSelectable implements the non-selectable-choice rule: when
// the chosen option isn't actually selectable, pick the highest-scored
// selectable alternative. Options scored has no opinion on are treated as
// worse than any scored one but still candidates, so the first selectable
// option is the deterministic fallback when nothing was scored at all.
func substituteNonSelectable(req Request, value string, scored map[string]float64) (string, string, bool) {
	if value == "" {
		return value, "", false
	}
	for _, o := range req.Options {
		if (o.ID == value || o.CardID == value) && o.Selectable {
			return value, "", false // chosen option is valid, nothing to fix
		}
	}
	selectable := req.SelectableOptions()
	if len(selectable) == 0 {
		return value, "", false // nothing better to substitute
	}

	best := selectable[0]
	bestScore := math.Inf(-1)
	for _, o := range selectable {
		score, ok := scoreFor(scored, o)
		if ok && score > bestScore {
			best, bestScore = o, score
		}
	}

	id := optionValue(best)
	log.Warn().Str("decision_id", req.ID).Str("was", value).Str("now", id).Msg("decision safety: substituted non-selectable choice")
	return id, "safety: chosen option was not selectable, substituted the highest-scored selectable alternative", true
}

func scoreFor(scored map[string]float64, o Option) (float64, bool) {
	if scored == nil {
		return 0, false
	}
	if o.CardID != "" {
		if s, ok := scored[o.CardID]; ok {
			return s, true
		}
	}
	s, ok := scored[o.ID]
	return s, ok
}
