package evaluator

import (
	"strings"

	"github.com/SWCCGArena/rando-python/board"
	"github.com/SWCCGArena/rando-python/card"
	"github.com/SWCCGArena/rando-python/decision"
)

// DeployEvaluator scores deploy-phase actions: deploying a card from hand
// versus activating Force, and (for CARD_SELECTION) which card to deploy
// when several are offered together. The heavier job of deciding *where*
// a multi-part deployment goes belongs to the deployplan package; this
// evaluator only ranks the top-level choices the server actually presents.
type DeployEvaluator struct{}

func (DeployEvaluator) Name() string { return "Deploy" }

func (DeployEvaluator) CanEvaluate(ctx Context) bool {
	text := strings.ToLower(ctx.Request.Text)
	if ctx.Request.Type == decision.TypeCardSelection {
		return strings.Contains(text, "deploy") || strings.Contains(text, "where to")
	}
	if ctx.Board != nil && strings.Contains(strings.ToLower(ctx.Board.CurrentPhase), "deploy") {
		return true
	}
	return strings.Contains(text, "deploy")
}

func (DeployEvaluator) Evaluate(ctx Context) []EvaluatedAction {
	switch ctx.Request.Type {
	case decision.TypeCardActionChoice, decision.TypeActionChoice:
		return evaluateDeployActions(ctx)
	case decision.TypeCardSelection, decision.TypeArbitraryCards:
		return evaluateDeployCardSelection(ctx)
	default:
		return nil
	}
}

func evaluateDeployActions(ctx Context) []EvaluatedAction {
	pendingBlueprints := pendingPlanBlueprints(ctx)

	var actions []EvaluatedAction
	for _, o := range ctx.Request.Options {
		if !strings.Contains(o.Text, "Deploy") && !strings.Contains(o.Text, "Reserve Deck") {
			continue
		}
		action := EvaluatedAction{OptionID: o.ID, CardID: o.CardID, BlueprintID: o.BlueprintID, ActionType: ActionDeploy, DisplayText: o.Text}
		action.AddReasoning("base deploy action score", 50)

		if strings.Contains(o.Text, "Reserve Deck") {
			action.AddReasoning("taking from reserve deck is risky, often loops", -30)
			actions = append(actions, action)
			continue
		}

		if pendingBlueprints != nil {
			if pendingBlueprints[o.BlueprintID] {
				action.AddReasoning("matches the deploy plan's next instruction", 15)
			} else {
				action.AddReasoning("not part of the current deploy plan", -10)
			}
		}

		meta := cardMeta(ctx, o.BlueprintID, o.CardID)
		if meta != nil {
			value := float64(meta.Power() + meta.Ability())
			cost := float64(meta.Deploy())
			if cost > 0 {
				action.AddReasoning("card value relative to deploy cost", (value-cost)*2)
			}
			if meta.IsUnique {
				action.AddReasoning("unique card, strategically important", 8)
			}
			if ctx.Board != nil && (meta.IsCharacter() || meta.IsVehicle()) {
				if _, chosen := deployableGroundPower(ctx, ctx.Board.MyZones.ForcePile); chosen[o.BlueprintID] {
					action.AddReasoning("part of this turn's knapsack-optimal ground deployment", 10)
				}
			}
		}
		actions = append(actions, action)
	}
	return actions
}

// pendingPlanBlueprints reports which of this decision's offered deploy
// options the deploy plan considers ready to go next, respecting the
// plan's type-ordering-with-fallback (deployplan.Plan.Pending). A nil
// result means there is no plan to consult, not that nothing is pending.
func pendingPlanBlueprints(ctx Context) map[string]bool {
	if ctx.Plan == nil {
		return nil
	}
	offered := make(map[string]bool, len(ctx.Request.Options))
	for _, o := range ctx.Request.Options {
		if o.BlueprintID != "" {
			offered[o.BlueprintID] = true
		}
	}
	pending := ctx.Plan.Pending(offered)
	if len(pending) == 0 {
		return nil
	}
	out := make(map[string]bool, len(pending))
	for _, instr := range pending {
		out[instr.BlueprintID] = true
	}
	return out
}

func evaluateDeployCardSelection(ctx Context) []EvaluatedAction {
	var actions []EvaluatedAction
	for _, o := range ctx.Request.SelectableOptions() {
		action := EvaluatedAction{OptionID: o.ID, CardID: o.CardID, BlueprintID: o.BlueprintID, ActionType: ActionDeploy, DisplayText: o.Text}

		if loc := boardLocation(ctx, o.CardID); loc != nil {
			scoreDeployLocationTarget(&action, ctx, loc)
			actions = append(actions, action)
			continue
		}

		action.AddReasoning("selectable deploy target", 20)
		meta := cardMeta(ctx, o.BlueprintID, o.CardID)
		if meta != nil {
			action.AddReasoning("card value", float64(meta.Power()+meta.Ability()))
		}
		actions = append(actions, action)
	}
	return actions
}

func boardLocation(ctx Context, cardID string) *board.LocationInPlay {
	if ctx.Board == nil {
		return nil
	}
	return ctx.Board.LocationByCardID(cardID)
}

// scoreDeployLocationTarget applies the deploy plan's restriction and ship
// boost to a location-target option, using Plan.InFlight to learn which
// card this location decision is choosing a home for: the decision text
// never names the card directly, but Begin recorded it when the brain
// picked the top-level "Deploy <card>" action immediately before this one.
func scoreDeployLocationTarget(action *EvaluatedAction, ctx Context, loc *board.LocationInPlay) {
	action.AddReasoning("candidate deploy location", 20)
	if ctx.Plan == nil {
		return
	}
	inFlight := ctx.Plan.InFlight()
	if inFlight == "" {
		return
	}
	if restriction := ctx.Plan.RestrictionFor(inFlight); restriction != "" {
		if strings.EqualFold(loc.SystemName, restriction) {
			action.AddReasoning("matches deploy restriction on "+restriction, 30)
		} else {
			action.AddReasoning("violates deploy restriction, only deploys on "+restriction, -200)
		}
	}
	if boost := ctx.Plan.BoostFor(inFlight, ctx.Board, loc.LocationIndex); boost > 0 {
		action.AddReasoning("bound ship location from the deploy plan", boost)
	}
}

// deployableGroundPower runs a bounded 0/1 knapsack over the bot's hand's
// ground-deployable cards (characters, vehicles), maximizing total
// power+ability achievable within budget force. Mirrors board_state.py's
// total_hand_deployable_ground_power/_knapsack_max_power, used here to
// decide which cards are actually worth their deploy cost this turn
// rather than just comparing each one in isolation. Returns the maximum
// achievable total and the set of blueprint ids the optimal selection
// picked.
func deployableGroundPower(ctx Context, budget int) (int, map[string]bool) {
	if ctx.Board == nil || ctx.Registry == nil || budget <= 0 {
		return 0, nil
	}
	if budget > 64 {
		budget = 64 // force piles never realistically exceed this; bounds the DP table
	}

	type item struct {
		blueprintID string
		cost, value int
	}
	var items []item
	for _, blueprintID := range ctx.Board.MyZones.Hand {
		meta := ctx.Registry.Get(blueprintID)
		if meta == nil || meta.Deploy() <= 0 || !(meta.IsCharacter() || meta.IsVehicle()) {
			continue
		}
		items = append(items, item{blueprintID: blueprintID, cost: meta.Deploy(), value: meta.Power() + meta.Ability()})
	}
	if len(items) == 0 {
		return 0, nil
	}

	dp := make([][]int, len(items)+1)
	for i := range dp {
		dp[i] = make([]int, budget+1)
	}
	for i, it := range items {
		for b := 0; b <= budget; b++ {
			dp[i+1][b] = dp[i][b]
			if it.cost <= b {
				if v := dp[i][b-it.cost] + it.value; v > dp[i+1][b] {
					dp[i+1][b] = v
				}
			}
		}
	}

	chosen := make(map[string]bool)
	b := budget
	for i := len(items); i > 0; i-- {
		if dp[i][b] != dp[i-1][b] {
			chosen[items[i-1].blueprintID] = true
			b -= items[i-1].cost
		}
	}
	return dp[len(items)][budget], chosen
}

// cardMeta resolves a hand card's metadata, preferring its blueprint id
// (the registry's key) and falling back to the card_id for the rare
// response shape that omits blueprintId.
func cardMeta(ctx Context, blueprintID, cardID string) *card.Card {
	if blueprintID != "" {
		if m := ctx.Registry.Get(blueprintID); m != nil {
			return m
		}
	}
	return ctx.Registry.Get(cardID)
}
