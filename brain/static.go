package brain

import (
	"strings"

	"github.com/SWCCGArena/rando-python/board"
	"github.com/SWCCGArena/rando-python/card"
	"github.com/SWCCGArena/rando-python/config"
	"github.com/SWCCGArena/rando-python/decision"
	"github.com/SWCCGArena/rando-python/deployplan"
	"github.com/SWCCGArena/rando-python/evaluator"
	"github.com/rs/zerolog/log"
)

// StaticBrain is the reference decision-maker: a fixed panel of
// single-concern evaluators run through a CombinedEvaluator, with the
// safety net and loop detector from the decision package guaranteeing a
// response is always produced.
type StaticBrain struct {
	registry *card.Registry
	combined *evaluator.CombinedEvaluator
	loop     *decision.LoopDetector
	plan     *deployplan.Plan

	deployThreshold int

	opponentName string
	mySide       string
}

// NewStaticBrain builds a StaticBrain with the standard evaluator panel,
// ordered the way deploy decisions should be checked first and the
// catch-all text evaluator and pass evaluator checked last. Evaluator
// tuning knobs (deploy_threshold, hand_soft_cap, max_hand_size,
// force_gen_target, battle_favorable_threshold, battle_danger_threshold)
// are read from cfg.
func NewStaticBrain(reg *card.Registry, cfg config.Config) *StaticBrain {
	panel := evaluator.New(
		evaluator.DeployEvaluator{},
		evaluator.NewCardSelectionEvaluator(cfg.MaxHandSize),
		evaluator.NewBattleEvaluator(cfg.BattleFavorableThreshold, cfg.BattleDangerThreshold),
		evaluator.MoveEvaluator{},
		evaluator.NewDrawEvaluator(cfg.HandSoftCap),
		evaluator.ConcedeEvaluator{},
		evaluator.ActionTextEvaluator{},
		evaluator.NewForceActivationEvaluator(cfg.ForceGenTarget),
		evaluator.NewPassEvaluator(cfg.HandSoftCap),
	)

	return &StaticBrain{
		registry:        reg,
		combined:        panel,
		loop:            decision.NewLoopDetector(64),
		deployThreshold: cfg.DeployThreshold,
	}
}

func (s *StaticBrain) Name() string { return "static" }

func (s *StaticBrain) OnGameStart(mySide, opponentName string) {
	s.mySide = mySide
	s.opponentName = opponentName
	s.plan = nil
	log.Info().Str("opponent", opponentName).Str("side", mySide).Msg("brain: game started")
}

func (s *StaticBrain) OnGameEnd(won bool, finalState *board.BoardState) {
	entry := log.Info().Bool("won", won)
	if finalState != nil {
		entry = entry.Int("power_advantage", finalState.PowerAdvantage())
	}
	entry.Msg("brain: game ended")
	s.plan = nil
}

// MakeDecision is the single entry point the worker calls for every
// decision the server sends. It never returns a value the safety net and
// loop detector wouldn't also approve.
func (s *StaticBrain) MakeDecision(b *board.BoardState, req decision.Request) decision.Response {
	if b.CurrentPhase != "" && isDeployPhase(b.CurrentPhase) && s.plan == nil {
		s.plan = deployplan.Build(b, s.registry, b.MyZones.Hand, s.deployThreshold)
		b.SetDeploymentPlan(s.plan)
	}

	ctx := evaluator.Context{Board: b, Registry: s.registry, Request: req, Plan: s.plan}

	all := s.combined.EvaluateAll(ctx)
	value := ""
	reason := "no evaluator opinion, defaulting to pass"
	if len(all) > 0 {
		best := evaluator.BestOf(all)
		value = chosenValue(best)
		reason = best.DisplayText
		s.recordDeployProgress(best, req)
	} else {
		log.Warn().Str("decision_id", req.ID).Msg("brain: no evaluator produced an opinion")
	}

	if s.loop.Observe(req, value) {
		value, reason = s.loop.Break(req, value)
	}

	corrected, safetyReason := decision.EnsureValid(req, value, scoreLookup(all))
	if safetyReason != "" {
		reason = safetyReason
	}

	return decision.Response{DecisionID: req.ID, Value: corrected, Reason: reason}
}

func chosenValue(a evaluator.EvaluatedAction) string {
	if a.CardID != "" {
		return a.CardID
	}
	return a.OptionID
}

// recordDeployProgress advances the deploy plan's notion of which card is
// in flight: picking a top-level "Deploy <card>" action starts it, and
// resolving the location decision that follows marks the planned
// instruction satisfied. Other decision types never touch the plan.
func (s *StaticBrain) recordDeployProgress(best evaluator.EvaluatedAction, req decision.Request) {
	if s.plan == nil || best.ActionType != evaluator.ActionDeploy {
		return
	}
	switch req.Type {
	case decision.TypeActionChoice, decision.TypeCardActionChoice:
		s.plan.Begin(best.BlueprintID)
	case decision.TypeCardSelection, decision.TypeArbitraryCards:
		if inFlight := s.plan.InFlight(); inFlight != "" {
			s.plan.MarkSatisfied(inFlight)
		}
	}
}

// scoreLookup indexes every evaluator opinion by the value it would post
// to the server, keeping the highest score seen for a given value so the
// safety net's non-selectable substitution can pick the best-scored
// selectable alternative instead of an arbitrary one.
func scoreLookup(all []evaluator.EvaluatedAction) map[string]float64 {
	if len(all) == 0 {
		return nil
	}
	scores := make(map[string]float64, len(all))
	for _, a := range all {
		key := a.OptionID
		if a.CardID != "" {
			key = a.CardID
		}
		if existing, ok := scores[key]; !ok || a.Score > existing {
			scores[key] = a.Score
		}
	}
	return scores
}

func isDeployPhase(phase string) bool {
	return strings.Contains(strings.ToUpper(phase), "DEPLOY")
}
