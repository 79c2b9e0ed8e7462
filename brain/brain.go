// Package brain defines the pluggable decision-making contract and ships
// one reference implementation built on the evaluator panel.
package brain

import (
	"github.com/SWCCGArena/rando-python/board"
	"github.com/SWCCGArena/rando-python/decision"
)

// Brain is implemented by anything capable of answering decisions for one
// game. A worker owns exactly one Brain for the lifetime of a game.
type Brain interface {
	MakeDecision(b *board.BoardState, req decision.Request) decision.Response
	OnGameStart(mySide, opponentName string)
	OnGameEnd(won bool, finalState *board.BoardState)
	Name() string
}
