package brain

import (
	"testing"

	"github.com/SWCCGArena/rando-python/board"
	"github.com/SWCCGArena/rando-python/card"
	"github.com/SWCCGArena/rando-python/config"
	"github.com/SWCCGArena/rando-python/decision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticBrainAlwaysProducesAResponse(t *testing.T) {
	reg := card.NewRegistryForTesting()
	b := NewStaticBrain(reg, config.Config{DeployThreshold: 6})
	state := board.New()

	req := decision.Request{
		ID: "1", Type: decision.TypeCardSelection, NoPass: true,
		Options: []decision.Option{{ID: "a", CardID: "a", Selectable: true}},
	}

	resp := b.MakeDecision(state, req)
	require.Equal(t, "1", resp.DecisionID)
	assert.Equal(t, "a", resp.Value)
}

func TestStaticBrainPassesWhenNothingToDo(t *testing.T) {
	reg := card.NewRegistryForTesting()
	b := NewStaticBrain(reg, config.Config{DeployThreshold: 6})
	state := board.New()

	req := decision.Request{ID: "2", Type: decision.TypeActionChoice, NoPass: false, Min: 0}
	resp := b.MakeDecision(state, req)
	assert.Equal(t, "", resp.Value)
}

func TestStaticBrainBreaksLoopAfterThreeIdenticalDecisions(t *testing.T) {
	reg := card.NewRegistryForTesting()
	b := NewStaticBrain(reg, config.Config{DeployThreshold: 6})
	state := board.New()

	req := decision.Request{
		ID: "3", Type: decision.TypeCardSelection, NoPass: true,
		Options: []decision.Option{
			{ID: "a", CardID: "a", Selectable: true},
			{ID: "b", CardID: "b", Selectable: true},
		},
	}

	var last decision.Response
	for i := 0; i < 5; i++ {
		last = b.MakeDecision(state, req)
	}
	assert.Contains(t, []string{"a", "b"}, last.Value)
}
