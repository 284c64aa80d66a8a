package runtime

import "github.com/aretw0/routechain/pkg/domain"

// Token is the cancellation handle a sequence polls between steps.
// Valid turns false for good once a newer transition begins.
type Token interface {
	Valid() bool
	Sequence() uint64
}

type sequenceToken struct {
	c   *Controller
	seq uint64
}

func (t sequenceToken) Valid() bool {
	return t.c.current.Load() == t.seq && domain.ExecutionState(t.c.state.Load()) == domain.StateRunning
}

func (t sequenceToken) Sequence() uint64 { return t.seq }

// Background is a token that never expires, for running batches or chains
// outside a controller.
var Background Token = backgroundToken{}

type backgroundToken struct{}

func (backgroundToken) Valid() bool      { return true }
func (backgroundToken) Sequence() uint64 { return 0 }
