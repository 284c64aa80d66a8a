package domain

import (
	"context"
	"time"
)

// SequenceEvent describes one sequence (the hook run of a transition).
type SequenceEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Sequence  uint64        `json:"sequence"`
	Previous  []string      `json:"previous"`
	Next      []string      `json:"next"`
	Exits     int           `json:"exits"`
	Enters    int           `json:"enters"`
	Status    RunStatus     `json:"status"`
	Failures  int           `json:"failures,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// HookEvent describes one hook invocation.
type HookEvent struct {
	Timestamp  time.Time     `json:"timestamp"`
	Sequence   uint64        `json:"sequence"`
	Node       string        `json:"node"`
	Hook       HookName      `json:"hook"`
	Items      int           `json:"items"`
	Superseded bool          `json:"superseded,omitempty"`
	Err        error         `json:"-"`
	Duration   time.Duration `json:"duration,omitempty"`
}

// ItemEvent describes one chain item after it settled.
type ItemEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Sequence  uint64        `json:"sequence"`
	Node      string        `json:"node"`
	Hook      HookName      `json:"hook"`
	Index     int           `json:"index"`
	Name      string        `json:"name"`
	Skipped   bool          `json:"skipped,omitempty"`
	Err       error         `json:"-"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// LifecycleHooks defines callbacks for sequencer observability.
// Any field may be nil.
type LifecycleHooks struct {
	OnSequenceStart func(context.Context, *SequenceEvent)
	OnSequenceEnd   func(context.Context, *SequenceEvent)
	OnHookStart     func(context.Context, *HookEvent)
	OnHookEnd       func(context.Context, *HookEvent)
	OnItemEnd       func(context.Context, *ItemEvent)
}
