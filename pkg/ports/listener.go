package ports

import (
	"context"

	"github.com/aretw0/routechain/pkg/domain"
)

// TransitionListener is notified by a router around each transition.
//
// WillTransition fires when a transition starts; it must not block.
// DidTransition fires once the transition has committed next as the active path.
// A transition that aborts after WillTransition never calls DidTransition.
type TransitionListener interface {
	WillTransition(ctx context.Context)
	DidTransition(ctx context.Context, next domain.Path)
}

// TransitionListenerFuncs adapts plain functions to a TransitionListener.
// Nil fields are ignored.
type TransitionListenerFuncs struct {
	Will func(ctx context.Context)
	Did  func(ctx context.Context, next domain.Path)
}

func (f TransitionListenerFuncs) WillTransition(ctx context.Context) {
	if f.Will != nil {
		f.Will(ctx)
	}
}

func (f TransitionListenerFuncs) DidTransition(ctx context.Context, next domain.Path) {
	if f.Did != nil {
		f.Did(ctx, next)
	}
}
