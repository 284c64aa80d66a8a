package ports

import (
	"context"

	"github.com/aretw0/routechain/pkg/domain"
)

// Navigator is the router side of a control surface.
type Navigator interface {
	Visit(ctx context.Context, url string) error
	Current() string
	CurrentURL() string
}

// Sequencer is the hook side of a control surface.
type Sequencer interface {
	State() domain.ExecutionState
	ActivePath() domain.Path
	Wait(ctx context.Context) error
}
