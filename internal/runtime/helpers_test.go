package runtime

import (
	"context"
	"sync"

	"github.com/aretw0/routechain/pkg/domain"
)

// recorder collects an ordered trace of hook and item activity.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// stubNode is a route handler whose hooks are plain fields.
type stubNode struct {
	name  string
	enter domain.HookFunc
	exit  domain.HookFunc
}

func (n *stubNode) NodeName() string { return n.name }

func (n *stubNode) Hook(name domain.HookName) domain.HookFunc {
	switch name {
	case domain.HookEnter:
		return n.enter
	case domain.HookExit:
		return n.exit
	}
	return nil
}

func node(name string) *stubNode { return &stubNode{name: name} }

// traced returns a hook that records "<hook>:<name>" and hands back items.
func traced(rec *recorder, label string, items ...domain.Item) domain.HookFunc {
	return func(ctx context.Context) (any, error) {
		rec.add(label)
		return domain.Chain(items), nil
	}
}

// mark returns an action that records label.
func mark(rec *recorder, label string) domain.ActionFunc {
	return func(ctx context.Context, n domain.Node) error {
		rec.add(label)
		return nil
	}
}

// sinkRecorder is an ErrorSink that keeps every report.
type sinkRecorder struct {
	mu   sync.Mutex
	errs []error
}

func (s *sinkRecorder) Report(ctx context.Context, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *sinkRecorder) list() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errs...)
}
