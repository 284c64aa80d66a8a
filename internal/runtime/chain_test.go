package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/routechain/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flipToken expires after a fixed number of Valid checks.
type flipToken struct {
	left int
}

func (t *flipToken) Valid() bool {
	if t.left <= 0 {
		return false
	}
	t.left--
	return true
}

func (t *flipToken) Sequence() uint64 { return 7 }

func TestChainRunner_RunsItemsInOrder(t *testing.T) {
	rec := &recorder{}
	ref := domain.HookRef{Node: node("A"), Hook: domain.HookEnter}

	err := NewChainRunner().Run(context.Background(), Background, ref, domain.Chain{
		domain.Do(mark(rec, "one")),
		domain.Do(mark(rec, "two")),
		domain.Do(mark(rec, "three")),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, rec.list())
}

func TestChainRunner_Conditions(t *testing.T) {
	rec := &recorder{}
	ref := domain.HookRef{Node: node("A"), Hook: domain.HookEnter}
	calls := 0
	yes := func(context.Context, domain.Node) (bool, error) { calls++; return true, nil }
	no := func(context.Context, domain.Node) (bool, error) { calls++; return false, nil }

	var skipped []bool
	runner := NewChainRunner(WithLifecycleHooks(domain.LifecycleHooks{
		OnItemEnd: func(_ context.Context, ev *domain.ItemEvent) { skipped = append(skipped, ev.Skipped) },
	}))

	err := runner.Run(context.Background(), Background, ref, domain.Chain{
		domain.When(yes, mark(rec, "taken")),
		domain.When(no, mark(rec, "skipped")),
		domain.Do(mark(rec, "after")),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"taken", "after"}, rec.list())
	assert.Equal(t, 2, calls, "each condition is evaluated exactly once")
	assert.Equal(t, []bool{false, true, false}, skipped)
}

func TestChainRunner_FailureStopsChain(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name  string
		item  domain.Item
		phase domain.ItemPhase
		cause error
	}{
		{
			name:  "action error",
			item:  domain.Do(func(context.Context, domain.Node) error { return boom }).Named("save"),
			phase: domain.PhaseAction,
			cause: boom,
		},
		{
			name: "condition error",
			item: domain.When(
				func(context.Context, domain.Node) (bool, error) { return false, boom },
				func(context.Context, domain.Node) error { return nil },
			).Named("save"),
			phase: domain.PhaseCondition,
			cause: boom,
		},
		{
			name:  "action panic",
			item:  domain.Do(func(context.Context, domain.Node) error { panic("kaboom") }).Named("save"),
			phase: domain.PhaseAction,
			cause: domain.ErrHookPanic,
		},
		{
			name:  "missing action",
			item:  domain.Item{Name: "save"},
			phase: domain.PhaseAction,
			cause: domain.ErrProtocolViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			ref := domain.HookRef{Node: node("A"), Hook: domain.HookEnter}

			err := NewChainRunner().Run(context.Background(), Background, ref, domain.Chain{
				domain.Do(mark(rec, "first")),
				tt.item,
				domain.Do(mark(rec, "never")),
			})

			var itemErr *domain.ChainItemError
			require.ErrorAs(t, err, &itemErr)
			assert.Equal(t, "A", itemErr.Node)
			assert.Equal(t, domain.HookEnter, itemErr.Hook)
			assert.Equal(t, 1, itemErr.Index)
			assert.Equal(t, "save", itemErr.Item)
			assert.Equal(t, tt.phase, itemErr.Phase)
			assert.ErrorIs(t, err, domain.ErrChainItemFailed)
			assert.ErrorIs(t, err, tt.cause)
			assert.Equal(t, []string{"first"}, rec.list())
		})
	}
}

func TestChainRunner_StopsWhenTokenExpires(t *testing.T) {
	rec := &recorder{}
	ref := domain.HookRef{Node: node("A"), Hook: domain.HookEnter}

	err := NewChainRunner().Run(context.Background(), &flipToken{left: 2}, ref, domain.Chain{
		domain.Do(mark(rec, "one")),
		domain.Do(mark(rec, "two")),
		domain.Do(mark(rec, "three")),
	})
	assert.ErrorIs(t, err, domain.ErrSuperseded)
	assert.Equal(t, []string{"one", "two"}, rec.list())
}

func TestChainRunner_EmptyChain(t *testing.T) {
	ref := domain.HookRef{Node: node("A"), Hook: domain.HookExit}
	assert.NoError(t, NewChainRunner().Run(context.Background(), &flipToken{}, ref, nil))
}
