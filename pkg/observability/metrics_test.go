package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/routechain/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics("test", reg)
	require.NoError(t, err)

	hooks := m.LifecycleHooks()
	ctx := context.Background()

	hooks.OnSequenceEnd(ctx, &domain.SequenceEvent{Status: domain.RunCompleted})
	hooks.OnSequenceEnd(ctx, &domain.SequenceEvent{Status: domain.RunSuperseded})
	hooks.OnSequenceEnd(ctx, &domain.SequenceEvent{Status: domain.RunCompleted})

	hooks.OnHookEnd(ctx, &domain.HookEvent{Hook: domain.HookEnter, Duration: time.Millisecond})
	hooks.OnHookEnd(ctx, &domain.HookEvent{Hook: domain.HookEnter, Err: errors.New("x")})
	hooks.OnHookEnd(ctx, &domain.HookEvent{Hook: domain.HookExit, Superseded: true})

	hooks.OnItemEnd(ctx, &domain.ItemEvent{})
	hooks.OnItemEnd(ctx, &domain.ItemEvent{Skipped: true})
	hooks.OnItemEnd(ctx, &domain.ItemEvent{Err: errors.New("x")})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Sequences.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sequences.WithLabelValues("superseded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Hooks.WithLabelValues("onEnter", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Hooks.WithLabelValues("onEnter", OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Hooks.WithLabelValues("onExit", OutcomeSuperseded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Items.WithLabelValues(OutcomeSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Items.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.HookDuration))
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics("", reg)
	require.NoError(t, err)

	_, err = NewMetrics("", reg)
	assert.Error(t, err)
}

func TestNewMetrics_NilRegisterer(t *testing.T) {
	m, err := NewMetrics("", nil)
	require.NoError(t, err)
	assert.NotNil(t, m.LifecycleHooks().OnHookEnd)
}
