package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	var got []string
	r.Register("notify", func(_ context.Context, route string, args map[string]any) error {
		got = append(got, route+":"+args["to"].(string))
		return nil
	})
	r.Register("boom", func(context.Context, string, map[string]any) error {
		return errors.New("boom")
	})

	assert.Equal(t, []string{"boom", "notify"}, r.Names())

	require.NoError(t, r.Execute(context.Background(), "notify", "posts", map[string]any{"to": "ops"}))
	assert.Equal(t, []string{"posts:ops"}, got)

	assert.EqualError(t, r.Execute(context.Background(), "boom", "posts", nil), "boom")
	assert.ErrorIs(t, r.Execute(context.Background(), "missing", "posts", nil), ErrActionNotFound)
}

func TestRegistry_Overwrite(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Register("a", func(context.Context, string, map[string]any) error { calls = 1; return nil })
	r.Register("a", func(context.Context, string, map[string]any) error { calls = 2; return nil })

	require.NoError(t, r.Execute(context.Background(), "a", "x", nil))
	assert.Equal(t, 2, calls)
	assert.Len(t, r.Names(), 1)
}

func TestRegistry_NilLookup(t *testing.T) {
	var r *Registry
	_, ok := r.Lookup("a")
	assert.False(t, ok)
}
