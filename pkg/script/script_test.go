package script

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/routechain"
	"github.com/aretw0/routechain/internal/logging"
	"github.com/aretw0/routechain/pkg/domain"
	"github.com/aretw0/routechain/pkg/registry"
	"github.com/aretw0/routechain/pkg/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCondition(t *testing.T) {
	withQuery := router.WithTransition(context.Background(), &router.Transition{
		Query: map[string][]string{"draft": {"1"}},
	})
	bare := context.Background()

	tests := []struct {
		expr string
		ctx  context.Context
		want bool
	}{
		{expr: "never", ctx: bare, want: false},
		{expr: "!never", ctx: bare, want: true},
		{expr: "!always", ctx: bare, want: false},
		{expr: "query:draft", ctx: withQuery, want: true},
		{expr: "query:draft", ctx: bare, want: false},
		{expr: "query:other", ctx: withQuery, want: false},
		{expr: "!query:draft", ctx: withQuery, want: false},
		{expr: " ! query:other ", ctx: withQuery, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			cond, err := ParseCondition(tt.expr)
			require.NoError(t, err)
			require.NotNil(t, cond)
			got, err := cond(tt.ctx, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCondition_Always(t *testing.T) {
	for _, expr := range []string{"", "always", "  "} {
		cond, err := ParseCondition(expr)
		require.NoError(t, err)
		assert.Nil(t, cond)
	}
}

func TestParseCondition_Unknown(t *testing.T) {
	for _, expr := range []string{"sometimes", "query:", "!maybe"} {
		_, err := ParseCondition(expr)
		assert.ErrorIs(t, err, ErrUnknownCondition, expr)
	}
}

func TestValidate(t *testing.T) {
	routes := []RouteSpec{
		{Name: "A", Enter: []ItemSpec{{Do: "teleport"}}},
		{Name: "A"},
		{Name: "B", Exit: []ItemSpec{{Do: "redirect", Args: map[string]any{"to": "Z"}}}},
		{Name: "C", Enter: []ItemSpec{{Do: "log", When: "perhaps"}}},
		{Name: "D", Enter: []ItemSpec{{Do: "sleep", Args: map[string]any{"duration": "soon"}}}},
		{Name: "E", Enter: []ItemSpec{{Do: "fail", Args: map[string]any{"msg": "typo"}}}},
		{Name: "F", Guard: &GuardSpec{Redirect: "nowhere"}},
	}
	err := Validate(routes, []EngineSpec{{Mount: "x.y"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.ErrorIs(t, err, ErrUnknownCondition)
	assert.ErrorIs(t, err, ErrInvalidArgs)
	assert.ErrorIs(t, err, router.ErrUnknownRoute)
	assert.Contains(t, err.Error(), `route "A" declared twice`)
	assert.Contains(t, err.Error(), `engine mount "x.y"`)

	assert.NoError(t, Validate([]RouteSpec{
		{Name: "posts.show", Enter: []ItemSpec{{Do: "redirect", Args: map[string]any{"to": "posts"}}}},
		{Name: "application", Enter: []ItemSpec{{Do: "log", Args: map[string]any{"message": "hi", "level": "debug"}}}},
	}, []EngineSpec{{Mount: "admin", Routes: []RouteSpec{{Name: "users"}}}}))
}

func run(t *testing.T, r *router.Router, seq *routechain.Sequencer, url string) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := r.Visit(ctx, url)
	require.NoError(t, seq.Wait(ctx))
	return err
}

func TestCompiler_Build(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, slog.LevelDebug)

	routes := []RouteSpec{
		{
			Name: "A",
			Enter: []ItemSpec{
				{Do: "log", Args: map[string]any{"message": "entering A"}},
				{Do: "redirect", When: "query:legacy", Args: map[string]any{"to": "B"}},
				{Name: "after", Do: "log", Args: map[string]any{"message": "after redirect"}},
			},
			Exit: []ItemSpec{
				{Do: "fail", Args: map[string]any{"message": "exit broke"}},
				{Do: "log", Args: map[string]any{"message": "never logged"}},
			},
		},
		{Name: "B"},
		{Name: "private", Guard: &GuardSpec{When: "!query:token", Reject: "login required"}},
		{Name: "old", Guard: &GuardSpec{Redirect: "B"}},
	}
	engines := []EngineSpec{{
		Mount: "E",
		Routes: []RouteSpec{
			{Name: "application", Enter: []ItemSpec{{Do: "log", Args: map[string]any{"message": "engine up"}}}},
			{Name: "A"},
		},
	}}

	r, err := NewCompiler(WithLogger(logger)).Build(routes, engines)
	require.NoError(t, err)

	var failures []error
	seq := routechain.Inject(r, routechain.WithErrorHandler(func(_ context.Context, err error) {
		failures = append(failures, err)
	}))

	require.NoError(t, run(t, r, seq, "/A"))
	assert.Contains(t, buf.String(), "entering A")
	assert.Contains(t, buf.String(), "after redirect")

	require.NoError(t, run(t, r, seq, "/B"))
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], ErrScriptFailure)
	assert.NotContains(t, buf.String(), "never logged")

	buf.Reset()
	require.NoError(t, run(t, r, seq, "/A?legacy=1"))
	assert.Equal(t, "B", r.Current())
	assert.NotContains(t, buf.String(), "after redirect")

	err = run(t, r, seq, "/private")
	assert.ErrorIs(t, err, ErrRejected)
	require.NoError(t, run(t, r, seq, "/private?token=abc"))
	assert.Equal(t, "private", r.Current())

	require.NoError(t, run(t, r, seq, "/old"))
	assert.Equal(t, "B", r.Current())

	require.NoError(t, run(t, r, seq, "/E/A"))
	assert.Contains(t, buf.String(), "engine up")
	assert.NotNil(t, r.Handler("E").Hook(domain.HookEnter))
}

func TestSleepHonoursContext(t *testing.T) {
	action, _, err := NewCompiler().compileAction(ItemSpec{Do: "sleep", Args: map[string]any{"duration": "1h"}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, action(ctx, router.NewHandler("A")), context.Canceled)
}

func TestRedirectWithoutRouter(t *testing.T) {
	action, target, err := NewCompiler().compileAction(ItemSpec{Do: "redirect", Args: map[string]any{"to": "B"}})
	require.NoError(t, err)
	assert.Equal(t, "B", target)
	assert.ErrorIs(t, action(context.Background(), router.NewHandler("A")), ErrNoRouter)
}

func TestCompiler_RegisteredActions(t *testing.T) {
	reg := registry.NewRegistry()
	var calls []string
	reg.Register("notify", func(_ context.Context, route string, args map[string]any) error {
		calls = append(calls, route+":"+args["channel"].(string))
		return nil
	})
	reg.Register("log", func(context.Context, string, map[string]any) error {
		calls = append(calls, "shadowed")
		return nil
	})

	c := NewCompiler(WithActions(reg))
	action, _, err := c.compileAction(ItemSpec{Do: "notify", Args: map[string]any{"channel": "ops"}})
	require.NoError(t, err)
	require.NoError(t, action(context.Background(), router.NewHandler("posts")))

	builtin, _, err := c.compileAction(ItemSpec{Do: "log", Args: map[string]any{"message": "hi"}})
	require.NoError(t, err)
	require.NoError(t, builtin(context.Background(), router.NewHandler("posts")))
	assert.Equal(t, []string{"posts:ops"}, calls, "built-in actions take precedence")

	_, _, err = NewCompiler().compileAction(ItemSpec{Do: "notify"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}
