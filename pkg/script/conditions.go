package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/routechain/pkg/domain"
	"github.com/aretw0/routechain/pkg/router"
)

// ParseCondition compiles a condition expression. The empty expression and
// "always" compile to nil, which chains treat as unconditional.
func ParseCondition(expr string) (domain.ConditionFunc, error) {
	expr = strings.TrimSpace(expr)
	if negated, ok := strings.CutPrefix(expr, "!"); ok {
		inner, err := parsePositive(strings.TrimSpace(negated))
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, n domain.Node) (bool, error) {
			ok, err := inner(ctx, n)
			return !ok, err
		}, nil
	}
	if expr == "" || expr == "always" {
		return nil, nil
	}
	return parsePositive(expr)
}

func parsePositive(expr string) (domain.ConditionFunc, error) {
	switch {
	case expr == "" || expr == "always":
		return func(context.Context, domain.Node) (bool, error) { return true, nil }, nil
	case expr == "never":
		return func(context.Context, domain.Node) (bool, error) { return false, nil }, nil
	case strings.HasPrefix(expr, "query:"):
		key := strings.TrimPrefix(expr, "query:")
		if key == "" {
			return nil, fmt.Errorf("%w: %q has no key", ErrUnknownCondition, expr)
		}
		return func(ctx context.Context, _ domain.Node) (bool, error) {
			t, ok := router.TransitionFromContext(ctx)
			return ok && t.QueryValue(key) != "", nil
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCondition, expr)
}

// holds evaluates cond, treating nil as true.
func holds(ctx context.Context, cond domain.ConditionFunc, n domain.Node) (bool, error) {
	if cond == nil {
		return true, nil
	}
	return cond(ctx, n)
}
