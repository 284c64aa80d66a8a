package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/routechain/pkg/domain"
	"github.com/aretw0/routechain/pkg/router"
	"github.com/mitchellh/mapstructure"
)

var (
	// ErrUnknownAction is returned for items whose "do" names no action.
	ErrUnknownAction = errors.New("unknown action")
	// ErrUnknownCondition is returned for unparsable "when" expressions.
	ErrUnknownCondition = errors.New("unknown condition")
	// ErrInvalidArgs is returned when an action's args do not decode.
	ErrInvalidArgs = errors.New("invalid action args")
	// ErrScriptFailure is matched by the errors of the fail action.
	ErrScriptFailure = errors.New("script failure")
	// ErrRejected is matched by the errors of rejecting guards.
	ErrRejected = errors.New("rejected by guard")
	// ErrNoRouter is returned by redirect when the context carries no transition.
	ErrNoRouter = errors.New("no router in context")
)

type logArgs struct {
	Message string `mapstructure:"message"`
	Level   string `mapstructure:"level"`
}

type redirectArgs struct {
	To string `mapstructure:"to"`
}

type failArgs struct {
	Message string `mapstructure:"message"`
}

type sleepArgs struct {
	Duration time.Duration `mapstructure:"duration"`
}

func decodeArgs(action string, in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("%w for %s: %w", ErrInvalidArgs, action, err)
	}
	return nil
}

// compileAction builds the action for an item. redirect targets are returned
// so the compiler can check them against the declared routes.
func (c *Compiler) compileAction(item ItemSpec) (domain.ActionFunc, string, error) {
	switch item.Do {
	case "log":
		var args logArgs
		if err := decodeArgs(item.Do, item.Args, &args); err != nil {
			return nil, "", err
		}
		level := slog.LevelInfo
		if args.Level != "" {
			if err := level.UnmarshalText([]byte(args.Level)); err != nil {
				return nil, "", fmt.Errorf("%w for log: %w", ErrInvalidArgs, err)
			}
		}
		return func(ctx context.Context, n domain.Node) error {
			c.logger.Log(ctx, level, args.Message, "route", n.NodeName())
			return nil
		}, "", nil

	case "redirect":
		var args redirectArgs
		if err := decodeArgs(item.Do, item.Args, &args); err != nil {
			return nil, "", err
		}
		if args.To == "" {
			return nil, "", fmt.Errorf("%w for redirect: missing \"to\"", ErrInvalidArgs)
		}
		return func(ctx context.Context, _ domain.Node) error {
			r := router.FromContext(ctx)
			if r == nil {
				return ErrNoRouter
			}
			return r.TransitionTo(ctx, args.To)
		}, args.To, nil

	case "fail":
		var args failArgs
		if err := decodeArgs(item.Do, item.Args, &args); err != nil {
			return nil, "", err
		}
		msg := args.Message
		if msg == "" {
			msg = "fail action"
		}
		return func(context.Context, domain.Node) error {
			return fmt.Errorf("%w: %s", ErrScriptFailure, msg)
		}, "", nil

	case "sleep":
		var args sleepArgs
		if err := decodeArgs(item.Do, item.Args, &args); err != nil {
			return nil, "", err
		}
		return func(ctx context.Context, _ domain.Node) error {
			timer := time.NewTimer(args.Duration)
			defer timer.Stop()
			select {
			case <-timer.C:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}, "", nil
	}
	if fn, ok := c.actions.Lookup(item.Do); ok {
		args := item.Args
		return func(ctx context.Context, n domain.Node) error {
			return fn(ctx, n.NodeName(), args)
		}, "", nil
	}
	return nil, "", fmt.Errorf("%w: %q", ErrUnknownAction, item.Do)
}
