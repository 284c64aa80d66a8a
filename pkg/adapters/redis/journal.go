package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aretw0/routechain/internal/logging"
	"github.com/aretw0/routechain/pkg/domain"
	"github.com/aretw0/routechain/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Entry kinds.
const (
	KindSequence = "sequence"
	KindHook     = "hook"
	KindError    = "error"
)

// Entry is one journal record.
type Entry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Sequence  uint64    `json:"sequence,omitempty"`
	Route     string    `json:"route,omitempty"`
	Hook      string    `json:"hook,omitempty"`
	Status    string    `json:"status,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Journal appends sequencer activity to a Redis stream.
// It is an ErrorSink and provides lifecycle hooks.
type Journal struct {
	client *backend.Client
	stream string
	maxLen int64
	logger *slog.Logger
}

var _ ports.ErrorSink = (*Journal)(nil)

// Option configures a Journal.
type Option func(*Journal)

// WithStream sets the stream key (default "routechain:journal").
func WithStream(stream string) Option {
	return func(j *Journal) {
		j.stream = stream
	}
}

// WithMaxLen caps the stream length. Zero keeps every entry.
func WithMaxLen(n int64) Option {
	return func(j *Journal) {
		j.maxLen = n
	}
}

// WithLogger sets the logger used for append failures.
func WithLogger(logger *slog.Logger) Option {
	return func(j *Journal) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// New connects to a Redis server.
func New(addr, password string, db int, opts ...Option) *Journal {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a journal on an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Journal {
	j := &Journal{
		client: client,
		stream: "routechain:journal",
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Ping checks the connection.
func (j *Journal) Ping(ctx context.Context) error {
	return j.client.Ping(ctx).Err()
}

// Close releases the client.
func (j *Journal) Close() error {
	return j.client.Close()
}

// Append adds e to the stream and returns its ID.
func (j *Journal) Append(ctx context.Context, e Entry) (string, error) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	values := map[string]any{
		"kind":     e.Kind,
		"ts":       e.Timestamp.UTC().Format(time.RFC3339Nano),
		"sequence": strconv.FormatUint(e.Sequence, 10),
	}
	for k, v := range map[string]string{"route": e.Route, "hook": e.Hook, "status": e.Status, "error": e.Error} {
		if v != "" {
			values[k] = v
		}
	}
	id, err := j.client.XAdd(ctx, &backend.XAddArgs{
		Stream: j.stream,
		MaxLen: j.maxLen,
		Values: values,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("redis error appending to %s: %w", j.stream, err)
	}
	return id, nil
}

// Entries returns up to count of the most recent entries, oldest first.
// A count of zero or less returns the whole stream.
func (j *Journal) Entries(ctx context.Context, count int64) ([]Entry, error) {
	var (
		msgs []backend.XMessage
		err  error
	)
	if count > 0 {
		msgs, err = j.client.XRevRangeN(ctx, j.stream, "+", "-", count).Result()
		for i, k := 0, len(msgs)-1; i < k; i, k = i+1, k-1 {
			msgs[i], msgs[k] = msgs[k], msgs[i]
		}
	} else {
		msgs, err = j.client.XRange(ctx, j.stream, "-", "+").Result()
	}
	if err != nil {
		return nil, fmt.Errorf("redis error reading %s: %w", j.stream, err)
	}

	entries := make([]Entry, 0, len(msgs))
	for _, msg := range msgs {
		entries = append(entries, decode(msg))
	}
	return entries, nil
}

func decode(msg backend.XMessage) Entry {
	get := func(key string) string {
		s, _ := msg.Values[key].(string)
		return s
	}
	e := Entry{
		ID:     msg.ID,
		Kind:   get("kind"),
		Route:  get("route"),
		Hook:   get("hook"),
		Status: get("status"),
		Error:  get("error"),
	}
	e.Sequence, _ = strconv.ParseUint(get("sequence"), 10, 64)
	e.Timestamp, _ = time.Parse(time.RFC3339Nano, get("ts"))
	return e
}

// Report implements ports.ErrorSink.
func (j *Journal) Report(ctx context.Context, err error) {
	e := Entry{Kind: KindError, Error: err.Error()}
	e.Route, e.Hook = origin(err)
	j.record(ctx, e)
}

// LifecycleHooks returns hooks that journal finished sequences and hooks.
func (j *Journal) LifecycleHooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSequenceEnd: func(ctx context.Context, e *domain.SequenceEvent) {
			route := ""
			if len(e.Next) > 0 {
				route = e.Next[len(e.Next)-1]
			}
			j.record(ctx, Entry{
				Kind:      KindSequence,
				Timestamp: e.Timestamp,
				Sequence:  e.Sequence,
				Route:     route,
				Status:    string(e.Status),
			})
		},
		OnHookEnd: func(ctx context.Context, e *domain.HookEvent) {
			status := "ok"
			switch {
			case e.Superseded:
				status = "superseded"
			case e.Err != nil:
				status = "failed"
			}
			j.record(ctx, Entry{
				Kind:      KindHook,
				Timestamp: e.Timestamp,
				Sequence:  e.Sequence,
				Route:     e.Node,
				Hook:      string(e.Hook),
				Status:    status,
			})
		},
	}
}

func (j *Journal) record(ctx context.Context, e Entry) {
	if _, err := j.Append(ctx, e); err != nil {
		j.logger.Warn("journal append failed", "kind", e.Kind, "error", err)
	}
}

// origin extracts the route and hook a sequencer error belongs to.
func origin(err error) (route, hook string) {
	var (
		item *domain.ChainItemError
		hk   *domain.HookError
		pv   *domain.ProtocolViolationError
	)
	switch {
	case errors.As(err, &item):
		return item.Node, string(item.Hook)
	case errors.As(err, &hk):
		return hk.Node, string(hk.Hook)
	case errors.As(err, &pv):
		return pv.Node, string(pv.Hook)
	}
	return "", ""
}
