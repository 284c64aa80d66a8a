package ports

import "context"

// ErrorSink receives failures raised by hooks and chain items.
// Report must not panic; the sequencer keeps running regardless of what it does.
type ErrorSink interface {
	Report(ctx context.Context, err error)
}

// ErrorSinkFunc adapts a function to an ErrorSink.
type ErrorSinkFunc func(ctx context.Context, err error)

func (f ErrorSinkFunc) Report(ctx context.Context, err error) { f(ctx, err) }

// MultiSink fans a failure out to every non-nil sink.
func MultiSink(sinks ...ErrorSink) ErrorSink {
	filtered := make([]ErrorSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	switch len(filtered) {
	case 0:
		return nil
	case 1:
		return filtered[0]
	}
	return multiSink(filtered)
}

type multiSink []ErrorSink

func (m multiSink) Report(ctx context.Context, err error) {
	for _, s := range m {
		s.Report(ctx, err)
	}
}
