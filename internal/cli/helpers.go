package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/atomic"
)

// SignalContext is cancelled by SIGINT, SIGTERM or Stop, and remembers which
// signal ended it so commands can drain the sequencer and report it.
type SignalContext struct {
	context.Context
	stop   context.CancelFunc
	signal atomic.String
}

// NewSignalContext derives a SignalContext from parent.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, stop: cancel}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			sc.signal.Store(sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Stop cancels the context and releases the signal handler.
func (sc *SignalContext) Stop() {
	sc.stop()
}

// Signal names the signal that cancelled the context, or "" when none did.
func (sc *SignalContext) Signal() string {
	return sc.signal.Load()
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
