package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/routechain/pkg/adapters/http"
)

// ShutdownTimeout bounds how long Serve waits for in-flight requests and how
// long commands let the sequencer drain before exit.
const ShutdownTimeout = 5 * time.Second

// Handler returns the HTTP control surface for the app. streams must be the
// manager whose hooks were passed to NewApp, or nil.
func (a *App) Handler(streams *httpAdapter.StreamManager) http.Handler {
	opts := []httpAdapter.Option{
		httpAdapter.WithLogger(a.Logger),
		httpAdapter.WithStreams(streams),
		httpAdapter.WithGraph(a.Graph),
	}
	if a.Registry != nil {
		opts = append(opts, httpAdapter.WithMetrics(a.Registry))
	}
	if a.Journal != nil {
		opts = append(opts, httpAdapter.WithJournal(a.Journal))
	}
	return httpAdapter.NewServer(a.Router, a.Sequencer, opts...).Handler()
}

// Serve runs the control surface on addr until ctx is cancelled.
func (a *App) Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end with ctx instead of holding up shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		a.Logger.Info("server_start", "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn("graceful shutdown did not complete", "timeout", ShutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		a.Logger.Info("server_stop")
		return nil
	}
}
