package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/routechain"
	"github.com/aretw0/routechain/internal/logging"
	"github.com/aretw0/routechain/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// GraphURI is the resource under which the route graph is published.
const GraphURI = "routechain://graph"

// StateResponse mirrors GET /state of the HTTP adapter.
type StateResponse struct {
	Route  string   `json:"route" jsonschema_description:"Name of the current leaf route"`
	URL    string   `json:"url" jsonschema_description:"URL the router last settled on"`
	State  string   `json:"state" jsonschema_description:"Sequencer state: idle or running"`
	Active []string `json:"active" jsonschema_description:"Routes whose onEnter chains completed, outermost first"`
}

// Server exposes a router and its sequencer as MCP tools.
type Server struct {
	nav       ports.Navigator
	seq       ports.Sequencer
	graph     func() string
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithGraph publishes the graph tool and resource from fn.
func WithGraph(fn func() string) Option {
	return func(s *Server) { s.graph = fn }
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates an MCP server for a navigator and its sequencer.
func NewServer(nav ports.Navigator, seq ports.Sequencer, opts ...Option) *Server {
	s := &Server{
		nav:       nav,
		seq:       seq,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("routechain-mcp", strings.TrimSpace(routechain.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio speaks JSON-RPC over in and out until ctx is cancelled or in closes.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	s.logger.Info("MCP Server listening (stdio)")
	return stdio.Listen(ctx, in, out)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", s.corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", s.corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := sseServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("SSE sessions did not close", "error", err)
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("CORS Middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: visit
	visitTool := mcp.NewTool("visit",
		mcp.WithDescription("Navigate the router to a URL. Hooks run in the background unless wait is set."),
		mcp.WithString("url", mcp.Required(), mcp.Description("URL to visit, e.g. /posts/42?tab=comments")),
		mcp.WithBoolean("wait", mcp.Description("Wait for the resulting hook sequence before answering")),
		mcp.WithOutputSchema[StateResponse](),
	)
	s.mcpServer.AddTool(visitTool, mcp.NewStructuredToolHandler(s.handleVisit))

	// TOOL: state
	stateTool := mcp.NewTool("state",
		mcp.WithDescription("Report the current route and the sequencer state."),
		mcp.WithOutputSchema[StateResponse](),
	)
	s.mcpServer.AddTool(stateTool, mcp.NewStructuredToolHandler(s.handleState))

	// TOOL: wait
	waitTool := mcp.NewTool("wait",
		mcp.WithDescription("Block until every started hook sequence has settled."),
		mcp.WithString("timeout", mcp.Description("Give up after this duration, e.g. 5s (optional)")),
		mcp.WithOutputSchema[StateResponse](),
	)
	s.mcpServer.AddTool(waitTool, mcp.NewStructuredToolHandler(s.handleWait))

	if s.graph == nil {
		return
	}

	// TOOL: graph
	s.mcpServer.AddTool(mcp.NewTool("graph",
		mcp.WithDescription("Get the route tree as a Mermaid graph with the active path highlighted."),
	), s.handleGraph)
}

// Handler methods for structured tools

func (s *Server) handleVisit(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	url, _ := args["url"].(string)
	if url == "" {
		return StateResponse{}, errors.New("url is required")
	}
	wait, _ := args["wait"].(bool)

	if err := s.nav.Visit(ctx, url); err != nil {
		s.logger.Warn("MCP Visit failed", "url", url, "error", err)
		return StateResponse{}, fmt.Errorf("visit failed: %w", err)
	}
	if wait {
		if err := s.seq.Wait(ctx); err != nil {
			return StateResponse{}, fmt.Errorf("wait failed: %w", err)
		}
	}
	return s.state(), nil
}

func (s *Server) handleState(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	return s.state(), nil
}

func (s *Server) handleWait(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	if raw, _ := args["timeout"].(string); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return StateResponse{}, fmt.Errorf("invalid timeout %q: %w", raw, err)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := s.seq.Wait(ctx); err != nil {
		return StateResponse{}, fmt.Errorf("wait failed: %w", err)
	}
	return s.state(), nil
}

func (s *Server) handleGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.graph()), nil
}

func (s *Server) state() StateResponse {
	return StateResponse{
		Route:  s.nav.Current(),
		URL:    s.nav.CurrentURL(),
		State:  s.seq.State().String(),
		Active: s.seq.ActivePath().Names(),
	}
}

func (s *Server) registerResources() {
	if s.graph == nil {
		return
	}
	// EXPOSE: routechain://graph
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Route Graph",
		mcp.WithMIMEType("text/plain"),
	), s.readGraph)
}

func (s *Server) readGraph(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphURI,
			MIMEType: "text/plain",
			Text:     s.graph(),
		},
	}, nil
}
