package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/routechain"
	"github.com/aretw0/routechain/pkg/domain"
	"github.com/aretw0/routechain/pkg/dsl"
	"github.com/aretw0/routechain/pkg/router"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *router.Router) {
	t.Helper()
	b := dsl.New()
	b.Route("inbox").OnEnter(domain.Do(func(context.Context, domain.Node) error { return nil }))
	b.Route("admin").Guard(func(context.Context, *router.Transition) error {
		return errors.New("forbidden")
	})
	r, err := b.Build()
	require.NoError(t, err)

	seq := routechain.Inject(r)
	return NewServer(r, seq, opts...), r
}

func TestServer_Visit(t *testing.T) {
	srv, r := newTestServer(t)
	ctx := context.Background()

	res, err := srv.handleVisit(ctx, mcp.CallToolRequest{}, map[string]interface{}{"url": "/inbox", "wait": true})
	require.NoError(t, err)
	assert.Equal(t, "inbox", res.Route)
	assert.Equal(t, "/inbox", res.URL)
	assert.Equal(t, "idle", res.State)
	assert.Equal(t, []string{"application", "inbox"}, res.Active)
	assert.Equal(t, "inbox", r.Current())
}

func TestServer_VisitErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	_, err := srv.handleVisit(ctx, mcp.CallToolRequest{}, map[string]interface{}{})
	assert.EqualError(t, err, "url is required")

	_, err = srv.handleVisit(ctx, mcp.CallToolRequest{}, map[string]interface{}{"url": "/nowhere"})
	assert.ErrorIs(t, err, router.ErrUnknownRoute)

	_, err = srv.handleVisit(ctx, mcp.CallToolRequest{}, map[string]interface{}{"url": "/admin"})
	assert.ErrorIs(t, err, router.ErrTransitionAborted)
}

func TestServer_StructuredHandlerReportsToolErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	var req mcp.CallToolRequest
	req.Params.Name = "visit"
	req.Params.Arguments = map[string]interface{}{"url": "/admin"}

	res, err := mcp.NewStructuredToolHandler(srv.handleVisit)(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_StateAndWait(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	_, err := srv.handleVisit(ctx, mcp.CallToolRequest{}, map[string]interface{}{"url": "/inbox"})
	require.NoError(t, err)

	res, err := srv.handleWait(ctx, mcp.CallToolRequest{}, map[string]interface{}{"timeout": "2s"})
	require.NoError(t, err)
	assert.Equal(t, []string{"application", "inbox"}, res.Active)

	state, err := srv.handleState(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, res, state)

	_, err = srv.handleWait(ctx, mcp.CallToolRequest{}, map[string]interface{}{"timeout": "soon"})
	assert.ErrorContains(t, err, "invalid timeout")
}

func TestServer_Graph(t *testing.T) {
	srv, _ := newTestServer(t, WithGraph(func() string { return "graph TD" }))

	res, err := srv.handleGraph(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "graph TD", text.Text)

	contents, err := srv.readGraph(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	resource, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, GraphURI, resource.URI)
	assert.Equal(t, "graph TD", resource.Text)
}

func TestServer_ListTools(t *testing.T) {
	cases := map[string]struct {
		opts  []Option
		tools []string
	}{
		"without graph": {tools: []string{"state", "visit", "wait"}},
		"with graph":    {opts: []Option{WithGraph(func() string { return "" })}, tools: []string{"graph", "state", "visit", "wait"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv, _ := newTestServer(t, tc.opts...)
			msg := srv.MCPServer().HandleMessage(context.Background(),
				json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))

			raw, err := json.Marshal(msg)
			require.NoError(t, err)
			var body struct {
				Result struct {
					Tools []struct {
						Name string `json:"name"`
					} `json:"tools"`
				} `json:"result"`
			}
			require.NoError(t, json.Unmarshal(raw, &body))

			var names []string
			for _, tool := range body.Result.Tools {
				names = append(names, tool.Name)
			}
			assert.ElementsMatch(t, tc.tools, names)
		})
	}
}
