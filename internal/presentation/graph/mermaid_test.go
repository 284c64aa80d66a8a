package graph_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/routechain/internal/presentation/graph"
	"github.com/aretw0/routechain/pkg/domain"
	"github.com/aretw0/routechain/pkg/router"
)

func testMap() *router.Map {
	return router.NewMap(func(r *router.Mapper) {
		r.Route("posts", func(r *router.Mapper) {
			r.Route("new-post")
		})
		r.Mount("blog", func(r *router.Mapper) {
			r.Route("index")
		})
	})
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Shapes",
			contains: []string{
				`application(("application"))`,
				`posts["posts <br/> /posts"]`,
				`blog[["blog <br/> /blog"]]`,
			},
		},
		{
			name: "ID Sanitization",
			contains: []string{
				`posts_new_post["posts.new-post <br/> /posts/new-post"]`,
				`blog_index["blog.index <br/> /blog/index"]`,
			},
		},
		{
			name: "Edges",
			contains: []string{
				"application --> posts",
				"posts --> posts_new_post",
				"application -.-> blog",
				"blog --> blog_index",
			},
			excludes: []string{"classDef"},
		},
		{
			name: "Overlay",
			overlay: &graph.GraphOverlay{
				Active:  []string{"application", "posts", "posts", "posts.new-post"},
				Current: "posts.new-post",
				Hooks:   map[string][]string{"posts": {"enter", "guard"}},
			},
			contains: []string{
				`posts["posts <br/> /posts <br/> enter, guard"]`,
				"class application active;",
				"class posts active;",
				"class posts_new_post current;",
			},
			excludes: []string{"class posts_new_post active;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(testMap(), tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnwanted substring: %v", got, unwanted)
				}
			}
			if strings.Count(got, "class posts active;") > 1 {
				t.Errorf("active class applied twice:\n%v", got)
			}
		})
	}
}

func TestOverlayFor(t *testing.T) {
	r := router.New(testMap())
	r.Handler("posts").
		OnEnterChain(domain.Do(func(context.Context, domain.Node) error { return nil })).
		SetBeforeModel(func(context.Context, *router.Transition) error { return nil })
	r.Handler("blog.index").SetOnExit(func(context.Context) (any, error) { return nil, nil })

	if err := r.Visit(context.Background(), "/posts"); err != nil {
		t.Fatalf("Visit() error = %v", err)
	}
	active, err := r.PathOf("posts")
	if err != nil {
		t.Fatalf("PathOf() error = %v", err)
	}

	overlay := graph.OverlayFor(r, active)
	if overlay.Current != "posts" {
		t.Errorf("Current = %q, want posts", overlay.Current)
	}
	if got := strings.Join(overlay.Hooks["posts"], ","); got != "enter,guard" {
		t.Errorf("Hooks[posts] = %q, want enter,guard", got)
	}
	if got := strings.Join(overlay.Hooks["blog.index"], ","); got != "exit" {
		t.Errorf("Hooks[blog.index] = %q, want exit", got)
	}
	if _, ok := overlay.Hooks["application"]; ok {
		t.Errorf("application should carry no hooks")
	}
	if got := strings.Join(overlay.Active, ","); got != "application,posts" {
		t.Errorf("Active = %q", got)
	}
}
