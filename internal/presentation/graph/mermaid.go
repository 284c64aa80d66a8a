package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/routechain/pkg/domain"
	"github.com/aretw0/routechain/pkg/router"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	// Active lists the routes whose enter hooks have run, outermost first.
	Active  []string
	Current string
	// Hooks maps a route name to the hooks it declares ("enter", "exit", "guard").
	Hooks map[string][]string
}

// OverlayFor captures the hooks installed on r and the given active path.
func OverlayFor(r *router.Router, active domain.Path) *GraphOverlay {
	overlay := &GraphOverlay{
		Active:  active.Names(),
		Current: r.Current(),
		Hooks:   make(map[string][]string),
	}
	for _, name := range r.Map().Names() {
		h, err := r.Lookup(name)
		if err != nil {
			continue
		}
		var tags []string
		if h.Hook(domain.HookEnter) != nil {
			tags = append(tags, "enter")
		}
		if h.Hook(domain.HookExit) != nil {
			tags = append(tags, "exit")
		}
		if h.BeforeModel() != nil {
			tags = append(tags, "guard")
		}
		if len(tags) > 0 {
			overlay.Hooks[name] = tags
		}
	}
	return overlay
}

// GenerateMermaid produces a Mermaid flowchart of the route tree.
// It applies semantic styling:
// - Application: ((Circle))
// - Engine mount: [[Subroutine]]
// - Default: [Rectangle]
// Edges into an engine are dotted. Overlay styles mark active and current routes.
func GenerateMermaid(m *router.Map, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	m.Walk(func(def *router.RouteDef, _ int) {
		safeID := sanitizeMermaidID(def.Name)

		opener, closer := "[", "]"
		switch {
		case def.Parent == nil:
			opener, closer = "((", "))"
		case def.IsMount():
			opener, closer = "[[", "]]"
		}

		label := def.Name
		if def.Parent != nil {
			label = fmt.Sprintf("%s <br/> %s", def.Name, def.URL())
		}
		if overlay != nil {
			if tags := overlay.Hooks[def.Name]; len(tags) > 0 {
				label = fmt.Sprintf("%s <br/> %s", label, strings.Join(tags, ", "))
			}
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		for _, child := range def.Children {
			arrow := "-->"
			if child.IsMount() {
				arrow = "-.->"
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeMermaidID(child.Name)))
		}
	})

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef active fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, name := range overlay.Active {
			safeID := sanitizeMermaidID(name)
			if safeID == "" || seen[safeID] || name == overlay.Current {
				continue
			}
			seen[safeID] = true
			sb.WriteString(fmt.Sprintf("    class %s active;\n", safeID))
		}

		if overlay.Current != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.Current)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
