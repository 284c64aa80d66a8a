package router

import (
	"sort"
	"strings"
)

// ApplicationRoute is the local name of the root route of an application or engine.
const ApplicationRoute = "application"

// RouteDef is a declared route.
type RouteDef struct {
	// Name is the fully qualified route name, e.g. "posts.show".
	Name string
	// Local is the name the route's handler is registered under in its registry.
	Local string
	// Segment is the URL path segment matched by this route.
	Segment string
	// Engine names the mounted engine the route belongs to; empty for the host application.
	Engine   string
	Parent   *RouteDef
	Children []*RouteDef
}

// IsMount reports whether the route is the mount point of an engine.
func (d *RouteDef) IsMount() bool {
	return d.Engine != "" && d.Local == ApplicationRoute
}

// Lineage returns the route and its ancestors, root first.
func (d *RouteDef) Lineage() []*RouteDef {
	var out []*RouteDef
	for cur := d; cur != nil; cur = cur.Parent {
		out = append(out, cur)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// URL returns the absolute URL path of the route.
func (d *RouteDef) URL() string {
	var segments []string
	for _, def := range d.Lineage() {
		if def.Segment != "" {
			segments = append(segments, def.Segment)
		}
	}
	return "/" + strings.Join(segments, "/")
}

func (d *RouteDef) child(segment string) *RouteDef {
	for _, c := range d.Children {
		if c.Segment == segment {
			return c
		}
	}
	return nil
}

// Map is an immutable route tree rooted at the application route.
type Map struct {
	root    *RouteDef
	byName  map[string]*RouteDef
	engines []string
}

// Mapper declares routes below a parent route.
type Mapper struct {
	m      *Map
	parent *RouteDef
	engine string
	local  string
}

// NewMap builds a route tree. fn declares the children of the application route.
func NewMap(fn func(r *Mapper)) *Map {
	root := &RouteDef{Name: ApplicationRoute, Local: ApplicationRoute}
	m := &Map{root: root, byName: map[string]*RouteDef{root.Name: root}}
	if fn != nil {
		fn(&Mapper{m: m, parent: root})
	}
	return m
}

// Route declares a child route whose URL segment is its name.
// A name that is already declared at this level is extended, not duplicated.
func (r *Mapper) Route(name string, fns ...func(r *Mapper)) {
	def := r.parent.child(name)
	if def == nil {
		def = &RouteDef{
			Name:    qualify(r.parent, name),
			Local:   join(r.local, name),
			Segment: name,
			Engine:  r.engine,
			Parent:  r.parent,
		}
		r.parent.Children = append(r.parent.Children, def)
		r.m.byName[def.Name] = def
	}
	child := &Mapper{m: r.m, parent: def, engine: r.engine, local: def.Local}
	for _, fn := range fns {
		fn(child)
	}
}

// Mount attaches an engine under the segment as. The engine's routes are
// declared by fn and resolved from the engine's own registry.
func (r *Mapper) Mount(as string, fn func(r *Mapper)) {
	def := &RouteDef{
		Name:    qualify(r.parent, as),
		Local:   ApplicationRoute,
		Segment: as,
		Engine:  as,
		Parent:  r.parent,
	}
	r.parent.Children = append(r.parent.Children, def)
	r.m.byName[def.Name] = def
	r.m.engines = append(r.m.engines, as)
	if fn != nil {
		fn(&Mapper{m: r.m, parent: def, engine: as})
	}
}

func qualify(parent *RouteDef, name string) string {
	if parent == nil || parent.Parent == nil {
		return name
	}
	return parent.Name + "." + name
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// Root returns the application route.
func (m *Map) Root() *RouteDef { return m.root }

// Route returns the definition of a fully qualified route name.
func (m *Map) Route(name string) (*RouteDef, bool) {
	def, ok := m.byName[name]
	return def, ok
}

// Names returns every declared route name, sorted.
func (m *Map) Names() []string {
	names := make([]string, 0, len(m.byName))
	for name := range m.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Engines returns the mount names in declaration order.
func (m *Map) Engines() []string {
	return append([]string(nil), m.engines...)
}

// Match resolves a URL path to the deepest declared route.
func (m *Map) Match(urlPath string) (*RouteDef, bool) {
	cur := m.root
	for _, seg := range strings.Split(strings.Trim(urlPath, "/"), "/") {
		if seg == "" {
			continue
		}
		next := cur.child(seg)
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Walk visits every route depth first, parents before children.
func (m *Map) Walk(fn func(def *RouteDef, depth int)) {
	var walk func(d *RouteDef, depth int)
	walk = func(d *RouteDef, depth int) {
		fn(d, depth)
		for _, c := range d.Children {
			walk(c, depth+1)
		}
	}
	walk(m.root, 0)
}
