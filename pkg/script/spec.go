package script

// ItemSpec declares one chain item.
type ItemSpec struct {
	Name string         `mapstructure:"name" yaml:"name,omitempty"`
	Do   string         `mapstructure:"do" yaml:"do"`
	When string         `mapstructure:"when" yaml:"when,omitempty"`
	Args map[string]any `mapstructure:"args" yaml:"args,omitempty"`
}

// GuardSpec declares a route guard. When its condition holds, the guard
// redirects if Redirect is set and rejects the transition otherwise.
type GuardSpec struct {
	When     string `mapstructure:"when" yaml:"when,omitempty"`
	Reject   string `mapstructure:"reject" yaml:"reject,omitempty"`
	Redirect string `mapstructure:"redirect" yaml:"redirect,omitempty"`
}

// RouteSpec declares a route by its dotted name together with its hooks.
type RouteSpec struct {
	Name  string     `mapstructure:"name" yaml:"name"`
	Enter []ItemSpec `mapstructure:"enter" yaml:"enter,omitempty"`
	Exit  []ItemSpec `mapstructure:"exit" yaml:"exit,omitempty"`
	Guard *GuardSpec `mapstructure:"guard" yaml:"guard,omitempty"`
}

// EngineSpec declares an engine mounted at the top level. Its routes use
// names local to the engine; "application" configures the mount point.
type EngineSpec struct {
	Mount  string      `mapstructure:"mount" yaml:"mount"`
	Routes []RouteSpec `mapstructure:"routes" yaml:"routes,omitempty"`
}
