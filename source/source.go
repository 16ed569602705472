// Package source defines the contract between the routing engine and
// its endpoint data source, plus two concrete sources: a programmatic
// in-memory source and a YAML file source with change watching.
package source

// Endpoint describes one application endpoint as exposed by the
// endpoint source.
type Endpoint struct {
	// Template is the attribute route template text, e.g.
	// "api/Blog/{id:int}".
	Template string `yaml:"template"`

	// Name is the optional route name used for link generation.
	Name string `yaml:"name,omitempty"`

	// Order is the explicit route priority; lower sorts first.
	Order int `yaml:"order,omitempty"`

	// Defaults are route values applied when the path does not supply a
	// parameter.
	Defaults map[string]string `yaml:"defaults,omitempty"`

	// Constraints maps parameter names to constraint keys, in addition
	// to constraints inlined in the template text.
	Constraints map[string]string `yaml:"constraints,omitempty"`

	// Identity holds the grouping/identity values of the endpoint (e.g.
	// controller and action). They become the required link values of
	// the endpoint's outbound entry.
	Identity map[string]string `yaml:"identity,omitempty"`
}

// EndpointSource supplies a stable snapshot of the endpoint set together
// with a version token. The routing engine rebuilds its tables if and
// only if the observed version differs from the one it last built from.
//
// Implementations must return a consistent pair: the endpoint slice must
// correspond to the returned version, and neither may be mutated after
// being returned.
type EndpointSource interface {
	Snapshot() (endpoints []Endpoint, version int64)
}

// Versioned is an optional EndpointSource extension exposing the version
// token without copying the endpoint set. Consumers probe it to skip the
// snapshot copy while the version is unchanged.
type Versioned interface {
	Version() int64
}
