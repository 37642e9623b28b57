package annoroute

import (
	"github.com/javiercbk/annoroute/annotation"
	"github.com/javiercbk/annoroute/decl"
	"github.com/javiercbk/annoroute/source"
)

// Router is the routing table configured by a Processor. Implementations
// are not expected to be safe for concurrent use.
type Router interface {
	// Group creates a group under the current group. The callback, when not
	// nil, runs with the new group as the current group.
	Group(path string, callback func() error) (Group, error)
	// Resource registers the standard resource rule set on the current group
	Resource(basePath, target string) (Resource, error)
	// CurrentGroup returns the group rules are registered on by default
	CurrentGroup() Group
}

// Group is a group of rules sharing a path prefix, options and middleware
type Group interface {
	Option(options decl.Options)
	Middleware(middleware []string)
	AddRule(path, target string, verb decl.Verb) (Rule, error)
}

// Rule is a single registered route
type Rule interface {
	Option(options decl.Options)
	Middleware(middleware []string)
	Name(name string) error
	Model(variable, model string, exception bool)
	Validate(validator, scene string, messages map[string]string, batch bool)
	Group(alias string)
}

// Resource is a registered resource rule set
type Resource interface {
	Option(options decl.Options)
}

// Source lists annotated classes and their annotations
type Source interface {
	ListClasses(root string) ([]string, error)
	Methods(class string) ([]string, error)
	Annotations(member source.Member, kind annotation.Kind) ([]annotation.Annotation, error)
}
