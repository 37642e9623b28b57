// Package decl holds the routing declarations read from annotated controllers.
// The types carry data only; the processor in the root package turns them
// into router calls.
package decl

import "strings"

// Verb is a lower case HTTP method or Any
type Verb string

const (
	// Get is the GET verb
	Get Verb = "get"
	// Post is the POST verb
	Post Verb = "post"
	// Put is the PUT verb
	Put Verb = "put"
	// Delete is the DELETE verb
	Delete Verb = "delete"
	// Patch is the PATCH verb
	Patch Verb = "patch"
	// OptionsVerb is the OPTIONS verb
	OptionsVerb Verb = "options"
	// Head is the HEAD verb
	Head Verb = "head"
	// Any matches every verb
	Any Verb = "*"
)

// Verbs lists every concrete verb, Any excluded
var Verbs = [...]Verb{Get, Post, Put, Delete, Patch, OptionsVerb, Head}

// ParseVerb normalizes text into a Verb. An empty text is Any.
func ParseVerb(text string) (Verb, bool) {
	v := Verb(strings.ToLower(strings.TrimSpace(text)))
	if len(v) == 0 {
		return Any, true
	}
	return v, v.Valid()
}

// Valid returns true if v is a known verb
func (v Verb) Valid() bool {
	if v == Any {
		return true
	}
	for _, known := range Verbs {
		if v == known {
			return true
		}
	}
	return false
}

// Kind is the kind of a method level route declaration
type Kind int

const (
	// KindRoute is a generic route, its verb comes from the declaration
	KindRoute Kind = iota
	// KindRequestMapping is a generic mapping, its verb comes from the declaration
	KindRequestMapping
	// KindGetMapping always maps GET
	KindGetMapping
	// KindPostMapping always maps POST
	KindPostMapping
	// KindDeleteMapping always maps DELETE
	KindDeleteMapping
	// KindPutMapping always maps PUT
	KindPutMapping
)

// Kinds lists route kinds in processing order
var Kinds = [...]Kind{KindRoute, KindRequestMapping, KindGetMapping, KindPostMapping, KindDeleteMapping, KindPutMapping}

var kindNames = [...]string{"Route", "RequestMapping", "GetMapping", "PostMapping", "DeleteMapping", "PutMapping"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// Fixed returns the verb a kind always maps and false for generic kinds
func (k Kind) Fixed() (Verb, bool) {
	switch k {
	case KindGetMapping:
		return Get, true
	case KindPostMapping:
		return Post, true
	case KindDeleteMapping:
		return Delete, true
	case KindPutMapping:
		return Put, true
	}
	return "", false
}

// Options is applied verbatim to the produced group or rule
type Options map[string]interface{}

// Clone returns a shallow copy, never nil
func (o Options) Clone() Options {
	c := make(Options, len(o))
	for k, v := range o {
		c[k] = v
	}
	return c
}

// Controller is the declaration of an annotated class
type Controller struct {
	Class      string
	Group      *Group
	Middleware []string
	// HasMiddleware distinguishes an empty middleware marker from no marker
	HasMiddleware bool
	Resource      *Resource
	Methods       []Method
}

// Group is a class level grouping declaration
type Group struct {
	Path    string
	Options Options
}

// Resource is a resource route shorthand
type Resource struct {
	Path    string
	Options Options
}

// Method is a public method and the declarations attached to it
type Method struct {
	Name          string
	Routes        []Route
	Middleware    []string
	HasMiddleware bool
	GroupAlias    string
	HasGroupAlias bool
	Models        []ModelBinding
	Validation    *Validation
}

// Route is a method level route declaration
type Route struct {
	Kind    Kind
	Path    string
	Verb    Verb
	Name    string
	Options Options
}

// ModelBinding binds a route variable to a model
type ModelBinding struct {
	Var       string
	Model     string
	Exception bool
}

// Validation attaches a validator to a route
type Validation struct {
	Validator string
	Scene     string
	Messages  map[string]string
	Batch     bool
}

// Target returns the handler identifier of a class method
func Target(class, method string) string {
	return class + "@" + method
}
