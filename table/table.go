// Package table is an in-memory routing table. It records groups and rules
// registered through the annoroute Router contract and flattens them for
// serving, export and caching.
package table

import (
	"fmt"
	"strings"

	"github.com/javiercbk/annoroute"
	"github.com/javiercbk/annoroute/decl"
	routeErrors "github.com/javiercbk/annoroute/errors"
)

var resourceActions = [...]struct {
	action string
	verb   decl.Verb
	suffix string
}{
	{"index", decl.Get, ""},
	{"create", decl.Get, "create"},
	{"save", decl.Post, ""},
	{"read", decl.Get, ":id"},
	{"edit", decl.Get, ":id/edit"},
	{"update", decl.Put, ":id"},
	{"delete", decl.Delete, ":id"},
}

// Rule is a registered route. Rules returned by Table.Rules carry the
// effective options and middleware, rules returned by Group.Entries carry
// only their own.
type Rule struct {
	Verb decl.Verb
	// Path is the path as registered on its group
	Path string
	// FullPath includes the path of every enclosing group
	FullPath   string
	Target     string
	Name       string
	Options    decl.Options
	Middleware []string
	Models     []decl.ModelBinding
	Validation *decl.Validation
	GroupAlias string
	group      *Group
}

// Group is a node of the group tree
type Group struct {
	Path       string
	FullPath   string
	Options    decl.Options
	Middleware []string
	entries    []Entry
	parent     *Group
}

// Entry is either a child group or a rule, in registration order
type Entry struct {
	Group *Group
	Rule  *Rule
}

// Entries returns the child groups and rules of g in registration order
func (g *Group) Entries() []Entry {
	entries := make([]Entry, len(g.entries))
	copy(entries, g.entries)
	return entries
}

// chain returns the groups from the root down to g
func (g *Group) chain() []*Group {
	chain := make([]*Group, 0)
	for current := g; current != nil; current = current.parent {
		chain = append([]*Group{current}, chain...)
	}
	return chain
}

func newGroup(path string, parent *Group) *Group {
	g := &Group{
		Path:       path,
		FullPath:   path,
		Options:    decl.Options{},
		Middleware: []string{},
		parent:     parent,
	}
	if parent != nil {
		g.FullPath = Join(parent.FullPath, path)
	}
	return g
}

// Table implements annoroute.Router. It is not safe for concurrent use.
type Table struct {
	root    *Group
	current *Group
	rules   []*Rule
	routes  map[string]*Rule
	names   map[string]*Rule
}

// New creates an empty table whose root group is the default group
func New() *Table {
	root := newGroup("", nil)
	return &Table{
		root:    root,
		current: root,
		rules:   make([]*Rule, 0),
		routes:  make(map[string]*Rule),
		names:   make(map[string]*Rule),
	}
}

// Root returns the root group
func (t *Table) Root() *Group {
	return t.root
}

// Len returns the number of registered rules
func (t *Table) Len() int {
	return len(t.rules)
}

// CurrentGroup returns the group rules are added to by default
func (t *Table) CurrentGroup() annoroute.Group {
	return groupHandle{t: t, g: t.current}
}

// Group creates a child of the current group. The callback runs with the
// child as the current group.
func (t *Table) Group(path string, callback func() error) (annoroute.Group, error) {
	path = trimSlashes(path)
	if err := ValidatePath(path); err != nil {
		return nil, &routeErrors.ConfigurationError{Op: "group " + path, Err: err}
	}
	parent := t.current
	g := newGroup(path, parent)
	parent.entries = append(parent.entries, Entry{Group: g})
	if callback != nil {
		t.current = g
		err := callback()
		t.current = parent
		if err != nil {
			return nil, err
		}
	}
	return groupHandle{t: t, g: g}, nil
}

// Resource adds the index, create, save, read, edit, update and delete rules
// of basePath to the current group
func (t *Table) Resource(basePath, target string) (annoroute.Resource, error) {
	base := trimSlashes(basePath)
	if len(base) == 0 {
		return nil, &routeErrors.ConfigurationError{Class: target, Op: "resource", Err: routeErrors.ErrInvalidPath}
	}
	rules := make(resourceHandle, 0, len(resourceActions))
	for _, a := range resourceActions {
		r, err := t.add(t.current, Join(base, a.suffix), decl.Target(target, a.action), a.verb)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func (t *Table) add(g *Group, path, target string, verb decl.Verb) (*Rule, error) {
	path = trimSlashes(path)
	full := Join(g.FullPath, path)
	class, method := splitTarget(target)
	op := fmt.Sprintf("add rule %s %s", verb, full)
	if !verb.Valid() {
		return nil, &routeErrors.ConfigurationError{Class: class, Method: method, Op: op, Err: routeErrors.ErrInvalidVerb}
	}
	if err := ValidatePath(full); err != nil {
		return nil, &routeErrors.ConfigurationError{Class: class, Method: method, Op: op, Err: err}
	}
	key := routeKey(verb, full)
	if _, ok := t.routes[key]; ok {
		return nil, &routeErrors.ConfigurationError{Class: class, Method: method, Op: op, Err: routeErrors.ErrDuplicateRoute}
	}
	r := &Rule{
		Verb:       verb,
		Path:       path,
		FullPath:   full,
		Target:     target,
		Options:    decl.Options{},
		Middleware: []string{},
		group:      g,
	}
	t.routes[key] = r
	t.rules = append(t.rules, r)
	g.entries = append(g.entries, Entry{Rule: r})
	return r, nil
}

// Rules returns the flattened rules in registration order
func (t *Table) Rules() []Rule {
	rules := make([]Rule, 0, len(t.rules))
	for _, r := range t.rules {
		rules = append(rules, r.flatten())
	}
	return rules
}

// Named returns the flattened rule registered under name
func (t *Table) Named(name string) (Rule, bool) {
	r, ok := t.names[name]
	if !ok {
		return Rule{}, false
	}
	return r.flatten(), true
}

// Lookup returns the flattened rule registered for verb and full path
func (t *Table) Lookup(verb decl.Verb, fullPath string) (Rule, bool) {
	r, ok := t.routes[routeKey(verb, trimSlashes(fullPath))]
	if !ok {
		return Rule{}, false
	}
	return r.flatten(), true
}

// flatten merges group options under rule options and prepends the group
// middleware chain
func (r *Rule) flatten() Rule {
	f := *r
	f.group = nil
	f.Options = decl.Options{}
	f.Middleware = make([]string, 0)
	for _, g := range r.group.chain() {
		for k, v := range g.Options {
			f.Options[k] = v
		}
		f.Middleware = append(f.Middleware, g.Middleware...)
	}
	for k, v := range r.Options {
		f.Options[k] = v
	}
	f.Middleware = append(f.Middleware, r.Middleware...)
	if r.Models != nil {
		f.Models = make([]decl.ModelBinding, len(r.Models))
		copy(f.Models, r.Models)
	}
	if r.Validation != nil {
		v := *r.Validation
		v.Messages = make(map[string]string, len(r.Validation.Messages))
		for k, m := range r.Validation.Messages {
			v.Messages[k] = m
		}
		f.Validation = &v
	}
	return f
}

func routeKey(verb decl.Verb, fullPath string) string {
	return string(verb) + " " + fullPath
}

func splitTarget(target string) (string, string) {
	i := strings.LastIndex(target, "@")
	if i < 0 {
		return target, ""
	}
	return target[:i], target[i+1:]
}

type groupHandle struct {
	t *Table
	g *Group
}

func (h groupHandle) Option(options decl.Options) {
	for k, v := range options {
		h.g.Options[k] = v
	}
}

func (h groupHandle) Middleware(middleware []string) {
	h.g.Middleware = append(h.g.Middleware, middleware...)
}

func (h groupHandle) AddRule(path, target string, verb decl.Verb) (annoroute.Rule, error) {
	r, err := h.t.add(h.g, path, target, verb)
	if err != nil {
		return nil, err
	}
	return ruleHandle{t: h.t, r: r}, nil
}

type ruleHandle struct {
	t *Table
	r *Rule
}

func (h ruleHandle) Option(options decl.Options) {
	for k, v := range options {
		h.r.Options[k] = v
	}
}

func (h ruleHandle) Middleware(middleware []string) {
	h.r.Middleware = append(h.r.Middleware, middleware...)
}

func (h ruleHandle) Name(name string) error {
	if other, ok := h.t.names[name]; ok && other != h.r {
		class, method := splitTarget(h.r.Target)
		return &routeErrors.ConfigurationError{Class: class, Method: method, Op: "name " + name, Err: routeErrors.ErrDuplicateName}
	}
	if len(h.r.Name) > 0 {
		delete(h.t.names, h.r.Name)
	}
	h.r.Name = name
	h.t.names[name] = h.r
	return nil
}

func (h ruleHandle) Model(variable, model string, exception bool) {
	h.r.Models = append(h.r.Models, decl.ModelBinding{Var: variable, Model: model, Exception: exception})
}

func (h ruleHandle) Validate(validator, scene string, messages map[string]string, batch bool) {
	h.r.Validation = &decl.Validation{Validator: validator, Scene: scene, Messages: messages, Batch: batch}
}

func (h ruleHandle) Group(alias string) {
	h.r.GroupAlias = alias
}

type resourceHandle []*Rule

func (h resourceHandle) Option(options decl.Options) {
	for _, r := range h {
		for k, v := range options {
			r.Options[k] = v
		}
	}
}
