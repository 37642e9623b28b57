// Package cache stores a built routing table so it can be restored without
// scanning controller sources
package cache

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v2"

	"github.com/javiercbk/annoroute"
	"github.com/javiercbk/annoroute/annotation"
	"github.com/javiercbk/annoroute/decl"
	"github.com/javiercbk/annoroute/table"
)

// Snapshot is the group tree of a table
type Snapshot struct {
	Revision string `yaml:"revision"`
	Root     Group  `yaml:"root"`
}

// Group is a cached group and its entries in registration order
type Group struct {
	Path       string                 `yaml:"path"`
	Options    map[string]interface{} `yaml:"options,omitempty"`
	Middleware []string               `yaml:"middleware,omitempty"`
	Entries    []Entry                `yaml:"entries,omitempty"`
}

// Entry holds either a group or a rule
type Entry struct {
	Group *Group `yaml:"group,omitempty"`
	Rule  *Rule  `yaml:"rule,omitempty"`
}

// Rule is a cached rule with its own options and middleware
type Rule struct {
	Verb       string                 `yaml:"verb"`
	Path       string                 `yaml:"path"`
	Target     string                 `yaml:"target"`
	Name       string                 `yaml:"name,omitempty"`
	Options    map[string]interface{} `yaml:"options,omitempty"`
	Middleware []string               `yaml:"middleware,omitempty"`
	GroupAlias string                 `yaml:"group_alias,omitempty"`
	Models     []Model                `yaml:"models,omitempty"`
	Validation *Validation            `yaml:"validation,omitempty"`
}

// Model is a cached model binding
type Model struct {
	Var       string `yaml:"var"`
	Model     string `yaml:"model"`
	Exception bool   `yaml:"exception"`
}

// Validation is a cached validation
type Validation struct {
	Validator string            `yaml:"validator"`
	Scene     string            `yaml:"scene,omitempty"`
	Messages  map[string]string `yaml:"messages,omitempty"`
	Batch     bool              `yaml:"batch"`
}

// Build takes a snapshot of t
func Build(t *table.Table, revision string) Snapshot {
	return Snapshot{
		Revision: revision,
		Root:     buildGroup(t.Root()),
	}
}

func buildGroup(g *table.Group) Group {
	cached := Group{
		Path:       g.Path,
		Options:    g.Options.Clone(),
		Middleware: append([]string{}, g.Middleware...),
	}
	for _, e := range g.Entries() {
		if e.Group != nil {
			child := buildGroup(e.Group)
			cached.Entries = append(cached.Entries, Entry{Group: &child})
			continue
		}
		cached.Entries = append(cached.Entries, Entry{Rule: buildRule(e.Rule)})
	}
	return cached
}

func buildRule(r *table.Rule) *Rule {
	cached := &Rule{
		Verb:       string(r.Verb),
		Path:       r.Path,
		Target:     r.Target,
		Name:       r.Name,
		Options:    r.Options.Clone(),
		Middleware: append([]string{}, r.Middleware...),
		GroupAlias: r.GroupAlias,
	}
	for _, m := range r.Models {
		cached.Models = append(cached.Models, Model{Var: m.Var, Model: m.Model, Exception: m.Exception})
	}
	if r.Validation != nil {
		cached.Validation = &Validation{
			Validator: r.Validation.Validator,
			Scene:     r.Validation.Scene,
			Messages:  r.Validation.Messages,
			Batch:     r.Validation.Batch,
		}
	}
	return cached
}

// Stale returns true if s was not built from revision. Snapshots of unknown
// or dirty revisions are always stale.
func (s Snapshot) Stale(revision string) bool {
	if len(revision) == 0 || strings.HasSuffix(revision, DirtySuffix) {
		return true
	}
	return s.Revision != revision
}

// Replay registers the cached groups and rules on router
func (s Snapshot) Replay(router annoroute.Router) error {
	root := router.CurrentGroup()
	if len(s.Root.Options) > 0 {
		root.Option(decl.Options(s.Root.Options).Clone())
	}
	if len(s.Root.Middleware) > 0 {
		root.Middleware(append([]string{}, s.Root.Middleware...))
	}
	return replayEntries(router, root, s.Root.Entries)
}

func replayEntries(router annoroute.Router, g annoroute.Group, entries []Entry) error {
	for _, e := range entries {
		if e.Group != nil {
			cached := e.Group
			child, err := router.Group(cached.Path, func() error {
				return replayEntries(router, router.CurrentGroup(), cached.Entries)
			})
			if err != nil {
				return err
			}
			child.Option(decl.Options(cached.Options).Clone())
			child.Middleware(append([]string{}, cached.Middleware...))
			continue
		}
		if e.Rule != nil {
			if err := replayRule(g, e.Rule); err != nil {
				return err
			}
		}
	}
	return nil
}

func replayRule(g annoroute.Group, cached *Rule) error {
	rule, err := g.AddRule(cached.Path, cached.Target, decl.Verb(cached.Verb))
	if err != nil {
		return err
	}
	if len(cached.Name) > 0 {
		if err := rule.Name(cached.Name); err != nil {
			return err
		}
	}
	rule.Option(decl.Options(cached.Options).Clone())
	rule.Middleware(append([]string{}, cached.Middleware...))
	if len(cached.GroupAlias) > 0 {
		rule.Group(cached.GroupAlias)
	}
	for _, m := range cached.Models {
		rule.Model(m.Var, m.Model, m.Exception)
	}
	if v := cached.Validation; v != nil {
		messages := make(map[string]string, len(v.Messages))
		for k, m := range v.Messages {
			messages[k] = m
		}
		rule.Validate(v.Validator, v.Scene, messages, v.Batch)
	}
	return nil
}

// Write encodes s as YAML
func Write(w io.Writer, s Snapshot) error {
	encoder := yaml.NewEncoder(w)
	if err := encoder.Encode(s); err != nil {
		return err
	}
	return encoder.Close()
}

// Read decodes a YAML snapshot
func Read(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return s, err
	}
	normalizeGroup(&s.Root)
	return s, nil
}

// normalizeGroup converts nested option mappings decoded by yaml into
// string keyed maps
func normalizeGroup(g *Group) {
	g.Options = normalizeOptions(g.Options)
	for _, e := range g.Entries {
		if e.Group != nil {
			normalizeGroup(e.Group)
		}
		if e.Rule != nil {
			e.Rule.Options = normalizeOptions(e.Rule.Options)
		}
	}
}

func normalizeOptions(options map[string]interface{}) map[string]interface{} {
	normalized := make(map[string]interface{}, len(options))
	for k, v := range options {
		normalized[k] = annotation.Normalize(v)
	}
	return normalized
}

// Store reads and writes snapshots in a file
type Store struct {
	Path   string
	Logger *log.Logger
}

// Save writes s to the store file
func (store Store) Save(s Snapshot) error {
	f, err := os.Create(store.Path)
	if err != nil {
		store.Logger.Errorf("error creating route cache %s: %v", store.Path, err)
		return err
	}
	if err = Write(f, s); err != nil {
		f.Close()
		store.Logger.Errorf("error writing route cache %s: %v", store.Path, err)
		return err
	}
	if err = f.Close(); err != nil {
		store.Logger.Errorf("error closing route cache %s: %v", store.Path, err)
		return err
	}
	store.Logger.Debug("route cache saved", "path", store.Path, "revision", s.Revision)
	return nil
}

// Load reads the snapshot in the store file
func (store Store) Load() (Snapshot, error) {
	f, err := os.Open(store.Path)
	if err != nil {
		store.Logger.Errorf("error opening route cache %s: %v", store.Path, err)
		return Snapshot{}, err
	}
	defer f.Close()
	s, err := Read(f)
	if err != nil {
		store.Logger.Errorf("error reading route cache %s: %v", store.Path, err)
		return s, err
	}
	return s, nil
}
