package annoroute

import (
	"github.com/charmbracelet/log"

	"github.com/javiercbk/annoroute/annotation"
	"github.com/javiercbk/annoroute/decl"
	routeErrors "github.com/javiercbk/annoroute/errors"
	"github.com/javiercbk/annoroute/source"
)

const (
	fieldName      = "name"
	fieldMethod    = "method"
	fieldOptions   = "options"
	fieldVar       = "var"
	fieldException = "exception"
	fieldScene     = "scene"
	fieldMessage   = "message"
	fieldBatch     = "batch"

	defaultModelVar = "id"
)

var routeAnnotations = map[decl.Kind]annotation.Kind{
	decl.KindRoute:          annotation.Route,
	decl.KindRequestMapping: annotation.RequestMapping,
	decl.KindGetMapping:     annotation.GetMapping,
	decl.KindPostMapping:    annotation.PostMapping,
	decl.KindDeleteMapping:  annotation.DeleteMapping,
	decl.KindPutMapping:     annotation.PutMapping,
}

// Reader assembles controller declarations from a Source. Annotations with
// an unexpected shape are logged and treated as absent.
type Reader struct {
	Source Source
	Logger *log.Logger
}

// Read returns the controllers found under root, in the order the source lists them
func (r Reader) Read(root string) ([]decl.Controller, error) {
	classes, err := r.Source.ListClasses(root)
	if err != nil {
		r.Logger.Errorf("error listing classes in %s: %v", root, err)
		return nil, err
	}
	controllers := make([]decl.Controller, 0, len(classes))
	for _, class := range classes {
		c, err := r.readController(class)
		if err != nil {
			r.Logger.Errorf("error reading class %s: %v", class, err)
			return nil, err
		}
		controllers = append(controllers, c)
	}
	return controllers, nil
}

func (r Reader) readController(class string) (decl.Controller, error) {
	c := decl.Controller{Class: class}
	member := source.Member{Class: class}

	fields, ok, err := r.first(member, annotation.Controller)
	if err != nil {
		return c, err
	}
	if ok {
		path, _ := r.str(member, annotation.Controller, fields, annotation.ValueField)
		c.Group = &decl.Group{
			Path:    path,
			Options: r.options(member, annotation.Controller, fields),
		}
	}

	fields, ok, err = r.first(member, annotation.Resource)
	if err != nil {
		return c, err
	}
	if ok {
		path, present := r.str(member, annotation.Resource, fields, annotation.ValueField)
		if present {
			c.Resource = &decl.Resource{
				Path:    path,
				Options: r.options(member, annotation.Resource, fields),
			}
		} else {
			r.Logger.Warn("resource without a base path ignored", "class", class)
		}
	}

	fields, ok, err = r.first(member, annotation.Middleware)
	if err != nil {
		return c, err
	}
	if ok {
		c.Middleware = r.strs(member, annotation.Middleware, fields, annotation.ValueField)
		c.HasMiddleware = true
	}

	methods, err := r.Source.Methods(class)
	if err != nil {
		return c, err
	}
	c.Methods = make([]decl.Method, 0, len(methods))
	for _, name := range methods {
		m, err := r.readMethod(source.Member{Class: class, Method: name})
		if err != nil {
			return c, err
		}
		c.Methods = append(c.Methods, m)
	}
	return c, nil
}

func (r Reader) readMethod(member source.Member) (decl.Method, error) {
	m := decl.Method{Name: member.Method}
	for _, kind := range decl.Kinds {
		ak := routeAnnotations[kind]
		fields, ok, err := r.first(member, ak)
		if err != nil {
			return m, err
		}
		if !ok {
			continue
		}
		route := decl.Route{Kind: kind}
		route.Path, _ = r.str(member, ak, fields, annotation.ValueField)
		route.Name, _ = r.str(member, ak, fields, fieldName)
		if verb, fixed := kind.Fixed(); fixed {
			route.Verb = verb
		} else {
			text, _ := r.str(member, ak, fields, fieldMethod)
			route.Verb, _ = decl.ParseVerb(text)
		}
		route.Options = r.options(member, ak, fields, fieldName, fieldMethod)
		m.Routes = append(m.Routes, route)
	}

	fields, ok, err := r.first(member, annotation.Middleware)
	if err != nil {
		return m, err
	}
	if ok {
		m.Middleware = r.strs(member, annotation.Middleware, fields, annotation.ValueField)
		m.HasMiddleware = true
	}

	fields, ok, err = r.first(member, annotation.Group)
	if err != nil {
		return m, err
	}
	if ok {
		m.GroupAlias, m.HasGroupAlias = r.str(member, annotation.Group, fields, annotation.ValueField)
	}

	models, err := r.all(member, annotation.Model)
	if err != nil {
		return m, err
	}
	for _, fields := range models {
		model, present := r.str(member, annotation.Model, fields, annotation.ValueField)
		if !present {
			r.Logger.Warn("model binding without a model ignored", "class", member.Class, "method", member.Method)
			continue
		}
		binding := decl.ModelBinding{Var: defaultModelVar, Model: model, Exception: true}
		if v, ok := r.str(member, annotation.Model, fields, fieldVar); ok {
			binding.Var = v
		}
		if e, ok := r.boolean(member, annotation.Model, fields, fieldException); ok {
			binding.Exception = e
		}
		m.Models = append(m.Models, binding)
	}

	fields, ok, err = r.first(member, annotation.Validate)
	if err != nil {
		return m, err
	}
	if ok {
		validator, present := r.str(member, annotation.Validate, fields, annotation.ValueField)
		if present {
			v := &decl.Validation{Validator: validator, Messages: map[string]string{}, Batch: true}
			v.Scene, _ = r.str(member, annotation.Validate, fields, fieldScene)
			messages, present, err := fields.StringMap(fieldMessage)
			if err != nil {
				r.warn(member, annotation.Validate, err)
			} else if present {
				v.Messages = messages
			}
			if b, ok := r.boolean(member, annotation.Validate, fields, fieldBatch); ok {
				v.Batch = b
			}
			m.Validation = v
		} else {
			r.Logger.Warn("validation without a validator ignored", "class", member.Class, "method", member.Method)
		}
	}
	return m, nil
}

// all returns the decoded fields of every annotation of kind on member
func (r Reader) all(member source.Member, kind annotation.Kind) ([]annotation.Fields, error) {
	anns, err := r.Source.Annotations(member, kind)
	if err == routeErrors.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	all := make([]annotation.Fields, 0, len(anns))
	for _, a := range anns {
		fields, err := a.Fields()
		if err != nil {
			r.Logger.Warn("annotation ignored", "annotation", a.String(), "err", err)
			continue
		}
		all = append(all, fields)
	}
	return all, nil
}

// first returns the decoded fields of the first annotation of kind on member.
// Further annotations of the same kind are ignored.
func (r Reader) first(member source.Member, kind annotation.Kind) (annotation.Fields, bool, error) {
	anns, err := r.Source.Annotations(member, kind)
	if err == routeErrors.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(anns) == 0 {
		return nil, false, nil
	}
	for _, a := range anns[1:] {
		r.Logger.Warn("duplicate annotation ignored", "annotation", a.String())
	}
	fields, err := anns[0].Fields()
	if err != nil {
		r.Logger.Warn("annotation ignored", "annotation", anns[0].String(), "err", err)
		return nil, false, nil
	}
	return fields, true, nil
}

func (r Reader) str(member source.Member, kind annotation.Kind, fields annotation.Fields, key string) (string, bool) {
	s, ok, err := fields.String(key)
	if err != nil {
		r.warn(member, kind, err)
	}
	return s, ok
}

func (r Reader) strs(member source.Member, kind annotation.Kind, fields annotation.Fields, key string) []string {
	values, _, err := fields.Strings(key)
	if err != nil {
		r.warn(member, kind, err)
	}
	if values == nil {
		values = []string{}
	}
	return values
}

func (r Reader) boolean(member source.Member, kind annotation.Kind, fields annotation.Fields, key string) (bool, bool) {
	b, ok, err := fields.Bool(key)
	if err != nil {
		r.warn(member, kind, err)
	}
	return b, ok
}

// options merges the unknown fields of an annotation with its options field.
// Entries of the options field win.
func (r Reader) options(member source.Member, kind annotation.Kind, fields annotation.Fields, known ...string) decl.Options {
	known = append(known, annotation.ValueField, fieldOptions)
	options := decl.Options(fields.Rest(known...))
	explicit, _, err := fields.Map(fieldOptions)
	if err != nil {
		r.warn(member, kind, err)
	}
	for k, v := range explicit {
		options[k] = v
	}
	return options
}

func (r Reader) warn(member source.Member, kind annotation.Kind, err error) {
	r.Logger.Warn("annotation field ignored", "class", member.Class, "method", member.Method, "annotation", string(kind), "err", err)
}
