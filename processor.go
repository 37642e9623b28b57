package annoroute

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/javiercbk/annoroute/config"
	"github.com/javiercbk/annoroute/decl"
	routeErrors "github.com/javiercbk/annoroute/errors"
)

// Processor translates controller declarations into router calls. It holds
// no state between runs.
type Processor struct {
	Logger     *log.Logger
	Precedence config.GroupPrecedence
}

// NewProcessor creates a Processor where group declarations take precedence
func NewProcessor(logger *log.Logger) Processor {
	return Processor{
		Logger:     logger,
		Precedence: config.PrecedenceGroup,
	}
}

// Process registers every controller on router, in order. The first error
// returned by the router stops processing and is returned as a
// *errors.ConfigurationError.
func (p Processor) Process(controllers []decl.Controller, router Router) error {
	for i := range controllers {
		err := p.processController(controllers[i], router)
		if err != nil {
			p.Logger.Errorf("error processing class %s: %v", controllers[i].Class, err)
			return err
		}
	}
	p.Logger.Debugf("processed %d classes", len(controllers))
	return nil
}

// groupPath returns the path of the group created for c and false when
// rules go to the current group
func (p Processor) groupPath(c decl.Controller) (string, bool) {
	switch {
	case c.Group != nil && c.HasMiddleware && p.Precedence == config.PrecedenceMiddleware:
		return "", true
	case c.Group != nil:
		return c.Group.Path, true
	case c.HasMiddleware, c.Resource != nil:
		return "", true
	}
	return "", false
}

func (p Processor) processController(c decl.Controller, router Router) error {
	var callback func() error
	if c.Resource != nil {
		resource := *c.Resource
		callback = func() error {
			res, err := router.Resource(resource.Path, c.Class)
			if err != nil {
				return configurationError(c.Class, "", "resource "+resource.Path, err)
			}
			res.Option(resource.Options.Clone())
			return nil
		}
	}
	var group Group
	if path, ok := p.groupPath(c); ok {
		g, err := router.Group(path, callback)
		if err != nil {
			return configurationError(c.Class, "", "group "+path, err)
		}
		if c.Group != nil {
			g.Option(c.Group.Options.Clone())
		}
		g.Middleware(cloneStrings(c.Middleware))
		p.Logger.Debug("group registered", "class", c.Class, "path", path)
		group = g
	} else {
		group = router.CurrentGroup()
	}
	for i := range c.Methods {
		if err := p.processMethod(c.Class, c.Methods[i], group); err != nil {
			return err
		}
	}
	return nil
}

func (p Processor) processMethod(class string, m decl.Method, group Group) error {
	target := decl.Target(class, m.Name)
	for _, r := range m.Routes {
		rule, err := group.AddRule(r.Path, target, r.Verb)
		if err != nil {
			return configurationError(class, m.Name, fmt.Sprintf("%s %s", r.Kind, r.Path), err)
		}
		if len(r.Name) > 0 {
			if err := rule.Name(r.Name); err != nil {
				return configurationError(class, m.Name, "name "+r.Name, err)
			}
		}
		rule.Option(r.Options.Clone())
		if m.HasMiddleware {
			rule.Middleware(cloneStrings(m.Middleware))
		}
		if m.HasGroupAlias {
			rule.Group(m.GroupAlias)
		}
		for _, model := range m.Models {
			rule.Model(model.Var, model.Model, model.Exception)
		}
		if m.Validation != nil {
			v := m.Validation
			rule.Validate(v.Validator, v.Scene, cloneMessages(v.Messages), v.Batch)
		}
		p.Logger.Debug("rule registered", "verb", string(r.Verb), "path", r.Path, "target", target)
	}
	return nil
}

func configurationError(class, method, op string, err error) error {
	if configErr, ok := err.(*routeErrors.ConfigurationError); ok {
		if len(configErr.Class) == 0 {
			configErr.Class = class
			configErr.Method = method
		}
		return configErr
	}
	return &routeErrors.ConfigurationError{
		Class:  class,
		Method: method,
		Op:     op,
		Err:    err,
	}
}

func cloneStrings(values []string) []string {
	c := make([]string, len(values))
	copy(c, values)
	return c
}

func cloneMessages(messages map[string]string) map[string]string {
	c := make(map[string]string, len(messages))
	for k, v := range messages {
		c[k] = v
	}
	return c
}
