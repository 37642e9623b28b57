// Package mount serves a routing table with echo
package mount

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"github.com/javiercbk/annoroute/decl"
	routeErrors "github.com/javiercbk/annoroute/errors"
	"github.com/javiercbk/annoroute/table"
)

// Mounter registers rules on an echo instance. Targets and middleware names
// are resolved through the registries.
type Mounter struct {
	Handlers   map[string]echo.HandlerFunc
	Middleware map[string]echo.MiddlewareFunc
	Logger     *log.Logger
}

type resolved struct {
	rule       table.Rule
	handler    echo.HandlerFunc
	middleware []echo.MiddlewareFunc
}

// Mount registers every rule. Nothing is registered when a target or a
// middleware cannot be resolved.
func (m Mounter) Mount(e *echo.Echo, rules []table.Rule) error {
	all := make([]resolved, 0, len(rules))
	for _, r := range rules {
		res, err := m.resolve(r)
		if err != nil {
			m.Logger.Errorf("error mounting %s %s: %v", r.Verb, r.FullPath, err)
			return err
		}
		all = append(all, res)
	}
	for _, res := range all {
		path := Path(res.rule.FullPath)
		var routes []*echo.Route
		if res.rule.Verb == decl.Any {
			routes = e.Any(path, res.handler, res.middleware...)
		} else {
			routes = []*echo.Route{e.Add(Method(res.rule.Verb), path, res.handler, res.middleware...)}
		}
		if len(res.rule.Name) > 0 {
			for _, route := range routes {
				route.Name = res.rule.Name
			}
		}
		m.Logger.Debug("route mounted", "verb", string(res.rule.Verb), "path", path, "target", res.rule.Target)
	}
	return nil
}

func (m Mounter) resolve(r table.Rule) (resolved, error) {
	op := fmt.Sprintf("mount %s %s", r.Verb, r.FullPath)
	class, method := splitTarget(r.Target)
	handler, ok := m.Handlers[r.Target]
	if !ok {
		return resolved{}, &routeErrors.ConfigurationError{Class: class, Method: method, Op: op, Err: routeErrors.ErrUnresolved}
	}
	middleware := make([]echo.MiddlewareFunc, 0, len(r.Middleware))
	for _, name := range r.Middleware {
		mw, ok := m.Middleware[name]
		if !ok {
			return resolved{}, &routeErrors.ConfigurationError{Class: class, Method: method, Op: op + " middleware " + name, Err: routeErrors.ErrUnresolved}
		}
		middleware = append(middleware, mw)
	}
	return resolved{rule: r, handler: handler, middleware: middleware}, nil
}

// Path converts a rule path into an echo path
func Path(fullPath string) string {
	return "/" + table.Rewrite(fullPath, func(name string) string {
		return ":" + name
	})
}

// Method returns the HTTP method of a verb. Any is mounted with echo.Any.
func Method(verb decl.Verb) string {
	return strings.ToUpper(string(verb))
}

func splitTarget(target string) (string, string) {
	i := strings.LastIndex(target, "@")
	if i < 0 {
		return target, ""
	}
	return target[:i], target[i+1:]
}
