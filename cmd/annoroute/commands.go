package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"

	"github.com/javiercbk/annoroute/cache"
	"github.com/javiercbk/annoroute/encoding/swagger"
	"github.com/javiercbk/annoroute/mount"
	"github.com/javiercbk/annoroute/schema"
	"github.com/javiercbk/annoroute/source"
	"github.com/javiercbk/annoroute/table"
)

func output(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

// RoutesCmd prints the route table
type RoutesCmd struct {
	Out io.Writer `kong:"-"`
}

// Run prints the routes
func (r *RoutesCmd) Run(g *Globals, logger *log.Logger) error {
	tb, err := g.routeTable(logger)
	if err != nil {
		return err
	}
	renderRoutes(output(r.Out), tb.Rules())
	return nil
}

// SwaggerCmd exports the route table
type SwaggerCmd struct {
	Title   string    `help:"Document title." default:"Annotated routes"`
	Version string    `help:"Document version." default:"1.0.0"`
	Output  string    `help:"Output file, stdout when empty." type:"path" short:"o"`
	Out     io.Writer `kong:"-"`
}

// Run writes the Swagger document
func (s *SwaggerCmd) Run(g *Globals, logger *log.Logger) error {
	tb, err := g.routeTable(logger)
	if err != nil {
		return err
	}
	builder := swagger.Builder{Logger: logger}
	c, err := g.loadConfig(logger)
	if err != nil {
		return err
	}
	module, err := source.FindModule(c.AppPath)
	if err != nil {
		logger.Warn("go module not found, models will not be documented", "app", c.AppPath, "err", err)
	} else {
		builder.Models = schema.NewResolver(module, logger)
	}
	doc, err := builder.Build(tb.Rules(), openapi3.Info{Title: s.Title, Version: s.Version})
	if err != nil {
		return err
	}
	if len(s.Output) == 0 {
		return swagger.MarshalYAML(doc, output(s.Out))
	}
	f, err := os.Create(s.Output)
	if err != nil {
		logger.Errorf("error creating %s: %v", s.Output, err)
		return err
	}
	if err = swagger.MarshalYAML(doc, f); err != nil {
		f.Close()
		logger.Errorf("error writing %s: %v", s.Output, err)
		return err
	}
	return f.Close()
}

// ServeCmd serves every rule with a handler describing the matched rule
type ServeCmd struct {
	Addr string `help:"Listen address." default:":8080"`
}

// Run starts the server
func (s *ServeCmd) Run(g *Globals, logger *log.Logger) error {
	tb, err := g.routeTable(logger)
	if err != nil {
		return err
	}
	e, err := newEcho(tb.Rules(), logger)
	if err != nil {
		return err
	}
	logger.Info("serving annotated routes", "addr", s.Addr, "rules", tb.Len())
	return e.Start(s.Addr)
}

// newEcho mounts rules with placeholder handlers and pass through middleware
func newEcho(rules []table.Rule, logger *log.Logger) (*echo.Echo, error) {
	m := mount.Mounter{
		Handlers:   make(map[string]echo.HandlerFunc),
		Middleware: make(map[string]echo.MiddlewareFunc),
		Logger:     logger,
	}
	for _, r := range rules {
		target := r.Target
		m.Handlers[target] = func(c echo.Context) error {
			params := make(map[string]string)
			for _, name := range c.ParamNames() {
				params[name] = c.Param(name)
			}
			return c.JSON(http.StatusOK, map[string]interface{}{
				"target": target,
				"params": params,
			})
		}
		for _, name := range r.Middleware {
			m.Middleware[name] = passThrough(name)
		}
	}
	e := echo.New()
	e.HideBanner = true
	if err := m.Mount(e, rules); err != nil {
		return nil, err
	}
	return e, nil
}

func passThrough(name string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Add("X-Annoroute-Middleware", name)
			return next(c)
		}
	}
}

// CacheCmd groups the cache commands
type CacheCmd struct {
	Build CacheBuildCmd `cmd:"" help:"Scan the controllers and write the route cache."`
	Show  CacheShowCmd  `cmd:"" help:"Print the cached routes."`
}

// CacheBuildCmd writes the route cache
type CacheBuildCmd struct {
	Path string `arg:"" help:"Cache file." type:"path"`
}

// Run scans the controllers and saves the snapshot
func (b *CacheBuildCmd) Run(g *Globals, logger *log.Logger) error {
	c, err := g.loadConfig(logger)
	if err != nil {
		return err
	}
	tb, err := g.scan(c, logger)
	if err != nil {
		return err
	}
	revision, err := cache.Revision(c.AppPath)
	if err != nil {
		logger.Warn("unable to read revision, cache will always be stale", "err", err)
	}
	store := cache.Store{Path: b.Path, Logger: logger}
	if err = store.Save(cache.Build(tb, revision)); err != nil {
		return err
	}
	logger.Info("route cache written", "path", b.Path, "rules", tb.Len(), "revision", revision)
	return nil
}

// CacheShowCmd prints a route cache
type CacheShowCmd struct {
	Path string    `arg:"" help:"Cache file." type:"path" existingfile:""`
	Out  io.Writer `kong:"-"`
}

// Run replays the cache into a table and prints it
func (s *CacheShowCmd) Run(g *Globals, logger *log.Logger) error {
	c, err := g.loadConfig(logger)
	if err != nil {
		return err
	}
	snapshot, err := cache.Store{Path: s.Path, Logger: logger}.Load()
	if err != nil {
		return err
	}
	tb := table.New()
	if err = snapshot.Replay(tb); err != nil {
		return err
	}
	revision, _ := cache.Revision(c.AppPath)
	w := output(s.Out)
	fmt.Fprintf(w, "revision: %s (stale: %t)\n", snapshot.Revision, snapshot.Stale(revision))
	renderRoutes(w, tb.Rules())
	return nil
}
