package annoroute

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/javiercbk/annoroute/config"
	"github.com/javiercbk/annoroute/decl"
	routeErrors "github.com/javiercbk/annoroute/errors"
	"github.com/javiercbk/annoroute/folder"
)

// Loader scans the configured controller roots and registers their
// declarations on a router. The host calls Load once, after its own routes
// are defined.
type Loader struct {
	Config    config.Config
	Source    Source
	Processor Processor
	Logger    *log.Logger
}

// NewLoader creates a Loader whose processor follows the configured group precedence
func NewLoader(c config.Config, source Source, logger *log.Logger) (Loader, error) {
	precedence, err := config.ParsePrecedence(string(c.Annotation.Route.GroupPrecedence))
	if err != nil {
		logger.Errorf("error creating loader: %v", err)
		return Loader{}, err
	}
	processor := NewProcessor(logger)
	processor.Precedence = precedence
	return Loader{
		Config:    c,
		Source:    source,
		Processor: processor,
		Logger:    logger,
	}, nil
}

// Load registers the annotated controllers on router. Missing roots are
// skipped. A root that exists but cannot be read is a *errors.DiscoveryError.
func (l Loader) Load(router Router) error {
	if !l.Config.Annotation.Route.Enable {
		l.Logger.Debug("annotation routes disabled")
		return nil
	}
	controllers, err := l.Read()
	if err != nil {
		return err
	}
	return l.Processor.Process(controllers, router)
}

// Read returns the declarations of every scan root in order
func (l Loader) Read() ([]decl.Controller, error) {
	reader := Reader{Source: l.Source, Logger: l.Logger}
	controllers := make([]decl.Controller, 0)
	for _, root := range l.Config.ScanRoots() {
		ok, err := folder.ShouldScan(root)
		if err != nil {
			l.Logger.Errorf("error probing scan root %s: %v", root, err)
			return nil, &routeErrors.DiscoveryError{Root: root, Err: err}
		}
		if !ok {
			l.Logger.Debug("scan root skipped", "root", root)
			continue
		}
		found, err := reader.Read(root)
		if err != nil {
			var discoveryErr *routeErrors.DiscoveryError
			if errors.As(err, &discoveryErr) {
				return nil, err
			}
			return nil, &routeErrors.DiscoveryError{Root: root, Err: err}
		}
		l.Logger.Debug("scan root read", "root", root, "classes", len(found))
		controllers = append(controllers, found...)
	}
	return controllers, nil
}
