// Package config holds the settings of annotation route loading
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v2"
)

// ParserErr is returned when a configuration is invalid
type ParserErr string

func (p ParserErr) Error() string {
	return string(p)
}

const (
	// ErrInvalidPrecedence is returned when group_precedence is neither group nor middleware
	ErrInvalidPrecedence ParserErr = "invalid group precedence, expected group or middleware"
	// ErrMissingControllerLayer is returned when route.controller_layer is empty
	ErrMissingControllerLayer ParserErr = "missing controller layer"

	defaultControllerLayer = "controller"
	defaultAppPath         = "."
)

// GroupPrecedence decides the group path of a class declaring both a group
// and a middleware marker
type GroupPrecedence string

const (
	// PrecedenceGroup uses the declared group path. The middleware is still
	// attached to the group.
	PrecedenceGroup GroupPrecedence = "group"
	// PrecedenceMiddleware anchors the group at the root path
	PrecedenceMiddleware GroupPrecedence = "middleware"
)

// ParsePrecedence parses "group" or "middleware", ignoring case. An empty text
// is PrecedenceGroup.
func ParsePrecedence(text string) (GroupPrecedence, error) {
	switch p := GroupPrecedence(strings.ToLower(strings.TrimSpace(text))); p {
	case "":
		return PrecedenceGroup, nil
	case PrecedenceGroup, PrecedenceMiddleware:
		return p, nil
	}
	return PrecedenceGroup, ErrInvalidPrecedence
}

// Config is the annotation route configuration
type Config struct {
	AppPath    string     `yaml:"app_path"`
	Annotation Annotation `yaml:"annotation"`
	Route      Route      `yaml:"route"`
}

// Annotation groups the annotation settings
type Annotation struct {
	Route AnnotationRoute `yaml:"route"`
}

// AnnotationRoute configures annotation route loading
type AnnotationRoute struct {
	Enable bool `yaml:"enable"`
	// Controllers are scanned in addition to the controller layer
	Controllers     []string        `yaml:"controllers"`
	GroupPrecedence GroupPrecedence `yaml:"group_precedence"`
}

// Route holds the router settings used by annotation loading
type Route struct {
	ControllerLayer string `yaml:"controller_layer"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		AppPath: defaultAppPath,
		Annotation: Annotation{
			Route: AnnotationRoute{
				Enable:          true,
				Controllers:     []string{},
				GroupPrecedence: PrecedenceGroup,
			},
		},
		Route: Route{
			ControllerLayer: defaultControllerLayer,
		},
	}
}

// Decoder is able to decode and validate a Config
type Decoder struct {
	Logger *log.Logger
}

// Decode decodes a YAML configuration over the defaults
func (decoder Decoder) Decode(r io.Reader) (Config, error) {
	c := Default()
	err := yaml.NewDecoder(r).Decode(&c)
	if err != nil && err != io.EOF {
		decoder.Logger.Errorf("error decoding configuration: %v", err)
		return c, err
	}
	if err = decoder.Validate(&c); err != nil {
		return c, err
	}
	return c, nil
}

// Validate normalizes c and returns an error if it cannot be used
func (decoder Decoder) Validate(c *Config) error {
	precedence, err := ParsePrecedence(string(c.Annotation.Route.GroupPrecedence))
	if err != nil {
		decoder.Logger.Errorf("error validating configuration: %v: %q", err, c.Annotation.Route.GroupPrecedence)
		return err
	}
	c.Annotation.Route.GroupPrecedence = precedence
	if len(strings.TrimSpace(c.Route.ControllerLayer)) == 0 {
		decoder.Logger.Errorf("error validating configuration: %v", ErrMissingControllerLayer)
		return ErrMissingControllerLayer
	}
	if len(c.AppPath) == 0 {
		c.AppPath = defaultAppPath
	}
	return nil
}

// Load reads a configuration file. Relative paths are resolved against the
// directory of the file.
func (decoder Decoder) Load(path string) (Config, error) {
	decoder.Logger.Debugf("loading configuration from %s", path)
	f, err := os.Open(path)
	if err != nil {
		decoder.Logger.Errorf("error opening configuration %s: %v", path, err)
		return Default(), err
	}
	defer f.Close()
	c, err := decoder.Decode(f)
	if err != nil {
		return c, err
	}
	c.Resolve(filepath.Dir(path))
	return c, nil
}

// Resolve makes the application path and extra controller roots absolute
// against base
func (c *Config) Resolve(base string) {
	c.AppPath = resolve(base, c.AppPath)
	for i, root := range c.Annotation.Route.Controllers {
		c.Annotation.Route.Controllers[i] = resolve(base, root)
	}
}

// ScanRoots returns the controller layer followed by the extra roots,
// without duplicates
func (c Config) ScanRoots() []string {
	roots := make([]string, 0, len(c.Annotation.Route.Controllers)+1)
	seen := make(map[string]bool)
	add := func(root string) {
		root = filepath.Clean(root)
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	add(filepath.Join(c.AppPath, c.Route.ControllerLayer))
	for _, root := range c.Annotation.Route.Controllers {
		add(root)
	}
	return roots
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
