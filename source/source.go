// Package source discovers annotated controllers in Go source code.
//
// Every exported named type found under a scan root is a class. Its exported
// methods, with either a value or a pointer receiver, are its public methods.
// Class annotations are read from the type's doc comment and method
// annotations from the method's doc comment.
package source

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/charmbracelet/log"

	"github.com/javiercbk/annoroute/annotation"
	routeErrors "github.com/javiercbk/annoroute/errors"
	"github.com/javiercbk/annoroute/folder"
)

// Member is a class or, when Method is set, one of its methods
type Member struct {
	Class  string
	Method string
}

type method struct {
	name        string
	annotations []annotation.Annotation
}

type class struct {
	id          string
	name        string
	file        string
	annotations []annotation.Annotation
	methods     []method
}

type receiver struct {
	typeName string
	method   method
}

// GoSource reads declarations from go files
type GoSource struct {
	Logger    *log.Logger
	BlackList []*regexp.Regexp
	classes   map[string]*class
}

// NewGoSource creates a GoSource with the default blacklist
func NewGoSource(logger *log.Logger) *GoSource {
	return &GoSource{
		Logger:    logger,
		BlackList: folder.DefaultBlackList,
		classes:   make(map[string]*class),
	}
}

// ListClasses parses every go file under root and returns the class ids found,
// in file name and then source order
func (s *GoSource) ListClasses(root string) ([]string, error) {
	if s.classes == nil {
		s.classes = make(map[string]*class)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &routeErrors.DiscoveryError{Root: root, Err: err}
	}
	module, err := FindModule(absRoot)
	if err != nil && err != routeErrors.ErrNotFound {
		s.Logger.Errorf("error reading module for %s: %v", absRoot, err)
		return nil, &routeErrors.DiscoveryError{Root: root, Err: err}
	}
	hasModule := err == nil
	s.Logger.Debugf("searching all go files in directory %s recursively", absRoot)
	goFiles, err := folder.ListGoFilesRecursively(absRoot, s.BlackList)
	if err != nil {
		s.Logger.Errorf("error listing go files for path %s: %v", absRoot, err)
		return nil, &routeErrors.DiscoveryError{Root: root, Err: err}
	}
	// methods may be declared in a different file than their type, so every
	// file of a package is read before methods are attached
	pkgOrder := make([]string, 0)
	pkgClasses := make(map[string][]*class)
	pkgReceivers := make(map[string][]receiver)
	for _, goFile := range goFiles {
		fset := token.NewFileSet()
		f, err := astForFile(goFile, fset)
		if err != nil {
			s.Logger.Errorf("error parsing ast from file %s: %v", goFile, err)
			return nil, &routeErrors.DiscoveryError{Root: root, Err: err}
		}
		dir := filepath.Dir(goFile)
		if _, ok := pkgClasses[dir]; !ok {
			pkgOrder = append(pkgOrder, dir)
			pkgClasses[dir] = make([]*class, 0)
		}
		prefix := f.Name.Name
		if hasModule {
			prefix, err = module.ImportPath(dir)
			if err != nil {
				return nil, &routeErrors.DiscoveryError{Root: root, Err: err}
			}
		}
		for _, d := range f.Decls {
			switch x := d.(type) {
			case *ast.GenDecl:
				if x.Tok != token.TYPE {
					continue
				}
				for _, spec := range x.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok || !ts.Name.IsExported() {
						continue
					}
					doc := ts.Doc
					if doc == nil && len(x.Specs) == 1 {
						doc = x.Doc
					}
					pkgClasses[dir] = append(pkgClasses[dir], &class{
						id:          prefix + "." + ts.Name.Name,
						name:        ts.Name.Name,
						file:        goFile,
						annotations: annotation.ParseComment(fset, doc),
					})
				}
			case *ast.FuncDecl:
				typeName := receiverType(x)
				if len(typeName) == 0 || !x.Name.IsExported() {
					continue
				}
				pkgReceivers[dir] = append(pkgReceivers[dir], receiver{
					typeName: typeName,
					method: method{
						name:        x.Name.Name,
						annotations: annotation.ParseComment(fset, x.Doc),
					},
				})
			}
		}
	}
	ids := make([]string, 0)
	for _, dir := range pkgOrder {
		byName := make(map[string]*class, len(pkgClasses[dir]))
		for _, c := range pkgClasses[dir] {
			byName[c.name] = c
		}
		for _, r := range pkgReceivers[dir] {
			if c, ok := byName[r.typeName]; ok {
				c.methods = append(c.methods, r.method)
			}
		}
		for _, c := range pkgClasses[dir] {
			s.Logger.Debug("class found", "class", c.id, "methods", len(c.methods), "file", c.file)
			s.classes[c.id] = c
			ids = append(ids, c.id)
		}
	}
	return ids, nil
}

// Methods returns the public methods of a class in source order
func (s *GoSource) Methods(classID string) ([]string, error) {
	c, ok := s.classes[classID]
	if !ok {
		return nil, routeErrors.ErrNotFound
	}
	names := make([]string, len(c.methods))
	for i := range c.methods {
		names[i] = c.methods[i].name
	}
	return names, nil
}

// Annotations returns the annotations of a kind declared on a class or method
func (s *GoSource) Annotations(member Member, kind annotation.Kind) ([]annotation.Annotation, error) {
	c, ok := s.classes[member.Class]
	if !ok {
		return nil, routeErrors.ErrNotFound
	}
	if len(member.Method) == 0 {
		return annotation.Filter(c.annotations, kind), nil
	}
	for _, m := range c.methods {
		if m.name == member.Method {
			return annotation.Filter(m.annotations, kind), nil
		}
	}
	return nil, routeErrors.ErrNotFound
}

func receiverType(x *ast.FuncDecl) string {
	if x.Recv == nil || len(x.Recv.List) == 0 {
		return ""
	}
	expr := x.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name
		}
	case *ast.IndexListExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name
		}
	}
	return ""
}

func astForFile(filePath string, fset *token.FileSet) (*ast.File, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return astForReader(filePath, f, fset)
}

func astForReader(filePath string, r io.Reader, fset *token.FileSet) (*ast.File, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parser.ParseFile(fset, filePath, src, parser.ParseComments)
}
