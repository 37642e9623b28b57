// Package schema derives Swagger schemas from the Go struct types named by
// model bindings
package schema

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/getkin/kin-openapi/openapi3"

	routeErrors "github.com/javiercbk/annoroute/errors"
	"github.com/javiercbk/annoroute/folder"
	"github.com/javiercbk/annoroute/source"
)

const (
	typeObject  = "object"
	typeArray   = "array"
	typeString  = "string"
	typeInteger = "integer"
	typeNumber  = "number"
	typeBoolean = "boolean"
	timePkg     = "time"
	timeType    = "Time"
)

var (
	jsonNameExtractor = regexp.MustCompile(`json:"([a-zA-Z0-9_\-]*)[,"]`)
	requiredTag       = regexp.MustCompile(`(validate|binding):"([^"]*,)?required[,"]`)
)

type field struct {
	name     string
	typeExpr ast.Expr
	tag      string
	embedded bool
}

type structType struct {
	pkg     string
	name    string
	fields  []field
	imports map[string]string
}

// Resolver finds the struct types of a module. Packages are parsed once.
type Resolver struct {
	Module  source.Module
	Logger  *log.Logger
	structs map[string]*structType
	parsed  map[string]bool
}

// NewResolver creates a Resolver for the types of module
func NewResolver(module source.Module, logger *log.Logger) *Resolver {
	return &Resolver{
		Module:  module,
		Logger:  logger,
		structs: make(map[string]*structType),
		parsed:  make(map[string]bool),
	}
}

// SplitModel splits a model identifier into its import path and type name
func SplitModel(model string) (string, string) {
	i := strings.LastIndex(model, ".")
	if i < 0 || i < strings.LastIndex(model, "/") {
		return "", model
	}
	return model[:i], model[i+1:]
}

// Schema returns the schema of a model identified as "import/path.Type".
// ErrNotFound is returned for types outside the module or not declared as a struct.
func (r *Resolver) Schema(model string) (*openapi3.Schema, error) {
	pkg, name := SplitModel(model)
	s, err := r.find(pkg, name)
	if err != nil {
		return nil, err
	}
	return r.toSchema(s, map[string]bool{})
}

func (r *Resolver) find(pkg, name string) (*structType, error) {
	if err := r.parsePackage(pkg); err != nil {
		return nil, err
	}
	s, ok := r.structs[pkg+"."+name]
	if !ok {
		return nil, routeErrors.ErrNotFound
	}
	return s, nil
}

func (r *Resolver) parsePackage(pkg string) error {
	if r.parsed[pkg] {
		return nil
	}
	r.parsed[pkg] = true
	dir, ok := r.Module.PackageDir(pkg)
	if !ok {
		return routeErrors.ErrNotFound
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return routeErrors.ErrNotFound
	}
	if err != nil {
		r.Logger.Errorf("error reading package %s: %v", dir, err)
		return err
	}
	fset := token.NewFileSet()
	for _, e := range entries {
		if e.IsDir() || !folder.IsGoFile(e.Name()) || strings.HasSuffix(e.Name(), "_test.go") {
			continue
		}
		filePath := filepath.Join(dir, e.Name())
		file, err := parser.ParseFile(fset, filePath, nil, 0)
		if err != nil {
			r.Logger.Errorf("error parsing file %s: %v", filePath, err)
			return err
		}
		r.extractStructs(pkg, file)
	}
	r.Logger.Debug("package parsed", "package", pkg, "dir", dir)
	return nil
}

func (r *Resolver) extractStructs(pkg string, file *ast.File) {
	imports := make(map[string]string)
	for _, spec := range file.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		alias := path.Base(importPath)
		if spec.Name != nil {
			alias = spec.Name.Name
		}
		imports[alias] = importPath
	}
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			ts := spec.(*ast.TypeSpec)
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}
			s := &structType{pkg: pkg, name: ts.Name.Name, imports: imports}
			for _, f := range st.Fields.List {
				tag := ""
				if f.Tag != nil {
					tag, _ = strconv.Unquote(f.Tag.Value)
				}
				if len(f.Names) == 0 {
					s.fields = append(s.fields, field{typeExpr: f.Type, tag: tag, embedded: true})
					continue
				}
				for _, n := range f.Names {
					s.fields = append(s.fields, field{name: n.Name, typeExpr: f.Type, tag: tag})
				}
			}
			r.structs[pkg+"."+s.name] = s
		}
	}
}

// toSchema converts a struct into an object schema. Embedded structs are
// flattened into the object.
func (r *Resolver) toSchema(s *structType, seen map[string]bool) (*openapi3.Schema, error) {
	id := s.pkg + "." + s.name
	schema := &openapi3.Schema{
		Type:       typeObject,
		Properties: make(map[string]*openapi3.SchemaRef),
	}
	if seen[id] {
		return schema, nil
	}
	seen[id] = true
	defer delete(seen, id)
	required := make([]string, 0)
	for _, f := range s.fields {
		if f.embedded {
			embedded, ok := r.structOf(s, f.typeExpr)
			if !ok {
				continue
			}
			sub, err := r.toSchema(embedded, seen)
			if err != nil {
				return nil, err
			}
			for name, prop := range sub.Properties {
				schema.Properties[name] = prop
			}
			required = append(required, sub.Required...)
			continue
		}
		if !ast.IsExported(f.name) {
			continue
		}
		name := extractParamName(f.name, f.tag)
		if name == "-" {
			continue
		}
		prop, err := r.exprSchema(s, f.typeExpr, seen)
		if err != nil {
			return nil, err
		}
		schema.Properties[name] = &openapi3.SchemaRef{Value: prop}
		if requiredTag.MatchString(f.tag) {
			required = append(required, name)
		}
	}
	sort.Strings(required)
	schema.Required = required
	return schema, nil
}

// structOf resolves a type expression to a struct of the module
func (r *Resolver) structOf(s *structType, expr ast.Expr) (*structType, bool) {
	switch x := expr.(type) {
	case *ast.StarExpr:
		return r.structOf(s, x.X)
	case *ast.Ident:
		found, err := r.find(s.pkg, x.Name)
		return found, err == nil
	case *ast.SelectorExpr:
		ident, ok := x.X.(*ast.Ident)
		if !ok {
			return nil, false
		}
		pkg, ok := s.imports[ident.Name]
		if !ok {
			return nil, false
		}
		found, err := r.find(pkg, x.Sel.Name)
		return found, err == nil
	}
	return nil, false
}

func (r *Resolver) exprSchema(s *structType, expr ast.Expr, seen map[string]bool) (*openapi3.Schema, error) {
	switch x := expr.(type) {
	case *ast.StarExpr:
		return r.exprSchema(s, x.X, seen)
	case *ast.Ident:
		if t, format := swaggerType(x.Name); len(t) > 0 {
			return &openapi3.Schema{Type: t, Format: format}, nil
		}
	case *ast.SelectorExpr:
		if ident, ok := x.X.(*ast.Ident); ok && s.imports[ident.Name] == timePkg && x.Sel.Name == timeType {
			return &openapi3.Schema{Type: typeString, Format: "date-time"}, nil
		}
	case *ast.ArrayType:
		if ident, ok := x.Elt.(*ast.Ident); ok && ident.Name == "byte" {
			return &openapi3.Schema{Type: typeString, Format: "byte"}, nil
		}
		items, err := r.exprSchema(s, x.Elt, seen)
		if err != nil {
			return nil, err
		}
		return &openapi3.Schema{Type: typeArray, Items: &openapi3.SchemaRef{Value: items}}, nil
	case *ast.MapType:
		values, err := r.exprSchema(s, x.Value, seen)
		if err != nil {
			return nil, err
		}
		return &openapi3.Schema{Type: typeObject, AdditionalProperties: &openapi3.SchemaRef{Value: values}}, nil
	}
	if nested, ok := r.structOf(s, expr); ok {
		return r.toSchema(nested, seen)
	}
	return &openapi3.Schema{Type: typeObject}, nil
}

func extractParamName(fieldName string, fieldTag string) string {
	found := jsonNameExtractor.FindStringSubmatch(fieldTag)
	if len(found) > 1 && len(found[1]) > 0 {
		return found[1]
	}
	return strings.ToLower(fieldName[0:1]) + fieldName[1:]
}

func swaggerType(t string) (string, string) {
	switch t {
	case "bool":
		return typeBoolean, ""
	case "string", "rune", "complex64", "complex128":
		return typeString, ""
	case "int", "int8", "int16", "int32", "uint", "uint8", "uint16", "uint32", "byte":
		return typeInteger, "int32"
	case "int64", "uint64", "uintptr":
		return typeInteger, "int64"
	case "float32":
		return typeNumber, "float"
	case "float64":
		return typeNumber, "double"
	case "any":
		return typeObject, ""
	}
	return "", ""
}
