// Package swagger exports a routing table as a Swagger 2.0 document
package swagger

import (
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/javiercbk/annoroute/decl"
	routeErrors "github.com/javiercbk/annoroute/errors"
	"github.com/javiercbk/annoroute/table"
)

const (
	// WildcardParam names the path parameter generated for a trailing wildcard
	WildcardParam  = "wildcard"
	defaultCode    = "default"
	okCode         = "200"
	notFoundCode   = "404"
	definitionsRef = "#/definitions/"
	paramInPath    = "path"
	paramString    = "string"
)

type errorWriter struct {
	w   io.Writer
	err error
}

func (ew *errorWriter) Write(p []byte) (int, error) {
	if ew.err == nil {
		n, err := ew.w.Write(p)
		if err != nil {
			ew.err = err
		}
		return n, err
	}
	return 0, ew.err
}

// SchemaResolver returns the schema of a bound model type
type SchemaResolver interface {
	Schema(model string) (*openapi3.Schema, error)
}

// Builder creates Swagger documents. When Models is set, every bound model
// gets a definition and the operations binding it respond with it.
type Builder struct {
	Models SchemaResolver
	Logger *log.Logger
}

// Build creates a Swagger document without model definitions
func Build(rules []table.Rule, info openapi3.Info) openapi2.Swagger {
	swagger, _ := Builder{}.Build(rules, info)
	return swagger
}

// Build creates a Swagger document with one operation per rule and verb.
// Rules matching any verb expand to every verb not claimed by a rule for
// that verb on the same path.
func (b Builder) Build(rules []table.Rule, info openapi3.Info) (openapi2.Swagger, error) {
	swagger := openapi2.Swagger{
		Info:  info,
		Paths: make(map[string]*openapi2.PathItem),
	}
	fromAny := make(map[string]bool)
	tags := make(map[string]bool)
	// definition name of every model seen, empty when the model was skipped
	names := make(map[string]string)
	for _, r := range rules {
		path := swaggerPath(r.FullPath)
		item, ok := swagger.Paths[path]
		if !ok {
			item = &openapi2.PathItem{}
			swagger.Paths[path] = item
		}
		tag := pathTag(r.FullPath)
		if len(tag) > 0 {
			tags[tag] = true
		}
		if err := b.define(&swagger, names, r.Models); err != nil {
			return swagger, err
		}
		if r.Verb == decl.Any {
			for _, verb := range decl.Verbs {
				if operation(item, verb) != nil {
					continue
				}
				setOperation(item, verb, b.newOperation(names, r, tag, operationID(r)+"_"+string(verb)))
				fromAny[string(verb)+" "+path] = true
			}
			continue
		}
		key := string(r.Verb) + " " + path
		if operation(item, r.Verb) == nil || fromAny[key] {
			setOperation(item, r.Verb, b.newOperation(names, r, tag, operationID(r)))
			delete(fromAny, key)
		}
	}
	tagNames := make([]string, 0, len(tags))
	for tag := range tags {
		tagNames = append(tagNames, tag)
	}
	sort.Strings(tagNames)
	for _, name := range tagNames {
		swagger.Tags = append(swagger.Tags, &openapi3.Tag{Name: name})
	}
	return swagger, nil
}

// define adds the definitions of models. Models that cannot be found are
// skipped. Models sharing a definition name get a numeric suffix.
func (b Builder) define(swagger *openapi2.Swagger, names map[string]string, models []decl.ModelBinding) error {
	if b.Models == nil {
		return nil
	}
	for _, m := range models {
		if _, ok := names[m.Model]; ok {
			continue
		}
		schema, err := b.Models.Schema(m.Model)
		if err == routeErrors.ErrNotFound {
			b.Logger.Warn("model definition skipped", "model", m.Model)
			names[m.Model] = ""
			continue
		}
		if err != nil {
			b.Logger.Errorf("error resolving model %s: %v", m.Model, err)
			return err
		}
		if swagger.Definitions == nil {
			swagger.Definitions = make(map[string]*openapi3.SchemaRef)
		}
		base := DefinitionName(m.Model)
		name := base
		for i := 2; swagger.Definitions[name] != nil; i++ {
			name = base + strconv.Itoa(i)
		}
		names[m.Model] = name
		swagger.Definitions[name] = &openapi3.SchemaRef{Value: schema}
	}
	return nil
}

// DefinitionName returns the preferred definition name of a model identifier,
// its package name and type name
func DefinitionName(model string) string {
	return path.Base(model)
}

func (b Builder) newOperation(names map[string]string, r table.Rule, tag, id string) *openapi2.Operation {
	op := &openapi2.Operation{
		Summary:     r.Target,
		OperationID: id,
		Parameters:  pathParameters(r.FullPath),
		Responses: map[string]*openapi2.Response{
			defaultCode: {Description: "handled by " + r.Target},
		},
	}
	if len(tag) > 0 {
		op.Tags = []string{tag}
	}
	missing := make([]string, 0)
	for _, m := range r.Models {
		name := names[m.Model]
		if _, ok := op.Responses[okCode]; !ok && len(name) > 0 {
			op.Responses[okCode] = &openapi2.Response{
				Description: name,
				Schema:      &openapi3.SchemaRef{Ref: definitionsRef + name},
			}
		}
		if m.Exception {
			missing = append(missing, m.Var)
		}
	}
	if len(missing) > 0 && b.Models != nil {
		op.Responses[notFoundCode] = &openapi2.Response{Description: strings.Join(missing, ", ") + " not found"}
	}
	return op
}

func operationID(r table.Rule) string {
	if len(r.Name) > 0 {
		return r.Name
	}
	return r.Target
}

func swaggerPath(fullPath string) string {
	path := table.Rewrite(fullPath, func(name string) string {
		return "{" + name + "}"
	})
	if path == table.Wildcard || strings.HasSuffix(path, "/"+table.Wildcard) {
		path = path[:len(path)-1] + "{" + WildcardParam + "}"
	}
	return "/" + path
}

func pathParameters(fullPath string) openapi2.Parameters {
	names := table.Variables(fullPath)
	if fullPath == table.Wildcard || strings.HasSuffix(fullPath, "/"+table.Wildcard) {
		names = append(names, WildcardParam)
	}
	if len(names) == 0 {
		return nil
	}
	params := make(openapi2.Parameters, 0, len(names))
	for _, name := range names {
		params = append(params, &openapi2.Parameter{
			In:       paramInPath,
			Name:     name,
			Type:     paramString,
			Required: true,
		})
	}
	return params
}

// pathTag returns the first literal segment of a path
func pathTag(fullPath string) string {
	first := strings.SplitN(fullPath, "/", 2)[0]
	if len(first) == 0 || first == table.Wildcard || strings.ContainsAny(first, ":<") {
		return ""
	}
	return first
}

func operation(item *openapi2.PathItem, verb decl.Verb) *openapi2.Operation {
	switch verb {
	case decl.Delete:
		return item.Delete
	case decl.Get:
		return item.Get
	case decl.Head:
		return item.Head
	case decl.OptionsVerb:
		return item.Options
	case decl.Patch:
		return item.Patch
	case decl.Post:
		return item.Post
	case decl.Put:
		return item.Put
	}
	return nil
}

func setOperation(item *openapi2.PathItem, verb decl.Verb, op *openapi2.Operation) {
	switch verb {
	case decl.Delete:
		item.Delete = op
	case decl.Get:
		item.Get = op
	case decl.Head:
		item.Head = op
	case decl.OptionsVerb:
		item.Options = op
	case decl.Patch:
		item.Patch = op
	case decl.Post:
		item.Post = op
	case decl.Put:
		item.Put = op
	}
}

func isEmptyString(str string) bool {
	return len(str) == 0
}

func isEmptyStrSlice(slice []string) bool {
	return len(slice) == 0
}

func isEmptyInfo(info openapi3.Info) bool {
	return isEmptyString(info.Title) &&
		isEmptyString(info.Description) &&
		isEmptyString(info.TermsOfService) &&
		isEmptyString(info.Version)
}

func isEmptyParameters(parameters openapi2.Parameters) bool {
	return len(parameters) == 0
}

func isEmptyResponses(responses map[string]*openapi2.Response) bool {
	return len(responses) == 0
}

func isEmptyTags(tags openapi3.Tags) bool {
	return len(tags) == 0
}

func isEmptySchemaRef(schemaRef *openapi3.SchemaRef) bool {
	return schemaRef == nil || (isEmptyString(schemaRef.Ref) && schemaRef.Value == nil)
}
