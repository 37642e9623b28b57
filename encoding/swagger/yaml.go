package swagger

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/javiercbk/annoroute/decl"
)

var escapePropNameRegExp = regexp.MustCompile("^[a-zA-Z_]+$")

// verbOrder is the order operations are written in a path item
var verbOrder = [...]decl.Verb{decl.Get, decl.Put, decl.Post, decl.Delete, decl.OptionsVerb, decl.Head, decl.Patch}

// MarshalYAML marshals a Swagger definition to YAML. Paths, operations,
// responses and tags are written in a stable order.
func MarshalYAML(swagger openapi2.Swagger, w io.Writer) error {
	ew := &errorWriter{w: w}
	writeRawProp("swagger", "\"2.0\"", 0, ew)
	if !isEmptyInfo(swagger.Info) {
		marshalInfo(swagger.Info, ew)
	}
	if !isEmptyStrSlice(swagger.Schemes) {
		writeStrSlice("schemes", swagger.Schemes, 0, ew)
	}
	if !isEmptyString(swagger.Host) {
		writeStringProp("host", swagger.Host, 0, ew)
	}
	if !isEmptyString(swagger.BasePath) {
		writeStringProp("basePath", swagger.BasePath, 0, ew)
	}
	if len(swagger.Paths) > 0 {
		writeObject("paths", 0, ew)
		urls := make([]string, 0, len(swagger.Paths))
		for url := range swagger.Paths {
			urls = append(urls, url)
		}
		sort.Strings(urls)
		for _, url := range urls {
			writeObject(url, 1, ew)
			marshalPath(swagger.Paths[url], ew)
		}
	}
	if len(swagger.Definitions) > 0 {
		marshalDefinitions(swagger.Definitions, ew)
	}
	if !isEmptyTags(swagger.Tags) {
		marshalTags(swagger.Tags, 0, ew)
	}
	return ew.err
}

func writeLn(line string, indent int, ew *errorWriter) {
	for i := 0; i < indent; i++ {
		ew.Write([]byte("  "))
	}
	ew.Write([]byte(line))
	ew.Write([]byte("\n"))
}

func escapePropName(name string) string {
	if escapePropNameRegExp.MatchString(name) {
		return name
	}
	return strconv.Quote(name)
}

func writeRawProp(name, value string, indent int, ew *errorWriter) {
	writeLn(fmt.Sprintf("%s: %s", escapePropName(name), value), indent, ew)
}

// writeStringProp writes value as a double quoted scalar
func writeStringProp(name, value string, indent int, ew *errorWriter) {
	writeRawProp(name, strconv.Quote(value), indent, ew)
}

func writeStrSlice(name string, values []string, indent int, ew *errorWriter) {
	writeObject(name, indent, ew)
	for _, v := range values {
		writeLn("- "+strconv.Quote(v), indent+1, ew)
	}
}

func writeBoolProp(name string, value bool, indent int, ew *errorWriter) {
	writeRawProp(name, strconv.FormatBool(value), indent, ew)
}

func writeObject(name string, indent int, ew *errorWriter) {
	writeLn(escapePropName(name)+":", indent, ew)
}

func marshalInfo(info openapi3.Info, ew *errorWriter) {
	writeObject("info", 0, ew)
	if !isEmptyString(info.Title) {
		writeStringProp("title", info.Title, 1, ew)
	}
	if !isEmptyString(info.Description) {
		writeStringProp("description", info.Description, 1, ew)
	}
	if !isEmptyString(info.TermsOfService) {
		writeStringProp("termsOfService", info.TermsOfService, 1, ew)
	}
	if !isEmptyString(info.Version) {
		writeStringProp("version", info.Version, 1, ew)
	}
}

func marshalPath(pathItem *openapi2.PathItem, ew *errorWriter) {
	for _, verb := range verbOrder {
		if op := operation(pathItem, verb); op != nil {
			writeObject(string(verb), 2, ew)
			marshalOperation(op, ew)
		}
	}
	if !isEmptyParameters(pathItem.Parameters) {
		writeObject("parameters", 2, ew)
		for _, p := range pathItem.Parameters {
			marshalParameterArr(p, 3, ew)
		}
	}
}

func marshalOperation(operation *openapi2.Operation, ew *errorWriter) {
	if !isEmptyString(operation.Summary) {
		writeStringProp("summary", operation.Summary, 3, ew)
	}
	if !isEmptyString(operation.Description) {
		writeStringProp("description", operation.Description, 3, ew)
	}
	if !isEmptyString(operation.OperationID) {
		writeStringProp("operationId", operation.OperationID, 3, ew)
	}
	if !isEmptyStrSlice(operation.Consumes) {
		writeStrSlice("consumes", operation.Consumes, 3, ew)
	}
	if !isEmptyStrSlice(operation.Produces) {
		writeStrSlice("produces", operation.Produces, 3, ew)
	}
	if !isEmptyStrSlice(operation.Tags) {
		writeStrSlice("tags", operation.Tags, 3, ew)
	}
	if !isEmptyParameters(operation.Parameters) {
		writeObject("parameters", 3, ew)
		for _, p := range operation.Parameters {
			marshalParameterArr(p, 4, ew)
		}
	}
	if !isEmptyResponses(operation.Responses) {
		writeObject("responses", 3, ew)
		codes := make([]string, 0, len(operation.Responses))
		for code := range operation.Responses {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			marshalResponse(code, operation.Responses[code], 4, ew)
		}
	}
}

func marshalParameterArr(parameter *openapi2.Parameter, indent int, ew *errorWriter) {
	// in is a required property so it MUST be present
	writeLn("- in: "+strconv.Quote(parameter.In), indent, ew)
	indent++
	if !isEmptyString(parameter.Name) {
		writeStringProp("name", parameter.Name, indent, ew)
	}
	if !isEmptyString(parameter.Type) {
		writeStringProp("type", parameter.Type, indent, ew)
	}
	if !isEmptyString(parameter.Format) {
		writeStringProp("format", parameter.Format, indent, ew)
	}
	if !isEmptyString(parameter.Description) {
		writeStringProp("description", parameter.Description, indent, ew)
	}
	if !isEmptyString(parameter.Pattern) {
		writeStringProp("pattern", parameter.Pattern, indent, ew)
	}
	writeBoolProp("required", parameter.Required, indent, ew)
}

func marshalResponse(code string, response *openapi2.Response, indent int, ew *errorWriter) {
	writeObject(code, indent, ew)
	if !isEmptyString(response.Ref) {
		writeStringProp("$ref", response.Ref, indent+1, ew)
	}
	if !isEmptyString(response.Description) {
		writeStringProp("description", response.Description, indent+1, ew)
	}
	if !isEmptySchemaRef(response.Schema) {
		writeObject("schema", indent+1, ew)
		marshalSchemaRef(response.Schema, indent+2, ew)
	}
}

func marshalDefinitions(definitions map[string]*openapi3.SchemaRef, ew *errorWriter) {
	writeObject("definitions", 0, ew)
	for _, name := range sortedKeys(definitions) {
		writeObject(name, 1, ew)
		marshalSchemaRef(definitions[name], 2, ew)
	}
}

func marshalSchemaRef(schemaRef *openapi3.SchemaRef, indent int, ew *errorWriter) {
	if !isEmptyString(schemaRef.Ref) {
		writeStringProp("$ref", schemaRef.Ref, indent, ew)
	} else if schemaRef.Value != nil {
		marshalSchema(schemaRef.Value, indent, ew)
	}
}

func marshalSchema(schema *openapi3.Schema, indent int, ew *errorWriter) {
	if !isEmptyString(schema.Title) {
		writeStringProp("title", schema.Title, indent, ew)
	}
	if !isEmptyString(schema.Format) {
		writeStringProp("format", schema.Format, indent, ew)
	}
	if !isEmptyString(schema.Type) {
		writeStringProp("type", schema.Type, indent, ew)
	}
	if !isEmptyString(schema.Description) {
		writeStringProp("description", schema.Description, indent, ew)
	}
	if !isEmptySchemaRef(schema.Items) {
		writeObject("items", indent, ew)
		marshalSchemaRef(schema.Items, indent+1, ew)
	}
	if len(schema.Properties) > 0 {
		writeObject("properties", indent, ew)
		for _, name := range sortedKeys(schema.Properties) {
			property := schema.Properties[name]
			if isEmptySchemaRef(property) {
				writeRawProp(name, "{}", indent+1, ew)
				continue
			}
			writeObject(name, indent+1, ew)
			marshalSchemaRef(property, indent+2, ew)
		}
	}
	if !isEmptySchemaRef(schema.AdditionalProperties) {
		writeObject("additionalProperties", indent, ew)
		marshalSchemaRef(schema.AdditionalProperties, indent+1, ew)
	}
	if !isEmptyStrSlice(schema.Required) {
		writeStrSlice("required", schema.Required, indent, ew)
	}
}

func sortedKeys(schemas map[string]*openapi3.SchemaRef) []string {
	keys := make([]string, 0, len(schemas))
	for key := range schemas {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func marshalTags(tags openapi3.Tags, indent int, ew *errorWriter) {
	writeObject("tags", indent, ew)
	for _, tag := range tags {
		// name is a required property for tags, so it must exists
		writeLn("- name: "+strconv.Quote(tag.Name), indent+1, ew)
		if !isEmptyString(tag.Description) {
			writeStringProp("description", tag.Description, indent+2, ew)
		}
	}
}

// Marshal returns the YAML document as a string
func Marshal(swagger openapi2.Swagger) (string, error) {
	var b strings.Builder
	if err := MarshalYAML(swagger, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
