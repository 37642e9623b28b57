// Package annotation reads routing annotations out of Go doc comments.
//
// An annotation is a doc comment line that starts with @Kind, optionally
// followed by a payload written in YAML flow syntax:
//
//	// @Controller "users"
//	// @Middleware [auth, throttle]
//	// @GetMapping {value: "profile/:id", name: user.profile, ext: json}
//	// @Model {var: id, value: example.com/app/model.User, exception: false}
//
// A scalar or sequence payload is the annotation's value; a mapping payload
// carries named fields. A payload may continue over several lines while its
// brackets are unbalanced, up to the next annotation line. A bare payload
// starting with * is a plain string, so "@Route *" needs no quotes; inside a
// mapping or sequence the wildcard must be quoted.
package annotation

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"
	"unicode"

	"gopkg.in/yaml.v2"
)

// Kind is the name of an annotation
type Kind string

const (
	// Controller declares the group path of a class
	Controller Kind = "Controller"
	// Resource declares a resource route shorthand on a class
	Resource Kind = "Resource"
	// Middleware declares middleware on a class or method
	Middleware Kind = "Middleware"
	// Group declares a group alias on a method
	Group Kind = "Group"
	// Route declares a route with any verb
	Route Kind = "Route"
	// RequestMapping declares a route with the verb given in method
	RequestMapping Kind = "RequestMapping"
	// GetMapping declares a GET route
	GetMapping Kind = "GetMapping"
	// PostMapping declares a POST route
	PostMapping Kind = "PostMapping"
	// PutMapping declares a PUT route
	PutMapping Kind = "PutMapping"
	// DeleteMapping declares a DELETE route
	DeleteMapping Kind = "DeleteMapping"
	// Model declares a model binding on a method
	Model Kind = "Model"
	// Validate declares a validator on a method
	Validate Kind = "Validate"

	// ValueField is the field a scalar or sequence payload is stored in
	ValueField = "value"
)

var knownKinds = map[Kind]bool{
	Controller: true, Resource: true, Middleware: true, Group: true, Route: true,
	RequestMapping: true, GetMapping: true, PostMapping: true, PutMapping: true,
	DeleteMapping: true, Model: true, Validate: true,
}

// Known returns true if k is a routing annotation
func (k Kind) Known() bool {
	return knownKinds[k]
}

// Annotation is a single annotation found in a comment
type Annotation struct {
	Kind    Kind
	Payload string
	Pos     token.Position
}

func (a Annotation) String() string {
	if a.Pos.IsValid() {
		return fmt.Sprintf("@%s at %s", a.Kind, a.Pos)
	}
	return "@" + string(a.Kind)
}

type line struct {
	text string
	pos  token.Position
}

// Parse extracts annotations from comment text, without position information
func Parse(text string) []Annotation {
	raw := strings.Split(text, "\n")
	lines := make([]line, len(raw))
	for i := range raw {
		lines[i] = line{text: raw[i]}
	}
	return parseLines(lines)
}

// ParseComment extracts annotations from a comment group
func ParseComment(fset *token.FileSet, cg *ast.CommentGroup) []Annotation {
	if cg == nil {
		return nil
	}
	lines := make([]line, 0, len(cg.List))
	for _, c := range cg.List {
		var pos token.Position
		if fset != nil {
			pos = fset.Position(c.Slash)
		}
		text := c.Text
		switch {
		case strings.HasPrefix(text, "//"):
			lines = append(lines, line{text: text[2:], pos: pos})
		case strings.HasPrefix(text, "/*"):
			text = strings.TrimSuffix(text[2:], "*/")
			for i, l := range strings.Split(text, "\n") {
				p := pos
				if p.IsValid() && i > 0 {
					p.Line += i
					p.Column = 1
				}
				lines = append(lines, line{text: strings.TrimPrefix(strings.TrimSpace(l), "*"), pos: p})
			}
		}
	}
	return parseLines(lines)
}

func parseLines(lines []line) []Annotation {
	annotations := make([]Annotation, 0)
	for i := 0; i < len(lines); i++ {
		text := strings.TrimSpace(lines[i].text)
		kind, rest, ok := splitAnnotation(text)
		if !ok {
			continue
		}
		pos := lines[i].pos
		payload := rest
		for depth(payload) > 0 && i+1 < len(lines) {
			if _, _, next := splitAnnotation(strings.TrimSpace(lines[i+1].text)); next {
				break
			}
			i++
			payload = payload + " " + strings.TrimSpace(lines[i].text)
		}
		annotations = append(annotations, Annotation{
			Kind:    kind,
			Payload: strings.TrimSpace(payload),
			Pos:     pos,
		})
	}
	return annotations
}

func splitAnnotation(text string) (Kind, string, bool) {
	if !strings.HasPrefix(text, "@") {
		return "", "", false
	}
	end := 1
	for end < len(text) {
		r := rune(text[end])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		end++
	}
	if end == 1 || !unicode.IsLetter(rune(text[1])) {
		return "", "", false
	}
	return Kind(text[1:end]), strings.TrimSpace(text[end:]), true
}

// depth returns how many brackets are left open, ignoring quoted text
func depth(payload string) int {
	d := 0
	var quote rune
	escaped := false
	for _, r := range payload {
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\' && quote == '"':
				escaped = true
			case r == quote:
				quote = 0
			}
			continue
		}
		switch r {
		case '"', '\'':
			quote = r
		case '{', '[':
			d++
		case '}', ']':
			d--
		}
	}
	return d
}

// Fields decodes the payload. An empty payload yields no fields.
func (a Annotation) Fields() (Fields, error) {
	if len(a.Payload) == 0 {
		return Fields{}, nil
	}
	if strings.HasPrefix(a.Payload, "*") {
		return Fields{ValueField: a.Payload}, nil
	}
	var v interface{}
	if err := yaml.Unmarshal([]byte(a.Payload), &v); err != nil {
		return nil, fmt.Errorf("%s: %v", a, err)
	}
	switch x := Normalize(v).(type) {
	case nil:
		return Fields{}, nil
	case map[string]interface{}:
		return Fields(x), nil
	default:
		return Fields{ValueField: x}, nil
	}
}

// Filter returns the annotations of the given kind, preserving order
func Filter(annotations []Annotation, kind Kind) []Annotation {
	filtered := make([]Annotation, 0)
	for _, a := range annotations {
		if a.Kind == kind {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// Normalize converts the maps produced by yaml decoding into string keyed maps
func Normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, val := range x {
			m[fmt.Sprint(k)] = Normalize(val)
		}
		return m
	case map[string]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, val := range x {
			m[k] = Normalize(val)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(x))
		for i := range x {
			s[i] = Normalize(x[i])
		}
		return s
	}
	return v
}
