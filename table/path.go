package table

import (
	"regexp"
	"strings"

	routeErrors "github.com/javiercbk/annoroute/errors"
)

// Wildcard is the catch all segment, allowed only as the last segment
const Wildcard = "*"

var variableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func trimSlashes(path string) string {
	return strings.Trim(path, "/")
}

// Join joins a group path and a rule path, ignoring empty parts
func Join(parent, path string) string {
	parent = trimSlashes(parent)
	path = trimSlashes(path)
	switch {
	case len(parent) == 0:
		return path
	case len(path) == 0:
		return parent
	}
	return parent + "/" + path
}

// ValidatePath returns ErrInvalidPath if path is not a literal segment list
// with optional :name or <name> variables and a trailing wildcard
func ValidatePath(path string) error {
	path = trimSlashes(path)
	if len(path) == 0 {
		return nil
	}
	if strings.ContainsAny(path, " \t\r\n[]") {
		return routeErrors.ErrInvalidPath
	}
	segments := strings.Split(path, "/")
	for i, s := range segments {
		switch {
		case len(s) == 0:
			return routeErrors.ErrInvalidPath
		case s == Wildcard:
			if i != len(segments)-1 {
				return routeErrors.ErrInvalidPath
			}
		case strings.Contains(s, Wildcard):
			return routeErrors.ErrInvalidPath
		case strings.HasPrefix(s, ":"):
			if !variableName.MatchString(s[1:]) {
				return routeErrors.ErrInvalidPath
			}
		case strings.Contains(s, ":"):
			return routeErrors.ErrInvalidPath
		default:
			if err := validateBrackets(s); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateBrackets(segment string) error {
	for len(segment) > 0 {
		open := strings.IndexByte(segment, '<')
		end := strings.IndexByte(segment, '>')
		if open < 0 {
			if end >= 0 {
				return routeErrors.ErrInvalidPath
			}
			return nil
		}
		if end < open || !variableName.MatchString(segment[open+1:end]) {
			return routeErrors.ErrInvalidPath
		}
		segment = segment[end+1:]
	}
	return nil
}

// Rewrite replaces every :name and <name> variable of a valid path with the
// result of format
func Rewrite(path string, format func(name string) string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if strings.HasPrefix(s, ":") {
			segments[i] = format(s[1:])
			continue
		}
		var b strings.Builder
		for {
			open := strings.IndexByte(s, '<')
			end := strings.IndexByte(s, '>')
			if open < 0 || end < open {
				b.WriteString(s)
				break
			}
			b.WriteString(s[:open])
			b.WriteString(format(s[open+1 : end]))
			s = s[end+1:]
		}
		segments[i] = b.String()
	}
	return strings.Join(segments, "/")
}

// Variables returns the variable names of a valid path in order
func Variables(path string) []string {
	names := make([]string, 0)
	Rewrite(path, func(name string) string {
		names = append(names, name)
		return name
	})
	return names
}
