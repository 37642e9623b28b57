package source

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"

	routeErrors "github.com/javiercbk/annoroute/errors"
)

const modFile = "go.mod"

// Module is the go module enclosing a scan root
type Module struct {
	Name string
	Dir  string
}

// ReadMod reads the module path declared by a go.mod file
func ReadMod(path string) (Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Module{}, err
	}
	file, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		return Module{}, err
	}
	if file.Module == nil {
		return Module{}, routeErrors.ErrNotFound
	}
	return Module{
		Name: file.Module.Mod.Path,
		Dir:  filepath.Dir(path),
	}, nil
}

// FindModule looks for the closest go.mod in dir or its parents.
// ErrNotFound is returned when dir is not inside a module.
func FindModule(dir string) (Module, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return Module{}, err
	}
	for {
		candidate := filepath.Join(current, modFile)
		if _, err := os.Stat(candidate); err == nil {
			return ReadMod(candidate)
		}
		parent := filepath.Dir(current)
		if parent == current {
			return Module{}, routeErrors.ErrNotFound
		}
		current = parent
	}
}

// ImportPath returns the import path of a package directory inside the module
func (m Module) ImportPath(dir string) (string, error) {
	rel, err := filepath.Rel(m.Dir, dir)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return m.Name, nil
	}
	return m.Name + "/" + filepath.ToSlash(rel), nil
}

// PackageDir returns the directory of an import path inside the module
func (m Module) PackageDir(importPath string) (string, bool) {
	if importPath == m.Name {
		return m.Dir, true
	}
	if !strings.HasPrefix(importPath, m.Name+"/") {
		return "", false
	}
	return filepath.Join(m.Dir, filepath.FromSlash(strings.TrimPrefix(importPath, m.Name+"/"))), true
}
