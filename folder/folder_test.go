package folder

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("package x\n"), 0o644))
}

func TestListGoFilesRecursively(t *testing.T) {
	root := filepath.Join(t.TempDir(), "testdata", "app")
	writeFile(t, filepath.Join(root, "b.go"))
	writeFile(t, filepath.Join(root, "a.go"))
	writeFile(t, filepath.Join(root, "a_test.go"))
	writeFile(t, filepath.Join(root, "README.md"))
	writeFile(t, filepath.Join(root, "admin", "c.go"))
	writeFile(t, filepath.Join(root, "testdata", "d.go"))
	writeFile(t, filepath.Join(root, "vendor", "e.go"))
	writeFile(t, filepath.Join(root, ".cache", "f.go"))

	files, err := ListGoFilesRecursively(root, DefaultBlackList)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.go"),
		filepath.Join(root, "admin", "c.go"),
		filepath.Join(root, "b.go"),
	}, files)
}

func TestShouldScan(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.go")
	writeFile(t, file)
	tests := []struct {
		name string
		path string
		scan bool
	}{
		{name: "existing directory", path: dir, scan: true},
		{name: "missing directory", path: filepath.Join(dir, "missing"), scan: false},
		{name: "regular file", path: file, scan: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scan, err := ShouldScan(tt.path)
			assert.NoError(t, err)
			assert.Equal(t, tt.scan, scan)
		})
	}
}

func TestShouldScanUnreadable(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permissions are not enforced")
	}
	dir := filepath.Join(t.TempDir(), "locked")
	require.NoError(t, os.Mkdir(dir, 0o000))
	defer os.Chmod(dir, 0o755)
	scan, err := ShouldScan(dir)
	assert.Error(t, err)
	assert.False(t, scan)
}
