package folder

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	// DefaultBlackList skips tests, testdata, vendor and hidden directories.
	// Patterns are matched against slash separated paths relative to the root.
	DefaultBlackList = []*regexp.Regexp{
		regexp.MustCompile(`_test\.go$`),
		regexp.MustCompile(`(^|/)testdata(/|$)`),
		regexp.MustCompile(`(^|/)vendor(/|$)`),
		regexp.MustCompile(`(^|/)\.[^/]+(/|$)`),
	}
)

// IsGoFile returns true if a file name is a go file
func IsGoFile(fileName string) bool {
	return strings.HasSuffix(fileName, ".go")
}

// ShouldScan reports whether dir should be scanned. A missing path or a path that
// is not a directory is not scanned and is not an error; any other failure to
// stat or open the directory is returned.
func ShouldScan(dir string) (bool, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if !info.IsDir() {
		return false, nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()
	if _, err = f.Readdirnames(1); err != nil && err != io.EOF {
		return false, err
	}
	return true, nil
}

// ListGoFilesRecursively returns a sorted list of go files in a directory recursively
func ListGoFilesRecursively(dir string, blacklist []*regexp.Regexp) ([]string, error) {
	files := make([]string, 0)
	err := filepath.Walk(dir, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(dir, filePath)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			if rel != "." && shouldIgnore(rel, blacklist) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsGoFile(info.Name()) && !shouldIgnore(rel, blacklist) {
			files = append(files, filePath)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

func shouldIgnore(filePath string, blacklist []*regexp.Regexp) bool {
	for _, r := range blacklist {
		if r.MatchString(filePath) {
			return true
		}
	}
	return false
}
