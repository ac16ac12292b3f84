// Package naming builds file names for downloaded card images.
package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// illegal holds the characters Windows refuses in file names
const illegal = `\/*?:"<>|`

// Sanitize removes characters that are not allowed in file names.
// Everything else, including non-ASCII text, is kept as is.
func Sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegal, r) {
			return -1
		}
		return r
	}, name)
}

// InvalidChars returns the illegal characters found in name, each listed once
func InvalidChars(name string) []string {
	var found []string
	for _, r := range illegal {
		if strings.ContainsRune(name, r) {
			found = append(found, string(r))
		}
	}
	return found
}

// FileBase is the file name stem used for a card name: the sanitized
// name, or "unnamed" when nothing is left.
func FileBase(name string) string {
	if base := Sanitize(name); base != "" {
		return base
	}
	return "unnamed"
}

// UniquePath returns dir/base.ext, or dir/base_N.ext with the smallest N
// that does not exist yet. Any error other than "does not exist" while
// probing a candidate, such as a name that is too long or dir being a
// file, is returned. It is not safe for concurrent use.
func UniquePath(dir, base, ext string) (string, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return unique(filepath.Join(dir, base+ext), func(n int) string {
		return filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, n, ext))
	})
}

// UniqueDir is UniquePath for directories: parent/name, then parent/name_1, ...
func UniqueDir(parent, name string) (string, error) {
	return unique(filepath.Join(parent, name), func(n int) string {
		return filepath.Join(parent, fmt.Sprintf("%s_%d", name, n))
	})
}

func unique(path string, candidate func(n int) string) (string, error) {
	for n := 1; ; n++ {
		ok, err := exists(path)
		if err != nil {
			return "", err
		}
		if !ok {
			return path, nil
		}
		path = candidate(n)
	}
}

func exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("cannot use %s: %w", path, err)
}
