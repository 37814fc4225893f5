package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// FileExists returns true if a file or directory with the given path exists.
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// IsDir returns true if a directory with the given path exists.
func IsDir(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && info.IsDir()
}

// EnsureDir creates the given directory and any missing parents. It is not an
// error if the directory already exists.
func EnsureDir(dir string) error {
	if IsDir(dir) {
		return nil
	}

	log.Debugf("creating directory: %s", dir)
	return os.MkdirAll(dir, 0755)
}

// SplitExt splits a filename into its stem and extension. The extension
// includes the leading dot. A leading dot (e.g., ".hidden") is part of the
// stem, not an extension.
func SplitExt(filename string) (string, string) {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	if stem == "" {
		return filename, ""
	}
	return stem, ext
}

// NumberedName returns the n'th alternative of the given filename:
// "a.jpg" --> "a_<n>.jpg".
func NumberedName(filename string, n int) string {
	stem, ext := SplitExt(filename)
	return fmt.Sprintf("%s_%d%s", stem, n, ext)
}

// Disambiguate returns a filename that does not collide with any existing
// entry in dir. It returns filename unchanged if dir/filename does not exist.
// Otherwise, it probes stem_1.ext, stem_2.ext, ... until it finds an unused
// name. The directory listing is consulted fresh on every call.
func Disambiguate(dir string, filename string) string {
	if !FileExists(filepath.Join(dir, filename)) {
		return filename
	}

	for n := 1; ; n++ {
		candidate := NumberedName(filename, n)
		if !FileExists(filepath.Join(dir, candidate)) {
			log.Debugf("disambiguated filename: %s --> %s", filename, candidate)
			return candidate
		}
	}
}
