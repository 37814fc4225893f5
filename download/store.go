package download

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ccollins476ad/imgfetch/fileutil"
	"github.com/flytam/filenamify"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultFilename is the stem used when a url's path does not end in a
	// usable file name.
	DefaultFilename = "downloaded_image"

	defaultExt = ".jpg"

	// maxFilenameLen is the longest name most filesystems accept.
	maxFilenameLen = 255

	reservedChars = `<>:"/\|?*`

	// maxSaveAttempts bounds the exclusive-create loop in SaveFile.
	maxSaveAttempts = 1000
)

var contentTypeExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/bmp":  ".bmp",
	"image/webp": ".webp",
}

// Store persists downloaded images to a destination directory.
type Store struct {
	destDir string // constant
}

// NewStore creates a store rooted at destDir, creating the directory if it
// does not exist.
func NewStore(destDir string) (*Store, error) {
	if err := fileutil.EnsureDir(destDir); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	return &Store{
		destDir: destDir,
	}, nil
}

// DestDir returns the store's destination directory.
func (s *Store) DestDir() string {
	return s.destDir
}

// SaveFile writes b to a new file in the destination directory and returns its
// path. The file is named filename if that is unused, otherwise the first free
// numbered alternative (see fileutil.Disambiguate). Files are created
// exclusively, so an existing file is never overwritten even if another
// process creates it between the probe and the write.
func (s *Store) SaveFile(filename string, b []byte) (string, error) {
	for i := 0; i < maxSaveAttempts; i++ {
		name := fileutil.Disambiguate(s.destDir, filename)
		destPath := filepath.Join(s.destDir, name)

		f, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			log.Debugf("lost race for %s; probing again", destPath)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create file: %w", err)
		}

		log.Debugf("saving %d bytes to %s", len(b), destPath)

		if _, err := f.Write(b); err != nil {
			f.Close()
			os.Remove(destPath)
			return "", fmt.Errorf("failed to write file: %w", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(destPath)
			return "", fmt.Errorf("failed to close file: %w", err)
		}

		return destPath, nil
	}

	return "", fmt.Errorf("failed to find an unused name for %s after %d attempts", filename, maxSaveAttempts)
}

// Remove deletes a file previously written by SaveFile. It is not an error if
// the file is already gone.
func (s *Store) Remove(path string) error {
	log.Debugf("removing %s", path)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// ResolveFilename returns the local filename to save the image at url=u as.
// It is the last segment of the url's escaped path, verbatim, if there is one.
// Otherwise it is "downloaded_image" plus an extension inferred from
// contentType.
func ResolveFilename(u string, contentType string) string {
	if base := urlBase(u); base != "" {
		if !hasReservedChars(base) {
			return base
		}

		name, err := filenamify.Filenamify(base, filenamify.Options{
			Replacement: "_",
			MaxLength:   maxFilenameLen,
		})
		if err == nil && name != "" {
			log.Debugf("sanitized url base: %s --> %s", base, name)
			return name
		}
		log.Debugf("cannot use url base as filename: base=%q err=%v", base, err)
	}

	return DefaultFilename + ExtForContentType(contentType)
}

// hasReservedChars returns true if s contains a character that is not
// allowed in a filename on some common filesystem.
func hasReservedChars(s string) bool {
	if strings.ContainsAny(s, reservedChars) {
		return true
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}

// ExtForContentType maps an image content type to a file extension. Media
// type parameters (";charset=...") are ignored. It returns ".jpg" for empty
// or unrecognized types.
func ExtForContentType(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	ext, ok := contentTypeExts[mediaType]
	if !ok {
		return defaultExt
	}
	return ext
}

// urlBase returns the final segment of the url's path, or "" if the path is
// empty, ends with a slash, or the url cannot be parsed.
func urlBase(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return ""
	}

	p := parsed.EscapedPath()
	base := p[strings.LastIndex(p, "/")+1:]
	if base == "." || base == ".." {
		return ""
	}
	return base
}
