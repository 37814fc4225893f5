package imgcheck

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/ccollins476ad/imgfetch/web"
	log "github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/net/html"
)

// sniffLen is the number of leading bytes inspected. It matches the amount
// http.DetectContentType considers.
const sniffLen = 512

var ErrNotImage = errors.New("not a recognized image format")

// Sniffed content types of raster images, mapped to short format names.
var sniffedFormats = map[string]string{
	"image/jpeg":   "jpeg",
	"image/png":    "png",
	"image/gif":    "gif",
	"image/bmp":    "bmp",
	"image/webp":   "webp",
	"image/x-icon": "ico",
}

// http.DetectContentType does not know tiff.
var tiffSignatures = [][]byte{
	[]byte("II*\x00"),
	[]byte("MM\x00*"),
}

// Info describes a verified image file.
type Info struct {
	Format string // Short format name, e.g. "png".
	Width  int    // Zero if the header could not be decoded.
	Height int
}

// Verify reports whether the file at path starts with a known image
// signature. On success, detail is the detected format name. Otherwise detail
// is a human readable reason.
func Verify(path string) (bool, string) {
	info, err := Inspect(path)
	if err != nil {
		if errors.Is(err, ErrNotImage) {
			return false, err.Error()
		}
		return false, fmt.Sprintf("error verifying image: %v", err)
	}
	return true, info.Format
}

// Inspect identifies the image format of the file at path from its leading
// bytes and, if possible, its dimensions. The signature decides; a file whose
// header cannot be fully decoded is still an image. It returns an error
// wrapping ErrNotImage if no signature matches.
func Inspect(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	prefix := make([]byte, sniffLen)
	n, err := io.ReadFull(f, prefix)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	prefix = prefix[:n]

	format, ok := sniff(prefix)
	if !ok {
		return nil, notImage(prefix)
	}

	info := &Info{Format: format}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		log.Debugf("could not decode %s header of %s: %v", format, path, err)
	} else {
		info.Width = cfg.Width
		info.Height = cfg.Height
	}

	return info, nil
}

// sniff returns the image format name for the given leading bytes.
func sniff(prefix []byte) (string, bool) {
	if len(prefix) == 0 {
		return "", false
	}

	for _, sig := range tiffSignatures {
		if bytes.HasPrefix(prefix, sig) {
			return "tiff", true
		}
	}

	format, ok := sniffedFormats[http.DetectContentType(prefix)]
	return format, ok
}

// notImage builds the rejection error for a non-image prefix. For an html
// page the error names the page title, if it has one.
func notImage(prefix []byte) error {
	contentType := http.DetectContentType(prefix)
	if !strings.HasPrefix(contentType, "text/html") {
		return fmt.Errorf("%w (detected %s)", ErrNotImage, contentType)
	}

	doc, err := html.Parse(bytes.NewReader(prefix))
	if err == nil {
		if title := web.PageTitle(doc); title != "" {
			return fmt.Errorf("%w (html page %q)", ErrNotImage, title)
		}
	}
	return fmt.Errorf("%w (html page)", ErrNotImage)
}
