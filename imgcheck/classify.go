// Package imgcheck decides whether a url is worth downloading as an image and
// whether downloaded bytes really are one.
package imgcheck

import (
	"net/url"
	"strings"
)

// ImageExtensions are the url path suffixes that mark a url as an image.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}

// IsLikelyImage returns true if the url's path ends with a known image
// extension or the content type is image/*. A url that does not parse fails
// the extension check.
func IsLikelyImage(u string, contentType string) bool {
	return hasImageExtension(u) || strings.HasPrefix(contentType, "image/")
}

func hasImageExtension(u string) bool {
	var p string
	if parsed, err := url.Parse(u); err == nil {
		p = strings.ToLower(parsed.Path)
	}

	for _, ext := range ImageExtensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}
