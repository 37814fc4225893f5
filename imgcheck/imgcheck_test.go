package imgcheck

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLikelyImage(t *testing.T) {
	tests := []struct {
		name        string
		u           string
		contentType string
		want        bool
	}{
		{"extension with html content type", "http://x/a.png", "text/html", true},
		{"extension without content type", "http://x/a.webp", "", true},
		{"upper case extension", "http://x/A.JPEG", "", true},
		{"extension before query", "http://x/a.gif?w=100", "", true},
		{"content type without extension", "http://x/page", "image/png", true},
		{"content type with parameters", "http://x/page", "image/jpeg; charset=binary", true},
		{"neither", "http://x/page", "text/html", false},
		{"extension only in query", "http://x/page?f=a.png", "text/html", false},
		{"extension only in host", "http://a.png/", "", false},
		{"malformed url", "http://[::1/a.png", "", false},
		{"malformed url with image content type", "http://[::1/a.png", "image/png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLikelyImage(tt.u, tt.contentType))
		})
	}
}

func writeFile(t *testing.T, name string, b []byte) string {
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, b, 0644))
	return p
}

func TestVerify_pngSignature(t *testing.T) {
	p := writeFile(t, "sig.png", []byte("\x89PNG\r\n\x1a\n"))

	ok, detail := Verify(p)
	assert.True(t, ok)
	assert.Equal(t, "png", detail)
}

func TestVerify_notAnImage(t *testing.T) {
	p := writeFile(t, "fake.jpg", []byte("not an image"))

	ok, detail := Verify(p)
	assert.False(t, ok)
	assert.Contains(t, detail, "not a recognized image format")
}

func TestVerify_htmlErrorPage(t *testing.T) {
	p := writeFile(t, "fake.jpg", []byte("<!DOCTYPE html><html><head><title>Access Denied</title></head><body></body></html>"))

	ok, detail := Verify(p)
	assert.False(t, ok)
	assert.Contains(t, detail, "not a recognized image format")
	assert.Contains(t, detail, "Access Denied")
}

func TestVerify_emptyFile(t *testing.T) {
	p := writeFile(t, "empty.png", nil)

	ok, _ := Verify(p)
	assert.False(t, ok)
}

func TestVerify_missingFile(t *testing.T) {
	ok, detail := Verify(filepath.Join(t.TempDir(), "gone.png"))
	assert.False(t, ok)
	assert.Contains(t, detail, "error verifying image")
}

func TestVerify_signatures(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{"jpeg", "\xff\xd8\xff\xe0\x00\x10JFIF\x00", "jpeg"},
		{"gif87a", "GIF87a", "gif"},
		{"gif89a", "GIF89a", "gif"},
		{"bmp", "BM\x00\x00\x00\x00", "bmp"},
		{"webp", "RIFF\x00\x00\x00\x00WEBPVP8 ", "webp"},
		{"tiff little endian", "II*\x00\x08\x00\x00\x00", "tiff"},
		{"tiff big endian", "MM\x00*\x00\x00\x00\x08", "tiff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeFile(t, "img", []byte(tt.prefix))
			ok, detail := Verify(p)
			assert.True(t, ok)
			assert.Equal(t, tt.want, detail)
		})
	}
}

func TestInspect_dimensions(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	p := writeFile(t, "real.png", buf.Bytes())

	info, err := Inspect(p)
	require.NoError(t, err)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, 4, info.Width)
	assert.Equal(t, 3, info.Height)
}

func TestInspect_notImage(t *testing.T) {
	p := writeFile(t, "fake.png", []byte("not an image"))

	_, err := Inspect(p)
	assert.ErrorIs(t, err, ErrNotImage)
}
