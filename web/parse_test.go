package web

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parse(t *testing.T, s string) *html.Node {
	doc, err := html.Parse(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

func TestEmbeddedImageURLs(t *testing.T) {
	doc := parse(t, `<html><body>
<img src="https://i.ibb.co/abc/cat.png">
<img alt="no src">
<div><img src="/relative.gif"></div>
</body></html>`)

	assert.Equal(t, []string{"https://i.ibb.co/abc/cat.png", "/relative.gif"}, EmbeddedImageURLs(doc))
}

func TestPageTitle(t *testing.T) {
	doc := parse(t, "<html><head><title>\n  404 Not Found </title></head><body>oops</body></html>")
	assert.Equal(t, "404 Not Found", PageTitle(doc))

	assert.Equal(t, "", PageTitle(parse(t, "<p>untitled</p>")))
}

func TestForEachNode_stopsOnError(t *testing.T) {
	doc := parse(t, "<p>a</p><p>b</p><p>c</p>")

	seen := 0
	err := ForEachNode(doc, func(n *html.Node) error {
		if n.Type == html.ElementNode && n.Data == "p" {
			seen++
			if seen == 2 {
				return assert.AnError
			}
		}
		return nil
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 2, seen)
}
