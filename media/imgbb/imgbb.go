package imgbb

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ccollins476ad/imgfetch/download"
	"github.com/ccollins476ad/imgfetch/web"
	"golang.org/x/net/html"
)

// Resolver maps imgbb image and album pages to direct image urls. It
// implements the media.Resolver interface.
type Resolver struct {
	f *download.Fetcher
}

func NewResolver(f *download.Fetcher) *Resolver {
	return &Resolver{
		f: f,
	}
}

// Resolve fetches the imgbb page at u and extracts the image urls embedded in
// it. An album yields all of its images; an image page yields one. See
// media.Resolver#Resolve for API details.
func (r *Resolver) Resolve(ctx context.Context, u string) ([]string, error) {
	parsed, err := url.Parse(u)
	if err != nil || strings.ToLower(parsed.Host) != "ibb.co" {
		return nil, nil
	}

	doc, err := r.fetchPage(ctx, u)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(parsed.Path, "/album/") {
		return parseAlbum(doc)
	}
	return parseImagePage(doc)
}

func (r *Resolver) fetchPage(ctx context.Context, u string) (*html.Node, error) {
	rsp, err := r.f.GetBody(ctx, u, nil)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close()

	doc, err := html.Parse(rsp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse imgbb page: %w", err)
	}
	return doc, nil
}

// embeddedImageURLs returns the absolute urls of all images embedded in the
// given imgbb page.
func embeddedImageURLs(doc *html.Node) []string {
	var urls []string

	rawURLs := web.EmbeddedImageURLs(doc)
	for _, ru := range rawURLs {
		if strings.HasPrefix(ru, "https://") {
			urls = append(urls, ru)
		}
	}

	return urls
}

// parseAlbum extracts the urls of all images from an imgbb album.
func parseAlbum(doc *html.Node) ([]string, error) {
	urls := embeddedImageURLs(doc)
	if len(urls) == 0 {
		return nil, fmt.Errorf("imgbb album contains 0 embedded image urls")
	}

	return urls, nil
}

// parseImagePage extracts the url of the image shown on an imgbb image page.
// The og:image meta tag is authoritative; the first embedded image is the
// fallback.
func parseImagePage(doc *html.Node) ([]string, error) {
	for _, n := range web.NodesWithDataVal(doc, "meta") {
		if web.Attr(n, "property") == "og:image" {
			if content := web.Attr(n, "content"); content != "" {
				return []string{content}, nil
			}
		}
	}

	urls := embeddedImageURLs(doc)
	if len(urls) == 0 {
		return nil, fmt.Errorf("imgbb page contains 0 embedded image urls")
	}

	return urls[:1], nil
}
