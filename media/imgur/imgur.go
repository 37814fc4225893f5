package imgur

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ccollins476ad/imgfetch/download"
	"github.com/koffeinsource/go-imgur"
	log "github.com/sirupsen/logrus"
)

const (
	clientID = "ab1802d70cb1deb"

	albumAPI   = "https://api.imgur.com/3/album/"
	directBase = "https://i.imgur.com/"
)

var apiHeader = http.Header{
	"Authorization": []string{"Client-ID " + clientID},
	"Referer":       []string{"https://imgur.com/"},
	"Origin":        []string{"https://imgur.com"},
}

type albumInfoDataWrapper struct {
	AI      *imgur.AlbumInfo `json:"data"`
	Success bool             `json:"success"`
	Status  int              `json:"status"`
}

// Resolver maps imgur page and album links to direct image urls. It
// implements the media.Resolver interface.
type Resolver struct {
	f *download.Fetcher
}

func NewResolver(f *download.Fetcher) *Resolver {
	return &Resolver{
		f: f,
	}
}

// Resolve handles two kinds of imgur links:
//
//	https://imgur.com/a/<hash>   album; expanded through the imgur api
//	https://imgur.com/<id>       single image page; rewritten to i.imgur.com
//
// Direct links (i.imgur.com) and anything else are not handled. See
// media.Resolver#Resolve for API details.
func (r *Resolver) Resolve(ctx context.Context, u string) ([]string, error) {
	parsed, err := url.Parse(u)
	if err != nil {
		return nil, nil
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	if host != "imgur.com" {
		return nil, nil
	}

	p := strings.Trim(parsed.Path, "/")

	// Album.
	if hash, ok := strings.CutPrefix(p, "a/"); ok {
		return r.albumLinks(ctx, hash)
	}

	// Alternate image url format:
	//     https://imgur.com/<image_id>
	if len(p) == 7 && !strings.Contains(p, "/") {
		return []string{directBase + p + ".jpeg"}, nil
	}

	return nil, nil
}

// albumLinks queries the imgur api for the album with the given hash and
// returns the urls of all its images.
func (r *Resolver) albumLinks(ctx context.Context, hash string) ([]string, error) {
	log.Debugf("scanning imgur album: %s", hash)

	if len(hash) < 7 {
		return nil, fmt.Errorf("imgur album hash length too short: have=%d want=7 hash=%s", len(hash), hash)
	}
	if len(hash) > 7 {
		// Titled albums look like "some-title-<hash>".
		trimmed := hash[len(hash)-7:]
		log.Debugf("removing imgur album prefix: %s --> %s", hash, trimmed)
		hash = trimmed
	}

	_, b, err := r.f.Get(ctx, albumAPI+hash, apiHeader)
	if err != nil {
		return nil, err
	}

	aidw := &albumInfoDataWrapper{}
	err = json.Unmarshal(b, aidw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode album info: %w", err)
	}

	if !aidw.Success || aidw.AI == nil {
		return nil, fmt.Errorf("album info response has success=false: status=%d", aidw.Status)
	}

	var links []string
	for _, img := range aidw.AI.Images {
		log.Debugf("detected imgur album image link: %s", img.Link)
		links = append(links, img.Link)
	}

	if len(links) == 0 {
		return nil, fmt.Errorf("imgur album %s contains 0 images", hash)
	}

	return links, nil
}
