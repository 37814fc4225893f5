package imgur

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/ccollins476ad/imgfetch/download"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rewriteTransport sends every request to target, whatever its host.
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestResolver(t *testing.T, h http.Handler) *Resolver {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	hc := &http.Client{Transport: rewriteTransport{target: target}}
	return NewResolver(download.NewFetcher(hc, time.Second))
}

func TestResolve_notImgur(t *testing.T) {
	r := NewResolver(download.NewFetcher(nil, 0))

	for _, u := range []string{
		"https://example.com/a.png",
		"https://i.imgur.com/abcdefg.png",
		"https://imgur.com/gallery/some/thing",
		"not a url at all",
	} {
		urls, err := r.Resolve(context.Background(), u)
		assert.NoError(t, err, u)
		assert.Nil(t, urls, u)
	}
}

func TestResolve_imagePage(t *testing.T) {
	r := NewResolver(download.NewFetcher(nil, 0))

	urls, err := r.Resolve(context.Background(), "https://imgur.com/AbCdEfG")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://i.imgur.com/AbCdEfG.jpeg"}, urls)
}

func TestResolve_album(t *testing.T) {
	var gotPath, gotAuth string
	r := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		gotAuth = req.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":"abc1234","images":[
			{"id":"one","link":"https://i.imgur.com/one.png"},
			{"id":"two","link":"https://i.imgur.com/two.jpg"}
		]},"success":true,"status":200}`))
	}))

	urls, err := r.Resolve(context.Background(), "https://imgur.com/a/my-trip-abc1234")
	require.NoError(t, err)

	assert.Equal(t, "/3/album/abc1234", gotPath)
	assert.Equal(t, "Client-ID "+clientID, gotAuth)
	assert.Equal(t, []string{"https://i.imgur.com/one.png", "https://i.imgur.com/two.jpg"}, urls)
}

func TestResolve_albumFailure(t *testing.T) {
	r := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"data":null,"success":false,"status":404}`))
	}))

	_, err := r.Resolve(context.Background(), "https://imgur.com/a/abc1234")
	assert.Error(t, err)
}

func TestResolve_albumHashTooShort(t *testing.T) {
	r := NewResolver(download.NewFetcher(nil, 0))

	_, err := r.Resolve(context.Background(), "https://imgur.com/a/abc")
	assert.Error(t, err)
}
