package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	UserAgent      = "Ubuntu Image Fetcher"
	DefaultTimeout = 10 * time.Second
)

// Response is an http response whose status has already been checked. Body is
// still open; the caller must close it.
type Response struct {
	URL        string // Final url, after redirects.
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// ContentType returns the response's declared Content-Type header, or "".
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Fetcher performs http GETs with a fixed identifying header and a per-request
// timeout. The timeout covers the whole exchange, including the body read.
type Fetcher struct {
	hc      *http.Client
	header  http.Header
	timeout time.Duration
}

// NewFetcher creates a fetcher. A nil client means a default one; a
// non-positive timeout means DefaultTimeout.
func NewFetcher(hc *http.Client, timeout time.Duration) *Fetcher {
	if hc == nil {
		hc = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Fetcher{
		hc: hc,
		header: http.Header{
			"User-Agent": []string{UserAgent},
		},
		timeout: timeout,
	}
}

// HTTPClient returns the fetcher's http client.
func (f *Fetcher) HTTPClient() *http.Client {
	return f.hc
}

// cancelOnClose releases the request's timeout context when the body is
// closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

// GetBody performs an http GET with url=u. Header entries are sent in
// addition to the fetcher's own (nil is fine). It fails with a KindNetwork error
// if the request cannot be sent or times out, and with a KindHTTPStatus error
// if the response status is not 2xx. On success the body is left unread.
func (f *Fetcher) GetBody(ctx context.Context, u string, header http.Header) (*Response, error) {
	log.Debugf("get: %s", u)

	ctx, cancel := context.WithTimeout(ctx, f.timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		cancel()
		return nil, &Error{Kind: KindNetwork, URL: u, Detail: "invalid request", Err: err}
	}
	for _, h := range []http.Header{f.header, header} {
		for k, vs := range h {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
	}

	rsp, err := f.hc.Do(req)
	if err != nil {
		cancel()
		return nil, &Error{Kind: KindNetwork, URL: u, Detail: "failed to send request", Err: timeoutOr(ctx, err)}
	}

	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		rsp.Body.Close()
		cancel()
		return nil, &Error{
			Kind:       KindHTTPStatus,
			URL:        u,
			StatusCode: rsp.StatusCode,
			Detail:     fmt.Sprintf("error status: %s", rsp.Status),
		}
	}

	return &Response{
		URL:        rsp.Request.URL.String(),
		StatusCode: rsp.StatusCode,
		Header:     rsp.Header,
		Body:       &cancelOnClose{ReadCloser: rsp.Body, cancel: cancel},
	}, nil
}

// Get calls GetBody(), then reads and closes the full response body.
func (f *Fetcher) Get(ctx context.Context, u string, header http.Header) (*Response, []byte, error) {
	rsp, err := f.GetBody(ctx, u, header)
	if err != nil {
		return nil, nil, err
	}

	b, err := ReadAll(rsp)
	if err != nil {
		return nil, nil, err
	}

	return rsp, b, nil
}

// ReadAll reads and closes the response body. A failure mid-body (including
// the request timeout expiring) is a KindNetwork error.
func ReadAll(rsp *Response) ([]byte, error) {
	defer rsp.Body.Close()

	b, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: rsp.URL, Detail: "failed to read response body", Err: err}
	}
	return b, nil
}

// timeoutOr returns a plain timeout error if ctx's deadline has passed, and err
// otherwise.
func timeoutOr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", context.DeadlineExceeded)
	}
	return err
}
