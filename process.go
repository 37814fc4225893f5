package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ccollins476ad/imgfetch/download"
	"github.com/ccollins476ad/imgfetch/imgcheck"
	"github.com/ccollins476ad/imgfetch/media"
	"github.com/ccollins476ad/imgfetch/media/imgbb"
	"github.com/ccollins476ad/imgfetch/media/imgur"
	log "github.com/sirupsen/logrus"
)

// fetchEnv is everything the pipeline needs to process a url.
type fetchEnv struct {
	fetcher   *download.Fetcher
	store     *download.Store
	resolvers []media.Resolver
	out       io.Writer // Receives the per-url status lines.
}

func newFetchEnv(cfg *Config, store *download.Store, hc *http.Client, out io.Writer) *fetchEnv {
	f := download.NewFetcher(hc, cfg.Timeout)

	var resolvers []media.Resolver
	if cfg.Resolve {
		resolvers = []media.Resolver{
			imgur.NewResolver(f),
			imgbb.NewResolver(f),
		}
	}

	return &fetchEnv{
		fetcher:   f,
		store:     store,
		resolvers: resolvers,
		out:       out,
	}
}

// InputResult is the outcome of one input url. Without resolvers it holds
// exactly one result; a resolved album holds one per image.
type InputResult struct {
	URL     string
	Results []download.Result
}

// OK returns true if every image behind the input url was saved.
func (ir InputResult) OK() bool {
	if len(ir.Results) == 0 {
		return false
	}
	for _, r := range ir.Results {
		if !r.OK() {
			return false
		}
	}
	return true
}

// Summary is the outcome of a batch, one entry per input url.
type Summary struct {
	Inputs []InputResult
}

func (s Summary) Successful() int {
	n := 0
	for _, ir := range s.Inputs {
		if ir.OK() {
			n++
		}
	}
	return n
}

func (s Summary) Total() int {
	return len(s.Inputs)
}

// processURLs processes the given urls one at a time, in order. A failure
// never stops the batch; only a cancelled context does.
func processURLs(ctx context.Context, env *fetchEnv, urls []string) Summary {
	var s Summary

	for _, u := range urls {
		if ctx.Err() != nil {
			log.Warnf("batch interrupted; %d url(s) not processed", len(urls)-len(s.Inputs))
			break
		}
		s.Inputs = append(s.Inputs, processInput(ctx, env, u))
	}

	return s
}

// processInput resolves an input url to the direct image urls behind it and
// processes each of them. A resolution failure yields a single failed result.
func processInput(ctx context.Context, env *fetchEnv, u string) InputResult {
	ir := InputResult{URL: u}

	targets, err := media.Resolve(ctx, env.resolvers, u)
	if err != nil {
		res := download.Result{URL: u, Err: asPipelineError(download.KindUnexpected, u, err)}
		report(env.out, res)
		ir.Results = []download.Result{res}
		return ir
	}

	for _, target := range targets {
		ir.Results = append(ir.Results, processURL(ctx, env, target))
	}
	return ir
}

// processURL downloads, saves, and verifies the image at url=u, printing a
// status line for the outcome. Errors and panics are contained here: the
// result carries them instead.
func processURL(ctx context.Context, env *fetchEnv, u string) (res download.Result) {
	fmt.Fprintf(env.out, "Fetching image: %s\n", u)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			log.WithError(err).Errorf("recovered while processing url=%s", u)
			res = download.Result{URL: u, Err: download.NewError(download.KindUnexpected, u, err)}
		}
		report(env.out, res)
	}()

	res, err := fetchImage(ctx, env, u)
	if err != nil {
		log.WithError(err).Debugf("failed to fetch image: url=%s kind=%s", u, download.KindOf(err))
		res.Err = err
	}
	return res
}

// fetchImage runs the pipeline for one url: get, classify, save, verify. A
// saved file that fails verification is deleted before returning.
func fetchImage(ctx context.Context, env *fetchEnv, u string) (download.Result, error) {
	res := download.Result{URL: u}

	rsp, err := env.fetcher.GetBody(ctx, u, nil)
	if err != nil {
		return res, err
	}

	contentType := rsp.ContentType()
	if !imgcheck.IsLikelyImage(u, contentType) {
		rsp.Body.Close()
		return res, &download.Error{
			Kind:   download.KindClassificationSkip,
			URL:    u,
			Detail: fmt.Sprintf("Content-Type: %s", contentType),
		}
	}

	b, err := download.ReadAll(rsp)
	if err != nil {
		return res, err
	}

	filename := download.ResolveFilename(u, contentType)
	path, err := env.store.SaveFile(filename, b)
	if err != nil {
		return res, err
	}

	info, err := imgcheck.Inspect(path)
	if err != nil {
		if rmErr := env.store.Remove(path); rmErr != nil {
			log.WithError(rmErr).Errorf("failed to delete unverified file: path=%s", path)
			return res, rmErr
		}

		detail := err.Error()
		if !errors.Is(err, imgcheck.ErrNotImage) {
			detail = fmt.Sprintf("error verifying image: %v", err)
		}
		return res, &download.Error{
			Kind:   download.KindVerification,
			URL:    u,
			Detail: detail,
		}
	}

	res.Path = path
	res.Format = info.Format
	res.Width = info.Width
	res.Height = info.Height
	return res, nil
}

// asPipelineError returns err as-is if it already carries a kind, otherwise
// wraps it with the given kind.
func asPipelineError(kind download.Kind, u string, err error) error {
	var e *download.Error
	if errors.As(err, &e) {
		return err
	}
	return download.NewError(kind, u, err)
}

// report prints the status line(s) for a result.
func report(w io.Writer, res download.Result) {
	switch res.Kind() {
	case download.KindOK:
		fmt.Fprintf(w, "✓ Successfully downloaded: %s\n", res.Path)
		if res.Width > 0 && res.Height > 0 {
			fmt.Fprintf(w, "  Image type: %s (%dx%d)\n", res.Format, res.Width, res.Height)
		} else {
			fmt.Fprintf(w, "  Image type: %s\n", res.Format)
		}

	case download.KindClassificationSkip:
		fmt.Fprintf(w, "✗ Skipping non-image URL: %s, %v\n", res.URL, res.Err)

	case download.KindNetwork:
		fmt.Fprintf(w, "✗ Connection error for %s: %v\n", res.URL, res.Err)

	case download.KindHTTPStatus:
		fmt.Fprintf(w, "✗ HTTP error for %s: %v\n", res.URL, res.Err)

	case download.KindVerification:
		fmt.Fprintf(w, "✗ Security warning: %s is not a valid image file!\n", res.URL)
		fmt.Fprintf(w, "  Detected as: %v\n", res.Err)
		fmt.Fprintf(w, "  File has been deleted for security\n")

	default:
		fmt.Fprintf(w, "✗ An error occurred for %s: %v\n", res.URL, res.Err)
	}
}

func printSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "\nDownload completed! %d/%d images downloaded successfully.\n", s.Successful(), s.Total())
}
