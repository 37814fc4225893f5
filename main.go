package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"

	"github.com/ccollins476ad/imgfetch/download"
	log "github.com/sirupsen/logrus"
)

func printFatalError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

func main() {
	cfg, err := parseArgs()
	if err != nil {
		printFatalError(err)
		flag.Usage()
		os.Exit(1)
	}

	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = run(ctx, cfg, &http.Client{}, os.Stdin, os.Stdout)
	if err != nil {
		printFatalError(err)
		os.Exit(2)
	}
}

// run creates the destination directory, collects urls from in, and
// downloads each of them. Per-url failures are reported to out and are not
// errors; an empty batch is not an error either.
func run(ctx context.Context, cfg *Config, hc *http.Client, in io.Reader, out io.Writer) error {
	store, err := download.NewStore(cfg.DestDir)
	if err != nil {
		return err
	}

	printBanner(out)

	urls, err := readURLs(in)
	if err != nil {
		return err
	}

	if len(urls) == 0 {
		fmt.Fprintln(out, "No URLs provided. Exiting.")
		return nil
	}

	log.Debugf("processing %d url(s) into %s", len(urls), store.DestDir())

	env := newFetchEnv(cfg, store, hc, out)
	s := processURLs(ctx, env, urls)
	printSummary(out, s)

	return nil
}
