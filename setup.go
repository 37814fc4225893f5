package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ccollins476ad/imgfetch/download"
)

const defaultDestDir = "Fetched_Images"

type Config struct {
	DestDir string        // Directory to save images to.
	Timeout time.Duration // Per-request timeout, including the body read.
	Resolve bool          // True to resolve image host page links to direct links.
	Verbose bool          // True for verbose output.
}

func parseArgs() (*Config, error) {
	destDir := flag.String("o", defaultDestDir, "destination directory")
	timeout := flag.Duration("timeout", download.DefaultTimeout, "per-request timeout")
	resolve := flag.Bool("resolve", false, "resolve imgur/imgbb page and album links to direct image links")
	verbose := flag.Bool("v", false, "verbose output")

	flag.Usage = usage
	flag.Parse()

	if len(flag.Args()) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s (urls are read from standard input)", flag.Args()[0])
	}
	if *destDir == "" {
		return nil, fmt.Errorf("destination directory must not be empty")
	}
	if *timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive: have=%v", *timeout)
	}

	return &Config{
		DestDir: *destDir,
		Timeout: *timeout,
		Resolve: *resolve,
		Verbose: *verbose,
	}, nil
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [option]...\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(flag.CommandLine.Output(), "Downloads images from urls read from standard input, one per line.\n")
	flag.PrintDefaults()
}
