package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
	"mvdan.cc/xurls/v2"
)

var exampleURLs = []struct {
	URL  string
	Desc string
}{
	{"https://httpbin.org/image/jpeg", "Test JPEG"},
	{"https://httpbin.org/image/png", "Test PNG"},
	{"https://httpbin.org/image/webp", "Test WebP"},
}

func printBanner(w io.Writer) {
	fmt.Fprintln(w, "Welcome to the Ubuntu Image Fetcher")
	fmt.Fprintln(w, "A tool for mindfully collecting images from the web")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Please enter the image URL (one per line, blank line to finish):")
	fmt.Fprintln(w, "Tip: Try these test URLs:")
	for _, e := range exampleURLs {
		fmt.Fprintf(w, "  - %s (%s)\n", e.URL, e.Desc)
	}
}

// readURLs reads lines from r until a blank line or end of input. Every url
// found in a line is collected, in order. A non-blank line without a
// recognizable url is kept as-is so that it gets reported rather than
// silently dropped.
func readURLs(r io.Reader) ([]string, error) {
	rx := xurls.Strict()

	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}

		found := rx.FindAllString(line, -1)
		if len(found) == 0 {
			log.Debugf("no url recognized in input line: %q", line)
			urls = append(urls, line)
			continue
		}
		urls = append(urls, found...)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read urls: %w", err)
	}

	return urls, nil
}
