package web

import (
	"strings"

	"golang.org/x/net/html"
)

// ForEachNode applies a function to the given node and each of its
// descendants, depth first. It stops at the first error.
func ForEachNode(node *html.Node, fn func(n *html.Node) error) error {
	var iter func(n *html.Node) error
	iter = func(n *html.Node) error {
		err := fn(n)
		if err != nil {
			return err
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			err := iter(c)
			if err != nil {
				return err
			}
		}

		return nil
	}

	return iter(node)
}

// NodesWithDataVal returns a slice of all descendant element nodes whose
// "data" field (tag name) has the given value.
func NodesWithDataVal(node *html.Node, dataName string) []*html.Node {
	var nodes []*html.Node

	ForEachNode(node, func(n *html.Node) error {
		if n.Type == html.ElementNode && n.Data == dataName {
			nodes = append(nodes, n)
		}
		return nil
	})

	return nodes
}

// Attr returns the value of the named attribute, or "".
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// EmbeddedImageURLs returns the src of every img element in the given html
// document, in document order.
func EmbeddedImageURLs(doc *html.Node) []string {
	var urls []string
	for _, n := range NodesWithDataVal(doc, "img") {
		if src := Attr(n, "src"); src != "" {
			urls = append(urls, src)
		}
	}
	return urls
}

// PageTitle returns the whitespace-trimmed text of the document's first title
// element, or "".
func PageTitle(doc *html.Node) string {
	titles := NodesWithDataVal(doc, "title")
	if len(titles) == 0 {
		return ""
	}

	sb := strings.Builder{}
	for c := titles[0].FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}
