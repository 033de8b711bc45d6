// Package imageref classifies clicked DOM elements and extracts the raw
// image reference from their attributes.
//
// The editor frontend posts the outer HTML of the element under the double
// click; this package works on the parsed *html.Node form of that fragment.
package imageref

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/starford/perthro/internal/apperr"
	"github.com/starford/perthro/internal/resolver"
)

// containerClass marks an element the editor renders as an image embed even
// when the element itself is not an <img> tag.
const containerClass = "image-embed"

// candidateAttrs are tried in priority order when extracting a reference.
var candidateAttrs = []string{"src", "alt", "data-src", "data-path", "data-href", "title"}

// IsImage reports whether the clicked element represents an image: an <img>
// node, a recognized image container, or anything holding a descendant <img>.
func IsImage(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if n.Data == "img" || hasClass(n, containerClass) {
		return true
	}
	return findImg(n) != nil
}

// Extract returns the raw image reference carried by the element, trying the
// element's own attributes first and then its descendant <img>. Candidates
// that turn out to be embedded (data:/blob:) or network images terminate
// extraction with that specific condition instead of being skipped.
func Extract(n *html.Node) (string, error) {
	if n == nil || n.Type != html.ElementNode {
		return "", fmt.Errorf("imageref: not an element: %w", apperr.ErrNoReference)
	}

	nodes := []*html.Node{n}
	if img := findImg(n); img != nil && img != n {
		nodes = append(nodes, img)
	}

	for _, attrName := range candidateAttrs {
		for _, node := range nodes {
			raw := strings.TrimSpace(attr(node, attrName))
			if raw == "" {
				continue
			}
			ref, err := resolver.Sanitize(raw)
			if err == nil {
				return ref, nil
			}
			if errors.Is(err, apperr.ErrEmbeddedImage) || errors.Is(err, apperr.ErrNetworkImage) {
				return "", fmt.Errorf("imageref: attribute %s: %w", attrName, err)
			}
		}
	}
	return "", fmt.Errorf("imageref: no usable attribute: %w", apperr.ErrNoReference)
}

// ParseFragment parses an HTML fragment and returns its first element node.
func ParseFragment(fragment string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("imageref: parse fragment: %w", err)
	}
	if el := firstElement(findBody(doc)); el != nil {
		return el, nil
	}
	return nil, fmt.Errorf("imageref: empty fragment: %w", apperr.ErrNoReference)
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// findImg returns the first <img> at or below n.
func findImg(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "img" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findImg(c); found != nil {
			return found
		}
	}
	return nil
}

func findBody(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}

func firstElement(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}
