package inlinemedia

import (
	"bytes"
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/dyatlov/go-opengraph/opengraph"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
)

var errNoTitleTag = errors.New("no title tag found")

// parseWebpage extracts a generic webpage preview from a (possibly
// truncated) HTML body. A <title> is mandatory; description comes from
// <meta name="description"> or <meta property="og:description">, falling
// back to the first non-empty <p> on the page; the preview image comes from
// <meta property="og:image">, resolved against the final response URL when
// relative. Decode errors fail the parse, they never propagate further.
func parseWebpage(htmlBody []byte, ct string, final *url.URL) (*Preview, error) {
	doc, err := parseDocument(htmlBody, ct)
	if err != nil {
		return nil, err
	}
	title, ok := getFirstElement(doc, "title")
	if !ok || strings.TrimSpace(title) == "" {
		return nil, errNoTitleTag
	}
	res := &Preview{
		Kind:  KindWebpage,
		URL:   final.String(),
		Title: strings.Join(strings.Fields(title), " "),
	}

	description, ogDescription, image := scanMetaTags(doc)
	if description == "" {
		description = ogDescription
	}
	if description == "" {
		description = firstParagraph(doc)
	}
	res.Description = strings.TrimSpace(description)

	if image == "" {
		// og:image occasionally hides from the tree walk behind broken
		// markup the opengraph tokenizer still handles
		og := opengraph.NewOpenGraph()
		if r, err := charset.NewReader(bytes.NewReader(htmlBody), ct); err == nil {
			if err := og.ProcessHTML(r); err == nil && len(og.Images) > 0 {
				image = og.Images[0].URL
			}
		}
	}
	if image != "" {
		res.Image = resolveImageURL(image, final)
	}
	return res, nil
}

// parseDocument parses an HTML body into a utf8 node tree. The explicit
// content type from headers drives charset detection; bodies without a
// usable charset declaration there fall back to a `meta charset` probe of
// the parsed tree, the way multibyte pages commonly declare it.
func parseDocument(htmlBody []byte, ct string) (*html.Node, error) {
	if r, err := charset.NewReader(bytes.NewReader(htmlBody), ct); err == nil {
		if node, err := html.Parse(r); err == nil {
			return node, nil
		}
	}
	node, err := html.Parse(bytes.NewReader(htmlBody))
	if err != nil {
		return nil, err
	}
	if utf8.Valid(htmlBody) {
		return node, nil
	}
	cs := htmlCharset(node)
	if cs == "" {
		return nil, errors.New("cannot detect multibyte document charset")
	}
	enc, err := htmlindex.Get(cs)
	if err != nil {
		return nil, err
	}
	return html.Parse(enc.NewDecoder().Reader(bytes.NewReader(htmlBody)))
}

// htmlCharset tries to find the first 'meta charset=xxx' attribute and
// extract the charset as a string.
func htmlCharset(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "meta" {
		for _, a := range n.Attr {
			if a.Key == "charset" {
				return a.Val
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if s := htmlCharset(c); s != "" {
			return s
		}
	}
	return ""
}

// scanMetaTags walks the document collecting the plain description meta,
// the og:description meta and the og:image meta in one pass.
func scanMetaTags(doc *html.Node) (description, ogDescription, image string) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var name, property, content string
			for _, a := range n.Attr {
				switch a.Key {
				case "name":
					name = strings.ToLower(a.Val)
				case "property":
					property = strings.ToLower(a.Val)
				case "content":
					content = a.Val
				}
			}
			switch {
			case name == "description" && description == "":
				description = content
			case property == "og:description" && ogDescription == "":
				ogDescription = content
			case property == "og:image" && image == "":
				image = content
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return description, ogDescription, image
}

// firstParagraph returns the text of the first non-empty <p> element, the
// last-resort description for pages that offer none in their metadata.
func firstParagraph(doc *html.Node) string {
	var result string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "p" {
			if text := strings.TrimSpace(flatten(n)); text != "" {
				result = text
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return result
}

// getFirstElement returns flattened content of the first found element of
// the given type.
func getFirstElement(n *html.Node, element string) (t string, found bool) {
	if n.Type == html.ElementNode && n.Data == element {
		return flatten(n), true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		t, found = getFirstElement(c, element)
		if found {
			return
		}
	}
	return
}

// flatten returns flattened text content of an html node.
func flatten(n *html.Node) (res string) {
	if n.Type == html.TextNode {
		return n.Data
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		res += flatten(c)
	}
	return res
}

// resolveImageURL resolves a possibly relative og:image value against the
// final response URL. data: URIs are kept as-is.
func resolveImageURL(image string, final *url.URL) string {
	if strings.HasPrefix(image, "data:image/") {
		return image
	}
	u, err := url.Parse(image)
	if err != nil {
		return ""
	}
	return final.ResolveReference(u).String()
}
