package inlinemedia

import (
	"context"
	"errors"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// quoteboardHandler scrapes bash.org-style quote pages into rich text
// cards. The quote body keeps its IRC framing; nicknames in <angle
// brackets> are wrapped in highlight spans for the renderer.
type quoteboardHandler struct{}

func (*quoteboardHandler) Name() string { return "Quote board" }

func (*quoteboardHandler) Match(u *url.URL) bool {
	return strings.HasSuffix(u.Host, "bash.org") && u.RawQuery != ""
}

func (*quoteboardHandler) Fetch(ctx context.Context, client *http.Client, u *url.URL) (*Preview, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errors.New("bad status: " + resp.Status)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		return nil, errors.New("not an html page")
	}
	r, err := charset.NewReader(resp.Body, ct)
	if err != nil {
		return nil, err
	}
	doc, err := xhtml.Parse(r)
	if err != nil {
		return nil, err
	}
	quote := firstElementWithClass(doc, "qt")
	if quote == nil {
		return nil, errors.New("no quote on page")
	}
	text := strings.TrimSpace(flatten(quote))
	if text == "" {
		return nil, errors.New("empty quote")
	}
	title := "#" + strings.TrimLeft(u.RawQuery, "=?")
	if header := firstElementWithClass(doc, "quote"); header != nil {
		if votes := strings.TrimSpace(flattenTag(header, "font")); votes != "" {
			title += " (" + votes + ")"
		}
	}
	return &Preview{
		Kind:        KindRichCard,
		URL:         u.String(),
		Title:       title,
		Description: text,
		HTML:        highlightNicknames(text),
	}, nil
}

var nicknameToken = regexp.MustCompile(`^&lt;[&#;\w\[\]\\^{}|` + "`" + `-]+&gt;`)

// highlightNicknames renders the quote as HTML with IRC nicknames at the
// start of each line wrapped in a span the theme can colorize.
func highlightNicknames(quote string) string {
	var b strings.Builder
	for i, line := range strings.Split(quote, "\n") {
		if i > 0 {
			b.WriteString("<br>")
		}
		escaped := html.EscapeString(strings.TrimSpace(line))
		if loc := nicknameToken.FindStringIndex(escaped); loc != nil {
			b.WriteString(`<span class="quote_nickname">`)
			b.WriteString(escaped[:loc[1]])
			b.WriteString(`</span>`)
			b.WriteString(escaped[loc[1]:])
			continue
		}
		b.WriteString(escaped)
	}
	return b.String()
}

// firstElementWithClass walks the tree for the first element carrying the
// given class attribute value.
func firstElementWithClass(n *xhtml.Node, class string) *xhtml.Node {
	if n.Type == xhtml.ElementNode {
		for _, a := range n.Attr {
			if a.Key != "class" {
				continue
			}
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return n
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := firstElementWithClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

// flattenTag returns the flattened text of the first descendant element of
// the given tag name.
func flattenTag(n *xhtml.Node, tag string) string {
	if t, ok := getFirstElement(n, tag); ok {
		return t
	}
	return ""
}
