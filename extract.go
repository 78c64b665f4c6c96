package inlinemedia

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
	"mvdan.cc/xurls/v2"
)

// ScanFunc locates hyperlink-looking substrings in plain text. The default
// implementation wraps the strict xurls matcher; hosts embedding the
// pipeline may delegate to their own scanner instead.
type ScanFunc func(text string, maxItems int) []string

func defaultScanner() ScanFunc {
	rx := xurls.Strict()
	return func(text string, maxItems int) []string {
		return rx.FindAllString(text, maxItems)
	}
}

// candidate is a single link extracted from message text, normalized to a
// canonical absolute URL. Candidates live for one message-processing pass.
type candidate struct {
	raw   string   // link text as it appeared in the message
	url   *url.URL // canonical absolute URL, IDN host in ASCII form
	host  string
	depth int // number of path components
}

// extract scans the message text and returns candidates in order of
// appearance. Invalid UTF-8 input yields no candidates; malformed or
// non-http(s) matches are dropped silently.
func (p *Pipeline) extract(text string, markdown bool) []candidate {
	if !utf8.ValidString(text) {
		return nil
	}
	var matches []string
	if markdown {
		matches = parseMarkdownURLs(text, p.scanner, -1)
	} else {
		matches = p.scanner(text, -1)
	}
	out := make([]candidate, 0, len(matches))
	seen := make(map[string]struct{})
	for _, m := range matches {
		m = cleanTrailingPunct(m)
		u, ok := canonicalURL(m)
		if !ok {
			p.log.Printf("dropping unparseable link %q", m)
			continue
		}
		if p.blockedByPrefix(u.String()) {
			p.log.Printf("blocked link %q", u)
			continue
		}
		if _, dup := seen[u.String()]; dup {
			continue
		}
		seen[u.String()] = struct{}{}
		out = append(out, candidate{
			raw:   m,
			url:   u,
			host:  u.Host,
			depth: len(pathSegments(u)),
		})
	}
	return out
}

// canonicalURL parses a matched link and resolves an internationalized
// domain name to its ASCII (punycode) form. IDN resolution fails soft: on
// failure the literal host is kept; only links that cannot be parsed at all,
// or use a non-http(s) scheme, are rejected.
func canonicalURL(link string) (*url.URL, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return nil, false
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return nil, false
	}
	if u.Host == "" {
		return nil, false
	}
	if host, err := idna.Lookup.ToASCII(u.Hostname()); err == nil && host != u.Hostname() {
		if port := u.Port(); port != "" {
			u.Host = host + ":" + port
		} else {
			u.Host = host
		}
	}
	return u, true
}

// cleanTrailingPunct removes combinations of trailing punctuation characters
// that commonly stick to links in prose, keeping a trailing )]}> only if its
// opening counterpart appears inside the url.
func cleanTrailingPunct(s string) string {
	const punct = `[]()<>{},;.*_`
	if idx := strings.IndexAny(s, punct); idx < 0 {
		return s
	}
cleanLoop:
	for {
		idx := strings.LastIndexAny(s, punct)
		if idx != len(s)-1 {
			break
		}
		switch s[idx] {
		case ')':
			if strings.Index(s, `(`) > 0 {
				break cleanLoop
			}
		case ']':
			if strings.Index(s, `[`) > 0 {
				break cleanLoop
			}
		case '>':
			if strings.Index(s, `<`) > 0 {
				break cleanLoop
			}
		case '}':
			if strings.Index(s, `{`) > 0 {
				break cleanLoop
			}
		}
		s = s[:idx]
	}
	return s
}

func (p *Pipeline) blockedByPrefix(link string) bool {
	for _, prefix := range p.blockedPrefixes {
		if strings.HasPrefix(link, prefix) {
			return true
		}
	}
	return false
}

// pathSegments splits the URL path into its non-empty components.
func pathSegments(u *url.URL) []string {
	var segs []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
