package inlinemedia

import (
	"testing"
)

func TestExtractBasicURLs(t *testing.T) {
	p := New()
	got := p.extract("Testing this out http://doist.com/#about https://todoist.com/chrome", false)
	want := []string{"http://doist.com/#about", "https://todoist.com/chrome"}

	if len(got) != len(want) {
		t.Fatalf("invalid result length, want %d, got %v", len(want), got)
	}
	for i := range want {
		if got[i].url.String() != want[i] {
			t.Errorf("unexpected url, want %q, got %q", want[i], got[i].url)
		}
	}
}

func TestExtractEscapedURL(t *testing.T) {
	p := New()
	got := p.extract("Bug report http://f.cl.ly/items/000V0N1B31283s3O350q/Screen%20Shot%202015-12-22%20at%2014.49.28.png", false)
	if len(got) != 1 {
		t.Fatalf("invalid result length: %v", got)
	}
	want := "http://f.cl.ly/items/000V0N1B31283s3O350q/Screen%20Shot%202015-12-22%20at%2014.49.28.png"
	if got[0].url.String() != want {
		t.Errorf("unexpected url, want %q, got %q", want, got[0].url)
	}
}

func TestExtractDeduplicates(t *testing.T) {
	p := New()
	got := p.extract("see https://example.com/a and again https://example.com/a", false)
	if len(got) != 1 {
		t.Errorf("duplicate link not collapsed: %v", got)
	}
}

func TestExtractInvalidUTF8(t *testing.T) {
	p := New()
	if got := p.extract("bad \xff\xfe bytes https://example.com/a", false); got != nil {
		t.Errorf("expected no candidates for invalid utf8 input, got %v", got)
	}
}

func TestExtractBlockedPrefix(t *testing.T) {
	p := New(WithBlockedPrefixes([]string{"https://internal.example.com/"}))
	got := p.extract("https://internal.example.com/secret and https://example.com/ok", false)
	if len(got) != 1 {
		t.Fatalf("invalid result length: %v", got)
	}
	if got[0].host != "example.com" {
		t.Errorf("blocked prefix survived extraction: %v", got)
	}
}

func TestExtractMarkdown(t *testing.T) {
	p := New()
	text := "See [the docs](https://example.com/docs) but not\n\n" +
		"```\nhttps://example.com/in-code-block\n```\n\nor `https://example.com/inline-code`\n"
	got := p.extract(text, true)
	if len(got) != 1 {
		t.Fatalf("invalid result length: %v", got)
	}
	if want := "https://example.com/docs"; got[0].url.String() != want {
		t.Errorf("unexpected url, want %q, got %q", want, got[0].url)
	}
}

func TestCanonicalURL(t *testing.T) {
	testCases := []struct {
		link string
		want string // empty means rejected
	}{
		{"https://example.com/path", "https://example.com/path"},
		{"http://example.com:8080/x", "http://example.com:8080/x"},
		{"ftp://example.com/file", ""},
		{"mailto:someone@example.com", ""},
		{"https://", ""},
		{"http://яндекс.рф/path", "http://xn--d1acpjx3f.xn--p1ai/path"},
		{"http://яндекс.рф:8080/path", "http://xn--d1acpjx3f.xn--p1ai:8080/path"},
	}
	for _, tc := range testCases {
		u, ok := canonicalURL(tc.link)
		if tc.want == "" {
			if ok {
				t.Errorf("%q: expected rejection, got %q", tc.link, u)
			}
			continue
		}
		if !ok {
			t.Errorf("%q: unexpected rejection", tc.link)
			continue
		}
		if u.String() != tc.want {
			t.Errorf("%q: want %q, got %q", tc.link, tc.want, u)
		}
	}
}

func TestCleanTrailingPunct(t *testing.T) {
	testCases := []struct {
		in, want string
	}{
		{"http://example.com/page.", "http://example.com/page"},
		{"http://example.com/page),", "http://example.com/page"},
		{"http://example.com/page;", "http://example.com/page"},
		{"https://en.wikipedia.org/wiki/Nash_(band)", "https://en.wikipedia.org/wiki/Nash_(band)"},
		{"http://example.com/a[1]", "http://example.com/a[1]"},
		{"http://example.com/page>.", "http://example.com/page"},
		{"http://example.com/page", "http://example.com/page"},
	}
	for _, tc := range testCases {
		if got := cleanTrailingPunct(tc.in); got != tc.want {
			t.Errorf("%q: want %q, got %q", tc.in, tc.want, got)
		}
	}
}
