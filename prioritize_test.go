package inlinemedia

import (
	"fmt"
	"testing"
)

func TestPrioritizeOnePerHost(t *testing.T) {
	p := New()
	candidates := p.extract("https://example.com/ then https://example.com/a/b/c and https://other.org/x", false)
	got := p.prioritize(candidates)
	if len(got) != 2 {
		t.Fatalf("invalid result length: %v", got)
	}
	if want := "https://example.com/a/b/c"; got[0].url.String() != want {
		t.Errorf("unexpected first pick, want %q, got %q", want, got[0].url)
	}
	if want := "https://other.org/x"; got[1].url.String() != want {
		t.Errorf("unexpected second pick, want %q, got %q", want, got[1].url)
	}
}

func TestPrioritizeLowPriorityMarker(t *testing.T) {
	p := New()
	candidates := p.extract("https://news.example.com/section/world/europe/longest and https://news.example.com/brief", false)
	got := p.prioritize(candidates)
	if len(got) != 1 {
		t.Fatalf("invalid result length: %v", got)
	}
	if want := "https://news.example.com/brief"; got[0].url.String() != want {
		t.Errorf("listing page beat a direct link, want %q, got %q", want, got[0].url)
	}
}

func TestPrioritizeCustomMarker(t *testing.T) {
	p := New(WithLowPriorityMarker(func(segment string) bool { return segment == "tag" }))
	candidates := p.extract("https://blog.example.com/tag/golang/archive and https://blog.example.com/post", false)
	got := p.prioritize(candidates)
	if len(got) != 1 {
		t.Fatalf("invalid result length: %v", got)
	}
	if want := "https://blog.example.com/post"; got[0].url.String() != want {
		t.Errorf("unexpected pick, want %q, got %q", want, got[0].url)
	}
}

func TestPrioritizeMaxPreviews(t *testing.T) {
	p := New(WithMaxPreviews(2))
	candidates := p.extract("https://a.example/1 https://b.example/2 https://c.example/3", false)
	got := p.prioritize(candidates)
	if len(got) != 2 {
		t.Fatalf("invalid result length: %v", got)
	}
	if got[0].host != "a.example" || got[1].host != "b.example" {
		t.Errorf("selection did not keep discovery order: %v", got)
	}
}

func TestPrioritizeDuplicateSuppression(t *testing.T) {
	p := New(WithDuplicateDisplay(false))
	candidates := p.extract("https://example.com/a", false)
	if got := p.prioritize(candidates); len(got) != 1 {
		t.Fatalf("first pass: invalid result length: %v", got)
	}
	candidates = p.extract("https://example.com/a", false)
	if got := p.prioritize(candidates); len(got) != 0 {
		t.Errorf("second pass: duplicate not suppressed: %v", got)
	}
}

func TestPrioritizeDuplicatesAllowedByDefault(t *testing.T) {
	p := New()
	for i := 0; i < 2; i++ {
		candidates := p.extract("https://example.com/a", false)
		if got := p.prioritize(candidates); len(got) != 1 {
			t.Fatalf("pass %d: invalid result length: %v", i, got)
		}
	}
}

func TestDisplayedCacheEviction(t *testing.T) {
	c := newDisplayedCache(3)
	for i := 0; i < 4; i++ {
		c.add(fmt.Sprintf("https://example.com/%d", i))
	}
	if c.contains("https://example.com/0") {
		t.Error("oldest entry not evicted")
	}
	for i := 1; i < 4; i++ {
		link := fmt.Sprintf("https://example.com/%d", i)
		if !c.contains(link) {
			t.Errorf("missing entry %q", link)
		}
	}
}

func TestDisplayedCacheRepeatAdd(t *testing.T) {
	c := newDisplayedCache(2)
	c.add("https://example.com/a")
	c.add("https://example.com/a")
	c.add("https://example.com/b")
	if !c.contains("https://example.com/a") {
		t.Error("repeated add evicted a live entry")
	}
}
