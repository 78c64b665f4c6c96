package inlinemedia

import (
	"sort"
	"sync"
)

// displayedCacheSize bounds the recently displayed link cache: once a URL is
// selected for preview it suppresses re-selection for the next 50 distinct
// selections (when duplicate display is disabled).
const displayedCacheSize = 50

// prioritize narrows extracted candidates down to the list of links that
// will actually be processed: at most one link per host (deepest path wins,
// low-priority marker links always lose) and at most maxPreviews in total.
// Every selected URL is recorded in the displayed cache at selection time,
// so a later fetch failure still counts toward duplicate suppression.
func (p *Pipeline) prioritize(candidates []candidate) []candidate {
	groups := make(map[string][]candidate)
	var hosts []string // discovery order of hosts
	for _, c := range candidates {
		if !p.displayDupes && p.displayed.contains(c.url.String()) {
			p.log.Printf("suppressing duplicate %q", c.url)
			continue
		}
		if _, ok := groups[c.host]; !ok {
			hosts = append(hosts, c.host)
		}
		groups[c.host] = append(groups[c.host], c)
	}

	selected := make([]candidate, 0, len(hosts))
	for _, host := range hosts {
		group := groups[host]
		sort.SliceStable(group, func(i, j int) bool {
			di, dj := p.demoted(group[i]), p.demoted(group[j])
			if di != dj {
				return !di
			}
			return group[i].depth > group[j].depth
		})
		selected = append(selected, group[0])
	}
	if len(selected) > p.maxPreviews {
		selected = selected[:p.maxPreviews]
	}
	for _, c := range selected {
		p.displayed.add(c.url.String())
	}
	return selected
}

// demoted reports whether the link points at a low-priority listing page,
// determined by the configured marker predicate on its first path segment.
func (p *Pipeline) demoted(c candidate) bool {
	segs := pathSegments(c.url)
	return len(segs) > 0 && p.lowPriority(segs[0])
}

// displayedCache is a bounded FIFO set of URL strings. The oldest entry is
// evicted once capacity is reached.
type displayedCache struct {
	mu    sync.Mutex
	limit int
	order []string
	seen  map[string]struct{}
}

func newDisplayedCache(limit int) *displayedCache {
	return &displayedCache{
		limit: limit,
		seen:  make(map[string]struct{}, limit),
	}
}

func (c *displayedCache) contains(link string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[link]
	return ok
}

func (c *displayedCache) add(link string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen[link]; ok {
		return
	}
	if len(c.order) == c.limit {
		delete(c.seen, c.order[0])
		c.order = c.order[1:]
	}
	c.order = append(c.order, link)
	c.seen[link] = struct{}{}
}
