package inlinemedia

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// gfycatHandler resolves gfycat links to their mp4 rendition through the
// cajax lookup endpoint.
type gfycatHandler struct {
	apiBase string // endpoint override for tests
}

func (*gfycatHandler) Name() string { return "Gfycat" }

func (*gfycatHandler) Match(u *url.URL) bool {
	return strings.HasSuffix(u.Host, "gfycat.com") && gfycatMediaID(u) != ""
}

func (h *gfycatHandler) Fetch(ctx context.Context, client *http.Client, u *url.URL) (*Preview, error) {
	id := gfycatMediaID(u)
	if id == "" {
		return nil, errors.New("no media id in url")
	}
	base := h.apiBase
	if base == "" {
		base = "https://gfycat.com/cajax/get/"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+id, nil)
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
	var data struct {
		GfyItem struct {
			Title  string `json:"title"`
			Mp4URL string `json:"mp4Url"`
		} `json:"gfyItem"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	if data.GfyItem.Mp4URL == "" {
		return nil, errors.New("no mp4 rendition")
	}
	return &Preview{
		Kind:  KindVideo,
		URL:   u.String(),
		Title: data.GfyItem.Title,
		Video: data.GfyItem.Mp4URL,
		Loop:  true,
	}, nil
}

// gfycatMediaID is the first path segment with any media extension
// stripped.
func gfycatMediaID(u *url.URL) string {
	segs := pathSegments(u)
	if len(segs) == 0 {
		return ""
	}
	id := segs[0]
	if i := strings.IndexByte(id, '.'); i >= 0 {
		id = id[:i]
	}
	return id
}
