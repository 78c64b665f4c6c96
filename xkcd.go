package inlinemedia

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// xkcdHandler previews comic links using the site's per-comic JSON
// endpoint; the alt text becomes the description.
type xkcdHandler struct {
	apiBase string // site base override for tests
}

func (*xkcdHandler) Name() string { return "xkcd" }

func (*xkcdHandler) Match(u *url.URL) bool {
	if u.Host != "xkcd.com" && !strings.HasSuffix(u.Host, ".xkcd.com") {
		return false
	}
	return xkcdComicNumber(u) != ""
}

func (h *xkcdHandler) Fetch(ctx context.Context, client *http.Client, u *url.URL) (*Preview, error) {
	num := xkcdComicNumber(u)
	if num == "" {
		return nil, errors.New("no comic number in url")
	}
	base := h.apiBase
	if base == "" {
		base = "https://xkcd.com"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/"+num+"/info.0.json", nil)
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
		Title string `json:"title"`
		Alt   string `json:"alt"`
		Img   string `json:"img"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	if data.Img == "" {
		return nil, errors.New("comic not found")
	}
	return &Preview{
		Kind:        KindImage,
		URL:         u.String(),
		Title:       data.Title,
		Description: data.Alt,
		Image:       data.Img,
	}, nil
}

// xkcdComicNumber accepts only /<number>/ comic permalinks.
func xkcdComicNumber(u *url.URL) string {
	segs := pathSegments(u)
	if len(segs) != 1 {
		return ""
	}
	for _, r := range segs[0] {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return segs[0]
}
