package inlinemedia

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// vimeoHandler retrieves video metadata from the Vimeo oEmbed endpoint.
// The response is decoded directly because Vimeo extends the oEmbed shape
// with a non-standard duration field.
type vimeoHandler struct {
	apiBase string // endpoint override for tests
}

func (*vimeoHandler) Name() string { return "Vimeo" }

func (*vimeoHandler) Match(u *url.URL) bool {
	if !strings.HasSuffix(u.Host, "vimeo.com") {
		return false
	}
	return vimeoVideoID(u) != ""
}

func (h *vimeoHandler) Fetch(ctx context.Context, client *http.Client, u *url.URL) (*Preview, error) {
	id := vimeoVideoID(u)
	if id == "" {
		return nil, errors.New("no video id in url")
	}
	base := h.apiBase
	if base == "" {
		base = "https://vimeo.com/api/oembed.json"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		base+"?url="+url.QueryEscape("https://vimeo.com/"+id), nil)
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
		Title        string `json:"title"`
		AuthorName   string `json:"author_name"`
		Description  string `json:"description"`
		ThumbnailURL string `json:"thumbnail_url"`
		Duration     int    `json:"duration"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	if data.Title == "" {
		return nil, errors.New("no title in response")
	}
	return &Preview{
		Kind:        KindVideo,
		URL:         u.String(),
		Title:       data.Title,
		Author:      data.AuthorName,
		Description: firstLine(data.Description),
		Image:       data.ThumbnailURL,
		Duration:    formatDuration(data.Duration),
	}, nil
}

// vimeoVideoID returns the numeric id from the first path segment, if any.
func vimeoVideoID(u *url.URL) string {
	segs := pathSegments(u)
	if len(segs) == 0 {
		return ""
	}
	for _, r := range segs[0] {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return segs[0]
}
