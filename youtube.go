package inlinemedia

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/artyom/oembed"
)

// youtubeHandler looks videos up through the Data API v3 when a key is
// configured. Without a key it falls back to the public oEmbed endpoint,
// which needs no credentials but reports no duration.
type youtubeHandler struct {
	apiKey     string
	apiBase    string // Data API endpoint override for tests
	oembedBase string // oEmbed endpoint override for tests
}

func (*youtubeHandler) Name() string { return "YouTube" }

func (*youtubeHandler) Match(u *url.URL) bool {
	switch {
	case strings.HasSuffix(u.Host, "youtube.com"):
		return u.Path == "/watch" && u.Query().Get("v") != ""
	case u.Host == "youtu.be":
		segs := pathSegments(u)
		return len(segs) == 1
	}
	return false
}

func (h *youtubeHandler) Fetch(ctx context.Context, client *http.Client, u *url.URL) (*Preview, error) {
	id := youtubeVideoID(u)
	if id == "" {
		return nil, errors.New("no video id in url")
	}
	if h.apiKey == "" {
		return h.fetchOembed(ctx, client, u)
	}
	base := h.apiBase
	if base == "" {
		base = "https://www.googleapis.com/youtube/v3/videos"
	}
	vals := make(url.Values)
	vals.Set("id", id)
	vals.Set("part", "snippet,contentDetails")
	vals.Set("key", h.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+vals.Encode(), nil)
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
		Items []struct {
			Snippet struct {
				Title        string `json:"title"`
				Description  string `json:"description"`
				ChannelTitle string `json:"channelTitle"`
				Thumbnails   map[string]struct {
					URL string `json:"url"`
				} `json:"thumbnails"`
			} `json:"snippet"`
			ContentDetails struct {
				Duration string `json:"duration"`
			} `json:"contentDetails"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	if len(data.Items) == 0 || data.Items[0].Snippet.Title == "" {
		return nil, errors.New("video not found")
	}
	item := data.Items[0]
	seconds, err := parseISO8601Duration(item.ContentDetails.Duration)
	if err != nil {
		return nil, err
	}
	return &Preview{
		Kind:        KindVideo,
		URL:         u.String(),
		Title:       item.Snippet.Title,
		Author:      item.Snippet.ChannelTitle,
		Description: firstLine(item.Snippet.Description),
		Image:       item.Snippet.Thumbnails["medium"].URL,
		Duration:    formatDuration(seconds),
	}, nil
}

// fetchOembed retrieves metadata from the https://www.youtube.com/oembed
// endpoint. This also papers over captcha-walled video pages that hide
// their metadata from scraping.
func (h *youtubeHandler) fetchOembed(ctx context.Context, client *http.Client, u *url.URL) (*Preview, error) {
	base := h.oembedBase
	if base == "" {
		base = "https://www.youtube.com/oembed"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?format=json&url="+url.QueryEscape(u.String()), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	meta, err := oembed.FromResponse(resp)
	if err != nil {
		return nil, err
	}
	return &Preview{
		Kind:   KindVideo,
		URL:    u.String(),
		Title:  meta.Title,
		Author: meta.AuthorName,
		Image:  meta.Thumbnail,
	}, nil
}

// youtubeVideoID extracts the video id from a watch link's "v" query
// parameter or a short link's single path segment.
func youtubeVideoID(u *url.URL) string {
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	if segs := pathSegments(u); len(segs) == 1 {
		return segs[0]
	}
	return ""
}
