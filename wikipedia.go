package inlinemedia

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// wikipediaHandler produces article cards from the MediaWiki action API of
// the language subdomain the link points at.
type wikipediaHandler struct {
	apiBase string // full api.php endpoint override for tests
}

func (*wikipediaHandler) Name() string { return "Wikipedia" }

func (*wikipediaHandler) Match(u *url.URL) bool {
	if !strings.HasSuffix(u.Host, ".wikipedia.org") {
		return false
	}
	segs := pathSegments(u)
	return len(segs) == 2 && segs[0] == "wiki"
}

func (h *wikipediaHandler) Fetch(ctx context.Context, client *http.Client, u *url.URL) (*Preview, error) {
	segs := pathSegments(u)
	if len(segs) != 2 {
		return nil, errors.New("no article title in url")
	}
	base := h.apiBase
	if base == "" {
		base = "https://" + u.Host + "/w/api.php"
	}
	vals := make(url.Values)
	vals.Set("format", "json")
	vals.Set("action", "query")
	vals.Set("prop", "extracts|pageimages")
	vals.Set("exsentences", "4")
	vals.Set("explaintext", "true")
	vals.Set("titles", segs[1])
	vals.Set("pithumbsize", "200")
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
		Query struct {
			Pages map[string]struct {
				Title     string `json:"title"`
				Extract   string `json:"extract"`
				Thumbnail struct {
					Source string `json:"source"`
				} `json:"thumbnail"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	for id, page := range data.Query.Pages {
		if id == "-1" || page.Title == "" { // "-1" keys missing articles
			continue
		}
		return &Preview{
			Kind:        KindRichCard,
			URL:         u.String(),
			Title:       page.Title,
			Description: page.Extract,
			Image:       page.Thumbnail.Source,
		}, nil
	}
	return nil, errors.New("article not found")
}
