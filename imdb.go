package inlinemedia

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// imdbHandler builds title cards from an OMDb-style lookup service.
type imdbHandler struct {
	apiBase string // endpoint override for tests
}

func (*imdbHandler) Name() string { return "IMDB" }

func (*imdbHandler) Match(u *url.URL) bool {
	if !strings.HasSuffix(u.Host, "imdb.com") {
		return false
	}
	segs := pathSegments(u)
	return len(segs) >= 2 && segs[0] == "title"
}

func (h *imdbHandler) Fetch(ctx context.Context, client *http.Client, u *url.URL) (*Preview, error) {
	segs := pathSegments(u)
	if len(segs) < 2 {
		return nil, errors.New("no title id in url")
	}
	base := h.apiBase
	if base == "" {
		base = "https://www.omdbapi.com/"
	}
	vals := make(url.Values)
	vals.Set("i", segs[1])
	vals.Set("plot", "short")
	vals.Set("r", "json")
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
		Response string `json:"Response"`
		Title    string `json:"Title"`
		Year     string `json:"Year"`
		Runtime  string `json:"Runtime"`
		Director string `json:"Director"`
		Plot     string `json:"Plot"`
		Poster   string `json:"Poster"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	if data.Response != "True" || data.Title == "" {
		return nil, errors.New("title not found")
	}
	res := &Preview{
		Kind:        KindRichCard,
		URL:         u.String(),
		Title:       data.Title,
		Description: omdbField(data.Plot),
		Author:      omdbField(data.Director),
		Duration:    omdbField(data.Runtime),
		Image:       omdbField(data.Poster),
	}
	if year := omdbField(data.Year); year != "" {
		res.Title += " (" + year + ")"
	}
	return res, nil
}

// omdbField filters out the API's "N/A" placeholder values.
func omdbField(s string) string {
	if s == "N/A" {
		return ""
	}
	return s
}
