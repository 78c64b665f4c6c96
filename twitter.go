package inlinemedia

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/artyom/oembed"
)

// twitterHandler turns tweet status links into rich cards through the
// statuses/oembed endpoint.
type twitterHandler struct {
	apiBase string // endpoint override for tests
}

func (*twitterHandler) Name() string { return "Twitter" }

func (*twitterHandler) Match(u *url.URL) bool {
	return strings.HasSuffix(u.Host, "twitter.com") &&
		strings.Contains(strings.ToLower(u.Path), "/status/")
}

func (h *twitterHandler) Fetch(ctx context.Context, client *http.Client, u *url.URL) (*Preview, error) {
	id := tweetID(u)
	if id == "" {
		return nil, errors.New("no status id in url")
	}
	base := h.apiBase
	if base == "" {
		base = "https://api.twitter.com/1/statuses/oembed.json"
	}
	vals := make(url.Values)
	vals.Set("id", id)
	vals.Set("omit_script", "true")
	vals.Set("align", "left")
	vals.Set("maxwidth", "550")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+vals.Encode(), nil)
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
	if meta.HTML == "" {
		return nil, errors.New("no embed html in response")
	}
	return &Preview{
		Kind:   KindRichCard,
		URL:    u.String(),
		Title:  meta.Title,
		Author: meta.AuthorName,
		HTML:   meta.HTML,
	}, nil
}

// tweetID returns the path segment following "status".
func tweetID(u *url.URL) string {
	segs := pathSegments(u)
	for i, s := range segs {
		if strings.EqualFold(s, "status") && i+1 < len(segs) {
			return segs[i+1]
		}
	}
	return ""
}
