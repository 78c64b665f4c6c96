package inlinemedia

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// streamableHandler constructs the CDN mp4 location straight from the
// video id in the link; no API call is involved.
type streamableHandler struct{}

func (*streamableHandler) Name() string { return "Streamable" }

func (*streamableHandler) Match(u *url.URL) bool {
	return strings.HasSuffix(u.Host, "streamable.com") && streamableVideoID(u) != ""
}

func (*streamableHandler) Fetch(ctx context.Context, client *http.Client, u *url.URL) (*Preview, error) {
	return &Preview{
		Kind:  KindVideo,
		URL:   u.String(),
		Video: "https://cdn.streamable.com/video/mp4/" + streamableVideoID(u) + ".mp4",
		Loop:  true,
	}, nil
}

func streamableVideoID(u *url.URL) string {
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
