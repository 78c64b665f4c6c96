package inlinemedia

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// imgurHandler rewrites direct imgur media links to their mp4 rendition;
// the service serves every animated format under the same id. No network
// call is needed.
type imgurHandler struct{}

var imgurVideoExtensions = map[string]bool{
	"mp4": true, "gif": true, "gifv": true, "webm": true,
}

func (*imgurHandler) Name() string { return "Imgur" }

func (*imgurHandler) Match(u *url.URL) bool {
	return strings.HasSuffix(u.Host, "i.imgur.com") &&
		imgurVideoExtensions[urlExtension(u)] && imgurMediaID(u) != ""
}

func (*imgurHandler) Fetch(ctx context.Context, client *http.Client, u *url.URL) (*Preview, error) {
	return &Preview{
		Kind:  KindVideo,
		URL:   u.String(),
		Video: "https://i.imgur.com/" + imgurMediaID(u) + ".mp4",
		Loop:  true,
	}, nil
}

func imgurMediaID(u *url.URL) string {
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
