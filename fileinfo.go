package inlinemedia

import (
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// filePreview builds a generic file information payload from response
// headers alone; the body of the response is never read for this branch.
func filePreview(resp *http.Response, target *url.URL) *Preview {
	res := &Preview{
		Kind:     KindFile,
		URL:      target.String(),
		FileName: path.Base(target.Path),
	}
	if res.FileName == "/" || res.FileName == "." {
		res.FileName = target.Host
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if i := strings.IndexByte(ct, ';'); i >= 0 {
			ct = ct[:i]
		}
		res.FileKind = strings.TrimSpace(ct)
	}
	if n, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64); err == nil && n >= 0 {
		res.FileSize = humanize.IBytes(uint64(n))
	}
	if t, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		res.FileModified = t.UTC().Format(time.RFC1123)
	}
	return res
}
