package inlinemedia

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
)

var errTooManyRedirects = errors.New("redirect chain too long")

// fetchGeneric runs the content-sniffing fetch pipeline for links no handler
// claimed. Redirects are intercepted rather than followed: the in-flight
// request is dropped and classification restarts at the registry with the
// new location, carrying the pre-redirect URL forward so image previews can
// still be correlated with the link that appeared in the message.
func (p *Pipeline) fetchGeneric(ctx context.Context, target, original *url.URL, hops int) (*Preview, error) {
	resp, err := p.httpGet(ctx, p.noRedirect, target.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		loc, err := resp.Location()
		if err != nil {
			return nil, err
		}
		if hops >= p.maxRedirects {
			return nil, errTooManyRedirects
		}
		orig := original
		if orig == nil {
			orig = target
		}
		p.log.Printf("redirect %q -> %q", target, loc)
		return p.classify(ctx, loc, orig, hops+1)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errors.New("bad status: " + resp.Status)
	}

	ct := resp.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "text/html"):
		body, err := readCapped(resp.Body, p.maxBodySize)
		if err != nil {
			return nil, err
		}
		return parseWebpage(body, ct, resp.Request.URL)
	case strings.HasPrefix(ct, "image/gif"):
		// animated images are transcoded from the response URL, the body
		// is never read; an unsuccessful transcode means the resource most
		// likely is not animated, fall back to a plain image preview
		if p.displayAnimated {
			if res, err := transcodeAnimated(ctx, p.client, "", resp.Request.URL); err == nil {
				return res, nil
			}
		}
		return p.imagePreview(ctx, resp.Request.URL, resp.Request.URL), nil
	case strings.HasPrefix(ct, "image/"):
		orig := original
		if orig == nil {
			orig = target
		}
		return p.imagePreview(ctx, resp.Request.URL, orig), nil
	default:
		// a file type without a special preview: generic file information
		// derived from headers only
		return filePreview(resp, target), nil
	}
}

// readCapped accumulates at most limit bytes of the body and then cancels
// the transfer. A short read error is tolerated once some data arrived;
// the truncated buffer is still handed to the HTML parser best-effort.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil && len(b) == 0 {
		return nil, err
	}
	if int64(len(b)) > limit {
		b = b[:limit]
	}
	return b, nil
}
