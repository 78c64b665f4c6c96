package inlinemedia

import (
	"net/http"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// WithHTTPClient configures the pipeline to use the provided http.Client for
// outgoing requests.
func WithHTTPClient(client *http.Client) ConfFunc {
	return func(p *Pipeline) *Pipeline {
		if client != nil {
			p.client = client
		}
		return p
	}
}

// WithRenderer attaches the host application's view boundary; every
// successful preview results in one InsertPreview call on it.
func WithRenderer(r Renderer) ConfFunc {
	return func(p *Pipeline) *Pipeline {
		if r != nil {
			p.renderer = r
		}
		return p
	}
}

// WithLogger configures the pipeline to use the provided logger.
func WithLogger(l Logger) ConfFunc {
	return func(p *Pipeline) *Pipeline {
		if l != nil {
			p.log = l
		}
		return p
	}
}

// WithScanner replaces the hyperlink scanner used by the link extractor.
func WithScanner(scan ScanFunc) ConfFunc {
	return func(p *Pipeline) *Pipeline {
		if scan != nil {
			p.scanner = scan
		}
		return p
	}
}

// WithSenderPolicy configures the per-user suppression lookup consulted
// before processing a message.
func WithSenderPolicy(policy SenderPolicy) ConfFunc {
	return func(p *Pipeline) *Pipeline {
		p.policy = policy
		return p
	}
}

// WithMaxPreviews limits how many previews a single message may produce.
// n must be positive.
func WithMaxPreviews(n int) ConfFunc {
	return func(p *Pipeline) *Pipeline {
		if n > 0 {
			p.maxPreviews = n
		}
		return p
	}
}

// WithDuplicateDisplay controls the displayInformationForDuplicates option:
// when disabled, links recently selected for preview are skipped on
// subsequent messages.
func WithDuplicateDisplay(enable bool) ConfFunc {
	return func(p *Pipeline) *Pipeline {
		p.displayDupes = enable
		return p
	}
}

// WithAnimatedImages controls whether animated GIF links are probed for a
// video transcode; when disabled they are previewed as plain images.
func WithAnimatedImages(enable bool) ConfFunc {
	return func(p *Pipeline) *Pipeline {
		p.displayAnimated = enable
		return p
	}
}

// WithImageDimensions configures the pipeline to fetch dimensions of
// directly previewed images (costs an extra request per image).
func WithImageDimensions(enable bool) ConfFunc {
	return func(p *Pipeline) *Pipeline {
		p.fetchImageSize = enable
		return p
	}
}

// WithHandlers replaces the default handler registry. Order is significant:
// the first enabled handler whose predicate matches a URL claims it.
func WithHandlers(handlers ...Handler) ConfFunc {
	return func(p *Pipeline) *Pipeline {
		p.handlers = handlers
		return p
	}
}

// WithHandlerDisabled turns off handlers by name; disabled handlers are
// skipped during registry matching. All handlers are enabled by default.
func WithHandlerDisabled(names ...string) ConfFunc {
	return func(p *Pipeline) *Pipeline {
		for _, name := range names {
			p.disabled[name] = true
		}
		return p
	}
}

// WithLowPriorityMarker replaces the predicate that demotes links whose
// first path segment names a listing page (the default matches "section"):
// such links always lose host-group selection to deeper, direct links.
func WithLowPriorityMarker(match func(pathSegment string) bool) ConfFunc {
	return func(p *Pipeline) *Pipeline {
		if match != nil {
			p.lowPriority = match
		}
		return p
	}
}

// WithBlockedPrefixes configures the extractor to drop candidate links
// matching any of the provided URL prefixes.
func WithBlockedPrefixes(prefixes []string) ConfFunc {
	return func(p *Pipeline) *Pipeline {
		p.blockedPrefixes = append(p.blockedPrefixes, prefixes...)
		return p
	}
}

// WithExtraHeaders configures the pipeline to add extra headers to each
// outgoing http request.
func WithExtraHeaders(hdr map[string]string) ConfFunc {
	headers := make([]string, 0, len(hdr)*2)
	for k, v := range hdr {
		headers = append(headers, k, v)
	}
	return func(p *Pipeline) *Pipeline {
		p.headers = headers
		return p
	}
}

// WithTimeout bounds every per-link network exchange. Values above the
// 300 second ceiling are clamped.
func WithTimeout(d time.Duration) ConfFunc {
	return func(p *Pipeline) *Pipeline {
		if d > 0 {
			if d > 300*time.Second {
				d = 300 * time.Second
			}
			p.timeout = d
		}
		return p
	}
}

// WithMaxBodySize overrides the byte cap applied while streaming HTML
// response bodies.
func WithMaxBodySize(n int64) ConfFunc {
	return func(p *Pipeline) *Pipeline {
		if n > 0 {
			p.maxBodySize = n
		}
		return p
	}
}

// WithMaxRedirects caps how many redirect hops classification follows for a
// single link.
func WithMaxRedirects(n int) ConfFunc {
	return func(p *Pipeline) *Pipeline {
		if n >= 0 {
			p.maxRedirects = n
		}
		return p
	}
}

// WithMemcache configures the pipeline to cache produced previews in
// memcached, so repeated links skip refetching.
func WithMemcache(client *memcache.Client) ConfFunc {
	return func(p *Pipeline) *Pipeline {
		if client != nil {
			p.mcache = client
		}
		return p
	}
}

// WithYouTubeKey supplies a YouTube Data API v3 key. Without a key the
// YouTube handler falls back to the public oEmbed endpoint, which carries no
// video duration.
func WithYouTubeKey(key string) ConfFunc {
	return func(p *Pipeline) *Pipeline {
		p.youtubeKey = key
		return p
	}
}
