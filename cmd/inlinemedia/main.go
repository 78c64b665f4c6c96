// Command inlinemedia runs the preview pipeline behind an HTTP endpoint so
// chat hosts without an embedded Go runtime can enrich message lines over
// the wire. The endpoint accepts GET and POST requests with `content` as
// the main argument and returns the JSON-encoded previews produced for it.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	inlinemedia "github.com/SuperManifolds/Textual-Inline-Media"
	"github.com/artyom/autoflags"
	"github.com/artyom/httpflags"
	"github.com/artyom/useragent"
	"github.com/bradfitz/gomemcache/memcache"
)

func main() {
	args := struct {
		Listen      string        `flag:"listen,address to listen on"`
		Cache       string        `flag:"cache,address of memcached, disabled if empty"`
		Timeout     time.Duration `flag:"timeout,timeout for remote i/o"`
		UserAgent   string        `flag:"useragent,User-Agent to send with outgoing requests"`
		YouTubeKey  string        `flag:"youtubekey,YouTube Data API v3 key (oEmbed fallback if empty)"`
		MaxPreviews int           `flag:"maxpreviews,maximum number of previews per message"`
		NoAnimated  bool          `flag:"noanimated,disable animated image transcoding"`
		NoDupes     bool          `flag:"nodupes,suppress previews for recently displayed links"`
	}{
		Listen:      "localhost:8080",
		Timeout:     30 * time.Second,
		UserAgent:   "TextualInlineMedia/1.0 (+https://github.com/SuperManifolds/Textual-Inline-Media)",
		MaxPreviews: inlinemedia.DefaultMaxPreviews,
	}
	autoflags.Define(&args)
	flag.Parse()

	httpClient := &http.Client{
		Timeout: args.Timeout,
		Transport: useragent.Set(&http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}, args.UserAgent),
	}
	configs := []inlinemedia.ConfFunc{
		inlinemedia.WithHTTPClient(httpClient),
		inlinemedia.WithLogger(log.New(os.Stderr, "", log.LstdFlags)),
		inlinemedia.WithTimeout(args.Timeout),
		inlinemedia.WithMaxPreviews(args.MaxPreviews),
		inlinemedia.WithAnimatedImages(!args.NoAnimated),
		inlinemedia.WithDuplicateDisplay(!args.NoDupes),
		inlinemedia.WithExtraHeaders(map[string]string{
			"Accept-Language": "en;q=1, *;q=0.5",
		}),
	}
	if args.YouTubeKey != "" {
		configs = append(configs, inlinemedia.WithYouTubeKey(args.YouTubeKey))
	}
	if args.Cache != "" {
		log.Print("enable cache at ", args.Cache)
		configs = append(configs, inlinemedia.WithMemcache(memcache.New(args.Cache)))
	}

	srv := &http.Server{
		Addr:         args.Listen,
		Handler:      &previewServer{configs: configs},
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

type previewServer struct {
	configs []inlinemedia.ConfFunc
}

func (s *previewServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodPost:
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	params := struct {
		Content  string `flag:"content"`
		Line     string `flag:"line"`
		Markdown bool   `flag:"markdown"`
	}{}
	if err := httpflags.Parse(&params, r); err != nil || params.Content == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if params.Line == "" {
		params.Line = "1"
	}

	// Pipeline state is per-request: each caller keeps its own view of
	// which links were already shown.
	collector := &collectRenderer{}
	p := inlinemedia.New(append(s.configs, inlinemedia.WithRenderer(collector))...)
	p.OnNewMessage(r.Context(), inlinemedia.Message{
		LineID:   params.Line,
		Type:     inlinemedia.LinePrivateMessage,
		Text:     params.Content,
		Markdown: params.Markdown,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(collector.previews())
}

// collectRenderer implements inlinemedia.Renderer by accumulating rendered
// previews for the duration of one request.
type collectRenderer struct {
	mu  sync.Mutex
	out []renderedPreview
}

type renderedPreview struct {
	Line        string               `json:"line"`
	OriginalURL string               `json:"original_url"`
	Preview     *inlinemedia.Preview `json:"preview"`
}

func (c *collectRenderer) InsertPreview(lineID string, preview *inlinemedia.Preview, originalURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = append(c.out, renderedPreview{Line: lineID, OriginalURL: originalURL, Preview: preview})
}

func (c *collectRenderer) previews() []renderedPreview {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.out == nil {
		return []renderedPreview{}
	}
	return c.out
}
