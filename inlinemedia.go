// Package inlinemedia implements the link preview pipeline used to enrich
// chat messages with inline media.
//
// Given the text of a freshly posted message line, the pipeline extracts
// hyperlinks, picks at most one representative link per host, matches each
// surviving link against an ordered list of content handlers (YouTube, Vimeo,
// Twitter, Wikipedia and friends) and falls back to a generic fetch that
// sniffs the response content type: HTML pages are scraped for title,
// description and preview image, images are inlined directly, animated GIFs
// are probed for an mp4 transcode, and everything else gets a header-only
// file information card.
//
// The pipeline never touches presentation. Produced previews are handed to
// a Renderer implementation supplied by the host application, one call per
// successful preview. Every failure mode degrades to "no preview for this
// link"; errors are only visible through the optional Logger.
package inlinemedia

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/artyom/useragent"
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/golang/snappy"
	"golang.org/x/sync/errgroup"
)

const defaultMaxBodySize = 4 << 20 // response bodies are read up to 4 MiB

// DefaultMaxPreviews is the maximum number of previews generated for a single
// message if not configured by WithMaxPreviews.
const DefaultMaxPreviews = 10

// DefaultMaxRedirects bounds the length of a redirect chain followed while
// classifying a single link.
const DefaultMaxRedirects = 5

const defaultUserAgent = "TextualInlineMedia/1.0 (+https://github.com/SuperManifolds/Textual-Inline-Media)"

// LineType describes the kind of message line a preview may be attached to.
type LineType int

// Line types as reported by the host application. Only action, private
// message and notice lines are eligible for previews.
const (
	LineOther LineType = iota
	LineAction
	LinePrivateMessage
	LineNotice
)

// Message is a single posted chat line as delivered by the host application.
type Message struct {
	LineID     string   // unique identifier of the rendered line
	Type       LineType // kind of line this message was posted as
	Sender     string   // handle of the user that posted the message
	Text       string   // raw message text
	Markdown   bool     // parse Text as markdown, skipping code blocks
	BulkReplay bool     // line posted as part of history/bulk playback
}

// Renderer is the boundary to the host application's view: it receives one
// call per successfully produced preview. The pipeline does not enforce
// at-most-once delivery per line; that is the renderer's concern.
type Renderer interface {
	InsertPreview(lineID string, preview *Preview, originalURL string)
}

// SenderPolicy reports whether previews are suppressed for messages posted
// by the given sender handle.
type SenderPolicy func(senderHandle string) bool

// Logger describes the set of methods used by the pipeline for logging;
// standard lib *log.Logger implements this interface.
type Logger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// Pipeline owns all state needed to process message lines: configuration
// snapshot, handler registry and the recently displayed link cache. Create
// it with New; methods are safe for concurrent use.
type Pipeline struct {
	client     *http.Client
	noRedirect *http.Client // copy of client that reports redirects instead of following them
	log        Logger
	renderer   Renderer
	scanner    ScanFunc
	policy     SenderPolicy

	handlers []Handler
	disabled map[string]bool

	mcache *memcache.Client

	displayed *displayedCache

	maxPreviews     int
	displayDupes    bool
	displayAnimated bool
	fetchImageSize  bool
	maxBodySize     int64
	maxRedirects    int
	timeout         time.Duration
	lowPriority     func(pathSegment string) bool
	blockedPrefixes []string
	headers         []string // key-value pairs of extra headers, length must be even
	youtubeKey      string
}

// ConfFunc is used to configure a new pipeline; such functions should be
// used as arguments to New.
type ConfFunc func(*Pipeline) *Pipeline

// New returns a new initialized preview pipeline. If no configuration
// functions are provided, sane defaults are used; a Renderer should normally
// be attached with WithRenderer, otherwise produced previews are discarded.
func New(conf ...ConfFunc) *Pipeline {
	p := &Pipeline{
		maxPreviews:     DefaultMaxPreviews,
		displayDupes:    true,
		displayAnimated: true,
		maxBodySize:     defaultMaxBodySize,
		maxRedirects:    DefaultMaxRedirects,
		timeout:         30 * time.Second,
		displayed:       newDisplayedCache(displayedCacheSize),
		disabled:        make(map[string]bool),
	}
	for _, f := range conf {
		p = f(p)
	}
	if p.client == nil {
		p.client = &http.Client{
			Transport: useragent.Set(http.DefaultTransport, defaultUserAgent),
		}
	}
	if p.log == nil {
		p.log = log.New(ioutil.Discard, "", 0)
	}
	if p.renderer == nil {
		p.renderer = discardRenderer{}
	}
	if p.scanner == nil {
		p.scanner = defaultScanner()
	}
	if len(p.headers)%2 != 0 {
		p.headers = nil
	}
	if p.lowPriority == nil {
		p.lowPriority = func(segment string) bool { return segment == "section" }
	}
	if p.handlers == nil {
		p.handlers = defaultHandlers(p)
	}
	nrc := *p.client
	nrc.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	p.noRedirect = &nrc
	return p
}

// OnNewMessage is the inbound callback invoked by the host application for
// every line added to the conversation view. Lines posted during bulk or
// history playback and line types other than action, private message and
// notice are ignored. Blocks until all previews for the line are produced
// or failed; independent links are fetched concurrently.
func (p *Pipeline) OnNewMessage(ctx context.Context, msg Message) {
	if msg.BulkReplay {
		return
	}
	switch msg.Type {
	case LineAction, LinePrivateMessage, LineNotice:
	default:
		return
	}
	if p.policy != nil && p.policy(msg.Sender) {
		p.log.Printf("previews suppressed for sender %q", msg.Sender)
		return
	}
	candidates := p.extract(msg.Text, msg.Markdown)
	selected := p.prioritize(candidates)

	g, ctx := errgroup.WithContext(ctx)
	for _, c := range selected {
		c := c
		g.Go(func() error {
			p.processLink(ctx, msg.LineID, c)
			return nil
		})
	}
	g.Wait()
}

// processLink runs the classification cascade for a single selected link and
// hands the produced preview to the renderer. All failures are silent.
func (p *Pipeline) processLink(ctx context.Context, lineID string, c candidate) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if res := p.cachedPreview(c.url.String()); res != nil {
		p.log.Printf("cache hit for %q", c.url)
		p.renderer.InsertPreview(lineID, res, c.raw)
		return
	}
	res, err := p.classify(ctx, c.url, nil, 0)
	if err != nil {
		p.log.Printf("no preview for %q: %v", c.url, err)
		return
	}
	if res == nil || res.Empty() {
		return
	}
	p.storePreview(c.url.String(), res)
	p.renderer.InsertPreview(lineID, res, c.raw)
}

// classify routes a link to the first enabled matching handler, falling back
// to the generic fetch pipeline. It is re-entered on redirects with the new
// location and the carried-forward pre-redirect URL.
func (p *Pipeline) classify(ctx context.Context, target, original *url.URL, hops int) (*Preview, error) {
	if h := p.resolve(target); h != nil {
		p.log.Printf("handler %s claims %q", h.Name(), target)
		return h.Fetch(ctx, p.client, target)
	}
	return p.fetchGeneric(ctx, target, original, hops)
}

// resolve returns the first enabled handler whose predicate matches the URL,
// or nil if the link should go through the generic fetch pipeline.
func (p *Pipeline) resolve(u *url.URL) Handler {
	for _, h := range p.handlers {
		if p.disabled[h.Name()] {
			continue
		}
		if h.Match(u) {
			return h
		}
	}
	return nil
}

func (p *Pipeline) httpGet(ctx context.Context, client *http.Client, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(p.headers); i += 2 {
		req.Header.Set(p.headers[i], p.headers[i+1])
	}
	return client.Do(req)
}

// cachedPreview looks up a previously produced preview in memcached, if
// configured.
func (p *Pipeline) cachedPreview(link string) *Preview {
	if p.mcache == nil {
		return nil
	}
	it, err := p.mcache.Get(mcKey(link))
	if err != nil {
		return nil
	}
	b, err := snappy.Decode(nil, it.Value)
	if err != nil {
		return nil
	}
	var cached Preview
	if err := json.Unmarshal(b, &cached); err != nil {
		return nil
	}
	return &cached
}

func (p *Pipeline) storePreview(link string, res *Preview) {
	if p.mcache == nil || res.Empty() {
		return
	}
	b, err := json.Marshal(res)
	if err != nil {
		return
	}
	p.log.Printf("cache update for %q", link)
	p.mcache.Set(&memcache.Item{Key: mcKey(link), Value: snappy.Encode(nil, b)})
}

// mcKey returns hex representation of sha1 sum of the string provided. Used
// to get safe keys to use with memcached.
func mcKey(s string) string {
	return fmt.Sprintf("%x", sha1.Sum([]byte(s)))
}

type discardRenderer struct{}

func (discardRenderer) InsertPreview(string, *Preview, string) {}
