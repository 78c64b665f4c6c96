package inlinemedia

import (
	"context"
	"net/http"
	"net/url"
)

// Handler is a single enrichment strategy bound to a specific content
// source. Match must be a pure function of the URL; Fetch performs the
// strategy's network calls and maps the response into a Preview. A nil
// error with a non-empty Preview means the strategy claimed the link.
type Handler interface {
	Name() string
	Match(u *url.URL) bool
	Fetch(ctx context.Context, client *http.Client, u *url.URL) (*Preview, error)
}

// defaultHandlers builds the static ordered registry. Order is the
// tie-break when multiple predicates could match: the first enabled match
// wins, and exactly one handler runs per URL.
func defaultHandlers(p *Pipeline) []Handler {
	return []Handler{
		&imageHandler{animated: p.displayAnimated, fetchSize: p.fetchImageSize},
		&youtubeHandler{apiKey: p.youtubeKey},
		&vimeoHandler{},
		&twitterHandler{},
		&wikipediaHandler{},
		&streamableHandler{},
		&imgurHandler{},
		&gfycatHandler{},
		&imdbHandler{},
		&xkcdHandler{},
		&quoteboardHandler{},
	}
}
