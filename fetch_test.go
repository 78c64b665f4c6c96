package inlinemedia

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchWebpage(t *testing.T) {
	var gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, `<html><head><title>Article</title>
		<meta name="description" content="short summary"></head><body></body></html>`)
	}))
	defer srv.Close()

	rec := &recordRenderer{}
	p := New(
		WithHTTPClient(srv.Client()),
		WithRenderer(rec),
		WithExtraHeaders(map[string]string{"Accept-Language": "en"}),
	)
	p.OnNewMessage(context.Background(), Message{
		LineID: "1", Type: LinePrivateMessage, Text: "read " + srv.URL + "/article",
	})
	if rec.count() != 1 {
		t.Fatalf("invalid preview count: %d", rec.count())
	}
	got := rec.previews[0]
	if got.Kind != KindWebpage {
		t.Errorf("unexpected kind: %q", got.Kind)
	}
	if want := "Article"; got.Title != want {
		t.Errorf("unexpected Title, want %q, got %q", want, got.Title)
	}
	if want := "short summary"; got.Description != want {
		t.Errorf("unexpected Description, want %q, got %q", want, got.Description)
	}
	if gotLang != "en" {
		t.Errorf("extra header not sent, got %q", gotLang)
	}
}

func TestFetchImageKeepsOriginalURL(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/img", http.StatusFound)
	})
	mux.HandleFunc("/img", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("not really a png"))
	})

	p := New(WithHTTPClient(srv.Client()))
	got, err := p.classify(context.Background(), mustParseURL(t, srv.URL+"/start"), nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != KindImage {
		t.Errorf("unexpected kind: %q", got.Kind)
	}
	if want := srv.URL + "/start"; got.URL != want {
		t.Errorf("unexpected URL, want %q, got %q", want, got.URL)
	}
	if want := srv.URL + "/img"; got.Image != want {
		t.Errorf("unexpected Image, want %q, got %q", want, got.Image)
	}
}

func TestFetchRedirectLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer srv.Close()

	p := New(WithHTTPClient(srv.Client()), WithMaxRedirects(2))
	_, err := p.classify(context.Background(), mustParseURL(t, srv.URL+"/loop"), nil, 0)
	if err != errTooManyRedirects {
		t.Errorf("expected errTooManyRedirects, got %v", err)
	}
}

func TestFetchFilePreview(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Length", "1024")
		w.Header().Set("Last-Modified", "Wed, 21 Oct 2015 07:28:00 GMT")
		w.Write(make([]byte, 1024))
	}))
	defer srv.Close()

	p := New(WithHTTPClient(srv.Client()))
	got, err := p.classify(context.Background(), mustParseURL(t, srv.URL+"/files/archive.zip"), nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != KindFile {
		t.Errorf("unexpected kind: %q", got.Kind)
	}
	if want := "archive.zip"; got.FileName != want {
		t.Errorf("unexpected FileName, want %q, got %q", want, got.FileName)
	}
	if want := "application/zip"; got.FileKind != want {
		t.Errorf("unexpected FileKind, want %q, got %q", want, got.FileKind)
	}
	if want := "1.0 KiB"; got.FileSize != want {
		t.Errorf("unexpected FileSize, want %q, got %q", want, got.FileSize)
	}
	if want := "Wed, 21 Oct 2015 07:28:00 UTC"; got.FileModified != want {
		t.Errorf("unexpected FileModified, want %q, got %q", want, got.FileModified)
	}
}

func TestFetchFilePreviewBareHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	p := New(WithHTTPClient(srv.Client()))
	target := mustParseURL(t, srv.URL+"/")
	got, err := p.classify(context.Background(), target, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.FileName != target.Host {
		t.Errorf("unexpected FileName, want %q, got %q", target.Host, got.FileName)
	}
}

func TestFetchBodyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, "<html><head><title>kept</title></head><body><p>")
		io.WriteString(w, strings.Repeat("x", 100<<10))
	}))
	defer srv.Close()

	p := New(WithHTTPClient(srv.Client()), WithMaxBodySize(512))
	got, err := p.classify(context.Background(), mustParseURL(t, srv.URL+"/big"), nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if want := "kept"; got.Title != want {
		t.Errorf("unexpected Title, want %q, got %q", want, got.Title)
	}
}

func TestFetchStaticGifFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/gif")
		w.Write([]byte("GIF89a"))
	}))
	defer srv.Close()

	p := New(WithHTTPClient(srv.Client()), WithAnimatedImages(false))
	got, err := p.classify(context.Background(), mustParseURL(t, srv.URL+"/anim"), nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != KindImage {
		t.Errorf("unexpected kind: %q", got.Kind)
	}
	if want := srv.URL + "/anim"; got.Image != want {
		t.Errorf("unexpected Image, want %q, got %q", want, got.Image)
	}
}

func TestFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	p := New(WithHTTPClient(srv.Client()))
	if _, err := p.classify(context.Background(), mustParseURL(t, srv.URL+"/missing"), nil, 0); err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestReadCapped(t *testing.T) {
	got, err := readCapped(strings.NewReader("0123456789"), 4)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "0123" {
		t.Errorf("unexpected capped read: %q", got)
	}
	got, err = readCapped(strings.NewReader("ab"), 4)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "ab" {
		t.Errorf("unexpected short read: %q", got)
	}
}
