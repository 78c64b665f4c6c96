package inlinemedia

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// Extensions treated as directly displayable images; links carrying one
// skip the registry and the generic pipeline entirely.
var imageFileExtensions = map[string]bool{
	"bmp": true, "gif": true, "jpg": true, "jpeg": true,
	"jp2": true, "j2k": true, "jpf": true, "jpx": true,
	"jpm": true, "mj2": true, "png": true, "svg": true,
	"tiff": true, "tif": true,
}

// animated image extensions probed for a video transcode first
var animatedExtensions = map[string]bool{"gif": true, "gifv": true}

const gfycatTranscodeURL = "https://upload.gfycat.com/transcode"

// imageHandler previews links whose path carries a known image extension.
// Animated extensions are probed through the transcode service when
// animated display is enabled, falling back to a plain inline image.
type imageHandler struct {
	animated  bool
	fetchSize bool
	transcode string // transcode endpoint override for tests
}

func (*imageHandler) Name() string { return "Image" }

func (*imageHandler) Match(u *url.URL) bool {
	return imageFileExtensions[urlExtension(u)]
}

func (h *imageHandler) Fetch(ctx context.Context, client *http.Client, u *url.URL) (*Preview, error) {
	if h.animated && animatedExtensions[urlExtension(u)] {
		if res, err := transcodeAnimated(ctx, client, h.transcode, u); err == nil {
			return res, nil
		}
	}
	res := &Preview{Kind: KindImage, URL: u.String(), Image: u.String()}
	if h.fetchSize {
		if w, ht, err := imageDimensions(ctx, client, u.String()); err == nil {
			res.ImageWidth, res.ImageHeight = w, ht
		}
	}
	return res, nil
}

// imagePreview is the generic-pipeline variant of the direct image
// strategy: source is the URL the image bytes live at, original is the
// pre-redirect link used for correlation in the rendered payload.
func (p *Pipeline) imagePreview(ctx context.Context, source, original *url.URL) *Preview {
	res := &Preview{Kind: KindImage, URL: original.String(), Image: source.String()}
	if p.fetchImageSize {
		if w, h, err := imageDimensions(ctx, p.client, source.String()); err == nil {
			res.ImageWidth, res.ImageHeight = w, h
		} else {
			p.log.Printf("dimensions detect for image %q: %v", source, err)
		}
	}
	return res
}

// transcodeAnimated asks the gfycat transcode service for an mp4 rendition
// of an animated image. A response without an mp4Url means the resource is
// most likely not animated, reported as an error so callers can fall back.
func transcodeAnimated(ctx context.Context, client *http.Client, endpoint string, u *url.URL) (*Preview, error) {
	if endpoint == "" {
		endpoint = gfycatTranscodeURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?fetchUrl="+url.QueryEscape(u.String()), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errors.New("bad status: " + resp.Status)
	}
	var data struct {
		Mp4URL string `json:"mp4Url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	if data.Mp4URL == "" {
		return nil, errors.New("no transcode available")
	}
	return &Preview{Kind: KindVideo, URL: u.String(), Video: data.Mp4URL, Loop: true}, nil
}

// imageDimensions retrieves enough of an image to get its dimensions.
func imageDimensions(ctx context.Context, client *http.Client, imageURL string) (width, height int, err error) {
	switch {
	case strings.HasPrefix(imageURL, "http"):
	case strings.HasPrefix(imageURL, "//"):
		// most probably scheme-independent url, use https as fallback
		imageURL = "https:" + imageURL
	default:
		return 0, 0, errors.New("unsupported image url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return 0, 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return 0, 0, errors.New(resp.Status)
	}
	switch ct := strings.ToLower(resp.Header.Get("Content-Type")); {
	case strings.HasPrefix(ct, "image/jpeg"),
		strings.HasPrefix(ct, "image/png"),
		strings.HasPrefix(ct, "image/gif"):
	default:
		return 0, 0, errors.New("unsupported content-type " + ct)
	}
	cfg, _, err := image.DecodeConfig(resp.Body)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// urlExtension returns the lowercased path extension without the dot.
func urlExtension(u *url.URL) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
}
