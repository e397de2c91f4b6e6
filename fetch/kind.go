package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/use-agent/quizpilot/models"
)

// kindCache is a bounded probe-result cache owned by a Fetcher instance.
// At capacity one arbitrary entry is evicted (map iteration is random in
// Go), the same discipline the scrape cache uses. No TTL: content kinds
// are stable for the lifetime of a run.
type kindCache struct {
	mu         sync.Mutex
	store      map[string]models.ContentKind
	maxEntries int
}

func newKindCache(maxEntries int) *kindCache {
	if maxEntries <= 0 {
		maxEntries = 512
	}
	return &kindCache{
		store:      make(map[string]models.ContentKind),
		maxEntries: maxEntries,
	}
}

func (c *kindCache) get(key string) (models.ContentKind, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k, ok := c.store[key]
	return k, ok
}

func (c *kindCache) set(key string, kind models.ContentKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}
	c.store[key] = kind
}

// kindFromContentType maps a Content-Type header to a ContentKind.
// Unknown types default to KindWebpage.
func kindFromContentType(ct string) models.ContentKind {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}

	switch {
	case strings.Contains(ct, "text/html"), strings.Contains(ct, "application/xhtml+xml"):
		return models.KindWebpage
	case strings.Contains(ct, "application/json"), strings.HasSuffix(ct, "+json"):
		return models.KindJSON
	case strings.Contains(ct, "text/csv"):
		return models.KindCSV
	case strings.Contains(ct, "application/pdf"):
		return models.KindPDF
	case strings.HasPrefix(ct, "image/"):
		return models.KindImage
	case strings.HasPrefix(ct, "audio/"):
		return models.KindAudio
	case strings.HasPrefix(ct, "video/"):
		return models.KindVideo
	case strings.Contains(ct, "text/xml"), strings.Contains(ct, "application/xml"), strings.HasSuffix(ct, "+xml"):
		return models.KindXML
	case strings.HasPrefix(ct, "text/"):
		return models.KindText
	}
	return models.KindWebpage
}

var extKinds = map[string]models.ContentKind{
	".json": models.KindJSON,
	".csv":  models.KindCSV,
	".pdf":  models.KindPDF,
	".png":  models.KindImage,
	".jpg":  models.KindImage,
	".jpeg": models.KindImage,
	".gif":  models.KindImage,
	".webp": models.KindImage,
	".svg":  models.KindImage,
	".mp3":  models.KindAudio,
	".wav":  models.KindAudio,
	".ogg":  models.KindAudio,
	".m4a":  models.KindAudio,
	".opus": models.KindAudio,
	".mp4":  models.KindVideo,
	".webm": models.KindVideo,
	".mov":  models.KindVideo,
	".txt":  models.KindText,
	".md":   models.KindText,
	".xml":  models.KindXML,
	".rss":  models.KindXML,
}

// kindFromPath guesses a ContentKind from the URL path extension.
func kindFromPath(rawURL string) models.ContentKind {
	u, err := url.Parse(rawURL)
	if err != nil {
		return models.KindWebpage
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if k, ok := extKinds[ext]; ok {
		return k
	}
	return models.KindWebpage
}

// resolveKind classifies the URL's payload: cached HEAD probe first,
// extension-based guessing when the probe fails.
func (f *Fetcher) resolveKind(ctx context.Context, rawURL string) models.ContentKind {
	if k, ok := f.kinds.get(rawURL); ok {
		return k
	}

	kind := f.probeKind(ctx, rawURL)
	f.kinds.set(rawURL, kind)
	return kind
}

func (f *Fetcher) probeKind(ctx context.Context, rawURL string) models.ContentKind {
	probeCtx, cancel := context.WithTimeout(ctx, f.cfg.ProbeTimeout)
	defer cancel()

	resp, err := f.do(probeCtx, http.MethodHead, rawURL)
	if err != nil {
		slog.Debug("HEAD probe failed, guessing kind from path", "url", rawURL, "error", err)
		return kindFromPath(rawURL)
	}
	defer resp.Body.Close()

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		return kindFromPath(rawURL)
	}
	return kindFromContentType(ct)
}
