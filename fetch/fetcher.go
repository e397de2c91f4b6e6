package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"
	"golang.org/x/time/rate"

	"github.com/use-agent/quizpilot/config"
	"github.com/use-agent/quizpilot/models"
)

// maxBody caps how much of any response body is read.
const maxBody = 10 << 20

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to
// http/1.1 only. Computed once at init time and reused for every
// connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// Replace h2 with http/1.1 only in the ALPN extension so the server
	// never negotiates HTTP/2 (which Go's http.Transport cannot handle
	// over a utls connection).
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// retryableStatuses are the response codes worth retrying on idempotent
// requests.
var retryableStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Fetcher retrieves URLs with a static-first strategy: a HEAD probe
// classifies the payload, non-webpage kinds are downloaded directly, and
// HTML pages go through the static fetch plus dynamic-render escalation.
// All Fetch failures surface inside the result, never as a Go error.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	browser *Browser
	kinds   *kindCache
	cfg     config.FetchConfig
}

// NewFetcher builds a Fetcher around an optional browser. A nil browser
// means dynamic pages fall back to whatever the static fetch returned.
func NewFetcher(cfg config.FetchConfig, browser *Browser) *Fetcher {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("fetch: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}

	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		browser: browser,
		kinds:   newKindCache(cfg.KindCacheEntries),
		cfg:     cfg,
	}
}

// do issues one rate-limited request with retries. Only HEAD and GET are
// ever retried; backoff doubles per attempt. The caller owns the response
// body.
func (f *Fetcher) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	var lastErr error
	backoff := f.cfg.RetryBackoff

	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("fetch: build request: %w", err)
		}

		// Simulate browser-like headers.
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept-Encoding", "identity") // no compression for simplicity

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			slog.Debug("request failed", "method", method, "url", rawURL, "attempt", attempt, "error", err)
			continue
		}

		if retryableStatuses[resp.StatusCode] && attempt < f.cfg.MaxRetries {
			resp.Body.Close()
			lastErr = fmt.Errorf("fetch: retryable status %d", resp.StatusCode)
			slog.Debug("retryable status", "method", method, "url", rawURL, "status", resp.StatusCode, "attempt", attempt)
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("fetch: %s %s failed after %d attempts: %w", method, rawURL, f.cfg.MaxRetries+1, lastErr)
}

// Fetch retrieves rawURL and returns a result describing what came back.
// Webpages follow the static-then-dynamic chain; everything else is
// downloaded once as a direct payload. The returned result is always
// non-nil and any failure is described in result.Error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, forceDynamic bool) *models.FetchResult {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return &models.FetchResult{
			Success:   false,
			Error:     fmt.Sprintf("invalid URL %q: only http and https are supported", rawURL),
			ErrorCode: models.ErrCodeInvalidURL,
		}
	}

	kind := f.resolveKind(ctx, rawURL)
	if kind != models.KindWebpage {
		return f.fetchDirect(ctx, rawURL, kind)
	}

	if forceDynamic {
		return f.fetchDynamic(ctx, rawURL, nil)
	}

	static, err := f.fetchStatic(ctx, rawURL)
	if err != nil {
		slog.Info("static fetch failed, escalating to browser", "url", rawURL, "error", err)
		return f.fetchDynamic(ctx, rawURL, nil)
	}

	if IsLikelyDynamic(static.HTML) {
		slog.Info("page looks dynamic, escalating to browser", "url", rawURL)
		return f.fetchDynamic(ctx, rawURL, static)
	}

	return static
}

// fetchStatic does a plain GET and returns the HTML. Non-2xx statuses and
// non-HTML bodies are errors here so the caller can escalate to a browser.
func (f *Fetcher) fetchStatic(ctx context.Context, rawURL string) (*models.FetchResult, error) {
	resp, err := f.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}

	ct := resp.Header.Get("Content-Type")
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch: error status %d", resp.StatusCode)
	}
	if ct != "" && !isHTMLContentType(ct) {
		return nil, fmt.Errorf("fetch: non-html content-type %q", ct)
	}

	return &models.FetchResult{
		Success:    true,
		Kind:       models.KindWebpage,
		Method:     models.MethodStatic,
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
		HTML:       string(body),
	}, nil
}

// fetchDynamic renders the page in a browser. When the render fails and a
// static result exists, that result is returned with its method relabelled
// so the caller knows a degraded path was taken.
func (f *Fetcher) fetchDynamic(ctx context.Context, rawURL string, static *models.FetchResult) *models.FetchResult {
	if f.browser == nil {
		if static != nil {
			static.Method = models.MethodStaticFallback
			return static
		}
		return &models.FetchResult{
			Success: false,
			Error:   "page requires browser rendering but no browser is available",
		}
	}

	html, status, err := f.browser.Render(ctx, rawURL)
	if err != nil {
		slog.Warn("browser render failed", "url", rawURL, "error", err)
		if static != nil {
			static.Method = models.MethodStaticFallback
			return static
		}
		return &models.FetchResult{
			Success: false,
			Error:   fmt.Sprintf("browser render failed: %v", err),
		}
	}

	return &models.FetchResult{
		Success:    true,
		Kind:       models.KindWebpage,
		Method:     models.MethodDynamic,
		StatusCode: status,
		FinalURL:   rawURL,
		HTML:       html,
	}
}

// isHTMLContentType returns true if the content-type header looks like HTML.
func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}
