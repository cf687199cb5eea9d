// Package source acquires raw package-index text for the parser.
//
// A [Source] yields the decompressed text of one Packages index. Two
// implementations exist: [Local] reads a file whole, [HTTP] downloads
// the index from a repository mirror with retry and caching and
// decompresses it based on the URL suffix. The core parser only ever
// sees the resulting string; all I/O stays in this package.
package source

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aptgraph/aptgraph/pkg/cache"
	"github.com/aptgraph/aptgraph/pkg/errors"
	"github.com/aptgraph/aptgraph/pkg/httputil"
)

// DefaultCacheTTL is how long a downloaded index stays fresh. Mirrors
// regenerate their indices a few times a day, so a short TTL keeps
// results current without refetching on every run.
const DefaultCacheTTL = 6 * time.Hour

const httpTimeout = 30 * time.Second

// Source yields the decompressed text of a package index.
type Source interface {
	// Fetch returns the full index text. The second return reports
	// whether the text was served from cache rather than fetched
	// fresh. Implementations should respect context cancellation on
	// any network access.
	Fetch(ctx context.Context) (string, bool, error)

	// Location describes where the index comes from, for logging.
	Location() string
}

// Local reads a package index from a file on disk.
type Local struct {
	Path string
}

// NewLocal creates a Source reading the index at path.
func NewLocal(path string) *Local {
	return &Local{Path: path}
}

// Location returns the file path.
func (l *Local) Location() string { return l.Path }

// Fetch reads the file whole. A missing file maps to NOT_FOUND rather
// than a bare os error so the CLI can report it uniformly. Local reads
// never count as cached.
func (l *Local) Fetch(ctx context.Context) (string, bool, error) {
	data, err := os.ReadFile(l.Path)
	if os.IsNotExist(err) {
		return "", false, errors.New(errors.ErrCodeNotFound, "index file not found: %s", l.Path)
	}
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeInternal, err, "read index %s", l.Path)
	}
	return string(data), false, nil
}

// HTTP downloads a package index from a repository mirror.
//
// Downloads go through the configured cache keyed by URL, retry
// transient failures with exponential backoff, and are decompressed
// according to the URL suffix (.gz and .bz2; anything else compressed
// is rejected as UNSUPPORTED).
type HTTP struct {
	URL    string
	client *http.Client
	cache  cache.Cache
	ttl    time.Duration
}

// NewHTTP creates a Source downloading the index at url. The cache may
// be nil to disable caching; ttl 0 falls back to DefaultCacheTTL.
func NewHTTP(url string, c cache.Cache, ttl time.Duration) *HTTP {
	if c == nil {
		c = cache.NewNullCache()
	}
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	return &HTTP{
		URL:    url,
		client: &http.Client{Timeout: httpTimeout},
		cache:  c,
		ttl:    ttl,
	}
}

// Location returns the index URL.
func (h *HTTP) Location() string { return h.URL }

// Fetch returns the decompressed index text, from cache when fresh.
func (h *HTTP) Fetch(ctx context.Context) (string, bool, error) {
	key := cache.IndexKey(h.URL)
	if data, ok, _ := h.cache.Get(ctx, key); ok {
		return string(data), true, nil
	}

	var body []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		body, err = h.download(ctx)
		return err
	})
	if err != nil {
		return "", false, err
	}

	text, err := decompress(h.URL, body)
	if err != nil {
		return "", false, err
	}

	_ = h.cache.Set(ctx, key, []byte(text), h.ttl)
	return text, false, nil
}

func (h *HTTP) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request for %s", h.URL)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", h.URL)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fallthrough to read
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeNotFound, "index not found: %s", h.URL)
	case resp.StatusCode >= 500:
		return nil, &httputil.RetryableError{Err: errors.New(errors.ErrCodeNetwork, "fetch %s: status %d", h.URL, resp.StatusCode)}
	default:
		return nil, errors.New(errors.ErrCodeNetwork, "fetch %s: status %d", h.URL, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// decompress picks a decoder from the URL suffix. Plain indices pass
// through unchanged.
func decompress(url string, body []byte) (string, error) {
	switch {
	case strings.HasSuffix(url, ".gz"):
		r, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeParse, err, "gunzip %s", url)
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeParse, err, "gunzip %s", url)
		}
		return string(data), nil

	case strings.HasSuffix(url, ".bz2"):
		data, err := io.ReadAll(bzip2.NewReader(bytes.NewReader(body)))
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeParse, err, "bunzip2 %s", url)
		}
		return string(data), nil

	case strings.HasSuffix(url, ".xz"), strings.HasSuffix(url, ".lzma"), strings.HasSuffix(url, ".zst"):
		return "", errors.New(errors.ErrCodeUnsupported, "unsupported index compression: %s (use a .gz, .bz2 or plain index)", url)

	default:
		return string(body), nil
	}
}
