package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"

	adkerr "github.com/adk-dev/adk/internal/errors"
)

const (
	// DefaultBaseURL serves zip archives of GitHub repositories.
	DefaultBaseURL = "https://codeload.github.com"

	// MaxArchiveBytes bounds the size of a downloaded archive (256 MiB).
	MaxArchiveBytes = 256 << 20

	defaultTimeout   = 5 * time.Minute
	defaultUserAgent = "adk-cli"
)

// HTTPFetcher downloads repository archives over HTTPS.
type HTTPFetcher struct {
	client  *resty.Client
	baseURL string
	logger  *log.Logger
}

// HTTPOption configures an HTTPFetcher
type HTTPOption func(*HTTPFetcher)

// WithBaseURL overrides the archive host, primarily for test servers and mirrors.
func WithBaseURL(base string) HTTPOption {
	return func(f *HTTPFetcher) {
		if base != "" {
			f.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithToken authenticates requests, needed for private repositories.
func WithToken(token string) HTTPOption {
	return func(f *HTTPFetcher) {
		if token != "" {
			f.client.SetAuthToken(token)
		}
	}
}

// WithProxy routes requests through an HTTP proxy.
func WithProxy(proxy string) HTTPOption {
	return func(f *HTTPFetcher) {
		if proxy != "" {
			f.client.SetProxy(proxy)
		}
	}
}

// WithTimeout bounds a whole download.
func WithTimeout(d time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		f.client.SetTimeout(d)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.client.SetHeader("User-Agent", ua)
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) HTTPOption {
	return func(f *HTTPFetcher) {
		if l != nil {
			f.logger = l
			f.client.SetLogger(l)
		}
	}
}

// NewHTTPFetcher creates a fetcher. It never retries: a failed download is
// reported to the caller as is.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	client := resty.New()
	client.SetTimeout(defaultTimeout)
	client.SetRetryCount(0)
	client.SetHeader("User-Agent", defaultUserAgent)

	f := &HTTPFetcher{
		client:  client,
		baseURL: DefaultBaseURL,
		logger:  log.New(io.Discard),
	}
	client.SetLogger(f.logger)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ArchiveURL returns the download URL for repo at branch.
func (f *HTTPFetcher) ArchiveURL(repo, branch string) string {
	owner, name, _ := strings.Cut(repo, "/")
	return fmt.Sprintf("%s/%s/%s/zip/%s",
		f.baseURL, url.PathEscape(owner), url.PathEscape(name), escapeRef(branch))
}

func escapeRef(ref string) string {
	parts := strings.Split(ref, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// Fetch downloads the archive for repo at branch.
func (f *HTTPFetcher) Fetch(ctx context.Context, repo, branch string) ([]byte, error) {
	archiveURL := f.ArchiveURL(repo, branch)
	f.logger.Debug("downloading archive", "url", archiveURL)

	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(archiveURL)
	if err != nil {
		return nil, adkerr.Wrap(adkerr.KindNetwork, "fetch", archiveURL, err)
	}
	body := resp.RawBody()
	defer body.Close()

	f.logger.Debug("archive response", "status", resp.StatusCode())

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, adkerr.Newf(adkerr.KindSourceNotFound, "fetch", repo,
			"repository %s or branch %q not found", repo, branch)
	case resp.StatusCode() < 200 || resp.StatusCode() > 299:
		return nil, adkerr.Newf(adkerr.KindNetwork, "fetch", archiveURL,
			"server returned %s", resp.Status())
	}

	data, err := io.ReadAll(io.LimitReader(body, MaxArchiveBytes+1))
	if err != nil {
		return nil, adkerr.Wrap(adkerr.KindNetwork, "fetch", archiveURL, err)
	}
	if len(data) > MaxArchiveBytes {
		return nil, adkerr.Newf(adkerr.KindNetwork, "fetch", archiveURL,
			"archive exceeds %d bytes", MaxArchiveBytes)
	}

	f.logger.Debug("archive downloaded", "bytes", len(data))
	return data, nil
}
