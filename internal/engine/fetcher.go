package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-celebrations/internal/config"
)

// Fetcher downloads a remote document (calendar feed, vCard export).
type Fetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// StatusError reports a response other than 200 OK.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", config.ErrFetchStatus, e.Status)
}

// HTTPFetcher implements Fetcher with a single GET per call.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher with the default timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{Timeout: config.HTTPTimeout},
	}
}

// Fetch opens the body of targetURL, sending basic auth when user or pass is set.
// Feed URLs carry their access token in the query string, so only the
// SafeURL form is logged. At most config.MaxHTTPResponseSize bytes are read.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	withAuth := user != "" || pass != ""
	log := slog.With(
		config.LogKeyComponent, config.CompFetcher,
		config.LogKeyURL, SafeURL(u),
	)
	log.DebugContext(ctx, config.MsgFetchStart, config.LogKeyAuth, withAuth)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRequestBuild, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if withAuth {
		req.SetBasicAuth(user, pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchNetwork, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.WarnContext(ctx, config.MsgFetchRejected, config.LogKeyStatus, resp.StatusCode)
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	log.InfoContext(ctx, config.MsgFetchOpened, config.LogKeyLength, resp.ContentLength)
	return &limitedReadCloser{
		Reader: io.LimitReader(resp.Body, config.MaxHTTPResponseSize),
		Closer: resp.Body,
	}, nil
}

// SafeURL strips query string, fragment and credentials for logging.
func SafeURL(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}

type limitedReadCloser struct {
	io.Reader
	io.Closer
}
