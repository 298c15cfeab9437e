package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-celebrations/internal/config"
	"github.com/tartampluch/go-celebrations/internal/engine"
)

// digest is one rendered run, immutable once stored.
type digest struct {
	body    []byte
	etag    string
	updated time.Time
	notices int
}

// DigestServer exposes the notices of the latest run as plain text.
type DigestServer struct {
	// latest is read on every request and replaced once per run.
	latest atomic.Pointer[digest]
	Port   string

	// EmptyText is served when the latest run produced no notice.
	EmptyText string
}

// NewDigestServer creates a new instance of the server.
func NewDigestServer(port, emptyText string) *DigestServer {
	return &DigestServer{
		Port:      port,
		EmptyText: emptyText,
	}
}

// Start binds the listener, then serves until ctx is cancelled.
// A bind failure is returned immediately.
func (s *DigestServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(config.LocalhostBindAddr, s.Port))
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.handleDigestRequest)
	srv := &http.Server{
		Handler:      mux,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	served := make(chan error, config.ChannelBufferSize)
	go func() { served <- srv.Serve(ln) }()
	slog.Info(config.MsgServerListen,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyPort, s.Port,
	)

	select {
	case err := <-served:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	case <-ctx.Done():
	}

	slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
	}
	return nil
}

// Update replaces the served digest with the notices of a run, one per line.
// The ETag is derived from the text, so an unchanged day keeps client caches valid.
func (s *DigestServer) Update(notices []engine.Notice) {
	data := s.render(notices)
	sum := sha256.Sum256(data)
	item := &digest{
		body:    data,
		etag:    fmt.Sprintf(config.FormatETag, hex.EncodeToString(sum[:])),
		updated: time.Now().UTC().Truncate(time.Second),
		notices: len(notices),
	}
	s.latest.Store(item)

	slog.Debug(config.MsgDigestUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyNotices, item.notices,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, item.etag,
	)
}

func (s *DigestServer) render(notices []engine.Notice) []byte {
	if len(notices) == 0 {
		return []byte(s.EmptyText + "\n")
	}
	var b strings.Builder
	for _, n := range notices {
		b.WriteString(n.Text)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// handleDigestRequest serves the latest digest. Conditional requests
// (If-None-Match, If-Modified-Since) and HEAD are answered by http.ServeContent.
func (s *DigestServer) handleDigestRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	d := s.latest.Load()
	if d == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	h := w.Header()
	h.Set(config.HeaderContentType, config.MimeTextPlain)
	h.Set(config.HeaderXContentType, config.MimeNoSniff)
	h.Set(config.HeaderCacheControl, config.CacheControlPrivate)
	h.Set(config.HeaderETag, d.etag)
	http.ServeContent(w, r, "", d.updated, bytes.NewReader(d.body))
}
