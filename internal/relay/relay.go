// Package relay implements the spool relay agent. It drains a directory of
// spooled crash reports and uploads each pending report to the ingestion
// service, deleting reports that were accepted and quarantining reports the
// service rejected.
package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	ingest "github.com/strongdm/crash-relay/pkg/crashrelay/handlers/http"
	"github.com/strongdm/crash-relay/pkg/crashrelay/handlers/spool"
)

// rejectedSuffix marks reports the service refused with a permanent error.
// Quarantined files stay in the spool directory for operator inspection but
// are never retried.
const rejectedSuffix = ".rejected"

const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 5 * time.Minute
)

// Relay drains a spool directory and uploads pending crash reports.
type Relay struct {
	cfg      Config
	client   *http.Client
	log      zerolog.Logger
	hostname string
}

// New creates a Relay for the given configuration. The configuration must
// already be validated.
func New(cfg Config, log zerolog.Logger) *Relay {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return &Relay{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.HTTPTimeout},
		log:      log,
		hostname: host,
	}
}

// Run drains the spool directory until the context is cancelled. In Once mode
// it performs a single drain and returns. A filesystem watcher wakes the loop
// when new reports land; a poll ticker covers platforms where watching the
// directory fails.
func (r *Relay) Run(ctx context.Context) error {
	if err := os.MkdirAll(r.cfg.SpoolDir, 0o700); err != nil {
		return fmt.Errorf("create spool dir: %w", err)
	}

	if r.cfg.Once {
		return r.drain(ctx)
	}

	wake := make(chan struct{}, 1)
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		if werr := watcher.Add(r.cfg.SpoolDir); werr != nil {
			r.log.Warn().Err(werr).Str("dir", r.cfg.SpoolDir).Msg("spool watch failed, polling only")
			watcher.Close()
			watcher = nil
		}
	} else {
		r.log.Warn().Err(err).Msg("fsnotify unavailable, polling only")
		watcher = nil
	}
	if watcher != nil {
		defer watcher.Close()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-watcher.Events:
					if !ok {
						return
					}
					if ev.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
						continue
					}
					select {
					case wake <- struct{}{}:
					default:
					}
				case _, ok := <-watcher.Errors:
					if !ok {
						return
					}
				}
			}
		}()
	}

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	bo := newBackoff(initialBackoff, maxBackoff)
	for {
		if err := r.drain(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.log.Warn().Err(err).
				Dur("backoff", bo.Current()).
				Msg("drain failed, backing off")
			bo.Sleep(ctx)
			continue
		}
		bo.Reset()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wake:
		case <-ticker.C:
		}
	}
}

// drain uploads every pending report in the spool directory, oldest first.
// A transient upload failure aborts the pass so a single unreachable service
// cannot pin the loop; the caller backs off and the next pass retries from
// the oldest report.
func (r *Relay) drain(ctx context.Context) error {
	pending, err := r.pending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	r.log.Debug().Int("pending", len(pending)).Msg("draining spool")

	for _, path := range pending {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		retry, err := r.upload(ctx, path)
		if err == nil {
			continue
		}
		if !retry {
			r.log.Warn().Err(err).Str("report", filepath.Base(path)).Msg("report rejected, quarantining")
			if qerr := r.quarantine(path); qerr != nil {
				r.log.Error().Err(qerr).Str("report", filepath.Base(path)).Msg("quarantine failed")
			}
			continue
		}
		return fmt.Errorf("upload %s: %w", filepath.Base(path), err)
	}

	return nil
}

// pending lists spooled report files oldest first.
func (r *Relay) pending() ([]string, error) {
	entries, err := os.ReadDir(r.cfg.SpoolDir)
	if err != nil {
		return nil, fmt.Errorf("read spool dir: %w", err)
	}

	type pendingFile struct {
		path string
		mod  time.Time
	}
	var files []pendingFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), spool.Suffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, pendingFile{
			path: filepath.Join(r.cfg.SpoolDir, entry.Name()),
			mod:  info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].mod.Before(files[j].mod) })

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

// upload POSTs one spooled report to the ingestion service and deletes it on
// acceptance. The returned bool reports whether the failure is retryable.
func (r *Relay) upload(ctx context.Context, path string) (bool, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Removed out from under us, nothing to do.
			return false, nil
		}
		return false, fmt.Errorf("read report: %w", err)
	}

	url := r.cfg.ServiceURL + ingest.ReportsEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.cfg.AuthKey)
	req.Header.Set("X-Crash-Relay-Hostname", r.hostname)
	req.Header.Set("X-Crash-Relay-OSArch", runtime.GOOS+"/"+runtime.GOARCH)
	if r.cfg.AppName != "" {
		req.Header.Set("X-Crash-Relay-App", r.cfg.AppName)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return true, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode/100 == 2:
		r.log.Info().Str("report", filepath.Base(path)).Msg("report uploaded")
		if err := os.Remove(path); err != nil {
			return false, fmt.Errorf("remove uploaded report: %w", err)
		}
		return false, nil
	case resp.StatusCode/100 == 4 && resp.StatusCode != http.StatusRequestTimeout && resp.StatusCode != http.StatusTooManyRequests:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(msg))
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return true, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(msg))
	}
}

// quarantine renames a rejected report so it is never retried.
func (r *Relay) quarantine(path string) error {
	return os.Rename(path, path+rejectedSuffix)
}
