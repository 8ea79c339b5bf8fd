package browser

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/sha3"
	"golang.org/x/sync/singleflight"
)

const (
	// defaultMaxScriptSize limits the downloaded engine script.
	// axe.min.js is about 550KB; 8MB leaves room for future releases.
	defaultMaxScriptSize = 8 * 1024 * 1024

	// defaultScriptFetchTimeout bounds the script download.
	defaultScriptFetchTimeout = 30 * time.Second
)

// ScriptLoader loads the rule engine script once and serves it from memory
// afterwards. Downloads are cached on disk when a cache directory is set.
type ScriptLoader struct {
	source   string
	cacheDir string
	client   *http.Client
	maxSize  int64
	logger   *slog.Logger

	group  singleflight.Group
	mu     sync.RWMutex
	script string
}

// ScriptOption configures a ScriptLoader.
type ScriptOption func(*ScriptLoader)

// WithCacheDir sets the directory downloaded scripts are cached in.
func WithCacheDir(dir string) ScriptOption {
	return func(l *ScriptLoader) {
		l.cacheDir = dir
	}
}

// WithHTTPClient sets the HTTP client used for downloads.
func WithHTTPClient(client *http.Client) ScriptOption {
	return func(l *ScriptLoader) {
		if client != nil {
			l.client = client
		}
	}
}

// WithMaxScriptSize sets the maximum accepted script size in bytes.
func WithMaxScriptSize(size int64) ScriptOption {
	return func(l *ScriptLoader) {
		if size > 0 {
			l.maxSize = size
		}
	}
}

// WithScriptLogger sets the logger.
func WithScriptLogger(logger *slog.Logger) ScriptOption {
	return func(l *ScriptLoader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewScriptLoader creates a loader for a file path or http(s) URL.
func NewScriptLoader(source string, opts ...ScriptOption) *ScriptLoader {
	l := &ScriptLoader{
		source:  source,
		client:  &http.Client{Timeout: defaultScriptFetchTimeout},
		maxSize: defaultMaxScriptSize,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Source returns the configured file path or URL.
func (l *ScriptLoader) Source() string {
	return l.source
}

// Load returns the script, loading it on first use. Concurrent first calls
// share one load. A failed load is not memoized and is retried on the next call.
func (l *ScriptLoader) Load(ctx context.Context) (string, error) {
	l.mu.RLock()
	script := l.script
	l.mu.RUnlock()
	if script != "" {
		return script, nil
	}

	v, err, _ := l.group.Do(l.source, func() (any, error) {
		script, err := l.load(ctx)
		if err != nil {
			return "", err
		}
		l.mu.Lock()
		l.script = script
		l.mu.Unlock()
		return script, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil //nolint:forcetypeassert // the group only stores strings
}

// load reads the script from its source, bypassing the memory cache.
func (l *ScriptLoader) load(ctx context.Context) (string, error) {
	if l.source == "" {
		return "", ErrEmptyScript
	}

	if !isRemoteSource(l.source) {
		data, err := os.ReadFile(l.source) //nolint:gosec // user-provided script path is intentional
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", l.source, err)
		}
		return nonEmpty(data)
	}

	cachePath := l.cachePath()
	if cachePath != "" {
		if data, err := os.ReadFile(cachePath); err == nil && len(data) > 0 { //nolint:gosec // path derived from cache dir
			l.logger.Debug("using cached rule engine script", "path", cachePath)
			return string(data), nil
		}
	}

	data, err := l.download(ctx)
	if err != nil {
		return "", err
	}

	if cachePath != "" {
		if err := writeFileAtomic(cachePath, data); err != nil {
			// The script is still usable without the cache.
			l.logger.Warn("failed to cache rule engine script", "path", cachePath, "error", err)
		}
	}

	return string(data), nil
}

// download fetches the script over HTTP.
func (l *ScriptLoader) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	l.logger.Debug("downloading rule engine script", "url", l.source)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", l.source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download %s: unexpected status %d", l.source, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", l.source, err)
	}
	if int64(len(data)) > l.maxSize {
		return nil, fmt.Errorf("rule engine script exceeds %d bytes", l.maxSize)
	}
	if len(data) == 0 {
		return nil, ErrEmptyScript
	}

	return data, nil
}

// cachePath returns the cache file for the source URL, or "" when caching is off.
// The name is derived from a digest of the URL so that different engine
// versions never share a file.
func (l *ScriptLoader) cachePath() string {
	if l.cacheDir == "" {
		return ""
	}
	sum := sha3.Sum256([]byte(l.source))
	return filepath.Join(l.cacheDir, "axe-"+hex.EncodeToString(sum[:8])+".js")
}

// isRemoteSource reports whether source is an http(s) URL.
func isRemoteSource(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// nonEmpty converts data to a script, rejecting whitespace-only content.
func nonEmpty(data []byte) (string, error) {
	if strings.TrimSpace(string(data)) == "" {
		return "", ErrEmptyScript
	}
	return string(data), nil
}

// writeFileAtomic writes data through a temp file and rename so a crashed
// download never leaves a truncated script in the cache.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".axe-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()        //nolint:errcheck // already failing
		_ = os.Remove(tmpName) //nolint:errcheck // best effort cleanup
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // best effort cleanup
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // best effort cleanup
		return err
	}
	return nil
}
