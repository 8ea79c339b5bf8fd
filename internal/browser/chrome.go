package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

const (
	// defaultEngineReadyTimeout bounds the wait for the injected engine.
	defaultEngineReadyTimeout = 5 * time.Second

	// enginePollInterval is how often engine readiness is checked.
	enginePollInterval = 100 * time.Millisecond

	// screenshotQuality is the JPEG quality of full-page screenshots.
	screenshotQuality = 90
)

// settings holds the options shared by RemoteBrowser and LocalBrowser.
type settings struct {
	engineReadyTimeout time.Duration
	probe              bool
	execPath           string
	logger             *slog.Logger
}

// Option configures a RemoteBrowser or LocalBrowser.
type Option func(*settings)

// WithEngineReadyTimeout sets how long to wait for the injected rule engine.
func WithEngineReadyTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.engineReadyTimeout = d
		}
	}
}

// WithProbe makes Check open a TCP connection to the endpoint host in
// addition to validating the configuration.
func WithProbe(probe bool) Option {
	return func(s *settings) {
		s.probe = probe
	}
}

// WithExecPath sets the Chrome executable used by LocalBrowser.
func WithExecPath(path string) Option {
	return func(s *settings) {
		s.execPath = path
	}
}

// WithLogger sets the logger. Browser driver diagnostics are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		engineReadyTimeout: defaultEngineReadyTimeout,
		logger:             slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// contextOptions routes chromedp diagnostics to the logger.
func (s settings) contextOptions() []chromedp.ContextOption {
	logf := func(format string, args ...any) {
		s.logger.Debug(fmt.Sprintf(format, args...), "component", "chromedp")
	}
	return []chromedp.ContextOption{
		chromedp.WithLogf(logf),
		chromedp.WithErrorf(logf),
	}
}

// RemoteBrowser opens sessions on a browser service reached through its
// debugging protocol websocket endpoint.
//
// Design decision: Every session dials its own websocket connection. Browser
// services start a fresh browser per connection, which gives each URL an
// isolated profile without relying on browser context support.
type RemoteBrowser struct {
	endpoint Endpoint
	scripts  *ScriptLoader
	settings settings
}

// NewRemoteBrowser creates a RemoteBrowser. It does not connect; call Check.
func NewRemoteBrowser(endpoint Endpoint, scripts *ScriptLoader, opts ...Option) *RemoteBrowser {
	return &RemoteBrowser{
		endpoint: endpoint,
		scripts:  scripts,
		settings: newSettings(opts),
	}
}

// Check validates the endpoint configuration, optionally probes the host,
// and loads the rule engine script.
func (b *RemoteBrowser) Check(ctx context.Context) error {
	status := CheckEndpoint(b.endpoint)
	if status == EndpointStatusOK && b.settings.probe {
		status = ProbeEndpoint(ctx, b.endpoint)
	}
	if err := status.Error(); err != nil {
		return err
	}

	if _, err := b.scripts.Load(ctx); err != nil {
		return fmt.Errorf("failed to load rule engine script: %w", err)
	}
	return nil
}

// NewSession connects to the browser service and opens a new tab.
func (b *RemoteBrowser) NewSession(ctx context.Context) (Session, error) {
	wsURL, err := b.endpoint.ConnectURL()
	if err != nil {
		return nil, err
	}

	// The service authenticates the websocket handshake itself, so the URL
	// is dialed as given instead of being resolved through /json/version.
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, wsURL, chromedp.NoModifyURL)
	return openSession(allocCtx, allocCancel, b.scripts, b.settings)
}

// LocalBrowser launches a headless Chrome per session on this machine.
// It needs no API key and is intended for development and CI.
type LocalBrowser struct {
	scripts  *ScriptLoader
	settings settings
}

// NewLocalBrowser creates a LocalBrowser.
func NewLocalBrowser(scripts *ScriptLoader, opts ...Option) *LocalBrowser {
	return &LocalBrowser{
		scripts:  scripts,
		settings: newSettings(opts),
	}
}

// Check loads the rule engine script. Chrome itself is located when the
// first session starts.
func (b *LocalBrowser) Check(ctx context.Context) error {
	if _, err := b.scripts.Load(ctx); err != nil {
		return fmt.Errorf("failed to load rule engine script: %w", err)
	}
	return nil
}

// NewSession starts a headless Chrome with a throwaway profile.
func (b *LocalBrowser) NewSession(ctx context.Context) (Session, error) {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	if b.settings.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.settings.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	return openSession(allocCtx, allocCancel, b.scripts, b.settings)
}

// openSession creates the tab and forces the connection so that connection
// errors surface here instead of on the first navigation.
func openSession(allocCtx context.Context, allocCancel context.CancelFunc, scripts *ScriptLoader, s settings) (Session, error) {
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, s.contextOptions()...)
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to open browser session: %w", err)
	}

	return &chromeSession{
		ctx:         tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		scripts:     scripts,
		settings:    s,
	}, nil
}

// chromeSession is a Session backed by one chromedp tab.
type chromeSession struct {
	ctx         context.Context //nolint:containedctx // chromedp binds the tab to this context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	scripts     *ScriptLoader
	settings    settings

	closeOnce sync.Once
	closeErr  error
	mu        sync.Mutex
	closed    bool
}

// run executes fn on a context derived from the tab context that also
// honours the deadline and cancellation of the caller's ctx.
func (s *chromeSession) run(ctx context.Context, fn func(context.Context) error) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrSessionClosed
	}

	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return fn(runCtx)
}

// Navigate loads pageURL and waits for DOMContentLoaded.
func (s *chromeSession) Navigate(ctx context.Context, pageURL string) error {
	return s.run(ctx, func(runCtx context.Context) error {
		domReady := make(chan struct{})
		var once sync.Once

		listenCtx, stopListening := context.WithCancel(runCtx)
		defer stopListening()
		chromedp.ListenTarget(listenCtx, func(ev any) {
			if _, ok := ev.(*page.EventDomContentEventFired); ok {
				once.Do(func() { close(domReady) })
			}
		})

		err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
			_, _, errorText, err := page.Navigate(pageURL).Do(ctx)
			if err != nil {
				return err
			}
			if errorText != "" {
				return fmt.Errorf("%w: %s", ErrNavigation, errorText)
			}
			return nil
		}))
		if err != nil {
			return err
		}

		select {
		case <-domReady:
			return nil
		case <-runCtx.Done():
			return fmt.Errorf("waiting for DOMContentLoaded: %w", runCtx.Err())
		}
	})
}

// RunEngine injects the rule engine, waits for it and runs one pass.
func (s *chromeSession) RunEngine(ctx context.Context, opts RunOptions) ([]byte, error) {
	script, err := s.scripts.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule engine script: %w", err)
	}

	expr, err := runExpression(opts)
	if err != nil {
		return nil, err
	}

	var raw string
	err = s.run(ctx, func(runCtx context.Context) error {
		var injected bool
		if err := chromedp.Run(runCtx, chromedp.Evaluate(script+"\n;true", &injected)); err != nil {
			return fmt.Errorf("failed to inject rule engine: %w", err)
		}

		if err := s.waitEngine(runCtx); err != nil {
			return err
		}

		if err := chromedp.Run(runCtx, chromedp.Evaluate(expr, &raw, awaitPromise)); err != nil {
			return fmt.Errorf("rule engine pass failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return []byte(raw), nil
}

// waitEngine polls until the engine is defined or the ready timeout elapses.
// Readiness is a hard cutoff and is not retried.
func (s *chromeSession) waitEngine(ctx context.Context) error {
	readyCtx, cancel := context.WithTimeout(ctx, s.settings.engineReadyTimeout)
	defer cancel()

	ticker := time.NewTicker(enginePollInterval)
	defer ticker.Stop()

	for {
		var ready bool
		if err := chromedp.Run(readyCtx, chromedp.Evaluate(engineReadyExpr, &ready)); err == nil && ready {
			return nil
		}

		select {
		case <-readyCtx.Done():
			return fmt.Errorf("%w within %s", ErrEngineNotReady, s.settings.engineReadyTimeout)
		case <-ticker.C:
		}
	}
}

// awaitPromise makes Evaluate wait for the returned promise to settle.
func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

// Screenshot captures the full page.
func (s *chromeSession) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := s.run(ctx, func(runCtx context.Context) error {
		return chromedp.Run(runCtx, chromedp.FullScreenshot(&buf, screenshotQuality))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

// Close closes the tab and the browser connection.
func (s *chromeSession) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.closeErr = chromedp.Cancel(s.ctx)
		s.tabCancel()
		s.allocCancel()
	})
	return s.closeErr
}
