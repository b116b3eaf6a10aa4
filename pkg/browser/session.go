package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/goliatone/go-formfill/internal/logging"
	"github.com/goliatone/go-formfill/pkg/dom"
)

// ErrTargetMissing is returned by Replay when patched controls are not on
// the live page.
var ErrTargetMissing = errors.New("browser: target not found on page")

// Option configures Open.
type Option func(*config)

type config struct {
	headless bool
	timeout  time.Duration
	execPath string
	logger   *slog.Logger
}

// WithHeadless toggles headless mode. Defaults to true.
func WithHeadless(enabled bool) Option {
	return func(c *config) {
		c.headless = enabled
	}
}

// WithTimeout bounds page navigation. Defaults to 30s.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithExecPath points at a specific Chrome/Chromium binary.
func WithExecPath(path string) Option {
	return func(c *config) {
		c.execPath = strings.TrimSpace(path)
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Session is one browser tab showing the page a form is filled on.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	logger      *slog.Logger
	url         string
}

// Open starts a browser, navigates to url and waits for the body to be ready.
func Open(ctx context.Context, url string, opts ...Option) (*Session, error) {
	cfg := config{headless: true, timeout: 30 * time.Second, logger: logging.Discard()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if cfg.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.execPath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:         browserCtx,
		cancel:      browserCancel,
		allocCancel: allocCancel,
		logger:      cfg.logger,
		url:         url,
	}

	// The first Run allocates the browser and binds it to the context it is
	// given, so it must be the long-lived tab context.
	if err := chromedp.Run(browserCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: start: %w", err)
	}

	navCtx, navCancel := context.WithTimeout(ctx, cfg.timeout)
	defer navCancel()
	start := time.Now()
	if err := s.run(navCtx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: open %s: %w", url, err)
	}
	s.logger.Debug("browser.open", "url", url, "elapsed_ms", time.Since(start).Milliseconds())
	return s, nil
}

// URL returns the page the session was opened on.
func (s *Session) URL() string { return s.url }

// FormHTML returns the outer HTML of the first element matching selector
// (a CSS query; empty means "form").
func (s *Session) FormHTML(ctx context.Context, selector string) (string, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		selector = "form"
	}
	var out string
	if err := s.run(ctx,
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.OuterHTML(selector, &out, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("browser: read %s: %w", selector, err)
	}
	return out, nil
}

// Replay applies the state behind recorded fill events to the live page and
// dispatches bubbling input and change events on every patched control.
func (s *Session) Replay(ctx context.Context, events []dom.Event) error {
	patches := Patches(events)
	if len(patches) == 0 {
		return nil
	}
	payload, err := json.Marshal(patches)
	if err != nil {
		return fmt.Errorf("browser: encode patches: %w", err)
	}

	var missing []string
	if err := s.run(ctx, chromedp.Evaluate(fmt.Sprintf(replayScript, payload), &missing)); err != nil {
		return fmt.Errorf("browser: replay: %w", err)
	}
	s.logger.Debug("browser.replay", "patches", len(patches), "missing", len(missing))
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrTargetMissing, strings.Join(missing, ", "))
	}
	return nil
}

// Close shuts the tab and the browser process.
func (s *Session) Close() {
	if s == nil {
		return
	}
	s.cancel()
	s.allocCancel()
}

// run executes actions on the session tab until they finish or ctx ends.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// replayScript uses the prototype setters so framework-controlled inputs
// observe the change.
const replayScript = `(function (patches) {
  var missing = [];
  patches.forEach(function (p) {
    var el = document.querySelector(p.selector);
    if (!el) { missing.push(p.selector); return; }
    var proto = Object.getPrototypeOf(el);
    var key = p.checkable ? "checked" : "value";
    var desc = Object.getOwnPropertyDescriptor(proto, key);
    var next = p.checkable ? p.checked : p.value;
    if (desc && desc.set) { desc.set.call(el, next); } else { el[key] = next; }
    el.dispatchEvent(new Event("input", { bubbles: true }));
    el.dispatchEvent(new Event("change", { bubbles: true }));
  });
  return missing;
})(%s)`
