package draftkings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/Chinedu-E/mlb-odds/internal/pkg/interfaces"
)

// renderSettle gives the client-side app time to draw market tables after
// the load event fires.
const renderSettle = 5 * time.Second

type BrowserOptions struct {
	UserAgent    string
	FetchTimeout time.Duration
	Headless     bool
	NoSandbox    bool
}

// Browser renders market pages in headless Chrome. Every fetch runs in its
// own short-lived profile, so parallel jobs never share browser state.
type Browser struct {
	opts       BrowserOptions
	baseCtx    context.Context
	baseCancel context.CancelFunc
}

func NewBrowser(opts BrowserOptions) *Browser {
	return &Browser{opts: opts}
}

// Start opens the session all fetches run under and probes that Chrome can
// actually be launched, so a missing binary surfaces here and not on the
// first collection pass. It must be called before Fetch.
func (b *Browser) Start(ctx context.Context) error {
	// The session is detached from ctx: a shutdown signal lets an
	// in-flight pass finish, and Stop tears the session down afterwards.
	b.baseCtx, b.baseCancel = context.WithCancel(context.Background())

	dir, err := os.MkdirTemp("", "draftkings_chrome_")
	if err != nil {
		return fmt.Errorf("create chrome temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	probeCtx, cancel := context.WithTimeout(ctx, b.opts.FetchTimeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(probeCtx, b.allocatorOptions(dir)...)
	defer allocCancel()

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	if err := chromedp.Run(tabCtx); err != nil {
		b.Stop()
		return fmt.Errorf("start rendering engine: %w", err)
	}

	slog.Info("Rendering engine ready", "headless", b.opts.Headless)
	return nil
}

// Stop tears down the session. In-flight fetches are aborted.
func (b *Browser) Stop() {
	if b.baseCancel != nil {
		b.baseCancel()
	}
}

// Fetch navigates to pageURL, waits for the market tables to render and
// returns the page HTML. A page that rendered fine but lists no markets
// returns interfaces.ErrEmptyPage; everything else is a *FetchError.
func (b *Browser) Fetch(ctx context.Context, pageURL string) (string, error) {
	if b.baseCtx == nil {
		return "", &interfaces.FetchError{
			URL:  pageURL,
			Kind: interfaces.FaultSession,
			Err:  errors.New("browser session not started"),
		}
	}

	dir, err := os.MkdirTemp("", "draftkings_chrome_")
	if err != nil {
		return "", &interfaces.FetchError{
			URL:  pageURL,
			Kind: interfaces.FaultSession,
			Err:  fmt.Errorf("create chrome temp dir: %w", err),
		}
	}
	defer os.RemoveAll(dir)

	runCtx, cancel := context.WithTimeout(b.baseCtx, b.opts.FetchTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	allocCtx, allocCancel := chromedp.NewExecAllocator(runCtx, b.allocatorOptions(dir)...)
	defer allocCancel()

	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		slog.Debug("chromedp", "message", fmt.Sprintf(format, v...))
	}))
	defer tabCancel()

	var (
		html        string
		hasListings bool
	)
	err = chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(renderSettle),
		chromedp.Evaluate(fmt.Sprintf("document.querySelector(%q) !== null", eventSelector), &hasListings),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		// Prefer the caller's context state so a pass deadline is
		// reported as the timeout it is.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return "", &interfaces.FetchError{URL: pageURL, Kind: classifyFault(err), Err: err}
	}
	if !hasListings {
		return "", interfaces.ErrEmptyPage
	}
	return html, nil
}

func (b *Browser) allocatorOptions(userDataDir string) []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", b.opts.NoSandbox),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("allow-running-insecure-content", true),
		chromedp.UserDataDir(userDataDir),
		chromedp.UserAgent(b.opts.UserAgent),
	)
}

func classifyFault(err error) interfaces.FaultKind {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return interfaces.FaultTimeout
	case errors.Is(err, context.Canceled):
		return interfaces.FaultSession
	default:
		return interfaces.FaultNavigation
	}
}
