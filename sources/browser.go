package sources

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"deal-search/utils"
)

// BrowserFetcher loads upstream documents through a headless Chrome tab. It is
// used when an upstream sits behind a JavaScript challenge that plain HTTP
// clients cannot pass: the tab first visits the site origin, then issues the
// request with the page's own fetch() so cookies and headers match a browser.
type BrowserFetcher struct {
	logger      *utils.Logger
	timeout     time.Duration
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
}

// NewBrowserFetcher starts a browser allocator. chromeBin may be empty, in which
// case the usual install locations are searched.
func NewBrowserFetcher(chromeBin string, timeout time.Duration, logger *utils.Logger) *BrowserFetcher {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[browser] Using browser binary: %q", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &BrowserFetcher{
		logger:      logger,
		timeout:     timeout,
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
	}
}

type browserResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

func (f *BrowserFetcher) Fetch(ctx context.Context, target string) ([]byte, error) {
	origin, err := originOf(target)
	if err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(f.allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, f.timeout)
	defer cancelTimeout()

	// Propagate cancellation of the caller's request into the tab.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	script := "fetch(" + strconv.Quote(target) + ", {credentials: 'include'})" +
		".then(async r => ({status: r.status, body: await r.text()}))"

	var resp browserResponse
	err = chromedp.Run(tabCtx,
		chromedp.Navigate(origin),
		chromedp.Evaluate(script, &resp, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("browser fetch: %w", err)
	}

	if resp.Status < 200 || resp.Status > 299 {
		return nil, &StatusError{StatusCode: resp.Status}
	}

	f.logger.Debug("[browser] Fetched %s (%d bytes)", target, len(resp.Body))
	return []byte(resp.Body), nil
}

// Close shuts the browser down.
func (f *BrowserFetcher) Close() {
	f.cancelAlloc()
}

func originOf(target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", target, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q is not absolute", target)
	}
	return u.Scheme + "://" + u.Host + "/", nil
}

func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
