package espn

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"
)

const (
	// InjuriesURL is the league-wide injury report page.
	InjuriesURL = "https://www.espn.com/nba/injuries"

	// UserAgent for requests. ESPN serves the full page to browser
	// fingerprints only.
	UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128 Safari/537.36"

	// maxFetchTries bounds the plain-HTTP retry loop.
	maxFetchTries = 5
)

// Client fetches the ESPN injuries page. Plain HTTP with pacing and retries
// comes first; a headless browser render is the fallback when ESPN serves a
// block page or a stub without the injury tables.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	url        string

	// Headless allocator, created lazily on the first fallback.
	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewClient creates a new injuries page client. An empty url selects the
// default report page.
func NewClient(url string) *Client {
	if url == "" {
		url = InjuriesURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 1),
		url:        url,
	}
}

// Close releases the headless browser if one was started
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// FetchInjuriesHTML returns the injuries page HTML, falling back to a
// headless render when the plain fetch fails or comes back tableless.
func (c *Client) FetchInjuriesHTML(ctx context.Context) (string, error) {
	html, err := c.fetchWithRetries(ctx)
	if err == nil && hasInjuryTables(html) {
		return html, nil
	}

	if err != nil {
		log.Printf("⚠️ [espn] plain fetch failed (%v), trying headless render", err)
	} else {
		log.Printf("⚠️ [espn] page came back without injury tables, trying headless render")
	}

	return c.fetchHeadless(ctx)
}

// fetchWithRetries performs the plain fetch with exponential backoff to
// limit ESPN blocks.
func (c *Client) fetchWithRetries(ctx context.Context) (string, error) {
	delay := time.Second
	var lastErr error

	for attempt := 1; attempt <= maxFetchTries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		html, err := c.fetchOnce(ctx)
		if err == nil {
			return html, nil
		}
		lastErr = err
		log.Printf("⚠️ [espn] attempt %d/%d fetching %s failed: %v", attempt, maxFetchTries, c.url, err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return "", fmt.Errorf("fetching %s: %w", c.url, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Connection", "close")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}

	return string(body), nil
}

// fetchHeadless renders the page in headless Chrome and returns its HTML
func (c *Client) fetchHeadless(ctx context.Context) (string, error) {
	c.ensureAllocator()

	browserCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, 45*time.Second)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(c.url),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second), // Allow JS to render
		chromedp.OuterHTML(`html`, &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("headless fetch: %w", err)
	}
	if html == "" {
		return "", fmt.Errorf("headless fetch returned empty page")
	}

	return html, nil
}

func (c *Client) ensureAllocator() {
	if c.allocCtx != nil {
		return
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
	)

	c.allocCtx, c.cancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

// hasInjuryTables checks for the team section markers the parser needs.
func hasInjuryTables(html string) bool {
	return strings.Contains(html, "Table__Title")
}

// ParseHTML converts raw HTML to a goquery Document for parsing
func ParseHTML(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
