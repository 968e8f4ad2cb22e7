package mawaqit

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// headlessTimeout bounds one rendered-page fetch end to end.
const headlessTimeout = 30 * time.Second

// fetchRendered loads the mosque page in headless Chromium and returns the
// rendered HTML. Used when the static page does not embed confData, which
// happens when Mawaqit serves the JS-bootstrapped variant of the page.
func (c *Client) fetchRendered(parentCtx context.Context, url string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, headlessTimeout)
	defer timeoutCancel()

	var html string
	tasks := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Give the bootstrap script a moment to inject confData.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("headless fetch of %s: %w", url, err)
	}

	return []byte(html), nil
}
