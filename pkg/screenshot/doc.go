// Package screenshot captures an image of an entire web page from a browser
// whose screenshot capability only returns the visible viewport.
//
// # Algorithm
//
// A capture runs as a fixed pipeline against one browser session:
//
//  1. Probe: measure the page scroll height, the device pixel ratio and the
//     size of one baseline viewport capture.
//  2. Plan: if the baseline already covers the page (within a tolerance),
//     the baseline is returned unchanged. Otherwise the page is divided into
//     viewport-sized tiles plus one partial tile for the leftover rows.
//  3. Scroll, settle, capture: for every planned tile the page is scrolled,
//     a settle step runs so the page can re-render, and the viewport is
//     captured.
//  4. Composite: the tiles are drawn onto one canvas in order.
//  5. Restore: the page is scrolled back to the top, even on failure.
//
// # Browser capabilities
//
// The package never talks to a driver directly. A backend satisfies three
// narrow interfaces (PageMeasurer, Scroller, ViewportCapturer) which together
// form Browser. FromHandle checks an arbitrary driver handle once and reports
// which capabilities it lacks.
//
// # Concurrency
//
// Scroll and capture steps are strictly sequential. A Capturer allows one
// Capture at a time; callers should use one Capturer per browser session.
//
// # Example
//
//	capturer, err := screenshot.New(session,
//	    screenshot.WithSettleDelay(150*time.Millisecond),
//	)
//	if err != nil {
//	    return err
//	}
//	shot, err := capturer.Capture(ctx)
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("page.png", shot.Data, 0644)
package screenshot
