package screenshot

import "errors"

var (
	// ErrMetrics reports that the browser could not answer the page
	// measurement queries or reported an impossible value.
	ErrMetrics = errors.New("page metrics unavailable")

	// ErrCapture reports a failed viewport capture, undecodable image bytes,
	// or a failed scroll command while tiling.
	ErrCapture = errors.New("viewport capture failed")

	// ErrDegenerateViewport reports a captured viewport whose height in
	// logical pixels is zero or negative, so no tile count can be derived.
	ErrDegenerateViewport = errors.New("degenerate viewport")
)
