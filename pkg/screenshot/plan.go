package screenshot

import (
	"fmt"
	"math"
)

// DefaultTolerance is how far, in logical pixels, the captured viewport
// height may differ from the page height before tiling is needed. It absorbs
// browser chrome and rounding noise.
const DefaultTolerance = 40

// MaxCanvasPixels caps the stitched image size (1 GiB as RGBA).
const MaxCanvasPixels = 1 << 28

// PlannedTile is one capture of a TilePlan.
type PlannedTile struct {
	// Offset is the scroll offset in logical pixels before the capture.
	Offset int

	// DestY is the canvas row, in device pixels, the tile is drawn at.
	DestY int

	// KeepRows, when positive, keeps only the bottom KeepRows rows of the
	// capture. Only the final partial tile sets it.
	KeepRows int
}

// TilePlan is the ordered list of captures that cover a page. Tiles[0] is
// always the baseline capture taken without scrolling.
type TilePlan struct {
	// Stitch is false when the baseline already covers the page.
	Stitch bool

	Adapted  int
	Times    int
	Leftover int

	// Width and Height are the canvas dimensions in device pixels.
	Width  int
	Height int

	Tiles []PlannedTile
}

// Scrolls reports whether executing the plan issues any scroll command.
func (p TilePlan) Scrolls() bool {
	return len(p.Tiles) > 1
}

// PlanTiles derives the tile plan for m. It returns ErrDegenerateViewport
// when tiling is needed but the viewport has no logical height, and
// ErrMetrics when the canvas would exceed MaxCanvasPixels.
func PlanTiles(m PageMetrics, tolerance int) (TilePlan, error) {
	adapted := m.AdaptedCapturedHeight()
	plan := TilePlan{Adapted: adapted}

	if abs(adapted-m.ScrollHeight) <= tolerance {
		return plan, nil
	}
	if adapted <= 0 {
		return TilePlan{}, fmt.Errorf("%w: %d device px at ratio %v is %d logical px",
			ErrDegenerateViewport, m.CapturedHeight, m.DevicePixelRatio, adapted)
	}

	canvasHeight := float64(m.ScrollHeight) * m.DevicePixelRatio
	if pixels := float64(m.CapturedWidth) * canvasHeight; pixels > MaxCanvasPixels {
		return TilePlan{}, fmt.Errorf("%w: canvas %dx%.0f exceeds %d pixels",
			ErrMetrics, m.CapturedWidth, canvasHeight, MaxCanvasPixels)
	}

	plan.Stitch = true
	plan.Times = m.ScrollHeight / adapted
	plan.Leftover = m.ScrollHeight % adapted
	plan.Width = m.CapturedWidth
	plan.Height = m.CanvasHeight()
	plan.Tiles = []PlannedTile{{}}

	// Page shorter than the viewport: the baseline clipped to the canvas
	// is the whole page.
	if plan.Times == 0 {
		return plan, nil
	}

	scroll := 0
	for i := 0; i < plan.Times-1; i++ {
		scroll += adapted
		plan.Tiles = append(plan.Tiles, PlannedTile{
			Offset: scroll,
			DestY:  (i + 1) * m.CapturedHeight,
		})
	}

	if plan.Leftover > 0 {
		scroll += adapted
		plan.Tiles = append(plan.Tiles, PlannedTile{
			Offset:   scroll,
			DestY:    plan.Times * m.CapturedHeight,
			KeepRows: int(math.Round(float64(plan.Leftover) * m.DevicePixelRatio)),
		})
	}

	return plan, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
