package screenshot

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanTiles(t *testing.T) {
	tests := []struct {
		name    string
		metrics PageMetrics
		want    TilePlan
	}{
		{
			name:    "exact multiple",
			metrics: PageMetrics{ScrollHeight: 600, DevicePixelRatio: 1, CapturedWidth: 100, CapturedHeight: 200},
			want: TilePlan{
				Stitch: true, Adapted: 200, Times: 3, Leftover: 0, Width: 100, Height: 600,
				Tiles: []PlannedTile{{}, {Offset: 200, DestY: 200}, {Offset: 400, DestY: 400}},
			},
		},
		{
			name:    "leftover",
			metrics: PageMetrics{ScrollHeight: 1000, DevicePixelRatio: 1, CapturedWidth: 100, CapturedHeight: 300},
			want: TilePlan{
				Stitch: true, Adapted: 300, Times: 3, Leftover: 100, Width: 100, Height: 1000,
				Tiles: []PlannedTile{
					{},
					{Offset: 300, DestY: 300},
					{Offset: 600, DestY: 600},
					{Offset: 900, DestY: 900, KeepRows: 100},
				},
			},
		},
		{
			name:    "double density",
			metrics: PageMetrics{ScrollHeight: 1250, DevicePixelRatio: 2, CapturedWidth: 200, CapturedHeight: 1000},
			want: TilePlan{
				Stitch: true, Adapted: 500, Times: 2, Leftover: 250, Width: 200, Height: 2500,
				Tiles: []PlannedTile{
					{},
					{Offset: 500, DestY: 1000},
					{Offset: 1000, DestY: 2000, KeepRows: 500},
				},
			},
		},
		{
			name:    "within tolerance",
			metrics: PageMetrics{ScrollHeight: 630, DevicePixelRatio: 1, CapturedWidth: 100, CapturedHeight: 600},
			want:    TilePlan{Adapted: 600},
		},
		{
			name:    "page shorter than viewport",
			metrics: PageMetrics{ScrollHeight: 100, DevicePixelRatio: 1, CapturedWidth: 100, CapturedHeight: 600},
			want: TilePlan{
				Stitch: true, Adapted: 600, Times: 0, Leftover: 100, Width: 100, Height: 100,
				Tiles: []PlannedTile{{}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanTiles(tt.metrics, DefaultTolerance)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlanTiles_Degenerate(t *testing.T) {
	tests := []PageMetrics{
		{ScrollHeight: 500, DevicePixelRatio: 1, CapturedWidth: 10, CapturedHeight: 0},
		{ScrollHeight: 500, DevicePixelRatio: 3, CapturedWidth: 10, CapturedHeight: 2},
	}

	for _, m := range tests {
		_, err := PlanTiles(m, DefaultTolerance)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDegenerateViewport))
	}
}

func TestPlanTiles_DegenerateWithinToleranceIsNotAnError(t *testing.T) {
	plan, err := PlanTiles(PageMetrics{ScrollHeight: 30, DevicePixelRatio: 1, CapturedHeight: 0}, DefaultTolerance)
	require.NoError(t, err)
	assert.False(t, plan.Stitch)
}

// Every canvas row must be written by exactly one tile once later tiles
// overwrite earlier ones, and the final tile must end at the canvas edge.
func TestPlanTiles_CanvasLimit(t *testing.T) {
	m := PageMetrics{ScrollHeight: MaxCanvasPixels / 1000, DevicePixelRatio: 2, CapturedWidth: 1000, CapturedHeight: 600}
	_, err := PlanTiles(m, DefaultTolerance)
	assert.ErrorIs(t, err, ErrMetrics)

	m.DevicePixelRatio = 1
	plan, err := PlanTiles(m, DefaultTolerance)
	require.NoError(t, err)
	assert.Equal(t, MaxCanvasPixels/1000, plan.Height)
}

func TestPlanTiles_CoversCanvasExactly(t *testing.T) {
	for _, ratio := range []float64{1, 2, 3} {
		for captured := 50; captured <= 400; captured += 37 {
			for scrollHeight := captured; scrollHeight <= 2000; scrollHeight += 53 {
				deviceHeight := int(float64(captured) * ratio)
				m := PageMetrics{
					ScrollHeight:     scrollHeight,
					DevicePixelRatio: ratio,
					CapturedWidth:    10,
					CapturedHeight:   deviceHeight,
				}
				name := fmt.Sprintf("ratio=%v/captured=%d/scroll=%d", ratio, deviceHeight, scrollHeight)

				plan, err := PlanTiles(m, DefaultTolerance)
				require.NoError(t, err, name)
				if !plan.Stitch {
					continue
				}

				covered := make([]int, plan.Height)
				for _, tile := range plan.Tiles {
					rows := deviceHeight
					if tile.KeepRows > 0 {
						rows = tile.KeepRows
					}
					for y := tile.DestY; y < tile.DestY+rows && y < plan.Height; y++ {
						covered[y]++
					}
				}
				for y, n := range covered {
					require.Equal(t, 1, n, "%s: row %d covered %d times", name, y, n)
				}
			}
		}
	}
}
