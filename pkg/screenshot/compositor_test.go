package screenshot

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

var (
	red   = color.RGBA{R: 0xff, A: 0xff}
	green = color.RGBA{G: 0xff, A: 0xff}
	blue  = color.RGBA{B: 0xff, A: 0xff}
)

func TestAssemble_PlacesTilesInOrder(t *testing.T) {
	tiles := []Tile{
		{Image: solid(4, 3, red), DestY: 0},
		{Image: solid(4, 3, green), DestY: 3},
	}

	canvas := Assemble(tiles, 4, 6)

	assert.Equal(t, image.Rect(0, 0, 4, 6), canvas.Bounds())
	assert.Equal(t, red, canvas.RGBAAt(0, 2))
	assert.Equal(t, green, canvas.RGBAAt(3, 3))
	assert.Equal(t, green, canvas.RGBAAt(3, 5))
}

func TestAssemble_LaterTilesOverwrite(t *testing.T) {
	tiles := []Tile{
		{Image: solid(2, 4, red), DestY: 0},
		{Image: solid(2, 4, blue), DestY: 2},
	}

	canvas := Assemble(tiles, 2, 6)

	assert.Equal(t, red, canvas.RGBAAt(0, 1))
	assert.Equal(t, blue, canvas.RGBAAt(0, 2))
	assert.Equal(t, blue, canvas.RGBAAt(0, 5))
}

func TestAssemble_CropsSource(t *testing.T) {
	// Top half red, bottom half green; keep only the bottom two rows.
	src := solid(2, 4, red)
	for y := 2; y < 4; y++ {
		for x := 0; x < 2; x++ {
			src.SetRGBA(x, y, green)
		}
	}
	crop := bottomRows(src.Bounds(), 2)

	canvas := Assemble([]Tile{
		{Image: solid(2, 4, blue), DestY: 0},
		{Image: src, DestY: 4, Crop: &crop},
	}, 2, 6)

	assert.Equal(t, blue, canvas.RGBAAt(0, 3))
	assert.Equal(t, green, canvas.RGBAAt(0, 4))
	assert.Equal(t, green, canvas.RGBAAt(1, 5))
}

func TestAssemble_ClipsToCanvas(t *testing.T) {
	canvas := Assemble([]Tile{{Image: solid(8, 8, red), DestY: 0}}, 4, 2)

	assert.Equal(t, image.Rect(0, 0, 4, 2), canvas.Bounds())
	assert.Equal(t, red, canvas.RGBAAt(3, 1))
}

func TestAssemble_NonZeroOriginSource(t *testing.T) {
	sub := solid(4, 10, green).SubImage(image.Rect(0, 6, 4, 10))

	canvas := Assemble([]Tile{{Image: sub, DestY: 1}}, 4, 5)

	assert.Equal(t, color.RGBA{}, canvas.RGBAAt(0, 0))
	assert.Equal(t, green, canvas.RGBAAt(0, 1))
	assert.Equal(t, green, canvas.RGBAAt(0, 4))
}

func TestAssemble_SkipsEmptyTiles(t *testing.T) {
	empty := image.Rect(0, 0, 0, 0)
	canvas := Assemble([]Tile{
		{Image: nil, DestY: 0},
		{Image: solid(2, 2, red), DestY: 0, Crop: &empty},
	}, 2, 2)

	assert.Equal(t, color.RGBA{}, canvas.RGBAAt(0, 0))
}

func TestAssemble_Deterministic(t *testing.T) {
	page := pageImage(5, 40)
	crop := bottomRows(page.Bounds(), 7)
	tiles := []Tile{
		{Image: page.SubImage(image.Rect(0, 0, 5, 15)), DestY: 0},
		{Image: page.SubImage(image.Rect(0, 15, 5, 30)), DestY: 15},
		{Image: page, DestY: 30, Crop: &crop},
	}

	first := Assemble(tiles, 5, 37)
	second := Assemble(tiles, 5, 37)

	assert.Equal(t, first.Pix, second.Pix)
}

func TestBottomRows(t *testing.T) {
	b := image.Rect(0, 10, 5, 30)
	assert.Equal(t, image.Rect(0, 25, 5, 30), bottomRows(b, 5))
	assert.Equal(t, b, bottomRows(b, 100))
}
