package screenshot

import (
	"image"

	"golang.org/x/image/draw"
)

// Tile is an image and where it goes on the canvas.
type Tile struct {
	Image image.Image

	// DestY is the canvas row the tile's top edge is drawn at.
	DestY int

	// Crop, when set, restricts the source to this rectangle in the
	// image's own coordinates.
	Crop *image.Rectangle
}

// Assemble draws tiles in order onto a new width×height canvas anchored at
// x=0. Later tiles overwrite earlier ones where they overlap and anything
// outside the canvas is clipped. The result depends only on the inputs.
func Assemble(tiles []Tile, width, height int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))

	for _, tile := range tiles {
		if tile.Image == nil {
			continue
		}
		src := tile.Image.Bounds()
		if tile.Crop != nil {
			src = tile.Crop.Intersect(src)
		}
		if src.Empty() {
			continue
		}

		dst := image.Rect(0, tile.DestY, src.Dx(), tile.DestY+src.Dy())
		draw.Draw(canvas, dst, tile.Image, src.Min, draw.Src)
	}

	return canvas
}

// bottomRows is the rectangle holding the last rows rows of bounds.
func bottomRows(bounds image.Rectangle, rows int) image.Rectangle {
	top := bounds.Max.Y - rows
	if top < bounds.Min.Y {
		top = bounds.Min.Y
	}
	return image.Rect(bounds.Min.X, top, bounds.Max.X, bounds.Max.Y)
}
