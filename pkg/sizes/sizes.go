// Package sizes parses and formats the "WxH" screen size notation used by
// layout tests to describe viewport dimensions.
package sizes

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrConfiguration marks a malformed size or option supplied by the caller.
var ErrConfiguration = errors.New("configuration error")

var sizePattern = regexp.MustCompile(`^[0-9]+x[0-9]+$`)

// Size is a width and height in logical pixels.
type Size struct {
	Width  int
	Height int
}

// String returns the size in "WxH" form.
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Parse reads a size written as "WxH", for example "1024x768".
// Anything else, including signs, spaces or an upper-case X, is rejected.
func Parse(text string) (Size, error) {
	if !sizePattern.MatchString(text) {
		return Size{}, fmt.Errorf("%w: incorrect screen size: %q", ErrConfiguration, text)
	}

	w, h, _ := strings.Cut(text, "x")
	width, err := strconv.Atoi(w)
	if err != nil {
		return Size{}, fmt.Errorf("%w: incorrect screen size: %q: %w", ErrConfiguration, text, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Size{}, fmt.Errorf("%w: incorrect screen size: %q: %w", ErrConfiguration, text, err)
	}

	return Size{Width: width, Height: height}, nil
}

// Format renders size as "WxH". A nil size formats as "0x0".
func Format(size *Size) string {
	if size == nil {
		return "0x0"
	}
	return size.String()
}
