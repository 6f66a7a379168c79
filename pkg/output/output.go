// Package output encodes captured screenshots and writes them to disk.
package output

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/entrhq/fullshot/pkg/pageutil"
	"github.com/entrhq/fullshot/pkg/screenshot"
	"github.com/entrhq/fullshot/pkg/sizes"
)

// Format is an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatPDF  Format = "pdf"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 90

// ParseFormat parses "png", "jpeg" (or "jpg") and "pdf".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: unknown output format %q", sizes.ErrConfiguration, s)
	}
}

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

func init() {
	// pdfcpu would otherwise create a config directory under the user's home.
	api.DisableConfigDir()
}

// Encode writes shot to w in format. A PNG shot is copied unchanged when
// PNG is requested.
func Encode(w io.Writer, shot *screenshot.Shot, format Format, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	switch format {
	case FormatPNG:
		if shot.Format == "png" {
			_, err := w.Write(shot.Data)
			return err
		}
		img, err := shot.Decode()
		if err != nil {
			return err
		}
		return png.Encode(w, img)

	case FormatJPEG:
		img, err := shot.Decode()
		if err != nil {
			return err
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})

	case FormatPDF:
		return encodePDF(w, shot)

	default:
		return fmt.Errorf("%w: unknown output format %q", sizes.ErrConfiguration, format)
	}
}

// encodePDF places the image on a single page of the image's own size.
func encodePDF(w io.Writer, shot *screenshot.Shot) error {
	var buf bytes.Buffer
	if err := Encode(&buf, shot, FormatPNG, 0); err != nil {
		return err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return fmt.Errorf("pdf: read image size: %w", err)
	}

	imp := pdfcpu.DefaultImportConfig()
	imp.PageDim = &types.Dim{Width: float64(cfg.Width), Height: float64(cfg.Height)}
	imp.UserDim = true

	conf := model.NewDefaultConfiguration()
	if err := api.ImportImages(nil, w, []io.Reader{&buf}, imp, conf); err != nil {
		return fmt.Errorf("pdf: import image: %w", err)
	}
	return nil
}

// Writer saves shots as files.
type Writer struct {
	dir     string
	format  Format
	quality int
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithFormat sets the output format. The default is PNG.
func WithFormat(format Format) WriterOption {
	return func(w *Writer) {
		w.format = format
	}
}

// WithQuality sets the JPEG quality.
func WithQuality(quality int) WriterOption {
	return func(w *Writer) {
		w.quality = quality
	}
}

// NewWriter creates a writer saving into dir, or the system temp directory
// when dir is empty.
func NewWriter(dir string, opts ...WriterOption) *Writer {
	w := &Writer{
		dir:     dir,
		format:  FormatPNG,
		quality: DefaultQuality,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write saves shot and returns the file path. The file is named after name
// through pageutil.ConvertToFileName; an empty name gets a unique
// "screenshot-*" file.
func (w *Writer) Write(name string, shot *screenshot.Shot) (string, error) {
	dir := w.dir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, shot, w.format, w.quality); err != nil {
		return "", fmt.Errorf("encode %s: %w", w.format, err)
	}

	var (
		f   *os.File
		err error
	)
	if base := pageutil.ConvertToFileName(name); base != "" {
		f, err = os.Create(filepath.Join(dir, base+"."+w.format.Ext()))
	} else {
		f, err = os.CreateTemp(dir, "screenshot-*."+w.format.Ext())
	}
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write %s: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close %s: %w", f.Name(), err)
	}
	return f.Name(), nil
}
