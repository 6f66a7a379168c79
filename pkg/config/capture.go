package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/fullshot/pkg/screenshot"
	"github.com/entrhq/fullshot/pkg/sizes"
)

const (
	// SectionIDCapture is the identifier for the capture settings section
	SectionIDCapture = "capture"

	defaultFormat  = "png"
	defaultQuality = 90
)

// Output formats a capture can be written as.
var outputFormats = map[string]bool{
	"png":  true,
	"jpeg": true,
	"pdf":  true,
}

// CaptureSection holds the stitching and output settings.
type CaptureSection struct {
	Tolerance   int           `json:"tolerance"`
	SettleDelay time.Duration `json:"settle_delay"`
	CallTimeout time.Duration `json:"call_timeout"`
	Format      string        `json:"format"`
	Quality     int           `json:"quality"`
	mu          sync.RWMutex
}

// NewCaptureSection creates a capture section with default settings.
func NewCaptureSection() *CaptureSection {
	s := &CaptureSection{}
	s.Reset()
	return s
}

func (s *CaptureSection) ID() string {
	return SectionIDCapture
}

func (s *CaptureSection) Title() string {
	return "Capture"
}

func (s *CaptureSection) Description() string {
	return "Full-page stitching tolerance, scroll settle delay, browser call timeout and output encoding."
}

// Data returns the current settings.
func (s *CaptureSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"tolerance":    s.Tolerance,
		"settle_delay": s.SettleDelay.String(),
		"call_timeout": s.CallTimeout.String(),
		"format":       s.Format,
		"quality":      s.Quality,
	}
}

// SetData applies stored settings. Unknown keys are ignored.
func (s *CaptureSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	for key, value := range data {
		switch key {
		case "tolerance":
			s.Tolerance, err = intValue(key, value)
		case "settle_delay":
			s.SettleDelay, err = durationValue(key, value)
		case "call_timeout":
			s.CallTimeout, err = durationValue(key, value)
		case "format":
			s.Format, err = stringValue(key, value)
		case "quality":
			s.Quality, err = intValue(key, value)
		default:
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the settings. Failures match sizes.ErrConfiguration.
func (s *CaptureSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.Tolerance < 0:
		return fmt.Errorf("%w: tolerance must not be negative, got %d", sizes.ErrConfiguration, s.Tolerance)
	case s.SettleDelay < 0:
		return fmt.Errorf("%w: settle_delay must not be negative, got %v", sizes.ErrConfiguration, s.SettleDelay)
	case s.CallTimeout < 0:
		return fmt.Errorf("%w: call_timeout must not be negative, got %v", sizes.ErrConfiguration, s.CallTimeout)
	case !outputFormats[s.Format]:
		return fmt.Errorf("%w: unknown format %q (want png, jpeg or pdf)", sizes.ErrConfiguration, s.Format)
	case s.Quality < 1 || s.Quality > 100:
		return fmt.Errorf("%w: quality must be between 1 and 100, got %d", sizes.ErrConfiguration, s.Quality)
	}
	return nil
}

// Reset restores the defaults.
func (s *CaptureSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Tolerance = screenshot.DefaultTolerance
	s.SettleDelay = screenshot.DefaultSettleDelay
	s.CallTimeout = screenshot.DefaultCallTimeout
	s.Format = defaultFormat
	s.Quality = defaultQuality
}

// CapturerOptions returns the options for screenshot.New.
func (s *CaptureSection) CapturerOptions() []screenshot.CapturerOption {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return []screenshot.CapturerOption{
		screenshot.WithTolerance(s.Tolerance),
		screenshot.WithSettleDelay(s.SettleDelay),
		screenshot.WithCallTimeout(s.CallTimeout),
	}
}

// Output returns the output format and JPEG quality.
func (s *CaptureSection) Output() (format string, quality int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Format, s.Quality
}
