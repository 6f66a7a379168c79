package config

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/entrhq/fullshot/pkg/sizes"
)

const (
	// SectionIDBrowser is the identifier for the browser settings section
	SectionIDBrowser = "browser"

	// Browser backends.
	BackendPlaywright = "playwright"
	BackendRod        = "rod"

	defaultWindowSize     = "1280x800"
	defaultWaitUntil      = "load"
	defaultBrowserTimeout = 30 * time.Second
)

// BrowserSection selects and configures the browser driving the capture.
type BrowserSection struct {
	Backend    string        `json:"backend"`
	Headless   bool          `json:"headless"`
	WindowSize string        `json:"window_size"`
	Stealth    bool          `json:"stealth"`
	RemoteURL  string        `json:"remote_url"`
	Timeout    time.Duration `json:"timeout"`
	WaitUntil  string        `json:"wait_until"`
	mu         sync.RWMutex
}

// NewBrowserSection creates a browser section with default settings.
func NewBrowserSection() *BrowserSection {
	s := &BrowserSection{}
	s.Reset()
	return s
}

func (s *BrowserSection) ID() string {
	return SectionIDBrowser
}

func (s *BrowserSection) Title() string {
	return "Browser"
}

func (s *BrowserSection) Description() string {
	return "Browser backend, window size and connection settings used to load pages before capture."
}

// Data returns the current settings.
func (s *BrowserSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"backend":     s.Backend,
		"headless":    s.Headless,
		"window_size": s.WindowSize,
		"stealth":     s.Stealth,
		"remote_url":  s.RemoteURL,
		"timeout":     s.Timeout.String(),
		"wait_until":  s.WaitUntil,
	}
}

// SetData applies stored settings. Unknown keys are ignored.
func (s *BrowserSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	for key, value := range data {
		switch key {
		case "backend":
			s.Backend, err = stringValue(key, value)
		case "headless":
			s.Headless, err = boolValue(key, value)
		case "window_size":
			s.WindowSize, err = stringValue(key, value)
		case "stealth":
			s.Stealth, err = boolValue(key, value)
		case "remote_url":
			s.RemoteURL, err = stringValue(key, value)
		case "timeout":
			s.Timeout, err = durationValue(key, value)
		case "wait_until":
			s.WaitUntil, err = stringValue(key, value)
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
func (s *BrowserSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.Backend != BackendPlaywright && s.Backend != BackendRod {
		return fmt.Errorf("%w: unknown backend %q (want %s or %s)",
			sizes.ErrConfiguration, s.Backend, BackendPlaywright, BackendRod)
	}
	if _, err := sizes.Parse(s.WindowSize); err != nil {
		return fmt.Errorf("window_size: %w", err)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %v", sizes.ErrConfiguration, s.Timeout)
	}
	if s.RemoteURL != "" {
		if s.Backend != BackendRod {
			return fmt.Errorf("%w: remote_url is only supported by the %s backend", sizes.ErrConfiguration, BackendRod)
		}
		u, err := url.Parse(s.RemoteURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: invalid remote_url %q", sizes.ErrConfiguration, s.RemoteURL)
		}
	}
	if s.Stealth && s.Backend != BackendRod {
		return fmt.Errorf("%w: stealth is only supported by the %s backend", sizes.ErrConfiguration, BackendRod)
	}
	switch s.WaitUntil {
	case "", "load":
	case "domcontentloaded", "networkidle":
		if s.Backend != BackendPlaywright {
			return fmt.Errorf("%w: wait_until %q is only supported by the %s backend",
				sizes.ErrConfiguration, s.WaitUntil, BackendPlaywright)
		}
	default:
		return fmt.Errorf("%w: unknown wait_until %q (want load, domcontentloaded or networkidle)",
			sizes.ErrConfiguration, s.WaitUntil)
	}
	return nil
}

// Reset restores the defaults.
func (s *BrowserSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Backend = BackendPlaywright
	s.Headless = true
	s.WindowSize = defaultWindowSize
	s.Stealth = false
	s.RemoteURL = ""
	s.Timeout = defaultBrowserTimeout
	s.WaitUntil = defaultWaitUntil
}

// Window returns the parsed window size.
func (s *BrowserSection) Window() (sizes.Size, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sizes.Parse(s.WindowSize)
}
