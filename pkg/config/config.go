package config

import (
	"fmt"
	"sync"
)

var (
	globalManager *Manager
	globalMu      sync.Mutex
)

// NewDefaultManager creates a manager over the store at configPath with the
// capture and browser sections registered and loaded.
func NewDefaultManager(configPath string) (*Manager, error) {
	store, err := NewFileStore(configPath)
	if err != nil {
		return nil, err
	}

	manager := NewManager(store)
	if err := manager.RegisterSection(NewCaptureSection()); err != nil {
		return nil, err
	}
	if err := manager.RegisterSection(NewBrowserSection()); err != nil {
		return nil, err
	}

	if err := manager.LoadAll(); err != nil {
		return nil, err
	}
	if err := manager.ValidateAll(); err != nil {
		return nil, fmt.Errorf("config %s: %w", store.Path(), err)
	}
	return manager, nil
}

// Initialize loads the global configuration. An empty configPath uses
// ~/.fullshot/config.json.
func Initialize(configPath string) error {
	manager, err := NewDefaultManager(configPath)
	if err != nil {
		return err
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	globalManager = manager
	return nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}
	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

// GetCapture returns the global capture section, or nil before Initialize.
func GetCapture() *CaptureSection {
	if !IsInitialized() {
		return nil
	}
	section, ok := Global().GetSection(SectionIDCapture)
	if !ok {
		return nil
	}
	capture, _ := section.(*CaptureSection)
	return capture
}

// GetBrowser returns the global browser section, or nil before Initialize.
func GetBrowser() *BrowserSection {
	if !IsInitialized() {
		return nil
	}
	section, ok := Global().GetSection(SectionIDBrowser)
	if !ok {
		return nil
	}
	browser, _ := section.(*BrowserSection)
	return browser
}
