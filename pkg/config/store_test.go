package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNewFileStore(t *testing.T) {
	t.Run("uses custom path", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")

		store, err := NewFileStore(configPath)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}
		if store.Path() != configPath {
			t.Errorf("Expected path %s, got %s", configPath, store.Path())
		}
		if store.IsModified() {
			t.Error("New store should not be modified")
		}
	})

	t.Run("defaults to home directory", func(t *testing.T) {
		want, err := DefaultPath()
		if err != nil {
			t.Skipf("no home directory: %v", err)
		}

		homeDir, _ := os.UserHomeDir()
		if want != filepath.Join(homeDir, ".fullshot", "config.json") {
			t.Errorf("Unexpected default path %s", want)
		}
	})

	t.Run("loads existing file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		writeConfigFile(t, configPath, map[string]map[string]interface{}{
			"capture": {"tolerance": float64(25)},
		})

		store, err := NewFileStore(configPath)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}

		section, _ := store.GetSection("capture")
		if section["tolerance"] != float64(25) {
			t.Errorf("Expected tolerance 25, got %v", section["tolerance"])
		}
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(configPath, []byte("{invalid json}"), 0600); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		if _, err := NewFileStore(configPath); err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})
}

func TestFileStore_Load(t *testing.T) {
	t.Run("missing file is empty", func(t *testing.T) {
		store := &FileStore{path: filepath.Join(t.TempDir(), "missing.json")}
		if err := store.Load(); err != nil {
			t.Fatalf("Load should not fail for missing file: %v", err)
		}
		if ids := store.Sections(); len(ids) != 0 {
			t.Errorf("Expected no sections, got %v", ids)
		}
	})

	t.Run("file without sections", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(configPath, []byte(`{"version":"1"}`), 0600); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		store := &FileStore{path: configPath}
		if err := store.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if err := store.SetSection("browser", map[string]interface{}{"headless": true}); err != nil {
			t.Fatalf("SetSection failed: %v", err)
		}
	})

	t.Run("discards unsaved changes", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		store, _ := NewFileStore(configPath)
		store.SetSection("capture", map[string]interface{}{"format": "jpeg"})

		if err := store.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if store.IsModified() {
			t.Error("Load should clear the modified flag")
		}
		if ids := store.Sections(); len(ids) != 0 {
			t.Errorf("Expected reload to drop unsaved sections, got %v", ids)
		}
	})
}

func TestFileStore_Save(t *testing.T) {
	t.Run("round trips through disk", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")

		store, _ := NewFileStore(configPath)
		store.SetSection("browser", map[string]interface{}{
			"backend":     "rod",
			"window_size": "1280x800",
		})
		if !store.IsModified() {
			t.Error("Store should be modified after SetSection")
		}
		if err := store.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if store.IsModified() {
			t.Error("Store should not be modified after Save")
		}

		var file configFile
		raw, err := os.ReadFile(configPath)
		if err != nil {
			t.Fatalf("Failed to read saved config: %v", err)
		}
		if err := json.Unmarshal(raw, &file); err != nil {
			t.Fatalf("Saved config is not valid JSON: %v", err)
		}
		if file.Version != fileVersion {
			t.Errorf("Expected version %s, got %s", fileVersion, file.Version)
		}

		reopened, err := NewFileStore(configPath)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}
		section, _ := reopened.GetSection("browser")
		if section["window_size"] != "1280x800" {
			t.Errorf("Expected window_size 1280x800, got %v", section["window_size"])
		}
	})

	t.Run("creates missing directories", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "nested", "dir", "config.json")

		store, _ := NewFileStore(configPath)
		store.SetSection("capture", map[string]interface{}{"tolerance": 40})
		if err := store.Save(); err != nil {
			t.Fatalf("Save should create nested directories: %v", err)
		}
		if _, err := os.Stat(configPath); err != nil {
			t.Errorf("Config file not written: %v", err)
		}
	})

	t.Run("leaves no temp files", func(t *testing.T) {
		dir := t.TempDir()
		store, _ := NewFileStore(filepath.Join(dir, "config.json"))
		store.SetSection("capture", map[string]interface{}{"tolerance": 40})
		if err := store.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir failed: %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "config.json" {
			t.Errorf("Expected only config.json, got %v", entries)
		}
	})
}

func TestFileStore_SectionsAreCopied(t *testing.T) {
	store := &FileStore{}

	data := map[string]interface{}{"format": "png"}
	store.SetSection("capture", data)
	data["format"] = "pdf"

	got, _ := store.GetSection("capture")
	if got["format"] != "png" {
		t.Error("Caller modification after SetSection affected the store")
	}

	got["format"] = "jpeg"
	again, _ := store.GetSection("capture")
	if again["format"] != "png" {
		t.Error("Modification of a returned section affected the store")
	}
}

func TestFileStore_Sections(t *testing.T) {
	store := &FileStore{}
	store.SetSection("capture", nil)
	store.SetSection("browser", nil)

	if got := store.Sections(); !reflect.DeepEqual(got, []string{"browser", "capture"}) {
		t.Errorf("Expected sorted section IDs, got %v", got)
	}
}

func writeConfigFile(t *testing.T, path string, sections map[string]map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(configFile{Version: fileVersion, Sections: sections})
	if err != nil {
		t.Fatalf("Failed to encode config: %v", err)
	}
	if err := os.WriteFile(path, raw, 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}
