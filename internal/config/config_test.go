package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.Hosts) == 0 {
		t.Fatal("expected default host rules")
	}
	if cfg.SearchDebounceMs != 300 {
		t.Errorf("expected SearchDebounceMs=300, got %d", cfg.SearchDebounceMs)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("CTXWEAVE_DEBUGGER_URL", "")
	t.Setenv("CTXWEAVE_DEBUG", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Hosts = []HostRule{{HostSuffix: "example.com", Locator: "textarea", Surface: SurfaceLinear}}
	cfg.SearchDebounceMs = 150

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Hosts) != 1 || loaded.Hosts[0].HostSuffix != "example.com" {
		t.Errorf("hosts = %+v", loaded.Hosts)
	}
	if loaded.SearchDebounceMs != 150 {
		t.Errorf("SearchDebounceMs = %d, want 150", loaded.SearchDebounceMs)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CTXWEAVE_DEBUGGER_URL", "ws://127.0.0.1:9222")
	t.Setenv("CTXWEAVE_DEBUG", "1")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := DefaultConfig().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Browser.DebuggerURL != "ws://127.0.0.1:9222" {
		t.Errorf("DebuggerURL = %q", loaded.Browser.DebuggerURL)
	}
	if !loaded.Logging.Debug {
		t.Error("expected Logging.Debug override")
	}
}

func TestConfig_ValidateRejectsBadRules(t *testing.T) {
	cases := []struct {
		name string
		rule HostRule
	}{
		{"missing suffix", HostRule{Locator: "textarea", Surface: SurfaceLinear}},
		{"missing locator", HostRule{HostSuffix: "a.com", Surface: SurfaceLinear}},
		{"bad surface kind", HostRule{HostSuffix: "a.com", Locator: "textarea", Surface: "richtext"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{Hosts: []HostRule{tc.rule}}
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestHostRule_Matches(t *testing.T) {
	r := HostRule{HostSuffix: "claude.ai"}
	if !r.Matches("claude.ai") {
		t.Error("exact hostname must match")
	}
	if !r.Matches("www.claude.ai") {
		t.Error("subdomain must match")
	}
	if r.Matches("notclaude.ai") {
		t.Error("suffix match must respect label boundaries")
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	t.Setenv("CTXWEAVE_DEBUGGER_URL", "")
	t.Setenv("CTXWEAVE_DEBUG", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := DefaultConfig().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := make(chan Config, 1)
	w, err := NewWatcher(path, func(c Config) {
		select {
		case reloaded <- c:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	data := "search_debounce_ms: 123\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}

	select {
	case got := <-reloaded:
		if got.SearchDebounceMs != 123 {
			t.Errorf("SearchDebounceMs = %d, want 123", got.SearchDebounceMs)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
