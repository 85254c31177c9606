// Package config holds ctxweave configuration: which host pages to watch,
// where to find their editable surfaces, and browser/logging settings. The
// host rule list is consumed by the watcher, never produced by the core.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Surface kinds a host rule can declare.
const (
	SurfaceLinear     = "linear"
	SurfaceStructured = "structured"
)

// HostRule maps a host suffix to the locator of its chat input surface.
type HostRule struct {
	// HostSuffix matches page hostnames by suffix, e.g. "claude.ai".
	HostSuffix string `yaml:"host_suffix"`
	// Locator is the CSS selector for the editable element.
	Locator string `yaml:"locator"`
	// Surface is "linear" (textarea-like) or "structured" (contenteditable).
	Surface string `yaml:"surface"`
}

// Matches reports whether the rule applies to the hostname.
func (r HostRule) Matches(hostname string) bool {
	return hostname == r.HostSuffix || strings.HasSuffix(hostname, "."+r.HostSuffix)
}

// BrowserConfig configures the CDP attachment.
type BrowserConfig struct {
	// DebuggerURL attaches to a running browser; empty launches one.
	DebuggerURL string `yaml:"debugger_url"`
	Headless    bool   `yaml:"headless"`
	// PollInterval is how often open pages are re-scanned, in milliseconds.
	PollIntervalMs int `yaml:"poll_interval_ms"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
	JSON  bool `yaml:"json"`
}

// Config is the full ctxweave configuration.
type Config struct {
	Hosts []HostRule `yaml:"hosts"`
	// SearchDebounceMs delays search fetches while the user types.
	SearchDebounceMs int           `yaml:"search_debounce_ms"`
	Browser          BrowserConfig `yaml:"browser"`
	Logging          LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the shipped defaults.
func DefaultConfig() Config {
	return Config{
		Hosts: []HostRule{
			{HostSuffix: "claude.ai", Locator: "div[contenteditable=\"true\"]", Surface: SurfaceStructured},
			{HostSuffix: "chatgpt.com", Locator: "#prompt-textarea", Surface: SurfaceStructured},
			{HostSuffix: "localhost", Locator: "textarea", Surface: SurfaceLinear},
		},
		SearchDebounceMs: 300,
		Browser: BrowserConfig{
			PollIntervalMs: 1000,
		},
	}
}

// Load reads and validates a config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the config as yaml, creating parent directories.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects rules the watcher cannot act on.
func (c Config) Validate() error {
	for i, r := range c.Hosts {
		if r.HostSuffix == "" {
			return fmt.Errorf("hosts[%d]: host_suffix required", i)
		}
		if r.Locator == "" {
			return fmt.Errorf("hosts[%d] (%s): locator required", i, r.HostSuffix)
		}
		switch r.Surface {
		case SurfaceLinear, SurfaceStructured:
		default:
			return fmt.Errorf("hosts[%d] (%s): surface must be %q or %q, got %q",
				i, r.HostSuffix, SurfaceLinear, SurfaceStructured, r.Surface)
		}
	}
	if c.SearchDebounceMs < 0 {
		return fmt.Errorf("search_debounce_ms must not be negative")
	}
	return nil
}

// RuleFor returns the first rule matching the hostname.
func (c Config) RuleFor(hostname string) (HostRule, bool) {
	for _, r := range c.Hosts {
		if r.Matches(hostname) {
			return r, true
		}
	}
	return HostRule{}, false
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CTXWEAVE_DEBUGGER_URL"); v != "" {
		c.Browser.DebuggerURL = v
	}
	if os.Getenv("CTXWEAVE_DEBUG") == "1" {
		c.Logging.Debug = true
	}
}
