// Package config loads and saves the persistent daemon configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config is the persistent application configuration
type Config struct {
	// Pipeline timing
	Timing TimingConfig `json:"timing"`

	// Analysis engine settings
	Engine EngineConfig `json:"engine"`

	// Spatial mapping settings
	Spatial SpatialConfig `json:"spatial"`

	// UI preferences for the status TUI
	UI UIConfig `json:"ui"`
}

// TimingConfig holds debounce and settle intervals
type TimingConfig struct {
	EditDebounceMs   int `json:"edit_debounce_ms"`   // Quiet period after typing
	WindowDebounceMs int `json:"window_debounce_ms"` // Quiet period after move/scroll
	SettleDelayMs    int `json:"settle_delay_ms"`    // Wait after a correction before re-reading
	ClipboardDelayMs int `json:"clipboard_delay_ms"` // Wait before restoring the clipboard
}

// EngineConfig holds analysis engine settings
type EngineConfig struct {
	RetryDelaysMs  []int  `json:"retry_delays_ms"`          // Backoff schedule for degraded engine
	MaxSuggestions int    `json:"max_suggestions"`          // Suggestions shown per finding
	MaxLintPerSec  int    `json:"max_lint_per_sec"`         // Rate limit on engine calls
	WordListPath   string `json:"word_list_path,omitempty"` // Built-in engine base word list
}

// SpatialConfig holds bounds-search settings
type SpatialConfig struct {
	DescendantDepth int    `json:"descendant_depth"` // Traversal bound for child bounds search
	BoundsTieBreak  string `json:"bounds_tie_break"` // "smallest-area" (only option today)
}

// UIConfig holds status TUI preferences
type UIConfig struct {
	Theme     string `json:"theme"`
	EventFeed bool   `json:"event_feed"` // Show live event feed panel
	FeedLines int    `json:"feed_lines"` // Event feed height
}

// Bounds for the descendant search depth; values outside are clamped.
const (
	minDescendantDepth = 4
	maxDescendantDepth = 30
)

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Timing: TimingConfig{
			EditDebounceMs:   400,
			WindowDebounceMs: 300,
			SettleDelayMs:    150,
			ClipboardDelayMs: 300,
		},
		Engine: EngineConfig{
			RetryDelaysMs:  []int{2000, 5000, 10000},
			MaxSuggestions: 5,
			MaxLintPerSec:  10,
		},
		Spatial: SpatialConfig{
			DescendantDepth: 12,
			BoundsTieBreak:  "smallest-area",
		},
		UI: UIConfig{
			Theme:     "dark",
			EventFeed: true,
			FeedLines: 8,
		},
	}
}

// DataDir returns the daemon's data directory (~/.proofd)
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".proofd")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.json")
}

// Load reads config from disk, or returns defaults
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads config from an explicit path. Missing or unparseable
// files yield defaults rather than an error: a broken config must not
// keep the daemon from starting.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), nil
	}
	cfg.clamp()
	return cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes config to an explicit path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// clamp pulls out-of-range values back into their valid windows.
func (c *Config) clamp() {
	if c.Spatial.DescendantDepth < minDescendantDepth {
		c.Spatial.DescendantDepth = minDescendantDepth
	}
	if c.Spatial.DescendantDepth > maxDescendantDepth {
		c.Spatial.DescendantDepth = maxDescendantDepth
	}
	if c.Timing.EditDebounceMs <= 0 {
		c.Timing.EditDebounceMs = 400
	}
	if c.Timing.WindowDebounceMs <= 0 {
		c.Timing.WindowDebounceMs = 300
	}
	if c.Engine.MaxSuggestions <= 0 {
		c.Engine.MaxSuggestions = 5
	}
	if c.Engine.MaxLintPerSec <= 0 {
		c.Engine.MaxLintPerSec = 10
	}
	if len(c.Engine.RetryDelaysMs) == 0 {
		c.Engine.RetryDelaysMs = []int{2000, 5000, 10000}
	}
}

// EditDebounce returns the typing quiet period as a duration.
func (c *Config) EditDebounce() time.Duration {
	return time.Duration(c.Timing.EditDebounceMs) * time.Millisecond
}

// WindowDebounce returns the move/scroll quiet period as a duration.
func (c *Config) WindowDebounce() time.Duration {
	return time.Duration(c.Timing.WindowDebounceMs) * time.Millisecond
}

// SettleDelay returns the post-correction settle delay as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Timing.SettleDelayMs) * time.Millisecond
}

// ClipboardDelay returns the clipboard restore delay as a duration.
func (c *Config) ClipboardDelay() time.Duration {
	return time.Duration(c.Timing.ClipboardDelayMs) * time.Millisecond
}

// RetryDelays returns the engine backoff schedule as durations.
func (c *Config) RetryDelays() []time.Duration {
	out := make([]time.Duration, len(c.Engine.RetryDelaysMs))
	for i, ms := range c.Engine.RetryDelaysMs {
		out[i] = time.Duration(ms) * time.Millisecond
	}
	return out
}
