// Package config handles loading and hot-reloading lectern configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/jackzampolin/lectern/internal/pipeline"
	"github.com/jackzampolin/lectern/internal/structure"
)

// Config is the full lectern configuration. Every heuristic tunable of the
// pipeline lives here so behavior is reproducible across locales.
type Config struct {
	// Languages selects the pattern vocabularies, e.g. ["en", "pt"].
	Languages []string `mapstructure:"languages" yaml:"languages"`

	// ReadingRates are the words-per-minute constants for the slow,
	// medium and fast narration-speed estimates.
	ReadingRates structure.Rates `mapstructure:"reading_rates" yaml:"reading_rates"`

	Cleaner    CleanerConfig    `mapstructure:"cleaner" yaml:"cleaner"`
	Classifier ClassifierConfig `mapstructure:"classifier" yaml:"classifier"`
	OCR        OCRConfig        `mapstructure:"ocr" yaml:"ocr"`
}

// CleanerConfig tunes running header/footer removal.
type CleanerConfig struct {
	// RepetitionThreshold is the fraction of pages on which an edge line
	// must repeat before it is removed everywhere.
	RepetitionThreshold float64 `mapstructure:"repetition_threshold" yaml:"repetition_threshold"`
	// EdgeWindow is how many lines at each page edge are inspected.
	EdgeWindow int `mapstructure:"edge_window" yaml:"edge_window"`
}

// ClassifierConfig tunes line classification.
type ClassifierConfig struct {
	// MaxEdgeLineLength is the longest a line may be and still count as a
	// running header or footer.
	MaxEdgeLineLength int `mapstructure:"max_edge_line_length" yaml:"max_edge_line_length"`
	// NumeralHeadings treats a bare number away from the page edges as a
	// chapter heading instead of a page number.
	NumeralHeadings bool `mapstructure:"numeral_headings" yaml:"numeral_headings"`
}

// OCRConfig controls the OCR fallback for pages without a text layer.
type OCRConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Command is the OCR binary, tesseract by default.
	Command    string `mapstructure:"command" yaml:"command"`
	DPI        int    `mapstructure:"dpi" yaml:"dpi"`
	MaxRetries int    `mapstructure:"max_retries" yaml:"max_retries"`
}

// PipelineSettings converts the configuration into pipeline settings.
func (c *Config) PipelineSettings() pipeline.Settings {
	return pipeline.Settings{
		Languages:           c.Languages,
		Rates:               c.ReadingRates,
		RepetitionThreshold: c.Cleaner.RepetitionThreshold,
		EdgeWindow:          c.Cleaner.EdgeWindow,
		MaxEdgeLineLength:   c.Classifier.MaxEdgeLineLength,
		NumeralHeadings:     c.Classifier.NumeralHeadings,
	}
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("languages", defaults.Languages)
	viper.SetDefault("reading_rates", defaults.ReadingRates)
	viper.SetDefault("cleaner", defaults.Cleaner)
	viper.SetDefault("classifier", defaults.Classifier)
	viper.SetDefault("ocr", defaults.OCR)

	// Environment variables with LECTERN_ prefix
	viper.SetEnvPrefix("LECTERN")
	viper.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.lectern")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Lectern configuration
# Pipeline heuristics are tunable here; the defaults match typical print books.
# reading_rates are words-per-minute for the slow/medium/fast duration estimates.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
