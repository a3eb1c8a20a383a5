// Package config loads chatctl settings from a file plus environment
// overrides, and watches the file for changes.
package config

import (
	"errors"
	"io/fs"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix makes DOCCHAT_API_KEY etc. override file values.
const EnvPrefix = "DOCCHAT"

// Keys viper binds so env-only settings work without a config file.
var keys = []string{"api_key", "base_url", "origin", "timeout", "model", "temperature", "max_tokens"}

// Config is the file/env representation of client settings. Only the
// API key is validated here; everything else falls back to SDK
// defaults when zero.
type Config struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Origin  string        `mapstructure:"origin"`
	Timeout time.Duration `mapstructure:"timeout"`

	// Headers are attached to every request.
	Headers map[string]string `mapstructure:"headers"`

	// Per-call defaults applied by chatctl unless overridden by flags.
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("config: api_key is required (set api_key or DOCCHAT_API_KEY)")
	}
	return nil
}

// Loader owns a viper instance and serves the latest valid Config.
type Loader struct {
	v *viper.Viper

	mu       sync.RWMutex
	value    Config
	watchers []func(old, new Config)
}

type Option func(*Loader)

// WithDefaults seeds default values for config keys.
func WithDefaults(defaults map[string]any) Option {
	return func(l *Loader) {
		for k, v := range defaults {
			l.v.SetDefault(k, v)
		}
	}
}

// Load reads the config file at path, applies env overrides and
// validates the result. A missing file is tolerated when the
// environment alone produces a valid config.
func Load(path string, opts ...Option) (*Loader, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	l := &Loader{v: v}
	for _, opt := range opts {
		opt(l)
	}

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg, err := l.unmarshal()
	if err != nil {
		return nil, err
	}
	l.value = cfg

	return l, nil
}

func (l *Loader) unmarshal() (Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Get returns the latest valid configuration.
func (l *Loader) Get() Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value
}

// OnChange registers a callback for config changes.
func (l *Loader) OnChange(fn func(old, new Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.watchers = append(l.watchers, fn)
}

// Watch starts watching the config file. Edits are debounced; an edit
// that fails to load or validate is ignored and the previous value
// stays in effect.
func (l *Loader) Watch() {
	var (
		debounceTimer *time.Timer
		debounceMu    sync.Mutex
	)

	l.v.OnConfigChange(func(_ fsnotify.Event) {
		debounceMu.Lock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(100*time.Millisecond, l.handleChange)
		debounceMu.Unlock()
	})
	l.v.WatchConfig()
}

func (l *Loader) handleChange() {
	if err := l.v.ReadInConfig(); err != nil {
		return
	}
	cfg, err := l.unmarshal()
	if err != nil {
		return
	}

	l.mu.Lock()
	old := l.value
	if reflect.DeepEqual(old, cfg) {
		l.mu.Unlock()
		return
	}
	l.value = cfg
	watchers := make([]func(old, new Config), len(l.watchers))
	copy(watchers, l.watchers)
	l.mu.Unlock()

	for _, fn := range watchers {
		func() {
			defer func() { _ = recover() }()
			fn(old, cfg)
		}()
	}
}
