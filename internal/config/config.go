package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/dshills/marginalia/internal/config/loader"
	"github.com/dshills/marginalia/internal/engine/diff"
	"github.com/dshills/marginalia/internal/logging"
)

// Layer names, lowest priority first.
const (
	LayerDefaults = "defaults"
	LayerFile     = "file"
	LayerEnv      = "env"
	LayerFlags    = "flags"
)

// layer is one named source of settings.
type layer struct {
	name string
	data map[string]any
}

// Config provides layered access to marginalia settings.
type Config struct {
	mu     sync.RWMutex
	layers []layer
	merged map[string]any

	errMu        sync.Mutex
	configErrors map[string]error

	fs          loader.FileSystem
	path        string
	requireFile bool
	envPrefix   string
	enableEnv   bool
	loadEnv     func() (map[string]any, error)
}

// Option configures a Config instance.
type Option func(*Config)

// WithFile sets the config file. A missing file is an error.
func WithFile(path string) Option {
	return func(c *Config) {
		c.path = path
		c.requireFile = true
	}
}

// WithOptionalFile sets a config file that is skipped when missing.
func WithOptionalFile(path string) Option {
	return func(c *Config) {
		c.path = path
		c.requireFile = false
	}
}

// WithFS sets the file system used to read the config file.
func WithFS(fsys loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fsys
	}
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// WithEnv enables or disables the environment layer.
func WithEnv(enable bool) Option {
	return func(c *Config) {
		c.enableEnv = enable
	}
}

// New creates a Config holding only the built-in defaults. Call Load to
// read the file and environment layers.
func New(opts ...Option) *Config {
	c := &Config{
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
		enableEnv: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.layers = []layer{{name: LayerDefaults, data: defaultConfig()}}
	c.merged = c.merge()
	return c
}

// Default returns a Config holding only the built-in defaults.
func Default() *Config {
	return New(WithEnv(false))
}

// Load reads the file and environment layers and rebuilds the merged view.
func (c *Config) Load(_ context.Context) error {
	layers := []layer{{name: LayerDefaults, data: defaultConfig()}}

	if c.path != "" {
		l, err := loader.ForPath(c.fs, c.path)
		if err != nil {
			return err
		}
		data, err := l.Load()
		if err != nil {
			return err
		}
		if data == nil && c.requireFile {
			return fmt.Errorf("%w: %s", ErrFileNotFound, c.path)
		}
		if data != nil {
			layers = append(layers, layer{name: LayerFile, data: data})
		}
	}

	if c.enableEnv {
		load := c.loadEnv
		if load == nil {
			load = loader.NewEnvLoader(c.envPrefix).Load
		}
		data, err := load()
		if err != nil {
			return fmt.Errorf("loading environment: %w", err)
		}
		if len(data) > 0 {
			layers = append(layers, layer{name: LayerEnv, data: data})
		}
	}

	c.mu.Lock()
	c.layers = layers
	c.merged = c.merge()
	c.mu.Unlock()

	c.errMu.Lock()
	c.configErrors = nil
	c.errMu.Unlock()
	return nil
}

// merge folds layers lowest priority first. Callers hold mu.
func (c *Config) merge() map[string]any {
	merged := map[string]any{}
	for _, l := range c.layers {
		merged = loader.DeepMerge(merged, l.data)
	}
	return merged
}

// Layers returns the names of the loaded layers, lowest priority first.
func (c *Config) Layers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.layers))
	for i, l := range c.layers {
		names[i] = l.name
	}
	return names
}

// Path returns the configured file path.
func (c *Config) Path() string {
	return c.path
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.GetByPath(c.merged, path)
}

// Set overrides a value in the flags layer, which sits above every other
// layer. A later Load discards it.
func (c *Config) Set(path string, value any) error {
	if path == "" || strings.HasPrefix(path, ".") || strings.HasSuffix(path, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.layers[len(c.layers)-1].name != LayerFlags {
		c.layers = append(c.layers, layer{name: LayerFlags, data: map[string]any{}})
	}
	loader.SetByPath(c.layers[len(c.layers)-1].data, path, value)
	c.merged = c.merge()
	return nil
}

// Merged returns a copy of the fully merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.Clone(c.merged)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case uint64:
		return int(val), nil
	case float64:
		if val != float64(int(val)) {
			return 0, &TypeError{Path: path, Expected: "int", Actual: "float64"}
		}
		return int(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// Validate checks every section and joins all failures.
func (c *Config) Validate() error {
	var errs []error

	d := c.Diff()
	if _, err := diff.New(d.Algorithm, diff.Options{MaxMemoryMB: d.MaxMemoryMB}); err != nil {
		errs = append(errs, &ValidationError{
			Path: "diff.algorithm", Message: "must be dmp or myers",
			Value: d.Algorithm, Code: ErrCodeInvalidEnum,
		})
	}

	h := c.Highlight()
	if h.Style == "" {
		errs = append(errs, &ValidationError{
			Path: "highlight.style", Message: "must not be empty",
			Value: h.Style, Code: ErrCodeRequiredMissing,
		})
	}
	if h.ActiveStyle == "" {
		errs = append(errs, &ValidationError{
			Path: "highlight.activeStyle", Message: "must not be empty",
			Value: h.ActiveStyle, Code: ErrCodeRequiredMissing,
		})
	}

	if n := c.FindReplace().MaxReplaceIterations; n <= 0 {
		errs = append(errs, &ValidationError{
			Path: "findReplace.maxReplaceIterations", Message: "must be positive",
			Value: n, Code: ErrCodeOutOfRange,
		})
	}
	if n := c.History().MaxUndoEntries; n <= 0 {
		errs = append(errs, &ValidationError{
			Path: "history.maxUndoEntries", Message: "must be positive",
			Value: n, Code: ErrCodeOutOfRange,
		})
	}

	lg := c.Logging()
	if _, err := logging.ParseLevel(lg.Level); err != nil {
		errs = append(errs, &ValidationError{
			Path: "logging.level", Message: "must be debug, info, warn or error",
			Value: lg.Level, Code: ErrCodeInvalidEnum,
		})
	}
	if _, err := logging.ParseFormat(lg.Format); err != nil {
		errs = append(errs, &ValidationError{
			Path: "logging.format", Message: "must be text or json",
			Value: lg.Format, Code: ErrCodeInvalidEnum,
		})
	}

	s := c.Store()
	if s.Dir == "" {
		errs = append(errs, &ValidationError{
			Path: "store.dir", Message: "must not be empty",
			Value: s.Dir, Code: ErrCodeRequiredMissing,
		})
	}
	if s.CacheSizeMax < 0 {
		errs = append(errs, &ValidationError{
			Path: "store.cacheSizeMax", Message: "must not be negative",
			Value: s.CacheSizeMax, Code: ErrCodeOutOfRange,
		})
	}

	for path, err := range c.ConfigErrors() {
		errs = append(errs, &ValidationError{
			Path: path, Message: err.Error(), Code: ErrCodeTypeMismatch,
		})
	}

	return errors.Join(errs...)
}

// IsNotExist reports whether err means a config file was missing.
func IsNotExist(err error) bool {
	return errors.Is(err, ErrFileNotFound) || errors.Is(err, fs.ErrNotExist)
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case int, int64, uint64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
