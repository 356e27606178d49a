package config

import (
	"github.com/dshills/marginalia/internal/engine/diff"
	"github.com/dshills/marginalia/internal/engine/findreplace"
	"github.com/dshills/marginalia/internal/engine/history"
)

// Defaults for settings without an owning package constant.
const (
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultStoreDir     = "~/.marginalia/snapshots"
	DefaultCacheSizeMax = 1024 * 1024
)

// DiffConfig selects and tunes the diff engine.
type DiffConfig struct {
	// Algorithm is "dmp" or "myers".
	Algorithm string

	// MaxMemoryMB bounds the Myers trace. Negative disables the bound.
	MaxMemoryMB int
}

// HighlightConfig names the inline styles used for search matches.
type HighlightConfig struct {
	Style       string
	ActiveStyle string
}

// FindReplaceConfig bounds replace-all.
type FindReplaceConfig struct {
	MaxReplaceIterations int
}

// HistoryConfig bounds the undo stack.
type HistoryConfig struct {
	MaxUndoEntries int
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  string
	Format string
}

// StoreConfig configures the snapshot store.
type StoreConfig struct {
	// Dir is the snapshot directory. A leading ~ is expanded by the store.
	Dir string

	// CacheSizeMax is the in-memory cache size in bytes.
	CacheSizeMax int

	// Compress enables xz compression of stored snapshots.
	Compress bool
}

// Diff returns the diff section.
func (c *Config) Diff() DiffConfig {
	return DiffConfig{
		Algorithm:   c.getStringOr("diff.algorithm", diff.AlgorithmDMP),
		MaxMemoryMB: c.getIntOr("diff.maxMemoryMB", diff.DefaultMaxMemoryMB),
	}
}

// Highlight returns the highlight section.
func (c *Config) Highlight() HighlightConfig {
	return HighlightConfig{
		Style:       c.getStringOr("highlight.style", findreplace.DefaultStyle),
		ActiveStyle: c.getStringOr("highlight.activeStyle", findreplace.DefaultActiveStyle),
	}
}

// FindReplace returns the findReplace section.
func (c *Config) FindReplace() FindReplaceConfig {
	return FindReplaceConfig{
		MaxReplaceIterations: c.getIntOr("findReplace.maxReplaceIterations", findreplace.DefaultMaxReplaceIterations),
	}
}

// History returns the history section.
func (c *Config) History() HistoryConfig {
	return HistoryConfig{
		MaxUndoEntries: c.getIntOr("history.maxUndoEntries", history.DefaultMaxEntries),
	}
}

// Logging returns the logging section.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level:  c.getStringOr("logging.level", DefaultLogLevel),
		Format: c.getStringOr("logging.format", DefaultLogFormat),
	}
}

// Store returns the store section.
func (c *Config) Store() StoreConfig {
	return StoreConfig{
		Dir:          c.getStringOr("store.dir", DefaultStoreDir),
		CacheSizeMax: c.getIntOr("store.cacheSizeMax", DefaultCacheSizeMax),
		Compress:     c.getBoolOr("store.compress", true),
	}
}

// defaultConfig returns the built-in defaults layer.
func defaultConfig() map[string]any {
	return map[string]any{
		"diff": map[string]any{
			"algorithm":   diff.AlgorithmDMP,
			"maxMemoryMB": diff.DefaultMaxMemoryMB,
		},
		"highlight": map[string]any{
			"style":       findreplace.DefaultStyle,
			"activeStyle": findreplace.DefaultActiveStyle,
		},
		"findReplace": map[string]any{
			"maxReplaceIterations": findreplace.DefaultMaxReplaceIterations,
		},
		"history": map[string]any{
			"maxUndoEntries": history.DefaultMaxEntries,
		},
		"logging": map[string]any{
			"level":  DefaultLogLevel,
			"format": DefaultLogFormat,
		},
		"store": map[string]any{
			"dir":          DefaultStoreDir,
			"cacheSizeMax": DefaultCacheSizeMax,
			"compress":     true,
		},
	}
}

func (c *Config) getStringOr(path string, defaultValue string) string {
	v, err := c.GetString(path)
	if err != nil {
		if err != ErrSettingNotFound {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getIntOr(path string, defaultValue int) int {
	v, err := c.GetInt(path)
	if err != nil {
		if err != ErrSettingNotFound {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getBoolOr(path string, defaultValue bool) bool {
	v, err := c.GetBool(path)
	if err != nil {
		if err != ErrSettingNotFound {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) recordConfigError(path string, err error) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.configErrors == nil {
		c.configErrors = make(map[string]error)
	}
	c.configErrors[path] = err
}

// ConfigErrors returns type errors recorded while reading sections.
func (c *Config) ConfigErrors() map[string]error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	out := make(map[string]error, len(c.configErrors))
	for k, v := range c.configErrors {
		out[k] = v
	}
	return out
}
