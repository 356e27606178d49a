// Package config provides the configuration system for marginalia.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← MARGINALIA_*, highest priority
//	├─────────────────────────────┤
//	│  2. Config File             │  ← TOML or YAML
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Basic Usage
//
//	cfg := config.New(config.WithFile("marginalia.toml"))
//	if err := cfg.Load(ctx); err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	algo := cfg.Diff().Algorithm
//
// # Configuration Files
//
//	[diff]
//	algorithm = "myers"
//	maxMemoryMB = 64
//
//	[highlight]
//	style = "HIGHLIGHT"
//	activeStyle = "HIGHLIGHT_STRONG"
//
// Section accessors such as Diff and Store return snapshot structs. Values
// of the wrong type fall back to the default and are reported by
// ConfigErrors.
package config
