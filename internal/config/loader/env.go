package loader

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
)

// DefaultEnvPrefix is the prefix of environment variables read by EnvLoader.
const DefaultEnvPrefix = "MARGINALIA_"

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "MARGINALIA_")
	mapping map[string]string // Env var -> config path
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "MARGINALIA_").
func NewEnvLoader(prefix string) *EnvLoader {
	return NewEnvLoaderWithMapping(prefix, defaultEnvMapping(prefix))
}

// NewEnvLoaderWithMapping creates a loader with custom environment variable mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
		environ: os.Environ,
	}
}

// defaultEnvMapping names every setting whose path does not follow the
// SECTION_WORD_WORD convention.
func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "DIFF_ALGORITHM":                      "diff.algorithm",
		prefix + "DIFF_MAX_MEMORY_MB":                  "diff.maxMemoryMB",
		prefix + "HIGHLIGHT_STYLE":                     "highlight.style",
		prefix + "HIGHLIGHT_ACTIVE_STYLE":              "highlight.activeStyle",
		prefix + "FIND_REPLACE_MAX_REPLACE_ITERATIONS": "findReplace.maxReplaceIterations",
		prefix + "MAX_REPLACE_ITERATIONS":              "findReplace.maxReplaceIterations",
		prefix + "MAX_UNDO_ENTRIES":                    "history.maxUndoEntries",
		prefix + "LOG_LEVEL":                           "logging.level",
		prefix + "LOG_FORMAT":                          "logging.format",
		prefix + "STORE_DIR":                           "store.dir",
		prefix + "STORE_CACHE_SIZE_MAX":                "store.cacheSizeMax",
		prefix + "STORE_COMPRESS":                      "store.compress",
	}
}

// Load reads environment variables and returns a configuration map.
// Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, env := range l.environ() {
		if !strings.HasPrefix(env, l.prefix) {
			continue
		}
		name, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}

		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		SetByPath(config, path, l.parseValue(value))
	}

	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// RemoveMapping removes an environment variable mapping.
func (l *EnvLoader) RemoveMapping(envVar string) {
	delete(l.mapping, envVar)
}

// envToPath converts MARGINALIA_HISTORY_MAX_UNDO_ENTRIES to
// history.maxUndoEntries.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.TrimPrefix(env, l.prefix)
	parts := strings.Split(name, "_")
	if name == "" || len(parts) == 0 {
		return ""
	}

	section := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return section
	}

	var setting strings.Builder
	setting.WriteString(strings.ToLower(parts[1]))
	for _, part := range parts[2:] {
		if part == "" {
			continue
		}
		setting.WriteString(strings.ToUpper(part[:1]))
		setting.WriteString(strings.ToLower(part[1:]))
	}
	return section + "." + setting.String()
}

// parseValue attempts to parse the string value into an appropriate type.
func (l *EnvLoader) parseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}

	return s
}
