package config

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/dshills/marginalia/internal/engine/diff"
	"github.com/dshills/marginalia/internal/engine/findreplace"
	"github.com/dshills/marginalia/internal/engine/history"
)

type memFS struct {
	files map[string][]byte
}

func newMemFS(files map[string]string) *memFS {
	m := &memFS{files: make(map[string][]byte)}
	for k, v := range files {
		m.files[k] = []byte(v)
	}
	return m
}

func (m *memFS) Open(string) (fs.File, error) { return nil, fs.ErrNotExist }

func (m *memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *memFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return fileInfo(path), nil
	}
	return nil, fs.ErrNotExist
}

type fileInfo string

func (f fileInfo) Name() string       { return string(f) }
func (f fileInfo) Size() int64        { return 0 }
func (f fileInfo) Mode() fs.FileMode  { return 0644 }
func (f fileInfo) ModTime() time.Time { return time.Time{} }
func (f fileInfo) IsDir() bool        { return false }
func (f fileInfo) Sys() any           { return nil }

func noEnv(c *Config) {
	c.loadEnv = func() (map[string]any, error) { return nil, nil }
}

func TestDefaults(t *testing.T) {
	c := Default()

	if got := c.Diff(); got.Algorithm != diff.AlgorithmDMP || got.MaxMemoryMB != diff.DefaultMaxMemoryMB {
		t.Errorf("Diff() = %+v", got)
	}
	if got := c.Highlight(); got.Style != findreplace.DefaultStyle || got.ActiveStyle != findreplace.DefaultActiveStyle {
		t.Errorf("Highlight() = %+v", got)
	}
	if got := c.FindReplace().MaxReplaceIterations; got != findreplace.DefaultMaxReplaceIterations {
		t.Errorf("MaxReplaceIterations = %d", got)
	}
	if got := c.History().MaxUndoEntries; got != history.DefaultMaxEntries {
		t.Errorf("MaxUndoEntries = %d", got)
	}
	if got := c.Logging(); got.Level != "info" || got.Format != "text" {
		t.Errorf("Logging() = %+v", got)
	}
	if got := c.Store(); got.Dir != DefaultStoreDir || got.CacheSizeMax != DefaultCacheSizeMax || !got.Compress {
		t.Errorf("Store() = %+v", got)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadLayers(t *testing.T) {
	fsys := newMemFS(map[string]string{
		"/m.toml": `
[diff]
algorithm = "myers"

[history]
maxUndoEntries = 20
`,
	})

	c := New(WithFS(fsys), WithFile("/m.toml"))
	c.loadEnv = func() (map[string]any, error) {
		return map[string]any{"history": map[string]any{"maxUndoEntries": int64(5)}}, nil
	}
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := c.Diff().Algorithm; got != "myers" {
		t.Errorf("algorithm = %q, want myers (file beats defaults)", got)
	}
	if got := c.History().MaxUndoEntries; got != 5 {
		t.Errorf("maxUndoEntries = %d, want 5 (env beats file)", got)
	}
	if got := c.Diff().MaxMemoryMB; got != diff.DefaultMaxMemoryMB {
		t.Errorf("maxMemoryMB = %d, want default", got)
	}

	want := []string{LayerDefaults, LayerFile, LayerEnv}
	got := c.Layers()
	if len(got) != len(want) {
		t.Fatalf("Layers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Layers()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoadYAML(t *testing.T) {
	fsys := newMemFS(map[string]string{
		"/m.yaml": "highlight:\n  style: MARK\nstore:\n  compress: false\n",
	})

	c := New(WithFS(fsys), WithFile("/m.yaml"), noEnv)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := c.Highlight().Style; got != "MARK" {
		t.Errorf("style = %q, want MARK", got)
	}
	if c.Store().Compress {
		t.Error("compress should be false")
	}
}

func TestLoadMissingFile(t *testing.T) {
	fsys := newMemFS(nil)

	err := New(WithFS(fsys), WithFile("/none.toml"), noEnv).Load(context.Background())
	if !errors.Is(err, ErrFileNotFound) || !IsNotExist(err) {
		t.Errorf("required file: got %v, want ErrFileNotFound", err)
	}

	if err := New(WithFS(fsys), WithOptionalFile("/none.toml"), noEnv).Load(context.Background()); err != nil {
		t.Errorf("optional file: unexpected error %v", err)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	err := New(WithFS(newMemFS(nil)), WithFile("/m.ini"), noEnv).Load(context.Background())
	if err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MARGINALIA_DIFF_ALGORITHM", "myers")
	t.Setenv("MARGINALIA_MAX_REPLACE_ITERATIONS", "77")

	c := New()
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := c.Diff().Algorithm; got != "myers" {
		t.Errorf("algorithm = %q", got)
	}
	if got := c.FindReplace().MaxReplaceIterations; got != 77 {
		t.Errorf("maxReplaceIterations = %d", got)
	}
}

func TestSetOverridesEverything(t *testing.T) {
	c := New(noEnv)
	c.loadEnv = func() (map[string]any, error) {
		return map[string]any{"logging": map[string]any{"level": "error"}}, nil
	}
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := c.Set("logging.level", "debug"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := c.Logging().Level; got != "debug" {
		t.Errorf("level = %q, want debug", got)
	}
	if err := c.Set("logging.format", "json"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if n := len(c.Layers()); n != 3 {
		t.Errorf("expected a single flags layer, got %v", c.Layers())
	}

	for _, bad := range []string{"", ".a", "a."} {
		if err := c.Set(bad, 1); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Set(%q) = %v, want ErrInvalidPath", bad, err)
		}
	}
}

func TestGetters(t *testing.T) {
	c := Default()
	_ = c.Set("x.s", "str")
	_ = c.Set("x.i", int64(3))
	_ = c.Set("x.f", 4.0)
	_ = c.Set("x.frac", 4.5)
	_ = c.Set("x.b", true)

	if s, err := c.GetString("x.s"); err != nil || s != "str" {
		t.Errorf("GetString = %q, %v", s, err)
	}
	if i, err := c.GetInt("x.i"); err != nil || i != 3 {
		t.Errorf("GetInt = %d, %v", i, err)
	}
	if i, err := c.GetInt("x.f"); err != nil || i != 4 {
		t.Errorf("GetInt(float) = %d, %v", i, err)
	}
	if _, err := c.GetInt("x.frac"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetInt(4.5) err = %v, want ErrTypeMismatch", err)
	}
	if b, err := c.GetBool("x.b"); err != nil || !b {
		t.Errorf("GetBool = %v, %v", b, err)
	}
	if _, err := c.GetString("x.i"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetString(int) err = %v", err)
	}
	if _, err := c.GetBool("x.missing"); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("missing err = %v", err)
	}
}

func TestMergedIsACopy(t *testing.T) {
	c := Default()
	m := c.Merged()
	m["diff"].(map[string]any)["algorithm"] = "patience"
	if got := c.Diff().Algorithm; got != diff.AlgorithmDMP {
		t.Errorf("Merged() leaked internal state: %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		value any
		code  ValidationErrorCode
	}{
		{"unknown algorithm", "diff.algorithm", "patience", ErrCodeInvalidEnum},
		{"empty style", "highlight.style", "", ErrCodeRequiredMissing},
		{"empty active style", "highlight.activeStyle", "", ErrCodeRequiredMissing},
		{"zero iterations", "findReplace.maxReplaceIterations", 0, ErrCodeOutOfRange},
		{"negative undo", "history.maxUndoEntries", -1, ErrCodeOutOfRange},
		{"bad level", "logging.level", "loud", ErrCodeInvalidEnum},
		{"bad format", "logging.format", "xml", ErrCodeInvalidEnum},
		{"empty dir", "store.dir", "", ErrCodeRequiredMissing},
		{"negative cache", "store.cacheSizeMax", -5, ErrCodeOutOfRange},
		{"wrong type", "history.maxUndoEntries", "many", ErrCodeTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			if err := c.Set(tt.path, tt.value); err != nil {
				t.Fatalf("Set: %v", err)
			}
			err := c.Validate()
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("Validate() = %v, want ErrValidationFailed", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected a *ValidationError in %v", err)
			}
			if ve.Path != tt.path || ve.Code != tt.code {
				t.Errorf("got %s/%s, want %s/%s", ve.Path, ve.Code, tt.path, tt.code)
			}
		})
	}
}

func TestWrongTypeFallsBackToDefault(t *testing.T) {
	c := Default()
	_ = c.Set("store.compress", "yes please")

	if !c.Store().Compress {
		t.Error("expected the default when the value has the wrong type")
	}
	errs := c.ConfigErrors()
	if !errors.Is(errs["store.compress"], ErrTypeMismatch) {
		t.Errorf("ConfigErrors() = %v", errs)
	}
}
