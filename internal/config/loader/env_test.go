package loader

import (
	"reflect"
	"testing"
)

func TestEnvLoader_Load(t *testing.T) {
	t.Setenv("MARGINALIA_LOG_LEVEL", "debug")
	t.Setenv("MARGINALIA_DIFF_MAX_MEMORY_MB", "32")
	t.Setenv("MARGINALIA_STORE_COMPRESS", "off")
	t.Setenv("OTHER_LOG_LEVEL", "error")

	config, err := NewEnvLoader(DefaultEnvPrefix).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"logging.level", "debug"},
		{"diff.maxMemoryMB", int64(32)},
		{"store.compress", false},
	}
	for _, tt := range tests {
		if v, ok := GetByPath(config, tt.path); !ok || v != tt.want {
			t.Errorf("%s = %v (%T), want %v", tt.path, v, v, tt.want)
		}
	}
}

func TestEnvLoader_LoadUnmapped(t *testing.T) {
	t.Setenv("MARGINALIA_HISTORY_MAX_UNDO_ENTRIES", "7")

	config, err := NewEnvLoaderWithMapping(DefaultEnvPrefix, nil).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v, ok := GetByPath(config, "history.maxUndoEntries"); !ok || v != int64(7) {
		t.Errorf("history.maxUndoEntries = %v, want 7", v)
	}
}

func TestEnvLoader_envToPath(t *testing.T) {
	loader := NewEnvLoader("MARGINALIA_")

	tests := []struct {
		env  string
		want string
	}{
		{"MARGINALIA_DIFF_ALGORITHM", "diff.algorithm"},
		{"MARGINALIA_HISTORY_MAX_UNDO_ENTRIES", "history.maxUndoEntries"},
		{"MARGINALIA_STORE", "store"},
		{"MARGINALIA_", ""},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := loader.envToPath(tt.env); got != tt.want {
				t.Errorf("envToPath(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestEnvLoader_parseValue(t *testing.T) {
	loader := NewEnvLoader("MARGINALIA_")

	tests := []struct {
		in   string
		want any
	}{
		{"", ""},
		{"true", true},
		{"YES", true},
		{"off", false},
		{"42", int64(42)},
		{"-3", int64(-3)},
		{"1.5", 1.5},
		{"myers", "myers"},
		{`["a","b"]`, []any{"a", "b"}},
		{`{"k":1}`, map[string]any{"k": float64(1)}},
		{"[broken", "[broken"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := loader.parseValue(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseValue(%q) = %v (%T), want %v (%T)", tt.in, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestEnvLoader_AddRemoveMapping(t *testing.T) {
	t.Setenv("MARGINALIA_STYLE", "MARK")

	loader := NewEnvLoaderWithMapping(DefaultEnvPrefix, nil)
	loader.AddMapping("MARGINALIA_STYLE", "highlight.style")

	config, _ := loader.Load()
	if v, _ := GetByPath(config, "highlight.style"); v != "MARK" {
		t.Errorf("highlight.style = %v, want 'MARK'", v)
	}

	loader.RemoveMapping("MARGINALIA_STYLE")
	config, _ = loader.Load()
	if _, ok := GetByPath(config, "highlight.style"); ok {
		t.Error("mapping should be removed")
	}
	if v, _ := GetByPath(config, "style"); v != "MARK" {
		t.Errorf("style = %v, want 'MARK'", v)
	}
}

func TestEnvLoader_CustomEnviron(t *testing.T) {
	loader := NewEnvLoader("APP_")
	loader.environ = func() []string {
		return []string{"APP_LOG_FORMAT=json", "PATH=/bin", "APP_BROKEN"}
	}

	config, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v, _ := GetByPath(config, "logging.format"); v != "json" {
		t.Errorf("logging.format = %v, want 'json'", v)
	}
	if len(config) != 1 {
		t.Errorf("unexpected keys: %v", config)
	}
}
