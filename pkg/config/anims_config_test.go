package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParsePluginConfig_YAML(t *testing.T) {
	data := []byte(`
anims_with_start_event: [3]
anims_with_end_event: [2, 3]
targets_masks_mapping:
  - path: Hips/Spine
    masks: [1, 4]
`)
	cfg, err := ParsePluginConfig(data, ".yaml")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}

	if len(cfg.AnimsWithStartEvent) != 1 || cfg.AnimsWithStartEvent[0] != 3 {
		t.Errorf("AnimsWithStartEvent = %v, want [3]", cfg.AnimsWithStartEvent)
	}
	if len(cfg.AnimsWithEndEvent) != 2 {
		t.Errorf("AnimsWithEndEvent = %v, want [2 3]", cfg.AnimsWithEndEvent)
	}
	if len(cfg.TargetsMasksMapping) != 1 || cfg.TargetsMasksMapping[0].Path != "Hips/Spine" {
		t.Fatalf("TargetsMasksMapping = %+v", cfg.TargetsMasksMapping)
	}
	if got := cfg.TargetsMasksMapping[0].Masks; len(got) != 2 || got[1] != 4 {
		t.Errorf("Masks = %v, want [1 4]", got)
	}
	// 缺省字段使用默认值
	if cfg.PathSeparator != "/" {
		t.Errorf("PathSeparator = %q, want /", cfg.PathSeparator)
	}
	if cfg.MaxAncestorDepth != 64 {
		t.Errorf("MaxAncestorDepth = %d, want 64", cfg.MaxAncestorDepth)
	}
	if cfg.Polling {
		t.Error("Polling 默认应为 false")
	}
}

func TestParsePluginConfig_TOML(t *testing.T) {
	data := []byte(`
anims_with_end_event = [1]
path_separator = "."
polling = true

[[targets_masks_mapping]]
path = "Hips.LegL"
masks = [2]
`)
	cfg, err := ParsePluginConfig(data, ".toml")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if cfg.PathSeparator != "." {
		t.Errorf("PathSeparator = %q, want .", cfg.PathSeparator)
	}
	if !cfg.Polling {
		t.Error("Polling 应为 true")
	}
	if len(cfg.TargetsMasksMapping) != 1 || cfg.TargetsMasksMapping[0].Masks[0] != 2 {
		t.Errorf("TargetsMasksMapping = %+v", cfg.TargetsMasksMapping)
	}
}

func TestParsePluginConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
	}{
		{"非法 YAML", "anims_with_start_event: [1", ".yaml"},
		{"TOML 未知字段", "unknown_field = 1", ".toml"},
		{"不支持的格式", "{}", ".json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePluginConfig([]byte(tt.data), tt.format); err == nil {
				t.Error("期望返回错误，但没有错误")
			}
		})
	}
}

func TestLoadPluginConfig_EnvOverride(t *testing.T) {
	t.Setenv("PGANIMS_MAX_ANCESTOR_DEPTH", "8")
	t.Setenv("PGANIMS_POLLING", "true")

	cfg, err := LoadPluginConfig("../../data/pganims.yaml")
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if cfg.MaxAncestorDepth != 8 {
		t.Errorf("MaxAncestorDepth = %d, want 8", cfg.MaxAncestorDepth)
	}
	if !cfg.Polling {
		t.Error("环境变量应开启 polling")
	}
	if len(cfg.TargetsMasksMapping) == 0 {
		t.Error("文件中的 mask 映射应保留")
	}
}

func TestLoadPluginConfig_TOMLFile(t *testing.T) {
	cfg, err := LoadPluginConfig("../../data/pganims.toml")
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if cfg.MaxAncestorDepth != 32 {
		t.Errorf("MaxAncestorDepth = %d, want 32", cfg.MaxAncestorDepth)
	}
}

func TestLoadPluginConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	content := "anims_with_start_event: [-1]\ntargets_masks_mapping:\n  - path: Hips\n    masks: [64]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadPluginConfig(path)
	if err == nil {
		t.Fatal("期望校验失败")
	}
	if !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("期望包含 ErrInvalidIndex，实际 %v", err)
	}
	if !errors.Is(err, ErrInvalidMaskGroup) {
		t.Errorf("期望包含 ErrInvalidMaskGroup，实际 %v", err)
	}
}

func TestLoadPluginConfig_MissingFile(t *testing.T) {
	_, err := LoadPluginConfig("nonexistent.yaml")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("期望 os.ErrNotExist，实际 %v", err)
	}
}

func TestPluginConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PluginConfig
		wantErr error
	}{
		{"空配置", PluginConfig{}, nil},
		{"合法索引", PluginConfig{AnimsWithStartEvent: []int{1, 2}, AnimsWithEndEvent: []int{3}}, nil},
		{"root 不能带事件", PluginConfig{AnimsWithEndEvent: []int{0}}, ErrInvalidIndex},
		{"负索引", PluginConfig{AnimsWithStartEvent: []int{-2}}, ErrInvalidIndex},
		{"mask group 上限", PluginConfig{TargetsMasksMapping: []MaskMappingConfig{{Path: "Hips", Masks: []uint32{63}}}}, nil},
		{"mask group 越界", PluginConfig{TargetsMasksMapping: []MaskMappingConfig{{Path: "Hips", Masks: []uint32{64}}}}, ErrInvalidMaskGroup},
		{"空路径", PluginConfig{TargetsMasksMapping: []MaskMappingConfig{{Path: " ", Masks: []uint32{1}}}}, ErrInvalidBonePath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("期望无错误，实际 %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际 %v", tt.wantErr, err)
			}
		})
	}
}

func TestPluginConfig_ValidateAgainst(t *testing.T) {
	bones := map[string]bool{"Hips": true, "Hips/Spine": true}
	hasBone := func(p string) bool { return bones[p] }

	cfg := PluginConfig{
		AnimsWithStartEvent: []int{1, 4},
		AnimsWithEndEvent:   []int{3},
		TargetsMasksMapping: []MaskMappingConfig{
			{Path: "Hips/Spine", Masks: []uint32{1}},
			{Path: "Hips/Tail", Masks: []uint32{1}},
		},
	}

	err := cfg.ValidateAgainst(3, hasBone)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("期望 *ConfigError，实际 %v", err)
	}
	// 4 超出 3 个 clip，Hips/Tail 不存在
	if len(cfgErr.Problems) != 2 {
		t.Errorf("期望 2 个问题，实际 %d: %v", len(cfgErr.Problems), cfgErr)
	}
	if !errors.Is(err, ErrInvalidIndex) || !errors.Is(err, ErrInvalidBonePath) {
		t.Errorf("错误应同时包含索引和路径问题: %v", err)
	}

	if err := cfg.ValidateAgainst(4, nil); err != nil {
		t.Errorf("4 个 clip 且不检查路径时应通过，实际 %v", err)
	}
}
