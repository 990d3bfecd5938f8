package config

import (
	"os"
	"testing"
	"testing/fstest"
)

func TestModelConfigManager_LoadFile(t *testing.T) {
	manager, err := NewModelConfigManager(os.DirFS("../.."), "data/models.yaml")
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	model, err := manager.GetModel("knight")
	if err != nil {
		t.Fatalf("获取 knight 配置失败: %v", err)
	}
	if model.ReanimFile != "data/models/knight.reanim" {
		t.Errorf("ReanimFile = %q", model.ReanimFile)
	}
	if model.DefaultAnim != 1 {
		t.Errorf("DefaultAnim = %d, want 1", model.DefaultAnim)
	}
	if model.Parents["Head"] != "Spine" {
		t.Errorf("Head 的父骨骼应为 Spine，实际 %q", model.Parents["Head"])
	}

	if _, err := manager.GetModel("nonexistent"); err == nil {
		t.Error("期望返回错误，但没有错误")
	}
}

func TestModelConfigManager_LoadDirectory(t *testing.T) {
	fsys := fstest.MapFS{
		"models/b.yaml": {Data: []byte("models:\n  - id: bat\n    reanim_file: bat.reanim\n")},
		"models/a.yaml": {Data: []byte("models:\n  - id: ant\n    reanim_file: ant.reanim\n    default_anim: 2\n")},
		"models/readme.txt": {Data: []byte("ignored")},
	}

	manager, err := NewModelConfigManager(fsys, "models")
	if err != nil {
		t.Fatalf("加载目录失败: %v", err)
	}

	ids := manager.ListModels()
	if len(ids) != 2 || ids[0] != "ant" || ids[1] != "bat" {
		t.Errorf("ListModels = %v, want [ant bat]", ids)
	}
}

func TestModelConfigManager_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"缺少 id", "models:\n  - reanim_file: a.reanim\n"},
		{"缺少 reanim_file", "models:\n  - id: a\n"},
		{"重复 id", "models:\n  - id: a\n    reanim_file: a.reanim\n  - id: a\n    reanim_file: b.reanim\n"},
		{"负默认动画", "models:\n  - id: a\n    reanim_file: a.reanim\n    default_anim: -1\n"},
		{"骨骼循环", "models:\n  - id: a\n    reanim_file: a.reanim\n    parents: {A: B, B: A}\n"},
		{"非法 YAML", "models: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"models.yaml": {Data: []byte(tt.yaml)}}
			if _, err := NewModelConfigManager(fsys, "models.yaml"); err == nil {
				t.Error("期望返回错误，但没有错误")
			}
		})
	}

	if _, err := NewModelConfigManager(fstest.MapFS{}, "missing.yaml"); err == nil {
		t.Error("路径不存在时期望返回错误")
	}
}
