// Package persist 保存和恢复所有者的动画 Directive
//
// 数据以 YAML 形式写入 gdata 跨平台存储；gdata 不可用时退化为内存存储。
package persist

import (
	"fmt"
	"log"
	"sync"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/decker502/pganims/pkg/components"
)

const directivesObject = "directives"

// EntrySnapshot 单个条目的可序列化形式
type EntrySnapshot struct {
	Index int      `yaml:"index"`
	Mask  *uint32  `yaml:"mask,omitempty"`
	Speed *float64 `yaml:"speed,omitempty"`
}

// DirectiveSnapshot Directive 的可序列化形式
type DirectiveSnapshot struct {
	Entries []EntrySnapshot   `yaml:"entries"`
	Repeat  bool              `yaml:"repeat"`
	HasNext bool              `yaml:"has_next"`
	Next    [][]EntrySnapshot `yaml:"next,omitempty"`
}

// Snapshot 捕获 Directive 的当前状态
func Snapshot(d *components.Directive) DirectiveSnapshot {
	snap := DirectiveSnapshot{
		Entries: toSnapshots(d.Entries()),
		Repeat:  d.Repeat(),
		HasNext: d.HasNext(),
	}
	for _, set := range d.Next() {
		snap.Next = append(snap.Next, toSnapshots(set))
	}
	return snap
}

// Restore 把快照写回 Directive
func (s DirectiveSnapshot) Restore(d *components.Directive) {
	d.Set(toEntries(s.Entries), s.Repeat)
	if !s.HasNext {
		d.ClearNext()
		return
	}
	queue := make([][]components.Entry, 0, len(s.Next))
	for _, set := range s.Next {
		queue = append(queue, toEntries(set))
	}
	d.SetNext(queue)
}

func toSnapshots(entries []components.Entry) []EntrySnapshot {
	out := make([]EntrySnapshot, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntrySnapshot{Index: e.Index, Mask: e.Mask, Speed: e.Speed})
	}
	return out
}

func toEntries(snaps []EntrySnapshot) []components.Entry {
	out := make([]components.Entry, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, components.Entry{Index: s.Index, Mask: s.Mask, Speed: s.Speed})
	}
	return out
}

// DirectiveStore 按 key 保存 Directive 快照
type DirectiveStore struct {
	gdataManager *gdata.Manager // 可为 nil（降级模式，仅内存）

	mu     sync.Mutex
	memory map[string][]byte
}

// NewDirectiveStore 创建存储
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存保存）
func NewDirectiveStore(gdataManager *gdata.Manager) *DirectiveStore {
	if gdataManager == nil {
		log.Printf("[DirectiveStore] gdata 不可用，使用内存存储")
	}
	return &DirectiveStore{
		gdataManager: gdataManager,
		memory:       make(map[string][]byte),
	}
}

// Save 保存快照
func (s *DirectiveStore) Save(key string, snap DirectiveSnapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal directive %s: %w", key, err)
	}

	if s.gdataManager == nil {
		s.mu.Lock()
		s.memory[key] = data
		s.mu.Unlock()
		return nil
	}

	if err := s.gdataManager.SaveObjectProp(directivesObject, key, data); err != nil {
		return fmt.Errorf("failed to save directive %s: %w", key, err)
	}
	return nil
}

// Load 读取快照，不存在时 ok 为 false
func (s *DirectiveStore) Load(key string) (snap DirectiveSnapshot, ok bool, err error) {
	var data []byte
	if s.gdataManager == nil {
		s.mu.Lock()
		data, ok = s.memory[key]
		s.mu.Unlock()
		if !ok {
			return DirectiveSnapshot{}, false, nil
		}
	} else {
		if !s.gdataManager.ObjectPropExists(directivesObject, key) {
			return DirectiveSnapshot{}, false, nil
		}
		data, err = s.gdataManager.LoadObjectProp(directivesObject, key)
		if err != nil {
			return DirectiveSnapshot{}, false, fmt.Errorf("failed to load directive %s: %w", key, err)
		}
	}

	if err := yaml.Unmarshal(data, &snap); err != nil {
		return DirectiveSnapshot{}, false, fmt.Errorf("failed to unmarshal directive %s: %w", key, err)
	}
	return snap, true, nil
}

// SaveDirective 保存 Directive 的当前状态
func (s *DirectiveStore) SaveDirective(key string, d *components.Directive) error {
	return s.Save(key, Snapshot(d))
}

// RestoreDirective 把保存的状态写回 Directive；没有保存过时返回 false
func (s *DirectiveStore) RestoreDirective(key string, d *components.Directive) (bool, error) {
	snap, ok, err := s.Load(key)
	if err != nil || !ok {
		return false, err
	}
	snap.Restore(d)
	return true, nil
}
