// Package asset 保存已加载的模型：构建动画图用的有序 clip 列表，
// 以及校验 mask 配置用的骨骼路径
package asset

import (
	"fmt"
	"strings"

	"github.com/decker502/pganims/internal/reanim"
	"github.com/decker502/pganims/pkg/animgraph"
)

// Model 已加载的可动画模型
type Model struct {
	Name string

	// Clips 按加载顺序排列，第 i 个 clip 的配置索引为 i+1
	Clips []*animgraph.Clip

	// Bones 层级骨骼路径，从根开始，用 Separator 拼接
	Bones     []string
	Separator string

	targets map[string]animgraph.TargetID
}

// NewModel 创建模型并索引骨骼路径
func NewModel(name string, clips []*animgraph.Clip, bones []string, sep string) *Model {
	if sep == "" {
		sep = animgraph.DefaultPathSeparator
	}
	m := &Model{
		Name:      name,
		Clips:     clips,
		Bones:     bones,
		Separator: sep,
		targets:   make(map[string]animgraph.TargetID, len(bones)),
	}
	for _, path := range bones {
		m.targets[path] = animgraph.TargetIDFromPath(path, sep)
	}
	return m
}

// ResolveTarget 模型中存在该骨骼时返回对应目标
func (m *Model) ResolveTarget(path string) (animgraph.TargetID, bool) {
	target, ok := m.targets[path]
	return target, ok
}

// HasBone path 是否是模型中的骨骼
func (m *Model) HasBone(path string) bool {
	_, ok := m.targets[path]
	return ok
}

// FromReanim 把解析后的 Reanim 数据转换为 Model
//
// 每条动画轨道按文件顺序成为一个 clip，时长 = 可见帧数 / FPS。
// 每条部件轨道成为一根骨骼，路径沿 parents（部件名 -> 父部件名）向上拼接，直到没有父部件。
func FromReanim(name string, data *reanim.ReanimXML, parents map[string]string) (*Model, error) {
	if data == nil {
		return nil, fmt.Errorf("model %s: reanim data is nil", name)
	}
	if data.FPS <= 0 {
		return nil, fmt.Errorf("model %s: invalid fps %d", name, data.FPS)
	}

	clipTracks := data.ClipTracks()
	clips := make([]*animgraph.Clip, 0, len(clipTracks))
	for _, track := range clipTracks {
		duration := float64(track.VisibleFrames()) / float64(data.FPS)
		clips = append(clips, animgraph.NewClip(track.Name, duration))
	}

	partTracks := data.PartTracks()
	known := make(map[string]bool, len(partTracks))
	for _, track := range partTracks {
		known[track.Name] = true
	}

	bones := make([]string, 0, len(partTracks))
	for _, track := range partTracks {
		path, err := bonePath(track.Name, parents, known)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", name, err)
		}
		bones = append(bones, path)
	}

	return NewModel(name, clips, bones, animgraph.DefaultPathSeparator), nil
}

func bonePath(part string, parents map[string]string, known map[string]bool) (string, error) {
	segments := []string{part}
	seen := map[string]bool{part: true}
	current := part
	for {
		parent, ok := parents[current]
		if !ok || parent == "" {
			break
		}
		if !known[parent] {
			return "", fmt.Errorf("bone %s: parent %s is not a part track", current, parent)
		}
		if seen[parent] {
			return "", fmt.Errorf("bone %s: parent cycle through %s", part, parent)
		}
		seen[parent] = true
		segments = append(segments, parent)
		current = parent
	}

	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, animgraph.DefaultPathSeparator), nil
}
