package animgraph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/decker502/pganims/pkg/ecs"
)

// Definition 由单个模型的 clip 构建的带索引动画图
//
// Animations[0] 是图的 root，Animations[k] 是第 k-1 个 clip。
type Definition struct {
	Animations []NodeIndex
	Graph      *Graph

	mu          sync.Mutex
	initialized bool
}

// Build 按加载顺序从 clips 创建 Definition
func Build(clips []*Clip) *Definition {
	graph, nodes := FromClips(clips)

	animations := make([]NodeIndex, 0, len(nodes)+1)
	animations = append(animations, graph.Root())
	animations = append(animations, nodes...)

	return &Definition{
		Animations: animations,
		Graph:      graph,
	}
}

// ClipCount 返回 clip 数量 N
func (d *Definition) ClipCount() int {
	return len(d.Animations) - 1
}

// Node 返回配置索引 k 对应的节点（包括 root）
func (d *Definition) Node(k int) (NodeIndex, error) {
	if k < 0 || k >= len(d.Animations) {
		return 0, &IndexError{Index: k, Max: d.ClipCount(), Err: ErrAnimIndexOutOfRange}
	}
	return d.Animations[k], nil
}

// Clip 返回配置索引 k 对应的节点和 clip
// 索引 0 是 root，返回 ErrNotAClip
func (d *Definition) Clip(k int) (NodeIndex, *Clip, error) {
	node, err := d.Node(k)
	if err != nil {
		return 0, nil, err
	}
	clip, err := d.Graph.ClipAt(node)
	if err != nil {
		return 0, nil, &IndexError{Index: k, Max: d.ClipCount(), Err: err}
	}
	return node, clip, nil
}

// IndexOf 把节点映射回配置索引
func (d *Definition) IndexOf(node NodeIndex) (int, bool) {
	for k, n := range d.Animations {
		if n == node {
			return k, true
		}
	}
	return 0, false
}

// Initialized Attach 是否已经执行过
func (d *Definition) Initialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialized
}

// MaskMapping 把 Path 处的骨骼加入 Groups 中的每个 mask group
type MaskMapping struct {
	Path   string
	Groups []uint32
}

// AttachConfig 要挂载到 Definition 上的 mask 和标记
type AttachConfig struct {
	StartEvents   []int
	EndEvents     []int
	Masks         []MaskMapping
	PathSeparator string

	// ResolveTarget 对照模型校验骨骼路径；为 nil 时接受所有路径
	ResolveTarget func(path string) (TargetID, bool)
}

// Attach 注册 mask group 和定时标记
//
// 每个 Definition 只执行一次：第一次调用完成挂载并标记为已初始化，
// 之后的调用返回 attached=false。
//
// 无效条目被跳过并汇总到 err 中；有效条目照常挂载，Definition 仍标记为已初始化，
// 错误的配置重试也不会变好。
func (d *Definition) Attach(cfg AttachConfig, skeleton ecs.EntityID) (attached bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized {
		return false, nil
	}

	var errs []error

	for _, mapping := range cfg.Masks {
		target, ok := d.resolve(cfg, mapping.Path)
		if !ok {
			errs = append(errs, fmt.Errorf("mask path %q: %w", mapping.Path, ErrUnknownTarget))
			continue
		}
		for _, group := range mapping.Groups {
			if err := d.Graph.AddTargetToMaskGroup(target, group); err != nil {
				errs = append(errs, fmt.Errorf("mask path %q: %w", mapping.Path, err))
			}
		}
	}

	for _, anim := range cfg.StartEvents {
		_, clip, err := d.Clip(anim)
		if err != nil {
			errs = append(errs, fmt.Errorf("start event: %w", err))
			continue
		}
		clip.AddEvent(0, Marker{Kind: MarkerStart, Anim: anim, Skeleton: skeleton})
	}

	for _, anim := range cfg.EndEvents {
		_, clip, err := d.Clip(anim)
		if err != nil {
			errs = append(errs, fmt.Errorf("end event: %w", err))
			continue
		}
		clip.AddEvent(clip.Duration, Marker{Kind: MarkerEnd, Anim: anim, Skeleton: skeleton})
	}

	d.initialized = true
	return true, errors.Join(errs...)
}

func (d *Definition) resolve(cfg AttachConfig, path string) (TargetID, bool) {
	if cfg.ResolveTarget != nil {
		return cfg.ResolveTarget(path)
	}
	return TargetIDFromPath(path, cfg.PathSeparator), true
}
