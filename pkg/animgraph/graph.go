package animgraph

import (
	"fmt"
	"math/bits"
	"sync"
)

// NodeIndex Graph 内的节点索引
type NodeIndex int

// NodeKind 节点类型标签
type NodeKind int

const (
	// NodeRoot 所有 clip 挂在其下的根节点，不带 clip
	NodeRoot NodeKind = iota
	// NodeClip 播放单个 clip
	NodeClip
)

func (k NodeKind) String() string {
	switch k {
	case NodeRoot:
		return "root"
	case NodeClip:
		return "clip"
	default:
		return "unknown"
	}
}

// MaxMaskGroups 动画图可用的 mask group 数量
const MaxMaskGroups = 64

// AnimationMask mask group 集合，每个 group 占一位
type AnimationMask uint64

// Has group 是否在 mask 中
func (m AnimationMask) Has(group uint32) bool {
	return group < MaxMaskGroups && m&(1<<group) != 0
}

// Groups 按升序列出 mask 中的 group
func (m AnimationMask) Groups() []uint32 {
	groups := make([]uint32, 0, bits.OnesCount64(uint64(m)))
	for rest := uint64(m); rest != 0; rest &= rest - 1 {
		groups = append(groups, uint32(bits.TrailingZeros64(rest)))
	}
	return groups
}

// Node 图节点
// 只有 NodeClip 节点设置 Clip；Mask 为节点限定的 mask group，为空表示全身
type Node struct {
	Kind NodeKind
	Clip *Clip
	Mask AnimationMask
}

// Graph 混合图：一个 root、每个 clip 一个节点，以及骨骼目标到 mask group 的映射
// 节点 mask 会在播放中被改写，所有访问都经过图的锁
type Graph struct {
	mu         sync.RWMutex
	nodes      []Node
	maskGroups map[TargetID]AnimationMask
}

// NewGraph 创建只有 root 节点的图
func NewGraph() *Graph {
	return &Graph{
		nodes:      []Node{{Kind: NodeRoot}},
		maskGroups: make(map[TargetID]AnimationMask),
	}
}

// FromClips 按顺序为每个 clip 创建一个节点，返回各 clip 的节点索引
func FromClips(clips []*Clip) (*Graph, []NodeIndex) {
	g := NewGraph()
	indices := make([]NodeIndex, 0, len(clips))
	for _, clip := range clips {
		indices = append(indices, g.AddClip(clip))
	}
	return g, indices
}

// Root 返回 root 节点索引
func (g *Graph) Root() NodeIndex {
	return 0
}

// AddClip 追加 clip 节点
func (g *Graph) AddClip(clip *Clip) NodeIndex {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = append(g.nodes, Node{Kind: NodeClip, Clip: clip})
	return NodeIndex(len(g.nodes) - 1)
}

// Len 节点数量（包括 root）
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Node 返回节点 i 的副本
func (g *Graph) Node(i NodeIndex) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if i < 0 || int(i) >= len(g.nodes) {
		return Node{}, false
	}
	return g.nodes[i], true
}

// ClipAt 返回节点 i 播放的 clip
func (g *Graph) ClipAt(i NodeIndex) (*Clip, error) {
	node, ok := g.Node(i)
	if !ok {
		return nil, fmt.Errorf("node %d: %w", i, ErrNodeNotFound)
	}
	if node.Kind != NodeClip || node.Clip == nil {
		return nil, fmt.Errorf("node %d (%s): %w", i, node.Kind, ErrNotAClip)
	}
	return node.Clip, nil
}

// AddTargetToMaskGroup 把 target 加入 group
func (g *Graph) AddTargetToMaskGroup(target TargetID, group uint32) error {
	if group >= MaxMaskGroups {
		return fmt.Errorf("group %d: %w", group, ErrMaskGroupOutOfRange)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.maskGroups[target] |= 1 << group
	return nil
}

// MaskGroups 返回 target 所属的 group
func (g *Graph) MaskGroups(target TargetID) AnimationMask {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.maskGroups[target]
}

// SetNodeMask 把节点 i 的 mask 设为恰好 group；group 为 nil 时清空为全身
// 清空与设置在同一次加锁内完成，读者看不到中间状态
func (g *Graph) SetNodeMask(i NodeIndex, group *uint32) error {
	if group != nil && *group >= MaxMaskGroups {
		return fmt.Errorf("group %d: %w", *group, ErrMaskGroupOutOfRange)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if i < 0 || int(i) >= len(g.nodes) {
		return fmt.Errorf("node %d: %w", i, ErrNodeNotFound)
	}
	g.nodes[i].Mask = 0
	if group != nil {
		g.nodes[i].Mask |= 1 << *group
	}
	return nil
}

// AffectsTarget 节点 i 在当前 mask 下是否驱动 target
// 没有 mask 的节点影响所有目标；有 mask 的节点只影响其 group 内的目标
func (g *Graph) AffectsTarget(i NodeIndex, target TargetID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if i < 0 || int(i) >= len(g.nodes) {
		return false
	}
	mask := g.nodes[i].Mask
	if mask == 0 {
		return true
	}
	return g.maskGroups[target]&mask != 0
}
