package systems

import (
	"log"
	"slices"

	"github.com/decker502/pganims/pkg/animgraph"
	"github.com/decker502/pganims/pkg/components"
	"github.com/decker502/pganims/pkg/ecs"
	"github.com/decker502/pganims/pkg/player"
)

type seenDirective struct {
	directive *components.Directive
	revision  uint64
}

// SyncSystem 把所有者的 Directive 同步到骨骼的播放器
//
// 对比 "正在播放的配置索引集合" 与 "Directive 期望的索引集合"（与顺序、重复无关）：
//   - 相同：不操作（幂等，不会重启正在播放的动画）
//   - 不同：StopAll，然后按条目逐个 Play，设置速度、循环标志、节点 mask
//
// 默认只处理 revision 变化过的 Directive；SetPolling(true) 时每帧检查全部。
// 骨骼未绑定、没有播放器或动画图未就绪时跳过，下一帧重试。
type SyncSystem struct {
	entityManager *ecs.EntityManager
	logger        *log.Logger
	polling       bool

	lastSeen map[ecs.EntityID]seenDirective

	// onReplay 播放器被重新设置后调用（CompletionSystem 用它重置结束状态）
	onReplay func(skeleton ecs.EntityID)
}

// NewSyncSystem 创建同步系统
func NewSyncSystem(em *ecs.EntityManager) *SyncSystem {
	return &SyncSystem{
		entityManager: em,
		logger:        log.Default(),
		lastSeen:      make(map[ecs.EntityID]seenDirective),
	}
}

// SetLogger 设置日志输出
func (s *SyncSystem) SetLogger(l *log.Logger) {
	s.logger = l
}

// SetPolling 开启后每帧检查所有 Directive，不依赖变化检测
func (s *SyncSystem) SetPolling(polling bool) {
	s.polling = polling
}

// OnReplay 设置播放器重新设置后的回调
func (s *SyncSystem) OnReplay(fn func(skeleton ecs.EntityID)) {
	s.onReplay = fn
}

// Update 同步所有需要同步的所有者
func (s *SyncSystem) Update() {
	owners := ecs.GetEntitiesWith2[*components.Animatable, *components.Directive](s.entityManager)
	present := make(map[ecs.EntityID]bool, len(owners))

	for _, owner := range owners {
		present[owner] = true
		animatable, _ := ecs.GetComponent[*components.Animatable](s.entityManager, owner)
		directive, _ := ecs.GetComponent[*components.Directive](s.entityManager, owner)

		seen := seenDirective{directive: directive, revision: directive.Revision()}
		if !s.polling && s.lastSeen[owner] == seen {
			continue
		}
		if s.sync(animatable, directive) {
			s.lastSeen[owner] = seen
		}
	}

	for owner := range s.lastSeen {
		if !present[owner] {
			delete(s.lastSeen, owner)
		}
	}
}

// sync 返回 false 表示条件未满足，需要下一帧重试
func (s *SyncSystem) sync(animatable *components.Animatable, directive *components.Directive) bool {
	if !animatable.IsBound() {
		return false
	}
	skeleton := animatable.Skeleton

	pc, ok := ecs.GetComponent[*components.AnimationPlayerComponent](s.entityManager, skeleton)
	if !ok || pc.Player == nil {
		return false
	}
	handle, ok := ecs.GetComponent[*components.AnimGraphHandle](s.entityManager, skeleton)
	if !ok || handle.Definition == nil || !handle.Definition.Initialized() {
		return false
	}
	def := handle.Definition

	entries := directive.Entries()
	desired := desiredIndices(def, entries)
	if slices.Equal(currentIndices(pc.Player, def), desired) {
		// 期望为空但播放器还留着已结束的动画：停止，不停在最后一帧
		if len(desired) == 0 && len(pc.Player.ActiveAnimations()) > 0 {
			pc.Player.StopAll()
		}
		return true
	}

	pc.Player.StopAll()
	played := 0
	for _, entry := range entries {
		node, _, err := def.Clip(entry.Index)
		if err != nil {
			s.logger.Printf("[SyncSystem] 跳过无效条目: skeleton=%d, index=%d: %v", skeleton, entry.Index, err)
			continue
		}
		if !validSpeed(entry) {
			s.logger.Printf("[SyncSystem] 跳过无效条目: skeleton=%d, index=%d: speed %v: %v", skeleton, entry.Index, *entry.Speed, ErrInvalidSpeed)
			continue
		}

		active := pc.Player.Play(node)
		active.SetSpeed(entry.SpeedOrDefault())
		if directive.Repeat() {
			active.Repeat()
		}
		played++

		if err := def.Graph.SetNodeMask(node, entry.Mask); err != nil {
			s.logger.Printf("[SyncSystem] 设置 mask 失败: skeleton=%d, index=%d: %v", skeleton, entry.Index, err)
		}
	}

	if played > 0 && s.onReplay != nil {
		s.onReplay(skeleton)
	}
	return true
}

// currentIndices 正在播放（未结束）的配置索引，升序去重
func currentIndices(p player.Player, def *animgraph.Definition) []int {
	nodes := p.PlayingAnimations()
	indices := make([]int, 0, len(nodes))
	for _, node := range nodes {
		if k, ok := def.IndexOf(node); ok {
			indices = append(indices, k)
		}
	}
	slices.Sort(indices)
	return slices.Compact(indices)
}

// desiredIndices 期望播放的配置索引，升序去重
// 不指向 clip 或速度无效的条目不会被播放，因此也不参与比较
func desiredIndices(def *animgraph.Definition, entries []components.Entry) []int {
	indices := make([]int, 0, len(entries))
	for _, e := range entries {
		if _, _, err := def.Clip(e.Index); err == nil && validSpeed(e) {
			indices = append(indices, e.Index)
		}
	}
	slices.Sort(indices)
	return slices.Compact(indices)
}
