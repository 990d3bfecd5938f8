package systems

import (
	"log"

	"github.com/decker502/pganims/pkg/components"
	"github.com/decker502/pganims/pkg/ecs"
)

// CompletionSystem 在播放器全部播放结束时推进所有者的 Directive
//
// 每个骨骼只在 AllFinished 从 false 变为 true 时触发一次：
//   - 队列非空：弹出最后压入的一组作为新条目；弹出后队列为空则移除队列
//   - 队列存在但为空：移除队列并停止
//   - 没有队列：停止（清空条目）
//
// 必须在播放器推进之后运行。
type CompletionSystem struct {
	entityManager *ecs.EntityManager
	logger        *log.Logger

	lastFinished map[ecs.EntityID]bool
}

// NewCompletionSystem 创建结束监听系统
func NewCompletionSystem(em *ecs.EntityManager) *CompletionSystem {
	return &CompletionSystem{
		entityManager: em,
		logger:        log.Default(),
		lastFinished:  make(map[ecs.EntityID]bool),
	}
}

// SetLogger 设置日志输出
func (s *CompletionSystem) SetLogger(l *log.Logger) {
	s.logger = l
}

// Reset 清除骨骼的结束状态，使下一次全部结束重新触发
// 播放器被重新设置后调用
func (s *CompletionSystem) Reset(skeleton ecs.EntityID) {
	s.lastFinished[skeleton] = false
}

// Update 检查所有播放器
func (s *CompletionSystem) Update() {
	skeletons := ecs.GetEntitiesWith1[*components.AnimationPlayerComponent](s.entityManager)
	present := make(map[ecs.EntityID]bool, len(skeletons))

	for _, skeleton := range skeletons {
		present[skeleton] = true
		pc, _ := ecs.GetComponent[*components.AnimationPlayerComponent](s.entityManager, skeleton)
		if pc.Player == nil {
			continue
		}

		finished := pc.Player.AllFinished()
		wasFinished := s.lastFinished[skeleton]
		s.lastFinished[skeleton] = finished
		if !finished || wasFinished {
			continue
		}
		s.advance(skeleton)
	}

	for skeleton := range s.lastFinished {
		if !present[skeleton] {
			delete(s.lastFinished, skeleton)
		}
	}
}

// advance 推进绑定到 skeleton 的第一个所有者（按实体 ID 升序）
func (s *CompletionSystem) advance(skeleton ecs.EntityID) {
	owners := ecs.GetEntitiesWith2[*components.Animatable, *components.Directive](s.entityManager)
	for _, owner := range owners {
		animatable, _ := ecs.GetComponent[*components.Animatable](s.entityManager, owner)
		if animatable.Skeleton != skeleton {
			continue
		}
		directive, _ := ecs.GetComponent[*components.Directive](s.entityManager, owner)

		if entries, ok := directive.PopNext(); ok {
			directive.Set(entries, directive.Repeat())
			// 弹出后队列为空：立即移除队列（状态 B 的 "清空为 none"），
			// 这组条目照常播放；只有 SetNext 写入的空队列才会走下面的停止分支
			if len(directive.Next()) == 0 {
				directive.ClearNext()
			}
			return
		}

		if directive.HasNext() {
			directive.ClearNext()
		}
		directive.StopAll()
		return
	}
}
