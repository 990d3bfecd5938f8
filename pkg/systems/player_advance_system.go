package systems

import (
	"github.com/decker502/pganims/pkg/animgraph"
	"github.com/decker502/pganims/pkg/components"
	"github.com/decker502/pganims/pkg/ecs"
	"github.com/decker502/pganims/pkg/events"
	"github.com/decker502/pganims/pkg/player"
)

// PlayerAdvanceSystem 推进骨骼播放器的时间，并把越过的标记转成通知
// 只推进实现了 player.Advancer 的播放器；外部驱动的播放器自行推进
type PlayerAdvanceSystem struct {
	entityManager *ecs.EntityManager
	queue         *events.Queue
}

// NewPlayerAdvanceSystem 创建播放器推进系统
func NewPlayerAdvanceSystem(em *ecs.EntityManager, queue *events.Queue) *PlayerAdvanceSystem {
	return &PlayerAdvanceSystem{
		entityManager: em,
		queue:         queue,
	}
}

// Update 推进 dt 秒
func (s *PlayerAdvanceSystem) Update(dt float64) {
	skeletons := ecs.GetEntitiesWith2[*components.AnimationPlayerComponent, *components.AnimGraphHandle](s.entityManager)
	for _, skeleton := range skeletons {
		pc, _ := ecs.GetComponent[*components.AnimationPlayerComponent](s.entityManager, skeleton)
		handle, _ := ecs.GetComponent[*components.AnimGraphHandle](s.entityManager, skeleton)
		if pc.Player == nil || handle.Definition == nil {
			continue
		}
		advancer, ok := pc.Player.(player.Advancer)
		if !ok {
			continue
		}

		// 通知携带实际越过标记的骨骼
		advancer.Advance(dt, handle.Definition.Graph, func(m animgraph.Marker) {
			s.queue.Send(events.AnimEvent{Kind: m.Kind, Anim: m.Anim, Skeleton: skeleton})
		})
	}
}
