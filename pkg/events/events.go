// Package events 把动画引擎发出的 clip start/end 通知传递给应用层观察者
package events

import (
	"github.com/decker502/pganims/pkg/animgraph"
	"github.com/decker502/pganims/pkg/ecs"
)

// Kind 通知类型
type Kind = animgraph.MarkerKind

// AnimEvent 某个骨骼上某个配置索引的 start 或 end 通知
type AnimEvent struct {
	Kind     Kind
	Anim     int
	Skeleton ecs.EntityID
}

// AnimStartEvent 带 start 标记的 clip 开始一轮时发送
type AnimStartEvent struct {
	Anim     int
	Skeleton ecs.EntityID
}

// AnimEndEvent 带 end 标记的 clip 完成一轮时发送
type AnimEndEvent struct {
	Anim     int
	Skeleton ecs.EntityID
}

// Start 转换为 AnimStartEvent
func (e AnimEvent) Start() (AnimStartEvent, bool) {
	if e.Kind != animgraph.MarkerStart {
		return AnimStartEvent{}, false
	}
	return AnimStartEvent{Anim: e.Anim, Skeleton: e.Skeleton}, true
}

// End 转换为 AnimEndEvent
func (e AnimEvent) End() (AnimEndEvent, bool) {
	if e.Kind != animgraph.MarkerEnd {
		return AnimEndEvent{}, false
	}
	return AnimEndEvent{Anim: e.Anim, Skeleton: e.Skeleton}, true
}

// Sink 接收 Flush 出的通知，发送后不等待结果
type Sink interface {
	Publish(ev AnimEvent) error
}
