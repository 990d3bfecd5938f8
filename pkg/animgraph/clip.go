package animgraph

import (
	"sort"
	"sync"

	"github.com/decker502/pganims/pkg/ecs"
)

// MarkerKind 区分 start 与 end 标记
type MarkerKind int

const (
	MarkerStart MarkerKind = iota
	MarkerEnd
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerStart:
		return "start"
	case MarkerEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Marker TimedEvent 的载荷
// Skeleton 记录触发挂载的骨骼实体
type Marker struct {
	Kind     MarkerKind
	Anim     int
	Skeleton ecs.EntityID
}

// TimedEvent 放在 clip 某个时刻（秒）的标记
type TimedEvent struct {
	Time   float64
	Marker Marker
}

// Clip 源动画片段
// 所有播放同一动画图的骨骼共享 Clip，事件列表需要加锁
type Clip struct {
	Name     string
	Duration float64

	mu     sync.RWMutex
	events []TimedEvent
}

// NewClip 创建时长为 duration 秒的 clip
func NewClip(name string, duration float64) *Clip {
	return &Clip{Name: name, Duration: duration}
}

// AddEvent 在时刻 t 插入标记，事件保持按时间排序
// 时间相同的事件保持插入顺序
func (c *Clip) AddEvent(t float64, marker Marker) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := sort.Search(len(c.events), func(i int) bool { return c.events[i].Time > t })
	c.events = append(c.events, TimedEvent{})
	copy(c.events[i+1:], c.events[i:])
	c.events[i] = TimedEvent{Time: t, Marker: marker}
}

// Events 返回按时间排序的事件副本
func (c *Clip) Events() []TimedEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]TimedEvent, len(c.events))
	copy(out, c.events)
	return out
}

// EventsBetween 返回 from < Time <= to 的事件
// includeFrom 为 true 时区间为 from <= Time <= to
func (c *Clip) EventsBetween(from, to float64, includeFrom bool) []TimedEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []TimedEvent
	for _, ev := range c.events {
		if ev.Time > to {
			break
		}
		if ev.Time > from || (includeFrom && ev.Time == from) {
			out = append(out, ev)
		}
	}
	return out
}
