// Package player 定义引擎驱动的骨骼动画播放器接口，
// 以及 AnimationPlayer：一个推进 clip 时间、支持速度与循环、触发 clip 标记的内存实现。
package player

import (
	"math"
	"slices"

	"github.com/decker502/pganims/pkg/animgraph"
)

// MaxMarkerPassesPerTick 单帧内完整循环最多触发标记的轮数
// 超出的轮数只计入 Passes，不再逐轮触发标记
const MaxMarkerPassesPerTick = 8

// ActiveAnimation 正在播放的节点句柄
type ActiveAnimation interface {
	SetSpeed(speed float64)
	Repeat()
}

// Player 同步系统和结束监听系统使用的播放接口
type Player interface {
	// PlayingAnimations 活动且未结束的节点
	PlayingAnimations() []animgraph.NodeIndex
	// ActiveAnimations 所有活动节点（包括已结束但未被停止的）
	ActiveAnimations() []animgraph.NodeIndex
	StopAll()
	Play(node animgraph.NodeIndex) ActiveAnimation
	// AllFinished 所有活动动画都已结束；没有活动动画也视为结束
	AllFinished() bool
}

// Advancer 可由引擎按帧推进的播放器
type Advancer interface {
	Advance(dt float64, graph *animgraph.Graph, emit func(animgraph.Marker))
}

// Playback 单个活动节点的播放状态
type Playback struct {
	node     animgraph.NodeIndex
	speed    float64
	repeat   bool
	seek     float64
	started  bool
	finished bool
	passes   int
}

// SetSpeed 设置播放速率，1.0 为正常速度
func (p *Playback) SetSpeed(speed float64) {
	p.speed = speed
}

// Repeat 设置为无限循环
func (p *Playback) Repeat() {
	p.repeat = true
}

func (p *Playback) Node() animgraph.NodeIndex { return p.node }
func (p *Playback) Speed() float64            { return p.speed }
func (p *Playback) IsRepeating() bool         { return p.repeat }
func (p *Playback) Seek() float64             { return p.seek }
func (p *Playback) IsFinished() bool          { return p.finished }

// Passes 播放到 clip 结尾的次数
func (p *Playback) Passes() int { return p.passes }

// AnimationPlayer 内存播放器
type AnimationPlayer struct {
	active map[animgraph.NodeIndex]*Playback

	// Plays / Stops 统计 Play 与 StopAll 的调用次数
	Plays int
	Stops int
}

// NewAnimationPlayer 创建空闲播放器
func NewAnimationPlayer() *AnimationPlayer {
	return &AnimationPlayer{active: make(map[animgraph.NodeIndex]*Playback)}
}

// Play 从头开始播放节点
// 节点已在活动中时原样返回已有的播放状态
func (p *AnimationPlayer) Play(node animgraph.NodeIndex) ActiveAnimation {
	p.Plays++
	if existing, ok := p.active[node]; ok {
		return existing
	}
	pb := &Playback{node: node, speed: 1.0}
	p.active[node] = pb
	return pb
}

// StopAll 移除所有活动动画
func (p *AnimationPlayer) StopAll() {
	p.Stops++
	clear(p.active)
}

// PlayingAnimations 活动且未结束的节点，升序
func (p *AnimationPlayer) PlayingAnimations() []animgraph.NodeIndex {
	nodes := make([]animgraph.NodeIndex, 0, len(p.active))
	for node, pb := range p.active {
		if !pb.finished {
			nodes = append(nodes, node)
		}
	}
	slices.Sort(nodes)
	return nodes
}

// ActiveAnimations 所有活动节点（含已结束的），升序
func (p *AnimationPlayer) ActiveAnimations() []animgraph.NodeIndex {
	nodes := make([]animgraph.NodeIndex, 0, len(p.active))
	for node := range p.active {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)
	return nodes
}

// AllFinished 没有仍在运行的活动动画
func (p *AnimationPlayer) AllFinished() bool {
	for _, pb := range p.active {
		if !pb.finished {
			return false
		}
	}
	return true
}

// Animation 返回节点的播放状态（如果处于活动中）
func (p *AnimationPlayer) Animation(node animgraph.NodeIndex) (*Playback, bool) {
	pb, ok := p.active[node]
	return pb, ok
}

// Advance 按 dt 秒乘以各自速度推进所有活动动画，并对经过的每个标记调用 emit
//
// 时间 0 的标记在每轮开始时触发，clip 时长处的标记在每轮结束时触发。
// 非 clip 节点被忽略；推进量不是有限值（NaN、±Inf）的动画本帧保持不动。
func (p *AnimationPlayer) Advance(dt float64, graph *animgraph.Graph, emit func(animgraph.Marker)) {
	for _, node := range p.ActiveAnimations() {
		pb := p.active[node]
		if pb.finished {
			continue
		}
		clip, err := graph.ClipAt(node)
		if err != nil {
			continue
		}
		delta := dt * pb.speed
		if math.IsNaN(delta) || math.IsInf(delta, 0) {
			continue
		}
		pb.advance(delta, clip, emit)
	}
}

func (pb *Playback) advance(delta float64, clip *animgraph.Clip, emit func(animgraph.Marker)) {
	fire := func(events []animgraph.TimedEvent) {
		if emit == nil {
			return
		}
		for _, ev := range events {
			emit(ev.Marker)
		}
	}

	includeFrom := !pb.started
	pb.started = true

	if clip.Duration <= 0 {
		fire(clip.EventsBetween(0, 0, includeFrom))
		pb.passes++
		if !pb.repeat {
			pb.finished = true
		}
		return
	}

	from := pb.seek
	to := max(pb.seek+delta, 0)
	if to < clip.Duration {
		fire(clip.EventsBetween(from, to, includeFrom))
		pb.seek = to
		return
	}

	// 第一次到达结尾
	fire(clip.EventsBetween(from, clip.Duration, includeFrom))
	pb.passes++
	if !pb.repeat {
		pb.seek = clip.Duration
		pb.finished = true
		return
	}

	// 剩余时间：完整的循环轮数 + 最后一段
	rest := to - clip.Duration
	full := math.Floor(rest / clip.Duration)
	for i := 0; i < MaxMarkerPassesPerTick && float64(i) < full; i++ {
		fire(clip.EventsBetween(0, clip.Duration, true))
	}
	pb.passes += int(min(full, math.MaxInt32))

	seek := math.Mod(rest, clip.Duration)
	fire(clip.EventsBetween(0, seek, true))
	pb.seek = seek
}
