package components

import (
	"slices"
)

// Entry 单个要播放的动画
type Entry struct {
	// Index 配置索引（0 = root，k = 第 k-1 个 clip）
	Index int

	// Mask 可选的 mask group；nil 表示不加 mask
	Mask *uint32

	// Speed 可选的播放速度；nil 表示 1.0
	Speed *float64
}

// NewEntry 创建不带 mask 和速度的条目
func NewEntry(index int) Entry {
	return Entry{Index: index}
}

// NewEntryWithMask 创建带 mask group 的条目
func NewEntryWithMask(index int, group uint32) Entry {
	return Entry{Index: index, Mask: &group}
}

// NewEntryWithSpeed 创建带播放速度的条目
func NewEntryWithSpeed(index int, speed float64) Entry {
	return Entry{Index: index, Speed: &speed}
}

// WithMask 返回设置了 mask group 的副本
func (e Entry) WithMask(group uint32) Entry {
	e.Mask = &group
	return e
}

// WithSpeed 返回设置了速度的副本
func (e Entry) WithSpeed(speed float64) Entry {
	e.Speed = &speed
	return e
}

// SpeedOrDefault 返回播放速度，未设置时为 1.0
func (e Entry) SpeedOrDefault() float64 {
	if e.Speed == nil {
		return 1.0
	}
	return *e.Speed
}

// Directive 所有者期望播放的动画（纯数据 + 修改方法）
//
// 生命周期:
//  1. BindingSystem 绑定时以默认动画创建（循环播放）
//  2. 应用代码通过 Set/SetLoop/SetOnce/SetNext/StopAll 修改
//  3. SyncSystem 检测到 revision 变化后同步到播放器
//  4. CompletionSystem 在全部播放结束时弹出队列或停止
//
// 这些方法不做校验；需要类型化错误时使用 AnimsPlugin 上的同名方法。
type Directive struct {
	entries []Entry
	repeat  bool

	// next 后进先出的队列；hasNext 区分 "没有队列" 和 "空队列"
	next    [][]Entry
	hasNext bool

	revision uint64
}

// NewDirective 创建循环播放 index 的 Directive，没有队列
func NewDirective(index int) *Directive {
	return &Directive{
		entries:  []Entry{NewEntry(index)},
		repeat:   true,
		revision: 1,
	}
}

func (d *Directive) touch() {
	d.revision++
}

// Set 替换条目和循环标志，队列保持不变
func (d *Directive) Set(entries []Entry, repeat bool) {
	d.entries = slices.Clone(entries)
	d.repeat = repeat
	d.touch()
}

// SetLoop 循环播放单个动画，队列保持不变
func (d *Directive) SetLoop(index int) {
	d.entries = []Entry{NewEntry(index)}
	d.repeat = true
	d.touch()
}

// SetOnce 播放单个动画一次，队列保持不变
func (d *Directive) SetOnce(index int) {
	d.entries = []Entry{NewEntry(index)}
	d.repeat = false
	d.touch()
}

// SetNext 安装后续播放队列，每次播放全部结束时弹出一组
// 最后一个元素最先播放；空队列在下一次结束时停止播放。移除队列用 ClearNext
func (d *Directive) SetNext(queue [][]Entry) {
	d.next = make([][]Entry, len(queue))
	for i, set := range queue {
		d.next[i] = slices.Clone(set)
	}
	d.hasNext = true
	d.touch()
}

// StopAll 清空条目，播放器将停止所有动画
func (d *Directive) StopAll() {
	d.entries = nil
	d.touch()
}

// Entries 当前条目（副本）
func (d *Directive) Entries() []Entry {
	return slices.Clone(d.entries)
}

// Repeat 是否循环播放
func (d *Directive) Repeat() bool {
	return d.repeat
}

// Indices 条目索引去重后的升序集合
func (d *Directive) Indices() []int {
	indices := make([]int, 0, len(d.entries))
	for _, e := range d.entries {
		indices = append(indices, e.Index)
	}
	slices.Sort(indices)
	return slices.Compact(indices)
}

// HasNext 是否存在队列（可能为空）
func (d *Directive) HasNext() bool {
	return d.hasNext
}

// Next 队列的副本；没有队列时返回 nil
func (d *Directive) Next() [][]Entry {
	if !d.hasNext {
		return nil
	}
	out := make([][]Entry, len(d.next))
	for i, set := range d.next {
		out[i] = slices.Clone(set)
	}
	return out
}

// PopNext 弹出最后压入的一组条目
// 队列不存在或为空时返回 false
func (d *Directive) PopNext() ([]Entry, bool) {
	if !d.hasNext || len(d.next) == 0 {
		return nil, false
	}
	last := d.next[len(d.next)-1]
	d.next = d.next[:len(d.next)-1]
	d.touch()
	return last, true
}

// ClearNext 移除队列
func (d *Directive) ClearNext() {
	if !d.hasNext && d.next == nil {
		return
	}
	d.next = nil
	d.hasNext = false
	d.touch()
}

// Revision 每次修改都会递增，用于变化检测
func (d *Directive) Revision() uint64 {
	return d.revision
}
