package systems

import (
	"math"
	"strings"
	"testing"

	"github.com/decker502/pganims/pkg/animgraph"
	"github.com/decker502/pganims/pkg/components"
	"github.com/decker502/pganims/pkg/config"
)

// TestSyncSystem_Idempotent 再次设置相同的集合不会停止或重新播放
func TestSyncSystem_Idempotent(t *testing.T) {
	f := newAnimsFixture(t, nil)
	owner, _, p := f.spawn(1)
	f.plugin.Update(0)
	d := f.directive(owner)

	tests := []struct {
		name    string
		mutate  func()
		replays bool
	}{
		{"相同的循环动画", func() { d.SetLoop(1) }, false},
		{"重复条目", func() { d.Set([]components.Entry{components.NewEntry(1), components.NewEntry(1)}, true) }, false},
		{"两个动画", func() { d.Set([]components.Entry{components.NewEntry(2), components.NewEntry(3)}, true) }, true},
		{"顺序不同", func() { d.Set([]components.Entry{components.NewEntry(3), components.NewEntry(2)}, true) }, false},
		{"只改速度", func() { d.Set([]components.Entry{components.NewEntryWithSpeed(3, 2), components.NewEntry(2)}, true) }, false},
		{"减少一个", func() { d.Set([]components.Entry{components.NewEntry(2)}, true) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plays, stops := p.Plays, p.Stops
			tt.mutate()
			f.plugin.Update(0.01)

			replayed := p.Stops != stops || p.Plays != plays
			if replayed != tt.replays {
				t.Errorf("replayed = %v, want %v (plays %d->%d, stops %d->%d)",
					replayed, tt.replays, plays, p.Plays, stops, p.Stops)
			}
		})
	}
}

func TestSyncSystem_AppliesEntryState(t *testing.T) {
	f := newAnimsFixture(t, nil)
	owner, _, p := f.spawn(1)
	f.plugin.Update(0)

	d := f.directive(owner)
	d.Set([]components.Entry{
		components.NewEntryWithMask(2, 1).WithSpeed(0.5),
		components.NewEntry(3),
	}, false)
	f.plugin.Update(0)

	if got := f.playing(p); !intsEqual(got, []int{2, 3}) {
		t.Fatalf("期望播放 [2 3]，实际 %v", got)
	}
	walk, _ := p.Animation(f.node(2))
	if walk.Speed() != 0.5 {
		t.Errorf("walk Speed = %v, want 0.5", walk.Speed())
	}
	if walk.IsRepeating() {
		t.Error("repeat=false 时不应循环")
	}
	attack, _ := p.Animation(f.node(3))
	if attack.Speed() != 1.0 {
		t.Errorf("未设置速度时应为 1.0，实际 %v", attack.Speed())
	}

	graph := f.plugin.Definition().Graph
	n2, _ := graph.Node(f.node(2))
	if n2.Mask != animgraph.AnimationMask(1<<1) {
		t.Errorf("walk mask = %b, want %b", n2.Mask, 1<<1)
	}
	n3, _ := graph.Node(f.node(3))
	if n3.Mask != 0 {
		t.Errorf("attack 不应有 mask，实际 %b", n3.Mask)
	}
}

// TestSyncSystem_MaskExclusivity 新 mask 替换旧 mask，不设置 mask 时清空
func TestSyncSystem_MaskExclusivity(t *testing.T) {
	f := newAnimsFixture(t, nil)
	owner, _, _ := f.spawn(1)
	f.plugin.Update(0)
	d := f.directive(owner)
	graph := f.plugin.Definition().Graph

	d.Set([]components.Entry{components.NewEntryWithMask(2, 1)}, true)
	f.plugin.Update(0)

	d.Set([]components.Entry{components.NewEntry(3)}, true)
	f.plugin.Update(0)
	d.Set([]components.Entry{components.NewEntryWithMask(2, 4)}, true)
	f.plugin.Update(0)

	n, _ := graph.Node(f.node(2))
	if n.Mask != animgraph.AnimationMask(1<<4) {
		t.Errorf("mask 应只有 group 4，实际 %v", n.Mask.Groups())
	}

	d.Set([]components.Entry{components.NewEntry(3)}, true)
	f.plugin.Update(0)
	d.Set([]components.Entry{components.NewEntry(2)}, true)
	f.plugin.Update(0)

	n, _ = graph.Node(f.node(2))
	if n.Mask != 0 {
		t.Errorf("不带 mask 的条目应清空 mask，实际 %v", n.Mask.Groups())
	}
}

func TestSyncSystem_SkipsInvalidEntries(t *testing.T) {
	f := newAnimsFixture(t, nil)
	owner, _, p := f.spawn(1)
	f.plugin.Update(0)

	// 绕过校验 API 直接写入无效索引
	d := f.directive(owner)
	d.Set([]components.Entry{components.NewEntry(0), components.NewEntry(7), components.NewEntry(2)}, true)
	f.plugin.Update(0)

	if got := f.playing(p); !intsEqual(got, []int{2}) {
		t.Fatalf("只应播放有效条目 [2]，实际 %v", got)
	}
	if got := strings.Count(f.logs.String(), "[SyncSystem] 跳过无效条目"); got != 2 {
		t.Errorf("期望 2 条跳过日志，实际 %d\n%s", got, f.logs.String())
	}
}

// TestSyncSystem_SkipsNonFiniteSpeed 绕过校验写入的非有限速度不会被播放，也不会卡住推进
func TestSyncSystem_SkipsNonFiniteSpeed(t *testing.T) {
	f := newAnimsFixture(t, nil)
	owner, _, p := f.spawn(1)
	f.plugin.Update(0)

	d := f.directive(owner)
	d.Set([]components.Entry{
		components.NewEntryWithSpeed(2, math.Inf(1)),
		components.NewEntryWithSpeed(1, math.NaN()),
		components.NewEntry(3),
	}, true)
	for i := 0; i < 3; i++ {
		f.plugin.Update(1.0 / 60.0)
	}

	if got := f.playing(p); !intsEqual(got, []int{3}) {
		t.Fatalf("只应播放速度有效的条目 [3]，实际 %v", got)
	}
	if got := strings.Count(f.logs.String(), "[SyncSystem] 跳过无效条目"); got != 2 {
		t.Errorf("期望 2 条跳过日志，实际 %d\n%s", got, f.logs.String())
	}
}

// TestSyncSystem_EmptyDirectiveStopsFinishedClips 条目清空时停止播放器中残留的已结束 clip
func TestSyncSystem_EmptyDirectiveStopsFinishedClips(t *testing.T) {
	f := newAnimsFixture(t, nil)
	owner, _, p := f.spawn(1)
	f.plugin.Update(0)

	d := f.directive(owner)
	d.Set([]components.Entry{components.NewEntry(2)}, false)
	f.plugin.Update(0.6)
	if got := d.Indices(); len(got) != 0 {
		t.Fatalf("结束后应清空条目，实际 %v", got)
	}

	stops := p.Stops
	f.plugin.Update(0)
	if p.Stops != stops+1 {
		t.Errorf("期望调用 StopAll: stops %d -> %d", stops, p.Stops)
	}
	if _, ok := p.Animation(f.node(2)); ok {
		t.Error("clip 2 不应仍处于活动状态")
	}
}

// TestSyncSystem_Polling 轮询模式下外部改动会被纠正，且不会重复重启
func TestSyncSystem_Polling(t *testing.T) {
	cfg := config.DefaultPluginConfig()
	cfg.Polling = true

	f := newAnimsFixture(t, cfg)
	_, _, p := f.spawn(2)
	f.plugin.Update(0)

	plays := p.Plays
	for i := 0; i < 5; i++ {
		f.plugin.Update(0.01)
	}
	if p.Plays != plays {
		t.Errorf("集合一致时轮询不应重新播放: plays %d -> %d", plays, p.Plays)
	}

	p.StopAll()
	f.plugin.Update(0.01)
	if got := f.playing(p); !intsEqual(got, []int{2}) {
		t.Errorf("轮询模式应恢复播放 [2]，实际 %v", got)
	}
}

// TestSyncSystem_ChangeDetection 关闭轮询时只处理有变化的 Directive
func TestSyncSystem_ChangeDetection(t *testing.T) {
	f := newAnimsFixture(t, nil)
	owner, _, p := f.spawn(2)
	f.plugin.Update(0)

	plays := p.Plays
	f.plugin.Update(0.01)
	f.plugin.Update(0.01)
	if p.Plays != plays {
		t.Errorf("Directive 未变化时不应播放: plays %d -> %d", plays, p.Plays)
	}

	f.directive(owner).SetLoop(3)
	f.plugin.Update(0)
	if got := f.playing(p); !intsEqual(got, []int{3}) {
		t.Errorf("期望播放 [3]，实际 %v", got)
	}
}

// TestSyncSystem_ShortClipCompletesSameTick clip 在重新播放的同一帧结束也能推进队列
func TestSyncSystem_ShortClipCompletesSameTick(t *testing.T) {
	f := newAnimsFixture(t, nil)
	owner, _, _ := f.spawn(1)
	f.plugin.Update(0)

	d := f.directive(owner)
	d.SetOnce(3)
	d.SetNext([][]components.Entry{{components.NewEntry(1)}, {components.NewEntry(3)}})

	f.plugin.Update(1.0) // 播放 3 并在同一帧结束 -> 弹出 [3]
	f.plugin.Update(1.0) // 再次播放 3 并结束 -> 弹出 [1]

	if got := d.Indices(); !intsEqual(got, []int{1}) {
		t.Errorf("期望 entries=[1]，实际 %v", got)
	}
	if d.HasNext() {
		t.Error("队列应已耗尽")
	}
}
