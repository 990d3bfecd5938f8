package systems

import (
	"bytes"
	"log"
	"testing"

	"github.com/decker502/pganims/pkg/animgraph"
	"github.com/decker502/pganims/pkg/asset"
	"github.com/decker502/pganims/pkg/components"
	"github.com/decker502/pganims/pkg/config"
	"github.com/decker502/pganims/pkg/ecs"
	"github.com/decker502/pganims/pkg/events"
	"github.com/decker502/pganims/pkg/player"
)

const testModel asset.Handle = "knight"

// newTestModel 三个 clip：1 = idle (1.0s)，2 = walk (0.5s)，3 = attack (0.25s)
func newTestModel() *asset.Model {
	clips := []*animgraph.Clip{
		animgraph.NewClip("anim_idle", 1.0),
		animgraph.NewClip("anim_walk", 0.5),
		animgraph.NewClip("anim_attack", 0.25),
	}
	bones := []string{"Hips", "Hips/Spine", "Hips/Spine/Head", "Hips/LegL"}
	return asset.NewModel("knight", clips, bones, "/")
}

type animsFixture struct {
	t      *testing.T
	em     *ecs.EntityManager
	store  *asset.Store
	plugin *AnimsPlugin
	logs   *bytes.Buffer
	events []events.AnimEvent
}

// newAnimsFixture 创建插件并请求构建 knight 动画图（模型已加载）
func newAnimsFixture(t *testing.T, cfg *config.PluginConfig) *animsFixture {
	t.Helper()

	f := &animsFixture{
		t:     t,
		em:    ecs.NewEntityManager(),
		store: asset.NewStore(),
		logs:  &bytes.Buffer{},
	}
	f.store.Insert(testModel, newTestModel())
	f.plugin = NewAnimsPlugin(f.em, f.store, cfg)
	f.plugin.SetLogger(log.New(f.logs, "", 0))
	f.plugin.Events().Subscribe(func(ev events.AnimEvent) {
		f.events = append(f.events, ev)
	})
	f.plugin.RequestGraph(testModel)
	return f
}

// spawn 创建 所有者 -> 骨架节点 -> 骨骼 的层级
func (f *animsFixture) spawn(defaultAnim int) (owner, skeleton ecs.EntityID, p *player.AnimationPlayer) {
	owner = f.em.CreateEntity()
	ecs.AddComponent(f.em, owner, components.NewAnimatable(defaultAnim))

	armature := f.em.CreateEntity()
	f.em.SetParent(armature, owner)

	skeleton, p = f.spawnSkeleton(armature)
	return owner, skeleton, p
}

func (f *animsFixture) spawnSkeleton(parent ecs.EntityID) (ecs.EntityID, *player.AnimationPlayer) {
	skeleton := f.em.CreateEntity()
	f.em.SetParent(skeleton, parent)
	p := player.NewAnimationPlayer()
	ecs.AddComponent(f.em, skeleton, &components.AnimationPlayerComponent{Player: p})
	return skeleton, p
}

func (f *animsFixture) directive(owner ecs.EntityID) *components.Directive {
	f.t.Helper()
	d, err := f.plugin.Directive(owner)
	if err != nil {
		f.t.Fatalf("获取 Directive 失败: %v", err)
	}
	return d
}

// node 配置索引对应的图节点
func (f *animsFixture) node(k int) animgraph.NodeIndex {
	f.t.Helper()
	def := f.plugin.Definition()
	if def == nil {
		f.t.Fatal("动画图尚未构建")
	}
	n, err := def.Node(k)
	if err != nil {
		f.t.Fatalf("Node(%d) 失败: %v", k, err)
	}
	return n
}

// playing 正在播放的配置索引
func (f *animsFixture) playing(p *player.AnimationPlayer) []int {
	def := f.plugin.Definition()
	var out []int
	for _, n := range p.PlayingAnimations() {
		if k, ok := def.IndexOf(n); ok {
			out = append(out, k)
		}
	}
	return out
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
