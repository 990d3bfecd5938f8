package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/pganims/pkg/asset"
	"github.com/decker502/pganims/pkg/components"
	"github.com/decker502/pganims/pkg/config"
	"github.com/decker502/pganims/pkg/ecs"
	"github.com/decker502/pganims/pkg/embedded"
	"github.com/decker502/pganims/pkg/events"
	"github.com/decker502/pganims/pkg/persist"
	"github.com/decker502/pganims/pkg/player"
	"github.com/decker502/pganims/pkg/systems"
)

const (
	screenWidth  = 800
	screenHeight = 600
	maxEventLog  = 10
)

var (
	configPath = flag.String("config", "", "插件配置文件路径（为空时使用内嵌的 data/pganims.yaml）")
	modelID    = flag.String("model", "knight", "模型 ID")
	useMQTT    = flag.Bool("mqtt", false, "同时把通知发布到 MQTT broker ($PGANIMS_MQTT_URL)")
	verbose    = flag.Bool("verbose", false, "详细日志")
)

var digitKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// Viewer 动画指令查看器
// 每个 tick 驱动一次 AnimsPlugin，键盘修改 Directive
type Viewer struct {
	em      *ecs.EntityManager
	store   *asset.Store
	plugin  *systems.AnimsPlugin
	saves   *persist.DirectiveStore
	modelID string

	owner    ecs.EntityID
	skeleton ecs.EntityID
	player   *player.AnimationPlayer

	restored bool
	polling  bool
	status   string
	eventLog []string
	elapsed  float64
}

// NewViewer 创建查看器并开始异步加载模型
func NewViewer(cfg *config.PluginConfig, catalog *config.ModelConfigManager, saves *persist.DirectiveStore) (*Viewer, error) {
	mc, err := catalog.GetModel(*modelID)
	if err != nil {
		return nil, err
	}
	fsys, err := embedded.FS()
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		em:      ecs.NewEntityManager(),
		store:   asset.NewStore(),
		saves:   saves,
		modelID: mc.ID,
		polling: cfg.Polling,
		status:  "loading...",
	}

	// 模型在后台加载，加载完成前插件每帧重试
	v.store.LoadCatalogAsync(fsys, catalog)

	v.plugin = systems.NewAnimsPlugin(v.em, v.store, cfg)
	if !*verbose {
		v.plugin.SetLogger(log.New(io.Discard, "", 0))
	}
	v.plugin.RequestGraph(asset.Handle(mc.ID))
	v.plugin.Events().Subscribe(v.onEvent)

	v.owner = v.em.CreateEntity()
	ecs.AddComponent(v.em, v.owner, components.NewAnimatable(mc.DefaultAnim))
	v.skeleton = v.em.CreateEntity()
	v.em.SetParent(v.skeleton, v.owner)
	v.player = player.NewAnimationPlayer()
	ecs.AddComponent(v.em, v.skeleton, &components.AnimationPlayerComponent{Player: v.player})

	return v, nil
}

func (v *Viewer) onEvent(ev events.AnimEvent) {
	line := fmt.Sprintf("%7.2fs %-5s anim=%d skeleton=%d", v.elapsed, ev.Kind, ev.Anim, ev.Skeleton)
	v.eventLog = append(v.eventLog, line)
	if len(v.eventLog) > maxEventLog {
		v.eventLog = v.eventLog[len(v.eventLog)-maxEventLog:]
	}
}

// Update 更新逻辑（每秒 60 次）
func (v *Viewer) Update() error {
	dt := 1.0 / float64(ebiten.TPS())
	v.elapsed += dt
	v.plugin.Update(dt)

	d, err := v.plugin.Directive(v.owner)
	if err != nil {
		// 尚未绑定
		return nil
	}
	if !v.restored {
		v.restored = true
		if ok, err := v.saves.RestoreDirective(v.modelID, d); err != nil {
			log.Printf("[Viewer] 恢复 Directive 失败: %v", err)
		} else if ok {
			v.status = "restored saved directive"
		} else {
			v.status = "ready"
		}
	}

	return v.handleInput(d)
}

func (v *Viewer) handleInput(d *components.Directive) error {
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	for i, key := range digitKeys {
		if !inpututil.IsKeyJustPressed(key) {
			continue
		}
		index := i + 1
		var err error
		if shift {
			err = v.plugin.SetOnce(v.owner, index)
		} else {
			err = v.plugin.SetLoop(v.owner, index)
		}
		v.report(err, fmt.Sprintf("play %d (once=%v)", index, shift))
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		// 依次播放所有 clip：最后压入的最先播放
		def := v.plugin.Definition()
		queue := make([][]components.Entry, 0, def.ClipCount())
		for k := def.ClipCount(); k >= 1; k-- {
			queue = append(queue, []components.Entry{components.NewEntry(k)})
		}
		v.report(v.plugin.SetNext(v.owner, queue), fmt.Sprintf("queued %d clips", len(queue)))
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		entries := d.Entries()
		for i := range entries {
			entries[i] = entries[i].WithMask(1)
		}
		v.report(v.plugin.Set(v.owner, entries, d.Repeat()), "mask group 1 applied")
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		v.report(v.plugin.StopAll(v.owner), "stopped")
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		v.polling = !v.polling
		v.plugin.SetPolling(v.polling)
		v.status = fmt.Sprintf("polling=%v", v.polling)
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		v.report(v.saves.SaveDirective(v.modelID, d), "directive saved")
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		if err := v.saves.SaveDirective(v.modelID, d); err != nil {
			log.Printf("[Viewer] 保存 Directive 失败: %v", err)
		}
		return ebiten.Termination
	}
	return nil
}

func (v *Viewer) report(err error, ok string) {
	if err != nil {
		v.status = "error: " + err.Error()
		return
	}
	v.status = ok
}

// Draw 绘制调试信息和播放进度
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 32, G: 36, B: 48, A: 255})

	var b strings.Builder
	fmt.Fprintf(&b, "pganims viewer - model %s   TPS %.0f\n", v.modelID, ebiten.ActualTPS())
	b.WriteString("[1-9] loop  [Shift+1-9] once  [N] queue all  [M] mask  [S] stop  [P] polling  [F5] save  [Esc] quit\n\n")

	model := v.plugin.Model()
	def := v.plugin.Definition()
	if model == nil || def == nil {
		if err := v.store.Err(asset.Handle(v.modelID)); err != nil {
			fmt.Fprintf(&b, "model load failed: %v\n", err)
		} else {
			b.WriteString("waiting for model...\n")
		}
		ebitenutil.DebugPrint(screen, b.String())
		return
	}

	for i, clip := range model.Clips {
		fmt.Fprintf(&b, "  %d  %-14s %.2fs\n", i+1, clip.Name, clip.Duration)
	}

	if d, err := v.plugin.Directive(v.owner); err == nil {
		fmt.Fprintf(&b, "\ndirective: entries=%v repeat=%v queued=%d\n", d.Indices(), d.Repeat(), len(d.Next()))
	}
	fmt.Fprintf(&b, "status: %s\n", v.status)
	if err := v.plugin.ConfigErr(); err != nil {
		fmt.Fprintf(&b, "config: %v\n", err)
	}

	b.WriteString("\nevents:\n")
	for _, line := range v.eventLog {
		b.WriteString("  " + line + "\n")
	}
	ebitenutil.DebugPrint(screen, b.String())

	v.drawProgress(screen, model)
}

// drawProgress 每个活动 clip 一条进度条
func (v *Viewer) drawProgress(screen *ebiten.Image, model *asset.Model) {
	def := v.plugin.Definition()
	const x, width, height = 420, 340, 14
	y := float32(60)
	for k := 1; k <= def.ClipCount(); k++ {
		node, clip, err := def.Clip(k)
		if err != nil {
			continue
		}
		vector.DrawFilledRect(screen, x, y, width, height, color.RGBA{R: 60, G: 64, B: 80, A: 255}, false)

		if pb, ok := v.player.Animation(node); ok && clip.Duration > 0 {
			fill := color.RGBA{R: 90, G: 200, B: 120, A: 255}
			if pb.IsFinished() {
				fill = color.RGBA{R: 200, G: 120, B: 90, A: 255}
			}
			ratio := float32(pb.Seek() / clip.Duration)
			if ratio > 1 {
				ratio = 1
			}
			vector.DrawFilledRect(screen, x, y, width*ratio, height, fill, false)
		}
		ebitenutil.DebugPrintAt(screen, model.Clips[k-1].Name, x+4, int(y)-1)
		y += height + 6
	}
}

// Layout 返回逻辑屏幕尺寸
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// loadPluginConfig 读取插件配置；静态校验失败时仍返回配置和 *config.ConfigError
func loadPluginConfig() (*config.PluginConfig, error) {
	path := "data/pganims.yaml"
	var data []byte
	var err error
	if *configPath != "" {
		path = *configPath
		data, err = os.ReadFile(path)
	} else {
		data, err = embedded.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	cfg, err := config.ParsePluginConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func main() {
	flag.Parse()

	embedded.Init(dataFS)

	cfg, err := loadPluginConfig()
	if err != nil {
		var cfgErr *config.ConfigError
		if !errors.As(err, &cfgErr) {
			log.Fatalf("加载插件配置失败: %v", err)
		}
		log.Printf("[Main] 插件配置有误，无效项将被跳过: %v", err)
	}

	fsys, err := embedded.FS()
	if err != nil {
		log.Fatal(err)
	}
	catalog, err := config.NewModelConfigManager(fsys, "data/models.yaml")
	if err != nil {
		log.Fatalf("加载模型目录失败: %v", err)
	}

	// gdata 不可用时退化为内存存储
	gdataManager, err := gdata.Open(gdata.Config{AppName: "pganims"})
	if err != nil {
		log.Printf("[Main] gdata 初始化失败: %v", err)
		gdataManager = nil
	}
	saves := persist.NewDirectiveStore(gdataManager)

	viewer, err := NewViewer(cfg, catalog, saves)
	if err != nil {
		log.Fatal(err)
	}

	if *useMQTT {
		sink := events.NewMQTTSink("pganims-viewer", events.DefaultTopicPrefix)
		if err := sink.Connect(5 * time.Second); err != nil {
			log.Printf("[Main] MQTT 连接失败 (%s): %v", events.BrokerURL(), err)
		} else {
			defer sink.Disconnect()
			viewer.plugin.Events().AddSink(sink)
		}
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("pganims - 骨骼动画指令查看器")

	if err := ebiten.RunGame(viewer); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
