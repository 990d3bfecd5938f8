package systems

import (
	"log"

	"github.com/decker502/pganims/pkg/animgraph"
	"github.com/decker502/pganims/pkg/asset"
	"github.com/decker502/pganims/pkg/components"
	"github.com/decker502/pganims/pkg/config"
	"github.com/decker502/pganims/pkg/ecs"
	"github.com/decker502/pganims/pkg/events"
)

// AnimsPlugin 骨骼动画插件
//
// 持有动画图资源、通知队列和所有动画系统，每帧按固定顺序运行：
//
//	graph init -> graph attach -> binding -> sync -> player advance -> completion -> event flush
//
// 所有系统在调用 Update 的 goroutine 上运行。
type AnimsPlugin struct {
	entityManager *ecs.EntityManager
	store         *asset.Store
	config        *config.PluginConfig
	resource      *AnimGraphResource
	events        *events.Queue
	logger        *log.Logger

	graphInit     *GraphInitSystem
	graphAttach   *GraphAttachSystem
	binding       *BindingSystem
	sync          *SyncSystem
	playerAdvance *PlayerAdvanceSystem
	completion    *CompletionSystem
}

// NewAnimsPlugin 创建动画插件
// cfg 为 nil 时使用默认配置
func NewAnimsPlugin(em *ecs.EntityManager, store *asset.Store, cfg *config.PluginConfig) *AnimsPlugin {
	if cfg == nil {
		cfg = config.DefaultPluginConfig()
	}

	res := &AnimGraphResource{}
	queue := events.NewQueue()

	p := &AnimsPlugin{
		entityManager: em,
		store:         store,
		config:        cfg,
		resource:      res,
		events:        queue,
		logger:        log.Default(),

		graphInit:     NewGraphInitSystem(em, store, res),
		graphAttach:   NewGraphAttachSystem(em, res, cfg),
		binding:       NewBindingSystem(em, cfg.MaxAncestorDepth),
		sync:          NewSyncSystem(em),
		playerAdvance: NewPlayerAdvanceSystem(em, queue),
		completion:    NewCompletionSystem(em),
	}
	p.sync.SetPolling(cfg.Polling)
	p.sync.OnReplay(p.completion.Reset)
	return p
}

// SetLogger 设置所有系统的日志输出
func (p *AnimsPlugin) SetLogger(l *log.Logger) {
	p.logger = l
	p.events.SetLogger(l)
	p.graphInit.SetLogger(l)
	p.graphAttach.SetLogger(l)
	p.binding.SetLogger(l)
	p.sync.SetLogger(l)
	p.completion.SetLogger(l)
}

// SetPolling 开启或关闭同步系统的轮询模式
func (p *AnimsPlugin) SetPolling(polling bool) {
	p.sync.SetPolling(polling)
}

// Events 返回通知队列，用于订阅或添加 Sink
func (p *AnimsPlugin) Events() *events.Queue {
	return p.events
}

// Definition 返回当前动画图定义，尚未构建时为 nil
func (p *AnimsPlugin) Definition() *animgraph.Definition {
	def, _ := p.resource.Get()
	return def
}

// Model 返回构建当前动画图的模型
func (p *AnimsPlugin) Model() *asset.Model {
	_, model := p.resource.Get()
	return model
}

// ConfigErr 返回挂载动画图时发现的配置错误
func (p *AnimsPlugin) ConfigErr() error {
	return p.graphAttach.ConfigErr()
}

// RequestGraph 请求从模型构建动画图，返回请求实体
// 模型加载完成后的第一帧构建，请求实体随后被销毁
func (p *AnimsPlugin) RequestGraph(model asset.Handle) ecs.EntityID {
	id := p.entityManager.CreateEntity()
	ecs.AddComponent(p.entityManager, id, &components.AnimGraphInit{Model: model})
	return id
}

// ValidateConfig 对照当前模型校验插件配置
func (p *AnimsPlugin) ValidateConfig() error {
	def, model := p.resource.Get()
	if def == nil {
		return ErrGraphNotReady
	}
	var hasBone func(string) bool
	if model != nil {
		hasBone = func(path string) bool {
			_, ok := model.ResolveTarget(normalizePath(path, p.config.PathSeparator, model.Separator))
			return ok
		}
	}
	return p.config.ValidateAgainst(def.ClipCount(), hasBone)
}

// Update 运行一帧
func (p *AnimsPlugin) Update(dt float64) {
	p.graphInit.Update()
	p.graphAttach.Update()
	p.binding.Update()
	p.sync.Update()
	p.playerAdvance.Update(dt)
	p.completion.Update()
	p.events.Flush()

	p.entityManager.RemoveMarkedEntities()
}
