package systems

import (
	"log"
	"strings"

	"github.com/decker502/pganims/pkg/animgraph"
	"github.com/decker502/pganims/pkg/asset"
	"github.com/decker502/pganims/pkg/components"
	"github.com/decker502/pganims/pkg/config"
	"github.com/decker502/pganims/pkg/ecs"
)

// GraphAttachSystem 把动画图挂到新出现的骨骼实体上
//
// 第一个骨骼出现时对 Definition 执行一次 Attach（mask 分组、start/end 标记），
// 之后每个骨骼只添加 AnimGraphHandle。
// 所有者实体（携带 Animatable）自身不会被当作骨骼。
type GraphAttachSystem struct {
	entityManager *ecs.EntityManager
	resource      *AnimGraphResource
	config        *config.PluginConfig
	logger        *log.Logger

	configErr error
}

// NewGraphAttachSystem 创建动画图挂载系统
func NewGraphAttachSystem(em *ecs.EntityManager, res *AnimGraphResource, cfg *config.PluginConfig) *GraphAttachSystem {
	if cfg == nil {
		cfg = config.DefaultPluginConfig()
	}
	return &GraphAttachSystem{
		entityManager: em,
		resource:      res,
		config:        cfg,
		logger:        log.Default(),
	}
}

// SetLogger 设置日志输出
func (s *GraphAttachSystem) SetLogger(l *log.Logger) {
	s.logger = l
}

// ConfigErr 返回 Attach 时发现的配置错误（无效项已跳过）
func (s *GraphAttachSystem) ConfigErr() error {
	return s.configErr
}

// Update 为尚未挂载动画图的骨骼挂载当前 Definition
func (s *GraphAttachSystem) Update() {
	def, model := s.resource.Get()
	if def == nil {
		return
	}

	for _, skeleton := range ecs.GetEntitiesWith1[*components.AnimationPlayerComponent](s.entityManager) {
		if ecs.HasComponent[*components.AnimGraphHandle](s.entityManager, skeleton) ||
			ecs.HasComponent[*components.Animatable](s.entityManager, skeleton) {
			continue
		}

		attached, err := def.Attach(s.attachConfig(model), skeleton)
		if attached {
			s.logger.Printf("[GraphAttachSystem] 已附加 mask 与事件: start=%v, end=%v, masks=%d",
				s.config.AnimsWithStartEvent, s.config.AnimsWithEndEvent, len(s.config.TargetsMasksMapping))
		}
		if err != nil {
			s.configErr = &config.ConfigError{Problems: unjoin(err)}
			s.logger.Printf("[GraphAttachSystem] 配置错误（已跳过无效项）: %v", err)
		}

		ecs.AddComponent(s.entityManager, skeleton, &components.AnimGraphHandle{Definition: def})
	}
}

func (s *GraphAttachSystem) attachConfig(model *asset.Model) animgraph.AttachConfig {
	masks := make([]animgraph.MaskMapping, 0, len(s.config.TargetsMasksMapping))
	for _, m := range s.config.TargetsMasksMapping {
		masks = append(masks, animgraph.MaskMapping{Path: m.Path, Groups: m.Masks})
	}

	cfg := animgraph.AttachConfig{
		StartEvents:   s.config.AnimsWithStartEvent,
		EndEvents:     s.config.AnimsWithEndEvent,
		Masks:         masks,
		PathSeparator: s.config.PathSeparator,
	}
	if model != nil {
		sep := s.config.PathSeparator
		cfg.ResolveTarget = func(path string) (animgraph.TargetID, bool) {
			return model.ResolveTarget(normalizePath(path, sep, model.Separator))
		}
	}
	return cfg
}

// normalizePath 把配置中的骨骼路径转换为模型使用的分隔符
func normalizePath(path, from, to string) string {
	if from == "" || from == to {
		return path
	}
	return strings.Join(strings.Split(path, from), to)
}

// unjoin 展开 errors.Join 产生的错误列表
func unjoin(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
