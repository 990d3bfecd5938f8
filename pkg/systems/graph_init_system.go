package systems

import (
	"log"

	"github.com/decker502/pganims/pkg/animgraph"
	"github.com/decker502/pganims/pkg/asset"
	"github.com/decker502/pganims/pkg/components"
	"github.com/decker502/pganims/pkg/ecs"
)

// GraphInitSystem 从已加载的模型构建动画图定义
//
// 查询携带 AnimGraphInit 的实体：
//   - 模型已加载：构建 Definition（root 在索引 0，第 i 个 clip 在 i+1），写入资源，销毁请求实体
//   - 模型未加载：什么都不做，下一帧重试
//   - 模型加载失败：记录一次日志，请求保留（重新加载成功后仍可构建）
type GraphInitSystem struct {
	entityManager *ecs.EntityManager
	store         *asset.Store
	resource      *AnimGraphResource
	logger        *log.Logger

	// reported 已报告过的加载失败，避免每帧刷屏
	reported map[asset.Handle]bool
}

// NewGraphInitSystem 创建动画图构建系统
func NewGraphInitSystem(em *ecs.EntityManager, store *asset.Store, res *AnimGraphResource) *GraphInitSystem {
	return &GraphInitSystem{
		entityManager: em,
		store:         store,
		resource:      res,
		logger:        log.Default(),
		reported:      make(map[asset.Handle]bool),
	}
}

// SetLogger 设置日志输出
func (s *GraphInitSystem) SetLogger(l *log.Logger) {
	s.logger = l
}

// Update 处理所有待构建的请求
func (s *GraphInitSystem) Update() {
	for _, id := range ecs.GetEntitiesWith1[*components.AnimGraphInit](s.entityManager) {
		req, _ := ecs.GetComponent[*components.AnimGraphInit](s.entityManager, id)

		model, ok := s.store.Get(req.Model)
		if !ok {
			if err := s.store.Err(req.Model); err != nil && !s.reported[req.Model] {
				s.logger.Printf("[GraphInitSystem] 模型 %s 加载失败: %v", req.Model, err)
				s.reported[req.Model] = true
			}
			continue
		}

		def := animgraph.Build(model.Clips)
		s.resource.Set(def, model)
		delete(s.reported, req.Model)

		s.logger.Printf("[GraphInitSystem] 动画图已就绪: model=%s, clips=%d", req.Model, def.ClipCount())

		ecs.RemoveComponent[*components.AnimGraphInit](s.entityManager, id)
		s.entityManager.DestroyEntity(id)
	}
}
