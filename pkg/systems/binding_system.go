package systems

import (
	"log"

	"github.com/decker502/pganims/pkg/components"
	"github.com/decker502/pganims/pkg/ecs"
)

// BindingSystem 把骨骼实体绑定到最近的动画所有者
//
// 处理携带播放器和 AnimGraphHandle、但还没有 AnimBinding 的骨骼：
//  1. 由近到远遍历祖先（最多 maxDepth 层，遇到环停止）
//  2. 第一个携带 Animatable 的祖先即为所有者，复制其默认动画
//  3. 所有者获得 NewDirective(默认动画) 并记录骨骼实体
//
// 找不到所有者时绑定到 ecs.PlaceholderEntity（降级绑定），记录警告，不创建 Directive。
type BindingSystem struct {
	entityManager *ecs.EntityManager
	maxDepth      int
	logger        *log.Logger
}

// NewBindingSystem 创建绑定系统
// maxDepth <= 0 时使用 ecs.DefaultMaxAncestorDepth
func NewBindingSystem(em *ecs.EntityManager, maxDepth int) *BindingSystem {
	if maxDepth <= 0 {
		maxDepth = ecs.DefaultMaxAncestorDepth
	}
	return &BindingSystem{
		entityManager: em,
		maxDepth:      maxDepth,
		logger:        log.Default(),
	}
}

// SetLogger 设置日志输出
func (s *BindingSystem) SetLogger(l *log.Logger) {
	s.logger = l
}

// Update 绑定所有新骨骼
func (s *BindingSystem) Update() {
	skeletons := ecs.GetEntitiesWith2[*components.AnimationPlayerComponent, *components.AnimGraphHandle](s.entityManager)
	for _, skeleton := range skeletons {
		if ecs.HasComponent[*components.AnimBinding](s.entityManager, skeleton) {
			continue
		}
		s.bind(skeleton)
	}
}

func (s *BindingSystem) bind(skeleton ecs.EntityID) {
	owner, animatable := s.findOwner(skeleton)
	if animatable == nil {
		s.logger.Printf("[BindingSystem] WARNING: skeleton %d has no animatable owner within %d ancestors, bound to placeholder", skeleton, s.maxDepth)
		ecs.AddComponent(s.entityManager, skeleton, &components.AnimBinding{
			Owner:       ecs.PlaceholderEntity,
			DefaultAnim: 0,
		})
		return
	}

	if animatable.IsBound() && animatable.Skeleton != skeleton {
		s.logger.Printf("[BindingSystem] 所有者 %d 已绑定骨骼 %d，改绑到 %d", owner, animatable.Skeleton, skeleton)
	}

	animatable.Skeleton = skeleton
	ecs.AddComponent(s.entityManager, owner, components.NewDirective(animatable.DefaultAnim))
	ecs.AddComponent(s.entityManager, skeleton, &components.AnimBinding{
		Owner:       owner,
		DefaultAnim: animatable.DefaultAnim,
	})

	s.logger.Printf("[BindingSystem] 骨骼 %d 绑定到所有者 %d, 默认动画 %d", skeleton, owner, animatable.DefaultAnim)
}

func (s *BindingSystem) findOwner(skeleton ecs.EntityID) (ecs.EntityID, *components.Animatable) {
	for _, ancestor := range s.entityManager.Ancestors(skeleton, s.maxDepth) {
		if a, ok := ecs.GetComponent[*components.Animatable](s.entityManager, ancestor); ok {
			return ancestor, a
		}
	}
	return ecs.PlaceholderEntity, nil
}
