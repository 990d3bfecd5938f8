package components

import (
	"github.com/decker502/pganims/pkg/animgraph"
	"github.com/decker502/pganims/pkg/asset"
	"github.com/decker502/pganims/pkg/ecs"
	"github.com/decker502/pganims/pkg/player"
)

// Animatable 动画所有者组件
//
// 挂在模型的顶层实体上（角色、道具）。BindingSystem 找到所有者后：
//   - 在所有者上添加 Directive（默认动画，循环播放）
//   - 把找到的骨骼实体写回 Skeleton
//
// 一个所有者只对应一个骨骼实例；多次绑定时最后一次生效。
type Animatable struct {
	// Skeleton 绑定的骨骼实体，未绑定时为 ecs.PlaceholderEntity
	Skeleton ecs.EntityID

	// DefaultAnim 默认动画的配置索引（0 = root，k = 第 k-1 个 clip）
	DefaultAnim int
}

// NewAnimatable 创建未绑定的所有者组件
func NewAnimatable(defaultAnim int) *Animatable {
	return &Animatable{
		Skeleton:    ecs.PlaceholderEntity,
		DefaultAnim: defaultAnim,
	}
}

// IsBound 所有者是否已绑定骨骼
func (a *Animatable) IsBound() bool {
	return a.Skeleton != ecs.PlaceholderEntity
}

// AnimBinding 骨骼实体上的绑定记录
// 创建后不再修改；它的存在使绑定步骤幂等
type AnimBinding struct {
	// Owner 所有者实体；找不到所有者时为 ecs.PlaceholderEntity
	Owner ecs.EntityID

	// DefaultAnim 从所有者复制的默认动画索引
	DefaultAnim int
}

// IsDegraded 是否为降级绑定（没有找到所有者）
func (b *AnimBinding) IsDegraded() bool {
	return b.Owner == ecs.PlaceholderEntity
}

// AnimGraphInit 请求从模型构建动画图定义
// GraphInitSystem 在模型加载完成后构建 Definition 并销毁携带此组件的实体
type AnimGraphInit struct {
	Model asset.Handle
}

// AnimGraphHandle 骨骼实体引用的动画图定义
type AnimGraphHandle struct {
	Definition *animgraph.Definition
}

// AnimationPlayerComponent 骨骼实体上的动画播放器
type AnimationPlayerComponent struct {
	Player player.Player
}
