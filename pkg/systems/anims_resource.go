package systems

import (
	"sync"

	"github.com/decker502/pganims/pkg/animgraph"
	"github.com/decker502/pganims/pkg/asset"
)

// AnimGraphResource 当前生效的动画图定义（全局资源）
// GraphInitSystem 写入，GraphAttachSystem 和 AnimsPlugin 的校验 API 读取
type AnimGraphResource struct {
	mu         sync.RWMutex
	definition *animgraph.Definition
	model      *asset.Model
}

// Set 替换动画图定义及其模型
func (r *AnimGraphResource) Set(def *animgraph.Definition, model *asset.Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definition = def
	r.model = model
}

// Get 返回动画图定义及其模型，尚未构建时返回 nil
func (r *AnimGraphResource) Get() (*animgraph.Definition, *asset.Model) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.definition, r.model
}

// Ready 动画图是否已构建
func (r *AnimGraphResource) Ready() bool {
	def, _ := r.Get()
	return def != nil
}
