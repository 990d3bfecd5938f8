package asset

import (
	"fmt"
	"io/fs"

	"github.com/decker502/pganims/internal/reanim"
	"github.com/decker502/pganims/pkg/config"
)

// LoadReanimModel 从 fsys 读取 Reanim 文件并转换为 Model
func LoadReanimModel(fsys fs.FS, name, path string, parents map[string]string) (*Model, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	parsed, err := reanim.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("model %s: %s: %w", name, path, err)
	}
	return FromReanim(name, parsed, parents)
}

// LoadFromConfig 加载模型目录条目描述的模型
func LoadFromConfig(fsys fs.FS, mc *config.ModelConfig) (*Model, error) {
	return LoadReanimModel(fsys, mc.ID, mc.ReanimFile, mc.Parents)
}

// LoadCatalogAsync 为目录中的每个模型启动异步加载
// 句柄为模型 id；所有加载结束后关闭返回的 channel
func (s *Store) LoadCatalogAsync(fsys fs.FS, catalog *config.ModelConfigManager) <-chan struct{} {
	ids := catalog.ListModels()
	waits := make([]<-chan struct{}, 0, len(ids))
	for _, id := range ids {
		mc, err := catalog.GetModel(id)
		if err != nil {
			continue
		}
		waits = append(waits, s.LoadAsync(Handle(id), func() (*Model, error) {
			return LoadFromConfig(fsys, mc)
		}))
	}

	all := make(chan struct{})
	go func() {
		defer close(all)
		for _, w := range waits {
			<-w
		}
	}()
	return all
}
