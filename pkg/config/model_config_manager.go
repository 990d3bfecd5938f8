package config

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// ModelCatalog 模型目录文件的顶层结构
type ModelCatalog struct {
	Models []ModelConfig `yaml:"models"`
}

// ModelConfig 单个可动画模型的配置
type ModelConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	// ReanimFile 模型文件路径（相对于文件系统根）
	ReanimFile string `yaml:"reanim_file"`

	// DefaultAnim 所有者的默认动画配置索引
	DefaultAnim int `yaml:"default_anim"`

	// Parents 骨骼层级：子骨骼 -> 父骨骼
	Parents map[string]string `yaml:"parents,omitempty"`
}

// ModelConfigManager 模型配置管理器
// 负责加载模型目录并按 id 索引
type ModelConfigManager struct {
	models   []ModelConfig
	modelMap map[string]*ModelConfig
	mu       sync.RWMutex
}

// NewModelConfigManager 创建配置管理器
//
// 参数：
//   - fsys: 配置所在文件系统（embedded 数据或 os.DirFS）
//   - configPath: 目录路径时加载目录下所有 *.yaml，文件路径时加载单个目录文件
func NewModelConfigManager(fsys fs.FS, configPath string) (*ModelConfigManager, error) {
	info, err := fs.Stat(fsys, configPath)
	if err != nil {
		return nil, fmt.Errorf("无法访问路径 %s: %w", configPath, err)
	}

	var models []ModelConfig
	if info.IsDir() {
		files, err := fs.Glob(fsys, path.Join(configPath, "*.yaml"))
		if err != nil {
			return nil, fmt.Errorf("扫描目录 %s 失败: %w", configPath, err)
		}
		sort.Strings(files)
		for _, file := range files {
			catalog, err := loadCatalog(fsys, file)
			if err != nil {
				return nil, err
			}
			models = append(models, catalog.Models...)
		}
	} else {
		catalog, err := loadCatalog(fsys, configPath)
		if err != nil {
			return nil, err
		}
		models = catalog.Models
	}

	return newManager(models)
}

func loadCatalog(fsys fs.FS, file string) (*ModelCatalog, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("无法读取配置文件 %s: %w", file, err)
	}

	var catalog ModelCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("无法解析配置文件 %s: %w", file, err)
	}
	return &catalog, nil
}

func newManager(models []ModelConfig) (*ModelConfigManager, error) {
	modelMap := make(map[string]*ModelConfig, len(models))
	for i := range models {
		m := &models[i]
		if m.ID == "" {
			return nil, fmt.Errorf("模型 #%d 缺少 'id' 字段", i)
		}
		if m.ReanimFile == "" {
			return nil, fmt.Errorf("模型 '%s' 缺少 'reanim_file' 字段", m.ID)
		}
		if m.DefaultAnim < 0 {
			return nil, fmt.Errorf("模型 '%s' 的 default_anim %d 无效", m.ID, m.DefaultAnim)
		}
		if _, exists := modelMap[m.ID]; exists {
			return nil, fmt.Errorf("重复的模型 ID: %s", m.ID)
		}
		if err := validateParents(m.Parents); err != nil {
			return nil, fmt.Errorf("模型 '%s' 的骨骼层级无效: %w", m.ID, err)
		}
		modelMap[m.ID] = m
	}

	return &ModelConfigManager{
		models:   models,
		modelMap: modelMap,
	}, nil
}

// validateParents 检查骨骼层级中是否存在环
func validateParents(parents map[string]string) error {
	for start := range parents {
		seen := map[string]bool{start: true}
		current := start
		for {
			parent, ok := parents[current]
			if !ok || parent == "" {
				break
			}
			if seen[parent] {
				return fmt.Errorf("骨骼层级存在循环依赖，涉及: %s", start)
			}
			seen[parent] = true
			current = parent
		}
	}
	return nil
}

// GetModel 获取模型配置
func (m *ModelConfigManager) GetModel(id string) (*ModelConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	model, exists := m.modelMap[id]
	if !exists {
		return nil, fmt.Errorf("模型 '%s' 不存在", id)
	}
	return model, nil
}

// ListModels 列出所有模型 ID（排序后）
func (m *ModelConfigManager) ListModels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.modelMap))
	for id := range m.modelMap {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
