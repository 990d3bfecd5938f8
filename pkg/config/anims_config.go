package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// MaxMaskGroup 动画图可用的最大 mask group 编号
const MaxMaskGroup = 63

// MaskMappingConfig 把层级骨骼路径分配到 mask group
type MaskMappingConfig struct {
	// Path 骨骼路径，如 "Hips/Spine/Head"
	Path  string   `yaml:"path" toml:"path"`
	Masks []uint32 `yaml:"masks" toml:"masks"`
}

// PluginConfig 动画插件配置
// 启动时加载一次；所有动画索引都使用配置索引（0 = root，k = 第 k-1 个 clip）
type PluginConfig struct {
	// AnimsWithStartEvent 需要在时间 0 附加 start 事件的动画索引
	AnimsWithStartEvent []int `yaml:"anims_with_start_event" toml:"anims_with_start_event"`

	// AnimsWithEndEvent 需要在 clip 结尾附加 end 事件的动画索引
	AnimsWithEndEvent []int `yaml:"anims_with_end_event" toml:"anims_with_end_event"`

	// TargetsMasksMapping 骨骼路径 -> mask group 列表
	TargetsMasksMapping []MaskMappingConfig `yaml:"targets_masks_mapping" toml:"targets_masks_mapping"`

	// PathSeparator 骨骼路径分隔符，默认 "/"
	PathSeparator string `yaml:"path_separator" toml:"path_separator" env:"PGANIMS_PATH_SEPARATOR"`

	// MaxAncestorDepth 查找动画所有者时向上遍历的最大层数，默认 64
	MaxAncestorDepth int `yaml:"max_ancestor_depth" toml:"max_ancestor_depth" env:"PGANIMS_MAX_ANCESTOR_DEPTH"`

	// Polling 为 true 时同步系统每帧检查所有 Directive，而不只是有变化的
	Polling bool `yaml:"polling" toml:"polling" env:"PGANIMS_POLLING"`
}

// DefaultPluginConfig 返回默认配置（无事件、无 mask）
func DefaultPluginConfig() *PluginConfig {
	return &PluginConfig{
		PathSeparator:    "/",
		MaxAncestorDepth: 64,
	}
}

// LoadPluginConfig 从文件加载插件配置
// 根据扩展名选择格式：.yaml/.yml 使用 YAML，.toml 使用 TOML。
// 文件加载后应用环境变量覆盖，然后做静态校验。
func LoadPluginConfig(path string) (*PluginConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取配置文件 %s: %w", path, err)
	}

	cfg, err := ParsePluginConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("无法解析配置文件 %s: %w", path, err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置文件 %s 验证失败: %w", path, err)
	}
	return cfg, nil
}

// ParsePluginConfig 解析配置内容，format 为文件扩展名（".yaml"、".yml"、".toml"）
// 缺省字段使用默认值
func ParsePluginConfig(data []byte, format string) (*PluginConfig, error) {
	cfg := DefaultPluginConfig()

	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml", "":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case "toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// ApplyEnv 应用 PGANIMS_* 环境变量覆盖；未设置的变量保持原值
func (c *PluginConfig) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	c.applyDefaults()
	return nil
}

func (c *PluginConfig) applyDefaults() {
	if c.PathSeparator == "" {
		c.PathSeparator = "/"
	}
	if c.MaxAncestorDepth <= 0 {
		c.MaxAncestorDepth = 64
	}
}

// ConfigError 汇总所有配置问题
type ConfigError struct {
	Problems []error
}

func (e *ConfigError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Error())
	}
	return fmt.Sprintf("%d configuration problem(s): %s", len(e.Problems), strings.Join(msgs, "; "))
}

func (e *ConfigError) Unwrap() []error {
	return e.Problems
}

var (
	// ErrInvalidIndex 动画索引不在 [1, N] 内
	ErrInvalidIndex = errors.New("invalid animation index")
	// ErrInvalidMaskGroup mask group 超出 0..63
	ErrInvalidMaskGroup = errors.New("invalid mask group")
	// ErrInvalidBonePath 骨骼路径为空或在模型中不存在
	ErrInvalidBonePath = errors.New("invalid bone path")
)

func configError(problems []error) error {
	if len(problems) == 0 {
		return nil
	}
	return &ConfigError{Problems: problems}
}

// Validate 静态校验（不依赖模型）
func (c *PluginConfig) Validate() error {
	var problems []error

	for _, idx := range c.AnimsWithStartEvent {
		if idx <= 0 {
			problems = append(problems, fmt.Errorf("anims_with_start_event: index %d: %w", idx, ErrInvalidIndex))
		}
	}
	for _, idx := range c.AnimsWithEndEvent {
		if idx <= 0 {
			problems = append(problems, fmt.Errorf("anims_with_end_event: index %d: %w", idx, ErrInvalidIndex))
		}
	}
	for i, m := range c.TargetsMasksMapping {
		if strings.TrimSpace(m.Path) == "" {
			problems = append(problems, fmt.Errorf("targets_masks_mapping #%d: empty path: %w", i, ErrInvalidBonePath))
		}
		for _, group := range m.Masks {
			if group > MaxMaskGroup {
				problems = append(problems, fmt.Errorf("targets_masks_mapping %q: group %d: %w", m.Path, group, ErrInvalidMaskGroup))
			}
		}
	}

	return configError(problems)
}

// ValidateAgainst 对照已加载的模型校验：索引必须指向 clip（1..clipCount），
// 骨骼路径必须存在（hasBone 为 nil 时跳过路径检查）
func (c *PluginConfig) ValidateAgainst(clipCount int, hasBone func(path string) bool) error {
	var problems []error
	if err := c.Validate(); err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			problems = append(problems, cfgErr.Problems...)
		}
	}

	check := func(field string, indices []int) {
		for _, idx := range indices {
			if idx > clipCount {
				problems = append(problems, fmt.Errorf("%s: index %d exceeds clip count %d: %w", field, idx, clipCount, ErrInvalidIndex))
			}
		}
	}
	check("anims_with_start_event", c.AnimsWithStartEvent)
	check("anims_with_end_event", c.AnimsWithEndEvent)

	if hasBone != nil {
		for _, m := range c.TargetsMasksMapping {
			if m.Path != "" && !hasBone(m.Path) {
				problems = append(problems, fmt.Errorf("targets_masks_mapping %q: no such bone: %w", m.Path, ErrInvalidBonePath))
			}
		}
	}

	return configError(problems)
}
