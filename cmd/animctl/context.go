package main

import (
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/decker502/pganims/pkg/asset"
	"github.com/decker502/pganims/pkg/config"
)

type commandContext struct {
	root        string
	configPath  string
	catalogPath string
	modelID     string
	verbose     bool
}

func (c *commandContext) fsys() fs.FS {
	return os.DirFS(c.root)
}

// loadConfig 读取插件配置并应用环境变量，不做校验
func (c *commandContext) loadConfig() (*config.PluginConfig, error) {
	path := c.configPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.root, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := config.ParsePluginConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.configPath, err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *commandContext) loadModel() (*asset.Model, *config.ModelConfig, error) {
	fsys := c.fsys()
	catalog, err := config.NewModelConfigManager(fsys, filepath.ToSlash(c.catalogPath))
	if err != nil {
		return nil, nil, err
	}
	mc, err := catalog.GetModel(c.modelID)
	if err != nil {
		return nil, nil, err
	}
	model, err := asset.LoadFromConfig(fsys, mc)
	if err != nil {
		return nil, nil, err
	}
	return model, mc, nil
}

func (c *commandContext) logger(w io.Writer) *log.Logger {
	if !c.verbose {
		w = io.Discard
	}
	return log.New(w, "", log.Ltime)
}
