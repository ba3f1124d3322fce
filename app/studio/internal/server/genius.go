package server

import (
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/config"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/engine"
	rgLogger "github.com/iWorld-y/research_genius/app/research_genius/pkg/logger"
	"github.com/iWorld-y/research_genius/app/studio/internal/conf"
)

// NewGeniusConfig 将 internal/conf.Genius 转换为 pkg/config.Config，未配置的字段取默认值
func NewGeniusConfig(c *conf.Genius) *config.Config {
	cfg := &config.Config{}
	if c != nil {
		if c.Llm != nil {
			cfg.LLM = config.LLMConfig{
				BaseURL:     c.Llm.BaseUrl,
				Model:       c.Llm.Model,
				Temperature: c.Llm.Temperature,
			}
		}
		if c.Research != nil {
			cfg.Research.Provider = c.Research.Provider
			if c.Research.Firecrawl != nil {
				cfg.Research.Firecrawl.BaseURL = c.Research.Firecrawl.BaseUrl
				cfg.Research.Firecrawl.PollInterval = int(c.Research.Firecrawl.PollInterval)
			}
			if c.Research.Searxng != nil {
				cfg.Research.SearXNG.BaseURL = c.Research.Searxng.BaseUrl
				cfg.Research.SearXNG.Timeout = int(c.Research.Searxng.Timeout)
			}
		}
		if d := c.Defaults; d != nil {
			cfg.Defaults = config.DefaultsConfig{
				MaxDepth:       int(d.MaxDepth),
				TimeLimit:      int(d.TimeLimit),
				MaxSources:     int(d.MaxSources),
				Focus:          d.Focus,
				CitationStyle:  d.CitationStyle,
				IncludeVisuals: d.IncludeVisuals,
			}
		}
		if c.Log != nil {
			cfg.Log = config.LogConfig{Level: c.Log.Level, File: c.Log.File}
		}
		if c.Concurrency != nil {
			cfg.Concurrency = config.ConcurrencyConfig{
				QPS: int(c.Concurrency.Qps),
				RPM: int(c.Concurrency.Rpm),
			}
		}
	}
	cfg.ApplyDefaults()
	return cfg
}

// NewGeniusEngine 初始化研究引擎，所有会话共享同一个引擎和 LLM 限流器
func NewGeniusEngine(cfg *config.Config, logger log.Logger) (*engine.Engine, func(), error) {
	helper := log.NewHelper(logger)

	if err := rgLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		helper.Errorf("Failed to init research_genius logger: %v", err)
		_ = rgLogger.InitLogger("info", "") // 降级处理
	}

	// 在启动时暴露配置错误，而不是等到第一个任务
	if _, err := cfg.Preferences(); err != nil {
		helper.Errorf("Invalid genius defaults: %v", err)
		return nil, nil, err
	}

	eng := engine.NewEngine(cfg)
	helper.Infof("research engine ready: provider=%s model=%s", cfg.Research.Provider, cfg.LLM.Model)

	cleanup := func() {
		helper.Info("Cleaning up research engine")
	}
	return eng, cleanup, nil
}
