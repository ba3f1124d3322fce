package factory

import (
	"fmt"
	"time"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/config"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/firecrawl"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/research"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/searxng"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/tavily"
)

// NewResearcher 根据配置和调用方提供的密钥创建研究客户端
func NewResearcher(cfg *config.Config, apiKey string) (research.Researcher, error) {
	switch cfg.Research.Provider {
	case config.ProviderFirecrawl, "":
		poll := time.Duration(cfg.Research.Firecrawl.PollInterval) * time.Second
		return firecrawl.NewClient(cfg.Research.Firecrawl.BaseURL, apiKey, poll), nil

	case config.ProviderTavily:
		return tavily.NewClient(apiKey), nil

	case config.ProviderSearXNG:
		baseURL := cfg.Research.SearXNG.BaseURL
		if baseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(baseURL, apiKey, cfg.Research.SearXNG.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown research provider: %s", cfg.Research.Provider)
	}
}

// Func 绑定配置后的工厂，供 gatherer 按请求凭据创建客户端
func Func(cfg *config.Config) func(apiKey string) (research.Researcher, error) {
	return func(apiKey string) (research.Researcher, error) {
		return NewResearcher(cfg, apiKey)
	}
}
