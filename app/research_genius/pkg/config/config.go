package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/model"
)

// 研究服务提供方
const (
	ProviderFirecrawl = "firecrawl"
	ProviderTavily    = "tavily"
	ProviderSearXNG   = "searxng"
)

// 凭据的环境变量名
const (
	EnvResearchKey = "FIRECRAWL_API_KEY"
	EnvLLMKey      = "OPENAI_API_KEY"
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Research    ResearchConfig    `yaml:"research"`
	Defaults    DefaultsConfig    `yaml:"defaults"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	OutputDir   string            `yaml:"output_dir"`
}

// LLMConfig 第二阶段使用的 LLM 配置
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// ResearchConfig 第一阶段使用的研究服务配置
type ResearchConfig struct {
	Provider  string          `yaml:"provider"`
	Firecrawl FirecrawlConfig `yaml:"firecrawl"`
	Tavily    TavilyConfig    `yaml:"tavily"`
	SearXNG   SearXNGConfig   `yaml:"searxng"`
}

// FirecrawlConfig Firecrawl 深度研究配置
type FirecrawlConfig struct {
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key"`
	PollInterval int    `yaml:"poll_interval"` // 秒
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Timeout int    `yaml:"timeout"`
}

// DefaultsConfig 未显式指定时使用的研究参数与偏好
type DefaultsConfig struct {
	MaxDepth       int    `yaml:"max_depth"`
	TimeLimit      int    `yaml:"time_limit"`
	MaxSources     int    `yaml:"max_sources"`
	Focus          string `yaml:"focus"`
	CitationStyle  string `yaml:"citation_style"`
	IncludeVisuals *bool  `yaml:"include_visuals"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig LLM 调用的限流配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// LoadConfig 从指定路径加载配置并补全默认值
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	return &cfg, nil
}

// Default 不依赖配置文件的默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults 填充未设置的字段
func (c *Config) ApplyDefaults() {
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o"
	}
	if c.Research.Provider == "" {
		c.Research.Provider = ProviderFirecrawl
	}
	c.Research.Provider = strings.ToLower(c.Research.Provider)
	if c.Research.Firecrawl.BaseURL == "" {
		c.Research.Firecrawl.BaseURL = "https://api.firecrawl.dev"
	}
	if c.Research.Firecrawl.PollInterval <= 0 {
		c.Research.Firecrawl.PollInterval = 2
	}
	if c.Research.SearXNG.Timeout <= 0 {
		c.Research.SearXNG.Timeout = 30
	}
	if c.Defaults.MaxDepth == 0 {
		c.Defaults.MaxDepth = model.DefaultDepth
	}
	if c.Defaults.TimeLimit == 0 {
		c.Defaults.TimeLimit = model.DefaultTimeLimit
	}
	if c.Defaults.MaxSources == 0 {
		c.Defaults.MaxSources = model.DefaultSources
	}
	if c.Defaults.Focus == "" {
		c.Defaults.Focus = string(model.FocusComprehensive)
	}
	if c.Defaults.CitationStyle == "" {
		c.Defaults.CitationStyle = string(model.CitationAPA)
	}
	if c.Defaults.IncludeVisuals == nil {
		v := true
		c.Defaults.IncludeVisuals = &v
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 1
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = 60
	}
	if c.OutputDir == "" {
		c.OutputDir = "reports"
	}
}

// ResearchAPIKey 当前提供方在配置文件中的密钥
func (c *Config) ResearchAPIKey() string {
	switch c.Research.Provider {
	case ProviderTavily:
		return c.Research.Tavily.APIKey
	case ProviderSearXNG:
		return c.Research.SearXNG.APIKey
	default:
		return c.Research.Firecrawl.APIKey
	}
}

// Credentials 配置文件中的凭据，缺失时回退到环境变量
func (c *Config) Credentials() model.Credentials {
	creds := model.Credentials{
		Research: c.ResearchAPIKey(),
		LLM:      c.LLM.APIKey,
	}
	if creds.Research == "" {
		creds.Research = os.Getenv(EnvResearchKey)
	}
	if creds.LLM == "" {
		creds.LLM = os.Getenv(EnvLLMKey)
	}
	return creds
}

// Preferences 由默认配置解析出的呈现偏好
func (c *Config) Preferences() (model.Preferences, error) {
	prefs := model.DefaultPreferences()

	focus, err := model.ParseFocus(c.Defaults.Focus)
	if err != nil {
		return prefs, err
	}
	style, err := model.ParseCitationStyle(c.Defaults.CitationStyle)
	if err != nil {
		return prefs, err
	}
	prefs.Focus = focus
	prefs.CitationStyle = style
	if c.Defaults.IncludeVisuals != nil {
		prefs.IncludeVisuals = *c.Defaults.IncludeVisuals
	}
	return prefs, nil
}
