package conf

type Bootstrap struct {
	Server *Server
	Genius *Genius
}

type Server struct {
	Http *HTTP
}

type HTTP struct {
	Addr    string
	Timeout string
}

// Genius 研究引擎配置，密钥由各会话单独提供
type Genius struct {
	Llm         *LLM         `json:"llm"`
	Research    *Research    `json:"research"`
	Defaults    *Defaults    `json:"defaults"`
	Log         *Log         `json:"log"`
	Concurrency *Concurrency `json:"concurrency"`
}

type LLM struct {
	BaseUrl     string  `json:"base_url"`
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
}

type Research struct {
	Provider  string     `json:"provider"`
	Firecrawl *Firecrawl `json:"firecrawl"`
	Searxng   *SearXNG   `json:"searxng"`
}

type Firecrawl struct {
	BaseUrl      string `json:"base_url"`
	PollInterval int32  `json:"poll_interval"`
}

type SearXNG struct {
	BaseUrl string `json:"base_url"`
	Timeout int32  `json:"timeout"`
}

type Defaults struct {
	MaxDepth       int32  `json:"max_depth"`
	TimeLimit      int32  `json:"time_limit"`
	MaxSources     int32  `json:"max_sources"`
	Focus          string `json:"focus"`
	CitationStyle  string `json:"citation_style"`
	IncludeVisuals *bool  `json:"include_visuals"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Concurrency struct {
	Qps int32 `json:"qps"`
	Rpm int32 `json:"rpm"`
}
