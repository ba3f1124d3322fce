package model

import (
	"fmt"
	"strings"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/apperr"
)

// 研究参数的取值范围与默认值，与交互界面上的滑块保持一致
const (
	MinDepth     = 1
	MaxDepth     = 5
	DefaultDepth = 3

	MinTimeLimit     = 60
	MaxTimeLimit     = 300
	DefaultTimeLimit = 180

	MinSources     = 5
	MaxSources     = 20
	DefaultSources = 10
)

// ResearchRequest 第一阶段（信息收集）的请求，构造后不可变
type ResearchRequest struct {
	Topic      string
	MaxDepth   int
	TimeLimit  int // 秒，仅作为提示转发给研究服务
	MaxSources int
}

// NewResearchRequest 校验并构造 ResearchRequest
func NewResearchRequest(topic string, maxDepth, timeLimit, maxSources int) (ResearchRequest, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ResearchRequest{}, apperr.InvalidRequest("Please enter a research topic.")
	}
	if err := checkRange("max_depth", maxDepth, MinDepth, MaxDepth); err != nil {
		return ResearchRequest{}, err
	}
	if err := checkRange("time_limit", timeLimit, MinTimeLimit, MaxTimeLimit); err != nil {
		return ResearchRequest{}, err
	}
	if err := checkRange("max_sources", maxSources, MinSources, MaxSources); err != nil {
		return ResearchRequest{}, err
	}
	return ResearchRequest{
		Topic:      topic,
		MaxDepth:   maxDepth,
		TimeLimit:  timeLimit,
		MaxSources: maxSources,
	}, nil
}

func checkRange(name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return apperr.InvalidRequest("%s must be between %d and %d, got %d", name, lo, hi, v)
	}
	return nil
}

// Preferences 第二阶段的呈现偏好
type Preferences struct {
	Focus          Focus
	IncludeVisuals bool
	CitationStyle  CitationStyle
}

// Validate 侧重点与引用格式必须是已知取值
func (p Preferences) Validate() error {
	if !p.Focus.IsValid() {
		return apperr.InvalidRequest("unknown research focus %q", p.Focus)
	}
	if !p.CitationStyle.IsValid() {
		return apperr.InvalidRequest("unknown citation style %q", p.CitationStyle)
	}
	return nil
}

// DefaultPreferences 与原界面默认选项一致
func DefaultPreferences() Preferences {
	return Preferences{
		Focus:          FocusComprehensive,
		IncludeVisuals: true,
		CitationStyle:  CitationAPA,
	}
}

// ElaborationRequest 第二阶段（深化）的请求，只能在第一阶段成功后构造
type ElaborationRequest struct {
	Topic          string
	Focus          Focus
	IncludeVisuals bool
	CitationStyle  CitationStyle
	SourceReport   string
}

// NewElaborationRequest 由已完成的 ResearchRequest、偏好和初始报告构造
func NewElaborationRequest(req ResearchRequest, prefs Preferences, sourceReport string) ElaborationRequest {
	return ElaborationRequest{
		Topic:          req.Topic,
		Focus:          prefs.Focus,
		IncludeVisuals: prefs.IncludeVisuals,
		CitationStyle:  prefs.CitationStyle,
		SourceReport:   sourceReport,
	}
}

// VisualsToken 返回提示词中使用的 Yes/No
func (r ElaborationRequest) VisualsToken() string {
	if r.IncludeVisuals {
		return "Yes"
	}
	return "No"
}

// Credentials 两个外部服务的密钥。只在内存中持有，格式化输出时脱敏
type Credentials struct {
	Research string
	LLM      string
}

// Complete reports whether both secrets are present.
func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.Research) != "" && strings.TrimSpace(c.LLM) != ""
}

func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Research:%s LLM:%s}", mask(c.Research), mask(c.LLM))
}

func (c Credentials) GoString() string { return c.String() }

func mask(s string) string {
	if s == "" {
		return "<unset>"
	}
	return "<redacted>"
}
