package elaborator

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/apperr"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/logger"
	dm "github.com/iWorld-y/research_genius/app/research_genius/pkg/model"
)

// ChatModelFactory 按 LLM 密钥创建对话模型
type ChatModelFactory func(ctx context.Context, apiKey string) (model.BaseChatModel, error)

// Elaborator 第二阶段：让 LLM 在初始报告基础上补充案例与深入分析
type Elaborator struct {
	newChatModel ChatModelFactory
	limiter      *rate.Limiter
}

// New 创建 Elaborator。limiter 为 nil 时不限流
func New(f ChatModelFactory, limiter *rate.Limiter) *Elaborator {
	return &Elaborator{newChatModel: f, limiter: limiter}
}

const promptTpl = `RESEARCH TOPIC: %s
RESEARCH FOCUS: %s
INCLUDE VISUALIZATIONS: %s
CITATION STYLE: %s

INITIAL RESEARCH REPORT:
%s

Please enhance this research report with additional information, examples, case studies,
and deeper insights while maintaining academic rigor and factual accuracy.`

// Prompt 组装发送给 LLM 的用户消息
func Prompt(req dm.ElaborationRequest) string {
	return fmt.Sprintf(promptTpl, req.Topic, req.Focus, req.VisualsToken(), req.CitationStyle, req.SourceReport)
}

var focusGuidance = map[dm.Focus]string{
	dm.FocusComprehensive:  "Cover background, current state, key players, open problems and outlook in a balanced way.",
	dm.FocusTechnical:      "Go deep on mechanisms, architectures, algorithms and implementation trade-offs.",
	dm.FocusBusinessImpact: "Emphasize markets, adoption, costs, competitive dynamics and return on investment.",
	dm.FocusFutureTrends:   "Emphasize emerging directions, forecasts, timelines and the signals that support them.",
	dm.FocusAcademic:       "Emphasize the research literature, methodology, evidence quality and open research questions.",
}

// Instructions 由侧重点、是否需要可视化建议和引用格式生成系统角色提示
func Instructions(req dm.ElaborationRequest) string {
	var sb strings.Builder
	sb.WriteString("You are an expert research analyst. ")
	fmt.Fprintf(&sb, "Enhance the following report with examples, case studies, and deeper insight while preserving factual accuracy and citation style %s.\n", req.CitationStyle)
	if g, ok := focusGuidance[req.Focus]; ok {
		fmt.Fprintf(&sb, "Research focus: %s. %s\n", req.Focus, g)
	}
	if req.IncludeVisuals {
		sb.WriteString("Where data would be clearer as a chart, table or diagram, suggest the visualization and describe what it should show.\n")
	}
	sb.WriteString("Keep the original structure where it works and return the full enhanced report in Markdown.")
	return sb.String()
}

// Elaborate 返回模型生成的增强报告，内容原样返回
func (e *Elaborator) Elaborate(ctx context.Context, req dm.ElaborationRequest, creds dm.Credentials) (string, error) {
	cm, err := e.newChatModel(ctx, creds.LLM)
	if err != nil {
		return "", apperr.ExternalService(apperr.PhaseElaborate, err)
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", apperr.ExternalService(apperr.PhaseElaborate, err)
		}
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: Instructions(req)},
		{Role: schema.User, Content: Prompt(req)},
	}

	logger.Log.Infof("开始深化报告: %s (focus=%s, citation=%s)", req.Topic, req.Focus, req.CitationStyle)
	resp, err := cm.Generate(ctx, messages)
	if err != nil {
		return "", apperr.ExternalService(apperr.PhaseElaborate, err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", apperr.ExternalService(apperr.PhaseElaborate, fmt.Errorf("LLM returned an empty response"))
	}

	logger.Log.Infof("报告深化完成: %s (%d 字符)", req.Topic, len(resp.Content))
	return resp.Content, nil
}
