package gatherer

import (
	"context"
	"fmt"
	"strings"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/apperr"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/logger"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/model"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/research"
)

// ResearcherFactory 按研究服务密钥创建客户端
type ResearcherFactory func(apiKey string) (research.Researcher, error)

// Gatherer 第一阶段：把主题交给外部深度研究服务，得到初始报告
type Gatherer struct {
	newResearcher ResearcherFactory
}

func New(f ResearcherFactory) *Gatherer {
	return &Gatherer{newResearcher: f}
}

// Instruction 格式化研究指令，深度/时间/来源数量只作为提示
func Instruction(req model.ResearchRequest) string {
	return fmt.Sprintf("Research topic: %s. Parameters: max_depth=%d, time_limit=%d, max_urls=%d",
		req.Topic, req.MaxDepth, req.TimeLimit, req.MaxSources)
}

// Gather 返回研究服务的原始报告，不做任何本地处理
func (g *Gatherer) Gather(ctx context.Context, req model.ResearchRequest, creds model.Credentials) (*research.Result, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, apperr.InvalidRequest("Please enter a research topic.")
	}

	client, err := g.newResearcher(creds.Research)
	if err != nil {
		return nil, apperr.ExternalService(apperr.PhaseGather, err)
	}

	logger.Log.Infof("开始收集资料: %s (depth=%d, time_limit=%ds, max_urls=%d)",
		req.Topic, req.MaxDepth, req.TimeLimit, req.MaxSources)

	res, err := client.Research(ctx, &research.Request{
		Query:     Instruction(req),
		Topic:     req.Topic,
		MaxDepth:  req.MaxDepth,
		TimeLimit: req.TimeLimit,
		MaxURLs:   req.MaxSources,
	})
	if err != nil {
		return nil, apperr.ExternalService(apperr.PhaseGather, err)
	}
	if res == nil {
		return nil, apperr.ExternalService(apperr.PhaseGather, fmt.Errorf("research service returned no result"))
	}

	logger.Log.Infof("资料收集完成: %s (%d 字符, %d 个来源)", req.Topic, len(res.Report), len(res.Sources))
	return res, nil
}
