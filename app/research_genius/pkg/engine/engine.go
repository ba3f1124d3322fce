package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/apperr"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/config"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/elaborator"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/gatherer"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/llm"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/logger"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/model"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/research"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/research/factory"
)

// 进度检查点
const (
	StatusGathering = "gathering"
	StatusGathered  = "gathered"
	StatusCompleted = "completed"
)

// Gatherer 第一阶段
type Gatherer interface {
	Gather(ctx context.Context, req model.ResearchRequest, creds model.Credentials) (*research.Result, error)
}

// Elaborator 第二阶段
type Elaborator interface {
	Elaborate(ctx context.Context, req model.ElaborationRequest, creds model.Credentials) (string, error)
}

// Engine 两阶段研究流程的编排器。自身不持有凭据与历史，可被多个会话并发使用
type Engine struct {
	gatherer   Gatherer
	elaborator Elaborator
}

// NewEngine 根据配置创建引擎实例，LLM 限流器在所有运行之间共享
func NewEngine(cfg *config.Config) *Engine {
	// 补全默认值：QPS 为 0 时 burst 为 0，所有等待都会直接失败
	c := *cfg
	c.ApplyDefaults()
	cfg = &c

	return New(
		gatherer.New(factory.Func(cfg)),
		elaborator.New(llm.Func(cfg.LLM), newLimiter(cfg.Concurrency)),
	)
}

func newLimiter(c config.ConcurrencyConfig) *rate.Limiter {
	limit := rate.Limit(float64(c.RPM) / 60.0)
	return rate.NewLimiter(limit, c.QPS)
}

// New 使用给定的两个阶段实现创建引擎
func New(g Gatherer, e Elaborator) *Engine {
	return &Engine{gatherer: g, elaborator: e}
}

// RunOptions 运行选项
type RunOptions struct {
	Topic      string
	MaxDepth   int
	TimeLimit  int
	MaxSources int

	Preferences model.Preferences
	Credentials model.Credentials

	ProgressCallback func(status string, progress int)
	// OnInitialReport 第一阶段完成后立即回调，第二阶段失败时调用方仍已拿到初始报告
	OnInitialReport func(report string)
}

// Outcome 一次运行的结果
type Outcome struct {
	Topic          string
	InitialReport  string
	Sources        []research.Source
	EnhancedReport string
	Preferences    model.Preferences
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Run 执行一次两阶段研究。
// 第一阶段失败返回 nil Outcome；第二阶段失败返回带初始报告的 Outcome 和 elaborate 阶段错误。
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*Outcome, error) {
	if !opts.Credentials.Complete() {
		return nil, apperr.InvalidRequest("Please enter both API keys.")
	}
	req, err := model.NewResearchRequest(opts.Topic, opts.MaxDepth, opts.TimeLimit, opts.MaxSources)
	if err != nil {
		return nil, err
	}
	if err := opts.Preferences.Validate(); err != nil {
		return nil, err
	}

	out := &Outcome{
		Topic:       req.Topic,
		Preferences: opts.Preferences,
		StartedAt:   time.Now(),
	}

	e.progress(opts, StatusGathering, 0)
	res, err := e.gatherer.Gather(ctx, req, opts.Credentials)
	if err != nil {
		logger.Log.Errorf("资料收集失败 [%s]: %v", req.Topic, err)
		return nil, err
	}
	if res == nil {
		err := apperr.ExternalService(apperr.PhaseGather, fmt.Errorf("research service returned no result"))
		logger.Log.Errorf("资料收集失败 [%s]: %v", req.Topic, err)
		return nil, err
	}
	out.InitialReport = res.Report
	out.Sources = res.Sources

	e.progress(opts, StatusGathered, 50)
	if opts.OnInitialReport != nil {
		opts.OnInitialReport(out.InitialReport)
	}

	enhanced, err := e.elaborator.Elaborate(ctx, model.NewElaborationRequest(req, opts.Preferences, out.InitialReport), opts.Credentials)
	out.FinishedAt = time.Now()
	if err != nil {
		logger.Log.Errorf("报告深化失败 [%s]: %v", req.Topic, err)
		return out, err
	}
	out.EnhancedReport = enhanced

	e.progress(opts, StatusCompleted, 100)
	logger.Log.Infof("研究完成 [%s]，耗时 %s", req.Topic, out.FinishedAt.Sub(out.StartedAt).Round(time.Millisecond))
	return out, nil
}

func (e *Engine) progress(opts RunOptions, status string, p int) {
	if opts.ProgressCallback != nil {
		opts.ProgressCallback(status, p)
	}
}
