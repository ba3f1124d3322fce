package usecase

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/apperr"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/config"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/engine"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/export"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/model"
	"github.com/iWorld-y/research_genius/app/studio/internal/domain"
	"github.com/iWorld-y/research_genius/app/studio/internal/repo"
)

// Runner 执行一次两阶段研究，由 *engine.Engine 实现
type Runner interface {
	Run(ctx context.Context, opts engine.RunOptions) (*engine.Outcome, error)
}

// ResearchUseCase 会话、凭据、研究任务与导出的业务逻辑
type ResearchUseCase struct {
	repo   repo.SessionRepo
	runner Runner
	cfg    *config.Config
	log    *log.Helper

	// 后台任务的根 context，服务关闭时取消
	baseCtx context.Context
}

// NewResearchUseCase 创建研究业务逻辑实例，cleanup 取消所有进行中的任务
func NewResearchUseCase(repo repo.SessionRepo, runner Runner, cfg *config.Config, logger log.Logger) (*ResearchUseCase, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	uc := &ResearchUseCase{
		repo:    repo,
		runner:  runner,
		cfg:     cfg,
		log:     log.NewHelper(logger),
		baseCtx: ctx,
	}
	return uc, cancel
}

// CreateSession 创建新会话
func (uc *ResearchUseCase) CreateSession(ctx context.Context) (*domain.Session, error) {
	return uc.repo.CreateSession(ctx)
}

// SetCredentials 保存会话密钥，不记录日志
func (uc *ResearchUseCase) SetCredentials(ctx context.Context, sessionID string, creds model.Credentials) (*domain.Session, error) {
	if err := uc.repo.SetCredentials(ctx, sessionID, creds); err != nil {
		return nil, err
	}
	return uc.repo.GetSession(ctx, sessionID)
}

// History 返回会话的研究历史
func (uc *ResearchUseCase) History(ctx context.Context, sessionID string) ([]*domain.HistoryItem, error) {
	return uc.repo.History(ctx, sessionID)
}

// Job 查询任务状态
func (uc *ResearchUseCase) Job(ctx context.Context, sessionID, jobID string) (*domain.Job, error) {
	return uc.repo.GetJob(ctx, sessionID, jobID)
}

// options 合并请求参数与配置默认值，并在启动任务前完成全部校验
func (uc *ResearchUseCase) options(params domain.ResearchParams, creds model.Credentials) (engine.RunOptions, error) {
	opts := engine.RunOptions{
		Topic:       params.Topic,
		MaxDepth:    params.MaxDepth,
		TimeLimit:   params.TimeLimit,
		MaxSources:  params.MaxSources,
		Credentials: creds,
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = uc.cfg.Defaults.MaxDepth
	}
	if opts.TimeLimit == 0 {
		opts.TimeLimit = uc.cfg.Defaults.TimeLimit
	}
	if opts.MaxSources == 0 {
		opts.MaxSources = uc.cfg.Defaults.MaxSources
	}

	if !creds.Complete() {
		return opts, apperr.InvalidRequest("Please enter both API keys.")
	}
	req, err := model.NewResearchRequest(opts.Topic, opts.MaxDepth, opts.TimeLimit, opts.MaxSources)
	if err != nil {
		return opts, err
	}
	opts.Topic = req.Topic

	prefs, err := uc.cfg.Preferences()
	if err != nil {
		return opts, err
	}
	if params.Focus != "" {
		if prefs.Focus, err = model.ParseFocus(params.Focus); err != nil {
			return opts, err
		}
	}
	if params.CitationStyle != "" {
		if prefs.CitationStyle, err = model.ParseCitationStyle(params.CitationStyle); err != nil {
			return opts, err
		}
	}
	if params.IncludeVisuals != nil {
		prefs.IncludeVisuals = *params.IncludeVisuals
	}
	opts.Preferences = prefs
	return opts, nil
}

// StartResearch 同步校验后在后台执行研究，立即返回 pending 状态的任务
func (uc *ResearchUseCase) StartResearch(ctx context.Context, sessionID string, params domain.ResearchParams) (*domain.Job, error) {
	creds, err := uc.repo.Credentials(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	opts, err := uc.options(params, creds)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.AddHistory(ctx, sessionID, opts.Topic); err != nil {
		return nil, err
	}

	job := &domain.Job{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		Topic:       opts.Topic,
		Preferences: opts.Preferences,
		Status:      domain.JobPending,
		CreatedAt:   time.Now(),
	}
	if err := uc.repo.SaveJob(ctx, job); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Infof("research job %s started: %s", job.ID, job.Topic)
	go uc.run(sessionID, job.ID, opts)
	return job, nil
}

func (uc *ResearchUseCase) run(sessionID, jobID string, opts engine.RunOptions) {
	ctx := uc.baseCtx
	update := func(fn func(*domain.Job)) {
		if err := uc.repo.UpdateJob(ctx, sessionID, jobID, fn); err != nil {
			uc.log.Errorf("update job %s: %v", jobID, err)
		}
	}

	// gathered 与 completed 状态和对应报告在同一次更新中写入，查询方不会看到状态领先于内容
	opts.ProgressCallback = func(status string, progress int) {
		if status != engine.StatusGathering {
			return
		}
		update(func(j *domain.Job) {
			j.Status = domain.JobGathering
			j.Progress = progress
		})
	}
	opts.OnInitialReport = func(report string) {
		update(func(j *domain.Job) {
			j.Status = domain.JobGathered
			j.Progress = 50
			j.InitialReport = report
		})
	}

	out, err := uc.runner.Run(ctx, opts)
	update(func(j *domain.Job) {
		j.FinishedAt = time.Now()
		if out != nil {
			j.InitialReport = out.InitialReport
			j.Sources = out.Sources
			j.EnhancedReport = out.EnhancedReport
		}
		if err != nil {
			j.Status = domain.JobFailed
			j.Error = apperr.UserMessage(err)
			j.ErrorPhase = string(apperr.PhaseOf(err))
			return
		}
		j.Status = domain.JobCompleted
		j.Progress = 100
	})
	if err != nil {
		uc.log.Errorf("research job %s failed: %v", jobID, err)
		return
	}
	uc.log.Infof("research job %s completed", jobID)
}

// Export 按格式导出增强报告
func (uc *ResearchUseCase) Export(ctx context.Context, sessionID, jobID, format string) (*export.Payload, error) {
	if format == "" {
		format = string(export.Markdown)
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, apperr.InvalidRequest("%v", err)
	}
	job, err := uc.repo.GetJob(ctx, sessionID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobCompleted {
		return nil, errors.Conflict("REPORT_NOT_READY", "enhanced report is not available").
			WithMetadata(map[string]string{"status": string(job.Status)})
	}
	p := export.Render(job.Topic, job.EnhancedReport, f)
	return &p, nil
}
