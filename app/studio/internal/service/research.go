package service

import (
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/apperr"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/model"
	"github.com/iWorld-y/research_genius/app/studio/internal/domain"
	"github.com/iWorld-y/research_genius/app/studio/internal/usecase"
)

type ResearchService struct {
	uc  *usecase.ResearchUseCase
	log *log.Helper
}

func NewResearchService(uc *usecase.ResearchUseCase, logger log.Logger) *ResearchService {
	return &ResearchService{
		uc:  uc,
		log: log.NewHelper(logger),
	}
}

// RegisterRoutes 注册 /v1 下的全部路由
func (s *ResearchService) RegisterRoutes(srv *http.Server) {
	r := srv.Route("/v1")
	r.POST("/sessions", s.CreateSession)
	r.PUT("/sessions/{id}/credentials", s.SetCredentials)
	r.POST("/sessions/{id}/research", s.StartResearch)
	r.GET("/sessions/{id}/history", s.History)
	r.GET("/sessions/{id}/jobs/{job}", s.GetJob)
	r.GET("/sessions/{id}/jobs/{job}/export", s.Export)
}

type SessionReply struct {
	ID             string `json:"id"`
	CreatedAt      string `json:"created_at"`
	HasCredentials bool   `json:"has_credentials"`
}

func toSessionReply(ss *domain.Session) *SessionReply {
	return &SessionReply{
		ID:             ss.ID,
		CreatedAt:      ss.CreatedAt.Format(time.RFC3339),
		HasCredentials: ss.HasCredentials,
	}
}

func (s *ResearchService) CreateSession(ctx http.Context) error {
	ss, err := s.uc.CreateSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(nethttp.StatusCreated, toSessionReply(ss))
}

type CredentialsReq struct {
	ResearchKey string `json:"research_key"`
	LLMKey      string `json:"llm_key"`
}

// SetCredentials 保存密钥，响应中只返回是否已完整设置
func (s *ResearchService) SetCredentials(ctx http.Context) error {
	var req CredentialsReq
	if err := ctx.Bind(&req); err != nil {
		return apperr.InvalidRequest("invalid request body: %v", err)
	}
	ss, err := s.uc.SetCredentials(ctx, ctx.Vars().Get("id"), model.Credentials{
		Research: req.ResearchKey,
		LLM:      req.LLMKey,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(nethttp.StatusOK, toSessionReply(ss))
}

type ResearchReq struct {
	Topic          string `json:"topic"`
	MaxDepth       int    `json:"max_depth"`
	TimeLimit      int    `json:"time_limit"`
	MaxSources     int    `json:"max_sources"`
	Focus          string `json:"focus"`
	CitationStyle  string `json:"citation_style"`
	IncludeVisuals *bool  `json:"include_visuals"`
}

func (s *ResearchService) StartResearch(ctx http.Context) error {
	var req ResearchReq
	if err := ctx.Bind(&req); err != nil {
		return apperr.InvalidRequest("invalid request body: %v", err)
	}
	job, err := s.uc.StartResearch(ctx, ctx.Vars().Get("id"), domain.ResearchParams{
		Topic:          req.Topic,
		MaxDepth:       req.MaxDepth,
		TimeLimit:      req.TimeLimit,
		MaxSources:     req.MaxSources,
		Focus:          req.Focus,
		CitationStyle:  req.CitationStyle,
		IncludeVisuals: req.IncludeVisuals,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(nethttp.StatusAccepted, toJobReply(job))
}

type HistoryReply struct {
	Items []HistoryItem `json:"items"`
}

type HistoryItem struct {
	Topic string `json:"topic"`
	Label string `json:"label"`
}

func (s *ResearchService) History(ctx http.Context) error {
	items, err := s.uc.History(ctx, ctx.Vars().Get("id"))
	if err != nil {
		return err
	}
	reply := &HistoryReply{Items: make([]HistoryItem, 0, len(items))}
	for _, it := range items {
		reply.Items = append(reply.Items, HistoryItem{Topic: it.Topic, Label: it.Label})
	}
	return ctx.JSON(nethttp.StatusOK, reply)
}

type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type JobReply struct {
	ID             string   `json:"id"`
	Topic          string   `json:"topic"`
	Status         string   `json:"status"`
	Progress       int      `json:"progress"`
	Focus          string   `json:"focus"`
	CitationStyle  string   `json:"citation_style"`
	IncludeVisuals bool     `json:"include_visuals"`
	InitialReport  string   `json:"initial_report,omitempty"`
	EnhancedReport string   `json:"enhanced_report,omitempty"`
	Sources        []Source `json:"sources,omitempty"`
	Error          string   `json:"error,omitempty"`
	ErrorPhase     string   `json:"error_phase,omitempty"`
	CreatedAt      string   `json:"created_at"`
	FinishedAt     string   `json:"finished_at,omitempty"`
}

func toJobReply(j *domain.Job) *JobReply {
	r := &JobReply{
		ID:             j.ID,
		Topic:          j.Topic,
		Status:         string(j.Status),
		Progress:       j.Progress,
		Focus:          string(j.Preferences.Focus),
		CitationStyle:  string(j.Preferences.CitationStyle),
		IncludeVisuals: j.Preferences.IncludeVisuals,
		InitialReport:  j.InitialReport,
		EnhancedReport: j.EnhancedReport,
		Error:          j.Error,
		ErrorPhase:     j.ErrorPhase,
		CreatedAt:      j.CreatedAt.Format(time.RFC3339),
	}
	if !j.FinishedAt.IsZero() {
		r.FinishedAt = j.FinishedAt.Format(time.RFC3339)
	}
	for _, src := range j.Sources {
		r.Sources = append(r.Sources, Source{Title: src.Title, URL: src.URL})
	}
	return r
}

func (s *ResearchService) GetJob(ctx http.Context) error {
	vars := ctx.Vars()
	job, err := s.uc.Job(ctx, vars.Get("id"), vars.Get("job"))
	if err != nil {
		return err
	}
	return ctx.JSON(nethttp.StatusOK, toJobReply(job))
}

// Export 以附件形式返回增强报告，?format=md|txt
func (s *ResearchService) Export(ctx http.Context) error {
	vars := ctx.Vars()
	p, err := s.uc.Export(ctx, vars.Get("id"), vars.Get("job"), ctx.Query().Get("format"))
	if err != nil {
		return err
	}
	ctx.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", p.Filename))
	return ctx.Blob(nethttp.StatusOK, p.MediaType+"; charset=utf-8", p.Body)
}
