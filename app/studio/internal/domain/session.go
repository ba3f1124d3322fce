package domain

import (
	"time"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/model"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/research"
)

// JobStatus 研究任务状态
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobGathering JobStatus = "gathering"
	JobGathered  JobStatus = "gathered"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Session 一个用户会话，凭据与历史只属于该会话
type Session struct {
	ID        string
	CreatedAt time.Time
	// HasCredentials 两个密钥是否都已设置，密钥本身不对外暴露
	HasCredentials bool
}

// ResearchParams 发起研究的参数，零值字段使用配置中的默认值
type ResearchParams struct {
	Topic          string
	MaxDepth       int
	TimeLimit      int
	MaxSources     int
	Focus          string
	CitationStyle  string
	IncludeVisuals *bool
}

// Job 一次后台研究任务
type Job struct {
	ID             string
	SessionID      string
	Topic          string
	Preferences    model.Preferences
	Status         JobStatus
	Progress       int
	InitialReport  string
	EnhancedReport string
	Sources        []research.Source
	Error          string
	ErrorPhase     string
	CreatedAt      time.Time
	FinishedAt     time.Time
}

// HistoryItem 历史记录中的一项
type HistoryItem struct {
	Topic string
	Label string
}
