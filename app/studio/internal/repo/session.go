package repo

import (
	"context"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/model"
	"github.com/iWorld-y/research_genius/app/studio/internal/domain"
)

// SessionRepo 会话仓库接口
type SessionRepo interface {
	// CreateSession 创建新会话
	CreateSession(ctx context.Context) (*domain.Session, error)
	// GetSession 获取会话，不存在时返回 SESSION_NOT_FOUND
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	// SetCredentials 覆盖会话的两个密钥
	SetCredentials(ctx context.Context, id string, creds model.Credentials) error
	// Credentials 读取会话的密钥
	Credentials(ctx context.Context, id string) (model.Credentials, error)
	// AddHistory 追加主题，完全相同的主题不重复记录
	AddHistory(ctx context.Context, id string, topic string) error
	// History 按添加顺序返回历史
	History(ctx context.Context, id string) ([]*domain.HistoryItem, error)
	// SaveJob 保存新任务
	SaveJob(ctx context.Context, job *domain.Job) error
	// UpdateJob 在锁内修改任务
	UpdateJob(ctx context.Context, sessionID, jobID string, fn func(*domain.Job)) error
	// GetJob 返回任务快照
	GetJob(ctx context.Context, sessionID, jobID string) (*domain.Job, error)
}
