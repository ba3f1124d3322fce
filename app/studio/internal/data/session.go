package data

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/history"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/model"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/research"
	"github.com/iWorld-y/research_genius/app/studio/internal/domain"
	"github.com/iWorld-y/research_genius/app/studio/internal/repo"
)

type sessionRepo struct {
	data *Data
	log  *log.Helper
}

func NewSessionRepo(data *Data, logger log.Logger) repo.SessionRepo {
	return &sessionRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func errSessionNotFound(id string) error {
	return errors.NotFound("SESSION_NOT_FOUND", "session not found").WithMetadata(map[string]string{"session_id": id})
}

func errJobNotFound(id string) error {
	return errors.NotFound("JOB_NOT_FOUND", "job not found").WithMetadata(map[string]string{"job_id": id})
}

// lookup 调用方必须持有锁
func (r *sessionRepo) lookup(id string) (*sessionState, error) {
	s, ok := r.data.sessions[id]
	if !ok {
		return nil, errSessionNotFound(id)
	}
	return s, nil
}

func (r *sessionRepo) CreateSession(ctx context.Context) (*domain.Session, error) {
	s := &sessionState{
		session: domain.Session{ID: uuid.NewString(), CreatedAt: time.Now()},
		history: history.New(),
		jobs:    make(map[string]*domain.Job),
	}

	r.data.mu.Lock()
	r.data.sessions[s.session.ID] = s
	r.data.mu.Unlock()

	r.log.WithContext(ctx).Infof("session created: %s", s.session.ID)
	out := s.session
	return &out, nil
}

func (r *sessionRepo) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	r.data.mu.RLock()
	defer r.data.mu.RUnlock()

	s, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	out := s.session
	return &out, nil
}

func (r *sessionRepo) SetCredentials(ctx context.Context, id string, creds model.Credentials) error {
	r.data.mu.Lock()
	defer r.data.mu.Unlock()

	s, err := r.lookup(id)
	if err != nil {
		return err
	}
	s.creds = creds
	s.session.HasCredentials = creds.Complete()
	return nil
}

func (r *sessionRepo) Credentials(ctx context.Context, id string) (model.Credentials, error) {
	r.data.mu.RLock()
	defer r.data.mu.RUnlock()

	s, err := r.lookup(id)
	if err != nil {
		return model.Credentials{}, err
	}
	return s.creds, nil
}

func (r *sessionRepo) AddHistory(ctx context.Context, id string, topic string) error {
	r.data.mu.RLock()
	defer r.data.mu.RUnlock()

	s, err := r.lookup(id)
	if err != nil {
		return err
	}
	s.history.Add(topic)
	return nil
}

func (r *sessionRepo) History(ctx context.Context, id string) ([]*domain.HistoryItem, error) {
	r.data.mu.RLock()
	defer r.data.mu.RUnlock()

	s, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	items := make([]*domain.HistoryItem, 0, s.history.Len())
	for _, t := range s.history.Items() {
		items = append(items, &domain.HistoryItem{Topic: t, Label: history.Label(t)})
	}
	return items, nil
}

func (r *sessionRepo) SaveJob(ctx context.Context, job *domain.Job) error {
	r.data.mu.Lock()
	defer r.data.mu.Unlock()

	s, err := r.lookup(job.SessionID)
	if err != nil {
		return err
	}
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (r *sessionRepo) UpdateJob(ctx context.Context, sessionID, jobID string, fn func(*domain.Job)) error {
	r.data.mu.Lock()
	defer r.data.mu.Unlock()

	s, err := r.lookup(sessionID)
	if err != nil {
		return err
	}
	job, ok := s.jobs[jobID]
	if !ok {
		return errJobNotFound(jobID)
	}
	fn(job)
	return nil
}

func (r *sessionRepo) GetJob(ctx context.Context, sessionID, jobID string) (*domain.Job, error) {
	r.data.mu.RLock()
	defer r.data.mu.RUnlock()

	s, err := r.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, errJobNotFound(jobID)
	}
	cp := *job
	cp.Sources = append([]research.Source(nil), job.Sources...)
	return &cp, nil
}
