package data

import (
	"sync"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/history"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/model"
	"github.com/iWorld-y/research_genius/app/studio/internal/domain"
)

// Data 进程内会话存储，服务重启后全部丢失
type Data struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
}

type sessionState struct {
	session domain.Session
	creds   model.Credentials
	history *history.History
	jobs    map[string]*domain.Job
}

func NewData(logger log.Logger) (*Data, func(), error) {
	d := &Data{sessions: make(map[string]*sessionState)}
	cleanup := func() {
		d.mu.Lock()
		n := len(d.sessions)
		d.sessions = make(map[string]*sessionState)
		d.mu.Unlock()
		log.NewHelper(logger).Infof("dropping %d in-memory sessions", n)
	}
	return d, cleanup, nil
}
