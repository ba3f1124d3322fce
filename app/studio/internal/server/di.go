package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/engine"
	"github.com/iWorld-y/research_genius/app/studio/internal/data"
	"github.com/iWorld-y/research_genius/app/studio/internal/service"
	"github.com/iWorld-y/research_genius/app/studio/internal/usecase"
)

// ProviderSet 是研究服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,
	NewGeniusConfig,
	NewGeniusEngine,
	wire.Bind(new(usecase.Runner), new(*engine.Engine)),

	// Data providers
	data.NewData,
	data.NewSessionRepo,

	// UseCase providers
	usecase.NewResearchUseCase,

	// Service providers
	service.NewResearchService,
)
