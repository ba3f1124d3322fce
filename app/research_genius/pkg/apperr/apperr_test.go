package apperr

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidRequest(t *testing.T) {
	err := InvalidRequest("topic %s", "is empty")

	assert.True(t, IsInvalidRequest(err))
	assert.False(t, IsExternalService(err))
	assert.Equal(t, http.StatusBadRequest, errors.Code(err))
	assert.Equal(t, Phase(""), PhaseOf(err))
	assert.Equal(t, "⚠️ topic is empty", UserMessage(err))
}

func TestExternalServicePhases(t *testing.T) {
	cause := stderrors.New("status 401: unauthorized")

	gather := ExternalService(PhaseGather, cause)
	elaborate := ExternalService(PhaseElaborate, cause)

	require.True(t, IsExternalService(gather))
	require.True(t, IsExternalService(elaborate))
	assert.Equal(t, http.StatusBadGateway, errors.Code(gather))
	assert.Equal(t, PhaseGather, PhaseOf(gather))
	assert.Equal(t, PhaseElaborate, PhaseOf(elaborate))
	assert.ErrorIs(t, gather, cause)

	assert.True(t, strings.HasPrefix(UserMessage(gather), "❌ Web research failed: status 401"))
	assert.True(t, strings.HasPrefix(UserMessage(elaborate), "❌ Report enhancement failed: status 401"))
}

func TestPhaseSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("run: %w", ExternalService(PhaseElaborate, stderrors.New("boom")))

	assert.True(t, IsExternalService(err))
	assert.Equal(t, PhaseElaborate, PhaseOf(err))
}

func TestPlainErrorsAreNeitherKind(t *testing.T) {
	err := stderrors.New("plain")

	assert.False(t, IsInvalidRequest(err))
	assert.False(t, IsExternalService(err))
	assert.False(t, IsInvalidRequest(nil))
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "❌ An error occurred: plain", UserMessage(err))
}
