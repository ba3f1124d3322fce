package gatherer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/apperr"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/model"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/research"
)

type fakeResearcher struct {
	got    *research.Request
	result *research.Result
	err    error
}

func (f *fakeResearcher) Research(_ context.Context, req *research.Request) (*research.Result, error) {
	f.got = req
	return f.result, f.err
}

var creds = model.Credentials{Research: "fc-key", LLM: "sk-key"}

func TestGatherReturnsReportVerbatim(t *testing.T) {
	report := "  # R1\n\nraw <b>text</b> kept as-is\n"
	fake := &fakeResearcher{result: &research.Result{Report: report}}

	var gotKey string
	g := New(func(apiKey string) (research.Researcher, error) {
		gotKey = apiKey
		return fake, nil
	})

	req := model.ResearchRequest{Topic: "Quantum error correction", MaxDepth: 3, TimeLimit: 180, MaxSources: 10}
	res, err := g.Gather(context.Background(), req, creds)
	require.NoError(t, err)

	assert.Equal(t, report, res.Report)
	assert.Equal(t, "fc-key", gotKey)
	assert.Equal(t, "Research topic: Quantum error correction. Parameters: max_depth=3, time_limit=180, max_urls=10", fake.got.Query)
	assert.Equal(t, "Quantum error correction", fake.got.Topic)
	assert.Equal(t, 3, fake.got.MaxDepth)
	assert.Equal(t, 180, fake.got.TimeLimit)
	assert.Equal(t, 10, fake.got.MaxURLs)
}

func TestGatherEmptyTopic(t *testing.T) {
	calls := 0
	g := New(func(string) (research.Researcher, error) {
		calls++
		return &fakeResearcher{}, nil
	})

	_, err := g.Gather(context.Background(), model.ResearchRequest{}, creds)
	assert.True(t, apperr.IsInvalidRequest(err))
	assert.Zero(t, calls)
}

func TestGatherWrapsFailures(t *testing.T) {
	req := model.ResearchRequest{Topic: "x", MaxDepth: 1, TimeLimit: 60, MaxSources: 5}

	tests := []struct {
		name    string
		factory ResearcherFactory
	}{
		{"factory error", func(string) (research.Researcher, error) { return nil, errors.New("bad provider") }},
		{"client error", func(string) (research.Researcher, error) {
			return &fakeResearcher{err: errors.New("status 401")}, nil
		}},
		{"nil result", func(string) (research.Researcher, error) { return &fakeResearcher{}, nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.factory).Gather(context.Background(), req, creds)
			require.Error(t, err)
			assert.True(t, apperr.IsExternalService(err))
			assert.Equal(t, apperr.PhaseGather, apperr.PhaseOf(err))
		})
	}
}
