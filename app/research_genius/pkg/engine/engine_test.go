package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/apperr"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/config"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/elaborator"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/model"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/research"
)

type fakeGatherer struct {
	calls  int
	got    model.ResearchRequest
	report string
	empty  bool
	err    error
}

func (f *fakeGatherer) Gather(_ context.Context, req model.ResearchRequest, _ model.Credentials) (*research.Result, error) {
	f.calls++
	f.got = req
	if f.err != nil || f.empty {
		return nil, f.err
	}
	return &research.Result{Report: f.report}, nil
}

type fakeElaborator struct {
	calls  int
	prompt string
	got    model.ElaborationRequest
	out    string
	err    error
}

func (f *fakeElaborator) Elaborate(_ context.Context, req model.ElaborationRequest, _ model.Credentials) (string, error) {
	f.calls++
	f.got = req
	f.prompt = elaborator.Prompt(req)
	return f.out, f.err
}

type checkpoint struct {
	status   string
	progress int
}

var creds = model.Credentials{Research: "fc-key", LLM: "sk-key"}

func quantumOptions() RunOptions {
	return RunOptions{
		Topic:      "Quantum error correction",
		MaxDepth:   3,
		TimeLimit:  180,
		MaxSources: 10,
		Preferences: model.Preferences{
			Focus:          model.FocusTechnical,
			IncludeVisuals: true,
			CitationStyle:  model.CitationIEEE,
		},
		Credentials: creds,
	}
}

func TestRunQuantumScenario(t *testing.T) {
	g := &fakeGatherer{report: "R1"}
	el := &fakeElaborator{out: "R2"}

	var seen []checkpoint
	var initial string
	opts := quantumOptions()
	opts.ProgressCallback = func(status string, progress int) {
		seen = append(seen, checkpoint{status, progress})
	}
	opts.OnInitialReport = func(report string) {
		initial = report
		// 初始报告必须在第二阶段开始前交付
		assert.Zero(t, el.calls)
	}

	out, err := New(g, el).Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 1, g.calls)
	assert.Equal(t, 1, el.calls)
	assert.Equal(t, model.ResearchRequest{Topic: "Quantum error correction", MaxDepth: 3, TimeLimit: 180, MaxSources: 10}, g.got)

	for _, s := range []string{"Quantum error correction", "Technical", "Yes", "IEEE", "R1"} {
		assert.Contains(t, el.prompt, s)
	}
	assert.Equal(t, "R1", el.got.SourceReport)

	assert.Equal(t, "R1", initial)
	assert.Equal(t, "R1", out.InitialReport)
	assert.Equal(t, "R2", out.EnhancedReport)
	assert.Equal(t, "Quantum error correction", out.Topic)
	assert.Equal(t, opts.Preferences, out.Preferences)
	assert.False(t, out.FinishedAt.Before(out.StartedAt))

	assert.Equal(t, []checkpoint{
		{StatusGathering, 0},
		{StatusGathered, 50},
		{StatusCompleted, 100},
	}, seen)
}

func TestRunRejectsBeforeExternalCalls(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RunOptions)
	}{
		{"empty topic", func(o *RunOptions) { o.Topic = "" }},
		{"blank topic", func(o *RunOptions) { o.Topic = "   " }},
		{"missing research key", func(o *RunOptions) { o.Credentials.Research = "" }},
		{"missing llm key", func(o *RunOptions) { o.Credentials.LLM = "" }},
		{"no credentials and no topic", func(o *RunOptions) { o.Credentials = model.Credentials{}; o.Topic = "" }},
		{"depth out of range", func(o *RunOptions) { o.MaxDepth = 9 }},
		{"zero preferences", func(o *RunOptions) { o.Preferences = model.Preferences{} }},
		{"unknown focus", func(o *RunOptions) { o.Preferences.Focus = "Marketing" }},
		{"unknown citation style", func(o *RunOptions) { o.Preferences.CitationStyle = "Vancouver" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &fakeGatherer{report: "R1"}
			el := &fakeElaborator{out: "R2"}
			opts := quantumOptions()
			tt.mutate(&opts)

			out, err := New(g, el).Run(context.Background(), opts)
			require.Error(t, err)
			assert.True(t, apperr.IsInvalidRequest(err))
			assert.Nil(t, out)
			assert.Zero(t, g.calls)
			assert.Zero(t, el.calls)
		})
	}
}

func TestRunCredentialsCheckedFirst(t *testing.T) {
	opts := quantumOptions()
	opts.Topic = ""
	opts.Credentials = model.Credentials{}

	_, err := New(&fakeGatherer{}, &fakeElaborator{}).Run(context.Background(), opts)
	assert.Contains(t, apperr.UserMessage(err), "API keys")
}

func TestRunGatherFailure(t *testing.T) {
	g := &fakeGatherer{err: apperr.ExternalService(apperr.PhaseGather, errors.New("status 401"))}
	el := &fakeElaborator{out: "R2"}

	var seen []checkpoint
	opts := quantumOptions()
	opts.ProgressCallback = func(status string, progress int) {
		seen = append(seen, checkpoint{status, progress})
	}
	opts.OnInitialReport = func(string) { t.Fatal("initial report must not be delivered") }

	out, err := New(g, el).Run(context.Background(), opts)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, apperr.PhaseGather, apperr.PhaseOf(err))
	assert.Zero(t, el.calls)
	assert.Equal(t, []checkpoint{{StatusGathering, 0}}, seen)
}

func TestRunElaborateFailureKeepsInitialReport(t *testing.T) {
	g := &fakeGatherer{report: "R1"}
	el := &fakeElaborator{err: apperr.ExternalService(apperr.PhaseElaborate, errors.New("status 429"))}

	var seen []checkpoint
	var initial string
	opts := quantumOptions()
	opts.ProgressCallback = func(status string, progress int) {
		seen = append(seen, checkpoint{status, progress})
	}
	opts.OnInitialReport = func(r string) { initial = r }

	out, err := New(g, el).Run(context.Background(), opts)
	require.Error(t, err)
	assert.Equal(t, apperr.PhaseElaborate, apperr.PhaseOf(err))
	require.NotNil(t, out)
	assert.Equal(t, "R1", out.InitialReport)
	assert.Empty(t, out.EnhancedReport)
	assert.Equal(t, "R1", initial)
	assert.Equal(t, []checkpoint{{StatusGathering, 0}, {StatusGathered, 50}}, seen)
}

func TestRunIndependentInvocations(t *testing.T) {
	g := &fakeGatherer{report: "R1"}
	el := &fakeElaborator{out: "R2"}
	e := New(g, el)

	for i := 0; i < 2; i++ {
		out, err := e.Run(context.Background(), quantumOptions())
		require.NoError(t, err)
		assert.Equal(t, "R2", out.EnhancedReport)
	}
	assert.Equal(t, 2, g.calls)
	assert.Equal(t, 2, el.calls)
}

func TestRunGatherNoResult(t *testing.T) {
	g := &fakeGatherer{empty: true}
	el := &fakeElaborator{out: "R2"}

	out, err := New(g, el).Run(context.Background(), quantumOptions())
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, apperr.PhaseGather, apperr.PhaseOf(err))
	assert.Zero(t, el.calls)
}

func TestNewEngineWithoutDefaults(t *testing.T) {
	firecrawl := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"success":true,"id":"job-1"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"status":"completed","data":{"finalAnalysis":"R1"}}`))
	}))
	defer firecrawl.Close()

	prompts := make(chan string, 1)
	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) && len(body.Messages) > 0 {
			select {
			case prompts <- body.Messages[len(body.Messages)-1].Content:
			default:
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o",` +
			`"choices":[{"index":0,"message":{"role":"assistant","content":"R2"},"finish_reason":"stop"}],` +
			`"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`))
	}))
	defer llmSrv.Close()

	// 未调用 ApplyDefaults：Concurrency 全为 0
	cfg := &config.Config{}
	cfg.LLM.BaseURL = llmSrv.URL
	cfg.Research.Firecrawl.BaseURL = firecrawl.URL

	out, err := NewEngine(cfg).Run(context.Background(), quantumOptions())
	require.NoError(t, err)
	assert.Equal(t, "R1", out.InitialReport)
	assert.Equal(t, "R2", out.EnhancedReport)
	assert.Contains(t, <-prompts, "Quantum error correction")
	assert.Zero(t, cfg.Concurrency.QPS)
}

func TestNewLimiter(t *testing.T) {
	cfg := config.Default()
	l := newLimiter(cfg.Concurrency)
	assert.Equal(t, cfg.Concurrency.QPS, l.Burst())
	assert.True(t, l.Allow())
}
