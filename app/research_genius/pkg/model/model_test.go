package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/apperr"
)

func TestNewResearchRequest(t *testing.T) {
	tests := []struct {
		name      string
		topic     string
		depth     int
		timeLimit int
		sources   int
		wantErr   bool
	}{
		{"defaults", "Quantum error correction", DefaultDepth, DefaultTimeLimit, DefaultSources, false},
		{"lower bounds", "x", 1, 60, 5, false},
		{"upper bounds", "x", 5, 300, 20, false},
		{"empty topic", "", 3, 180, 10, true},
		{"blank topic", "   ", 3, 180, 10, true},
		{"depth too low", "x", 0, 180, 10, true},
		{"depth too high", "x", 6, 180, 10, true},
		{"time limit too low", "x", 3, 59, 10, true},
		{"time limit too high", "x", 3, 301, 10, true},
		{"sources too low", "x", 3, 180, 4, true},
		{"sources too high", "x", 3, 180, 21, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewResearchRequest(tt.topic, tt.depth, tt.timeLimit, tt.sources)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.IsInvalidRequest(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.depth, req.MaxDepth)
			assert.Equal(t, tt.timeLimit, req.TimeLimit)
			assert.Equal(t, tt.sources, req.MaxSources)
		})
	}
}

func TestNewResearchRequestTrimsTopic(t *testing.T) {
	req, err := NewResearchRequest("  solar sails \n", 3, 180, 10)
	require.NoError(t, err)
	assert.Equal(t, "solar sails", req.Topic)
}

func TestNewElaborationRequest(t *testing.T) {
	req, err := NewResearchRequest("Quantum error correction", 3, 180, 10)
	require.NoError(t, err)

	er := NewElaborationRequest(req, Preferences{Focus: FocusTechnical, IncludeVisuals: true, CitationStyle: CitationIEEE}, "R1")

	assert.Equal(t, "Quantum error correction", er.Topic)
	assert.Equal(t, FocusTechnical, er.Focus)
	assert.Equal(t, CitationIEEE, er.CitationStyle)
	assert.Equal(t, "R1", er.SourceReport)
	assert.Equal(t, "Yes", er.VisualsToken())

	er.IncludeVisuals = false
	assert.Equal(t, "No", er.VisualsToken())
}

func TestParseFocus(t *testing.T) {
	for in, want := range map[string]Focus{
		"Technical":       FocusTechnical,
		"business impact": FocusBusinessImpact,
		"BusinessImpact":  FocusBusinessImpact,
		"future_trends":   FocusFutureTrends,
		"ACADEMIC":        FocusAcademic,
	} {
		got, err := ParseFocus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFocus("Marketing")
	assert.True(t, apperr.IsInvalidRequest(err))
}

func TestParseCitationStyle(t *testing.T) {
	got, err := ParseCitationStyle("ieee")
	require.NoError(t, err)
	assert.Equal(t, CitationIEEE, got)

	_, err = ParseCitationStyle("Vancouver")
	assert.True(t, apperr.IsInvalidRequest(err))
}

func TestCredentials(t *testing.T) {
	assert.False(t, Credentials{}.Complete())
	assert.False(t, Credentials{Research: "fc-key"}.Complete())
	assert.False(t, Credentials{Research: "fc-key", LLM: "  "}.Complete())
	assert.True(t, Credentials{Research: "fc-key", LLM: "sk-key"}.Complete())

	c := Credentials{Research: "fc-secret", LLM: "sk-secret"}
	for _, s := range []string{c.String(), fmt.Sprintf("%v", c), fmt.Sprintf("%+v", c), fmt.Sprintf("%#v", c)} {
		assert.NotContains(t, s, "secret")
	}
}

func TestPreferencesValidate(t *testing.T) {
	require.NoError(t, DefaultPreferences().Validate())
	require.NoError(t, Preferences{Focus: FocusTechnical, CitationStyle: CitationIEEE}.Validate())

	for name, p := range map[string]Preferences{
		"zero value":      {},
		"unknown focus":   {Focus: "Marketing", CitationStyle: CitationAPA},
		"unknown style":   {Focus: FocusAcademic, CitationStyle: "Vancouver"},
		"unparsed casing": {Focus: "technical", CitationStyle: CitationAPA},
	} {
		err := p.Validate()
		assert.True(t, apperr.IsInvalidRequest(err), name)
	}

	assert.True(t, FocusBusinessImpact.IsValid())
	assert.False(t, Focus("").IsValid())
	assert.True(t, CitationHarvard.IsValid())
	assert.False(t, CitationStyle("").IsValid())
}
