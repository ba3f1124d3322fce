package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPayloadsAreIdentical(t *testing.T) {
	report := "# R2\n\nEnhanced ✨ report with `code` and trailing newline\n"

	md := Render("Quantum error correction", report, Markdown)
	txt := Render("Quantum error correction", report, Text)

	assert.Equal(t, []byte(report), md.Body)
	assert.Equal(t, md.Body, txt.Body)
	assert.Equal(t, "text/markdown", md.MediaType)
	assert.Equal(t, "text/plain", txt.MediaType)
	assert.Equal(t, "Quantum_error_correction_report.md", md.Filename)
	assert.Equal(t, "Quantum_error_correction_report.txt", txt.Filename)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"md": Markdown, "Markdown": Markdown, "txt": Text, "text": Text} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()

	paths, err := WriteFiles(filepath.Join(dir, "out"), "AI/ML trends", "body")
	require.NoError(t, err)
	require.Len(t, paths, 2)

	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "body", string(data))
	}
	assert.Equal(t, "AI_ML_trends_report.md", filepath.Base(paths[0]))
	assert.Equal(t, "AI_ML_trends_report.txt", filepath.Base(paths[1]))
}
