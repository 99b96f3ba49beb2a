package analyzer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/batchstat/pkg/analyzer"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestAnalyze_SimpleTextFile(t *testing.T) {
	path := writeFile(t, "simple.txt", []byte("hello world\nthis is a test\n"))

	analysis := analyzer.Analyze(path)

	assert.Empty(t, analysis.Errors)
	assert.Equal(t, 6, analysis.Stats.WordCount)
	assert.Equal(t, 2, analysis.Stats.LineCount)
	assert.EqualValues(t, 27, analysis.Stats.SizeBytes)
	assert.Equal(t, 3, analysis.Stats.CharFrequencies['l'])
	assert.Equal(t, 2, analysis.Stats.CharFrequencies['\n'])
	assert.GreaterOrEqual(t, analysis.ProcessingTime.Nanoseconds(), int64(0))
}

func TestAnalyze_EmptyFile(t *testing.T) {
	path := writeFile(t, "empty.txt", nil)

	analysis := analyzer.Analyze(path)

	assert.Empty(t, analysis.Errors)
	assert.Zero(t, analysis.Stats.WordCount)
	assert.Zero(t, analysis.Stats.LineCount)
	assert.Zero(t, analysis.Stats.SizeBytes)
	assert.Empty(t, analysis.Stats.CharFrequencies)
}

func TestAnalyze_NoTrailingNewline(t *testing.T) {
	path := writeFile(t, "partial.txt", []byte("one two three"))

	analysis := analyzer.Analyze(path)

	assert.Equal(t, 3, analysis.Stats.WordCount)
	assert.Equal(t, 1, analysis.Stats.LineCount, "final unterminated line still counts")
}

func TestAnalyze_MissingFile(t *testing.T) {
	analysis := analyzer.Analyze(filepath.Join(t.TempDir(), "nope.txt"))

	require.NotEmpty(t, analysis.Errors, "missing file should be reported via Errors")

	ops := make(map[string]bool)
	for _, e := range analysis.Errors {
		ops[e.Operation] = true
	}
	assert.True(t, ops["metadata"], "stat failure should be recorded")
	assert.True(t, ops["open"], "open failure should be recorded")
	assert.Zero(t, analysis.Stats.WordCount, "stats stay zero when the file cannot be opened")
}

func TestAnalyze_BinaryFallback(t *testing.T) {
	// 0xff 0xfe is not valid UTF-8 anywhere in a line
	content := []byte("plain prefix\n\xff\xfe raw bytes\nmore\n")
	path := writeFile(t, "mixed.bin", content)

	analysis := analyzer.Analyze(path)

	assert.Empty(t, analysis.Errors, "invalid UTF-8 is a fallback, not an error")
	assert.Equal(t, 3, analysis.Stats.LineCount)
	assert.Equal(t, 6, analysis.Stats.WordCount)
	assert.EqualValues(t, len(content), analysis.Stats.SizeBytes)
	assert.Equal(t, 1, analysis.Stats.CharFrequencies[rune(0xff)], "byte-level frequencies in fallback")
}

func TestAnalyze_KnownSizes(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{name: "test_100_bytes", size: 100},
		{name: "test_250_bytes", size: 250},
		{name: "test_4096_bytes", size: 4096},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := make([]byte, tt.size)
			for i := range content {
				content[i] = 'a'
			}
			path := writeFile(t, "sized.txt", content)

			analysis := analyzer.Analyze(path)
			assert.EqualValues(t, tt.size, analysis.Stats.SizeBytes)
		})
	}
}
