package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/debrief/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    *float64
		expected string
	}{
		{
			name:     "no data",
			input:    nil,
			expected: schema.NoDataLabel,
		},
		{
			name:     "lowest rating",
			input:    schema.FloatPtr(1),
			expected: schema.ConcernLabel,
		},
		{
			name:     "just before watch",
			input:    schema.FloatPtr(1.99),
			expected: schema.ConcernLabel,
		},
		{
			name:     "exactly steady",
			input:    schema.FloatPtr(3),
			expected: schema.SteadyLabel,
		},
		{
			name:     "exactly strong",
			input:    schema.FloatPtr(4),
			expected: schema.StrongLabel,
		},
		{
			name:     "highest rating",
			input:    schema.FloatPtr(5),
			expected: schema.StrongLabel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainLabel(tt.input))
		})
	}
}

func TestGetColorLabel(t *testing.T) {
	tests := []struct {
		name  string
		mean  *float64
		label string
	}{
		{"concern", schema.FloatPtr(1.5), schema.ConcernLabel},
		{"watch", schema.FloatPtr(2.5), schema.WatchLabel},
		{"steady", schema.FloatPtr(3.5), schema.SteadyLabel},
		{"strong", schema.FloatPtr(4.5), schema.StrongLabel},
		{"no data", nil, schema.NoDataLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetColorLabel(tt.mean)
			// Should contain the plain label
			assert.Contains(t, result, tt.label)
		})
	}
}

func TestFormatMean(t *testing.T) {
	assert.Equal(t, schema.NoDataLabel, FormatMean(nil, 2))
	assert.Equal(t, "4.50", FormatMean(schema.FloatPtr(4.5), 2))
	assert.Equal(t, "3.3", FormatMean(schema.FloatPtr(10.0/3), 1))
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		// Verify file was created
		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestGetDBFilePaths(t *testing.T) {
	cachePath := GetCacheDBFilePath()
	historyPath := GetHistoryDBFilePath()
	assert.True(t, strings.HasSuffix(cachePath, ".debrief_cache.db"))
	assert.True(t, strings.HasSuffix(historyPath, ".debrief_history.db"))
	assert.NotEqual(t, cachePath, historyPath)
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{"short", "Talent", 10, "Talent"},
		{"exact", "Talent", 6, "Talent"},
		{"truncated", "Implementation obstacles", 10, "Impleme..."},
		{"tiny width is ignored", "Talent", 3, "Talent"},
		{"multibyte", "Équipe dirigeante", 8, "Équip..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateText(tt.input, tt.width))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "YES", "true", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	quiet := NewLogger(false)
	assert.False(t, quiet.Core().Enabled(zapcore.DebugLevel), "debug must be off by default")
	assert.True(t, quiet.Core().Enabled(zapcore.WarnLevel), "warnings are shown")

	verbose := NewLogger(true)
	assert.True(t, verbose.Core().Enabled(zapcore.DebugLevel))
}

func FuzzTruncateText(f *testing.F) {
	f.Add("Talent", 4)
	f.Add("", 0)
	f.Add("Équipe dirigeante", 8)
	f.Fuzz(func(t *testing.T, s string, width int) {
		out := TruncateText(s, width)
		if width > 3 && len([]rune(out)) > width {
			t.Fatalf("TruncateText(%q, %d) = %q is too wide", s, width, out)
		}
	})
}
