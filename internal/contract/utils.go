package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/debrief/schema"
)

// Color variables for console output.
var (
	StrongColor  = color.New(color.FgGreen, color.Bold) // StrongColor marks ratings people are happy with.
	SteadyColor  = color.New(color.FgCyan)              // SteadyColor is the neutral band.
	WatchColor   = color.New(color.FgYellow)            // WatchColor asks for a closer look.
	ConcernColor = color.New(color.FgRed, color.Bold)   // ConcernColor is the lowest band.
	NoDataColor  = color.New(color.Faint)
)

// GetPlainLabel returns a plain text label for a mean rating, or the
// "no data" label when there is no valid rating. This is the core logic
// used for CSV, JSON, and table printing.
func GetPlainLabel(mean *float64) string {
	if mean == nil {
		return schema.NoDataLabel
	}
	return schema.RatingLabel(*mean)
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(mean *float64) string {
	text := GetPlainLabel(mean)

	switch text {
	case schema.StrongLabel:
		return StrongColor.Sprint(text)
	case schema.SteadyLabel:
		return SteadyColor.Sprint(text)
	case schema.WatchLabel:
		return WatchColor.Sprint(text)
	case schema.ConcernLabel:
		return ConcernColor.Sprint(text)
	default:
		return NoDataColor.Sprint(text)
	}
}

// FormatMean renders an optional mean, falling back to the "no data" label.
func FormatMean(mean *float64, precision int) string {
	if mean == nil {
		return schema.NoDataLabel
	}
	return fmt.Sprintf("%.*f", precision, *mean)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the table cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".debrief_cache.db"
	}
	return filepath.Join(homeDir, ".debrief_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for report history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".debrief_history.db"
	}
	return filepath.Join(homeDir, ".debrief_history.db")
}

// TruncateText shortens free text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 to leave room for the ellipsis and at least one character.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
