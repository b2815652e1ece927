package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/debrief/schema"
	"go.uber.org/zap"
)

// Default values for configuration.
const (
	DefaultResultLimit = 10
	MaxResultLimit     = 100
	DefaultPrecision   = 2
)

// Config holds the runtime configuration for a report.
// This struct remains the "final, validated" config.
type Config struct {
	InputPath   string // absolute path of the survey export; empty until provided
	Sheet       string
	Columns     schema.ColumnSchema
	Partners    []string // positional partner names, deduplicated in order
	ResultLimit int
	Basis       schema.ThemeBasis
	Granularity schema.Granularity
	Rating      schema.RatingField    // empty means every rating field
	Dimension   schema.ThemeDimension // empty means every available dimension
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool
	Verbose     bool
	MetricsFile string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	Logger *zap.Logger
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	PartnerArgs []string

	// --- Fields from rootCmd.PersistentFlags() ---
	Input            string `mapstructure:"input"`
	Sheet            string `mapstructure:"sheet"`
	Limit            int    `mapstructure:"limit"`
	Basis            string `mapstructure:"basis"`
	Granularity      string `mapstructure:"granularity"`
	Rating           string `mapstructure:"rating"`
	Dimension        string `mapstructure:"dimension"`
	Precision        int    `mapstructure:"precision"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	Verbose          bool   `mapstructure:"verbose"`
	MetricsFile      string `mapstructure:"metrics-file"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Header aliases from config file, keyed by canonical column ---
	Columns map[string][]string `mapstructure:"columns"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Partners != nil {
		clone.Partners = append([]string(nil), c.Partners...)
	}
	if c.Columns.Aliases != nil {
		cols, _ := c.Columns.WithAliases(nil)
		clone.Columns = cols
	}
	return &clone
}

// Log returns the configured logger, or a no-op logger.
func (c *Config) Log() *zap.Logger {
	if c == nil || c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processReportOptions(cfg, input); err != nil {
		return err
	}
	if err := processColumns(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return resolveInputPath(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history-db-connect: %w", err)
	}

	// Cache and history must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Sheet = strings.TrimSpace(input.Sheet)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose
	cfg.MetricsFile = input.MetricsFile

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, xlsx, parquet", input.Output)
	}
	if (cfg.Output == schema.XLSXOut || cfg.Output == schema.ParquetOut) && cfg.OutputFile == "" {
		return fmt.Errorf("--output %s requires --output-file", cfg.Output)
	}

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	return nil
}

// processReportOptions validates the aggregation knobs and positional partners.
func processReportOptions(cfg *Config, input *ConfigRawInput) error {
	cfg.Basis = schema.ThemeBasis(strings.ToLower(input.Basis))
	if _, ok := schema.ValidThemeBases[cfg.Basis]; !ok {
		return fmt.Errorf("invalid basis '%s'. must be mentions, sessions", input.Basis)
	}

	cfg.Granularity = schema.Granularity(strings.ToLower(input.Granularity))
	if _, ok := schema.ValidGranularities[cfg.Granularity]; !ok {
		return fmt.Errorf("invalid granularity '%s'. must be day, week, month", input.Granularity)
	}

	cfg.Rating = schema.RatingField(strings.ToLower(strings.TrimSpace(input.Rating)))
	if cfg.Rating != "" {
		if _, ok := schema.ValidRatingFields[cfg.Rating]; !ok {
			return fmt.Errorf("invalid rating '%s'. must be relevance, support, urgency", input.Rating)
		}
	}

	cfg.Dimension = schema.ThemeDimension(strings.ToLower(strings.TrimSpace(input.Dimension)))
	if cfg.Dimension != "" {
		if _, ok := schema.ValidThemeDimensions[cfg.Dimension]; !ok {
			return fmt.Errorf("invalid dimension '%s'. must be pressure, challenge, obstacle, takeaway", input.Dimension)
		}
	}

	cfg.Partners = nil
	seen := make(map[string]struct{}, len(input.PartnerArgs))
	for _, p := range input.PartnerArgs {
		p = schema.CollapseSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		cfg.Partners = append(cfg.Partners, p)
	}
	return nil
}

// processColumns applies header alias overrides from the config file.
func processColumns(cfg *Config, input *ConfigRawInput) error {
	cols, err := schema.DefaultColumnSchema().WithAliases(input.Columns)
	if err != nil {
		return err
	}
	cfg.Columns = cols
	return nil
}

// resolveInputPath makes the input path absolute and checks that it can be loaded.
// A missing input is allowed here; commands that need data report it later.
func resolveInputPath(cfg *Config, input *ConfigRawInput) error {
	cfg.InputPath = ""
	if strings.TrimSpace(input.Input) == "" {
		return nil
	}
	abs, err := filepath.Abs(strings.TrimSpace(input.Input))
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(abs)) {
	case ".xlsx", ".xlsm", ".csv":
	default:
		return fmt.Errorf("input %q must be an .xlsx or .csv file", input.Input)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("input %q: %w", input.Input, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input %q is a directory", input.Input)
	}
	cfg.InputPath = abs
	return nil
}

// ToolInput holds per-call overrides for a cloned config. Empty fields keep
// the value already in the config.
type ToolInput struct {
	Input       string
	Partners    []string
	Limit       int
	Basis       string
	Granularity string
	Rating      string
	Dimension   string
}

// Revalidate applies per-call overrides to cfg with the same rules as
// ProcessAndValidate. Callers pass a clone of the base config.
func Revalidate(cfg *Config, in ToolInput) error {
	raw := &ConfigRawInput{
		PartnerArgs: cfg.Partners,
		Basis:       string(cfg.Basis),
		Granularity: string(cfg.Granularity),
		Rating:      string(cfg.Rating),
		Dimension:   string(cfg.Dimension),
	}
	if in.Partners != nil {
		raw.PartnerArgs = in.Partners
	}
	if in.Basis != "" {
		raw.Basis = in.Basis
	}
	if in.Granularity != "" {
		raw.Granularity = in.Granularity
	}
	if in.Rating != "" {
		raw.Rating = in.Rating
	}
	if in.Dimension != "" {
		raw.Dimension = in.Dimension
	}
	if err := processReportOptions(cfg, raw); err != nil {
		return err
	}

	if in.Limit != 0 {
		if in.Limit < 0 || in.Limit > MaxResultLimit {
			return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, in.Limit)
		}
		cfg.ResultLimit = in.Limit
	}

	if in.Input != "" {
		return resolveInputPath(cfg, &ConfigRawInput{Input: in.Input})
	}
	return nil
}
