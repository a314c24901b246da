package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/polarcap/climatol/schema"
)

// Default values for configuration.
const (
	DefaultStream              = "timeSeriesStatsMonthly"
	DefaultYearsPerCacheUpdate = 10
	DefaultLatResolution       = 0.5
	DefaultLonResolution       = 0.5
	DefaultRemapMethod         = "conserve"
)

// ValidRemapMethods is the set of supported weight-generation methods.
var ValidRemapMethods = map[string]struct{}{
	"conserve":    {},
	"neareststod": {},
}

// Config holds the runtime configuration for an analysis.
// This struct is the final, validated config; raw inputs live in
// ConfigRawInput until ProcessAndValidate has run.
type Config struct {
	BaseDir   string
	Stream    string
	StartDate schema.Date
	EndDate   schema.Date
	Calendar  schema.Calendar
	MonthSets []schema.MonthSet
	Variables []string

	YearsPerCacheUpdate int
	CacheDir            string
	MappingDir          string

	MeshName       string
	RemapMethod    string
	ComparisonGrid schema.GridType
	LatResolution  float64
	LonResolution  float64

	ProvenanceBackend   schema.DatabaseBackend
	ProvenanceDBConnect string // Please use env var as this is plaintext

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Verbose    bool
	UseColors  bool
	Width      int // Terminal width override (0 = auto-detect)
}

// Clone returns a deep copy so per-request overrides never mutate the
// session configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.MonthSets = append([]schema.MonthSet(nil), c.MonthSets...)
	out.Variables = append([]string(nil), c.Variables...)
	return &out
}

// ConfigRawInput holds the raw inputs from all sources (flags, env,
// config file). Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	BaseDirStr string

	Stream    string `mapstructure:"stream"`
	Start     string `mapstructure:"start"`
	End       string `mapstructure:"end"`
	Calendar  string `mapstructure:"calendar"`
	Months    string `mapstructure:"months"`
	Variables string `mapstructure:"variables"`

	YearsPerUpdate int    `mapstructure:"years-per-update"`
	CacheDir       string `mapstructure:"cache-dir"`
	MappingDir     string `mapstructure:"mapping-dir"`

	MeshName       string  `mapstructure:"mesh-name"`
	RemapMethod    string  `mapstructure:"remap-method"`
	ComparisonGrid string  `mapstructure:"comparison-grid"`
	LatResolution  float64 `mapstructure:"lat-res"`
	LonResolution  float64 `mapstructure:"lon-res"`

	ProvenanceBackend   string `mapstructure:"provenance-backend"`
	ProvenanceDBConnect string `mapstructure:"provenance-db-connect"`

	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Precision  int    `mapstructure:"precision"`
	Verbose    bool   `mapstructure:"verbose"`
	Color      string `mapstructure:"color"`
	Width      int    `mapstructure:"width"`
}

// ProcessAndValidate performs all parsing and validation on the raw
// inputs and populates the final Config struct. Every failure is a
// schema.ErrConfig so commands can report configuration problems before
// touching any cache.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processDateRange(cfg, input); err != nil {
		return err
	}
	if err := processMonthSets(cfg, input); err != nil {
		return err
	}
	if err := processRemapInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	return resolveDirectories(cfg, input)
}

// validateSimpleInputs processes all scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Stream = strings.TrimSpace(input.Stream)
	if cfg.Stream == "" {
		return fmt.Errorf("%w: stream name must not be empty", schema.ErrConfig)
	}

	cfg.Calendar = schema.Calendar(strings.ToLower(input.Calendar))
	if _, ok := schema.ValidCalendars[cfg.Calendar]; !ok {
		return fmt.Errorf("%w: invalid calendar %q, must be noleap or gregorian", schema.ErrConfig, input.Calendar)
	}

	if input.YearsPerUpdate < 1 {
		return fmt.Errorf("%w: years-per-update must be at least 1 (received %d)", schema.ErrConfig, input.YearsPerUpdate)
	}
	cfg.YearsPerCacheUpdate = input.YearsPerUpdate

	cfg.Variables = splitList(input.Variables)

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("%w: invalid output format %q, must be text, json or csv", schema.ErrConfig, input.Output)
	}
	cfg.OutputFile = input.OutputFile

	if input.Precision < 0 || input.Precision > 10 {
		return fmt.Errorf("%w: precision must be between 0 and 10 (received %d)", schema.ErrConfig, input.Precision)
	}
	cfg.Precision = input.Precision
	cfg.Verbose = input.Verbose
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("%w: invalid --color value: %v", schema.ErrConfig, err)
	}
	cfg.UseColors = colors

	return nil
}

// processDateRange parses the requested start and end dates.
func processDateRange(cfg *Config, input *ConfigRawInput) error {
	start, err := schema.ParseDate(input.Start)
	if err != nil {
		return err
	}
	end, err := schema.ParseDate(input.End)
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("%w: start date %s is after end date %s", schema.ErrConfig, start, end)
	}
	cfg.StartDate = start
	cfg.EndDate = end
	return nil
}

// processMonthSets resolves the comma-separated season names.
func processMonthSets(cfg *Config, input *ConfigRawInput) error {
	names := splitList(input.Months)
	if len(names) == 0 {
		return fmt.Errorf("%w: at least one month set is required", schema.ErrConfig)
	}
	cfg.MonthSets = make([]schema.MonthSet, 0, len(names))
	for _, name := range names {
		ms, err := schema.LookupMonthSet(name)
		if err != nil {
			return err
		}
		cfg.MonthSets = append(cfg.MonthSets, ms)
	}
	return nil
}

// processRemapInputs validates the comparison-grid settings.
func processRemapInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.MeshName = strings.TrimSpace(input.MeshName)

	cfg.RemapMethod = strings.ToLower(input.RemapMethod)
	if _, ok := ValidRemapMethods[cfg.RemapMethod]; !ok {
		return fmt.Errorf("%w: invalid remap method %q, must be conserve or neareststod", schema.ErrConfig, input.RemapMethod)
	}

	cfg.ComparisonGrid = schema.GridType(strings.ToLower(input.ComparisonGrid))
	if _, ok := schema.ValidGridTypes[cfg.ComparisonGrid]; !ok {
		return fmt.Errorf("%w: invalid comparison grid %q, must be latlon or polar", schema.ErrConfig, input.ComparisonGrid)
	}

	if input.LatResolution <= 0 || input.LonResolution <= 0 {
		return fmt.Errorf("%w: comparison resolutions must be positive (received %g x %g)",
			schema.ErrConfig, input.LatResolution, input.LonResolution)
	}
	cfg.LatResolution = input.LatResolution
	cfg.LonResolution = input.LonResolution
	return nil
}

// validateBackendConfig validates the provenance backend settings.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.ProvenanceBackend = schema.DatabaseBackend(strings.ToLower(input.ProvenanceBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.ProvenanceBackend]; !ok {
		return fmt.Errorf("%w: invalid provenance backend %q, must be sqlite, mysql, postgresql or none",
			schema.ErrConfig, input.ProvenanceBackend)
	}
	cfg.ProvenanceDBConnect = input.ProvenanceDBConnect
	return ValidateDatabaseConnectionString(cfg.ProvenanceBackend, cfg.ProvenanceDBConnect)
}

// ValidateDatabaseConnectionString validates the format of database
// connection strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("%w: provenance-db-connect is required when using %s backend", schema.ErrConfig, backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("%w: MySQL connection string must contain '@tcp(' for host:port specification", schema.ErrConfig)
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("%w: provenance-db-connect is required when using %s backend", schema.ErrConfig, backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("%w: PostgreSQL connection string must contain 'host=' parameter", schema.ErrConfig)
		}
	}
	return nil
}

// resolveDirectories resolves the base, cache and mapping directories.
func resolveDirectories(cfg *Config, input *ConfigRawInput) error {
	baseDir := input.BaseDirStr
	if baseDir == "" {
		baseDir = "."
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve base directory %q: %v", schema.ErrConfig, baseDir, err)
	}
	cfg.BaseDir = filepath.Clean(absBase)

	cacheDir := input.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(cfg.BaseDir, "climatol_cache")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("%w: cannot create cache directory %q: %v", schema.ErrConfig, cacheDir, err)
	}
	cfg.CacheDir = cacheDir

	mappingDir := input.MappingDir
	if mappingDir == "" {
		mappingDir = filepath.Join(cacheDir, "mapping")
	}
	if err := os.MkdirAll(mappingDir, 0o755); err != nil {
		return fmt.Errorf("%w: cannot create mapping directory %q: %v", schema.ErrConfig, mappingDir, err)
	}
	cfg.MappingDir = mappingDir
	return nil
}

// ParseBoolString converts yes/no style flags into a bool.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yes", "true", "on", "1":
		return true, nil
	case "no", "false", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected yes/no, got %q", s)
}

// splitList splits a comma-separated list, trimming blanks.
func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
