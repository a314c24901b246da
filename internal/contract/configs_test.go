package contract

import (
	"path/filepath"
	"testing"

	"github.com/polarcap/climatol/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns raw inputs matching the CLI defaults, rooted in a
// temp directory so directory resolution stays isolated.
func validInput(t *testing.T) *ConfigRawInput {
	t.Helper()
	return &ConfigRawInput{
		BaseDirStr:        t.TempDir(),
		Stream:            DefaultStream,
		Start:             "0001-01-01",
		End:               "9999-12-31",
		Calendar:          "noleap",
		Months:            "ANN",
		YearsPerUpdate:    DefaultYearsPerCacheUpdate,
		RemapMethod:       DefaultRemapMethod,
		ComparisonGrid:    "latlon",
		LatResolution:     DefaultLatResolution,
		LonResolution:     DefaultLonResolution,
		ProvenanceBackend: "none",
		Output:            "text",
		Precision:         4,
		Color:             "yes",
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	input := validInput(t)
	input.Variables = " sst , ohc "
	input.Months = "DJF,JJA"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, DefaultStream, cfg.Stream)
	assert.Equal(t, schema.NoLeapCalendar, cfg.Calendar)
	assert.Equal(t, []string{"sst", "ohc"}, cfg.Variables)
	require.Len(t, cfg.MonthSets, 2)
	assert.Equal(t, "DJF", cfg.MonthSets[0].Name)
	assert.Equal(t, 1, cfg.StartDate.Year)
	assert.Equal(t, 9999, cfg.EndDate.Year)
	assert.True(t, cfg.UseColors)

	// Cache directories are created under the base directory
	assert.Equal(t, filepath.Join(cfg.BaseDir, "climatol_cache"), cfg.CacheDir)
	assert.Equal(t, filepath.Join(cfg.CacheDir, "mapping"), cfg.MappingDir)
	assert.DirExists(t, cfg.MappingDir)
}

func TestProcessAndValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ConfigRawInput)
	}{
		{"empty stream", func(in *ConfigRawInput) { in.Stream = "  " }},
		{"unknown calendar", func(in *ConfigRawInput) { in.Calendar = "julian" }},
		{"zero years per update", func(in *ConfigRawInput) { in.YearsPerUpdate = 0 }},
		{"bad output mode", func(in *ConfigRawInput) { in.Output = "xml" }},
		{"precision out of range", func(in *ConfigRawInput) { in.Precision = 11 }},
		{"bad color", func(in *ConfigRawInput) { in.Color = "maybe" }},
		{"malformed start date", func(in *ConfigRawInput) { in.Start = "01-01-0001" }},
		{"inverted date range", func(in *ConfigRawInput) { in.Start = "0005-01-01"; in.End = "0004-01-01" }},
		{"no month sets", func(in *ConfigRawInput) { in.Months = " , " }},
		{"unknown month set", func(in *ConfigRawInput) { in.Months = "ANN,XYZ" }},
		{"unknown remap method", func(in *ConfigRawInput) { in.RemapMethod = "bilinear" }},
		{"unknown grid", func(in *ConfigRawInput) { in.ComparisonGrid = "cubed-sphere" }},
		{"non-positive resolution", func(in *ConfigRawInput) { in.LatResolution = 0 }},
		{"unknown backend", func(in *ConfigRawInput) { in.ProvenanceBackend = "oracle" }},
		{"mysql without connect", func(in *ConfigRawInput) { in.ProvenanceBackend = "mysql" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput(t)
			tc.mutate(input)
			err := ProcessAndValidate(&Config{}, input)
			assert.ErrorIs(t, err, schema.ErrConfig)
		})
	}
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))

	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "root:pw@tcp(localhost:3306)/db"))
	assert.ErrorIs(t, ValidateDatabaseConnectionString(schema.MySQLBackend, ""), schema.ErrConfig)
	assert.ErrorIs(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "root:pw@localhost/db"), schema.ErrConfig)

	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost user=pg"))
	assert.ErrorIs(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "localhost:5432"), schema.ErrConfig)
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"", "yes", "TRUE", "on", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "off", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{
		Stream:    DefaultStream,
		Variables: []string{"sst"},
		MonthSets: []schema.MonthSet{{Name: "Jan", Months: []int{1}}},
	}
	cp := cfg.Clone()
	cp.Stream = "other"
	cp.Variables[0] = "ohc"
	cp.MonthSets[0] = schema.MonthSet{Name: "Feb", Months: []int{2}}

	assert.Equal(t, DefaultStream, cfg.Stream)
	assert.Equal(t, "sst", cfg.Variables[0])
	assert.Equal(t, "Jan", cfg.MonthSets[0].Name)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,, b "))
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList(" , "))
}
