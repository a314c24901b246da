package schema

// Custom string types for type safety.
type (
	// Calendar identifies the calendar a model run was configured with.
	Calendar string

	// GridType represents the kind of comparison grid a field is remapped to.
	GridType string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for provenance tracking.
	DatabaseBackend string
)

// Calendars supported by the model cores.
const (
	NoLeapCalendar    Calendar = "noleap"
	GregorianCalendar Calendar = "gregorian"
)

// ValidCalendars is the set of calendars the engine accepts.
var ValidCalendars = map[Calendar]struct{}{
	NoLeapCalendar:    {},
	GregorianCalendar: {},
}

// Comparison grid types for remapping.
const (
	LatLonGrid GridType = "latlon"
	PolarGrid  GridType = "polar"
)

// ValidGridTypes is the set of comparison grids the remapper can target.
var ValidGridTypes = map[GridType]struct{}{
	LatLonGrid: {},
	PolarGrid:  {},
}

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
	CSVOut  OutputMode = "csv"
)

// ValidOutputModes is the set of output modes commands accept.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	JSONOut: {},
	CSVOut:  {},
}

// All provenance backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidDatabaseBackends is the set of provenance backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
