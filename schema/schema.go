// Package schema defines the shared data model for climatol: calendars,
// month sets, in-memory datasets and the enums and status records used
// across commands and stores.
package schema
