// Package entity defines the domain entities for the dbtest feature.
package entity

// Target is a database the probe should connect to.
type Target struct {
	// Name labels the target in the output (e.g. "remote", "local").
	Name string

	// ConnString is a URI or key-value connection string. Empty means skip.
	ConnString string

	// Detailed requests schema and migration checks in addition to the version.
	Detailed bool
}

// Failure describes why a probe failed.
type Failure struct {
	// Message is the error text.
	Message string

	// Kind is the error classification (configuration, connectivity, query...).
	Kind string

	// Type is the Go type of the innermost wrapped error.
	Type string
}

// Report is the outcome of probing one target.
type Report struct {
	Target string

	// Endpoint is the resolved connection string with the password masked.
	Endpoint string

	Skipped bool
	Failure *Failure

	// Version is the server version string reported by the database.
	Version string

	// The fields below are only populated for detailed probes.
	// UsersChecked and HistoryChecked are set once that step completes,
	// even when a later step fails.
	Detailed         bool
	UsersChecked     bool
	UsersTableExists bool
	UserCount        int64
	HistoryChecked   bool
	HistoryExists    bool
	MigrationIDs     []string
}

// OK reports whether the probe ran and succeeded.
func (r Report) OK() bool { return !r.Skipped && r.Failure == nil }
