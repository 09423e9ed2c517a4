package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	// Operation fields.
	FieldFile      = "file"
	FieldOperation = "operation"
	FieldHeading   = "heading"
	FieldIndex     = "index"
	FieldStatus    = "status"
	FieldDuration  = "duration"
	FieldBackup    = "backup"
	FieldDryRun    = "dry_run"

	// Batch statistics fields.
	FieldOperations = "operations"
	FieldApplied    = "applied"
	FieldFailed     = "failed"

	// Version fields.
	FieldVersion  = "version"
	FieldCommit   = "commit"
	FieldBuilt    = "built"
	FieldGo       = "go"
	FieldPlatform = "platform"
)
