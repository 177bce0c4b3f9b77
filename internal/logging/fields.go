package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError  = "error"
	FieldPath   = "path"
	FieldInput  = "input"
	FieldOutput = "output"
	FieldJobs   = "jobs"

	// Record fields.
	FieldRow    = "row"
	FieldLine   = "line"
	FieldColumn = "column"
	FieldField  = "field"
	FieldKind   = "kind"
	FieldRaw    = "raw"

	// Dialect fields.
	FieldDelimiter = "delimiter"
	FieldHeader    = "header"
	FieldFields    = "fields"
	FieldEncoding  = "encoding"

	// Statistics fields.
	FieldRecords  = "records"
	FieldChars    = "chars"
	FieldBytes    = "bytes"
	FieldBadData  = "bad_data"
	FieldDuration = "duration"

	// Buffer fields.
	FieldFills  = "fills"
	FieldGrows  = "grows"
	FieldBuffer = "buffer"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
