package normalize

import "fmt"

// MissingConfigurationError reports a required field name left unset in the
// field map. Aborts the pipeline; surfaced once, never per record.
type MissingConfigurationError struct {
	Field string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: no record field set for %q", e.Field)
}

// MissingFieldError reports a configured field name that does not exist as a
// key on the first record of a non-empty collection.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("configured field %q not present on records", e.Field)
}

// MalformedTimeValueError reports a start/end time value that failed "HH:MM"
// parsing. Per-record: the offending record is skipped, the batch survives.
type MalformedTimeValueError struct {
	Value string
}

func (e *MalformedTimeValueError) Error() string {
	return fmt.Sprintf("malformed time value %q, want HH:MM", e.Value)
}
