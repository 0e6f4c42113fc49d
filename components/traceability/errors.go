package traceability

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errMissingSessions = errors.New("traceability: session store not configured")
	errMissingSession  = errors.New("traceability: session id is required")

	// ErrUnknownLayout is returned when a layout code is not registered.
	ErrUnknownLayout = errors.New("traceability: unknown layout")
	// ErrUnknownField is returned by the editor for field keys it does not manage.
	ErrUnknownField = errors.New("traceability: unknown product field")
	// ErrUnknownImage is returned when an image ref is not one of the bundled options.
	ErrUnknownImage = errors.New("traceability: unknown image option")
	// ErrNotAdmin is returned when editor operations run outside the admin view.
	ErrNotAdmin = errors.New("traceability: editor requires the admin view")

	// Scan failure kinds reserved for real decoders. The simulator never produces them.
	ErrScanNotFound      = errors.New("traceability: scan found no code")
	ErrScanTimeout       = errors.New("traceability: scan timed out")
	ErrScanInvalidFormat = errors.New("traceability: scanned code has an invalid format")
)

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates field problems found on a product.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "traceability: validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "traceability: validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether the error mentions the given field.
func (e *ValidationError) Has(field string) bool {
	if e == nil {
		return false
	}
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// IndexOutOfRangeError reports an index outside [0, Len).
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("traceability: index %d out of range [0,%d)", e.Index, e.Len)
}

// ValidateCode rejects codes that cannot name a product. Only transports call it;
// the navigator accepts any string.
func ValidateCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return ErrScanInvalidFormat
	}
	return nil
}
