package validator

// Validator validates annotated structs.
type Validator interface {
	// Validate checks the struct's validation tags and returns an error
	// describing the violations, or nil when the value is valid.
	Validate(data any) error
}
