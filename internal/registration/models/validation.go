package models

// ValidationError describes one rejected input value. Path is dot-separated
// and empty for errors about the value as a whole.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

// Validatable is implemented by every variant of the parsed input types.
// Valid variants return no errors.
type Validatable interface {
	Errors() []ValidationError
}

type namedField struct {
	key   string
	value Validatable
}

// collectErrors flattens the errors of each field in order, prefixing paths
// with the field key. Nil fields are skipped.
func collectErrors(fields ...namedField) []ValidationError {
	var out []ValidationError
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		for _, e := range f.value.Errors() {
			out = append(out, e.withPrefix(f.key))
		}
	}
	return out
}

func (e ValidationError) withPrefix(key string) ValidationError {
	if e.Path == "" {
		e.Path = key
	} else {
		e.Path = key + "." + e.Path
	}
	return e
}

func orNull(s *string) string {
	if s == nil {
		return "null"
	}
	return *s
}
