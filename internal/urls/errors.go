package urls

import "errors"

var (
	// ErrUnknownPattern indicates Resolve was called with a name that was never registered.
	ErrUnknownPattern = errors.New("unknown URL pattern")
	// ErrDuplicateName indicates a second pattern was registered under an existing name.
	ErrDuplicateName = errors.New("URL pattern name already exists")
	// ErrInvalidUse indicates a composed pattern was given a name, or a leaf pattern was not.
	ErrInvalidUse = errors.New("invalid URL pattern use")
	// ErrMissingParameter indicates a required parameter had no value.
	ErrMissingParameter = errors.New("missing URL parameter")
	// ErrDuplicateParameter indicates a parameter name occurs twice in one pattern.
	ErrDuplicateParameter = errors.New("parameter names are not unique in URL pattern")
)
