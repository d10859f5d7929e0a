package eventstore

import (
	"git.home.luguber.info/inful/formidable/internal/foundation/errors"
)

var (
	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.InternalError("could not open build history database").Build()

	// ErrInitializeSchemaFailed indicates the database schema could not be initialized.
	ErrInitializeSchemaFailed = errors.InternalError("failed to initialize build history schema").Build()
)

func marshalError(eventType, buildID string, err error) error {
	return errors.InternalError("failed to marshal "+eventType+" payload").
		WithCause(err).
		WithContext("build_id", buildID).
		Build()
}
