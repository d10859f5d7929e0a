// Package errors provides foundational, type-safe error primitives used across formidable.
//
// Domain packages declare sentinel errors (urls.ErrUnknownPattern,
// build.ErrOverwriteDisallowed, ...) and wrap them with %w. At the edges
// (build surface, CLI) an error is classified with a category and severity so
// the CLI adapter can pick an exit code and a presentation.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryRouting, "resolve failed").
//		Fatal().
//		WithContext("pattern", name).
//		Build()
package errors
