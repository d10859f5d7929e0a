package build

import (
	"errors"

	ferrors "git.home.luguber.info/inful/formidable/internal/foundation/errors"
	"git.home.luguber.info/inful/formidable/internal/paths"
	"git.home.luguber.info/inful/formidable/internal/templating"
	"git.home.luguber.info/inful/formidable/internal/urls"
)

// classify maps a build failure onto the error categories used for exit codes.
func classify(err error, run *Run) error {
	stage := ""
	var se *StageError
	if errors.As(err, &se) {
		stage = string(se.Stage)
	}
	if _, ok := ferrors.AsClassified(err); ok {
		return err
	}

	var b *ferrors.ErrorBuilder
	switch {
	case errors.Is(err, urls.ErrUnknownPattern),
		errors.Is(err, urls.ErrMissingParameter),
		errors.Is(err, urls.ErrDuplicateName),
		errors.Is(err, urls.ErrDuplicateParameter),
		errors.Is(err, urls.ErrInvalidUse):
		b = ferrors.WrapError(err, ferrors.CategoryRouting, "URL routing failed")
	case errors.Is(err, paths.ErrModuleNotFound), errors.Is(err, paths.ErrTemplateNotFound):
		b = ferrors.WrapError(err, ferrors.CategoryNotFound, "build input not found")
	case errors.Is(err, ErrOverwriteDisallowed):
		b = ferrors.WrapError(err, ferrors.CategoryAlreadyExists, "output exists")
	case errors.Is(err, ErrNotADirectory):
		b = ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot create output directory")
	case errors.Is(err, templating.ErrRender), errors.Is(err, ErrInvalidView):
		b = ferrors.WrapError(err, ferrors.CategoryRender, "render failed")
	default:
		b = ferrors.WrapError(err, ferrors.CategoryBuild, "build failed")
	}
	if stage != "" {
		b = b.WithContext("stage", stage)
	}
	return b.WithContext("build_id", run.ID).Fatal().Build()
}
