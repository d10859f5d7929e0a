package paths

import "errors"

var (
	// ErrModuleNotFound indicates no regular module file exists for a logical name.
	ErrModuleNotFound = errors.New("module not found")
	// ErrTemplateNotFound indicates no template glob yielded a regular file.
	ErrTemplateNotFound = errors.New("template not found")
)
