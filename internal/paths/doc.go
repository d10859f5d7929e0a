// Package paths resolves logical names to filesystem paths for modules and
// templates, caching positive and negative results until Clear is called.
//
// Template lookup searches an ordered list of glob patterns rooted at the
// templates root. FindTemplate runs one cancellable GlobStream per pattern at
// once but accepts results strictly in pattern order, so the first pattern
// that yields a regular file wins and every other stream is stopped.
package paths
