// Package build runs a build pass of a site.
//
// A pass moves through four stages: pre_build runs the pre-build hooks and the
// initializers, resolving loads the route table and every pattern's views,
// rendering renders and writes each (pattern, view) pair concurrently, and
// post_build runs the post-build hooks in reverse registration order. The first
// error aborts the pass and is reported to the log sink.
package build
