// Package site assembles a formidable site instance from settings: the URL
// registry, middleware, path resolver, module loader, context assembler,
// template engine, build orchestrator, plugins and shared API registry. No
// state is process-wide; several instances may coexist.
package site
