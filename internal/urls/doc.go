// Package urls implements the named URL pattern registry and resolver.
//
// Patterns are path templates with optional query strings. A path segment or
// query value of the form ":name" is a required parameter and "::name" is an
// optional one; anything else passes through unchanged:
//
//	/blog/:slug
//	/archive/:year/::month
//	/search?q=:term&page=::page
//
// Composition is done by string prefixing at registration time. Once a child
// list is wrapped by a prefix the registry stays a flat name -> pattern map, so
// Resolve never walks a tree.
package urls
