// Package templating renders view templates located through the path resolver.
//
// Three engines are available: "html" (html/template, the default), "text"
// (text/template) and "markdown" (text/template followed by goldmark). Every
// engine provides these template functions:
//
//	url "name" "key" value ...   resolve a named URL pattern
//	include "file" .             render another template with the given data
//	markdown .Body               convert Markdown to HTML
//	output                       absolute output path of the page being rendered
package templating
