// Package modules loads named site modules: Go values installed in-process or
// YAML files located through the path resolver.
package modules
