// Package builtin holds the plugins shipped with formidable: sitemap,
// linkcheck, history, report and metrics. Register adds fresh instances to a
// site's plugin registry.
package builtin
