// Package metrics provides build observability for formidable.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder (Null Object), so call sites never check for nil. The
// PrometheusRecorder is activated by the metrics plugin, which also writes the
// registry to a textfile-collector file after each build pass.
package metrics
