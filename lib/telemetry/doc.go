// Package telemetry exports the outcome of a maintenance run in
// Prometheus text format, suitable for the node_exporter textfile
// collector. The export is a one-shot snapshot written after the run,
// there is no metrics endpoint.
//
// A Snapshot is rendered into a fresh metric set and written
// atomically: the file is staged next to the target and moved into
// place, so a scraper never observes a half-written export.
package telemetry
