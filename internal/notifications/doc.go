// Package notifications delivers batch milestones via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set.
// Enumerated event types cover batch completion, export completion, and
// per-item errors so callers can emit consistent messages without duplicating
// HTTP glue. Batch completion is additionally suppressed below the configured
// item-count and duration thresholds so short interactive runs stay quiet.
//
// All workflow code depends only on the Service interface.
package notifications
