// Package batch tracks the images of one conversion session and exposes
// helpers for driving their lifecycle.
//
// The Store keeps items in an in-memory SQLite database: state lives exactly
// as long as the process, but queries, status transitions, and stats reuse
// ordinary SQL. Items carry their intake position so listings and generated
// output names stay in the order the images arrived.
//
// Treat this package as the single source of truth for batch semantics; when
// you add new statuses or item fields, update schema.sql and bump
// schemaVersion.
package batch
