// Package export places converted images at their final destination.
//
// Two shapes are supported: sequential file copies into a directory, paced by
// a configurable delay, and a single zip archive of every completed output.
// File export takes a lock in the destination so two concurrent exports
// cannot interleave; zip export reads only completed items, so the archive
// never contains a half-converted image.
package export
