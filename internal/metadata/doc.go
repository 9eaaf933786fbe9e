// Package metadata summarizes the EXIF fields embedded in source images.
//
// Re-encoding through the convert engine writes clean pixel data and drops
// every tag, so the summary doubles as a preview of what a conversion will
// discard: GPS coordinates, camera identity, timestamps, serial numbers.
package metadata
