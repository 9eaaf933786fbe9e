// Package intake admits source images into the session batch.
//
// Files are accepted by magic-byte sniffing rather than extension, so a
// mislabeled .jpg that is really a PNG still converts. Every accepted file
// yields a batch item plus, when enabled, a small preview thumbnail under the
// session staging directory. Unsupported or unreadable paths are skipped with
// a reason instead of aborting the scan.
package intake
