// Package watcher reports image files arriving in a dropzone directory.
//
// Filesystem events are debounced per path so a file still being copied is
// announced once, after writes go quiet. Admission stays with the intake
// package; the watcher only reports settled regular files and leaves content
// sniffing to the consumer.
package watcher
