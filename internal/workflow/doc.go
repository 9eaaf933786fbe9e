// Package workflow converts batch items and coordinates watch mode.
//
// A conversion pass walks the batch in intake order, re-queues earlier
// failures, and converts every pending item concurrently while completed
// items keep their results. Output names are derived from the enumeration
// position at pass time, so renaming settings apply uniformly across items
// converted in different passes.
//
// Watch mode wraps the same pass logic in a long-running loop: dropzone
// arrivals are admitted through intake, converted, and exported as they
// settle, with a periodic rescan covering events the filesystem watcher
// missed. The Manager emits batch notifications when a pass finishes.
package workflow
