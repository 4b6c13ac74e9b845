// Package dupes finds files with identical content under a directory tree.
//
// A Walker enumerates the tree and submits one hashing job per file at or
// above the size threshold to a bounded Scheduler. Aggregate then waits for
// every job and groups canonical paths by content digest. Failures on single
// entries are collected as ScanError values and never abort the scan.
package dupes
