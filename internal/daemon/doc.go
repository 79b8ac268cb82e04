// Package daemon coordinates the long-running seasonarr process: it holds
// the single-instance lock and drives the ingestion scheduler.
package daemon
