// Command seasonarrd is the long-running daemon: it schedules ingestion
// cycles against the catalog and reconciles watching shows with the download
// backend until interrupted.
package main
