// Package backend defines the download-management boundary. The engine adds,
// edits, and removes titles downstream through this interface and delegates
// login checks to the downstream system's own authentication.
package backend
