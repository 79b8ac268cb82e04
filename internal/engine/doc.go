// Package engine is the reconciliation core. It drives the catalog, release
// group resolver, and download backend adapters against the local store:
// scheduled ingestion cycles keep title metadata fresh, and user actions
// (star, resolve, confirm, edit, remove) move titles between the discovered
// and watching states. The engine also owns login sessions, delegating the
// credential check to the backend.
package engine
