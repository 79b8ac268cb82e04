// Package services defines the shared error taxonomy used across the
// catalog, resolver, and backend adapters. Adapter failures are tagged with
// sentinel markers so the reconciliation engine can classify them without
// knowing which concrete adapter produced them.
package services
