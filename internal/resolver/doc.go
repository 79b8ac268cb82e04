// Package resolver defines the release-group lookup boundary. Implementations
// search a public release index and report which groups are releasing a
// title.
package resolver
