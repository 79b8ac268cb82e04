// Package nyaa implements the release-group resolver against a
// nyaa-compatible RSS search endpoint.
package nyaa
