// Package sonarr implements the download backend against a sonarr-compatible
// v3 API. Release group selection is expressed downstream as a managed tag
// plus a release profile requiring the group name.
package sonarr
