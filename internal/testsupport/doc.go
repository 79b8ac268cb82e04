// Package testsupport provides shared helpers for package tests: temp-dir
// configs and store lifecycle management.
package testsupport
