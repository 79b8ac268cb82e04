// Package catalog defines the contract for catalog sources that report
// currently-airing titles. The default implementation lives in the anilist
// subpackage.
package catalog
