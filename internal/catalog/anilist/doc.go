// Package anilist implements the catalog adapter against an
// AniList-compatible GraphQL endpoint.
package anilist
