// Command seasonarr is the CLI for the season tracker: list and search
// shows, star them, resolve release groups, and drive the download backend.
package main
