// Package cli turns the plugtree command line into an app.Config. Invalid
// input is reported as an ExitError carrying the process exit code; -h and a
// missing plugin directory print usage and ask the caller to exit cleanly.
package cli
