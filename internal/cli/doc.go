// Package cli is responsible for parsing command-line arguments, coercing the
// launcher's positional parameters, and handling process-level concerns like
// usage output and exit codes. It translates the command line into the
// application's configuration.
package cli
