// Package cli implements the adbdial command-line interface.
//
// # Command Structure
//
// The root command dials; subcommands cover the pieces around it:
//
//	adbdial [host]          - Dial host until adb connects, then open a shell
//	adbdial shell <device>  - Open the shell against an already connected device
//	adbdial config show     - Print the effective configuration
//	adbdial config init     - Write a default .adbdial.yaml
//	adbdial version         - Print version information
//
// # Dial Flow
//
// dialCommand loads config and applies flag overrides, asks for the host
// when none was given, and runs a dial.Session with the renderer picked by
// --output. A connected device hands off to the shell; a session that runs
// out of time prints the failure report and exits 0.
//
// # Flag Handling
//
// Global flags (--config, --verbose, --no-color, --log-file) live on the
// root command and apply to every subcommand. Root-only flags override the
// matching config keys for a single run.
package cli
