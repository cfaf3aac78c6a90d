// Package cli is the command-line front-end of regkeeper.
//
// App is the composition root: it owns the brand store, the edit store and
// the services built on them, and releases them in Close. The cobra command
// tree in root.go maps one command to one App method; the interactive shell
// in repl.go dispatches the same methods from typed lines.
package cli
