// Package secretshields provides the command-line interface for
// SecretShields. It wires settings, storage, the clipboard and the
// operator terminal into the monitor and exposes one-shot masking
// commands.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/secretshields/secretshields/cmd/secretshields"
//	func main() { secretshields.Execute() }
package secretshields
