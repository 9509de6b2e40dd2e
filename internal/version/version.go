// Package version contains information on the current version of grok. It is
// split from the main program for easy use.
package version

// Current is the string representing the current version of grok.
const Current = "0.4.0"

// BinaryFormat is the version of the compiled grammar file format. It is
// written at the start of every compiled grammar so that files made by an
// incompatible version are rejected instead of misread.
const BinaryFormat = 1
