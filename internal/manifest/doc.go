// Package manifest builds descriptor tables from library manifests.
//
// A manifest declares what a compiled library exports: its struct types,
// functions, constants and global variables. The Go code that implements
// the library registers the matching addresses in a Bindings registry. Build
// joins the two into a sorted symtab.Table; Validate checks that both sides
// agree before any table is built, so a function declared in a manifest but
// never registered in Go (or the other way round) is reported at startup
// instead of on first use.
//
// Manifests are written in HCL or YAML. Both formats decode into the same
// format-agnostic Library model.
package manifest
