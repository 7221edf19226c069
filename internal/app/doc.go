// Package app assembles symbol tables from manifests on disk. It defines the
// App struct and its configuration, decoupled from any specific entrypoint
// like a CLI or server.
package app
