// Package common holds identifiers shared across reviewnet components.
package common

// PackageName identifies this module in logs and metrics namespaces.
const PackageName = "reviewnet"

// Version is set at build time via -ldflags.
var Version = "dev"
