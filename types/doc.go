// Package types contains the public leaf types and interfaces of the lapse
// library: subjects, announcement and command messages, acknowledgement
// results, the controller state enum, and the pluggable Logger, Clock and
// MetricsCollector interfaces.
//
// The package exists so that internal packages can share these definitions
// without importing the root lapse package (which would create an import
// cycle). The root package re-exports the commonly used types via aliases.
package types
