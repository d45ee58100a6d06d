// Package logging provides a small, nil-safe, level-filtered trace sink used
// throughout mutx. Callers obtain a root Logger (typically via
// NewLoggerFromEnvironment) and pass it down to each component; Sublogger
// derives a logger whose output carries a dotted name prefix.
package logging
