package filesystem

const (
	// TemporaryNamePrefix is the file name prefix used for every
	// intermediate file mutx creates as a sibling of a write target or
	// backup artifact. It deliberately cannot satisfy the lock or backup
	// filename grammars, so housekeeping never classifies a leftover
	// temporary file as either.
	TemporaryNamePrefix = ".mutx-temporary-"
)
