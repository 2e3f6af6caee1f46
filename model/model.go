package model

// FileReference identifies one selected file. Path is emitted verbatim.
type FileReference struct {
	Path string
}

// Summary holds the results of an operation for display.
type Summary struct {
	Copied      []string
	Bytes       int
	Destination string
	Message     string
}
