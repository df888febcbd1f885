package source

// FileID identifies a file inside a FileSet.
type FileID uint32

// LineCol is a 1-based line/column position.
type LineCol struct {
	Line uint32
	Col  uint32
}

// FileFlags records normalizations applied while loading a file.
type FileFlags uint8

const (
	// FileVirtual marks in-memory files (tests, stdin, generated).
	FileVirtual FileFlags = 1 << iota
	// FileHadBOM is set when a UTF-8 BOM was stripped.
	FileHadBOM
	// FileNormalizedEOL is set when CR or CRLF line endings were rewritten to LF.
	FileNormalizedEOL
)

// File is one source file: normalized content plus the line index used
// to resolve byte offsets into line/column pairs.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // byte offsets of every '\n'
	Hash    [32]byte
	Flags   FileFlags
}
