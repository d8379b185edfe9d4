package source

// FileID is the index of a file inside its FileSet; 0 is never assigned.
type FileID uint32

// FileFlags records how a file's content was obtained and normalised.
type FileFlags uint8

const (
	FileVirtual        FileFlags = 1 << iota // из памяти: тесты, фаззинг, stdin
	FileHadBOM                               // UTF-8 BOM был срезан
	FileNormalizedCRLF                       // \r\n заменены на \n
)

func (f FileFlags) Has(flag FileFlags) bool { return f&flag == flag }

// File is one loaded .vw source. Content is already normalised; Hash is
// taken over the normalised bytes and keys the result cache.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based position. Col counts bytes, not runes.
type LineCol struct {
	Line uint32
	Col  uint32
}
