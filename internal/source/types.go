package source

import (
	"archive/zip"
	"io/fs"
	"strings"
)

// Entry is one archive member with the top-level wrapper directory removed.
type Entry struct {
	Path string // slash-separated, relative to the repository root
	file *zip.File
}

// IsDir reports whether the entry is a directory marker.
func (e Entry) IsDir() bool {
	return strings.HasSuffix(e.file.Name, "/") || e.file.Mode().IsDir()
}

// Mode returns the file mode recorded in the archive.
func (e Entry) Mode() fs.FileMode {
	return e.file.Mode()
}

// Size returns the declared uncompressed size.
func (e Entry) Size() uint64 {
	return e.file.UncompressedSize64
}
