package source

import (
	"archive/zip"
	"bytes"
	"io/fs"
	"sort"
	"testing"
)

// testFile describes one archive member for buildZip.
type testFile struct {
	Name    string
	Content string
	Mode    fs.FileMode
}

// buildZip creates a zip whose members are the given files; names are used
// verbatim so tests can include wrapper directories and hostile paths.
func buildZip(t *testing.T, files []testFile) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		hdr := &zip.FileHeader{Name: f.Name, Method: zip.Deflate}
		mode := f.Mode
		if mode == 0 {
			mode = 0644
			if len(f.Name) > 0 && f.Name[len(f.Name)-1] == '/' {
				mode = fs.ModeDir | 0755
			}
		}
		hdr.SetMode(mode)

		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("CreateHeader(%q): %v", f.Name, err)
		}
		if mode.IsRegular() || mode&fs.ModeSymlink != 0 {
			if _, err := w.Write([]byte(f.Content)); err != nil {
				t.Fatalf("Write(%q): %v", f.Name, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// repoZip wraps files (path -> content) in a GitHub-style top-level directory,
// adding directory entries the way codeload does.
func repoZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	const wrapper = "agentic-dev-kit-main/"
	dirs := map[string]bool{wrapper: true}
	var names []string
	for name := range files {
		names = append(names, name)
		for i := 0; i < len(name); i++ {
			if name[i] == '/' {
				dirs[wrapper+name[:i+1]] = true
			}
		}
	}
	sort.Strings(names)

	var dirNames []string
	for d := range dirs {
		dirNames = append(dirNames, d)
	}
	sort.Strings(dirNames)

	var entries []testFile
	for _, d := range dirNames {
		entries = append(entries, testFile{Name: d})
	}
	for _, name := range names {
		entries = append(entries, testFile{Name: wrapper + name, Content: files[name]})
	}
	return buildZip(t, entries)
}
