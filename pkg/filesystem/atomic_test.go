package filesystem

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomicReplaces(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "file")
	for _, content := range [][]byte{[]byte("first"), []byte("second")} {
		if err := writeFileAtomic(path, content, 0600, nil); err != nil {
			t.Fatal("unable to write file:", err)
		}
		if data, err := os.ReadFile(path); err != nil {
			t.Fatal("unable to read file:", err)
		} else if !bytes.Equal(data, content) {
			t.Error("file contents mismatch:", string(data))
		}
	}
	contents, err := os.ReadDir(directory)
	if err != nil {
		t.Fatal("unable to read directory:", err)
	}
	for _, content := range contents {
		if strings.HasPrefix(content.Name(), temporaryNamePrefix) {
			t.Error("temporary file left behind:", content.Name())
		}
	}
}

func TestWriteFileAtomicMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "file")
	if err := writeFileAtomic(path, nil, 0600, nil); !IsKind(err, ErrorKindNotFound) {
		t.Error("write into missing directory did not fail with not found:", err)
	}
}
