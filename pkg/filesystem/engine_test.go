package filesystem

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

// mockObjects returns the object set used by mock-based engine tests.
func mockObjects() map[string]*mockObject {
	return map[string]*mockObject{
		"file":      {size: 42, modificationTime: time.Unix(1600000000, 0)},
		"directory": {directory: true},
	}
}

func TestEnginePartialFieldCaching(t *testing.T) {
	backend := newMockBackend(mockObjects())
	engine := NewEngine(WithBackend(backend), WithShortcuts(false))
	info := engine.Info(NewEntry("file"))

	// Query the size.
	metadata, err := info.Fetch(FieldSize)
	if err != nil {
		t.Fatal("unable to fetch size:", err)
	} else if metadata.Size() != 42 {
		t.Error("size mismatch:", metadata.Size(), "!=", 42)
	}

	// Query the modification time, which the first query already yielded.
	metadata, err = info.Fetch(FieldModificationTime)
	if err != nil {
		t.Fatal("unable to fetch modification time:", err)
	} else if !metadata.ModificationTime().Equal(time.Unix(1600000000, 0)) {
		t.Error("modification time mismatch:", metadata.ModificationTime())
	}
	if queries, _ := backend.counts(); queries != 1 {
		t.Error("unexpected query count:", queries, "!=", 1)
	}

	// Refreshing should force a new query.
	info.Refresh()
	if _, err := info.Fetch(FieldSize); err != nil {
		t.Fatal("unable to fetch size after refresh:", err)
	}
	if queries, _ := backend.counts(); queries != 2 {
		t.Error("unexpected query count after refresh:", queries, "!=", 2)
	}
}

func TestEngineEnumerationFallback(t *testing.T) {
	testCases := []ErrorKind{ErrorKindAccessDenied, ErrorKindSharingViolation}
	for _, kind := range testCases {
		backend := newMockBackend(mockObjects())
		backend.queryError = &Error{Kind: kind, Op: "query", Path: "file"}
		engine := NewEngine(WithBackend(backend), WithShortcuts(false))
		metadata, err := engine.Metadata(NewEntry("file"), FieldExists|FieldSize)
		if err != nil {
			t.Fatal("fallback did not recover from", kind, "error:", err)
		}
		if !metadata.Exists() || metadata.Size() != 42 {
			t.Error("fallback metadata incorrect for", kind)
		}
		if _, enumerations := backend.counts(); enumerations != 1 {
			t.Error("unexpected enumeration count for", kind, ":", enumerations)
		}
	}
}

func TestEngineFallbackFailureReturnsOriginalError(t *testing.T) {
	backend := newMockBackend(mockObjects())
	backend.queryError = &Error{Kind: ErrorKindSharingViolation, Op: "query", Path: "file"}
	backend.enumerationError = &Error{Kind: ErrorKindAccessDenied, Op: "find", Path: "file"}
	engine := NewEngine(WithBackend(backend), WithShortcuts(false))
	if _, err := engine.Metadata(NewEntry("file"), FieldExists); !IsKind(err, ErrorKindSharingViolation) {
		t.Error("original error not returned:", err)
	}
}

func TestEngineFallbackMissingFieldsReturnsOriginalError(t *testing.T) {
	backend := newMockBackend(mockObjects())
	backend.queryError = &Error{Kind: ErrorKindAccessDenied, Op: "query", Path: "file"}
	engine := NewEngine(WithBackend(backend), WithShortcuts(false))
	metadata, err := engine.Metadata(NewEntry("file"), FieldExists|FieldModificationTime)
	if !IsKind(err, ErrorKindAccessDenied) {
		t.Error("incomplete fallback did not return original error:", err)
	}
	if metadata != nil {
		t.Error("incomplete fallback returned metadata")
	}
}

// deniedBackend wraps a backend and fails every direct query with an access
// denial, forcing the enumeration fallback.
type deniedBackend struct {
	Backend
}

// Query implements Backend.Query.
func (b deniedBackend) Query(entry Entry, _ Fields) (*Metadata, error) {
	return nil, &Error{Kind: ErrorKindAccessDenied, Op: "query", Path: entry.Path()}
}

// newDeniedFile creates a file with the specified contents and returns it
// along with an engine whose direct queries are all denied.
func newDeniedFile(t *testing.T, contents []byte) (Entry, *Engine) {
	path := filepath.Join(t.TempDir(), "locked.txt")
	if err := os.WriteFile(path, contents, 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}
	backend := deniedBackend{NewNativeBackend(nil)}
	return NewEntry(path), NewEngine(WithBackend(backend), WithShortcuts(false))
}

func TestEngineNativeFallbackTypeQuery(t *testing.T) {
	entry, engine := newDeniedFile(t, []byte("contents"))
	metadata, err := engine.Metadata(entry, FieldExists|FieldType|FieldLinkType)
	if err != nil {
		t.Fatal("unable to query through enumeration:", err)
	}
	if !metadata.Exists() || metadata.Type() != FileTypeFile || metadata.LinkKind() != LinkKindNone {
		t.Error("enumeration metadata incorrect")
	}
}

func TestEngineNoFallbackForOtherErrors(t *testing.T) {
	backend := newMockBackend(mockObjects())
	backend.queryError = &Error{Kind: ErrorKindInvalidPath, Op: "query", Path: "file"}
	engine := NewEngine(WithBackend(backend), WithShortcuts(false))
	if _, err := engine.Metadata(NewEntry("file"), FieldExists); !IsKind(err, ErrorKindInvalidPath) {
		t.Error("error not propagated unchanged:", err)
	}
	if _, enumerations := backend.counts(); enumerations != 0 {
		t.Error("enumeration fallback used for invalid path")
	}
}

func TestEngineNonexistent(t *testing.T) {
	backend := newMockBackend(mockObjects())
	engine := NewEngine(WithBackend(backend), WithShortcuts(false))
	missing := NewEntry("missing")

	// Existence queries succeed.
	metadata, err := engine.Metadata(missing, FieldExists)
	if err != nil {
		t.Fatal("existence query failed:", err)
	} else if metadata.Exists() {
		t.Error("missing path reported as existing")
	}

	// Other fields fail, but still yield metadata.
	metadata, err = engine.Metadata(missing, FieldSize)
	if !IsKind(err, ErrorKindNotFound) {
		t.Error("size query on missing path did not fail with not found:", err)
	}
	if metadata == nil || !metadata.Has(FieldSize|FieldExists) {
		t.Error("size query on missing path did not mark fields known")
	}
}

func TestEngineCachedMetadata(t *testing.T) {
	backend := newMockBackend(mockObjects())
	engine := NewEngine(WithBackend(backend), WithShortcuts(false))
	cache := NewCache(8)
	entry := NewEntry("file")

	if _, err := engine.CachedMetadata(cache, entry, FieldSize); err != nil {
		t.Fatal("unable to query size:", err)
	}
	metadata, err := engine.CachedMetadata(cache, entry, FieldType|FieldModificationTime)
	if err != nil {
		t.Fatal("unable to query type:", err)
	} else if metadata.Type() != FileTypeFile {
		t.Error("unexpected type:", metadata.Type())
	}
	if queries, _ := backend.counts(); queries != 1 {
		t.Error("unexpected query count:", queries, "!=", 1)
	}
	if cache.Len() != 1 {
		t.Error("unexpected cache length:", cache.Len())
	}

	// Invalidation forces a new query.
	cache.Invalidate(entry)
	if _, err := engine.CachedMetadata(cache, entry, FieldSize); err != nil {
		t.Fatal("unable to query size after invalidation:", err)
	}
	if queries, _ := backend.counts(); queries != 2 {
		t.Error("unexpected query count after invalidation:", queries, "!=", 2)
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Error("cache not empty after clear")
	}
}

func TestEngineCacheEviction(t *testing.T) {
	backend := newMockBackend(mockObjects())
	engine := NewEngine(WithBackend(backend), WithShortcuts(false))
	cache := NewCache(1)
	if _, err := engine.CachedMetadata(cache, NewEntry("file"), FieldSize); err != nil {
		t.Fatal("unable to query file:", err)
	}
	if _, err := engine.CachedMetadata(cache, NewEntry("directory"), FieldSize); err != nil {
		t.Fatal("unable to query directory:", err)
	}
	if _, err := engine.CachedMetadata(cache, NewEntry("file"), FieldSize); err != nil {
		t.Fatal("unable to requery file:", err)
	}
	if queries, _ := backend.counts(); queries != 3 {
		t.Error("evicted entry not requeried:", queries, "!=", 3)
	}
}

func TestEngineIdentityEmptyOnFailure(t *testing.T) {
	engine := NewEngine(WithBackend(newMockBackend(mockObjects())))
	if identity := engine.Identity(NewEntry("missing")); len(identity) != 0 {
		t.Error("identity of missing object is non-empty")
	}
	if identity := engine.Identity(NewEntry("file")); len(identity) == 0 {
		t.Error("identity of existing object is empty")
	}
}

func TestEngineEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}
	metadata, err := NewEngine().Metadata(NewEntry(path), FieldSize)
	if err != nil {
		t.Fatal("unable to query metadata:", err)
	}
	if metadata.Size() != 0 {
		t.Error("empty file has non-zero size:", metadata.Size())
	}
	if !metadata.Has(FieldSize | FieldType | FieldModificationTime) {
		t.Error("single query did not yield size, type, and times:", metadata.Known())
	}
	if metadata.Type() != FileTypeFile {
		t.Error("unexpected file type:", metadata.Type())
	}
}

func TestEngineIdentityStableAcrossRename(t *testing.T) {
	directory := t.TempDir()
	original := filepath.Join(directory, uuid.New().String())
	renamed := filepath.Join(directory, uuid.New().String())
	if err := os.WriteFile(original, []byte("content"), 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}

	engine := NewEngine()
	before := engine.Identity(NewEntry(original))
	if len(before) == 0 {
		t.Fatal("unable to compute identity")
	}
	if err := os.Rename(original, renamed); err != nil {
		t.Fatal("unable to rename file:", err)
	}
	after := engine.Identity(NewEntry(renamed))
	if !bytes.Equal(before, after) {
		t.Error("identity changed across rename")
	}
	if err := os.Remove(renamed); err != nil {
		t.Fatal("unable to remove file:", err)
	}
	if identity := engine.Identity(NewEntry(renamed)); len(identity) != 0 {
		t.Error("identity of removed file is non-empty")
	}
}

func TestEngineFileMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, []byte("12345"), 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}
	file, err := os.Open(path)
	if err != nil {
		t.Fatal("unable to open file:", err)
	}
	defer file.Close()

	engine := NewEngine()
	metadata, err := engine.FileMetadata(file, FieldStat|FieldIdentity)
	if err != nil {
		t.Fatal("unable to query file metadata:", err)
	}
	if metadata.Size() != 5 {
		t.Error("size mismatch:", metadata.Size(), "!=", 5)
	}
	if metadata.LinkKind() != LinkKindNone {
		t.Error("open file reported as link")
	}
	if !bytes.Equal(metadata.Identity(), engine.Identity(NewEntry(path))) {
		t.Error("handle identity differs from path identity")
	}
}

func TestEngineShortcutResolution(t *testing.T) {
	directory := t.TempDir()
	target := filepath.Join(directory, "target.txt")
	if err := os.WriteFile(target, []byte("shortcut target"), 0600); err != nil {
		t.Fatal("unable to create target:", err)
	}
	link := NewEntry(filepath.Join(directory, "link.lnk"))
	engine := NewEngine(WithShortcuts(true))
	if err := engine.CreateShortcut(link, NewEntry(target)); err != nil {
		t.Fatal("unable to create shortcut:", err)
	}

	// Classification.
	if kind, err := engine.LinkKind(link); err != nil {
		t.Fatal("unable to classify shortcut:", err)
	} else if kind != LinkKindShortcut {
		t.Error("shortcut misclassified:", kind)
	}

	// Target resolution.
	if resolved, err := engine.LinkTarget(link); err != nil {
		t.Fatal("unable to resolve shortcut:", err)
	} else if resolved.Path() != target {
		t.Error("shortcut target mismatch:", resolved.Path(), "!=", target)
	}

	// Metadata describes the target.
	metadata, err := engine.Metadata(link, FieldExists|FieldSize|FieldLinkType|FieldAttributes)
	if err != nil {
		t.Fatal("unable to query shortcut metadata:", err)
	}
	if !metadata.Exists() || metadata.Size() != uint64(len("shortcut target")) {
		t.Error("shortcut metadata does not describe target")
	}
	if metadata.LinkKind() != LinkKindShortcut {
		t.Error("shortcut metadata has wrong link kind:", metadata.LinkKind())
	}
	if metadata.Attributes()&AttributeShortcut == 0 {
		t.Error("shortcut attribute not set")
	}
}

func TestEngineCorruptShortcut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.lnk")
	if err := os.WriteFile(path, []byte("not a shell link"), 0600); err != nil {
		t.Fatal("unable to create shortcut:", err)
	}
	link := NewEntry(path)
	engine := NewEngine(WithShortcuts(true))

	metadata, err := engine.Metadata(link, FieldExists|FieldLinkType)
	if err != nil {
		t.Fatal("unable to query corrupt shortcut:", err)
	}
	if metadata.Exists() {
		t.Error("corrupt shortcut reported as existing")
	}
	if metadata.LinkKind() != LinkKindShortcut {
		t.Error("corrupt shortcut not classified as shortcut")
	}
	if _, err := engine.LinkTarget(link); !IsKind(err, ErrorKindLinkResolutionFailed) {
		t.Error("corrupt shortcut resolution did not fail with link resolution error:", err)
	}
}

func TestEngineShortcutNamedDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bar.lnk")
	if err := os.Mkdir(path, 0700); err != nil {
		t.Fatal("unable to create directory:", err)
	}
	entry := NewEntry(path)
	engine := NewEngine(WithShortcuts(true))

	if kind, err := engine.LinkKind(entry); err != nil {
		t.Fatal("unable to classify directory:", err)
	} else if kind != LinkKindNone {
		t.Error("directory named like a shortcut classified as", kind)
	}
	metadata, err := engine.Metadata(entry, FieldType|FieldLinkType)
	if err != nil {
		t.Fatal("unable to query directory:", err)
	}
	if !metadata.IsDirectory() || metadata.LinkKind() != LinkKindNone {
		t.Error("directory named like a shortcut has incorrect metadata")
	}
}

func TestEngineCanonicalizeNonexistent(t *testing.T) {
	engine := NewEngine()
	path := filepath.Join(t.TempDir(), "missing", "child")
	canonical, err := engine.Canonicalize(NewEntry(path))
	if err != nil {
		t.Fatal("canonicalization of missing path failed:", err)
	}
	if canonical.Path() != NewEntry(path).Absolute().Path() {
		t.Error("missing path not returned in absolute form:", canonical.Path())
	}
}

func TestEngineCanonicalizeIdempotent(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "file")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}
	engine := NewEngine()
	first, err := engine.Canonicalize(NewEntry(path))
	if err != nil {
		t.Fatal("unable to canonicalize path:", err)
	}
	second, err := engine.Canonicalize(first)
	if err != nil {
		t.Fatal("unable to canonicalize canonical path:", err)
	}
	if first.Path() != second.Path() {
		t.Error("canonicalization not idempotent:", first.Path(), "!=", second.Path())
	}
}

func TestIteratorFiltersAndLifecycle(t *testing.T) {
	directory := t.TempDir()
	for _, name := range []string{"a.txt", "b.go", "c.TXT"} {
		if err := os.WriteFile(filepath.Join(directory, name), nil, 0600); err != nil {
			t.Fatal("unable to create file:", err)
		}
	}
	if err := os.Mkdir(filepath.Join(directory, "sub"), 0700); err != nil {
		t.Fatal("unable to create directory:", err)
	}

	engine := NewEngine()
	iterator, err := engine.Iterate(NewEntry(directory), IteratorOptions{NameFilters: []string{"*.txt"}})
	if err != nil {
		t.Fatal("unable to create iterator:", err)
	}
	names := make(map[string]bool)
	for {
		child, err := iterator.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatal("iteration failed:", err)
		}
		names[child.Entry.Name()] = true
		if !child.Metadata.Exists() || child.Metadata.Type() != FileTypeFile {
			t.Error("unexpected metadata for", child.Entry.Name())
		}
	}
	if !names["a.txt"] || names["b.go"] || names["sub"] {
		t.Error("unexpected filtered names:", names)
	}
	if caseInsensitiveNames != names["c.TXT"] {
		t.Error("case sensitivity of name filters incorrect")
	}

	// Closing after exhaustion is permitted, as is closing repeatedly.
	if err := iterator.Close(); err != nil {
		t.Error("close after exhaustion failed:", err)
	}
	if err := iterator.Close(); err != nil {
		t.Error("repeated close failed:", err)
	}

	// Advancing after completion is a contract violation.
	defer func() {
		if recover() == nil {
			t.Error("advancing a completed iterator did not panic")
		}
	}()
	iterator.Next()
}

func TestIteratorInvalidFilter(t *testing.T) {
	if _, err := NewEngine().Iterate(NewEntry(t.TempDir()), IteratorOptions{NameFilters: []string{"[a-"}}); err == nil {
		t.Error("invalid filter accepted")
	}
}

func TestIteratorMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing")
	if _, err := NewEngine().Iterate(NewEntry(path), IteratorOptions{}); !IsKind(err, ErrorKindNotFound) {
		t.Error("iteration of missing directory did not fail with not found:", err)
	}
}

func TestIteratorDrives(t *testing.T) {
	iterator, err := NewEngine().Iterate(NewEntry(""), IteratorOptions{NameFilters: []string{"nothing"}})
	if err != nil {
		t.Fatal("unable to enumerate drives:", err)
	}
	children, err := iterator.Collect()
	if err != nil {
		t.Fatal("drive enumeration failed:", err)
	}
	if len(children) == 0 {
		t.Fatal("no drives enumerated")
	}
	for _, child := range children {
		if !child.Entry.IsDriveRoot() {
			t.Error("drive entry is not a drive root:", child.Entry)
		}
		if child.Metadata.Attributes()&AttributeDriveRoot == 0 {
			t.Error("drive entry lacks drive root attribute:", child.Entry)
		}
		if _, ok := child.Metadata.Drive(); !ok {
			t.Error("drive entry lacks drive information:", child.Entry)
		}
	}
}

func TestEngineReadDirectory(t *testing.T) {
	directory := t.TempDir()
	for _, name := range []string{"one", "two", "three"} {
		if err := os.WriteFile(filepath.Join(directory, name), []byte(name), 0600); err != nil {
			t.Fatal("unable to create file:", err)
		}
	}
	children, err := NewEngine().ReadDirectory(NewEntry(directory))
	if err != nil {
		t.Fatal("unable to read directory:", err)
	}
	if len(children) != 3 {
		t.Fatal("unexpected child count:", len(children))
	}
	for _, child := range children {
		if child.Metadata.Size() != uint64(len(child.Entry.Name())) {
			t.Error("size mismatch for", child.Entry.Name())
		}
	}
}
