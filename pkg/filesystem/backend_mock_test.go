package filesystem

import (
	"sync"
	"time"
)

// mockObject is an object served by mockBackend.
type mockObject struct {
	// directory indicates a directory.
	directory bool
	// size is the object size.
	size uint64
	// modificationTime is the object modification time.
	modificationTime time.Time
}

// mockBackend is an in-memory Backend that counts native calls.
type mockBackend struct {
	// lock guards the counters.
	lock sync.Mutex
	// objects maps paths to objects.
	objects map[string]*mockObject
	// queryError, if non-nil, is returned by every Query call.
	queryError error
	// enumerationError, if non-nil, is returned by every QueryByEnumeration
	// call.
	enumerationError error
	// queries counts Query calls.
	queries int
	// enumerations counts QueryByEnumeration calls.
	enumerations int
}

// newMockBackend creates a mock backend serving the specified objects.
func newMockBackend(objects map[string]*mockObject) *mockBackend {
	return &mockBackend{objects: objects}
}

// counts returns the query and enumeration call counts.
func (b *mockBackend) counts() (int, int) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.queries, b.enumerations
}

// Query implements Backend.Query. Like a stat call, it populates every stat
// field regardless of the requested fields.
func (b *mockBackend) Query(entry Entry, fields Fields) (*Metadata, error) {
	b.lock.Lock()
	b.queries++
	b.lock.Unlock()
	if b.queryError != nil {
		return nil, b.queryError
	}
	metadata := &Metadata{}
	metadata.SetLinkKind(LinkKindNone)
	object, ok := b.objects[entry.Path()]
	if !ok {
		metadata.markNonexistent(fields)
		return metadata, nil
	}
	metadata.SetExists(true)
	if object.directory {
		metadata.SetType(FileTypeDirectory)
	} else {
		metadata.SetType(FileTypeFile)
	}
	metadata.SetSize(object.size)
	metadata.SetTimes(object.modificationTime, object.modificationTime, object.modificationTime)
	metadata.SetAttributes(0)
	return metadata, nil
}

// QueryByEnumeration implements Backend.QueryByEnumeration.
func (b *mockBackend) QueryByEnumeration(entry Entry, fields Fields) (*Metadata, error) {
	b.lock.Lock()
	b.enumerations++
	b.lock.Unlock()
	if b.enumerationError != nil {
		return nil, b.enumerationError
	}
	metadata := &Metadata{}
	metadata.SetLinkKind(LinkKindNone)
	object, ok := b.objects[entry.Path()]
	if !ok {
		metadata.markNonexistent(fields)
		return metadata, nil
	}
	metadata.SetExists(true)
	metadata.SetType(FileTypeFile)
	metadata.SetSize(object.size)
	return metadata, nil
}

// ReadLink implements Backend.ReadLink. The mock serves no links.
func (b *mockBackend) ReadLink(entry Entry) (string, error) {
	return "", newKindError(ErrorKindLinkResolutionFailed, "readlink", entry.Path(), "not a link")
}

// Identity implements Backend.Identity.
func (b *mockBackend) Identity(entry Entry) ([]byte, error) {
	if _, ok := b.objects[entry.Path()]; !ok {
		return nil, newKindError(ErrorKindNotFound, "identity", entry.Path(), "missing")
	}
	return []byte(entry.Path()), nil
}
