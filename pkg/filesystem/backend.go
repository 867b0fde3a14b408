package filesystem

// Backend performs native metadata queries. One implementation is compiled
// per platform family and returned by NewNativeBackend. Backends are safe for
// concurrent use.
type Backend interface {
	// Query populates the requested fields for entry. Backends may populate a
	// superset of the requested fields when a native call yields them
	// together. If the entry does not exist, Query succeeds and returns
	// metadata whose existence flag is false with every requested field
	// known.
	Query(entry Entry, fields Fields) (*Metadata, error)
	// QueryByEnumeration populates metadata for entry by enumerating its
	// parent directory. It is used when Query fails with ErrorKindAccessDenied
	// or ErrorKindSharingViolation, since enumeration can succeed where a
	// direct query of a locked object fails.
	QueryByEnumeration(entry Entry, fields Fields) (*Metadata, error)
	// ReadLink returns the raw target of a symbolic link or junction without
	// following it further. The target may be relative to the link's parent.
	ReadLink(entry Entry) (string, error)
	// Identity returns the opaque identity of the object at entry.
	Identity(entry Entry) ([]byte, error)
}
