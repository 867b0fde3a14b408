package filesystem

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mutagen-io/fsmeta/pkg/filesystem/shelllink"
	"github.com/mutagen-io/fsmeta/pkg/logging"
	"github.com/mutagen-io/fsmeta/pkg/state"
)

// maximumLinkHops is the number of link resolutions permitted during a single
// canonicalization, shared across all path components.
const maximumLinkHops = 32

// nonexistentFields are the fields that remain meaningful for a path that
// doesn't exist. Requesting any other field for such a path yields an error
// of kind ErrorKindNotFound.
const nonexistentFields = FieldExists | FieldLinkType | FieldAttributes

// Engine is the filesystem metadata facade. It routes queries to a backend,
// performs the enumeration fallback for locked objects, redirects shortcut
// metadata to shortcut targets, and canonicalizes paths. An Engine holds no
// metadata cache of its own and is safe for concurrent use.
type Engine struct {
	// logger is the engine logger.
	logger *logging.Logger
	// backend is the native query backend.
	backend Backend
	// shortcuts indicates whether or not .lnk files are treated as links.
	shortcuts bool
	// resolver is the link resolver.
	resolver *LinkResolver
	// fallbackUsed tracks whether or not the enumeration fallback has fired.
	fallbackUsed state.Marker
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithBackend overrides the native backend.
func WithBackend(backend Backend) Option {
	return func(e *Engine) {
		e.backend = backend
	}
}

// WithShortcuts controls whether or not shell shortcut files are treated as
// links. It is enabled by default on Windows.
func WithShortcuts(enabled bool) Option {
	return func(e *Engine) {
		e.shortcuts = enabled
	}
}

// NewEngine creates a new engine.
func NewEngine(options ...Option) *Engine {
	engine := &Engine{shortcuts: shortcutsByDefault}
	for _, option := range options {
		option(engine)
	}
	if engine.backend == nil {
		engine.backend = NewNativeBackend(engine.logger.Sublogger("backend"))
	}
	engine.resolver = NewLinkResolver(engine.backend, engine.shortcuts, engine.logger)
	return engine
}

// Backend returns the engine's backend.
func (e *Engine) Backend() Backend {
	return e.backend
}

// Resolver returns the engine's link resolver.
func (e *Engine) Resolver() *LinkResolver {
	return e.resolver
}

// queryNative queries the backend, falling back to directory enumeration if
// the object can't be accessed directly. If enumeration finds the object but
// can't supply every requested field, the original error is returned.
func (e *Engine) queryNative(entry Entry, fields Fields) (*Metadata, error) {
	metadata, err := e.backend.Query(entry, fields)
	if err == nil {
		return metadata, nil
	} else if kind := KindOf(err); kind != ErrorKindAccessDenied && kind != ErrorKindSharingViolation {
		return nil, err
	}

	if e.fallbackUsed.MarkFirst() {
		e.logger.Debugf("Using enumeration fallback for %s (%v)", entry, err)
	} else {
		e.logger.Tracef("Using enumeration fallback for %s", entry)
	}
	fallback, fallbackErr := e.backend.QueryByEnumeration(entry, fields)
	if fallbackErr != nil {
		e.logger.Debugf("Enumeration fallback failed for %s: %v", entry, fallbackErr)
		return nil, err
	} else if missing := fields &^ fallback.Known(); missing != 0 {
		e.logger.Debugf("Enumeration fallback for %s lacks %s", entry, missing)
		return nil, err
	}
	return fallback, nil
}

// queryShortcut queries a path with the shortcut extension. If the path names
// a shortcut file, the result describes the shortcut's target and carries
// the shortcut link kind and attribute. A shortcut whose target can't be read
// is reported as nonexistent.
func (e *Engine) queryShortcut(entry Entry, fields Fields) (*Metadata, error) {
	own, err := e.queryNative(entry, fields|FieldExists|FieldType|FieldLinkType)
	if err != nil {
		return nil, err
	} else if !own.Exists() || own.IsDirectory() || own.LinkKind() != LinkKindNone {
		return own, nil
	}

	var result *Metadata
	if target, err := e.resolver.ResolveOneHop(entry, LinkKindShortcut); err != nil {
		e.logger.Debugf("Unable to read shortcut %s: %v", entry, err)
		result = &Metadata{}
		result.markNonexistent(fields)
	} else if result, err = e.queryNative(target, fields); err != nil {
		return nil, err
	}
	result.SetLinkKind(LinkKindShortcut)
	var attributes Attributes
	if result.Has(FieldAttributes) {
		attributes = result.Attributes()
	}
	result.SetAttributes(attributes | AttributeShortcut)
	return result, nil
}

// query performs a metadata query with shortcut redirection.
func (e *Engine) query(entry Entry, fields Fields) (*Metadata, error) {
	if e.shortcuts && entry.hasShortcutSuffix() {
		return e.queryShortcut(entry, fields)
	}
	return e.queryNative(entry, fields)
}

// fill ensures that metadata knows the requested fields, querying only for
// those that are missing.
func (e *Engine) fill(entry Entry, metadata *Metadata, fields Fields) error {
	if missing := fields &^ metadata.Known(); missing != 0 {
		queried, err := e.query(entry, missing)
		if err != nil {
			return err
		}
		metadata.Merge(queried)
	}
	if metadata.Has(FieldExists) && !metadata.Exists() && fields&^nonexistentFields != 0 {
		return &Error{Kind: ErrorKindNotFound, Op: "query", Path: entry.Path()}
	}
	return nil
}

// Metadata queries the requested fields for entry. If the entry doesn't exist
// and fields other than existence, link kind, or attributes were requested,
// the partially populated metadata is returned together with an error of kind
// ErrorKindNotFound.
func (e *Engine) Metadata(entry Entry, fields Fields) (*Metadata, error) {
	metadata := &Metadata{}
	if err := e.fill(entry, metadata, fields); err != nil {
		if IsKind(err, ErrorKindNotFound) && metadata.Has(FieldExists) {
			return metadata, err
		}
		return nil, err
	}
	return metadata, nil
}

// Info is a caller-owned metadata record for a single entry. Successive
// Fetch calls only query fields that are not yet known. An Info is not safe
// for concurrent use.
type Info struct {
	// engine is the engine used for queries.
	engine *Engine
	// entry is the described entry.
	entry Entry
	// metadata is the accumulated metadata.
	metadata Metadata
}

// Info creates a new, empty record for entry.
func (e *Engine) Info(entry Entry) *Info {
	return &Info{engine: e, entry: entry}
}

// Entry returns the described entry.
func (i *Info) Entry() Entry {
	return i.entry
}

// Fetch ensures that the requested fields are known and returns the record's
// metadata. The returned metadata remains owned by the record.
func (i *Info) Fetch(fields Fields) (*Metadata, error) {
	err := i.engine.fill(i.entry, &i.metadata, fields)
	return &i.metadata, err
}

// Refresh discards all known fields.
func (i *Info) Refresh() {
	i.metadata = Metadata{}
}

// LinkKind classifies entry.
func (e *Engine) LinkKind(entry Entry) (LinkKind, error) {
	return e.resolver.Classify(entry, nil)
}

// LinkTarget returns the immediate target of a link. It returns an error of
// kind ErrorKindLinkResolutionFailed if entry is not a link.
func (e *Engine) LinkTarget(entry Entry) (Entry, error) {
	kind, err := e.resolver.Classify(entry, nil)
	if err != nil {
		return Entry{}, err
	}
	return e.resolver.ResolveOneHop(entry, kind)
}

// splitRoot splits an absolute path into its root (including a trailing
// separator) and its non-empty components.
func splitRoot(path string) (string, []string) {
	volume := filepath.VolumeName(path)
	components := strings.FieldsFunc(path[len(volume):], func(r rune) bool {
		return strings.ContainsRune(separators, r)
	})
	return volume + string(os.PathSeparator), components
}

// joinRemaining appends unresolved components to a partially resolved path.
func joinRemaining(base Entry, remaining []string) Entry {
	if len(remaining) == 0 {
		return base
	}
	return NewEntry(filepath.Join(append([]string{base.Path()}, remaining...)...))
}

// Canonicalize computes the absolute path of entry with every link resolved
// and every . and .. element removed. A path that doesn't exist (and isn't a
// dangling link) is returned in absolute form without error. Resolution stops
// at the first nonexistent component, whose remainder is appended lexically.
// Link resolution in all components shares a fixed hop budget; exhausting it
// returns the last path reached with an error of kind
// ErrorKindLinkResolutionFailed.
func (e *Engine) Canonicalize(entry Entry) (Entry, error) {
	absolute := entry.Absolute()
	if absolute.IsEmpty() {
		return absolute, nil
	} else if absolute.IsRelative() {
		return absolute, newKindError(ErrorKindInvalidPath, "canonicalize", entry.Path(), "unable to compute absolute path")
	}

	// Avoid walking paths that don't exist.
	metadata, err := e.query(absolute, FieldExists|FieldLinkType)
	if err != nil {
		return absolute, err
	} else if !metadata.Exists() && metadata.LinkKind() == LinkKindNone {
		return absolute, nil
	}

	// Walk the components, expanding links as they're encountered.
	root, queue := splitRoot(absolute.Path())
	current := NewEntry(root)
	var hops int
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if name == "." {
			continue
		} else if name == ".." {
			current = current.Parent()
			continue
		}

		next := current.Join(name)
		metadata, err := e.query(next, FieldExists|FieldLinkType)
		if err != nil {
			return joinRemaining(next, queue), err
		}
		kind := metadata.LinkKind()
		if kind == LinkKindNone {
			if !metadata.Exists() {
				return joinRemaining(next, queue), nil
			}
			current = next
			continue
		}

		if hops++; hops > maximumLinkHops {
			return joinRemaining(next, queue), newKindError(ErrorKindLinkResolutionFailed, "canonicalize", entry.Path(), "too many levels of links")
		}
		target, err := e.resolver.ResolveOneHop(next, kind)
		if err != nil {
			return joinRemaining(next, queue), err
		}
		if target.IsRelative() {
			target = target.Absolute()
		}
		targetRoot, targetComponents := splitRoot(target.Path())
		current = NewEntry(targetRoot)
		queue = append(targetComponents, queue...)
	}
	return current, nil
}

// Identity returns the opaque identity of the object at entry, following
// links. The result is empty if the object can't be opened.
func (e *Engine) Identity(entry Entry) []byte {
	identity, err := e.backend.Identity(entry)
	if err != nil {
		e.logger.Debugf("Unable to compute identity for %s: %v", entry, err)
		return nil
	}
	return identity
}

// OwnerKind selects between the owning user and group of an object.
type OwnerKind uint8

const (
	// OwnerUser selects the owning user.
	OwnerUser OwnerKind = iota
	// OwnerGroup selects the owning group.
	OwnerGroup
)

// Owner returns the account name of the owning user or group of entry. On
// Windows the name is only available when permission lookup is enabled;
// otherwise the result is empty.
func (e *Engine) Owner(entry Entry, kind OwnerKind) (string, error) {
	metadata, err := e.Metadata(entry, FieldOwnership)
	if err != nil {
		return "", err
	}
	identifier := metadata.OwnerID()
	if kind == OwnerGroup {
		identifier = metadata.GroupID()
	}
	if identifier == "" {
		return "", nil
	}
	return lookupOwnerName(identifier, kind)
}

// SetPermissions applies permissions to the object at entry. On Windows
// without permission lookup, only the owner write bit is honored through the
// read-only attribute.
func (e *Engine) SetPermissions(entry Entry, permissions Permissions) error {
	return setPermissions(entry.Native(), permissions)
}

// FileMetadata queries metadata through an open file. Handle-based queries
// can't observe links, so the link kind is always LinkKindNone.
func (e *Engine) FileMetadata(file *os.File, fields Fields) (*Metadata, error) {
	return fileMetadata(file, fields, e.logger)
}

// Drives returns the roots of the filesystem: the single root on POSIX
// systems, and every logical and mapped network drive on Windows.
func (e *Engine) Drives() ([]Child, error) {
	return drives(e.backend, e.logger)
}

// ListShares lists the disk shares exported by a server. It is only supported
// on Windows.
func (e *Engine) ListShares(server string) ([]string, error) {
	return shares(server, e.logger)
}

// ReadDirectory reads every child of a directory together with its
// metadata. Unlike Iterate, it reads the directory fully before returning.
func (e *Engine) ReadDirectory(entry Entry) ([]Child, error) {
	return readDirectory(entry, e.logger)
}

// CreateShortcut writes a shell shortcut file at link pointing to target. The
// target is stored in absolute form. Existing files at link are replaced
// atomically.
func (e *Engine) CreateShortcut(link, target Entry) error {
	data, err := shelllink.New(target.Absolute().Path()).MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "unable to encode shortcut")
	}
	return writeFileAtomic(link.Native(), data, 0666, e.logger)
}
