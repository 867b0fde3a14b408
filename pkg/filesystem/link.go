package filesystem

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mutagen-io/fsmeta/pkg/filesystem/shelllink"
	"github.com/mutagen-io/fsmeta/pkg/logging"
	"github.com/mutagen-io/fsmeta/pkg/must"
)

// maximumShortcutSize is the largest shortcut file that will be parsed.
// Shell links are typically a few kilobytes.
const maximumShortcutSize = 1 << 20

// LinkResolver classifies links and resolves them one hop at a time. It never
// follows chains itself, leaving loop prevention to its caller.
type LinkResolver struct {
	// backend is the backend used for classification and link reads.
	backend Backend
	// shortcuts indicates whether or not shell shortcut files are treated as
	// links.
	shortcuts bool
	// logger is the resolver logger.
	logger *logging.Logger
}

// NewLinkResolver creates a new link resolver on top of a backend. If
// shortcuts is true, files with the .lnk extension are treated as links.
func NewLinkResolver(backend Backend, shortcuts bool, logger *logging.Logger) *LinkResolver {
	return &LinkResolver{
		backend:   backend,
		shortcuts: shortcuts,
		logger:    logger,
	}
}

// Classify determines the link kind of entry. If metadata is non-nil and
// already knows the link kind, no query is performed; otherwise the result is
// recorded in metadata. Shortcut detection requires both the .lnk extension
// and that the named object is not a directory.
func (r *LinkResolver) Classify(entry Entry, metadata *Metadata) (LinkKind, error) {
	if metadata != nil && metadata.Has(FieldLinkType) {
		return metadata.LinkKind(), nil
	}

	// Query the path itself.
	candidate := r.shortcuts && entry.hasShortcutSuffix()
	fields := FieldLinkType
	if candidate {
		fields |= FieldExists | FieldType
	}
	queried, err := r.backend.Query(entry, fields)
	if err != nil {
		return LinkKindNone, err
	}
	kind := queried.LinkKind()
	if candidate && kind == LinkKindNone && queried.Exists() && !queried.IsDirectory() {
		kind = LinkKindShortcut
	}

	// Record the result.
	if metadata != nil {
		metadata.SetLinkKind(kind)
	}
	return kind, nil
}

// ResolveOneHop returns the immediate target of a link of the specified kind.
// Relative targets are interpreted against the link's parent directory and
// are not cleaned. A link whose target can't be decoded yields an error of
// kind ErrorKindLinkResolutionFailed.
func (r *LinkResolver) ResolveOneHop(entry Entry, kind LinkKind) (Entry, error) {
	var target string
	var err error
	switch kind {
	case LinkKindSymbolicLink, LinkKindJunction:
		target, err = r.backend.ReadLink(entry)
	case LinkKindShortcut:
		target, err = r.readShortcut(entry)
	default:
		return Entry{}, newKindError(ErrorKindLinkResolutionFailed, "resolve link", entry.Path(), "not a link")
	}
	if err != nil {
		return Entry{}, err
	} else if target == "" {
		return Entry{}, newKindError(ErrorKindLinkResolutionFailed, "resolve link", entry.Path(), "empty link target")
	}
	return relativeTo(entry, target), nil
}

// relativeTo interprets a link target relative to the link's location.
// Targets rooted without a volume inherit the link's volume.
func relativeTo(link Entry, target string) Entry {
	result := NewEntry(target)
	if result.IsAbsolute() {
		return result
	}
	if strings.IndexByte(separators, target[0]) >= 0 {
		return NewEntry(filepath.VolumeName(link.Path()) + target)
	}
	return link.Parent().Join(target)
}

// readShortcut reads the target stored in a shell shortcut file.
func (r *LinkResolver) readShortcut(entry Entry) (string, error) {
	path := entry.Native()

	// Open the shortcut and defer its closure.
	file, err := os.Open(path)
	if err != nil {
		return "", newError("open", path, err)
	}
	defer must.Close(file, r.logger)

	// Read the shortcut contents, enforcing the size limit.
	data, err := io.ReadAll(io.LimitReader(file, maximumShortcutSize+1))
	if err != nil {
		return "", newError("read", path, err)
	} else if len(data) > maximumShortcutSize {
		return "", newKindError(ErrorKindLinkResolutionFailed, "read shortcut", path, "shortcut too large")
	}

	// Decode the link.
	link, err := shelllink.Parse(data)
	if err != nil {
		return "", &Error{Kind: ErrorKindLinkResolutionFailed, Op: "parse shortcut", Path: path, Err: err}
	}
	return strings.Trim(link.Target(), `"`), nil
}
