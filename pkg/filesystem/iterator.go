package filesystem

import (
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"github.com/mutagen-io/fsmeta/pkg/logging"
)

// Child is a directory child together with the metadata that enumeration
// yielded for it. Enumeration metadata is partial: for links, only the link
// kind and attributes are known, since enumeration doesn't follow links.
type Child struct {
	// Entry is the child entry.
	Entry Entry
	// Metadata is the enumeration metadata.
	Metadata *Metadata
}

// IteratorOptions configures directory iteration.
type IteratorOptions struct {
	// NameFilters is a list of doublestar patterns. If non-empty, only children
	// whose names match at least one pattern are produced. Matching is case
	// insensitive on Windows. Drive roots are never filtered.
	NameFilters []string
	// IncludeHidden indicates whether or not hidden children are produced.
	IncludeHidden bool
}

// enumerator is the platform-specific enumeration primitive underlying an
// Iterator. Each call to next performs at most one native enumeration step.
type enumerator interface {
	// next returns the next child, or io.EOF when enumeration is complete.
	next() (Child, error)
	// close releases the native enumeration handle.
	close() error
}

// sliceEnumerator enumerates a precomputed list of children, such as drive
// roots or network shares.
type sliceEnumerator struct {
	// children are the remaining children.
	children []Child
}

// next implements enumerator.next.
func (e *sliceEnumerator) next() (Child, error) {
	if len(e.children) == 0 {
		return Child{}, io.EOF
	}
	child := e.children[0]
	e.children = e.children[1:]
	return child, nil
}

// close implements enumerator.close.
func (e *sliceEnumerator) close() error {
	e.children = nil
	return nil
}

// iteratorState is the state of an Iterator.
type iteratorState uint8

const (
	// iteratorEnumerating indicates that children may remain.
	iteratorEnumerating iteratorState = iota
	// iteratorExhausted indicates that enumeration completed normally.
	iteratorExhausted
	// iteratorFailed indicates that enumeration failed.
	iteratorFailed
	// iteratorClosed indicates that the iterator was closed by its owner.
	iteratorClosed
)

// Iterator lazily produces the children of a directory. It holds a native
// enumeration handle from creation until it is exhausted, fails, or is
// closed, so abandoned iterators must be closed. Iterators are not safe for
// concurrent use and can't be restarted.
type Iterator struct {
	// directory is the directory being enumerated.
	directory Entry
	// patterns are the name filters, folded for comparison if necessary.
	patterns []string
	// includeHidden indicates whether or not hidden children are produced.
	includeHidden bool
	// enumerator is the underlying enumerator.
	enumerator enumerator
	// state is the iterator state.
	state iteratorState
	// logger is the iterator logger.
	logger *logging.Logger
}

// Iterate creates an iterator over the children of entry. If entry is empty,
// the iterator produces the filesystem's drive roots.
func (e *Engine) Iterate(entry Entry, options IteratorOptions) (*Iterator, error) {
	// Validate and fold the name filters.
	patterns := make([]string, 0, len(options.NameFilters))
	for _, pattern := range options.NameFilters {
		if _, err := doublestar.Match(pattern, "a"); err != nil {
			return nil, errors.Wrapf(err, "invalid name filter %q", pattern)
		}
		patterns = append(patterns, foldName(pattern))
	}

	// Create the enumerator.
	var enumerator enumerator
	if entry.IsEmpty() {
		children, err := drives(e.backend, e.logger)
		if err != nil {
			return nil, err
		}
		enumerator = &sliceEnumerator{children: children}
	} else {
		var err error
		if enumerator, err = openEnumerator(entry, e.logger); err != nil {
			return nil, err
		}
	}

	// Success.
	return &Iterator{
		directory:     entry,
		patterns:      patterns,
		includeHidden: options.IncludeHidden,
		enumerator:    enumerator,
		logger:        e.logger,
	}, nil
}

// Directory returns the directory being enumerated.
func (i *Iterator) Directory() Entry {
	return i.directory
}

// foldName folds a name for comparison on platforms with case-insensitive
// names.
func foldName(name string) string {
	if caseInsensitiveNames {
		return strings.ToLower(name)
	}
	return name
}

// include determines whether or not a child passes the iterator's filters.
func (i *Iterator) include(child Child) bool {
	name := child.Entry.Name()
	if name == "" {
		return true
	} else if name == "." || name == ".." {
		return false
	}
	if !i.includeHidden && child.Metadata != nil &&
		child.Metadata.Has(FieldAttributes) && child.Metadata.Attributes()&AttributeHidden != 0 {
		return false
	}
	if len(i.patterns) == 0 {
		return true
	}
	folded := foldName(name)
	for _, pattern := range i.patterns {
		if match, _ := doublestar.Match(pattern, folded); match {
			return true
		}
	}
	return false
}

// finish releases the enumerator and records the terminal state.
func (i *Iterator) finish(state iteratorState) error {
	i.state = state
	return i.enumerator.close()
}

// Next returns the next child. It returns io.EOF once every child has been
// produced, at which point the native handle has already been released. Any
// other error is terminal and also releases the handle. Calling Next after it
// has returned an error, or after Close, panics.
func (i *Iterator) Next() (Child, error) {
	if i.state != iteratorEnumerating {
		panic("iterator advanced after completion")
	}
	for {
		child, err := i.enumerator.next()
		if err == io.EOF {
			if err := i.finish(iteratorExhausted); err != nil {
				i.logger.Warnf("Unable to close enumeration of %s: %v", i.directory, err)
			}
			return Child{}, io.EOF
		} else if err != nil {
			if closeErr := i.finish(iteratorFailed); closeErr != nil {
				i.logger.Warnf("Unable to close enumeration of %s: %v", i.directory, closeErr)
			}
			return Child{}, err
		}
		if i.include(child) {
			return child, nil
		}
	}
}

// Close releases the iterator's native handle. It is safe to call Close
// multiple times and after enumeration has completed.
func (i *Iterator) Close() error {
	if i.state != iteratorEnumerating {
		i.state = iteratorClosed
		return nil
	}
	return i.finish(iteratorClosed)
}

// Collect drains the iterator and returns every remaining child.
func (i *Iterator) Collect() ([]Child, error) {
	var children []Child
	for {
		child, err := i.Next()
		if err == io.EOF {
			return children, nil
		} else if err != nil {
			return children, err
		}
		children = append(children, child)
	}
}
