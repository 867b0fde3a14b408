package filesystem

import (
	"path/filepath"
	"testing"
)

func TestLinkResolverClassifyShortcutCandidates(t *testing.T) {
	backend := newMockBackend(map[string]*mockObject{
		"file.lnk":      {size: 10},
		"directory.lnk": {directory: true},
		"plain":         {},
	})
	testCases := []struct {
		path      string
		shortcuts bool
		expected  LinkKind
	}{
		{"file.lnk", true, LinkKindShortcut},
		{"file.lnk", false, LinkKindNone},
		{"directory.lnk", true, LinkKindNone},
		{"missing.lnk", true, LinkKindNone},
		{"plain", true, LinkKindNone},
	}
	for _, testCase := range testCases {
		resolver := NewLinkResolver(backend, testCase.shortcuts, nil)
		kind, err := resolver.Classify(NewEntry(testCase.path), nil)
		if err != nil {
			t.Fatal("unable to classify path:", err)
		}
		if kind != testCase.expected {
			t.Errorf("classification of %q with shortcuts %t: %s != %s", testCase.path, testCase.shortcuts, kind, testCase.expected)
		}
	}
}

func TestLinkResolverClassifyUsesKnownMetadata(t *testing.T) {
	backend := newMockBackend(nil)
	resolver := NewLinkResolver(backend, true, nil)
	metadata := &Metadata{}
	metadata.SetLinkKind(LinkKindJunction)
	kind, err := resolver.Classify(NewEntry("anything"), metadata)
	if err != nil {
		t.Fatal("unable to classify path:", err)
	}
	if kind != LinkKindJunction {
		t.Error("known link kind not used:", kind)
	}
	if queries, _ := backend.counts(); queries != 0 {
		t.Error("classification queried backend despite known link kind")
	}

	// Classification of unknown metadata records its result.
	metadata = &Metadata{}
	if _, err := resolver.Classify(NewEntry("anything"), metadata); err != nil {
		t.Fatal("unable to classify path:", err)
	}
	if !metadata.Has(FieldLinkType) || metadata.LinkKind() != LinkKindNone {
		t.Error("classification result not recorded")
	}
}

func TestLinkResolverResolveNonLink(t *testing.T) {
	resolver := NewLinkResolver(newMockBackend(nil), true, nil)
	if _, err := resolver.ResolveOneHop(NewEntry("plain"), LinkKindNone); !IsKind(err, ErrorKindLinkResolutionFailed) {
		t.Error("resolution of non-link did not fail with link resolution error:", err)
	}
	if _, err := resolver.ResolveOneHop(NewEntry("plain"), LinkKindSymbolicLink); !IsKind(err, ErrorKindLinkResolutionFailed) {
		t.Error("resolution of unreadable link did not fail with link resolution error:", err)
	}
}

func TestRelativeTo(t *testing.T) {
	directory := t.TempDir()
	link := NewEntry(filepath.Join(directory, "link"))
	if target := relativeTo(link, "target"); target.Path() != filepath.Join(directory, "target") {
		t.Error("relative target incorrect:", target)
	}
	if target := relativeTo(link, directory); target.Path() != directory {
		t.Error("absolute target modified:", target)
	}
	nested := relativeTo(link, filepath.Join("..", "sibling"))
	if nested.Path() != directory+string(filepath.Separator)+filepath.Join("..", "sibling") {
		t.Error("relative target cleaned:", nested)
	}
}
