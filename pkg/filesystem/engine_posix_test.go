//go:build !windows

package filesystem

import (
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"testing"
)

// canonicalTempDir creates a temporary directory and resolves any links in
// its path, since temporary directories live behind links on some systems.
func canonicalTempDir(t *testing.T) string {
	directory, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal("unable to resolve temporary directory:", err)
	}
	return directory
}

func TestEngineCanonicalizeDotElements(t *testing.T) {
	directory := canonicalTempDir(t)
	if err := os.Mkdir(filepath.Join(directory, "testdir"), 0700); err != nil {
		t.Fatal("unable to create directory:", err)
	}
	expected := filepath.Join(directory, "testdir", "file.txt")
	if err := os.WriteFile(expected, nil, 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}
	canonical, err := NewEngine().Canonicalize(NewEntry(directory + "/testdir/../testdir/./file.txt"))
	if err != nil {
		t.Fatal("unable to canonicalize path:", err)
	}
	if canonical.Path() != expected {
		t.Error("canonical path mismatch:", canonical.Path(), "!=", expected)
	}
}

func TestEngineCanonicalizeDanglingChain(t *testing.T) {
	directory := canonicalTempDir(t)
	a := filepath.Join(directory, "a")
	if err := os.Symlink("b", a); err != nil {
		t.Fatal("unable to create link a:", err)
	}
	if err := os.Symlink("c", filepath.Join(directory, "b")); err != nil {
		t.Fatal("unable to create link b:", err)
	}

	engine := NewEngine()
	canonical, err := engine.Canonicalize(NewEntry(a))
	if err != nil {
		t.Fatal("canonicalization of dangling chain failed:", err)
	}
	if expected := filepath.Join(directory, "c"); canonical.Path() != expected {
		t.Error("canonical path mismatch:", canonical.Path(), "!=", expected)
	}

	metadata, err := engine.Metadata(NewEntry(a), FieldExists|FieldLinkType)
	if err != nil {
		t.Fatal("unable to query dangling link:", err)
	}
	if metadata.Exists() {
		t.Error("dangling link reported as existing")
	}
	if metadata.LinkKind() != LinkKindSymbolicLink {
		t.Error("dangling link not classified as symbolic link")
	}
}

func TestEngineCanonicalizeCycle(t *testing.T) {
	directory := canonicalTempDir(t)
	a := filepath.Join(directory, "a")
	if err := os.Symlink("b", a); err != nil {
		t.Fatal("unable to create link a:", err)
	}
	if err := os.Symlink("a", filepath.Join(directory, "b")); err != nil {
		t.Fatal("unable to create link b:", err)
	}
	canonical, err := NewEngine().Canonicalize(NewEntry(a))
	if !IsKind(err, ErrorKindLinkResolutionFailed) {
		t.Error("cycle did not fail with link resolution error:", err)
	}
	if canonical.IsEmpty() {
		t.Error("cycle did not yield the last path reached")
	}
}

func TestEngineCanonicalizeIntermediateLink(t *testing.T) {
	directory := canonicalTempDir(t)
	target := filepath.Join(directory, "target")
	if err := os.Mkdir(target, 0700); err != nil {
		t.Fatal("unable to create directory:", err)
	}
	if err := os.WriteFile(filepath.Join(target, "file"), nil, 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}
	if err := os.Symlink(target, filepath.Join(directory, "link")); err != nil {
		t.Fatal("unable to create link:", err)
	}

	engine := NewEngine()
	canonical, err := engine.Canonicalize(NewEntry(filepath.Join(directory, "link", "file")))
	if err != nil {
		t.Fatal("unable to canonicalize path:", err)
	}
	if expected := filepath.Join(target, "file"); canonical.Path() != expected {
		t.Error("canonical path mismatch:", canonical.Path(), "!=", expected)
	}
	again, err := engine.Canonicalize(canonical)
	if err != nil || again.Path() != canonical.Path() {
		t.Error("canonicalization not idempotent:", again.Path(), err)
	}
}

func TestEngineLinkTarget(t *testing.T) {
	directory := canonicalTempDir(t)
	link := filepath.Join(directory, "link")
	if err := os.Symlink("relative/target", link); err != nil {
		t.Fatal("unable to create link:", err)
	}
	engine := NewEngine()
	target, err := engine.LinkTarget(NewEntry(link))
	if err != nil {
		t.Fatal("unable to read link target:", err)
	}
	if expected := directory + "/relative/target"; target.Path() != expected {
		t.Error("link target mismatch:", target.Path(), "!=", expected)
	}
	if _, err := engine.LinkTarget(NewEntry(directory)); !IsKind(err, ErrorKindLinkResolutionFailed) {
		t.Error("non-link resolution did not fail with link resolution error:", err)
	}
}

func TestEngineHiddenFiles(t *testing.T) {
	directory := t.TempDir()
	for _, name := range []string{".hidden", "visible"} {
		if err := os.WriteFile(filepath.Join(directory, name), nil, 0600); err != nil {
			t.Fatal("unable to create file:", err)
		}
	}
	engine := NewEngine()
	for _, includeHidden := range []bool{false, true} {
		iterator, err := engine.Iterate(NewEntry(directory), IteratorOptions{IncludeHidden: includeHidden})
		if err != nil {
			t.Fatal("unable to create iterator:", err)
		}
		children, err := iterator.Collect()
		if err != nil {
			t.Fatal("iteration failed:", err)
		}
		expected := 1
		if includeHidden {
			expected = 2
		}
		if len(children) != expected {
			t.Error("unexpected child count with hidden inclusion", includeHidden, ":", len(children))
		}
	}
}

func TestEngineReadDirectoryLinks(t *testing.T) {
	directory := t.TempDir()
	if err := os.WriteFile(filepath.Join(directory, "file"), []byte("data"), 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}
	if err := os.Symlink("file", filepath.Join(directory, "valid")); err != nil {
		t.Fatal("unable to create link:", err)
	}
	if err := os.Symlink("missing", filepath.Join(directory, "dangling")); err != nil {
		t.Fatal("unable to create link:", err)
	}
	children, err := NewEngine().ReadDirectory(NewEntry(directory))
	if err != nil {
		t.Fatal("unable to read directory:", err)
	}
	results := make(map[string]*Metadata)
	for _, child := range children {
		results[child.Entry.Name()] = child.Metadata
	}
	if len(results) != 3 {
		t.Fatal("unexpected child count:", len(results))
	}
	if m := results["valid"]; m.LinkKind() != LinkKindSymbolicLink || !m.Exists() || m.Size() != 4 {
		t.Error("valid link metadata incorrect")
	}
	if m := results["dangling"]; m.LinkKind() != LinkKindSymbolicLink || m.Exists() {
		t.Error("dangling link metadata incorrect")
	}
	if m := results["file"]; m.LinkKind() != LinkKindNone || !m.Exists() {
		t.Error("file metadata incorrect")
	}
}

func TestEngineOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}
	var expected string
	if account, err := user.LookupId(strconv.Itoa(os.Getuid())); err == nil {
		expected = account.Username
	}
	owner, err := NewEngine().Owner(NewEntry(path), OwnerUser)
	if err != nil {
		t.Fatal("unable to query owner:", err)
	}
	if owner != expected {
		t.Error("owner mismatch:", owner, "!=", expected)
	}
	if _, err := NewEngine().Owner(NewEntry(path), OwnerGroup); err != nil {
		t.Error("unable to query group:", err)
	}
}

func TestEngineSetPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}
	engine := NewEngine()
	if err := engine.SetPermissions(NewEntry(path), PermissionsFromMode(0640)); err != nil {
		t.Fatal("unable to set permissions:", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal("unable to stat file:", err)
	}
	if info.Mode().Perm() != 0640 {
		t.Error("permission mismatch:", info.Mode().Perm())
	}
	metadata, err := engine.Metadata(NewEntry(path), FieldPermissions)
	if err != nil {
		t.Fatal("unable to query permissions:", err)
	}
	if metadata.Permissions() != PermissionsFromMode(0640) {
		t.Error("queried permissions mismatch:", metadata.Permissions())
	}
}

func TestEngineListSharesUnsupported(t *testing.T) {
	if _, err := NewEngine().ListShares("server"); !IsKind(err, ErrorKindUnsupportedOperation) {
		t.Error("share listing did not fail with unsupported operation:", err)
	}
}

func TestEngineDrivesPOSIX(t *testing.T) {
	drives, err := NewEngine().Drives()
	if err != nil {
		t.Fatal("unable to enumerate drives:", err)
	}
	if len(drives) != 1 || drives[0].Entry.Path() != "/" {
		t.Error("unexpected drive list:", drives)
	}
}

func TestEngineNativeFallbackLacksSize(t *testing.T) {
	entry, engine := newDeniedFile(t, []byte("contents"))
	metadata, err := engine.Metadata(entry, FieldExists|FieldSize)
	if !IsKind(err, ErrorKindAccessDenied) {
		t.Error("size query through enumeration did not fail with access denied:", err)
	}
	if metadata != nil {
		t.Error("size query through enumeration returned metadata")
	}
}
