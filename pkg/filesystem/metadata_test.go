package filesystem

import (
	"testing"
	"time"
)

func TestMetadataUnknownFieldPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("reading unknown field did not panic")
		}
	}()
	metadata := &Metadata{}
	metadata.SetExists(true)
	metadata.Size()
}

func TestMetadataPartialPermissions(t *testing.T) {
	metadata := &Metadata{}
	metadata.SetPermissions(PermissionsFromMode(0777), FieldOwnerPermissions)
	if metadata.Permissions() != PermissionOwnerRead|PermissionOwnerWrite|PermissionOwnerExecute {
		t.Error("unrequested triples populated:", metadata.Permissions())
	}
	if metadata.Has(FieldPermissions) {
		t.Error("partial permissions reported as complete")
	}
	if !metadata.Has(FieldOwnerPermissions) {
		t.Error("owner permissions not reported as known")
	}
}

func TestMetadataMerge(t *testing.T) {
	modification := time.Unix(1000, 0)
	base := &Metadata{}
	base.SetExists(true)
	base.SetSize(1)
	base.SetPermissions(PermissionsFromMode(0700), FieldOwnerPermissions)

	update := &Metadata{}
	update.SetSize(2)
	update.SetTimes(time.Time{}, modification, time.Time{})
	update.SetPermissions(PermissionsFromMode(0070), FieldGroupPermissions)

	base.Merge(update)
	if !base.Exists() {
		t.Error("merge cleared existing field")
	}
	if base.Size() != 2 {
		t.Error("merge did not overwrite size:", base.Size())
	}
	if !base.ModificationTime().Equal(modification) {
		t.Error("merge did not copy modification time")
	}
	expected := PermissionOwnerRead | PermissionOwnerWrite | PermissionOwnerExecute |
		PermissionGroupRead | PermissionGroupWrite | PermissionGroupExecute
	if base.Permissions() != expected {
		t.Error("merged permissions incorrect:", base.Permissions())
	}
	if base.Known() != FieldExists|FieldSize|FieldTimes|FieldOwnerPermissions|FieldGroupPermissions {
		t.Error("merged field set incorrect:", base.Known())
	}
}

func TestMetadataMarkNonexistent(t *testing.T) {
	metadata := &Metadata{}
	metadata.SetLinkKind(LinkKindSymbolicLink)
	metadata.SetSize(42)
	metadata.markNonexistent(FieldSize | FieldAttributes)
	if metadata.Exists() {
		t.Error("nonexistent metadata reports existence")
	}
	if metadata.Size() != 0 {
		t.Error("nonexistent metadata retained size")
	}
	if metadata.Attributes() != 0 {
		t.Error("nonexistent metadata has attributes")
	}
	if metadata.Type() != FileTypeUnknown {
		t.Error("nonexistent metadata has type")
	}
	if metadata.LinkKind() != LinkKindSymbolicLink {
		t.Error("nonexistent metadata lost link kind")
	}
	if metadata.Has(FieldIdentity) {
		t.Error("nonexistent metadata marked unrequested field known")
	}
}

func TestFieldsString(t *testing.T) {
	if s := Fields(0).String(); s != "none" {
		t.Error("empty field set string incorrect:", s)
	}
	if s := (FieldExists | FieldSize).String(); s != "exists|size" {
		t.Error("field set string incorrect:", s)
	}
}

func TestAttributeNames(t *testing.T) {
	names := (AttributeHidden | AttributeReadOnly).Names()
	if len(names) != 2 || names[0] != "hidden" || names[1] != "read-only" {
		t.Error("attribute names incorrect:", names)
	}
	if len(Attributes(0).Names()) != 0 {
		t.Error("empty attribute set has names")
	}
}

func TestParseFields(t *testing.T) {
	fields, err := ParseFields("exists, size,times")
	if err != nil {
		t.Fatal("unable to parse fields:", err)
	}
	if fields != FieldExists|FieldSize|FieldTimes {
		t.Error("parsed fields incorrect:", fields)
	}
	if fields, err := ParseFields("all"); err != nil || fields != FieldAll {
		t.Error("field group not parsed:", fields, err)
	}
	if _, err := ParseFields("exists,bogus"); err == nil {
		t.Error("unknown field accepted")
	}
	if _, err := ParseFields(" , "); err == nil {
		t.Error("empty field list accepted")
	}
}
